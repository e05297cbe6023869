package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ganttcli/internal/config"
	apierrors "ganttcli/internal/errors"
)

func TestNewSink(t *testing.T) {
	tests := []struct {
		name        string
		targets     []string
		wantSinks   []string
		wantClosers int
		wantErr     apierrors.ErrorType
	}{
		{"source workbook", []string{TargetSource}, []string{"workbook"}, 0, ""},
		{"all local", []string{TargetWorkbook, TargetCSV, TargetSQLite}, []string{"workbook", "csv", "sqlite"}, 1, ""},
		{"unknown", []string{"ftp"}, nil, 0, apierrors.ErrTypeConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			paths, err := config.GetPaths(dir)
			require.NoError(t, err)

			cfg := config.Default()
			cfg.Source.WorkbookPath = filepath.Join(dir, "schedule.xlsx")
			cfg.Output.CSVDir = filepath.Join(dir, "csv")
			cfg.Output.SQLitePath = filepath.Join(dir, "report.db")
			cfg.Output.Targets = tt.targets

			sink, closers, err := NewSink(context.Background(), cfg, paths, nil, nil)
			if tt.wantErr != "" {
				assert.True(t, apierrors.IsType(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			defer func() {
				for _, c := range closers {
					c.Close()
				}
			}()

			names := make([]string, 0, len(sink.Sinks()))
			for _, s := range sink.Sinks() {
				names = append(names, s.Name())
			}
			assert.Equal(t, tt.wantSinks, names)
			assert.Len(t, closers, tt.wantClosers)
		})
	}
}

func TestNewSink_WorkbookNeedsPath(t *testing.T) {
	paths, err := config.GetPaths(t.TempDir())
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Output.Targets = []string{TargetWorkbook}

	_, _, err = NewSink(context.Background(), cfg, paths, nil, nil)
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeConfig))
}

func TestNewSourceOpener(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schedule.xlsx")
	writeFixtureWorkbook(t, path)

	open, err := NewSourceOpener(context.Background(), config.SourceConfig{Kind: "workbook", WorkbookPath: path}, nil)
	require.NoError(t, err)

	src, err := open(context.Background())
	require.NoError(t, err)
	defer src.Close()

	rows, err := src.ReadRange(context.Background(), config.DefaultIDSheet, config.DefaultIDRange)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	missing, err := NewSourceOpener(context.Background(), config.SourceConfig{Kind: "workbook", WorkbookPath: filepath.Join(dir, "none.xlsx")}, nil)
	require.NoError(t, err)
	_, err = missing(context.Background())
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeNotFound))

	_, err = NewSourceOpener(context.Background(), config.SourceConfig{Kind: "csv"}, nil)
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeConfig))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Empty(t, firstNonEmpty("", ""))
}
