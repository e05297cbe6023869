package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ganttcli/internal/config"
	apierrors "ganttcli/internal/errors"
	"ganttcli/internal/shared/testutil"
	handlers "ganttcli/internal/transport/http"
	"ganttcli/pkg/contracts"
)

// writeTestConfig lays out a schedule workbook and a config file that writes
// CSV tables to out/ in a fresh directory.
func writeTestConfig(t *testing.T, extra string) (dir, configPath string) {
	t.Helper()
	dir = t.TempDir()
	testutil.WriteScheduleWorkbook(t, filepath.Join(dir, "schedule.xlsx"), config.DefaultGanttSheet, config.DefaultIDSheet)

	yaml := `source:
  kind: workbook
  workbook_path: schedule.xlsx
output:
  targets: [csv]
  csv_dir: out
report:
  time_zone: UTC
  today: "02/01/24"
logging:
  level: error
  format: text
paths:
  base_dir: ` + dir + "\n" + extra

	configPath = filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(yaml), 0644))
	return dir, configPath
}

func execute(ctx context.Context, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	root := newRootCommand(&stdout, &stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return stdout.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(context.Background(), "version")
	require.NoError(t, err)
	assert.Equal(t, contracts.GetFullVersionString()+"\n", out)

	out, err = execute(context.Background(), "version", "--json")
	require.NoError(t, err)
	var info contracts.VersionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, contracts.Version, info.Version)
}

func TestRunCommand(t *testing.T) {
	dir, configPath := writeTestConfig(t, "")

	out, err := execute(context.Background(), "run", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "committed to csv")
	assert.Contains(t, out, "Summary")
	assert.Contains(t, out, "4 rows")

	data, err := os.ReadFile(filepath.Join(dir, "out", "Summary.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Alice,101,01/01/24-02/01/24")
}

func TestRunCommand_JSON(t *testing.T) {
	_, configPath := writeTestConfig(t, "")

	out, err := execute(context.Background(), "run", "--config", configPath, "--dry-run", "-o", "json")
	require.NoError(t, err)

	var resp handlers.RunResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.DryRun)
	require.Len(t, resp.Tables, 4)
	assert.Equal(t, config.DefaultSummarySheet, resp.Tables[0].Name)
	assert.Equal(t, 4, resp.Tables[0].Rows)
}

func TestRunCommand_DryRunWritesNothing(t *testing.T) {
	dir, configPath := writeTestConfig(t, "")

	out, err := execute(context.Background(), "run", "--config", configPath, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "dry run")
	assert.NoFileExists(t, filepath.Join(dir, "out", "Summary.csv"))
}

func TestRunCommand_PrintTable(t *testing.T) {
	_, configPath := writeTestConfig(t, "")

	out, err := execute(context.Background(), "run", "--config", configPath, "--dry-run", "--print", config.DefaultSummarySheet)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines, "Alice,101,01/01/24-02/01/24")
	assert.Contains(t, lines, "Bob,202,03/01/24")

	_, err = execute(context.Background(), "run", "--config", configPath, "--dry-run", "--print", "Report9")
	require.Error(t, err)
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeNotFound))
}

func TestRunCommand_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantType apierrors.ErrorType
	}{
		{name: "bad today", args: []string{"--today", "2024-01-02"}, wantType: apierrors.ErrTypeValidation},
		{name: "bad format", args: []string{"-o", "xml"}, wantType: apierrors.ErrTypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, configPath := writeTestConfig(t, "")
			args := append([]string{"run", "--config", configPath}, tt.args...)

			_, err := execute(context.Background(), args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantType, apierrors.TypeOf(err))
		})
	}
}

func TestRunCommand_MissingConfig(t *testing.T) {
	_, err := execute(context.Background(), "run", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestCheckCommand(t *testing.T) {
	t.Run("ok with parse", func(t *testing.T) {
		dir, configPath := writeTestConfig(t, "")

		out, err := execute(context.Background(), "check", "--config", configPath, "--parse")
		require.NoError(t, err)
		assert.Contains(t, out, "configuration OK")
		assert.Contains(t, out, "schedule OK: 4 entities")
		assert.NoFileExists(t, filepath.Join(dir, "out", "Summary.csv"))
	})

	t.Run("missing workbook", func(t *testing.T) {
		dir, configPath := writeTestConfig(t, "")
		require.NoError(t, os.Remove(filepath.Join(dir, "schedule.xlsx")))

		out, err := execute(context.Background(), "check", "--config", configPath)
		require.Error(t, err)
		assert.Contains(t, out, "FAIL source.workbook_path")
	})
}

func TestWatchCommand_InitialRunThenStop(t *testing.T) {
	dir, configPath := writeTestConfig(t, "watch:\n  debounce: 50ms\n")
	summary := filepath.Join(dir, "out", "Summary.csv")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		_, err := execute(ctx, "watch", "--config", configPath)
		done <- err
	}()

	assert.Eventually(t, func() bool {
		_, err := os.Stat(summary)
		return err == nil
	}, 10*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestNewWorkbookWatcher_NeedsWorkbookSource(t *testing.T) {
	cfg := config.Default()
	cfg.Source.Kind = "gsheets"
	cfg.Source.SpreadsheetID = "sheet-id"

	_, err := newWorkbookWatcher(cfg, nil, nil, false, nil)
	require.Error(t, err)
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeConfig))
}

func TestServeCommand_StopsOnCancel(t *testing.T) {
	_, configPath := writeTestConfig(t, "")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := execute(ctx, "serve", "--config", configPath, "--port", "0")
	assert.NoError(t, err)
}
