package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"ganttcli/internal/config"
	"ganttcli/internal/errors"
	"ganttcli/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths *config.Paths
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(paths *config.Paths) *CSVWriter {
	return &CSVWriter{paths: paths}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file, replacing any existing content.
// Relative paths resolve against the base directory.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.paths.Resolve(filePath)

	slog.Debug("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := w.paths.EnsureParent(fullPath); err != nil {
		return err
	}

	file, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}

// WriteTable writes a rendered table with a UTF-8 BOM so spreadsheet
// applications read Hebrew labels correctly.
func (w *CSVWriter) WriteTable(filePath string, table domain.Table) error {
	records := table.Records()
	return w.WriteCSV(filePath, WriteOptions{
		Headers:   records[0],
		Records:   records[1:],
		BOMPrefix: true,
	})
}

// CSVSink writes every table to <dir>/<table name>.csv. All files are first
// written into a staging directory and only moved into place once every table
// has been written.
type CSVSink struct {
	writer *CSVWriter
	dir    string
	logger *slog.Logger
}

// NewCSVSink creates a sink writing into dir, resolved against paths.
func NewCSVSink(paths *config.Paths, dir string, logger *slog.Logger) *CSVSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVSink{
		writer: NewCSVWriter(paths),
		dir:    paths.Resolve(dir),
		logger: logger.With(slog.String("sink", "csv")),
	}
}

// Name identifies the sink in logs and metrics.
func (s *CSVSink) Name() string {
	return "csv"
}

// Commit replaces the CSV files for tables.
func (s *CSVSink) Commit(ctx context.Context, tables []domain.Table) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return errors.NewStorageError("failed to create csv directory", err).
			WithContext("dir", s.dir)
	}

	staging := filepath.Join(s.dir, ".staging-"+uuid.NewString())
	defer os.RemoveAll(staging)

	files := make([]string, len(tables))
	for i, table := range tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		files[i] = FileName(table.Name)
		if err := s.writer.WriteTable(filepath.Join(staging, files[i]), table); err != nil {
			return errors.NewStorageError("failed to write csv table", err).
				WithContext("table", table.Name)
		}
	}

	for _, name := range files {
		if err := os.Rename(filepath.Join(staging, name), filepath.Join(s.dir, name)); err != nil {
			return errors.NewStorageError("failed to move csv file into place", err).
				WithContext("file", name)
		}
	}

	s.logger.InfoContext(ctx, "csv tables written",
		slog.String("dir", s.dir),
		slog.Int("tables", len(tables)))
	return nil
}

// FileName maps a sheet name to a CSV file name, replacing characters that are
// not allowed in file names.
func FileName(sheet string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(sheet))
	if name == "" {
		name = "table"
	}
	return name + ".csv"
}
