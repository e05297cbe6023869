package workbook

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"ganttcli/internal/errors"
	"ganttcli/pkg/contracts/domain"
)

// ExcelSource reads windows from an .xlsx workbook.
type ExcelSource struct {
	mu     sync.Mutex
	path   string
	file   *excelize.File
	logger *slog.Logger
}

// OpenExcelSource opens the workbook at path for reading.
func OpenExcelSource(path string, logger *slog.Logger) (*ExcelSource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("workbook " + path)
		}
		return nil, errors.NewStorageError("failed to stat workbook", err).WithContext("path", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewStorageError("failed to open workbook", err).WithContext("path", path)
	}

	return &ExcelSource{
		path:   path,
		file:   f,
		logger: logger.With(slog.String("source", "workbook")),
	}, nil
}

// ReadRange reads raw cell values. Date cells come back as serial numbers;
// numeric strings stored as text stay text.
func (s *ExcelSource) ReadRange(ctx context.Context, sheet, a1Range string) ([][]domain.Cell, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rng, err := ParseRange(a1Range)
	if err != nil {
		return nil, errors.NewAppValidationError(err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, err := s.file.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, errors.NewNotFoundError("sheet " + sheet).WithContext("path", s.path)
	}

	rows, err := s.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.NewStorageError("failed to read sheet", err).
			WithContext("sheet", sheet).
			WithContext("path", s.path)
	}

	raw := rng.Window(rows)
	window := make([][]domain.Cell, len(raw))
	for i, row := range raw {
		window[i] = make([]domain.Cell, len(row))
		for j, value := range row {
			window[i][j] = s.cell(sheet, rng.StartCol+j, rng.StartRow+i, value)
		}
	}

	s.logger.DebugContext(ctx, "read workbook range",
		slog.String("sheet", sheet),
		slog.String("range", a1Range),
		slog.Int("rows", len(window)))

	return window, nil
}

func (s *ExcelSource) cell(sheet string, col, row int, value string) domain.Cell {
	if value == "" {
		return domain.EmptyCell()
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return domain.TextCell(value)
	}

	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return domain.TextCell(value)
	}
	switch typ, _ := s.file.GetCellType(sheet, name); typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return domain.TextCell(value)
	}
	return domain.NumberCell(n)
}

// Close releases the workbook.
func (s *ExcelSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// SaveHook is told about every workbook an ExcelSink replaces: opened is the
// modification time of the file the sink started from (zero when it created
// the workbook) and saved is the modification time of the file it wrote.
type SaveHook func(path string, opened, saved time.Time)

// ExcelSink writes tables as sheets of an .xlsx workbook. Existing sheets with
// the same names are replaced; other sheets are kept.
type ExcelSink struct {
	path   string
	logger *slog.Logger

	mu     sync.Mutex
	onSave SaveHook
}

// NewExcelSink creates a sink for the workbook at path. The workbook is
// created on first commit when it does not exist.
func NewExcelSink(path string, logger *slog.Logger) *ExcelSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelSink{
		path:   path,
		logger: logger.With(slog.String("sink", "workbook")),
	}
}

// Name identifies the sink in logs and metrics.
func (s *ExcelSink) Name() string {
	return "workbook"
}

// Path returns the workbook the sink writes.
func (s *ExcelSink) Path() string {
	return s.path
}

// OnSave registers hook to run after each successful commit.
func (s *ExcelSink) OnSave(hook SaveHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSave = hook
}

// Commit writes every table into a copy of the workbook and renames the copy
// over the original.
func (s *ExcelSink) Commit(ctx context.Context, tables []domain.Table) error {
	f, opened, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()
	created := opened.IsZero()

	for _, table := range tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := replaceSheet(f, table); err != nil {
			return errors.NewStorageError("failed to write sheet", err).
				WithContext("sheet", table.Name).
				WithContext("path", s.path)
		}
	}

	if created {
		dropDefaultSheet(f, tables)
	}

	if err := s.save(f); err != nil {
		return err
	}

	s.mu.Lock()
	hook := s.onSave
	s.mu.Unlock()
	if hook != nil {
		if info, err := os.Stat(s.path); err == nil {
			hook(s.path, opened, info.ModTime())
		}
	}

	s.logger.InfoContext(ctx, "workbook tables written",
		slog.String("path", s.path),
		slog.Int("tables", len(tables)))
	return nil
}

// open loads the workbook and returns its modification time, or a new
// workbook and the zero time when none exists yet.
func (s *ExcelSink) open() (*excelize.File, time.Time, error) {
	info, err := os.Stat(s.path)
	if os.IsNotExist(err) {
		return excelize.NewFile(), time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, errors.NewStorageError("failed to stat workbook", err).WithContext("path", s.path)
	}
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, time.Time{}, errors.NewStorageError("failed to open workbook", err).WithContext("path", s.path)
	}
	return f, info.ModTime(), nil
}

func (s *ExcelSink) save(f *excelize.File) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewStorageError("failed to create workbook directory", err).WithContext("dir", dir)
	}

	ext := filepath.Ext(s.path)
	base := strings.TrimSuffix(filepath.Base(s.path), ext)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s%s", base, uuid.NewString(), ext))

	if err := f.SaveAs(tmp); err != nil {
		os.Remove(tmp)
		return errors.NewStorageError("failed to save workbook", err).WithContext("path", tmp)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return errors.NewStorageError("failed to replace workbook", err).WithContext("path", s.path)
	}
	return nil
}

// replaceSheet clears the sheet named after table, creating it if needed, and
// writes the header at A1 followed by the rows.
func replaceSheet(f *excelize.File, table domain.Table) error {
	if idx, err := f.GetSheetIndex(table.Name); err == nil && idx >= 0 {
		if err := f.DeleteSheet(table.Name); err != nil {
			return err
		}
	}
	if _, err := f.NewSheet(table.Name); err != nil {
		return err
	}

	// DeleteSheet keeps the last remaining sheet, so clear what is left.
	existing, err := f.GetRows(table.Name)
	if err != nil {
		return err
	}
	for r := len(existing); r >= 1; r-- {
		if err := f.RemoveRow(table.Name, r); err != nil {
			return err
		}
	}

	for i, values := range tableRows(table) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(table.Name, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

// dropDefaultSheet removes the placeholder sheet of a new workbook unless a
// table uses its name.
func dropDefaultSheet(f *excelize.File, tables []domain.Table) {
	const defaultSheet = "Sheet1"
	for _, t := range tables {
		if t.Name == defaultSheet {
			return
		}
	}
	if err := f.DeleteSheet(defaultSheet); err != nil {
		return
	}
	if len(tables) > 0 {
		if idx, err := f.GetSheetIndex(tables[0].Name); err == nil && idx >= 0 {
			f.SetActiveSheet(idx)
		}
	}
}
