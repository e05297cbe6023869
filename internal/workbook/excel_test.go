package workbook

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apierrors "ganttcli/internal/errors"
	"ganttcli/pkg/contracts/domain"
)

func writeScheduleWorkbook(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Gantt chart"
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	require.NoError(t, f.SetCellValue(sheet, "A1", "Schedule"))
	require.NoError(t, f.SetCellValue(sheet, "C3", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, f.SetCellValue(sheet, "D3", time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]interface{}{"קו", "North East", "Alice", "Alice, Bob"}))
	require.NoError(t, f.SetCellValue(sheet, "D5", 202))

	path := filepath.Join(t.TempDir(), "schedule.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestExcelSource_ReadRange(t *testing.T) {
	src, err := OpenExcelSource(writeScheduleWorkbook(t), nil)
	require.NoError(t, err)
	defer src.Close()

	window, err := src.ReadRange(context.Background(), "Gantt chart", "A3:AT100")
	require.NoError(t, err)
	require.Len(t, window, 3)

	header := window[0]
	require.Len(t, header, 4)
	assert.True(t, header[0].IsEmpty())
	assert.Equal(t, domain.CellNumber, header[2].Kind)
	assert.Equal(t, float64(45292), header[2].Number)
	assert.Equal(t, float64(45293), header[3].Number)

	assert.Equal(t, domain.TextCell("קו"), window[1][0])
	assert.Equal(t, domain.TextCell("Alice, Bob"), window[1][3])

	assert.Equal(t, domain.NumberCell(202), window[2][3])
}

func TestExcelSource_Errors(t *testing.T) {
	_, err := OpenExcelSource(filepath.Join(t.TempDir(), "missing.xlsx"), nil)
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeNotFound))

	src, err := OpenExcelSource(writeScheduleWorkbook(t), nil)
	require.NoError(t, err)
	defer src.Close()

	_, err = src.ReadRange(context.Background(), "ID", "A:D")
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeNotFound))

	_, err = src.ReadRange(context.Background(), "Gantt chart", "A3-AT100")
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeValidation))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.ReadRange(ctx, "Gantt chart", "A3:AT100")
	assert.ErrorIs(t, err, context.Canceled)
}

func sampleTables() []domain.Table {
	return []domain.Table{
		{
			Name:   "Summary",
			Header: []string{"Name", "ID", "Dates"},
			Rows: [][]domain.Cell{
				{domain.TextCell("Alice"), domain.TextCell("101"), domain.TextCell("01/01/24-02/01/24")},
				{domain.TextCell("Bob"), domain.TextCell("ID not found"), domain.TextCell("02/01/24")},
			},
		},
		{
			Name:   "Counter",
			Header: []string{"Name", "ID", "קו", "All"},
			Rows: [][]domain.Cell{
				{domain.TextCell("Alice"), domain.TextCell("101"), domain.NumberCell(2), domain.NumberCell(2)},
			},
		},
	}
}

func TestExcelSink_Commit_NewWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.xlsx")
	sink := NewExcelSink(path, nil)

	require.NoError(t, sink.Commit(context.Background(), sampleTables()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Counter"}, f.GetSheetList())

	rows, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Name", "ID", "Dates"},
		{"Alice", "101", "01/01/24-02/01/24"},
		{"Bob", "ID not found", "02/01/24"},
	}, rows)

	counter, err := f.GetRows("Counter")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "101", "2", "2"}, counter[1])
}

func TestExcelSink_Commit_ReplacesOutputSheetsOnly(t *testing.T) {
	path := writeScheduleWorkbook(t)
	sink := NewExcelSink(path, nil)

	require.NoError(t, sink.Commit(context.Background(), sampleTables()))

	shorter := sampleTables()
	shorter[0].Rows = shorter[0].Rows[:1]
	require.NoError(t, sink.Commit(context.Background(), shorter))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Gantt chart", "Summary", "Counter"}, f.GetSheetList())

	rows, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	src, err := f.GetCellValue("Gantt chart", "A4")
	require.NoError(t, err)
	assert.Equal(t, "קו", src)

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".schedule.*"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temporary workbook must not be left behind")
}

func TestExcelSink_OnSave(t *testing.T) {
	path := writeScheduleWorkbook(t)
	before := time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, before, before))

	type save struct {
		path          string
		opened, saved time.Time
	}
	var got []save
	sink := NewExcelSink(path, nil)
	sink.OnSave(func(p string, opened, saved time.Time) {
		got = append(got, save{p, opened, saved})
	})

	require.NoError(t, sink.Commit(context.Background(), sampleTables()))

	require.Len(t, got, 1)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, path, got[0].path)
	assert.True(t, got[0].opened.Equal(before))
	assert.True(t, got[0].saved.Equal(info.ModTime()))

	fresh := NewExcelSink(filepath.Join(t.TempDir(), "new.xlsx"), nil)
	var opened time.Time
	fresh.OnSave(func(_ string, o, _ time.Time) { opened = o })
	require.NoError(t, fresh.Commit(context.Background(), sampleTables()))
	assert.True(t, opened.IsZero(), "a created workbook has no opened time")
}
