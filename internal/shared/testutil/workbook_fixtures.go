package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// WriteScheduleWorkbook saves a workbook at path holding ScheduleWindow at A3
// of ganttSheet and IdentifierRows at A1 of idSheet. Dates are stored as real
// date cells.
func WriteScheduleWorkbook(t *testing.T, path, ganttSheet, idSheet string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", ganttSheet))
	for i, row := range ScheduleWindow() {
		for j, c := range row {
			if c.IsEmpty() {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+3)
			require.NoError(t, err)
			var v interface{} = c.Value()
			if !c.Date.IsZero() {
				v = c.Date
			}
			require.NoError(t, f.SetCellValue(ganttSheet, cell, v))
		}
	}

	_, err := f.NewSheet(idSheet)
	require.NoError(t, err)
	for i, row := range IdentifierRows() {
		for j, c := range row {
			if c.IsEmpty() {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(idSheet, cell, c.Value()))
		}
	}

	require.NoError(t, f.SaveAs(path))
}
