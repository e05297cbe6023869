package workbook

import (
	"context"
	"fmt"
	"strconv"

	"ganttcli/pkg/contracts/domain"
)

// Source reads spreadsheet windows.
type Source interface {
	// ReadRange returns the cells of a1Range on sheet, row by row. Trailing
	// empty rows and cells may be omitted.
	ReadRange(ctx context.Context, sheet, a1Range string) ([][]domain.Cell, error)
	Close() error
}

// Sink replaces output tables on a target.
type Sink interface {
	Name() string
	Commit(ctx context.Context, tables []domain.Table) error
}

// tableRows returns the header followed by the data rows as plain values,
// the shape spreadsheet writers take.
func tableRows(table domain.Table) [][]interface{} {
	rows := make([][]interface{}, 0, len(table.Rows)+1)

	header := make([]interface{}, len(table.Header))
	for i, h := range table.Header {
		header[i] = h
	}
	rows = append(rows, header)

	for _, row := range table.Rows {
		values := make([]interface{}, len(row))
		for i, c := range row {
			values[i] = c.Value()
		}
		rows = append(rows, values)
	}
	return rows
}

// valueCell converts a value decoded from a spreadsheet API into a cell.
func valueCell(v interface{}) domain.Cell {
	switch x := v.(type) {
	case nil:
		return domain.EmptyCell()
	case string:
		return domain.TextCell(x)
	case float64:
		return domain.NumberCell(x)
	case int:
		return domain.NumberCell(float64(x))
	case int64:
		return domain.NumberCell(float64(x))
	case bool:
		return domain.TextCell(strconv.FormatBool(x))
	default:
		return domain.TextCell(fmt.Sprint(x))
	}
}
