package dataprocessing

import (
	"time"

	"ganttcli/pkg/contracts/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// row builds a grid row; "" is an empty cell.
func row(category, sub string, names ...string) domain.GridRow {
	cells := make([]domain.Cell, len(names))
	for i, n := range names {
		cells[i] = domain.TextCell(n)
	}
	return domain.GridRow{Category: category, SubCategory: sub, Cells: cells}
}

func grid(dates []time.Time, rows ...domain.GridRow) *domain.Grid {
	return &domain.Grid{Dates: dates, Rows: rows}
}
