package dataprocessing

import (
	"ganttcli/pkg/contracts/domain"
)

// CountOccurrences cross-tabulates entities against categories. Counts follow
// ix.Categories; Total is their sum.
func CountOccurrences(ix *Index) []domain.CounterRow {
	rows := make([]domain.CounterRow, len(ix.Entities))
	for i, e := range ix.Entities {
		row := domain.CounterRow{
			Name:   e.Name,
			ID:     e.ID,
			Counts: make([]int, len(ix.Categories)),
		}
		for j, category := range ix.Categories {
			n := ix.Hits(category, e.Name)
			row.Counts[j] = n
			row.Total += n
		}
		rows[i] = row
	}
	return rows
}
