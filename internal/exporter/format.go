package exporter

import (
	"strings"
	"time"

	"ganttcli/internal/dataprocessing"
	"ganttcli/pkg/contracts/domain"
)

// listSeparator joins names inside a single cell, matching run labels.
const listSeparator = dataprocessing.RunSeparator

// formatDate renders a calendar day as DD/MM/YY.
func formatDate(day time.Time) string {
	return day.Format(domain.DateLayout)
}

// joinList renders a list of labels as one cell value.
func joinList(items []string) string {
	return strings.Join(items, listSeparator)
}

// countCell stores a count as a number so spreadsheets can sum it.
func countCell(n int) domain.Cell {
	return domain.NumberCell(float64(n))
}
