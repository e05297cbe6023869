package testutil

import (
	"time"

	"ganttcli/pkg/contracts/domain"
)

// FixtureToday is the report date that matches the second date column of
// ScheduleWindow.
var FixtureToday = time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)

// FixtureDates are the three header dates of ScheduleWindow.
var FixtureDates = []time.Time{
	time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC),
	time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC),
}

// ScheduleWindow returns a small schedule window: a header row with three
// dates, one row per tracked category and one untracked row. Carol has no
// identifier.
func ScheduleWindow() [][]domain.Cell {
	t := domain.TextCell
	header := []domain.Cell{domain.EmptyCell(), domain.EmptyCell()}
	for _, d := range FixtureDates {
		header = append(header, domain.DateCell(d))
	}
	return [][]domain.Cell{
		header,
		{t("קו"), t("North East 7"), t("Alice"), t("Alice"), t("")},
		{t("מפלג"), t("Ops"), t(""), t("Bob, Carol"), t("Bob")},
		{t("Guard"), t(""), t("Carol"), t(""), t("Carol")},
	}
}

// IdentifierRows returns identifier sheet rows for ScheduleWindow: name in
// column A and identifier in column D.
func IdentifierRows() [][]domain.Cell {
	t := domain.TextCell
	return [][]domain.Cell{
		{t("Name"), t(""), t(""), t("ID")},
		{t("Alice"), t("x"), t("y"), t("101")},
		{t("Bob"), t(""), t(""), domain.NumberCell(202)},
	}
}

// ScheduleGrid is ScheduleWindow after parsing.
func ScheduleGrid() *domain.Grid {
	window := ScheduleWindow()
	grid := &domain.Grid{Dates: append([]time.Time(nil), FixtureDates...)}
	for _, row := range window[1:] {
		grid.Rows = append(grid.Rows, domain.GridRow{
			Category:    row[0].String(),
			SubCategory: row[1].String(),
			Cells:       append([]domain.Cell(nil), row[2:]...),
		})
	}
	return grid
}

// Identifiers is IdentifierRows after parsing.
func Identifiers() domain.IdentifierTable {
	return domain.IdentifierTable{"Name": "ID", "Alice": "101", "Bob": "202"}
}
