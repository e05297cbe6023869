package domain

import (
	"time"
)

// Entity is a named subject tracked across the schedule.
type Entity struct {
	Name       string      `json:"name"`
	ID         string      `json:"id"`
	Categories []string    `json:"categories"`
	Dates      []time.Time `json:"dates"`
}

// DateRun is a maximal run of consecutive calendar days.
type DateRun struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Label renders the run as DD/MM/YY for a single day or DD/MM/YY-DD/MM/YY.
func (r DateRun) Label() string {
	if r.Start.Equal(r.End) {
		return r.Start.Format(DateLayout)
	}
	return r.Start.Format(DateLayout) + "-" + r.End.Format(DateLayout)
}

// SummaryRow is one line of the per-entity date summary.
type SummaryRow struct {
	Name string    `json:"name"`
	ID   string    `json:"id"`
	Runs []DateRun `json:"runs"`
}

// TransitionRow lists who joins and who leaves on one distinct date.
type TransitionRow struct {
	Date  time.Time `json:"date"`
	Start []string  `json:"start"`
	End   []string  `json:"end"`
}

// CategoryRow is one line of the tracked-category daily report. Category and
// SubCategories are blank on continuation lines of a multi-name cell unless the
// report repeats them.
type CategoryRow struct {
	Category      string    `json:"category"`
	SubCategories [3]string `json:"sub_categories"`
	Name          string    `json:"name"`
	ID            string    `json:"id"`
}

// CounterRow holds per-category appearance counts for one entity. Counts is
// aligned with Report.Categories.
type CounterRow struct {
	Name   string `json:"name"`
	ID     string `json:"id"`
	Counts []int  `json:"counts"`
	Total  int    `json:"total"`
}

// Report is the full set of tables derived from one grid.
type Report struct {
	Today       time.Time       `json:"today"`
	Entities    []Entity        `json:"entities"`
	Summary     []SummaryRow    `json:"summary"`
	Transitions []TransitionRow `json:"transitions"`
	Daily       []CategoryRow   `json:"daily"`
	Categories  []string        `json:"categories"`
	Counter     []CounterRow    `json:"counter"`
}

// Table is a rendered output sheet: a header row followed by data rows.
type Table struct {
	Name   string   `json:"name"`
	Header []string `json:"header"`
	Rows   [][]Cell `json:"rows"`
}

// Records returns header and rows as strings, header first.
func (t Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, append([]string(nil), t.Header...))
	for _, row := range t.Rows {
		rec := make([]string, len(row))
		for i, c := range row {
			rec[i] = c.String()
		}
		out = append(out, rec)
	}
	return out
}
