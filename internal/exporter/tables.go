package exporter

import (
	"ganttcli/internal/config"
	"ganttcli/internal/dataprocessing"
	"ganttcli/pkg/contracts/domain"
)

// Column headers of the rendered sheets.
var (
	SummaryHeader     = []string{"Name", "ID", "Dates"}
	TransitionsHeader = []string{"Dates", "Start Date", "End Date"}
	// CategoryReportHeader follows the report date in the first column.
	CategoryReportHeader = []string{"Sub-category 1", "Sub-category 2", "Sub-category 3", "Name", "ID"}
)

// counterTotalColumn closes the counter header.
const counterTotalColumn = "All"

// TableNames are the output sheet names for the four rendered tables.
type TableNames struct {
	Summary        string
	Transitions    string
	CategoryReport string
	Counter        string
}

// Renderer turns a derived report into output tables.
type Renderer struct {
	names TableNames
}

// NewRenderer creates a renderer writing to the given sheet names.
func NewRenderer(names TableNames) *Renderer {
	return &Renderer{names: names}
}

// Render returns the summary, transitions, category report and counter
// tables, in that order.
func (r *Renderer) Render(report *domain.Report) []domain.Table {
	return []domain.Table{
		r.Summary(report),
		r.Transitions(report),
		r.CategoryReport(report),
		r.Counter(report),
	}
}

// Summary renders one row per entity: name, identifier and joined date runs.
func (r *Renderer) Summary(report *domain.Report) domain.Table {
	t := domain.Table{Name: r.names.Summary, Header: SummaryHeader}
	for _, row := range report.Summary {
		t.Rows = append(t.Rows, []domain.Cell{
			domain.TextCell(row.Name),
			domain.TextCell(row.ID),
			domain.TextCell(dataprocessing.JoinRuns(row.Runs)),
		})
	}
	return t
}

// Transitions renders one row per distinct date with the joining and leaving
// "name (id)" lists.
func (r *Renderer) Transitions(report *domain.Report) domain.Table {
	t := domain.Table{Name: r.names.Transitions, Header: TransitionsHeader}
	for _, row := range report.Transitions {
		t.Rows = append(t.Rows, []domain.Cell{
			domain.TextCell(formatDate(row.Date)),
			domain.TextCell(joinList(row.Start)),
			domain.TextCell(joinList(row.End)),
		})
	}
	return t
}

// CategoryReport renders the tracked-category report. The first header cell is
// the report date.
func (r *Renderer) CategoryReport(report *domain.Report) domain.Table {
	header := make([]string, 0, len(CategoryReportHeader)+1)
	header = append(header, formatDate(report.Today))
	header = append(header, CategoryReportHeader...)

	t := domain.Table{Name: r.names.CategoryReport, Header: header}
	for _, row := range report.Daily {
		cells := make([]domain.Cell, 0, len(header))
		cells = append(cells, domain.TextCell(row.Category))
		for _, sub := range row.SubCategories {
			cells = append(cells, domain.TextCell(sub))
		}
		cells = append(cells, domain.TextCell(row.Name), domain.TextCell(row.ID))
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// Counter renders per-category appearance counts with a closing total column.
func (r *Renderer) Counter(report *domain.Report) domain.Table {
	header := make([]string, 0, len(report.Categories)+3)
	header = append(header, "Name", "ID")
	header = append(header, report.Categories...)
	header = append(header, counterTotalColumn)

	t := domain.Table{Name: r.names.Counter, Header: header}
	for _, row := range report.Counter {
		cells := make([]domain.Cell, 0, len(header))
		cells = append(cells, domain.TextCell(row.Name), domain.TextCell(row.ID))
		for _, n := range row.Counts {
			cells = append(cells, countCell(n))
		}
		cells = append(cells, countCell(row.Total))
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// NamesFromConfig reads the table names from the output configuration.
func NamesFromConfig(out config.OutputConfig) TableNames {
	return TableNames{
		Summary:        out.SummarySheet,
		Transitions:    out.TransitionsSheet,
		CategoryReport: out.CategoryReportSheet,
		Counter:        out.CounterSheet,
	}
}
