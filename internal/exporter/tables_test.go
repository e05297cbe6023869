package exporter

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ganttcli/internal/config"
	"ganttcli/pkg/contracts/domain"
)

func testReport() *domain.Report {
	d := func(day int) time.Time { return time.Date(2024, time.January, day, 0, 0, 0, 0, time.UTC) }
	return &domain.Report{
		Today: d(2),
		Summary: []domain.SummaryRow{
			{Name: "Alice", ID: "101", Runs: []domain.DateRun{{Start: d(1), End: d(2)}}},
			{Name: "Dana", ID: domain.MissingIdentifier, Runs: []domain.DateRun{{Start: d(1), End: d(1)}, {Start: d(3), End: d(3)}}},
		},
		Transitions: []domain.TransitionRow{
			{Date: d(1), Start: []string{"Alice (101)", "Dana (ID not found)"}, End: []string{"Dana (ID not found)"}},
			{Date: d(2), End: []string{"Alice (101)"}},
		},
		Daily: []domain.CategoryRow{
			{Category: "קו", SubCategories: [3]string{"North", "East", "7"}, Name: "Alice", ID: "101"},
			{Name: "Dana", ID: domain.MissingIdentifier},
			{Category: "מפלג", SubCategories: [3]string{"Ops"}},
		},
		Categories: []string{"Guard", "קו"},
		Counter: []domain.CounterRow{
			{Name: "Alice", ID: "101", Counts: []int{0, 2}, Total: 2},
			{Name: "Dana", ID: domain.MissingIdentifier, Counts: []int{1, 1}, Total: 2},
		},
	}
}

func testRenderer() *Renderer {
	return NewRenderer(NamesFromConfig(config.Default().Output))
}

func TestRenderer_Render(t *testing.T) {
	tables := testRenderer().Render(testReport())

	require.Len(t, tables, 4)
	names := make([]string, len(tables))
	for i, table := range tables {
		names[i] = table.Name
	}
	assert.Equal(t, []string{"Summary", "Kishur", "Report1", "Counter"}, names)
}

func TestRenderer_Summary(t *testing.T) {
	got := testRenderer().Summary(testReport()).Records()
	want := [][]string{
		{"Name", "ID", "Dates"},
		{"Alice", "101", "01/01/24-02/01/24"},
		{"Dana", "ID not found", "01/01/24, 03/01/24"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderer_Transitions(t *testing.T) {
	got := testRenderer().Transitions(testReport()).Records()
	want := [][]string{
		{"Dates", "Start Date", "End Date"},
		{"01/01/24", "Alice (101), Dana (ID not found)", "Dana (ID not found)"},
		{"02/01/24", "", "Alice (101)"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("transitions mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderer_CategoryReport(t *testing.T) {
	got := testRenderer().CategoryReport(testReport()).Records()
	want := [][]string{
		{"02/01/24", "Sub-category 1", "Sub-category 2", "Sub-category 3", "Name", "ID"},
		{"קו", "North", "East", "7", "Alice", "101"},
		{"", "", "", "", "Dana", "ID not found"},
		{"מפלג", "Ops", "", "", "", ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("category report mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderer_Counter(t *testing.T) {
	table := testRenderer().Counter(testReport())

	want := [][]string{
		{"Name", "ID", "Guard", "קו", "All"},
		{"Alice", "101", "0", "2", "2"},
		{"Dana", "ID not found", "1", "1", "2"},
	}
	if diff := cmp.Diff(want, table.Records()); diff != "" {
		t.Errorf("counter mismatch (-want +got):\n%s", diff)
	}

	for _, row := range table.Rows {
		for _, c := range row[2:] {
			assert.Equal(t, domain.CellNumber, c.Kind)
		}
	}
}

func TestRenderer_EmptyReport(t *testing.T) {
	report := &domain.Report{Today: time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC)}
	tables := testRenderer().Render(report)

	for _, table := range tables {
		assert.Empty(t, table.Rows, table.Name)
	}
	assert.Equal(t, "09/03/24", tables[2].Header[0])
	assert.Equal(t, []string{"Name", "ID", "All"}, tables[3].Header)
}
