package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ganttcli/pkg/contracts/domain"
)

func TestTrackTransitions(t *testing.T) {
	ids := domain.IdentifierTable{"A": "1", "B": "2", "C": "3"}
	d1, d2, d3 := day(2024, time.January, 1), day(2024, time.January, 2), day(2024, time.January, 3)

	tests := []struct {
		name string
		grid *domain.Grid
		want []domain.TransitionRow
	}{
		{
			name: "three slices",
			grid: grid([]time.Time{d1, d2, d3},
				row("x", "", "A", "B", "C"),
				row("y", "", "B", "C", ""),
			),
			want: []domain.TransitionRow{
				{Date: d1, Start: []string{"A (1)", "B (2)"}, End: []string{"A (1)"}},
				{Date: d2, Start: []string{"C (3)"}, End: []string{"B (2)"}},
				{Date: d3, Start: []string{}, End: []string{"C (3)"}},
			},
		},
		{
			name: "columns sorted by calendar value",
			grid: grid([]time.Time{d3, d1, d2},
				row("x", "", "C", "A", "B"),
			),
			want: []domain.TransitionRow{
				{Date: d1, Start: []string{"A (1)"}, End: []string{"A (1)"}},
				{Date: d2, Start: []string{"B (2)"}, End: []string{"B (2)"}},
				{Date: d3, Start: []string{"C (3)"}, End: []string{"C (3)"}},
			},
		},
		{
			name: "neighbours are distinct grid dates not calendar days",
			grid: grid([]time.Time{d1, d3},
				row("x", "", "A", "A"),
			),
			want: []domain.TransitionRow{
				{Date: d1, Start: []string{"A (1)"}, End: []string{}},
				{Date: d3, Start: []string{}, End: []string{"A (1)"}},
			},
		},
		{
			name: "empty columns are not distinct dates",
			grid: grid([]time.Time{d1, d2, d3},
				row("x", "", "A", "", "A"),
			),
			want: []domain.TransitionRow{
				{Date: d1, Start: []string{"A (1)"}, End: []string{}},
				{Date: d3, Start: []string{}, End: []string{"A (1)"}},
			},
		},
		{
			name: "repeated date columns merge",
			grid: grid([]time.Time{d1, d1, d2},
				row("x", "", "A", "B", "B"),
				row("y", "", "", "A", ""),
			),
			want: []domain.TransitionRow{
				{Date: d1, Start: []string{"A (1)", "B (2)"}, End: []string{"A (1)"}},
				{Date: d2, Start: []string{}, End: []string{"B (2)"}},
			},
		},
		{
			name: "unknown identifiers",
			grid: grid([]time.Time{d1},
				row("x", "", "Z"),
			),
			want: []domain.TransitionRow{
				{Date: d1, Start: []string{"Z (ID not found)"}, End: []string{"Z (ID not found)"}},
			},
		},
		{
			name: "empty grid",
			grid: grid(nil),
			want: []domain.TransitionRow{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrackTransitions(tt.grid, ids)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i].Date, got[i].Date)
				assert.Equal(t, tt.want[i].Start, got[i].Start, "start of %s", FormatDate(got[i].Date))
				assert.Equal(t, tt.want[i].End, got[i].End, "end of %s", FormatDate(got[i].Date))
			}
		})
	}
}
