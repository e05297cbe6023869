package dataprocessing

import (
	"time"

	"ganttcli/pkg/contracts/domain"
)

// TrackTransitions lists, for every distinct occupied date in calendar order,
// the "name (id)" labels that are new compared with the previous distinct date
// and those that are gone on the next one. Neighbours are the adjacent distinct
// dates of the grid, not adjacent calendar days.
func TrackTransitions(grid *domain.Grid, ids domain.IdentifierTable) []domain.TransitionRow {
	occupants := make(map[time.Time][]string)
	seen := make(map[time.Time]map[string]struct{})
	var days []time.Time

	for col, day := range grid.Dates {
		for _, row := range grid.Rows {
			if col >= len(row.Cells) || row.Cells[col].IsEmpty() {
				continue
			}
			if _, ok := seen[day]; !ok {
				seen[day] = make(map[string]struct{})
				days = append(days, day)
			}
			label := ids.Label(row.Cells[col].String())
			if _, dup := seen[day][label]; dup {
				continue
			}
			seen[day][label] = struct{}{}
			occupants[day] = append(occupants[day], label)
		}
	}
	sortDays(days)

	rows := make([]domain.TransitionRow, len(days))
	for i, day := range days {
		var prev, next map[string]struct{}
		if i > 0 {
			prev = seen[days[i-1]]
		}
		if i < len(days)-1 {
			next = seen[days[i+1]]
		}
		rows[i] = domain.TransitionRow{
			Date:  day,
			Start: difference(occupants[day], prev),
			End:   difference(occupants[day], next),
		}
	}
	return rows
}

// difference keeps the order of names.
func difference(names []string, other map[string]struct{}) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := other[n]; !ok {
			out = append(out, n)
		}
	}
	return out
}
