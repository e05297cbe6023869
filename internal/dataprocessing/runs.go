package dataprocessing

import (
	"strings"
	"time"

	"ganttcli/pkg/contracts/domain"
)

// RunSeparator joins run labels for display.
const RunSeparator = ", "

// CompressRuns sorts the dates and folds calendar-consecutive days into runs.
// Repeated days collapse into one. No dates yields no runs.
func CompressRuns(dates []time.Time) []domain.DateRun {
	if len(dates) == 0 {
		return nil
	}

	days := make([]time.Time, len(dates))
	for i, d := range dates {
		days[i] = midnightUTC(d)
	}
	sortDays(days)

	var runs []domain.DateRun
	current := domain.DateRun{Start: days[0], End: days[0]}
	for _, day := range days[1:] {
		switch {
		case day.Equal(current.End):
			continue
		case day.Equal(current.End.AddDate(0, 0, 1)):
			current.End = day
		default:
			runs = append(runs, current)
			current = domain.DateRun{Start: day, End: day}
		}
	}
	return append(runs, current)
}

// RunLabels renders each run as DD/MM/YY or DD/MM/YY-DD/MM/YY.
func RunLabels(runs []domain.DateRun) []string {
	labels := make([]string, len(runs))
	for i, r := range runs {
		labels[i] = r.Label()
	}
	return labels
}

// JoinRuns renders the runs as one display string.
func JoinRuns(runs []domain.DateRun) string {
	return strings.Join(RunLabels(runs), RunSeparator)
}
