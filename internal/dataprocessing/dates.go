package dataprocessing

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"ganttcli/pkg/contracts/domain"
)

// Layouts accepted for dates typed as text into a header cell.
var textDateLayouts = []string{
	"2/1/2006",
	"2/1/06",
	"2006-01-02",
}

// CalendarDay returns the calendar day t falls on in loc, as midnight UTC.
// A nil loc means time.Local.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return midnightUTC(t.In(loc))
}

// FormatDate renders a calendar day as DD/MM/YY.
func FormatDate(day time.Time) string {
	return day.Format(domain.DateLayout)
}

// ParseDate parses a DD/MM/YY, DD/MM/YYYY or YYYY-MM-DD string into a calendar day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range textDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// CellDate converts a header cell into a calendar day. Numbers are treated as
// spreadsheet date serials.
func CellDate(c domain.Cell) (time.Time, error) {
	switch c.Kind {
	case domain.CellDate:
		return midnightUTC(c.Date), nil
	case domain.CellNumber:
		t, err := excelize.ExcelDateToTime(c.Number, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date serial %v: %w", c.Number, err)
		}
		return midnightUTC(t), nil
	case domain.CellText:
		return ParseDate(c.Text)
	default:
		return time.Time{}, fmt.Errorf("empty date cell")
	}
}

func midnightUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
