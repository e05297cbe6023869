package dataprocessing

import (
	"strings"
	"time"

	"ganttcli/pkg/contracts/domain"
)

// subCategoryColumns is the fixed number of sub-category columns in the daily report.
const subCategoryColumns = 3

// CategoryFilterOptions selects the tracked categories and the row layout.
type CategoryFilterOptions struct {
	Tracked []string
	// RepeatCategoryColumns writes category and sub-categories on every
	// emitted row instead of only the first row of each source row.
	RepeatCategoryColumns bool
}

// FilterCategories builds the daily report for the tracked categories. Each
// tracked row contributes one output row per name found in today's column
// (a comma-separated list).
//
// In the default layout the output cursor only advances per name, so a
// tracked row without names today shares its output row with the next tracked
// row: that row's category and sub-category cells are written over it cell by
// cell. Only a trailing nameless row survives on its own. With
// RepeatCategoryColumns every nameless row is kept as a category-only row.
func FilterCategories(grid *domain.Grid, ids domain.IdentifierTable, today time.Time, opts CategoryFilterOptions) []domain.CategoryRow {
	tracked := make(map[string]struct{}, len(opts.Tracked))
	for _, c := range opts.Tracked {
		tracked[c] = struct{}{}
	}

	todayCol := TodayColumn(grid, today)

	var (
		out     []domain.CategoryRow
		pending *domain.CategoryRow
	)
	for _, row := range grid.Rows {
		if _, ok := tracked[row.Category]; !ok {
			continue
		}

		var head domain.CategoryRow
		if pending != nil && !opts.RepeatCategoryColumns {
			head = *pending
		}
		head.Category = row.Category
		overlaySubCategory(&head.SubCategories, row.SubCategory)
		pending = nil

		var names []string
		if todayCol >= 0 && todayCol < len(row.Cells) {
			names = SplitNames(row.Cells[todayCol].String())
		}
		if len(names) == 0 {
			if opts.RepeatCategoryColumns {
				out = append(out, head)
			} else {
				pending = &head
			}
			continue
		}

		for i, name := range names {
			line := domain.CategoryRow{Name: name, ID: ids.Resolve(name)}
			if i == 0 || opts.RepeatCategoryColumns {
				line.Category = head.Category
				line.SubCategories = head.SubCategories
			}
			out = append(out, line)
		}
	}
	if pending != nil {
		out = append(out, *pending)
	}
	return out
}

// overlaySubCategory writes the space-separated tokens of s over dst from the
// left, leaving cells past the last token untouched. An empty s clears only
// the first cell.
func overlaySubCategory(dst *[subCategoryColumns]string, s string) {
	for i, token := range strings.Split(s, " ") {
		if i == subCategoryColumns {
			break
		}
		dst[i] = token
	}
}

// TodayColumn returns the first date column whose DD/MM/YY matches today, or -1.
func TodayColumn(grid *domain.Grid, today time.Time) int {
	want := FormatDate(today)
	for i, day := range grid.Dates {
		if FormatDate(day) == want {
			return i
		}
	}
	return -1
}

// SplitSubCategory splits on single spaces and keeps the first three tokens.
func SplitSubCategory(s string) [subCategoryColumns]string {
	var out [subCategoryColumns]string
	overlaySubCategory(&out, s)
	return out
}

// SplitNames splits a comma-separated cell into trimmed, non-empty names.
func SplitNames(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}
