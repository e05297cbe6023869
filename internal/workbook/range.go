package workbook

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Range is a parsed A1 range. Columns and rows are 1-based; EndRow is zero for
// whole-column ranges such as "A:D".
type Range struct {
	StartCol int
	StartRow int
	EndCol   int
	EndRow   int
}

// ParseRange parses "A3:AT100", "A:D" or a single cell such as "B2".
func ParseRange(a1 string) (Range, error) {
	a1 = strings.TrimSpace(a1)
	if a1 == "" {
		return Range{}, fmt.Errorf("empty range")
	}

	first, last, found := strings.Cut(a1, ":")
	if !found {
		last = first
	}

	startCol, startRow, err := parseRef(first)
	if err != nil {
		return Range{}, fmt.Errorf("invalid range %q: %w", a1, err)
	}
	endCol, endRow, err := parseRef(last)
	if err != nil {
		return Range{}, fmt.Errorf("invalid range %q: %w", a1, err)
	}

	if (startRow == 0) != (endRow == 0) {
		return Range{}, fmt.Errorf("invalid range %q: mixes cell and column references", a1)
	}
	if startCol > endCol || startRow > endRow {
		return Range{}, fmt.Errorf("invalid range %q: end precedes start", a1)
	}
	if startRow == 0 {
		startRow = 1
	}

	return Range{StartCol: startCol, StartRow: startRow, EndCol: endCol, EndRow: endRow}, nil
}

// parseRef splits "AT100" into column 46 and row 100. A bare column returns row 0.
func parseRef(ref string) (col, row int, err error) {
	i := 0
	for i < len(ref) && isLetter(ref[i]) {
		i++
	}
	if i == 0 {
		return 0, 0, fmt.Errorf("missing column in %q", ref)
	}

	col, err = excelize.ColumnNameToNumber(ref[:i])
	if err != nil {
		return 0, 0, err
	}
	if i == len(ref) {
		return col, 0, nil
	}

	row, err = strconv.Atoi(ref[i:])
	if err != nil || row < 1 {
		return 0, 0, fmt.Errorf("invalid row in %q", ref)
	}
	return col, row, nil
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// Bounded reports whether the range has a last row.
func (r Range) Bounded() bool {
	return r.EndRow > 0
}

// Window cuts the range out of rows, where rows[0] is sheet row 1 and
// rows[i][0] is column A.
func (r Range) Window(rows [][]string) [][]string {
	last := len(rows)
	if r.Bounded() && r.EndRow < last {
		last = r.EndRow
	}

	var window [][]string
	for i := r.StartRow - 1; i < last; i++ {
		row := rows[i]
		from, to := r.StartCol-1, r.EndCol
		if to > len(row) {
			to = len(row)
		}
		if from >= to {
			window = append(window, nil)
			continue
		}
		window = append(window, row[from:to])
	}
	return window
}

// String renders the range in A1 form.
func (r Range) String() string {
	start, _ := excelize.ColumnNumberToName(r.StartCol)
	end, _ := excelize.ColumnNumberToName(r.EndCol)
	if !r.Bounded() {
		return start + ":" + end
	}
	return fmt.Sprintf("%s%d:%s%d", start, r.StartRow, end, r.EndRow)
}

// quoteSheet returns sheet quoted for use in an A1 reference.
func quoteSheet(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}

// A1 returns the sheet-qualified reference, e.g. 'Gantt chart'!A3:AT100.
func A1(sheet, a1Range string) string {
	return quoteSheet(sheet) + "!" + a1Range
}
