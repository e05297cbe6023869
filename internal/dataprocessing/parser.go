package dataprocessing

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"ganttcli/internal/errors"
	"ganttcli/pkg/contracts/domain"
)

const (
	// firstDateColumn is the window column holding the first date; columns
	// before it carry the category and sub-category labels.
	firstDateColumn = 2

	idNameColumn  = 0
	idValueColumn = 3
)

// Origin locates the top-left cell of a window inside its sheet. It is only
// used to name cells in error messages.
type Origin struct {
	Sheet string
	Col   int // 1-based
	Row   int // 1-based
}

// Parser turns raw spreadsheet windows into a schedule grid and identifier table.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser. A nil logger falls back to slog.Default().
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// ParseGantt reads the schedule window: row 0 is the header with dates from
// column 2 on, every later row is category, sub-category, then one cell per date.
// Date columns with no header and no entity are window padding and are dropped.
func (p *Parser) ParseGantt(window [][]domain.Cell, origin Origin) (*domain.Grid, error) {
	if len(window) == 0 {
		return nil, errors.NewParsingError("schedule window is empty", nil).
			WithContext("sheet", origin.Sheet)
	}

	width := 0
	for _, row := range window {
		if len(row) > width {
			width = len(row)
		}
	}

	var (
		columns []int
		dates   []time.Time
	)
	for c := firstDateColumn; c < width; c++ {
		header := cellAt(window, 0, c)
		occupied := columnOccupied(window, c)

		if header.IsEmpty() {
			if occupied {
				return nil, p.headerError(origin, c, "date column has entities but no date", nil)
			}
			continue
		}

		day, err := CellDate(header)
		if err != nil {
			if occupied {
				return nil, p.headerError(origin, c, "unparsable date header", err)
			}
			p.logger.Warn("skipping unparsable empty date column",
				slog.String("cell", cellName(origin, c, 0)),
				slog.String("value", header.String()))
			continue
		}

		columns = append(columns, c)
		dates = append(dates, day)
	}

	grid := &domain.Grid{Dates: dates}
	for r := 1; r < len(window); r++ {
		row := domain.GridRow{
			Category:    cellAt(window, r, 0).String(),
			SubCategory: cellAt(window, r, 1).String(),
			Cells:       make([]domain.Cell, len(columns)),
		}
		blank := row.Category == "" && row.SubCategory == ""
		for i, c := range columns {
			row.Cells[i] = cellAt(window, r, c)
			if !row.Cells[i].IsEmpty() {
				blank = false
			}
		}
		if blank {
			continue
		}
		grid.Rows = append(grid.Rows, row)
	}

	p.logger.Info("parsed schedule window",
		slog.String("sheet", origin.Sheet),
		slog.Int("date_columns", len(grid.Dates)),
		slog.Int("rows", len(grid.Rows)))

	return grid, nil
}

// ParseIdentifiers builds the name to identifier table from column 0 (name) and
// column 3 (identifier). Rows missing either are skipped; a repeated name keeps
// its last identifier.
func (p *Parser) ParseIdentifiers(rows [][]domain.Cell) domain.IdentifierTable {
	ids := make(domain.IdentifierTable)
	skipped := 0
	for r := range rows {
		name := cellAt(rows, r, idNameColumn).String()
		id := cellAt(rows, r, idValueColumn).String()
		if name == "" || id == "" {
			skipped++
			continue
		}
		ids[name] = id
	}

	p.logger.Info("parsed identifier table",
		slog.Int("identifiers", len(ids)),
		slog.Int("skipped_rows", skipped))

	return ids
}

func (p *Parser) headerError(origin Origin, col int, msg string, cause error) error {
	return errors.NewParsingError(msg, cause).
		WithContext("sheet", origin.Sheet).
		WithContext("cell", cellName(origin, col, 0))
}

func cellAt(window [][]domain.Cell, r, c int) domain.Cell {
	if r < 0 || r >= len(window) || c < 0 || c >= len(window[r]) {
		return domain.EmptyCell()
	}
	return window[r][c]
}

func columnOccupied(window [][]domain.Cell, c int) bool {
	for r := 1; r < len(window); r++ {
		if !cellAt(window, r, c).IsEmpty() {
			return true
		}
	}
	return false
}

func cellName(origin Origin, col, row int) string {
	name, err := excelize.CoordinatesToCellName(origin.Col+col, origin.Row+row)
	if err != nil {
		return fmt.Sprintf("R%dC%d", origin.Row+row, origin.Col+col)
	}
	return name
}
