package domain

import (
	"time"
)

// MissingIdentifier is written wherever an entity has no row in the identifier table.
const MissingIdentifier = "ID not found"

// Grid is the parsed activity schedule: one calendar day per date column and
// one row per categorized activity line.
type Grid struct {
	Dates []time.Time `json:"dates"`
	Rows  []GridRow   `json:"rows"`
}

// GridRow is a single schedule line. Cells has exactly one entry per Grid date.
type GridRow struct {
	Category    string `json:"category"`
	SubCategory string `json:"sub_category"`
	Cells       []Cell `json:"cells"`
}

// Occupied reports whether any row holds an entity in the given date column.
func (g *Grid) Occupied(col int) bool {
	for _, row := range g.Rows {
		if col < len(row.Cells) && !row.Cells[col].IsEmpty() {
			return true
		}
	}
	return false
}

// IdentifierTable maps entity names to their identifiers.
type IdentifierTable map[string]string

// Resolve returns the identifier for name, or MissingIdentifier.
func (t IdentifierTable) Resolve(name string) string {
	if id, ok := t[name]; ok {
		return id
	}
	return MissingIdentifier
}

// Label renders the "name (id)" form used by the transition tracker.
func (t IdentifierTable) Label(name string) string {
	return name + " (" + t.Resolve(name) + ")"
}
