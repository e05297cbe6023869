package dataprocessing

import (
	"sort"
	"time"

	"ganttcli/pkg/contracts/domain"
)

// Index is the entity view of a grid: every entity that occupies at least one
// cell, with its categories, occurrence dates and per-category cell hits.
type Index struct {
	// Entities is sorted by name.
	Entities []domain.Entity
	// Categories lists every category with at least one hit, ascending.
	Categories []string

	hits map[string]map[string]int
}

// Hits returns how many cells of the category's rows hold the name.
// Several cells in the same row count separately.
func (ix *Index) Hits(category, name string) int {
	return ix.hits[category][name]
}

// IndexEntities scans every cell of the grid. A non-empty cell contributes its
// rendered value as an entity name; the row's category becomes one of the
// entity's categories and the column's date one of its occurrence dates.
func IndexEntities(grid *domain.Grid, ids domain.IdentifierTable) *Index {
	type entry struct {
		categories map[string]struct{}
		dates      map[time.Time]struct{}
	}

	entries := make(map[string]*entry)
	hits := make(map[string]map[string]int)

	for _, row := range grid.Rows {
		for col, cell := range row.Cells {
			if cell.IsEmpty() || col >= len(grid.Dates) {
				continue
			}
			name := cell.String()

			e, ok := entries[name]
			if !ok {
				e = &entry{
					categories: make(map[string]struct{}),
					dates:      make(map[time.Time]struct{}),
				}
				entries[name] = e
			}
			e.categories[row.Category] = struct{}{}
			e.dates[grid.Dates[col]] = struct{}{}

			if hits[row.Category] == nil {
				hits[row.Category] = make(map[string]int)
			}
			hits[row.Category][name]++
		}
	}

	ix := &Index{
		Entities:   make([]domain.Entity, 0, len(entries)),
		Categories: make([]string, 0, len(hits)),
		hits:       hits,
	}

	for name, e := range entries {
		entity := domain.Entity{
			Name:       name,
			ID:         ids.Resolve(name),
			Categories: make([]string, 0, len(e.categories)),
			Dates:      make([]time.Time, 0, len(e.dates)),
		}
		for category := range e.categories {
			entity.Categories = append(entity.Categories, category)
		}
		for day := range e.dates {
			entity.Dates = append(entity.Dates, day)
		}
		sort.Strings(entity.Categories)
		sortDays(entity.Dates)
		ix.Entities = append(ix.Entities, entity)
	}
	sort.Slice(ix.Entities, func(i, j int) bool {
		return ix.Entities[i].Name < ix.Entities[j].Name
	})

	for category := range hits {
		ix.Categories = append(ix.Categories, category)
	}
	sort.Strings(ix.Categories)

	return ix
}

func sortDays(days []time.Time) {
	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})
}
