package dataprocessing

import (
	"context"
	"log/slog"

	"ganttcli/pkg/contracts/domain"
)

// Summarizer builds the per-entity date summary: one row per entity in name
// order with its identifier and compressed date runs.
type Summarizer struct {
	logger *slog.Logger
}

// NewSummarizer creates a summarizer. A nil logger falls back to slog.Default().
func NewSummarizer(logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{logger: logger}
}

// Summarize returns one row per indexed entity, in the index's name order.
func (s *Summarizer) Summarize(ctx context.Context, ix *Index) []domain.SummaryRow {
	rows := make([]domain.SummaryRow, len(ix.Entities))
	for i, e := range ix.Entities {
		rows[i] = domain.SummaryRow{
			Name: e.Name,
			ID:   e.ID,
			Runs: CompressRuns(e.Dates),
		}
		s.logger.DebugContext(ctx, "entity summary",
			slog.String("name", e.Name),
			slog.String("id", e.ID),
			slog.Any("runs", RunLabels(rows[i].Runs)))
	}

	s.logger.InfoContext(ctx, "generated entity summaries",
		slog.Int("entity_count", len(rows)))

	return rows
}
