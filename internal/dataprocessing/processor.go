package dataprocessing

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ganttcli/internal/errors"
	"ganttcli/pkg/contracts/domain"
)

const tracerName = "ganttcli/dataprocessing"

// Processor derives every report table from one grid snapshot. It holds no
// state between calls.
type Processor struct {
	logger     *slog.Logger
	opts       ProcessingOptions
	summarizer *Summarizer
	tracer     trace.Tracer
}

// NewProcessor creates a processor. A nil logger falls back to slog.Default().
func NewProcessor(logger *slog.Logger, opts ProcessingOptions) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.TrackedCategories == nil {
		opts.TrackedCategories = DefaultOptions().TrackedCategories
	}
	return &Processor{
		logger:     logger,
		opts:       opts,
		summarizer: NewSummarizer(logger),
		tracer:     otel.Tracer(tracerName),
	}
}

// Process runs indexing, run compression, transition tracking, category
// filtering and counting over grid. today must be a calendar day.
func (p *Processor) Process(ctx context.Context, grid *domain.Grid, ids domain.IdentifierTable, today time.Time) (*domain.Report, error) {
	if grid == nil {
		return nil, errors.NewAppValidationError("grid is nil")
	}
	if ids == nil {
		ids = domain.IdentifierTable{}
	}

	report := &domain.Report{Today: today}

	ctx, span := p.tracer.Start(ctx, "process_grid", trace.WithAttributes(
		attribute.Int("grid.rows", len(grid.Rows)),
		attribute.Int("grid.dates", len(grid.Dates)),
	))
	defer span.End()

	var ix *Index
	p.stage(ctx, "index_entities", func() {
		ix = IndexEntities(grid, ids)
	})
	report.Entities = ix.Entities
	report.Categories = ix.Categories
	p.logger.InfoContext(ctx, "indexed entities",
		slog.Int("entities", len(ix.Entities)),
		slog.Any("categories", ix.Categories))

	p.stage(ctx, "summarize", func() {
		report.Summary = p.summarizer.Summarize(ctx, ix)
	})

	p.stage(ctx, "track_transitions", func() {
		report.Transitions = TrackTransitions(grid, ids)
	})
	p.logger.InfoContext(ctx, "tracked date transitions",
		slog.Int("dates", len(report.Transitions)))

	if TodayColumn(grid, today) < 0 {
		p.logger.WarnContext(ctx, "no date column matches today",
			slog.String("today", FormatDate(today)))
	}
	p.stage(ctx, "filter_categories", func() {
		report.Daily = FilterCategories(grid, ids, today, CategoryFilterOptions{
			Tracked:               p.opts.TrackedCategories,
			RepeatCategoryColumns: p.opts.RepeatCategoryColumns,
		})
	})

	p.stage(ctx, "count_occurrences", func() {
		report.Counter = CountOccurrences(ix)
	})

	span.SetAttributes(attribute.Int("report.entities", len(report.Entities)))
	p.logger.InfoContext(ctx, "report derived",
		slog.Int("summary_rows", len(report.Summary)),
		slog.Int("transition_rows", len(report.Transitions)),
		slog.Int("daily_rows", len(report.Daily)),
		slog.Int("counter_rows", len(report.Counter)))

	return report, nil
}

func (p *Processor) stage(ctx context.Context, name string, fn func()) {
	_, span := p.tracer.Start(ctx, name)
	defer span.End()
	fn()
}
