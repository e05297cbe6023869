package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"ganttcli/internal/config"
	"ganttcli/internal/dataprocessing"
	"ganttcli/internal/errors"
	"ganttcli/internal/exporter"
	"ganttcli/internal/infrastructure"
	"ganttcli/internal/workbook"
	"ganttcli/pkg/contracts/domain"
)

// SourceOpener opens the schedule source for one run. Runs open a fresh
// source so edits made between runs are picked up.
type SourceOpener func(ctx context.Context) (workbook.Source, error)

// RunOptions adjusts a single run.
type RunOptions struct {
	// Today overrides the report date (DD/MM/YY).
	Today string `json:"today,omitempty" validate:"omitempty,ddmmyy"`
	// DryRun derives the tables without committing them.
	DryRun bool `json:"dry_run,omitempty"`
}

// RunResult describes a finished run.
type RunResult struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	DryRun     bool           `json:"dry_run"`
	Sinks      []string       `json:"sinks"`
	Report     *domain.Report `json:"-"`
	Tables     []domain.Table `json:"tables"`
}

// Table returns the rendered table named name.
func (r *RunResult) Table(name string) (domain.Table, bool) {
	for _, t := range r.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return domain.Table{}, false
}

// ReportService runs the schedule transform end to end: read the source
// windows, derive the report, render tables and commit them to the sink.
type ReportService struct {
	source    config.SourceConfig
	pinned    string
	loc       *time.Location
	open      SourceOpener
	sink      workbook.Sink
	parser    *dataprocessing.Parser
	processor *dataprocessing.Processor
	renderer  *exporter.Renderer
	metrics   *infrastructure.ReportMetrics
	tracer    trace.Tracer
	logger    *slog.Logger
	now       func() time.Time

	group  singleflight.Group
	mu     sync.RWMutex
	latest *RunResult
}

// NewReportService wires a report service from configuration. sink may be nil
// when the service is only used for dry runs.
func NewReportService(cfg *config.Config, open SourceOpener, sink workbook.Sink, metrics *infrastructure.ReportMetrics, logger *slog.Logger) (*ReportService, error) {
	if open == nil {
		return nil, errors.NewConfigError("report service needs a source", ErrNoSource)
	}
	if logger == nil {
		logger = slog.Default()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, errors.NewConfigError("invalid report time zone", err).
			WithContext("time_zone", cfg.Report.TimeZone)
	}

	logger = infrastructure.WithComponent(logger, "report_service")
	return &ReportService{
		source: cfg.Source,
		pinned: cfg.Report.Today,
		loc:    loc,
		open:   open,
		sink:   sink,
		parser: dataprocessing.NewParser(logger),
		processor: dataprocessing.NewProcessor(logger, dataprocessing.ProcessingOptions{
			TrackedCategories:     cfg.Report.TrackedCategories,
			RepeatCategoryColumns: cfg.Report.RepeatCategoryColumns,
		}),
		renderer: exporter.NewRenderer(exporter.NamesFromConfig(cfg.Output)),
		metrics:  metrics,
		tracer:   otel.Tracer(infrastructure.MeterName),
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Run executes one report run. Concurrent calls with the same options join the
// run already in flight. Any error or panic inside the run is logged, counted
// and returned.
func (s *ReportService) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	key := opts.Today + "|" + strconv.FormatBool(opts.DryRun)
	v, err, shared := s.group.Do(key, func() (interface{}, error) {
		return s.run(ctx, opts)
	})
	if shared {
		s.logger.DebugContext(ctx, "joined in-flight report run", slog.String("key", key))
	}
	if err != nil {
		return nil, err
	}
	return v.(*RunResult), nil
}

// Latest returns the most recent successful run.
func (s *ReportService) Latest() (*RunResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, errors.ErrReportNotFound
	}
	return s.latest, nil
}

func (s *ReportService) run(ctx context.Context, opts RunOptions) (result *RunResult, err error) {
	ctx, runID := infrastructure.NewRunContext(ctx)
	start := s.now()

	ctx, span := s.tracer.Start(ctx, "report.run", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.Bool("run.dry_run", opts.DryRun),
	))
	defer span.End()

	defer func() {
		if rec := recover(); rec != nil {
			err = errors.NewInternalAppError("report run panicked", fmt.Errorf("%v", rec))
			result = nil
		}
		elapsed := s.now().Sub(start)
		s.metrics.RecordRun(ctx, elapsed, err)
		if err != nil {
			infrastructure.RecordError(ctx, err)
			s.logger.ErrorContext(ctx, "report run failed",
				slog.String("error", err.Error()),
				slog.String("error_type", string(errors.TypeOf(err))),
				slog.Duration("duration", elapsed))
		}
	}()

	today, err := s.today(opts)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "report run started",
		slog.String("today", dataprocessing.FormatDate(today)),
		slog.Bool("dry_run", opts.DryRun))

	grid, ids, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	report, err := s.processor.Process(ctx, grid, ids, today)
	if err != nil {
		return nil, err
	}
	tables := s.renderer.Render(report)
	s.metrics.RecordReport(ctx, report, tables)

	result = &RunResult{
		RunID:     runID,
		StartedAt: start,
		DryRun:    opts.DryRun,
		Report:    report,
		Tables:    tables,
	}

	if !opts.DryRun && s.sink != nil {
		if err := s.sink.Commit(ctx, tables); err != nil {
			return nil, err
		}
		result.Sinks = sinkNames(s.sink)
	}

	result.FinishedAt = s.now()
	s.mu.Lock()
	s.latest = result
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "report run completed",
		slog.Int("tables", len(tables)),
		slog.Any("sinks", result.Sinks),
		slog.Duration("duration", result.FinishedAt.Sub(start)))
	return result, nil
}

// load reads both source windows and parses them. The source is closed before
// any sink runs, since a sink may rewrite the same workbook.
func (s *ReportService) load(ctx context.Context) (*domain.Grid, domain.IdentifierTable, error) {
	ctx, span := s.tracer.Start(ctx, "load_source")
	defer span.End()

	src, err := s.open(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer src.Close()

	rng, err := workbook.ParseRange(s.source.GanttRange)
	if err != nil {
		return nil, nil, errors.NewConfigError("invalid schedule range", err).
			WithContext("range", s.source.GanttRange)
	}

	window, err := src.ReadRange(ctx, s.source.GanttSheet, s.source.GanttRange)
	if err != nil {
		return nil, nil, err
	}
	grid, err := s.parser.ParseGantt(window, dataprocessing.Origin{
		Sheet: s.source.GanttSheet,
		Col:   rng.StartCol,
		Row:   rng.StartRow,
	})
	if err != nil {
		return nil, nil, err
	}

	idRows, err := src.ReadRange(ctx, s.source.IDSheet, s.source.IDRange)
	if err != nil {
		return nil, nil, err
	}
	ids := s.parser.ParseIdentifiers(idRows)

	s.logger.InfoContext(ctx, "source loaded",
		slog.Int("rows", len(grid.Rows)),
		slog.Int("dates", len(grid.Dates)),
		slog.Int("identifiers", len(ids)))
	return grid, ids, nil
}

func (s *ReportService) today(opts RunOptions) (time.Time, error) {
	pinned := opts.Today
	if pinned == "" {
		pinned = s.pinned
	}
	if pinned == "" {
		return dataprocessing.CalendarDay(s.now(), s.loc), nil
	}
	day, err := time.Parse(domain.DateLayout, pinned)
	if err != nil {
		return time.Time{}, errors.NewAppError(errors.ErrTypeValidation, "report date must be DD/MM/YY", ErrInvalidDate).
			WithContext("today", pinned)
	}
	return day, nil
}

func sinkNames(sink workbook.Sink) []string {
	if multi, ok := sink.(*workbook.MultiSink); ok {
		names := make([]string, 0, len(multi.Sinks()))
		for _, s := range multi.Sinks() {
			names = append(names, s.Name())
		}
		return names
	}
	return []string{sink.Name()}
}
