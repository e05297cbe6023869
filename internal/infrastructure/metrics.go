package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"ganttcli/pkg/contracts/domain"
)

// Run outcomes recorded on report_runs_total.
const (
	RunStatusSuccess = "success"
	RunStatusFailure = "failure"
)

// ReportMetrics holds the instruments of report runs. A nil *ReportMetrics
// records nothing.
type ReportMetrics struct {
	runsTotal       metric.Int64Counter
	runDuration     metric.Float64Histogram
	entitiesIndexed metric.Int64Counter
	rowsWritten     metric.Int64Counter
	sinkCommits     metric.Int64Counter
	sinkDuration    metric.Float64Histogram
}

// NewReportMetrics creates the report instruments on meter.
func NewReportMetrics(meter metric.Meter) (*ReportMetrics, error) {
	runsTotal, err := meter.Int64Counter(
		"report_runs",
		metric.WithDescription("Total number of report runs by outcome"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"report_run_duration",
		metric.WithDescription("Report run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	entitiesIndexed, err := meter.Int64Counter(
		"report_entities_indexed",
		metric.WithDescription("Total number of entities indexed across runs"),
	)
	if err != nil {
		return nil, err
	}

	rowsWritten, err := meter.Int64Counter(
		"report_rows_written",
		metric.WithDescription("Total number of table rows rendered per output table"),
	)
	if err != nil {
		return nil, err
	}

	sinkCommits, err := meter.Int64Counter(
		"report_sink_commits",
		metric.WithDescription("Total number of sink commits by sink and outcome"),
	)
	if err != nil {
		return nil, err
	}

	sinkDuration, err := meter.Float64Histogram(
		"report_sink_commit_duration",
		metric.WithDescription("Sink commit duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &ReportMetrics{
		runsTotal:       runsTotal,
		runDuration:     runDuration,
		entitiesIndexed: entitiesIndexed,
		rowsWritten:     rowsWritten,
		sinkCommits:     sinkCommits,
		sinkDuration:    sinkDuration,
	}, nil
}

// RecordRun records one finished run.
func (m *ReportMetrics) RecordRun(ctx context.Context, d time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("status", status(err)))
	m.runsTotal.Add(ctx, 1, attrs)
	m.runDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordReport records the entity count and rendered rows of a run.
func (m *ReportMetrics) RecordReport(ctx context.Context, report *domain.Report, tables []domain.Table) {
	if m == nil {
		return
	}
	if report != nil {
		m.entitiesIndexed.Add(ctx, int64(len(report.Entities)))
	}
	for _, t := range tables {
		m.rowsWritten.Add(ctx, int64(len(t.Rows)), metric.WithAttributes(attribute.String("table", t.Name)))
	}
}

// RecordSinkCommit records one sink commit. Its signature matches
// workbook.CommitObserver.
func (m *ReportMetrics) RecordSinkCommit(ctx context.Context, sink string, d time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("sink", sink),
		attribute.String("status", status(err)),
	)
	m.sinkCommits.Add(ctx, 1, attrs)
	m.sinkDuration.Record(ctx, d.Seconds(), attrs)
}

func status(err error) string {
	if err != nil {
		return RunStatusFailure
	}
	return RunStatusSuccess
}
