package infrastructure

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ganttcli/internal/config"
	"ganttcli/internal/shared/testutil"
	"ganttcli/pkg/contracts/domain"
)

func newTestProviders(t *testing.T, cfg *OTelConfig) *OTelProviders {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	providers, err := InitializeOTel(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = providers.Shutdown(context.Background())
	})
	return providers
}

func scrape(t *testing.T, providers *OTelProviders) string {
	t.Helper()
	srv := httptest.NewServer(providers.PrometheusHTTP)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestInitializeOTel_Defaults(t *testing.T) {
	providers := newTestProviders(t, nil)

	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Registry)
	assert.NotNil(t, providers.PrometheusHTTP)

	body := scrape(t, providers)
	assert.Contains(t, body, "go_goroutines")
}

func TestInitializeOTel_StdoutTracing(t *testing.T) {
	var spans bytes.Buffer
	cfg := DefaultOTelConfig()
	cfg.TraceExporter = "stdout"
	cfg.TraceWriter = &spans
	cfg.EnableMetrics = false

	providers := newTestProviders(t, cfg)
	require.NotNil(t, providers.TracerProvider)
	assert.Nil(t, providers.Registry)

	ctx, span := providers.Tracer.Start(context.Background(), "report.run")
	traceID := TraceIDFromContext(ctx)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)

	RecordError(ctx, stderrors.New("sheet missing"))
	span.End()

	assert.Contains(t, spans.String(), "report.run")
	assert.Contains(t, spans.String(), "sheet missing")
}

func TestInitializeOTel_UnsupportedExporter(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.TraceExporter = "jaeger"

	_, err := InitializeOTel(cfg, nil)
	assert.ErrorContains(t, err, "unsupported trace exporter")
}

func TestOTelConfigFromConfig(t *testing.T) {
	cfg := OTelConfigFromConfig(config.TelemetryConfig{Tracing: "stdout"}, "1.2.3")
	assert.Equal(t, config.AppName, cfg.ServiceName)
	assert.Equal(t, "1.2.3", cfg.ServiceVersion)
	assert.Equal(t, "stdout", cfg.TraceExporter)
	assert.True(t, cfg.EnableMetrics)

	cfg = OTelConfigFromConfig(config.TelemetryConfig{ServiceName: "night-shift"}, "dev")
	assert.Equal(t, "night-shift", cfg.ServiceName)
}

func TestTraceIDFromContext_NoSpan(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))
}

func TestReportMetrics_Exported(t *testing.T) {
	providers := newTestProviders(t, nil)
	metrics, err := NewReportMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	report := &domain.Report{Entities: []domain.Entity{{Name: "Alice"}, {Name: "Bob"}}}
	tables := []domain.Table{
		{Name: "Summary", Rows: [][]domain.Cell{{domain.TextCell("Alice")}, {domain.TextCell("Bob")}}},
	}

	metrics.RecordRun(ctx, 250*time.Millisecond, nil)
	metrics.RecordRun(ctx, time.Second, stderrors.New("boom"))
	metrics.RecordReport(ctx, report, tables)
	metrics.RecordSinkCommit(ctx, "csv", 10*time.Millisecond, nil)

	body := scrape(t, providers)
	for _, want := range []string{
		"report_runs_total",
		`status="success"`,
		`status="failure"`,
		"report_run_duration_seconds",
		"report_entities_indexed_total",
		`report_rows_written_total{`,
		`table="Summary"`,
		"report_sink_commits_total",
		`sink="csv"`,
		"report_sink_commit_duration_seconds",
	} {
		assert.Contains(t, body, want)
	}
}

func TestReportMetrics_NilSafe(t *testing.T) {
	var metrics *ReportMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		metrics.RecordRun(ctx, time.Second, nil)
		metrics.RecordReport(ctx, &domain.Report{}, nil)
		metrics.RecordSinkCommit(ctx, "csv", time.Second, nil)
	})
}

func TestWriteMetricsTextfile(t *testing.T) {
	providers := newTestProviders(t, nil)
	metrics, err := NewReportMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.RecordRun(context.Background(), time.Second, nil)

	path := filepath.Join(t.TempDir(), "ganttreport.prom")
	require.NoError(t, providers.WriteMetricsTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "report_runs_total")

	assert.NoError(t, (&OTelProviders{}).WriteMetricsTextfile(path))
}

func TestProcessMonitor(t *testing.T) {
	monitor := NewProcessMonitor()
	stats := monitor.Snapshot()

	assert.Positive(t, stats.Goroutines)
	assert.Positive(t, stats.CPUCount)
	assert.GreaterOrEqual(t, stats.Uptime, time.Duration(0))

	formatted := stats.FormatStats()
	assert.Contains(t, formatted, "runtime")
	assert.Contains(t, formatted, "system")

	providers := newTestProviders(t, nil)
	require.NoError(t, monitor.RegisterGauges(providers.Meter))

	body := scrape(t, providers)
	assert.Contains(t, body, "process_goroutines")
	assert.Contains(t, body, "process_uptime_seconds")
}
