package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ganttcli/internal/config"
	"ganttcli/internal/shared/testutil"
	handlers "ganttcli/internal/transport/http"
)

func writeFixtureWorkbook(t *testing.T, path string) {
	t.Helper()
	testutil.WriteScheduleWorkbook(t, path, config.DefaultGanttSheet, config.DefaultIDSheet)
}

func testAppConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	writeFixtureWorkbook(t, filepath.Join(dir, "schedule.xlsx"))

	cfg := config.Default()
	cfg.Paths.BaseDir = dir
	cfg.Source.WorkbookPath = "schedule.xlsx"
	cfg.Output.Targets = []string{TargetSource, TargetCSV, TargetSQLite}
	cfg.Output.CSVDir = "out"
	cfg.Output.SQLitePath = "out/report.db"
	cfg.Report.TimeZone = "UTC"
	cfg.Report.Today = "02/01/24"
	cfg.Server.RateLimit.Enabled = false
	cfg.Telemetry.MetricsTextfile = "metrics/ganttreport.prom"
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	a, err := New(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestApplication_EndToEnd(t *testing.T) {
	cfg := testAppConfig(t)
	a := newTestApp(t, cfg)
	require.NotNil(t, a.Sink)
	assert.Len(t, a.Sink.Sinks(), 3)
	assert.DirExists(t, filepath.Dir(cfg.Output.SQLitePath), "database directory is created at startup")

	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	status, _ := get(t, srv.URL+"/api/reports/latest")
	assert.Equal(t, http.StatusNotFound, status)

	resp, err := http.Post(srv.URL+"/api/reports/run", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var run handlers.RunResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
	assert.NotEmpty(t, run.RunID)
	assert.Equal(t, []string{"workbook", "csv", "sqlite"}, run.Sinks)
	require.Len(t, run.Tables, 4)
	assert.Equal(t, handlers.TableSummary{Name: "Summary", Rows: 4}, run.Tables[0])

	status, body := get(t, srv.URL+"/api/reports/latest/Summary?format=csv")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Alice,101,01/01/24-02/01/24")

	status, _ = get(t, srv.URL+"/api/reports/latest/Missing")
	assert.Equal(t, http.StatusNotFound, status)

	status, body = get(t, srv.URL+"/api/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"status":"ok"`)

	status, body = get(t, srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "report_runs_total")
	assert.Contains(t, body, `sink="sqlite"`)

	assert.FileExists(t, filepath.Join(cfg.Output.CSVDir, "Summary.csv"))
	assert.FileExists(t, cfg.Output.SQLitePath)

	f, err := excelize.OpenFile(cfg.Source.WorkbookPath)
	require.NoError(t, err)
	defer f.Close()
	for _, sheet := range cfg.SheetNames() {
		idx, err := f.GetSheetIndex(sheet)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, idx, 0, sheet)
	}

	require.NoError(t, a.Close(context.Background()))
	data, err := os.ReadFile(cfg.Telemetry.MetricsTextfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "report_runs_total")
}

func TestApplication_RunValidation(t *testing.T) {
	a := newTestApp(t, testAppConfig(t))
	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"iso date", `{"today":"2024-01-02"}`, http.StatusBadRequest},
		{"malformed", `{"today":`, http.StatusBadRequest},
		{"dry run", `{"today":"03/01/24","dry_run":true}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/reports/run", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestApplication_RateLimitedRuns(t *testing.T) {
	cfg := testAppConfig(t)
	cfg.Output.Targets = []string{TargetCSV}
	cfg.Server.RateLimit.Enabled = true
	cfg.Server.RateLimit.RPS = 0.001
	cfg.Server.RateLimit.Burst = 1

	a := newTestApp(t, cfg)
	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	codes := make([]int, 2)
	for i := range codes {
		resp, err := http.Post(srv.URL+"/api/reports/run", "application/json", strings.NewReader(`{"dry_run":true}`))
		require.NoError(t, err)
		resp.Body.Close()
		codes[i] = resp.StatusCode
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)

	// Reads are not limited.
	status, _ := get(t, srv.URL+"/api/reports/latest")
	assert.Equal(t, http.StatusOK, status)
}

func TestApplication_MissingWorkbook(t *testing.T) {
	cfg := testAppConfig(t)
	cfg.Source.WorkbookPath = "missing.xlsx"
	cfg.Output.Targets = []string{TargetCSV}

	a := newTestApp(t, cfg)
	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/reports/run", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
