package http

import (
	"context"
	"encoding/csv"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "ganttcli/internal/errors"
	"ganttcli/internal/exporter"
	"ganttcli/internal/middleware"
	"ganttcli/internal/services"
	"ganttcli/pkg/contracts/domain"
)

// ReportHandler triggers report runs and serves the latest result
type ReportHandler struct {
	service      ReportServiceInterface
	validator    *middleware.ValidationMiddleware
	errorHandler *apierrors.ErrorHandler
	runTimeout   time.Duration
	logger       *slog.Logger
}

// TableResponse is a rendered table with plain cell values.
type TableResponse struct {
	Name   string          `json:"name"`
	Header []string        `json:"header"`
	Rows   [][]interface{} `json:"rows"`
}

// TableSummary names a table and its data row count.
type TableSummary struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
}

// RunResponse is the body of a finished run.
type RunResponse struct {
	RunID      string         `json:"run_id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	DryRun     bool           `json:"dry_run"`
	Sinks      []string       `json:"sinks"`
	Tables     []TableSummary `json:"tables"`
}

// LatestResponse is the body of GET /api/reports/latest.
type LatestResponse struct {
	RunID      string          `json:"run_id"`
	FinishedAt time.Time       `json:"finished_at"`
	Tables     []TableResponse `json:"tables"`
}

// NewRunResponse summarizes a run result.
func NewRunResponse(result *services.RunResult) RunResponse {
	resp := RunResponse{
		RunID:      result.RunID,
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
		DryRun:     result.DryRun,
		Sinks:      result.Sinks,
		Tables:     make([]TableSummary, len(result.Tables)),
	}
	for i, t := range result.Tables {
		resp.Tables[i] = TableSummary{Name: t.Name, Rows: len(t.Rows)}
	}
	return resp
}

// NewReportHandler creates a report handler. Runs started over HTTP are
// bounded by runTimeout.
func NewReportHandler(service ReportServiceInterface, validator *middleware.ValidationMiddleware, errorHandler *apierrors.ErrorHandler, runTimeout time.Duration, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		runTimeout:   runTimeout,
		logger:       logger.With(slog.String("handler", "report")),
	}
}

// Routes returns the report routes
func (h *ReportHandler) Routes(runLimiter func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.With(runLimiter, h.validator.ValidateRequest).Post("/run", h.Run)
	r.Get("/latest", h.Latest)
	r.Get("/latest/{table}", h.LatestTable)

	return r
}

// Run handles POST /api/reports/run
func (h *ReportHandler) Run(w http.ResponseWriter, r *http.Request) {
	var opts services.RunOptions
	if err := h.validator.DecodeAndValidate(r, &opts); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	ctx := r.Context()
	if h.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.runTimeout)
		defer cancel()
	}

	result, err := h.service.Run(ctx, opts)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "report run triggered over http",
		slog.String("run_id", result.RunID),
		slog.Bool("dry_run", result.DryRun))

	render.JSON(w, r, NewRunResponse(result))
}

// Latest handles GET /api/reports/latest
func (h *ReportHandler) Latest(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Latest()
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp := LatestResponse{
		RunID:      result.RunID,
		FinishedAt: result.FinishedAt,
		Tables:     make([]TableResponse, len(result.Tables)),
	}
	for i, t := range result.Tables {
		resp.Tables[i] = tableResponse(t)
	}
	render.JSON(w, r, resp)
}

// LatestTable handles GET /api/reports/latest/{table}?format=json|csv
func (h *ReportHandler) LatestTable(w http.ResponseWriter, r *http.Request) {
	format, ok := h.validator.ValidateEnum(w, r, "format", []string{"json", "csv"}, "json")
	if !ok {
		return
	}

	result, err := h.service.Latest()
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	name := chi.URLParam(r, "table")
	table, found := result.Table(name)
	if !found {
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError("table "+name))
		return
	}

	if format == "json" {
		render.JSON(w, r, tableResponse(table))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+exporter.FileName(table.Name)+`"`)
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(table.Records()); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to stream table",
			slog.String("table", table.Name),
			slog.String("error", err.Error()))
	}
}

func tableResponse(t domain.Table) TableResponse {
	rows := make([][]interface{}, len(t.Rows))
	for i, row := range t.Rows {
		values := make([]interface{}, len(row))
		for j, c := range row {
			values[j] = c.Value()
		}
		rows[i] = values
	}
	return TableResponse{Name: t.Name, Header: t.Header, Rows: rows}
}
