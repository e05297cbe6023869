package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"ganttcli/internal/infrastructure"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	reports   *ReportService
	monitor   *infrastructure.ProcessMonitor
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	LastRun string `json:"last_run,omitempty"`
}

// NewHealthService creates a health service. reports may be nil.
func NewHealthService(version string, reports *ReportService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		reports:   reports,
		monitor:   infrastructure.NewProcessMonitor(),
		startTime: time.Now(),
		logger:    logger,
	}
}

// Monitor returns the process monitor backing the runtime section.
func (hs *HealthService) Monitor() *infrastructure.ProcessMonitor {
	return hs.monitor
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime:   hs.monitor.Snapshot().FormatStats(),
		Services: map[string]interface{}{
			"report": hs.checkReportHealth(),
		},
	}

	hs.logger.DebugContext(ctx, "health check completed",
		slog.String("status", status.Status))
	return status
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	return map[string]interface{}{
		"version":    hs.version,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"start_time": hs.startTime.Format(time.RFC3339),
	}
}

func (hs *HealthService) checkReportHealth() ServiceHealth {
	if hs.reports == nil {
		return ServiceHealth{Status: "disabled"}
	}
	latest, err := hs.reports.Latest()
	if err != nil {
		return ServiceHealth{Status: "ready", Message: "no report generated yet"}
	}
	return ServiceHealth{
		Status:  "ready",
		LastRun: latest.FinishedAt.Format(time.RFC3339),
	}
}
