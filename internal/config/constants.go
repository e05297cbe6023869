package config

import "time"

// Application constants
const (
	// Application Info
	AppName = "ganttreport"

	// DateLayout is the DD/MM/YY layout of every rendered date.
	DateLayout = "02/01/06"

	// Source windows
	DefaultGanttSheet = "Gantt chart"
	DefaultGanttRange = "A3:AT100"
	DefaultIDSheet    = "ID"
	DefaultIDRange    = "A:D"

	// Output sheets
	DefaultSummarySheet        = "Summary"
	DefaultTransitionsSheet    = "Kishur"
	DefaultCategoryReportSheet = "Report1"
	DefaultCounterSheet        = "Counter"

	// Timeouts
	DefaultRunTimeout    = 2 * time.Minute
	DefaultWatchDebounce = 2 * time.Second

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// API Endpoints
	APIBasePath     = "/api"
	ReportsEndpoint = "/api/reports"
	HealthEndpoint  = "/api/health"
	MetricsEndpoint = "/metrics"
)
