package http

import (
	"context"

	"ganttcli/internal/services"
)

// ReportServiceInterface defines the report operations the HTTP layer needs
type ReportServiceInterface interface {
	Run(ctx context.Context, opts services.RunOptions) (*services.RunResult, error)
	Latest() (*services.RunResult, error)
}
