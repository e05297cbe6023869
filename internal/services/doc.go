// Package services holds the report run orchestration shared by the CLI, the
// file watcher and the HTTP trigger.
//
// ReportService is the single entry point of the transform:
//
//	svc, err := services.NewReportService(cfg, open, sink, metrics, logger)
//	result, err := svc.Run(ctx, services.RunOptions{})
//
// A run opens the configured source, reads the schedule and identifier
// windows, derives the report, renders the output tables and commits them to
// the sink. Runs with identical options that overlap are merged, and the last
// successful result stays available through Latest.
//
// HealthService reports process statistics and the state of the last run for
// the health endpoint.
package services
