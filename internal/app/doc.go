// Package app wires configuration, telemetry, sources, sinks and services
// into one Application shared by the CLI commands.
//
// # Initialization Flow
//
//	1. Resolve relative paths against the configured base directory
//	2. Initialize OpenTelemetry and the report metrics
//	3. Build the source opener and one sink per output target
//	4. Create the report and health services
//	5. Build the HTTP router on demand (serve command only)
//
// # Usage
//
//	a, err := app.New(ctx, cfg, logger)
//	if err != nil {
//	    return err
//	}
//	defer a.Close(ctx)
//	result, err := a.Reports.Run(ctx, services.RunOptions{})
//
// Close writes the metrics textfile when one is configured, releases sinks
// holding resources and shuts telemetry down. The package never calls
// os.Exit; errors go back to the command.
package app
