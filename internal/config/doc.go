// Package config provides centralized configuration management for ganttreport.
// It handles loading configuration from multiple sources, validation, and
// path resolution.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file (--config, else config.yaml or configs/config.yaml)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern GANTT_<SECTION>_<KEY>:
//
//	GANTT_SOURCE_KIND=gsheets
//	GANTT_SOURCE_SPREADSHEET_ID=1AbC...
//	GANTT_OUTPUT_TARGETS=source,sqlite
//	GANTT_REPORT_TIME_ZONE=Asia/Jerusalem
//	GANTT_LOGGING_LEVEL=debug
//
// # Validation
//
// Validate uses go-playground/validator struct tags plus three custom tags:
// a1range for sheet ranges, tzname for time zones and ddmmyy for pinned dates.
// Settings that depend on each other (an output target and its location) are
// checked afterwards.
//
// # Paths
//
// Relative paths in the configuration resolve against paths.base_dir:
//
//	paths, err := config.GetPaths(cfg.Paths.BaseDir)
//	paths.ResolveConfig(cfg)
//
// # Testing
//
// Use config.Default() for a configuration that needs no environment or file.
package config
