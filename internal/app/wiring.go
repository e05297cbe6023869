package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"ganttcli/internal/config"
	"ganttcli/internal/errors"
	"ganttcli/internal/exporter"
	"ganttcli/internal/services"
	"ganttcli/internal/workbook"
)

// Output target names accepted in output.targets.
const (
	TargetSource   = "source"
	TargetWorkbook = "workbook"
	TargetGSheets  = "gsheets"
	TargetCSV      = "csv"
	TargetSQLite   = "sqlite"
)

// NewSourceOpener returns an opener for the configured schedule source. Google
// Sheets clients are created once and shared by every run.
func NewSourceOpener(ctx context.Context, cfg config.SourceConfig, logger *slog.Logger) (services.SourceOpener, error) {
	switch cfg.Kind {
	case TargetWorkbook:
		path := cfg.WorkbookPath
		return func(context.Context) (workbook.Source, error) {
			return workbook.OpenExcelSource(path, logger)
		}, nil
	case TargetGSheets:
		sheets, err := workbook.NewGoogleSheets(ctx, cfg.SpreadsheetID, cfg.CredentialsFile, logger)
		if err != nil {
			return nil, err
		}
		return func(context.Context) (workbook.Source, error) {
			return sheets, nil
		}, nil
	default:
		return nil, errors.NewConfigError(fmt.Sprintf("unknown source kind %q", cfg.Kind), nil)
	}
}

// NewSink builds one sink per output target, in order, and fans them out
// through a MultiSink. The returned closers release sinks holding resources.
func NewSink(ctx context.Context, cfg *config.Config, paths *config.Paths, observer workbook.CommitObserver, logger *slog.Logger) (*workbook.MultiSink, []io.Closer, error) {
	var (
		sinks   []workbook.Sink
		closers []io.Closer
	)
	fail := func(err error) (*workbook.MultiSink, []io.Closer, error) {
		for _, c := range closers {
			c.Close()
		}
		return nil, nil, err
	}

	for _, target := range cfg.Output.Targets {
		// "source" writes back to the medium the schedule was read from.
		fromSource := target == TargetSource
		if fromSource {
			target = cfg.Source.Kind
		}

		switch target {
		case TargetWorkbook:
			path := firstNonEmpty(cfg.Output.WorkbookPath, cfg.Source.WorkbookPath)
			if fromSource {
				path = cfg.Source.WorkbookPath
			}
			if path == "" {
				return fail(errors.NewConfigError("workbook output needs a path", nil))
			}
			sinks = append(sinks, workbook.NewExcelSink(path, logger))

		case TargetGSheets:
			id := firstNonEmpty(cfg.Output.SpreadsheetID, cfg.Source.SpreadsheetID)
			if fromSource {
				id = cfg.Source.SpreadsheetID
			}
			if id == "" {
				return fail(errors.NewConfigError("sheets output needs a spreadsheet id", nil))
			}
			sheets, err := workbook.NewGoogleSheets(ctx, id, cfg.Source.CredentialsFile, logger)
			if err != nil {
				return fail(err)
			}
			sinks = append(sinks, sheets)

		case TargetCSV:
			sinks = append(sinks, exporter.NewCSVSink(paths, cfg.Output.CSVDir, logger))

		case TargetSQLite:
			sink, err := workbook.OpenSQLiteSink(cfg.Output.SQLitePath, logger)
			if err != nil {
				return fail(err)
			}
			sinks = append(sinks, sink)
			closers = append(closers, sink)

		default:
			return fail(errors.NewConfigError(fmt.Sprintf("unknown output target %q", target), nil))
		}
	}

	return workbook.NewMultiSink(logger, observer, sinks...), closers, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
