package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ganttcli/internal/config"
	"ganttcli/internal/errors"
	"ganttcli/internal/files"
	"ganttcli/internal/services"
	handlers "ganttcli/internal/transport/http"
	"ganttcli/internal/validation"
	"ganttcli/internal/workbook"
	"ganttcli/pkg/contracts"
)

func newRunCommand(o *rootOptions) *cobra.Command {
	var (
		opts       services.RunOptions
		format     string
		printTable string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build the report once and write it to every output target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if format != "text" && format != "json" {
				return errors.NewAppValidationError(fmt.Sprintf("unknown output format %q", format))
			}

			a, err := o.openApp(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer closeApp(cmd.Context(), a, &err)

			result, err := a.Reports.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			if printTable != "" {
				return writeTableCSV(o.stdout, result, printTable)
			}
			return writeResult(o.stdout, result, format)
		},
	}

	cmd.Flags().StringVar(&opts.Today, "today", "", "report date as DD/MM/YY (default: report.today or the current day)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "build the report without committing it")
	cmd.Flags().StringVarP(&format, "output", "o", "text", "result format: text or json")
	cmd.Flags().StringVar(&printTable, "print", "", "write the named table to stdout as CSV instead of the summary")
	return cmd
}

func newCheckCommand(o *rootOptions) *cobra.Command {
	var parse bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and the files it points at",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := o.loadConfig()
			if err != nil {
				return err
			}
			logger, err := o.newLogger(cfg)
			if err != nil {
				return err
			}

			problems := validation.NewFileValidator(logger).CheckConfig(cfg)
			for _, p := range problems {
				fmt.Fprintf(o.stdout, "FAIL %s: %s\n", p.Field, p.Message)
			}
			if len(problems) > 0 {
				return errors.NewAppValidationError(fmt.Sprintf("%d configuration problem(s)", len(problems)))
			}
			fmt.Fprintln(o.stdout, "configuration OK")

			if !parse {
				return nil
			}

			a, err := o.openApp(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer closeApp(cmd.Context(), a, &err)

			result, err := a.Reports.Run(cmd.Context(), services.RunOptions{DryRun: true})
			if err != nil {
				return err
			}
			fmt.Fprintf(o.stdout, "schedule OK: %d entities\n", len(result.Report.Entities))
			return nil
		},
	}

	cmd.Flags().BoolVar(&parse, "parse", false, "also read and parse the schedule without writing anything")
	return cmd
}

func newWatchCommand(o *rootOptions) *cobra.Command {
	var (
		debounce    time.Duration
		skipInitial bool
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the report whenever the source workbook changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()
			a, err := o.openApp(ctx, func(cfg *config.Config) {
				if cmd.Flags().Changed("debounce") {
					cfg.Watch.Debounce = debounce
				}
			})
			if err != nil {
				return err
			}
			defer closeApp(ctx, a, &err)

			w, err := newWorkbookWatcher(a.Config, a.Reports, a.Sink, dryRun, a.Logger)
			if err != nil {
				return err
			}

			if !skipInitial {
				if _, err := a.Reports.Run(ctx, services.RunOptions{DryRun: dryRun}); err != nil {
					a.Logger.ErrorContext(ctx, "initial run failed", slog.String("error", err.Error()))
				}
			}
			return w.Run(ctx)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", config.DefaultWatchDebounce, "quiet period after the last change before running")
	cmd.Flags().BoolVar(&skipInitial, "skip-initial", false, "wait for the first change instead of running at start")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "build reports without committing them")
	return cmd
}

func newServeCommand(o *rootOptions) *cobra.Command {
	var (
		port  int
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the report API and metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, err := o.openApp(cmd.Context(), func(cfg *config.Config) {
				if cmd.Flags().Changed("port") {
					cfg.Server.Port = port
				}
			})
			if err != nil {
				return err
			}
			defer closeApp(cmd.Context(), a, &err)

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error { return a.Serve(ctx) })

			if watch {
				w, err := newWorkbookWatcher(a.Config, a.Reports, a.Sink, false, a.Logger)
				if err != nil {
					return err
				}
				g.Go(func() error { return w.Run(ctx) })
			}
			return g.Wait()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "listen port (overrides server.port)")
	cmd.Flags().BoolVar(&watch, "watch", false, "also re-run the report when the source workbook changes")
	return cmd
}

func newVersionCommand(o *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				enc := json.NewEncoder(o.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(contracts.GetVersionInfo())
			}
			_, err := fmt.Fprintln(o.stdout, contracts.GetFullVersionString())
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

// newWorkbookWatcher watches the source workbook. Saves that workbook sinks in
// sink make to the watched file are reported to the watcher so they do not
// trigger another run.
func newWorkbookWatcher(cfg *config.Config, reports *services.ReportService, sink *workbook.MultiSink, dryRun bool, logger *slog.Logger) (*files.Watcher, error) {
	if cfg.Source.Kind != "workbook" {
		return nil, errors.NewConfigError("watch needs a workbook source", nil).
			WithContext("source_kind", cfg.Source.Kind)
	}
	run := func(ctx context.Context) error {
		_, err := reports.Run(ctx, services.RunOptions{DryRun: dryRun})
		return err
	}
	w, err := files.NewWatcher(cfg.Source.WorkbookPath, cfg.Watch.Debounce, run, logger)
	if err != nil {
		return nil, err
	}
	if sink != nil {
		for _, s := range sink.Sinks() {
			if excel, ok := s.(*workbook.ExcelSink); ok {
				excel.OnSave(w.RecordWrite)
			}
		}
	}
	return w, nil
}

func writeResult(w io.Writer, result *services.RunResult, format string) error {
	resp := handlers.NewRunResponse(result)
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	mode := "committed to " + strings.Join(resp.Sinks, ", ")
	if resp.DryRun {
		mode = "dry run"
	}
	fmt.Fprintf(w, "run %s (%s)\n", resp.RunID, mode)
	for _, t := range resp.Tables {
		fmt.Fprintf(w, "  %-12s %d rows\n", t.Name, t.Rows)
	}
	return nil
}

func writeTableCSV(w io.Writer, result *services.RunResult, name string) error {
	table, ok := result.Table(name)
	if !ok {
		return errors.NewNotFoundError("table " + name)
	}
	cw := csv.NewWriter(w)
	return cw.WriteAll(table.Records())
}
