package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ganttcli/internal/app"
	"ganttcli/internal/config"
	"ganttcli/internal/infrastructure"
	"ganttcli/pkg/contracts"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx)
	infrastructure.CloseLogFile()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	baseDir    string
	logLevel   string

	stdout io.Writer
	stderr io.Writer
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	o := &rootOptions{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           config.AppName,
		Short:         "Build daily reports from a Gantt schedule workbook",
		Long:          "Reads the Gantt schedule and identifier sheets, derives the summary, transition, category and counter tables and writes them to the configured outputs.",
		Version:       contracts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate(contracts.GetFullVersionString() + "\n")

	root.PersistentFlags().StringVarP(&o.configPath, "config", "c", "", "config file (default: config.yaml or configs/config.yaml)")
	root.PersistentFlags().StringVar(&o.baseDir, "base-dir", "", "directory relative paths are resolved against")
	root.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	root.AddCommand(
		newRunCommand(o),
		newCheckCommand(o),
		newWatchCommand(o),
		newServeCommand(o),
		newVersionCommand(o),
	)
	return root
}

// loadConfig reads the configuration, applies flag overrides and resolves
// every relative path.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	if o.baseDir != "" || o.logLevel != "" {
		if o.baseDir != "" {
			cfg.Paths.BaseDir = o.baseDir
		}
		if o.logLevel != "" {
			cfg.Logging.Level = o.logLevel
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	paths, err := config.GetPaths(cfg.Paths.BaseDir)
	if err != nil {
		return nil, err
	}
	paths.ResolveConfig(cfg)
	return cfg, nil
}

func (o *rootOptions) newLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := infrastructure.NewLogger(cfg.Logging, o.stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = logger.With(slog.String("service", config.AppName))
	slog.SetDefault(logger)
	return logger, nil
}

// openApp loads the configuration, lets mutate adjust it and wires the
// application.
func (o *rootOptions) openApp(ctx context.Context, mutate func(*config.Config)) (*app.Application, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		mutate(cfg)
	}

	logger, err := o.newLogger(cfg)
	if err != nil {
		return nil, err
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.ErrorContext(ctx, "failed to start", slog.String("error", err.Error()))
		return nil, err
	}
	return a, nil
}

// closeApp releases a and reports the close error unless *errp is already set.
func closeApp(ctx context.Context, a *app.Application, errp *error) {
	if err := a.Close(context.WithoutCancel(ctx)); err != nil && *errp == nil {
		*errp = err
	}
}
