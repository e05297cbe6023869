package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"ganttcli/internal/config"
	"ganttcli/internal/errors"
	"ganttcli/internal/infrastructure"
	customMiddleware "ganttcli/internal/middleware"
	"ganttcli/internal/services"
	handlers "ganttcli/internal/transport/http"
	"ganttcli/internal/workbook"
	"ganttcli/pkg/contracts"
)

// Application holds the wired components shared by every command
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.ReportMetrics
	Sink          *workbook.MultiSink
	Reports       *services.ReportService
	Health        *services.HealthService
	Router        *chi.Mux
	Server        *http.Server

	closers []io.Closer
}

// New wires an application from cfg. Relative paths in cfg are resolved
// against the configured base directory.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	paths, err := config.GetPaths(cfg.Paths.BaseDir)
	if err != nil {
		return nil, errors.NewConfigError("failed to resolve paths", err)
	}
	paths.ResolveConfig(cfg)
	paths.LogPathResolution(logger, cfg)

	otelProviders, err := infrastructure.InitializeOTel(
		infrastructure.OTelConfigFromConfig(cfg.Telemetry, contracts.Version), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.NewReportMetrics(otelProviders.Meter)
	if err != nil {
		otelProviders.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create report metrics: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
	}

	if err := a.initializeServices(ctx); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return a, nil
}

// initializeServices builds the source, the sinks and the services on top
func (a *Application) initializeServices(ctx context.Context) error {
	open, err := NewSourceOpener(ctx, a.Config.Source, a.Logger)
	if err != nil {
		return err
	}

	sink, closers, err := NewSink(ctx, a.Config, a.Paths, a.Metrics.RecordSinkCommit, a.Logger)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, closers...)
	a.Sink = sink

	reports, err := services.NewReportService(a.Config, open, sink, a.Metrics, a.Logger)
	if err != nil {
		return err
	}
	a.Reports = reports

	a.Health = services.NewHealthService(contracts.Version, reports, a.Logger)
	if a.OTelProviders.MeterProvider != nil {
		if err := a.Health.Monitor().RegisterGauges(a.OTelProviders.Meter); err != nil {
			return fmt.Errorf("failed to register process gauges: %w", err)
		}
	}

	a.Logger.DebugContext(ctx, "services initialized",
		slog.String("source", a.Config.Source.Kind),
		slog.Any("targets", a.Config.Output.Targets))
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := errors.NewErrorHandler(a.Logger, a.Config.Logging.Level == "debug")
	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	// RequestID → RealIP → OTel → Logger → Recoverer
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	if a.OTelProviders.MeterProvider != nil {
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.OTelProviders.Meter)
		if err != nil {
			a.Logger.Error("failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}
	}
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger, errorHandler))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.StripSlashes)

	runLimiter := func(next http.Handler) http.Handler { return next }
	if rl := a.Config.Server.RateLimit; rl.Enabled {
		runLimiter = customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger, errorHandler).Handler
	}

	validator := customMiddleware.NewValidationMiddleware(a.Logger, errorHandler)
	healthHandler := handlers.NewHealthHandler(a.Health, a.Logger)
	reportHandler := handlers.NewReportHandler(a.Reports, validator, errorHandler, a.Config.Server.RunTimeout, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/version", healthHandler.Version)
		r.Mount("/reports", reportHandler.Routes(runLimiter))
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// Handler returns the HTTP handler, building the router on first use.
func (a *Application) Handler() http.Handler {
	if a.Router == nil {
		a.setupRouter()
	}
	return a.Router
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Handler(),
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully.
func (a *Application) Serve(ctx context.Context) error {
	a.createServer()

	errCh := make(chan error, 1)
	go func() {
		a.Logger.InfoContext(ctx, "server listening",
			slog.String("addr", a.Server.Addr),
			slog.String("version", contracts.Version))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.Logger.InfoContext(ctx, "shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return <-errCh
}

// Close flushes metrics to the configured textfile, releases sinks and shuts
// telemetry down. It is safe to call more than once.
func (a *Application) Close(ctx context.Context) error {
	var firstErr error
	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for _, c := range a.closers {
		record(c.Close())
	}
	a.closers = nil

	if a.OTelProviders != nil {
		record(a.OTelProviders.WriteMetricsTextfile(a.Config.Telemetry.MetricsTextfile))

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		record(a.OTelProviders.Shutdown(shutdownCtx))
		a.OTelProviders = nil
	}

	return firstErr
}
