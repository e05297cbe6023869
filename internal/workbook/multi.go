package workbook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ganttcli/pkg/contracts/domain"
)

// CommitObserver is told the outcome of every sink commit.
type CommitObserver func(ctx context.Context, sink string, d time.Duration, err error)

// MultiSink commits to several sinks in order and stops at the first failure.
type MultiSink struct {
	sinks    []Sink
	logger   *slog.Logger
	observer CommitObserver
}

// NewMultiSink combines sinks. A nil observer is allowed.
func NewMultiSink(logger *slog.Logger, observer CommitObserver, sinks ...Sink) *MultiSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &MultiSink{sinks: sinks, logger: logger, observer: observer}
}

// Name identifies the sink in logs and metrics.
func (m *MultiSink) Name() string {
	return "multi"
}

// Sinks returns the combined sinks in commit order.
func (m *MultiSink) Sinks() []Sink {
	return m.sinks
}

// Commit writes tables to every sink. Sinks already committed are not rolled
// back when a later one fails.
func (m *MultiSink) Commit(ctx context.Context, tables []domain.Table) error {
	for _, sink := range m.sinks {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		err := sink.Commit(ctx, tables)
		if m.observer != nil {
			m.observer(ctx, sink.Name(), time.Since(start), err)
		}
		if err != nil {
			m.logger.ErrorContext(ctx, "sink commit failed",
				slog.String("sink", sink.Name()),
				slog.String("error", err.Error()))
			return fmt.Errorf("commit to %s: %w", sink.Name(), err)
		}
	}
	return nil
}
