package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// ProcessStats is a point-in-time snapshot of the Go runtime, reported by the
// health endpoint.
type ProcessStats struct {
	Goroutines  int
	HeapAlloc   uint64
	HeapSys     uint64
	GCCount     uint32
	LastGCPause time.Duration
	CPUCount    int
	Uptime      time.Duration
	Timestamp   time.Time
}

// ProcessMonitor reads runtime statistics on demand. Its gauges are
// observable, so nothing polls in the background.
type ProcessMonitor struct {
	startTime time.Time
	now       func() time.Time
}

// NewProcessMonitor returns a monitor whose uptime counts from now.
func NewProcessMonitor() *ProcessMonitor {
	return &ProcessMonitor{startTime: time.Now(), now: time.Now}
}

// Snapshot collects the current runtime statistics.
func (pm *ProcessMonitor) Snapshot() ProcessStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	stats := ProcessStats{
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  m.HeapAlloc,
		HeapSys:    m.HeapSys,
		GCCount:    m.NumGC,
		CPUCount:   runtime.NumCPU(),
		Timestamp:  pm.now(),
	}
	stats.Uptime = stats.Timestamp.Sub(pm.startTime)
	if m.NumGC > 0 {
		stats.LastGCPause = time.Duration(m.PauseNs[(m.NumGC+255)%256])
	}
	return stats
}

// RegisterGauges exposes uptime and goroutine count as observable gauges on
// meter.
func (pm *ProcessMonitor) RegisterGauges(meter metric.Meter) error {
	uptime, err := meter.Float64ObservableGauge(
		"process_uptime",
		metric.WithDescription("Time since the process started"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create uptime gauge: %w", err)
	}

	goroutines, err := meter.Int64ObservableGauge(
		"process_goroutines",
		metric.WithDescription("Number of live goroutines"),
	)
	if err != nil {
		return fmt.Errorf("failed to create goroutine gauge: %w", err)
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveFloat64(uptime, pm.now().Sub(pm.startTime).Seconds())
		o.ObserveInt64(goroutines, int64(runtime.NumGoroutine()))
		return nil
	}, uptime, goroutines)
	return err
}

// FormatStats returns a JSON-friendly view of the snapshot
func (stats ProcessStats) FormatStats() map[string]interface{} {
	return map[string]interface{}{
		"runtime": map[string]interface{}{
			"goroutines":       stats.Goroutines,
			"heap_alloc_mb":    stats.HeapAlloc / 1024 / 1024,
			"heap_sys_mb":      stats.HeapSys / 1024 / 1024,
			"gc_count":         stats.GCCount,
			"last_gc_pause_ms": stats.LastGCPause.Milliseconds(),
		},
		"system": map[string]interface{}{
			"cpu_count":      stats.CPUCount,
			"uptime_seconds": stats.Uptime.Seconds(),
		},
		"timestamp": stats.Timestamp.Format(time.RFC3339),
	}
}
