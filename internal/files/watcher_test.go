package files

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "ganttcli/internal/errors"
	"ganttcli/internal/shared/testutil"
)

// startWatcher runs w in the background and stops it when the test ends.
func startWatcher(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case <-w.Ready():
	case err := <-done:
		t.Fatalf("watcher exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not start")
	}

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})
}

// touch rewrites path with a modification time distinct from anything before.
func touch(t *testing.T, path string, content string, offset time.Duration) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	mod := time.Now().Add(offset)
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestNewWatcher_Errors(t *testing.T) {
	run := func(context.Context) error { return nil }

	tests := []struct {
		name string
		path string
		run  RunFunc
	}{
		{name: "empty path", path: "", run: run},
		{name: "nil run", path: "schedule.xlsx", run: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWatcher(tt.path, time.Second, tt.run, nil)
			require.Error(t, err)
			assert.True(t, apierrors.IsType(err, apierrors.ErrTypeConfig))
		})
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "schedule.xlsx")
	w, err := NewWatcher(path, 10*time.Millisecond, func(context.Context) error { return nil }, nil)
	require.NoError(t, err)

	err = w.Run(context.Background())
	require.Error(t, err)
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeStorage))
}

func TestWatcher_RunsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schedule.xlsx")
	touch(t, path, "v1", -time.Hour)

	var runs atomic.Int32
	logger, _ := testutil.NewTestLogger(t)
	w, err := NewWatcher(path, 50*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	}, logger)
	require.NoError(t, err)
	startWatcher(t, w)

	touch(t, path, "v2", 0)
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, 5*time.Second, 10*time.Millisecond)

	// A burst of saves collapses into one run.
	for i := 0; i < 5; i++ {
		touch(t, path, "burst", time.Duration(i+1)*time.Minute)
	}
	assert.Eventually(t, func() bool { return runs.Load() == 2 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(2), runs.Load())

	stats := w.Stats()
	assert.Equal(t, 2, stats.Runs)
	assert.Zero(t, stats.Failures)
	assert.False(t, stats.LastRun.IsZero())
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schedule.xlsx")
	touch(t, path, "v1", -time.Hour)

	var runs atomic.Int32
	w, err := NewWatcher(path, 20*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	}, nil)
	require.NoError(t, err)
	startWatcher(t, w)

	touch(t, filepath.Join(dir, "other.xlsx"), "x", 0)
	touch(t, filepath.Join(dir, "~$schedule.xlsx"), "lock", 0)

	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, runs.Load())
	assert.Zero(t, w.Stats().Events)
}

func TestWatcher_IgnoresOwnWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schedule.xlsx")
	touch(t, path, "v1", -time.Hour)

	var (
		runs atomic.Int32
		w    *Watcher
	)
	w, err := NewWatcher(path, 30*time.Millisecond, func(context.Context) error {
		n := runs.Add(1)
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		// The report is committed back into the watched workbook.
		touch(t, path, "report", time.Duration(n)*time.Hour)
		saved, err := os.Stat(path)
		if err != nil {
			return err
		}
		w.RecordWrite(path, info.ModTime(), saved.ModTime())
		return nil
	}, nil)
	require.NoError(t, err)
	startWatcher(t, w)

	touch(t, path, "edit", 0)
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, 5*time.Second, 10*time.Millisecond)

	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
	assert.Eventually(t, func() bool { return w.Stats().Skipped >= 1 }, 5*time.Second, 10*time.Millisecond)
}

func TestWatcher_RerunsWhenSavedDuringRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schedule.xlsx")
	touch(t, path, "v1", -time.Hour)

	var runs atomic.Int32
	w, err := NewWatcher(path, 30*time.Millisecond, func(context.Context) error {
		if runs.Add(1) == 1 {
			// Someone saves the workbook while the first run is in progress.
			touch(t, path, "edited during run", time.Hour)
		}
		return nil
	}, nil)
	require.NoError(t, err)
	startWatcher(t, w)

	touch(t, path, "edit", 0)
	assert.Eventually(t, func() bool { return runs.Load() == 2 }, 5*time.Second, 10*time.Millisecond)

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(2), runs.Load())
}

func TestWatcher_RecordWriteIgnoresOtherPaths(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.xlsx")
	w, err := NewWatcher(path, time.Second, func(context.Context) error { return nil }, nil)
	require.NoError(t, err)

	now := time.Now()
	w.RecordWrite(filepath.Join(filepath.Dir(path), "report.xlsx"), now, now)
	assert.Nil(t, w.write)

	w.RecordWrite(path, now, now)
	require.NotNil(t, w.write)
	assert.True(t, w.write.saved.Equal(now))
}

func TestWatcher_RecordsFailures(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schedule.xlsx")
	touch(t, path, "v1", -time.Hour)

	w, err := NewWatcher(path, 20*time.Millisecond, func(context.Context) error {
		return stderrors.New("sheet Gantt chart not found")
	}, nil)
	require.NoError(t, err)
	startWatcher(t, w)

	touch(t, path, "v2", 0)
	assert.Eventually(t, func() bool { return w.Stats().Failures == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, "sheet Gantt chart not found", w.Stats().LastError)
}
