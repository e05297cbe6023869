package workbook

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "ganttcli/internal/errors"
	"ganttcli/pkg/contracts/domain"
)

func newTestSQLiteSink(t *testing.T) *SQLiteSink {
	t.Helper()
	sink, err := OpenSQLiteSink(filepath.Join(t.TempDir(), "report.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { sink.Close() })
	return sink
}

func TestSQLiteSink_CommitAndRead(t *testing.T) {
	sink := newTestSQLiteSink(t)
	ctx := context.Background()

	require.NoError(t, sink.Commit(ctx, sampleTables()))

	for _, want := range sampleTables() {
		got, err := sink.ReadTable(ctx, want.Name)
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("table %s mismatch (-want +got):\n%s", want.Name, diff)
		}
	}
}

func TestOpenSQLiteSink_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested", "report.db")

	sink, err := OpenSQLiteSink(path, nil)
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.Commit(context.Background(), sampleTables()))
	assert.FileExists(t, path)
}

func TestOpenSQLiteSink_InMemory(t *testing.T) {
	sink, err := OpenSQLiteSink(":memory:", nil)
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.Commit(context.Background(), sampleTables()))
	_, err = sink.ReadTable(context.Background(), sampleTables()[0].Name)
	assert.NoError(t, err)
}

func TestSQLiteSink_CommitReplaces(t *testing.T) {
	sink := newTestSQLiteSink(t)
	ctx := context.Background()

	require.NoError(t, sink.Commit(ctx, sampleTables()))

	replacement := []domain.Table{{
		Name:   "Summary",
		Header: []string{"Name", "ID", "Dates"},
		Rows: [][]domain.Cell{
			{domain.TextCell("Dana"), domain.EmptyCell(), domain.TextCell("03/01/24")},
		},
	}}
	require.NoError(t, sink.Commit(ctx, replacement))

	got, err := sink.ReadTable(ctx, "Summary")
	require.NoError(t, err)
	assert.Equal(t, replacement[0], got)

	var cells int
	require.NoError(t, sink.db.QueryRow(`SELECT COUNT(*) FROM report_cells WHERE table_name = 'Summary'`).Scan(&cells))
	assert.Equal(t, 2, cells)

	counter, err := sink.ReadTable(ctx, "Counter")
	require.NoError(t, err)
	assert.Len(t, counter.Rows, 1, "tables not in the commit are kept")
}

func TestSQLiteSink_CanceledCommitKeepsPreviousTables(t *testing.T) {
	sink := newTestSQLiteSink(t)
	require.NoError(t, sink.Commit(context.Background(), sampleTables()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, sink.Commit(ctx, []domain.Table{{Name: "Summary", Header: []string{"Name"}}}))

	got, err := sink.ReadTable(context.Background(), "Summary")
	require.NoError(t, err)
	assert.Len(t, got.Rows, 2)
}

func TestSQLiteSink_ReadTable_NotFound(t *testing.T) {
	sink := newTestSQLiteSink(t)

	_, err := sink.ReadTable(context.Background(), "Kishur")
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeNotFound))
}
