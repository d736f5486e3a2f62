package runlog

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goalkit/goalkit/internal/db"
)

func newStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewStore(conn), conn
}

func TestRunLifecycle(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t)
	ctx := context.Background()

	id, err := store.StartRun(ctx, "update")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "update", runs[0].Command)
	assert.Equal(t, StatusRunning, runs[0].Status)
	assert.False(t, runs[0].FinishedAt.Valid)

	require.NoError(t, store.FinishRun(ctx, id, StatusCompleted, "updated 2 goals"))

	runs, err = store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, StatusCompleted, runs[0].Status)
	assert.Equal(t, "updated 2 goals", runs[0].Summary)
	assert.True(t, runs[0].FinishedAt.Valid)
}

func TestFinishRunUnknownID(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t)
	err := store.FinishRun(context.Background(), "no-such-run", StatusFailed, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown run id")
}

func TestEventsKeepInsertionOrder(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t)
	ctx := context.Background()

	id, err := store.StartRun(ctx, "analyze")
	require.NoError(t, err)
	require.NoError(t, store.AddEvent(ctx, id, "info", "loaded reflection"))
	require.NoError(t, store.AddEvent(ctx, id, "warn", "goal missing"))

	events, err := store.Events(ctx, id)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "loaded reflection", events[0].Message)
	assert.Equal(t, "warn", events[1].Level)
	assert.Equal(t, id, events[1].RunID)
}

func TestListRunsAppliesLimit(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := store.StartRun(ctx, "validate")
		require.NoError(t, err)
	}

	runs, err := store.ListRuns(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)

	// A non-positive limit falls back to the default page size.
	runs, err = store.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 5)
}

func TestPruneDeletesOnlyOldFinishedRuns(t *testing.T) {
	t.Parallel()

	store, conn := newStore(t)
	ctx := context.Background()

	oldRun, err := store.StartRun(ctx, "update")
	require.NoError(t, err)
	require.NoError(t, store.FinishRun(ctx, oldRun, StatusCompleted, ""))
	_, err = conn.ExecContext(ctx, `UPDATE runs SET finished_at = ? WHERE id = ?`,
		time.Now().UTC().Add(-48*time.Hour), oldRun)
	require.NoError(t, err)

	recent, err := store.StartRun(ctx, "analyze")
	require.NoError(t, err)
	require.NoError(t, store.FinishRun(ctx, recent, StatusCompleted, ""))

	running, err := store.StartRun(ctx, "generate")
	require.NoError(t, err)

	n, err := store.Prune(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	ids := make(map[string]bool, len(runs))
	for _, r := range runs {
		ids[r.ID] = true
	}
	assert.False(t, ids[oldRun], "old finished run survived prune")
	assert.True(t, ids[recent])
	assert.True(t, ids[running], "running runs must never be pruned")

	// Cascade removes the pruned run's events with it.
	events, err := store.Events(ctx, oldRun)
	require.NoError(t, err)
	assert.Empty(t, events)
}
