package iocache

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/barrace/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunStore(t *testing.T) *RunStoreImpl {
	t.Helper()
	store, err := NewRunStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunStore_NoneBackend(t *testing.T) {
	store, err := NewRunStore(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, err := store.BeginRun(time.Now(), "a.csv", map[string]any{"range": 10})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), runID)
	assert.NoError(t, store.EndRun(1, time.Now(), schema.RunSummary{}))

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestRunStore_SQLite(t *testing.T) {
	store := newTestRunStore(t)

	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	params := map[string]any{"range": 10, "interpolations": 5}

	runID, err := store.BeginRun(start, "brands.csv", params)
	require.NoError(t, err)
	assert.Positive(t, runID)

	summary := schema.RunSummary{EntryCount: 3, NameCount: 4, KeyframeCount: 11}
	require.NoError(t, store.EndRun(runID, start.Add(1500*time.Millisecond), summary))

	// An unfinished run keeps its nullable columns empty
	openID, err := store.BeginRun(start.Add(time.Hour), "other.csv", nil)
	require.NoError(t, err)
	assert.Greater(t, openID, runID)

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)

	done := runs[0]
	assert.Equal(t, runID, done.RunID)
	assert.Equal(t, "brands.csv", done.Source)
	assert.True(t, start.Equal(done.StartTime))
	require.NotNil(t, done.EndTime)
	require.NotNil(t, done.RunDurationMs)
	assert.Equal(t, int32(1500), *done.RunDurationMs)
	assert.Equal(t, int32(3), done.EntryCount)
	assert.Equal(t, int32(4), done.NameCount)
	assert.Equal(t, int32(11), done.KeyframeCount)
	require.NotNil(t, done.ConfigParams)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(*done.ConfigParams), &decoded))
	assert.EqualValues(t, 10, decoded["range"])

	open := runs[1]
	assert.Nil(t, open.EndTime)
	assert.Nil(t, open.RunDurationMs)
	assert.Zero(t, open.KeyframeCount)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 2, status.TotalRuns)
	assert.Equal(t, openID, status.LastRunID)
	assert.True(t, start.Add(time.Hour).Equal(status.LastRunTime))
	assert.True(t, start.Equal(status.OldestRunTime))
	assert.Equal(t, int64(11), status.TotalKeyframesBuilt)
	assert.Equal(t, int64(2), status.TableSizes[runsTable])
}

func TestRunStore_EndUnknownRun(t *testing.T) {
	store := newTestRunStore(t)
	err := store.EndRun(42, time.Now(), schema.RunSummary{})
	assert.ErrorContains(t, err, "run 42")
}

func TestRunStore_EmptyStatus(t *testing.T) {
	store := newTestRunStore(t)
	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Zero(t, status.TotalRuns)
	assert.Equal(t, int64(0), status.TableSizes[runsTable])
}
