package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/barrace/core/agg"
	"github.com/huangsam/barrace/core/algo"
	"github.com/huangsam/barrace/internal/contract"
	"github.com/huangsam/barrace/internal/fetch"
	"github.com/huangsam/barrace/internal/iocache"
	"github.com/huangsam/barrace/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// raceRows is the two-entity race where B leads, then A overtakes.
func raceRows() []schema.RawRow {
	return []schema.RawRow{
		{Date: "2020-01-01", Name: "A", Value: "10"},
		{Date: "2020-01-01", Name: "B", Value: "20"},
		{Date: "2021-01-01", Name: "A", Value: "30"},
		{Date: "2021-01-01", Name: "B", Value: "5"},
	}
}

func testConfig(t *testing.T) *contract.Config {
	t.Helper()
	return &contract.Config{
		Source:         "race.csv",
		SourceKind:     schema.FileSource,
		Range:          2,
		Interpolations: 2,
		DateLayouts:    schema.DefaultDateLayouts,
		Output:         schema.CSVOut,
		OutputFile:     filepath.Join(t.TempDir(), "out.csv"),
		DateFormat:     contract.DefaultDateFormat,
		CacheBackend:   schema.NoneBackend,
	}
}

func TestBuildKeyframes(t *testing.T) {
	cfg := testConfig(t)
	fetcher := &fetch.MockFetcher{}
	fetcher.On("Fetch", mock.Anything, "race.csv").Return(raceRows(), nil)

	result, summary, err := BuildKeyframes(context.Background(), cfg, fetcher)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, summary.Names)
	assert.Len(t, summary.Entries, 2)
	require.Len(t, result.Keyframes, 3)

	mid := result.Keyframes[1]
	assert.Equal(t, "A", mid.Records[0].Name)
	assert.InDelta(t, 20.0, mid.Records[0].Value, 1e-9)
	assert.Equal(t, "B", mid.Records[1].Name)
	assert.InDelta(t, 12.5, mid.Records[1].Value, 1e-9)

	key := schema.RecordKey{Frame: 1, Name: "B"}
	assert.Equal(t, schema.RecordKey{Frame: 0, Name: "B"}, result.PrevKey(key))
	assert.Equal(t, schema.RecordKey{Frame: 2, Name: "B"}, result.NextKey(key))
	fetcher.AssertExpectations(t)
}

func TestBuildKeyframesInfiniteValue(t *testing.T) {
	cfg := testConfig(t)
	fetcher := &fetch.MockFetcher{}
	fetcher.On("Fetch", mock.Anything, "race.csv").Return([]schema.RawRow{
		{Date: "2020-01-01", Name: "A", Value: "5"},
		{Date: "2021-01-01", Name: "A", Value: "Inf"},
	}, nil)

	result, _, err := BuildKeyframes(context.Background(), cfg, fetcher)
	require.NoError(t, err)
	require.Len(t, result.Keyframes, 3)

	assert.InDelta(t, 5.0, result.Keyframes[0].Records[0].Value, 1e-9)
	assert.InDelta(t, 2.5, result.Keyframes[1].Records[0].Value, 1e-9)
	assert.InDelta(t, 0.0, result.Keyframes[2].Records[0].Value, 1e-9)
}

func TestBuildKeyframesErrors(t *testing.T) {
	t.Run("fetch failure", func(t *testing.T) {
		fetcher := &fetch.MockFetcher{}
		fetcher.On("Fetch", mock.Anything, "race.csv").Return(nil, fmt.Errorf("%w: race.csv: boom", fetch.ErrFetch))

		result, _, err := BuildKeyframes(context.Background(), testConfig(t), fetcher)
		assert.ErrorIs(t, err, fetch.ErrFetch)
		assert.Empty(t, result.Keyframes)
	})

	t.Run("malformed date", func(t *testing.T) {
		rows := append(raceRows(), schema.RawRow{Date: "not a date", Name: "C", Value: "1"})
		fetcher := &fetch.MockFetcher{}
		fetcher.On("Fetch", mock.Anything, "race.csv").Return(rows, nil)

		result, _, err := BuildKeyframes(context.Background(), testConfig(t), fetcher)
		assert.ErrorIs(t, err, fetch.ErrFetch)
		assert.ErrorIs(t, err, agg.ErrMalformedDate)
		assert.Empty(t, result.Keyframes)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		fetcher := &fetch.MockFetcher{}
		fetcher.On("Fetch", mock.Anything, "race.csv").Return(raceRows(), nil)

		_, _, err := BuildKeyframes(ctx, testConfig(t), fetcher)
		assert.ErrorIs(t, err, fetch.ErrFetch)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("invalid interpolations", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Interpolations = 0
		fetcher := &fetch.MockFetcher{}
		fetcher.On("Fetch", mock.Anything, "race.csv").Return(raceRows(), nil)

		_, _, err := BuildKeyframes(context.Background(), cfg, fetcher)
		assert.ErrorIs(t, err, algo.ErrInvalidInterpolations)
	})
}

func TestBuildRollupEmptySource(t *testing.T) {
	fetcher := &fetch.MockFetcher{}
	fetcher.On("Fetch", mock.Anything, "race.csv").Return([]schema.RawRow{}, nil)

	summary, err := BuildRollup(context.Background(), testConfig(t), fetcher)
	require.NoError(t, err)
	assert.Empty(t, summary.Entries)
	assert.Empty(t, summary.Names)
}

func TestExecuteKeyframes(t *testing.T) {
	t.Run("tracks the run", func(t *testing.T) {
		cfg := testConfig(t)
		fetcher := &fetch.MockFetcher{}
		fetcher.On("Fetch", mock.Anything, "race.csv").Return(raceRows(), nil)

		runStore := &iocache.MockRunStore{}
		runStore.On("BeginRun", mock.Anything, "race.csv", cfg.Params()).Return(int64(7), nil)
		runStore.On("EndRun", int64(7), mock.Anything, schema.RunSummary{EntryCount: 2, NameCount: 2, KeyframeCount: 3}).Return(nil)

		mgr := &iocache.MockCacheManager{}
		mgr.On("GetRunStore").Return(runStore)

		ctx := WithFetcher(context.Background(), fetcher)
		require.NoError(t, ExecuteKeyframes(ctx, cfg, mgr))

		data, err := os.ReadFile(cfg.OutputFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), "frame,date,name,value,rank")

		runStore.AssertExpectations(t)
		mgr.AssertExpectations(t)
	})

	t.Run("tracking failure is not fatal", func(t *testing.T) {
		cfg := testConfig(t)
		fetcher := &fetch.MockFetcher{}
		fetcher.On("Fetch", mock.Anything, "race.csv").Return(raceRows(), nil)

		runStore := &iocache.MockRunStore{}
		runStore.On("BeginRun", mock.Anything, "race.csv", mock.Anything).Return(int64(0), errors.New("db down"))

		mgr := &iocache.MockCacheManager{}
		mgr.On("GetRunStore").Return(runStore)

		ctx := WithFetcher(context.Background(), fetcher)
		require.NoError(t, ExecuteKeyframes(ctx, cfg, mgr))
		runStore.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("failed run is still closed", func(t *testing.T) {
		cfg := testConfig(t)
		fetcher := &fetch.MockFetcher{}
		fetcher.On("Fetch", mock.Anything, "race.csv").Return(nil, fetch.ErrFetch)

		runStore := &iocache.MockRunStore{}
		runStore.On("BeginRun", mock.Anything, "race.csv", mock.Anything).Return(int64(3), nil)
		runStore.On("EndRun", int64(3), mock.Anything, schema.RunSummary{}).Return(nil)

		mgr := &iocache.MockCacheManager{}
		mgr.On("GetRunStore").Return(runStore)

		ctx := WithFetcher(context.Background(), fetcher)
		assert.ErrorIs(t, ExecuteKeyframes(ctx, cfg, mgr), fetch.ErrFetch)
		runStore.AssertExpectations(t)

		_, err := os.Stat(cfg.OutputFile)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("missing file through the default fetcher", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Source = filepath.Join(t.TempDir(), "missing.csv")

		mgr := &iocache.MockCacheManager{}
		mgr.On("GetRunStore").Return(nil)
		mgr.On("GetSourceStore").Return(nil)

		assert.ErrorIs(t, ExecuteKeyframes(context.Background(), cfg, mgr), fetch.ErrFetch)
		mgr.AssertExpectations(t)
	})
}

func TestExecuteRollup(t *testing.T) {
	cfg := testConfig(t)
	fetcher := &fetch.MockFetcher{}
	fetcher.On("Fetch", mock.Anything, "race.csv").Return(raceRows(), nil)

	mgr := &iocache.MockCacheManager{}
	ctx := WithFetcher(context.Background(), fetcher)
	require.NoError(t, ExecuteRollup(ctx, cfg, mgr))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "date,name,value")
	assert.Contains(t, string(data), "2021-01-01T00:00:00Z,B,5")
	mgr.AssertNotCalled(t, "GetRunStore")
}

func TestFetcherFor(t *testing.T) {
	cfg := testConfig(t)

	t.Run("injected fetcher wins", func(t *testing.T) {
		fetcher := &fetch.MockFetcher{}
		ctx := WithFetcher(context.Background(), fetcher)
		assert.Same(t, fetcher, fetcherFor(ctx, cfg))
	})

	t.Run("default uses source store", func(t *testing.T) {
		store := &iocache.MockCacheStore{}
		mgr := &iocache.MockCacheManager{}
		mgr.On("GetSourceStore").Return(store)

		ctx := contextWithCacheManager(context.Background(), mgr)
		_, ok := fetcherFor(ctx, cfg).(*fetch.SourceFetcher)
		assert.True(t, ok)
		mgr.AssertExpectations(t)
	})

	t.Run("no manager", func(t *testing.T) {
		assert.Nil(t, cacheManagerFromContext(context.Background()))
		_, ok := fetcherFor(context.Background(), cfg).(*fetch.SourceFetcher)
		assert.True(t, ok)
	})
}
