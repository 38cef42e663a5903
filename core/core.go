// Package core has core logic for rolling up sources and synthesizing keyframes.
package core

import (
	"context"
	"time"

	"github.com/huangsam/barrace/internal/contract"
	"github.com/huangsam/barrace/internal/outwriter"
	"github.com/huangsam/barrace/schema"
)

// ExecutorFunc defines the function signature for executing different pipeline modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteKeyframes runs the full pipeline and prints the keyframes.
// It serves as the main entry point for the 'keyframes' mode.
func ExecuteKeyframes(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	result, summary, err := GetKeyframeResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.NewOutWriter().WriteKeyframes(result, summary, cfg, duration)
}

// ExecuteRollup fetches and rolls up the source without synthesizing keyframes.
// It serves as the main entry point for the 'rollup' mode.
func ExecuteRollup(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	summary, err := GetRollupResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.NewOutWriter().WriteRollup(summary, cfg, duration)
}

// GetKeyframeResults runs the pipeline without printing anything.
// The run is recorded when the manager has a run store.
func GetKeyframeResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.KeyframeResult, schema.RollupSummary, error) {
	ctx = contextWithCacheManager(ctx, mgr)

	// --- 0. Begin Run Tracking (if configured) ---
	var runID int64
	runStore := mgr.GetRunStore()
	if runStore != nil {
		var err error
		runID, err = runStore.BeginRun(time.Now(), cfg.Source, cfg.Params())
		if err != nil {
			contract.LogWarn("Run tracking initialization failed", err)
		}
	}

	// --- 1. Fetch, Rollup and Synthesis ---
	result, summary, err := BuildKeyframes(ctx, cfg, fetcherFor(ctx, cfg))

	// --- 2. End Run Tracking ---
	// Failed runs are closed too so they do not linger without an end time.
	if runStore != nil && runID > 0 {
		runSummary := schema.RunSummary{
			EntryCount:    len(summary.Entries),
			NameCount:     len(summary.Names),
			KeyframeCount: len(result.Keyframes),
		}
		if endErr := runStore.EndRun(runID, time.Now(), runSummary); endErr != nil {
			contract.LogWarn("Failed to finalize run tracking", endErr)
		}
	}
	return result, summary, err
}

// GetRollupResults fetches and rolls up the source without printing anything.
func GetRollupResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.RollupSummary, error) {
	ctx = contextWithCacheManager(ctx, mgr)
	return BuildRollup(ctx, cfg, fetcherFor(ctx, cfg))
}
