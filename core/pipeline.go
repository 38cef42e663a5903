package core

import (
	"context"
	"fmt"

	"github.com/huangsam/barrace/core/agg"
	"github.com/huangsam/barrace/core/algo"
	"github.com/huangsam/barrace/internal/contract"
	"github.com/huangsam/barrace/internal/fetch"
	"github.com/huangsam/barrace/schema"
)

// BuildRollup fetches the configured source and groups its rows by date.
// A date that cannot be parsed fails the fetch as a whole.
func BuildRollup(ctx context.Context, cfg *contract.Config, fetcher contract.Fetcher) (schema.RollupSummary, error) {
	rows, err := fetcher.Fetch(ctx, cfg.Source)
	if err != nil {
		return schema.RollupSummary{}, err
	}
	if err := ctx.Err(); err != nil {
		return schema.RollupSummary{}, fmt.Errorf("%w: %s: %w", fetch.ErrFetch, cfg.Source, err)
	}

	progress := contract.NewProgress(ctx)
	observations, err := agg.ParseObservations(rows, cfg.DateLayouts)
	if err != nil {
		return schema.RollupSummary{}, fmt.Errorf("%w: %s: %w", fetch.ErrFetch, cfg.Source, err)
	}

	entries, names := agg.Rollup(observations)
	progress.Done("Rolled up source", "dates", len(entries), "names", len(names))
	return agg.Summarize(cfg.Source, entries, names), nil
}

// BuildKeyframes runs fetch, rollup and synthesis. On any failure no
// keyframes are returned.
func BuildKeyframes(ctx context.Context, cfg *contract.Config, fetcher contract.Fetcher) (schema.KeyframeResult, schema.RollupSummary, error) {
	summary, err := BuildRollup(ctx, cfg, fetcher)
	if err != nil {
		return schema.KeyframeResult{}, schema.RollupSummary{}, err
	}

	progress := contract.NewProgress(ctx)
	result, err := algo.Synthesize(summary.Entries, summary.Names, cfg.Interpolations, cfg.Range)
	if err != nil {
		return schema.KeyframeResult{}, schema.RollupSummary{}, err
	}
	progress.Done("Synthesized keyframes", "keyframes", len(result.Keyframes))

	return result, summary, nil
}
