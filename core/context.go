package core

import (
	"context"

	"github.com/huangsam/barrace/internal/contract"
	"github.com/huangsam/barrace/internal/fetch"
)

// Context keys for pipeline dependencies
type contextKey string

const (
	cacheManagerKey contextKey = "cacheManager"
	fetcherKey      contextKey = "fetcher"
)

// contextWithCacheManager adds the cache manager to the context
func contextWithCacheManager(ctx context.Context, mgr contract.CacheManager) context.Context {
	return context.WithValue(ctx, cacheManagerKey, mgr)
}

// cacheManagerFromContext retrieves the cache manager from context
func cacheManagerFromContext(ctx context.Context) contract.CacheManager {
	if mgr, ok := ctx.Value(cacheManagerKey).(contract.CacheManager); ok {
		return mgr
	}
	return nil
}

// WithFetcher overrides the fetcher used by the Execute functions.
func WithFetcher(ctx context.Context, fetcher contract.Fetcher) context.Context {
	return context.WithValue(ctx, fetcherKey, fetcher)
}

// fetcherFor returns the fetcher attached to ctx. Without one, it builds a
// source fetcher backed by the source cache of the context's cache manager.
func fetcherFor(ctx context.Context, cfg *contract.Config) contract.Fetcher {
	if f, ok := ctx.Value(fetcherKey).(contract.Fetcher); ok && f != nil {
		return f
	}
	var store contract.CacheStore
	if mgr := cacheManagerFromContext(ctx); mgr != nil {
		store = mgr.GetSourceStore()
	}
	return fetch.NewSourceFetcher(fetch.OptionsFromConfig(cfg), store)
}
