// Package fetch loads tabular time series from local files and HTTP sources.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/huangsam/barrace/internal/contract"
	"github.com/huangsam/barrace/schema"
)

// ErrFetch wraps every failure to obtain or decode a source.
var ErrFetch = errors.New("fetch failed")

// Options tune how sources are located and decoded.
type Options struct {
	Columns  Columns
	Retries  int           // extra attempts after the first HTTP request
	Delay    time.Duration // initial backoff between HTTP attempts
	Timeout  time.Duration // per-request HTTP timeout
	CacheTTL time.Duration // maximum age of a cached HTTP body
	MaxBody  int64         // largest accepted HTTP body in bytes; 0 means maxBodyBytes
}

// OptionsFromConfig derives fetch options from the validated config.
func OptionsFromConfig(cfg *contract.Config) Options {
	return Options{
		Columns: Columns{
			Date:  cfg.DateColumn,
			Name:  cfg.NameColumn,
			Value: cfg.ValueColumn,
		},
		Retries:  cfg.Retries,
		Delay:    defaultDelay,
		Timeout:  cfg.Timeout,
		CacheTTL: cfg.CacheTTL,
	}
}

// SourceFetcher reads CSV sources from disk or over HTTP.
// HTTP bodies go through the source cache when a store is attached.
type SourceFetcher struct {
	opts   Options
	client *http.Client
	store  contract.CacheStore
}

var _ contract.Fetcher = &SourceFetcher{} // Compile-time check

// NewSourceFetcher creates a fetcher. A nil store disables caching.
func NewSourceFetcher(opts Options, store contract.CacheStore) *SourceFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &SourceFetcher{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
		store:  store,
	}
}

// WithHTTPClient swaps the HTTP client, which tests use to point at a local server.
func (f *SourceFetcher) WithHTTPClient(client *http.Client) *SourceFetcher {
	f.client = client
	return f
}

// Fetch returns the rows of source. Any failure, including a cancelled
// context, is wrapped with ErrFetch and no rows are returned.
func (f *SourceFetcher) Fetch(ctx context.Context, source string) ([]schema.RawRow, error) {
	if source == "" {
		return nil, fmt.Errorf("%w: empty source", ErrFetch)
	}

	var body []byte
	var err error
	switch contract.DetectSourceKind(source) {
	case schema.HTTPSource:
		body, err = f.fetchHTTP(ctx, source)
	default:
		body, err = f.readFile(ctx, source)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, source, err)
	}

	rows, err := ParseCSV(bytes.NewReader(body), f.opts.Columns)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, source, err)
	}
	contract.LoggerFromContext(ctx).Debug("Fetched source", "source", source, "rows", len(rows))
	return rows, nil
}

func (f *SourceFetcher) readFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// fetchHTTP serves from the source cache when possible and otherwise
// downloads with retries, storing the body on success.
func (f *SourceFetcher) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	key := cacheKey(url)
	if body, ok := f.checkCacheHit(key); ok {
		contract.LoggerFromContext(ctx).Debug("Source cache hit", "url", url)
		return body, nil
	}

	body, err := f.getWithRetry(ctx, url)
	if err != nil {
		return nil, err
	}
	f.storeBody(key, body)
	return body, nil
}
