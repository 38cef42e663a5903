package fetch

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// currentCacheVersion defines the version of the cached body format.
const currentCacheVersion = 1

// cacheKey derives the source cache key for a URL.
func cacheKey(url string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte("source:"+url)))
}

// checkCacheHit returns a cached body that matches the current version and
// is younger than the configured TTL.
func (f *SourceFetcher) checkCacheHit(key string) ([]byte, bool) {
	if f.store == nil {
		return nil, false
	}
	data, version, ts, err := f.store.Get(key)
	if err != nil || version != currentCacheVersion || len(data) == 0 {
		return nil, false // miss, stale format or empty
	}
	if f.opts.CacheTTL > 0 && time.Since(time.Unix(ts, 0)) > f.opts.CacheTTL {
		return nil, false
	}
	return data, true
}

// storeBody saves a downloaded body. Cache write failures never fail a fetch.
func (f *SourceFetcher) storeBody(key string, body []byte) {
	if f.store == nil {
		return
	}
	_ = f.store.Set(key, body, currentCacheVersion, time.Now().Unix())
}
