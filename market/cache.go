package market

import (
	"context"
	"sync"
	"time"
)

// CachingSource wraps another Source with a per-symbol TTL cache. Dashboards
// and tight condition loops re-read the same symbol; a short TTL keeps those
// reads off the upstream API without the engine knowing a cache exists.
type CachingSource struct {
	upstream Source
	ttl      time.Duration
	now      func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	quote   *Quote
	fetched time.Time
}

// NewCachingSource wraps upstream with a TTL cache. A non-positive ttl
// defaults to 10 seconds.
func NewCachingSource(upstream Source, ttl time.Duration) *CachingSource {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &CachingSource{
		upstream: upstream,
		ttl:      ttl,
		now:      time.Now,
		entries:  make(map[string]cacheEntry),
	}
}

// Quote returns the cached quote when fresh, otherwise fetches from upstream.
// Failed fetches are not cached.
func (c *CachingSource) Quote(ctx context.Context, symbol string) (*Quote, error) {
	c.mu.Lock()
	entry, ok := c.entries[symbol]
	c.mu.Unlock()

	if ok && c.now().Sub(entry.fetched) < c.ttl {
		return entry.quote, nil
	}

	quote, err := c.upstream.Quote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[symbol] = cacheEntry{quote: quote, fetched: c.now()}
	c.mu.Unlock()

	return quote, nil
}
