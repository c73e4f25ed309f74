package embedding

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// CacheStats is a snapshot of cache usage.
type CacheStats struct {
	Hits     uint64 `json:"hits"`
	Misses   uint64 `json:"misses"`
	Size     int    `json:"size"`
	Capacity int    `json:"capacity"`
}

// CachedEmbedder memoizes another Embedder. Concurrent misses for the same text
// share one upstream call; failed calls are not cached. The shared call is not
// tied to any one caller's cancellation, so it is bounded by the wrapped
// Embedder's own timeout.
type CachedEmbedder struct {
	next   Embedder
	cache  *EmbeddingCache
	group  singleflight.Group
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCachedEmbedder wraps next with cache.
func NewCachedEmbedder(next Embedder, cache *EmbeddingCache) *CachedEmbedder {
	return &CachedEmbedder{next: next, cache: cache}
}

// Embed returns the cached vector for text, calling the wrapped Embedder on a miss.
// A caller whose ctx ends stops waiting; the shared call keeps running for the others.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.cache.Get(text); ok {
		c.hits.Add(1)
		return v, nil
	}
	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(text, func() (interface{}, error) {
		// Recheck: another flight may have stored it between Get and DoChan.
		if v, ok := c.cache.Get(text); ok {
			c.hits.Add(1)
			return v, nil
		}
		c.misses.Add(1)
		v, err := c.next.Embed(flightCtx, text)
		if err != nil {
			return nil, err
		}
		c.cache.Set(text, v)
		return v, nil
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("embedding wait aborted: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]float32), nil
	}
}

// Stats returns current hit/miss counters and cache occupancy.
func (c *CachedEmbedder) Stats() CacheStats {
	return CacheStats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Size:     c.cache.Len(),
		Capacity: c.cache.Capacity(),
	}
}
