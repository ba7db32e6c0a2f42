package embedding

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CachedEmbedder wraps an Embedder with a size-bounded, time-boxed cache.
// The cache is not correctness-critical: a miss always recomputes through
// the inner embedder, and entries expire on their own.
type CachedEmbedder struct {
	inner Embedder
	cache *expirable.LRU[string, []float32]
}

// NewCachedEmbedder creates a CachedEmbedder holding at most size entries,
// each evicted after ttl.
func NewCachedEmbedder(inner Embedder, size int, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{
		inner: inner,
		cache: expirable.NewLRU[string, []float32](size, nil, ttl),
	}
}

// EmbedTexts serves cached vectors where available and delegates the misses
// to the inner embedder in a single call, preserving input order.
func (c *CachedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))

	var missTexts []string
	var missIdx []int
	for i, text := range texts {
		if vec, ok := c.cache.Get(text); ok {
			result[i] = vec
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}

	if len(missTexts) == 0 {
		return result, nil
	}

	vectors, err := c.inner.EmbedTexts(ctx, missTexts)
	if err != nil {
		return nil, err
	}

	for j, vec := range vectors {
		result[missIdx[j]] = vec
		c.cache.Add(missTexts[j], vec)
	}

	return result, nil
}
