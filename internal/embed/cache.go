package embed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Cache stores embedding vectors keyed by model and content hash.
type Cache interface {
	Get(key string) ([]float32, bool)
	Put(key string, vec []float32)
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	mu   sync.RWMutex
	vecs map[string][]float32
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{vecs: make(map[string][]float32)}
}

func (c *MemoryCache) Get(key string) ([]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vec, ok := c.vecs[key]
	return vec, ok
}

func (c *MemoryCache) Put(key string, vec []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vecs[key] = vec
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.vecs)
}

// CachedEmbedder wraps an Embedder and only embeds texts whose content
// hash is not already cached. Results come back in input order.
type CachedEmbedder struct {
	inner Embedder
	cache Cache
}

func NewCachedEmbedder(inner Embedder, cache Cache) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, cache: cache}
}

func (e *CachedEmbedder) ModelID() string {
	return e.inner.ModelID()
}

func (e *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int

	model := e.inner.ModelID()
	for i, t := range texts {
		if vec, ok := e.cache.Get(cacheKey(model, t)); ok {
			out[i] = vec
			continue
		}
		missing = append(missing, t)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) > 0 {
		vecs, err := e.inner.Embed(ctx, missing)
		if err != nil {
			return nil, err
		}
		for j, vec := range vecs {
			i := missingIdx[j]
			out[i] = vec
			e.cache.Put(cacheKey(model, texts[i]), vec)
		}
	}
	return out, nil
}

func cacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return model + ":" + hex.EncodeToString(sum[:])
}
