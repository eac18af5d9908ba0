package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
)

// Ensure EmbeddingCache implements the interface.
var _ driven.EmbeddingCache = (*EmbeddingCache)(nil)

type cacheKey struct {
	namespace string
	hash      string
}

// EmbeddingCache is an in-memory implementation of driven.EmbeddingCache.
// Vectors are copied on the way in and out.
type EmbeddingCache struct {
	mu      sync.RWMutex
	vectors map[cacheKey][]float32
}

// NewEmbeddingCache creates an empty cache.
func NewEmbeddingCache() *EmbeddingCache {
	return &EmbeddingCache{
		vectors: make(map[cacheKey][]float32),
	}
}

// Get returns the vector stored for (namespace, hash).
func (c *EmbeddingCache) Get(_ context.Context, namespace, hash string) ([]float32, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.vectors[cacheKey{namespace, hash}]
	if !ok {
		return nil, false, nil
	}
	return append([]float32(nil), v...), true, nil
}

// Put stores a vector, replacing any previous one.
func (c *EmbeddingCache) Put(_ context.Context, namespace, hash string, vector []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vectors[cacheKey{namespace, hash}] = append([]float32(nil), vector...)
	return nil
}

// Len returns the number of cached vectors.
func (c *EmbeddingCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.vectors)
}

// Close is a no-op.
func (c *EmbeddingCache) Close() error {
	return nil
}
