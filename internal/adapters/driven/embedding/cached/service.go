// Package cached decorates an embedding service with a content-addressed
// vector cache.
package cached

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// Ensure Service implements the interface.
var _ driven.EmbeddingService = (*Service)(nil)

// Service serves embeddings from a cache and embeds only the misses.
// Cache failures are logged and treated as misses, so results never
// depend on the cache.
type Service struct {
	inner     driven.EmbeddingService
	cache     driven.EmbeddingCache
	namespace string
}

// New wraps inner. namespace separates vectors of different models,
// typically "<provider>/<model>".
func New(inner driven.EmbeddingService, cache driven.EmbeddingCache, namespace string) *Service {
	return &Service{inner: inner, cache: cache, namespace: namespace}
}

// Hash returns the cache key for a text.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Embed returns the cached vector for text or embeds it.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch resolves hits from the cache and embeds all misses in one call.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	hashes := make([]string, len(texts))
	var (
		missTexts []string
		missIdx   []int
	)
	for i, text := range texts {
		hashes[i] = Hash(text)
		vec, ok, err := s.cache.Get(ctx, s.namespace, hashes[i])
		if err != nil {
			logger.Warn("embedding cache read failed: %v", err)
		}
		if err == nil && ok {
			out[i] = vec
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}

	logger.Debug("embedding cache: %d hits, %d misses", len(texts)-len(missTexts), len(missTexts))
	if len(missTexts) == 0 {
		return out, nil
	}

	fresh, err := s.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", domain.ErrEmbedding, len(fresh), len(missTexts))
	}

	for j, i := range missIdx {
		out[i] = fresh[j]
		if err := s.cache.Put(ctx, s.namespace, hashes[i], fresh[j]); err != nil {
			logger.Warn("embedding cache write failed: %v", err)
		}
	}
	return out, nil
}

// Dimensions returns the wrapped service's vector size.
func (s *Service) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the wrapped service's model.
func (s *Service) ModelName() string {
	return s.inner.ModelName()
}

// Ping checks the wrapped service.
func (s *Service) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close closes the wrapped service and the cache.
func (s *Service) Close() error {
	innerErr := s.inner.Close()
	if err := s.cache.Close(); err != nil {
		return err
	}
	return innerErr
}
