package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/core/ports/driving"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// Ensure RetrieverService implements the interface.
var _ driving.RetrievalService = (*RetrieverService)(nil)

// SnapshotSource returns the currently published snapshot.
type SnapshotSource interface {
	Current() *Snapshot
}

// RetrieverService embeds a query and looks it up in the current snapshot.
type RetrieverService struct {
	snapshots SnapshotSource
	embedder  driven.EmbeddingService
	topK      int
}

// NewRetrieverService creates a retriever. The embedder must produce the
// same vector space the snapshot was built with. A topK of zero or less
// means domain.DefaultTopK.
func NewRetrieverService(snapshots SnapshotSource, embedder driven.EmbeddingService, topK int) *RetrieverService {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	return &RetrieverService{
		snapshots: snapshots,
		embedder:  embedder,
		topK:      topK,
	}
}

// Retrieve returns the top-k chunks for query, best first.
func (r *RetrieverService) Retrieve(ctx context.Context, query string) ([]domain.RetrievedChunk, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	// Pin one snapshot for the whole lookup so a concurrent publish cannot
	// mix chunks from two builds.
	snapshot := r.snapshots.Current()
	if snapshot == nil {
		return nil, domain.ErrIndexNotReady
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, wrapEmbedding(err)
	}

	hits, err := snapshot.Index.Search(ctx, vector, r.topK)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %w", domain.ErrEmbedding, err)
	}

	results := make([]domain.RetrievedChunk, 0, len(hits))
	for _, hit := range hits {
		if hit.Position < 0 || hit.Position >= len(snapshot.Chunks) {
			continue
		}
		results = append(results, domain.RetrievedChunk{
			Chunk: snapshot.Chunks[hit.Position],
			Score: hit.Similarity,
		})
	}

	logger.Debug("Retrieved %d chunks for %q from snapshot %s", len(results), query, snapshot.ID)
	return results, nil
}
