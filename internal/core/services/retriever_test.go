package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askdocs/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
)

func builtIndex(t *testing.T) *IndexService {
	t.Helper()
	captureLog(t)
	svc := newTestIndexService(&mockLoader{docs: testDocs()}, testEmbedder(), IndexConfig{})
	_, err := svc.Build(context.Background())
	require.NoError(t, err)
	return svc
}

func TestRetriever_NotReady(t *testing.T) {
	embedder := testEmbedder()
	r := NewRetrieverService(&staticSnapshots{}, embedder, 4)

	_, err := r.Retrieve(context.Background(), "cats")
	assert.ErrorIs(t, err, domain.ErrIndexNotReady)
	assert.Empty(t, embedder.queries, "no embedding call before the index is ready")
}

func TestRetriever_RanksBySimilarity(t *testing.T) {
	index := builtIndex(t)
	r := NewRetrieverService(index, testEmbedder(), 2)

	results, err := r.Retrieve(context.Background(), "cats")
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "cats purr", results[0].Chunk.Content)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.Equal(t, "cats nap", results[1].Chunk.Content)
	assert.Equal(t, "cats.txt", results[1].Chunk.Source)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestRetriever_DefaultTopK(t *testing.T) {
	r := NewRetrieverService(&staticSnapshots{}, testEmbedder(), 0)
	assert.Equal(t, domain.DefaultTopK, r.topK)
}

func TestRetriever_FewerChunksThanK(t *testing.T) {
	index := builtIndex(t)
	results, err := NewRetrieverService(index, testEmbedder(), 10).Retrieve(context.Background(), "dogs")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "dogs bark", results[0].Chunk.Content)
}

func TestRetriever_Deterministic(t *testing.T) {
	index := builtIndex(t)
	r := NewRetrieverService(index, testEmbedder(), 3)

	first, err := r.Retrieve(context.Background(), "unknown words")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := r.Retrieve(context.Background(), "unknown words")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRetriever_EmbeddingError(t *testing.T) {
	index := builtIndex(t)
	r := NewRetrieverService(index, &mockEmbeddingService{embedErr: errors.New("timeout")}, 4)

	_, err := r.Retrieve(context.Background(), "cats")
	assert.ErrorIs(t, err, domain.ErrEmbedding)
}

func TestRetriever_SearchError(t *testing.T) {
	snapshot := &Snapshot{ID: "s", Index: &mockVectorIndex{searchErr: domain.ErrInvalidInput}}
	r := NewRetrieverService(&staticSnapshots{snapshot: snapshot}, testEmbedder(), 4)

	_, err := r.Retrieve(context.Background(), "cats")
	assert.ErrorIs(t, err, domain.ErrEmbedding)
}

func TestRetriever_IgnoresOutOfRangeHits(t *testing.T) {
	snapshot := &Snapshot{
		ID:     "s",
		Chunks: []domain.Chunk{{Content: "only"}},
		Index: &mockVectorIndex{hits: []driven.VectorHit{
			{Position: 0, Similarity: 0.9},
			{Position: 7, Similarity: 0.5},
		}},
	}
	results, err := NewRetrieverService(&staticSnapshots{snapshot: snapshot}, testEmbedder(), 4).
		Retrieve(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "only", results[0].Chunk.Content)
}

func TestRetriever_BlankQuery(t *testing.T) {
	index := builtIndex(t)
	_, err := NewRetrieverService(index, testEmbedder(), 4).Retrieve(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRetriever_CachedAndUncachedVectorsAgree(t *testing.T) {
	captureLog(t)
	vectors := [][]float32{{0.3, 0.4, 0.5}, {0.5, 0.4, 0.3}}
	a, err := memory.BuildVectorIndex(vectors)
	require.NoError(t, err)
	b, err := memory.BuildVectorIndex([][]float32{append([]float32(nil), vectors[0]...), append([]float32(nil), vectors[1]...)})
	require.NoError(t, err)

	chunks := []domain.Chunk{{Content: "x"}, {Content: "y"}}
	ra := NewRetrieverService(&staticSnapshots{snapshot: &Snapshot{Chunks: chunks, Index: a}}, testEmbedder(), 2)
	rb := NewRetrieverService(&staticSnapshots{snapshot: &Snapshot{Chunks: chunks, Index: b}}, testEmbedder(), 2)

	resA, err := ra.Retrieve(context.Background(), "q")
	require.NoError(t, err)
	resB, err := rb.Retrieve(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, resA, resB)
}
