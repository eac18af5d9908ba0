package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
	"github.com/custodia-labs/askdocs/internal/core/ports/driving"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// Snapshot is one published index. It is never modified after publication,
// so readers share it without locking.
type Snapshot struct {
	ID    string
	Model string

	// Chunks holds the indexed chunks; Chunks[i] belongs to vector i.
	Chunks []domain.Chunk
	Index  driven.VectorIndex

	Documents int
	Skipped   []domain.SkippedDocument
	BuiltAt   time.Time
	Duration  time.Duration
}

// Stats describes the snapshot.
func (s *Snapshot) Stats() domain.IndexStats {
	return domain.IndexStats{
		SnapshotID: s.ID,
		Ready:      true,
		Documents:  s.Documents,
		Chunks:     len(s.Chunks),
		Skipped:    len(s.Skipped),
		Dimensions: s.Index.Dimensions(),
		Model:      s.Model,
		BuiltAt:    s.BuiltAt,
		Duration:   s.Duration,
	}
}

// IndexConfig tunes the build.
type IndexConfig struct {
	// BatchSize is the number of chunks per embedding request (default: 32).
	BatchSize int

	// RequestsPerSecond limits embedding requests. Zero is unlimited.
	RequestsPerSecond float64
}

// IndexService builds index snapshots and publishes them atomically.
type IndexService struct {
	loader   DocumentLoader
	chunker  driven.Chunker
	embedder driven.EmbeddingService
	newIndex driven.VectorIndexBuilder
	cfg      IndexConfig

	// mu serialises builds. Readers use current only.
	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
}

// NewIndexService creates an index service with no published snapshot.
func NewIndexService(
	loader DocumentLoader,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	newIndex driven.VectorIndexBuilder,
	cfg IndexConfig,
) *IndexService {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = domain.DefaultBatchSize
	}
	return &IndexService{
		loader:   loader,
		chunker:  chunker,
		embedder: embedder,
		newIndex: newIndex,
		cfg:      cfg,
	}
}

// Build loads, chunks and embeds every document, then publishes a new
// snapshot. On any failure the previous snapshot stays published.
func (s *IndexService) Build(ctx context.Context) (domain.IndexStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()

	docs, report, err := s.loader.Load(ctx)
	if err != nil {
		return s.Stats(), err
	}

	logger.Section("Chunking")
	var chunks []domain.Chunk
	for i := range docs {
		docChunks, err := s.chunker.Chunk(ctx, &docs[i])
		if err != nil {
			return s.Stats(), fmt.Errorf("chunk %s: %w", docs[i].Source, err)
		}
		logger.Debug("%s: %d chunks", docs[i].Source, len(docChunks))
		chunks = append(chunks, docChunks...)
	}
	if len(chunks) == 0 {
		return s.Stats(), fmt.Errorf("%w: documents produced no chunks", domain.ErrNoDocuments)
	}
	logger.Info("Split %d documents into %d chunks", len(docs), len(chunks))

	vectors, err := s.embed(ctx, chunks)
	if err != nil {
		return s.Stats(), err
	}

	index, err := s.newIndex(vectors)
	if err != nil {
		return s.Stats(), fmt.Errorf("build vector index: %w", err)
	}

	snapshot := &Snapshot{
		ID:        uuid.New().String(),
		Model:     s.embedder.ModelName(),
		Chunks:    chunks,
		Index:     index,
		Documents: len(docs),
		Skipped:   report.Skipped,
		BuiltAt:   time.Now(),
		Duration:  time.Since(start),
	}
	s.current.Store(snapshot)

	logger.Info("Published index %s: %d chunks, %d dimensions, built in %s",
		snapshot.ID, len(chunks), index.Dimensions(), snapshot.Duration.Round(time.Millisecond))
	return snapshot.Stats(), nil
}

// embed embeds chunk texts in batches, in chunk order.
func (s *IndexService) embed(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	logger.Section("Embedding")

	limit := rate.Inf
	if s.cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(s.cfg.RequestsPerSecond)
	}
	limiter := rate.NewLimiter(limit, 1)

	vectors := make([][]float32, 0, len(chunks))
	dim := 0
	for start := 0; start < len(chunks); start += s.cfg.BatchSize {
		end := min(start+s.cfg.BatchSize, len(chunks))

		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		texts := make([]string, end-start)
		for i := range texts {
			texts[i] = chunks[start+i].Content
		}

		batch, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, wrapEmbedding(err)
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("%w: got %d vectors for %d chunks", domain.ErrEmbedding, len(batch), len(texts))
		}

		for i, v := range batch {
			if dim == 0 {
				dim = len(v)
			}
			if len(v) == 0 || len(v) != dim {
				return nil, fmt.Errorf("%w: chunk %d has %d dimensions, expected %d",
					domain.ErrEmbedding, start+i, len(v), dim)
			}
		}
		vectors = append(vectors, batch...)
		logger.Debug("Embedded %d/%d chunks", len(vectors), len(chunks))
	}

	return vectors, nil
}

// Current returns the published snapshot, or nil before the first build.
func (s *IndexService) Current() *Snapshot {
	return s.current.Load()
}

// Ready returns true once a snapshot has been published.
func (s *IndexService) Ready() bool {
	return s.current.Load() != nil
}

// Stats describes the published snapshot.
func (s *IndexService) Stats() domain.IndexStats {
	snapshot := s.current.Load()
	if snapshot == nil {
		return domain.IndexStats{}
	}
	return snapshot.Stats()
}

func wrapEmbedding(err error) error {
	if errors.Is(err, domain.ErrEmbedding) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
}
