package driven

import (
	"context"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

// Chunker splits a document's content into overlapping chunks.
type Chunker interface {
	// Name returns the chunker name for logging.
	Name() string

	// Chunk returns the chunks of doc in document order.
	// A document without text yields no chunks.
	Chunk(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
