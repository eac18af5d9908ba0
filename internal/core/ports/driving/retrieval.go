package driving

import (
	"context"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

// RetrievalService finds the chunks most relevant to a query.
type RetrievalService interface {
	// Retrieve returns the top-k chunks for query, best first.
	// Repeated calls against the same snapshot return the same result.
	Retrieve(ctx context.Context, query string) ([]domain.RetrievedChunk, error)
}
