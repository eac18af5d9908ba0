package driving

import (
	"context"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

// IndexService builds and publishes the document index.
type IndexService interface {
	// Build loads, chunks and embeds every document and publishes a new snapshot.
	// On failure the previously published snapshot, if any, stays in place.
	Build(ctx context.Context) (domain.IndexStats, error)

	// Ready returns true once a snapshot has been published.
	Ready() bool

	// Stats describes the published snapshot.
	Stats() domain.IndexStats
}
