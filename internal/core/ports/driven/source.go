package driven

import (
	"context"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

// DocumentSource resolves document names to bytes.
// Implementations read from a local directory or a remote object store.
type DocumentSource interface {
	// Type returns the source type identifier.
	Type() string

	// List returns the documents to index.
	// An explicitly configured file list is returned in configuration order;
	// enumerated listings are sorted by name.
	List(ctx context.Context) ([]domain.DocumentRef, error)

	// Fetch returns the bytes of one document.
	// A missing document fails with domain.ErrNotFound, any other failure
	// with domain.ErrDownload.
	Fetch(ctx context.Context, ref domain.DocumentRef) (*domain.RawDocument, error)

	// Close releases resources.
	Close() error
}

// WatchableSource is implemented by sources that can report changes.
type WatchableSource interface {
	DocumentSource

	// Watch calls onChange after the set of documents changes.
	// It blocks until ctx is cancelled.
	Watch(ctx context.Context, onChange func()) error
}
