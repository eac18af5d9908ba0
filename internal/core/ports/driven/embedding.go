// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Note: This is separate from VectorIndex which searches vectors.
// EmbeddingService generates vectors; VectorIndex holds them.
//
// Implementations may include:
//   - Ollama (llama3.1:8b, nomic-embed-text)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - A caching decorator over either
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	// The result has one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 768, 1536, 4096).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// EmbeddingCache stores vectors keyed by (namespace, content hash).
// It is a pure optimisation: a hit must return exactly the vector that was stored.
type EmbeddingCache interface {
	// Get returns the cached vector and true, or nil and false on a miss.
	Get(ctx context.Context, namespace, hash string) ([]float32, bool, error)

	// Put stores a vector, replacing any previous one.
	Put(ctx context.Context, namespace, hash string, vector []float32) error

	// Close releases resources.
	Close() error
}
