package driven

import "context"

// VectorIndex provides nearest-neighbour lookup over a fixed set of vectors.
// An index is built once and never mutated, so concurrent searches need no locking.
type VectorIndex interface {
	// Search returns the k entries most similar to query, best first.
	// Equal scores keep insertion order.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of indexed vectors.
	Len() int

	// Dimensions returns the vector size, or 0 for an empty index.
	Dimensions() int
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Position is the insertion index of the matched vector.
	Position int

	// Similarity is the cosine similarity score (-1 to 1).
	Similarity float64
}

// VectorIndexBuilder constructs an immutable index over vectors.
// Position i of a hit refers to vectors[i].
type VectorIndexBuilder func(vectors [][]float32) (VectorIndex, error)
