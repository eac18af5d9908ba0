package memory

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an immutable brute-force cosine index. Vectors are
// normalised once at build time, so a search is one dot product per entry.
type VectorIndex struct {
	vectors [][]float32
	dim     int
}

// NewVectorIndex copies and normalises vectors. All vectors must share one
// non-zero dimension. Zero vectors are kept and score 0 against any query.
func NewVectorIndex(vectors [][]float32) (*VectorIndex, error) {
	if len(vectors) == 0 {
		return &VectorIndex{}, nil
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: empty vector at position 0", domain.ErrInvalidInput)
	}

	normalised := make([][]float32, len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, expected %d",
				domain.ErrInvalidInput, i, len(v), dim)
		}
		normalised[i] = normalise(v)
	}

	return &VectorIndex{vectors: normalised, dim: dim}, nil
}

// BuildVectorIndex adapts NewVectorIndex to driven.VectorIndexBuilder.
func BuildVectorIndex(vectors [][]float32) (driven.VectorIndex, error) {
	idx, err := NewVectorIndex(vectors)
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// Search returns the k most similar vectors, best first. Equal scores keep
// insertion order, so repeated searches return identical results.
func (idx *VectorIndex) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 || len(idx.vectors) == 0 {
		return nil, nil
	}
	if len(query) != idx.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrInvalidInput, len(query), idx.dim)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := normalise(query)
	hits := make([]driven.VectorHit, len(idx.vectors))
	for i, v := range idx.vectors {
		hits[i] = driven.VectorHit{Position: i, Similarity: dot(q, v)}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Similarity > hits[b].Similarity
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k:k], nil
}

// Len returns the number of indexed vectors.
func (idx *VectorIndex) Len() int {
	return len(idx.vectors)
}

// Dimensions returns the vector size, or 0 for an empty index.
func (idx *VectorIndex) Dimensions() int {
	return idx.dim
}

// normalise returns a unit-length copy of v, or a zero copy if v is zero.
func normalise(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}
	inv := 1 / math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
