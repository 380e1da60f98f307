package search

import (
	"context"

	"github.com/kailas-cloud/schemesearch/internal/domain"
)

// Encoder vectorizes query text.
type Encoder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Index returns the k nearest neighbours of a query vector.
// Unfilled slots carry domain.NoNeighbor.
type Index interface {
	Search(ctx context.Context, query []float32, k int) ([]domain.Neighbor, error)
}

// Catalog resolves validated positions to scheme rows.
type Catalog interface {
	Len() int
	At(i int) (domain.Scheme, error)
}
