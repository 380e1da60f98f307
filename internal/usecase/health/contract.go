package health

import "context"

// Sized is a loaded, immutable data set (index or catalog).
type Sized interface {
	Len() int
}

// CachePinger checks embedding cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
