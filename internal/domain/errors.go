package domain

import "errors"

// Pipeline failure kinds. Every pipeline error wraps exactly one of these.
var (
	// ErrEncodingFailure signals that the query text could not be turned into a vector.
	ErrEncodingFailure = errors.New("encoding failure")
	// ErrSearchFailure signals that the vector index search failed or returned malformed output.
	ErrSearchFailure = errors.New("search failure")
	// ErrLookupFailure signals that a validated position could not be read from the catalog.
	ErrLookupFailure = errors.New("lookup failure")
)

var (
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrDimensionMismatch signals a query vector whose length differs from the index dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrInvalidVector signals a vector with NaN or infinite components.
	ErrInvalidVector = errors.New("invalid vector")
	// ErrRowOutOfRange signals a catalog row lookup outside the table.
	ErrRowOutOfRange = errors.New("row out of range")
	// ErrUnsupportedIndex signals an index file of an unknown type or metric.
	ErrUnsupportedIndex = errors.New("unsupported index")
	// ErrSchemaDrift signals a catalog file missing required columns.
	ErrSchemaDrift = errors.New("catalog schema drift")
)

// FailureKind names the pipeline failure kind err belongs to, for logs and metric labels.
func FailureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEncodingFailure):
		return "encoding"
	case errors.Is(err, ErrSearchFailure):
		return "search"
	case errors.Is(err, ErrLookupFailure):
		return "lookup"
	default:
		return "unknown"
	}
}
