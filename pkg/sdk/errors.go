package schemesearch

import "github.com/kailas-cloud/schemesearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEncodingFailure        = domain.ErrEncodingFailure
	ErrSearchFailure          = domain.ErrSearchFailure
	ErrLookupFailure          = domain.ErrLookupFailure
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrDimensionMismatch      = domain.ErrDimensionMismatch
	ErrUnsupportedIndex       = domain.ErrUnsupportedIndex
	ErrSchemaDrift            = domain.ErrSchemaDrift
)
