package search

import "github.com/kailas-cloud/schemesearch/internal/domain"

// Outcome is the result of one pipeline run: either schemes or an error, never both.
type Outcome struct {
	schemes []domain.Scheme
	err     error
}

// Success builds a successful outcome. A nil slice is normalized to empty.
func Success(schemes []domain.Scheme) Outcome {
	if schemes == nil {
		schemes = []domain.Scheme{}
	}
	return Outcome{schemes: schemes}
}

// Failure builds a failed outcome. err should wrap one of the domain pipeline failure kinds.
func Failure(err error) Outcome {
	return Outcome{schemes: []domain.Scheme{}, err: err}
}

// OK reports whether the pipeline succeeded.
func (o Outcome) OK() bool { return o.err == nil }

// Schemes returns the ranked results. Always non-nil; empty on failure.
func (o Outcome) Schemes() []domain.Scheme {
	if o.schemes == nil {
		return []domain.Scheme{}
	}
	return o.schemes
}

// Err returns the failure, or nil on success.
func (o Outcome) Err() error { return o.err }
