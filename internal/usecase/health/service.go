// Package health aggregates component checks for the /health endpoint.
package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates a remote dependency is failing; searches will fail or run uncached.
	Degraded Status = "degraded"
	// Unhealthy indicates the in-memory index or catalog is unusable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckWarn indicates a condition worth attention that does not fail the check.
	CheckWarn CheckResult = "warn"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks. Only index and catalog are required.
type Service struct {
	index     Sized
	catalog   Sized
	embedding EmbeddingChecker
	cache     CachePinger
}

// New creates a Service. embedding and cache can be nil.
func New(index, catalog Sized, embedding EmbeddingChecker, cache CachePinger) *Service {
	return &Service{index: index, catalog: catalog, embedding: embedding, cache: cache}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	critical := func(name string, ok bool) {
		if ok {
			checks[name] = CheckOK
			return
		}
		checks[name] = CheckError
		status = Unhealthy
	}
	critical("index", s.index != nil && s.index.Len() > 0)
	critical("catalog", s.catalog != nil && s.catalog.Len() > 0)

	if s.index != nil && s.catalog != nil {
		if s.index.Len() == s.catalog.Len() {
			checks["alignment"] = CheckOK
		} else {
			checks["alignment"] = CheckWarn
		}
	}

	remote := func(name string, err error) {
		if err == nil {
			checks[name] = CheckOK
			return
		}
		checks[name] = CheckError
		if status == Healthy {
			status = Degraded
		}
	}
	if s.embedding != nil {
		remote("embedding", s.embedding.HealthCheck(ctx))
	}
	if s.cache != nil {
		remote("cache", s.cache.Ping(ctx))
	}

	return Report{Status: status, Checks: checks}
}
