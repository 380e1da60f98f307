package schemesearch

import "github.com/kailas-cloud/schemesearch/internal/domain"

// Scheme is one catalog record.
type Scheme struct {
	Name        string `json:"scheme_name"`
	Slug        string `json:"slug"`
	Details     string `json:"details"`
	Benefits    string `json:"benefits"`
	Eligibility string `json:"eligibility"`
	Application string `json:"application"`
	Documents   string `json:"documents"`
	Level       string `json:"level"`
	Category    string `json:"schemeCategory"`
	Tags        string `json:"tags"`
}

// Result is the outcome of one Search. Exactly one of Schemes (possibly empty) or Err is meaningful.
type Result struct {
	Schemes []Scheme
	Err     error
}

// Stats describes the loaded index and catalog.
type Stats struct {
	Dimension int
	Vectors   int
	Metric    string
	Rows      int
	Columns   []string
	Aligned   bool
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component → "ok"/"warn"/"error"
}

func schemeFromDomain(s domain.Scheme) Scheme {
	return Scheme{
		Name:        s.Name,
		Slug:        s.Slug,
		Details:     s.Details,
		Benefits:    s.Benefits,
		Eligibility: s.Eligibility,
		Application: s.Application,
		Documents:   s.Documents,
		Level:       s.Level,
		Category:    s.Category,
		Tags:        s.Tags,
	}
}
