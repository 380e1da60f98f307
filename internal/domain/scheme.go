package domain

// Scheme is a single row of the scheme catalog.
// JSON names follow the catalog column names so responses keep the table's shape.
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
