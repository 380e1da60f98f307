// Package catalog loads the scheme metadata table that is row-aligned with the vector index.
package catalog

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/kailas-cloud/schemesearch/internal/domain"
)

// Format selects the metadata file decoder.
type Format string

const (
	// FormatAuto picks the decoder from the file extension.
	FormatAuto Format = "auto"
	// FormatCSV decodes a headed CSV file.
	FormatCSV Format = "csv"
	// FormatParquet decodes a Parquet file.
	FormatParquet Format = "parquet"
)

// ParseFormat validates a format name. Empty means auto.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatCSV, FormatParquet:
		return f, nil
	default:
		return "", fmt.Errorf("unknown catalog format %q", s)
	}
}

// column binds a source column to a Scheme field.
type column struct {
	name     string
	required bool
	set      func(*domain.Scheme, string)
}

var columns = []column{
	{"scheme_name", true, func(s *domain.Scheme, v string) { s.Name = v }},
	{"slug", false, func(s *domain.Scheme, v string) { s.Slug = v }},
	{"details", false, func(s *domain.Scheme, v string) { s.Details = v }},
	{"benefits", false, func(s *domain.Scheme, v string) { s.Benefits = v }},
	{"eligibility", false, func(s *domain.Scheme, v string) { s.Eligibility = v }},
	{"application", false, func(s *domain.Scheme, v string) { s.Application = v }},
	{"documents", false, func(s *domain.Scheme, v string) { s.Documents = v }},
	{"level", false, func(s *domain.Scheme, v string) { s.Level = v }},
	{"schemeCategory", false, func(s *domain.Scheme, v string) { s.Category = v }},
	{"tags", false, func(s *domain.Scheme, v string) { s.Tags = v }},
}

// Table is the immutable, position-addressed scheme catalog.
type Table struct {
	rows    []domain.Scheme
	columns []string
	ignored []string
}

// New wraps already decoded rows.
func New(rows []domain.Scheme) *Table {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = c.name
	}
	return &Table{rows: rows, columns: cols}
}

// Load reads the catalog from path.
func Load(path string, format Format) (*Table, error) {
	if format == "" || format == FormatAuto {
		format = formatFromExt(path)
	}
	switch format {
	case FormatCSV:
		return LoadCSV(path)
	case FormatParquet:
		return LoadParquet(path)
	default:
		return nil, fmt.Errorf("cannot infer catalog format for %s", path)
	}
}

func formatFromExt(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".parquet", ".pq":
		return FormatParquet
	default:
		return ""
	}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// At returns the row at position i.
func (t *Table) At(i int) (domain.Scheme, error) {
	if i < 0 || i >= len(t.rows) {
		return domain.Scheme{}, fmt.Errorf("%w: %d not in [0, %d)", domain.ErrRowOutOfRange, i, len(t.rows))
	}
	return t.rows[i], nil
}

// Columns returns the recognised columns present in the source, in source order.
func (t *Table) Columns() []string { return slices.Clone(t.columns) }

// Ignored returns source columns that do not map to a Scheme field.
func (t *Table) Ignored() []string { return slices.Clone(t.ignored) }

// binding maps header positions to columns and checks required ones are present.
type binding struct {
	setters []func(*domain.Scheme, string) // by source position, nil if ignored
	present []string
	ignored []string
}

func bind(header []string) (binding, error) {
	b := binding{setters: make([]func(*domain.Scheme, string), len(header))}
	seen := make(map[string]bool, len(header))
	for i, raw := range header {
		name := strings.TrimSpace(raw)
		idx := slices.IndexFunc(columns, func(c column) bool { return c.name == name })
		if idx < 0 || seen[name] {
			b.ignored = append(b.ignored, raw)
			continue
		}
		seen[name] = true
		b.setters[i] = columns[idx].set
		b.present = append(b.present, name)
	}

	var missing []string
	for _, c := range columns {
		if c.required && !seen[c.name] {
			missing = append(missing, c.name)
		}
	}
	if len(missing) > 0 {
		return binding{}, fmt.Errorf("%w: missing required columns %s", domain.ErrSchemaDrift, strings.Join(missing, ", "))
	}
	return b, nil
}

func (b binding) row(values []string) domain.Scheme {
	var s domain.Scheme
	for i, v := range values {
		if set := b.setters[i]; set != nil {
			set(&s, v)
		}
	}
	return s
}
