package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"github.com/kailas-cloud/schemesearch/internal/domain"
)

// parquetRow is the on-disk row shape. All columns are optional at the
// decoder level; required ones are enforced against the file schema.
type parquetRow struct {
	Name        string `parquet:"scheme_name,optional"`
	Slug        string `parquet:"slug,optional"`
	Details     string `parquet:"details,optional"`
	Benefits    string `parquet:"benefits,optional"`
	Eligibility string `parquet:"eligibility,optional"`
	Application string `parquet:"application,optional"`
	Documents   string `parquet:"documents,optional"`
	Level       string `parquet:"level,optional"`
	Category    string `parquet:"schemeCategory,optional"`
	Tags        string `parquet:"tags,optional"`
}

func (r parquetRow) scheme() domain.Scheme {
	return domain.Scheme{
		Name:        r.Name,
		Slug:        r.Slug,
		Details:     r.Details,
		Benefits:    r.Benefits,
		Eligibility: r.Eligibility,
		Application: r.Application,
		Documents:   r.Documents,
		Level:       r.Level,
		Category:    r.Category,
		Tags:        r.Tags,
	}
}

// LoadParquet reads a Parquet catalog from path.
func LoadParquet(path string) (*Table, error) {
	path = filepath.Clean(path)

	names, err := parquetColumns(path)
	if err != nil {
		return nil, err
	}
	b, err := bind(names)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	raw, err := parquet.ReadFile[parquetRow](path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	rows := make([]domain.Scheme, len(raw))
	for i, r := range raw {
		rows[i] = r.scheme()
	}
	return &Table{rows: rows, columns: b.present, ignored: b.ignored}, nil
}

// parquetColumns lists top-level column names of the file schema.
func parquetColumns(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat catalog: %w", err)
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet %s: %w", path, err)
	}

	fields := pf.Schema().Fields()
	names := make([]string, len(fields))
	for i, fl := range fields {
		names[i] = fl.Name()
	}
	return names, nil
}
