// Package dataset loads the vector index and the row-aligned scheme table together.
package dataset

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/schemesearch/internal/catalog"
	"github.com/kailas-cloud/schemesearch/internal/index/faiss"
)

// Dataset is the immutable pair served by the query pipeline.
type Dataset struct {
	Index *faiss.Index
	Table *catalog.Table
}

// Load reads the index and the table concurrently. Either failure aborts the load.
func Load(ctx context.Context, indexPath, metadataPath string, format catalog.Format) (*Dataset, error) {
	var ds Dataset

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ix, err := faiss.Load(indexPath)
		if err != nil {
			return fmt.Errorf("load index: %w", err)
		}
		ds.Index = ix
		return nil
	})
	g.Go(func() error {
		t, err := catalog.Load(metadataPath, format)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		ds.Table = t
		return ctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // already wrapped per source
	}
	return &ds, nil
}

// Aligned reports whether every index position has a table row and vice versa.
func (d *Dataset) Aligned() bool {
	return d.Index.Len() == d.Table.Len()
}

// Stats summarizes the dataset for logs and the inspect command.
type Stats struct {
	Dimension int
	Vectors   int
	Metric    string
	Rows      int
	Columns   []string
	Ignored   []string
	Aligned   bool
}

// Stats returns a summary of the loaded dataset.
func (d *Dataset) Stats() Stats {
	return Stats{
		Dimension: d.Index.Dimension(),
		Vectors:   d.Index.Len(),
		Metric:    d.Index.Metric().String(),
		Rows:      d.Table.Len(),
		Columns:   d.Table.Columns(),
		Ignored:   d.Table.Ignored(),
		Aligned:   d.Aligned(),
	}
}
