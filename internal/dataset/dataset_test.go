package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/schemesearch/internal/catalog"
	"github.com/kailas-cloud/schemesearch/internal/domain"
	"github.com/kailas-cloud/schemesearch/internal/index/faiss"
)

const metadataCSV = "scheme_name,slug,level\nA,a,Central\nB,b,State\n"

func writeIndex(t *testing.T, dir string, rows [][]float32) string {
	t.Helper()
	ix, err := faiss.New(2, faiss.MetricL2, rows)
	require.NoError(t, err)

	path := filepath.Join(dir, "faiss_index.bin")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = ix.WriteTo(f)
	require.NoError(t, err)
	return path
}

func writeMetadata(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "metadata.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	ixPath := writeIndex(t, dir, [][]float32{{0, 0}, {1, 1}})
	mdPath := writeMetadata(t, dir, metadataCSV)

	ds, err := Load(context.Background(), ixPath, mdPath, catalog.FormatAuto)
	require.NoError(t, err)

	assert.True(t, ds.Aligned())
	st := ds.Stats()
	assert.Equal(t, 2, st.Dimension)
	assert.Equal(t, 2, st.Vectors)
	assert.Equal(t, 2, st.Rows)
	assert.Equal(t, "l2", st.Metric)
	assert.Contains(t, st.Columns, "scheme_name")
}

func TestLoad_Misaligned(t *testing.T) {
	dir := t.TempDir()
	ixPath := writeIndex(t, dir, [][]float32{{0, 0}, {1, 1}, {2, 2}})
	mdPath := writeMetadata(t, dir, metadataCSV)

	ds, err := Load(context.Background(), ixPath, mdPath, catalog.FormatCSV)
	require.NoError(t, err)
	assert.False(t, ds.Aligned())
}

func TestLoad_MissingIndex(t *testing.T) {
	dir := t.TempDir()
	mdPath := writeMetadata(t, dir, metadataCSV)

	_, err := Load(context.Background(), filepath.Join(dir, "nope.bin"), mdPath, catalog.FormatAuto)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load index")
}

func TestLoad_SchemaDrift(t *testing.T) {
	dir := t.TempDir()
	ixPath := writeIndex(t, dir, [][]float32{{0, 0}})
	mdPath := writeMetadata(t, dir, "name,slug\nA,a\n")

	_, err := Load(context.Background(), ixPath, mdPath, catalog.FormatAuto)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSchemaDrift), "got %v", err)
}
