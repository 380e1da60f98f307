package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/schemesearch/internal/index/faiss"
	schemesearch "github.com/kailas-cloud/schemesearch/pkg/sdk"
)

func writeFixtures(t *testing.T, rows string) (string, string) {
	t.Helper()
	dir := t.TempDir()

	ix, err := faiss.New(3, faiss.MetricInnerProduct, [][]float32{{1, 0, 0}, {0, 1, 0}})
	require.NoError(t, err)
	ixPath := filepath.Join(dir, "faiss_index.bin")
	f, err := os.Create(ixPath)
	require.NoError(t, err)
	_, err = ix.WriteTo(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	mdPath := filepath.Join(dir, "metadata.csv")
	require.NoError(t, os.WriteFile(mdPath, []byte(rows), 0o600))
	return ixPath, mdPath
}

func TestInspect(t *testing.T) {
	ixPath, mdPath := writeFixtures(t, "Unnamed: 0,scheme_name,slug\n0,A,a\n1,B,b\n")

	var out bytes.Buffer
	err := newApp(&out).Run([]string{"schemectl", "inspect", "--index", ixPath, "--metadata", mdPath})
	require.NoError(t, err)

	s := out.String()
	assert.Contains(t, s, "dimension: 3")
	assert.Contains(t, s, "vectors:   2")
	assert.Contains(t, s, "metric:    inner_product")
	assert.Contains(t, s, "rows:      2")
	assert.Contains(t, s, "ignored:   Unnamed: 0")
	assert.Contains(t, s, "aligned:   yes")
}

func TestInspect_Misaligned(t *testing.T) {
	ixPath, mdPath := writeFixtures(t, "scheme_name\nA\n")

	var out bytes.Buffer
	err := newApp(&out).Run([]string{"schemectl", "inspect", "-i", ixPath, "-m", mdPath})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "aligned:   no (2 vectors, 1 rows)")
}

func TestInspect_IndexOnly(t *testing.T) {
	ixPath, _ := writeFixtures(t, "scheme_name\nA\n")

	var out bytes.Buffer
	require.NoError(t, newApp(&out).Run([]string{"schemectl", "inspect", "--index", ixPath}))
	assert.NotContains(t, out.String(), "rows:")
}

func TestCommandFlags(t *testing.T) {
	t.Run("index is required", func(t *testing.T) {
		err := newApp(&bytes.Buffer{}).Run([]string{"schemectl", "inspect"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "index")
	})

	t.Run("query is required", func(t *testing.T) {
		err := newApp(&bytes.Buffer{}).Run([]string{"schemectl", "search", "--index", "i", "--metadata", "m"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "query is required")
	})

	t.Run("unknown provider", func(t *testing.T) {
		err := newApp(&bytes.Buffer{}).Run([]string{
			"schemectl", "search", "--index", "i", "--metadata", "m", "--provider", "cohere", "pension",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown provider")
	})

	t.Run("invalid log level", func(t *testing.T) {
		err := newApp(&bytes.Buffer{}).Run([]string{"schemectl", "--log-level", "loud", "inspect", "--index", "i"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestPrintResult(t *testing.T) {
	res := schemesearch.Result{Schemes: []schemesearch.Scheme{
		{Name: "Old Age Pension", Level: "State", Category: "Social welfare"},
	}}

	var table bytes.Buffer
	require.NoError(t, printResult(&table, res, false))
	assert.Contains(t, table.String(), "Old Age Pension")
	assert.Contains(t, table.String(), "RANK")

	var js bytes.Buffer
	require.NoError(t, printResult(&js, res, true))
	var body map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &body))
	assert.NotContains(t, body, "error")

	var empty bytes.Buffer
	require.NoError(t, printResult(&empty, schemesearch.Result{Schemes: []schemesearch.Scheme{}}, false))
	assert.Contains(t, empty.String(), "No schemes found.")

	failed := schemesearch.Result{Schemes: []schemesearch.Scheme{}, Err: errors.New("encoding failure: down")}
	require.Error(t, printResult(&bytes.Buffer{}, failed, false))

	var failedJSON bytes.Buffer
	require.NoError(t, printResult(&failedJSON, failed, true))
	assert.Contains(t, failedJSON.String(), `"error": "encoding failure: down"`)
	assert.Contains(t, failedJSON.String(), `"schemes": []`)
}
