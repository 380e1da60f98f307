package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/schemesearch/internal/domain"
)

const sampleCSV = "\xEF\xBB\xBFscheme_name,slug,details,level,schemeCategory,tags,Unnamed: 0\n" +
	"PM-KISAN,pm-kisan,\"Income support\nfor farmers\",Central,Agriculture,\"farmer, income\",0\n" +
	"Ayushman Bharat,ab-pmjay,Health cover,Central,Health,insurance,1\n" +
	"Kanya Sumangala,mksy,Girl child support,State,Women,girl,2\n"

func TestReadCSV(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Equal(t, 3, tbl.Len())

	first, err := tbl.At(0)
	require.NoError(t, err)
	assert.Equal(t, domain.Scheme{
		Name:     "PM-KISAN",
		Slug:     "pm-kisan",
		Details:  "Income support\nfor farmers",
		Level:    "Central",
		Category: "Agriculture",
		Tags:     "farmer, income",
	}, first)

	last, err := tbl.At(2)
	require.NoError(t, err)
	assert.Equal(t, "Kanya Sumangala", last.Name)

	assert.Equal(t, []string{"scheme_name", "slug", "details", "level", "schemeCategory", "tags"}, tbl.Columns())
	assert.Equal(t, []string{"Unnamed: 0"}, tbl.Ignored())
}

func TestReadCSV_MissingRequiredColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("slug,details\na,b\n"))
	require.ErrorIs(t, err, domain.ErrSchemaDrift)
	assert.Contains(t, err.Error(), "scheme_name")
}

func TestReadCSV_RaggedRow(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("scheme_name,slug\nA,a\nB\n"))
	assert.Error(t, err)
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.Error(t, err)

	tbl, err := ReadCSV(strings.NewReader("scheme_name\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
}

func TestReadCSV_DuplicateColumnKeepsFirst(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("scheme_name,scheme_name\nfirst,second\n"))
	require.NoError(t, err)
	s, err := tbl.At(0)
	require.NoError(t, err)
	assert.Equal(t, "first", s.Name)
	assert.Equal(t, []string{"scheme_name"}, tbl.Ignored())
}

func TestTable_AtOutOfRange(t *testing.T) {
	tbl := New([]domain.Scheme{{Name: "A"}})

	_, err := tbl.At(1)
	assert.ErrorIs(t, err, domain.ErrRowOutOfRange)
	_, err = tbl.At(-1)
	assert.ErrorIs(t, err, domain.ErrRowOutOfRange)
}

func TestLoad_CSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

	tbl, err := Load(path, FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"), FormatCSV)
	assert.Error(t, err)
}

func TestLoad_UnknownExtension(t *testing.T) {
	_, err := Load("metadata.txt", FormatAuto)
	assert.Error(t, err)
}

func TestLoad_ParquetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.parquet")
	rows := []parquetRow{
		{Name: "PM-KISAN", Level: "Central", Category: "Agriculture"},
		{Name: "Ayushman Bharat", Level: "Central", Category: "Health"},
	}
	require.NoError(t, parquet.WriteFile(path, rows))

	tbl, err := Load(path, FormatAuto)
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())

	s, err := tbl.At(1)
	require.NoError(t, err)
	assert.Equal(t, "Ayushman Bharat", s.Name)
	assert.Equal(t, "Health", s.Category)
}

func TestLoad_ParquetMissingRequiredColumn(t *testing.T) {
	type slugOnly struct {
		Slug string `parquet:"slug"`
	}
	path := filepath.Join(t.TempDir(), "metadata.parquet")
	require.NoError(t, parquet.WriteFile(path, []slugOnly{{Slug: "a"}}))

	_, err := LoadParquet(path)
	assert.ErrorIs(t, err, domain.ErrSchemaDrift)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatAuto, "auto": FormatAuto, "CSV": FormatCSV, "parquet": FormatParquet} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xlsx")
	assert.Error(t, err)
}
