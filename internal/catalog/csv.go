package catalog

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kailas-cloud/schemesearch/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadCSV reads a headed CSV catalog from path.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = f.Close() }()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return t, nil
}

// ReadCSV decodes a headed CSV catalog. Every record must have as many fields as the header.
func ReadCSV(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty catalog: no header row")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	b, err := bind(header)
	if err != nil {
		return nil, err
	}

	var rows []domain.Scheme
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows), err)
		}
		rows = append(rows, b.row(rec))
	}

	return &Table{rows: rows, columns: b.present, ignored: b.ignored}, nil
}
