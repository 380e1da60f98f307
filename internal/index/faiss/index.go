package faiss

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/hupe1980/vecgo/distance"

	"github.com/kailas-cloud/schemesearch/internal/domain"
)

// Metric is the FAISS metric type as stored in the index header.
type Metric int32

const (
	// MetricInnerProduct ranks by descending dot product.
	MetricInnerProduct Metric = 0
	// MetricL2 ranks by ascending squared Euclidean distance.
	MetricL2 Metric = 1
)

func (m Metric) String() string {
	switch m {
	case MetricInnerProduct:
		return "inner_product"
	case MetricL2:
		return "l2"
	default:
		return fmt.Sprintf("metric(%d)", int32(m))
	}
}

const (
	fourccL2     = "IxF2"
	fourccIP     = "IxFI"
	fourccLegacy = "IxFl"

	// maxCodes caps the float count accepted from a header (16 GiB of vectors).
	maxCodes = 1 << 32

	// ctxCheckEvery is how many rows are scanned between context checks.
	ctxCheckEvery = 4096
)

// header mirrors faiss write_index_header. binary.Read decodes it without padding.
type header struct {
	Dim        int32
	NTotal     int64
	Dummy1     int64
	Dummy2     int64
	IsTrained  uint8
	MetricType int32
}

// Index is an in-memory flat vector index.
type Index struct {
	dim     int
	n       int
	metric  Metric
	vectors []float32 // row-major, n*dim
	dist    func(a, b []float32) float32
}

// New builds an index from rows. All rows must have length dim.
func New(dim int, metric Metric, rows [][]float32) (*Index, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("dimension must be positive, got %d", dim)
	}
	vectors := make([]float32, 0, dim*len(rows))
	for i, row := range rows {
		if len(row) != dim {
			return nil, fmt.Errorf("row %d: %w: got %d, want %d", i, domain.ErrDimensionMismatch, len(row), dim)
		}
		vectors = append(vectors, row...)
	}
	return newIndex(dim, len(rows), metric, vectors)
}

func newIndex(dim, n int, metric Metric, vectors []float32) (*Index, error) {
	ix := &Index{dim: dim, n: n, metric: metric, vectors: vectors}
	switch metric {
	case MetricL2:
		ix.dist = distance.SquaredL2
	case MetricInnerProduct:
		ix.dist = distance.Dot
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedIndex, metric)
	}
	return ix, nil
}

// Load reads a FAISS flat index from a file.
func Load(path string) (*Index, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer func() { _ = f.Close() }()

	ix, err := Read(bufio.NewReaderSize(f, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read index %s: %w", path, err)
	}
	return ix, nil
}

// Read decodes a FAISS flat index from r.
func Read(r io.Reader) (*Index, error) {
	var fourcc [4]byte
	if _, err := io.ReadFull(r, fourcc[:]); err != nil {
		return nil, fmt.Errorf("read fourcc: %w", err)
	}

	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if Metric(h.MetricType) > MetricL2 {
		// metric_arg follows for exotic metrics; we still reject those below.
		var arg float32
		if err := binary.Read(r, binary.LittleEndian, &arg); err != nil {
			return nil, fmt.Errorf("read metric arg: %w", err)
		}
	}

	metric := Metric(h.MetricType)
	switch string(fourcc[:]) {
	case fourccL2:
		if metric != MetricL2 {
			return nil, fmt.Errorf("%w: %s header declares %s", domain.ErrUnsupportedIndex, fourccL2, metric)
		}
	case fourccIP:
		if metric != MetricInnerProduct {
			return nil, fmt.Errorf("%w: %s header declares %s", domain.ErrUnsupportedIndex, fourccIP, metric)
		}
	case fourccLegacy:
	default:
		return nil, fmt.Errorf("%w: fourcc %q", domain.ErrUnsupportedIndex, fourcc[:])
	}

	if h.Dim <= 0 {
		return nil, fmt.Errorf("invalid dimension %d", h.Dim)
	}
	if h.NTotal < 0 {
		return nil, fmt.Errorf("invalid vector count %d", h.NTotal)
	}

	want := uint64(h.Dim) * uint64(h.NTotal)
	if want > maxCodes {
		return nil, fmt.Errorf("index too large: %d floats", want)
	}

	var size uint64
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return nil, fmt.Errorf("read codes size: %w", err)
	}
	if size != want {
		return nil, fmt.Errorf("codes size %d does not match d=%d ntotal=%d", size, h.Dim, h.NTotal)
	}

	vectors := make([]float32, size)
	if err := binary.Read(r, binary.LittleEndian, vectors); err != nil {
		return nil, fmt.Errorf("read codes: %w", err)
	}

	return newIndex(int(h.Dim), int(h.NTotal), metric, vectors)
}

// WriteTo serializes the index in the FAISS flat format.
func (ix *Index) WriteTo(w io.Writer) (int64, error) {
	fourcc := fourccL2
	if ix.metric == MetricInnerProduct {
		fourcc = fourccIP
	}
	cw := &countingWriter{w: w}
	h := header{
		Dim:        int32(ix.dim), //nolint:gosec // dimension validated on construction
		NTotal:     int64(ix.n),
		Dummy1:     1 << 20,
		Dummy2:     1 << 20,
		IsTrained:  1,
		MetricType: int32(ix.metric),
	}
	steps := []any{[]byte(fourcc), h, uint64(len(ix.vectors)), ix.vectors}
	for _, v := range steps {
		if err := binary.Write(cw, binary.LittleEndian, v); err != nil {
			return cw.n, fmt.Errorf("write index: %w", err)
		}
	}
	return cw.n, nil
}

// Dimension returns the vector dimension.
func (ix *Index) Dimension() int { return ix.dim }

// Len returns the number of indexed vectors.
func (ix *Index) Len() int { return ix.n }

// Metric returns the ranking metric.
func (ix *Index) Metric() Metric { return ix.metric }

// Search returns exactly k neighbors of query, best first.
// Slots beyond the index size hold domain.NoNeighbor.
func (ix *Index) Search(ctx context.Context, query []float32, k int) ([]domain.Neighbor, error) {
	if k <= 0 {
		return nil, fmt.Errorf("top-k must be positive, got %d", k)
	}
	if len(query) != ix.dim {
		return nil, fmt.Errorf("%w: query has %d, index has %d", domain.ErrDimensionMismatch, len(query), ix.dim)
	}
	for _, v := range query {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, fmt.Errorf("%w: query has non-finite component", domain.ErrInvalidVector)
		}
	}

	top := newTopK(k, ix.metric)
	for i := 0; i < ix.n; i++ {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("search interrupted: %w", err)
			}
		}
		row := ix.vectors[i*ix.dim : (i+1)*ix.dim]
		top.offer(int64(i), ix.dist(query, row))
	}
	return top.slots, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err //nolint:wrapcheck // pass-through writer
}
