package faiss

import (
	"math"

	"github.com/kailas-cloud/schemesearch/internal/domain"
)

// topK keeps the best k candidates in rank order. k is small (single digits
// in practice), so insertion into a sorted slice beats a heap.
type topK struct {
	slots  []domain.Neighbor
	filled int
	higher bool // larger distance ranks first (inner product)
}

func newTopK(k int, metric Metric) *topK {
	empty := float32(math.MaxFloat32)
	higher := metric == MetricInnerProduct
	if higher {
		empty = -math.MaxFloat32
	}
	slots := make([]domain.Neighbor, k)
	for i := range slots {
		slots[i] = domain.Neighbor{Position: domain.NoNeighbor, Distance: empty}
	}
	return &topK{slots: slots, higher: higher}
}

// better reports whether d strictly outranks o.
func (t *topK) better(d, o float32) bool {
	if t.higher {
		return d > o
	}
	return d < o
}

// offer must be called with ascending positions; on a tie the earlier position stays ahead.
func (t *topK) offer(pos int64, d float32) {
	if d != d { // NaN never ranks
		return
	}
	k := len(t.slots)
	if t.filled == k && !t.better(d, t.slots[k-1].Distance) {
		return
	}

	i := t.filled
	if i == k {
		i = k - 1
	} else {
		t.filled++
	}
	for i > 0 && t.better(d, t.slots[i-1].Distance) {
		t.slots[i] = t.slots[i-1]
		i--
	}
	t.slots[i] = domain.Neighbor{Position: pos, Distance: d}
}
