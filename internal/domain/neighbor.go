package domain

// NoNeighbor is the position an index reports for a result slot it could not fill.
const NoNeighbor int64 = -1

// Neighbor is one ranked slot of a nearest-neighbor search.
// Position is the zero-based row in the index; Distance is in the index metric.
type Neighbor struct {
	Position int64
	Distance float32
}

// IsEmpty reports whether the slot holds the no-match sentinel or any other negative position.
func (n Neighbor) IsEmpty() bool { return n.Position < 0 }
