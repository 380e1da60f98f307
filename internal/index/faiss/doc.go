// Package faiss reads FAISS flat indexes (IndexFlatL2, IndexFlatIP) written by
// faiss.write_index and answers exact top-k queries over them.
//
// The whole index is held in memory and never mutated after Read, so an
// *Index is safe for concurrent Search calls.
//
// Ranking is exact. Equal distances are ordered by ascending position, which
// makes results fully deterministic for a given query vector. Slots that
// cannot be filled (k larger than the index) carry domain.NoNeighbor, the
// same convention FAISS uses with label -1.
package faiss
