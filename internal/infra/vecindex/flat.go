// Package vecindex implements the flat inner-product index backing the FAQ
// retriever, together with its persisted artifact pair (binary vectors plus a
// JSON metadata store).
package vecindex

import (
	"container/heap"
	"errors"
	"fmt"
)

// Result is one nearest-neighbour candidate. IDs are dense, 0-based and match
// vector insertion order.
type Result struct {
	ID    uint32
	Score float32
}

// Flat is a brute-force inner-product index over unit-normalized vectors,
// so scores behave as cosine similarity. The index is append-only during a
// build and immutable once served; concurrent searches need no locking.
type Flat struct {
	dimension int
	vectors   []float32 // row-major, len == dimension*count
	count     int
}

// New creates an empty flat index of the given dimension.
func New(dimension int) (*Flat, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("vecindex: dimension must be positive, got %d", dimension)
	}
	return &Flat{dimension: dimension}, nil
}

// Dimension returns the fixed vector dimensionality.
func (f *Flat) Dimension() int { return f.dimension }

// Len returns the number of indexed vectors.
func (f *Flat) Len() int { return f.count }

// Append adds a vector at the next internal id.
func (f *Flat) Append(vector []float32) error {
	if len(vector) != f.dimension {
		return fmt.Errorf("vecindex: vector dimension %d does not match index dimension %d", len(vector), f.dimension)
	}
	f.vectors = append(f.vectors, vector...)
	f.count++
	return nil
}

// Search returns up to k candidates in descending score order, ties broken
// by ascending id. k greater than the index size is clamped, never an error.
func (f *Flat) Search(query []float32, k int) ([]Result, error) {
	if len(query) != f.dimension {
		return nil, fmt.Errorf("vecindex: query dimension %d does not match index dimension %d", len(query), f.dimension)
	}
	if k <= 0 {
		return nil, errors.New("vecindex: k must be positive")
	}
	if k > f.count {
		k = f.count
	}
	if k == 0 {
		return nil, nil
	}

	// Bounded min-heap: the worst kept candidate sits on top.
	h := make(resultHeap, 0, k)
	for id := 0; id < f.count; id++ {
		score := dot(query, f.vectors[id*f.dimension:(id+1)*f.dimension])
		candidate := Result{ID: uint32(id), Score: score}
		if len(h) < k {
			heap.Push(&h, candidate)
			continue
		}
		if betterThan(candidate, h[0]) {
			h[0] = candidate
			heap.Fix(&h, 0)
		}
	}

	out := make([]Result, len(h))
	for i := len(h) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&h).(Result)
	}
	return out, nil
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// betterThan orders candidates by descending score, then ascending id.
func betterThan(a, b Result) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.ID < b.ID
}

// resultHeap keeps the weakest retained candidate at the root.
type resultHeap []Result

func (h resultHeap) Len() int           { return len(h) }
func (h resultHeap) Less(i, j int) bool { return betterThan(h[j], h[i]) }
func (h resultHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *resultHeap) Push(x any)        { *h = append(*h, x.(Result)) }
func (h *resultHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
