// Package vector provides sparse term vectors and similarity helpers for them.
package vector

import (
	"math"
	"sort"
)

// Sparse is a sparse vector keyed by vocabulary index. Missing indices are zero.
type Sparse map[int]float64

// FromCounts weights raw term counts by the given per-index weights.
// Indices with a zero or negative product are omitted.
func FromCounts(counts map[int]int, weights []float64) Sparse {
	v := make(Sparse, len(counts))
	for idx, n := range counts {
		if idx < 0 || idx >= len(weights) {
			continue
		}
		w := float64(n) * weights[idx]
		if w > 0 {
			v[idx] = w
		}
	}
	return v
}

// Normalize scales v in place to unit L2 norm and returns it.
// A vector whose norm is zero is left unchanged.
func (v Sparse) Normalize() Sparse {
	norm := L2Norm(v)
	if norm == 0 {
		return v
	}
	for idx, w := range v {
		v[idx] = w / norm
	}
	return v
}

// IsZero reports whether v has no non-zero entry.
func (v Sparse) IsZero() bool {
	for _, w := range v {
		if w != 0 {
			return false
		}
	}
	return true
}

// Indices returns the indices of v in ascending order.
func (v Sparse) Indices() []int {
	out := make([]int, 0, len(v))
	for idx := range v {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// L2Norm returns the L2 norm of v.
func L2Norm(v Sparse) float64 {
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}
