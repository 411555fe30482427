package vector

import "math"

// InnerProduct returns the dot product of two sparse vectors.
// It iterates over the smaller of the two.
func InnerProduct(a, b Sparse) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	var dot float64
	for idx, w := range a {
		if o, ok := b[idx]; ok {
			dot += w * o
		}
	}
	return dot
}

// CosineSimilarity returns the cosine similarity of two unit-norm, non-negative vectors,
// clamped to [0, 1]. An empty vector on either side scores 0.
func CosineSimilarity(a, b Sparse) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	return math.Max(0, math.Min(1, InnerProduct(a, b)))
}
