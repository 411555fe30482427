package ranking

import "sort"

// TopK returns the k highest-scoring entries, ordered by descending score and then by
// ascending position. The input is not modified. k <= 0 yields an empty result; a k
// larger than the input returns every entry.
func TopK(scored []Scored, k int) []Scored {
	if k <= 0 || len(scored) == 0 {
		return []Scored{}
	}
	sorted := make([]Scored, len(scored))
	copy(sorted, scored)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Position < sorted[j].Position
	})
	if k > len(sorted) {
		k = len(sorted)
	}
	return sorted[:k]
}

// AtLeast keeps the entries whose score is at least min, preserving order.
func AtLeast(scored []Scored, min float64) []Scored {
	if min <= 0 {
		return scored
	}
	out := scored[:0:0]
	for _, s := range scored {
		if s.Score >= min {
			out = append(out, s)
		}
	}
	return out
}
