package ranking

import "github.com/hyperjump/suisen/internal/vector"

// Score computes the cosine similarity between query and every document vector, in
// corpus order. Both sides are expected to be unit-norm and non-negative; a zero
// vector on either side scores 0.
func Score(query vector.Sparse, docs []vector.Sparse) []Scored {
	out := make([]Scored, len(docs))
	if query.IsZero() {
		for i := range out {
			out[i].Position = i
		}
		return out
	}
	for i, doc := range docs {
		out[i] = Scored{Position: i, Score: vector.CosineSimilarity(query, doc)}
	}
	return out
}
