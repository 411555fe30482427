// Package ranking scores corpus documents against a query vector and selects the best matches.
package ranking

// DefaultTopK is the number of matches returned when a caller does not choose one.
const DefaultTopK = 5

// Scored pairs a corpus position with its similarity to the query.
type Scored struct {
	// Position is the document's 0-based corpus position.
	Position int
	// Score is the cosine similarity in [0, 1].
	Score float64
}
