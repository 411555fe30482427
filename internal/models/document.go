// Package models defines core data structures for movies, recommendation queries, and results.
package models

// Movie is one record supplied by the dataset loader. Missing values are empty strings.
type Movie struct {
	Title    string `json:"title"`
	Overview string `json:"overview"`
	Keywords string `json:"keywords,omitempty"`
}

// MovieView is a corpus document as exposed over the API.
type MovieView struct {
	Position  int    `json:"position"`
	Title     string `json:"title"`
	Overview  string `json:"overview"`
	TermCount int    `json:"term_count"`
}
