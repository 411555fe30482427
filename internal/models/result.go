package models

import "time"

// Recommendation is a single ranked movie.
type Recommendation struct {
	Rank     int     `json:"rank"`
	Position int     `json:"position"`
	Title    string  `json:"title"`
	Overview string  `json:"overview"`
	Score    float64 `json:"similarity"`
}

// RecommendResponse is the response for a recommendation request.
type RecommendResponse struct {
	Query             string            `json:"query"`
	MatchedTerms      []string          `json:"matched_terms"`
	Results           []*Recommendation `json:"results"`
	Total             int               `json:"total"`
	QueryTime         int64             `json:"query_time_ms"`
	CorpusFingerprint string            `json:"corpus_fingerprint,omitempty"`
}

// HistoryEntry records one served recommendation query.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	Limit     int       `json:"limit"`
	Results   int       `json:"results"`
	TopTitle  string    `json:"top_title,omitempty"`
	TopScore  float64   `json:"top_score"`
	CreatedAt time.Time `json:"created_at"`
}
