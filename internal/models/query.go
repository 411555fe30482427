package models

import (
	"errors"
	"fmt"
)

// RecommendQuery is a recommendation request.
// Limit and MinScore are pointers so that an absent value (use the configured one) is
// distinguishable from an explicit 0.
type RecommendQuery struct {
	Query    string   `json:"query"`
	Limit    *int     `json:"limit,omitempty"`
	MinScore *float64 `json:"min_score,omitempty"`
}

// Validate applies defaults and bounds. An empty query is legal; it matches nothing and
// yields zero scores. A nil Limit becomes defaultLimit, a Limit above maxLimit is capped,
// and a non-positive Limit is kept as-is (the result set will be empty). A nil MinScore
// becomes defaultMinScore.
func (q *RecommendQuery) Validate(defaultLimit, maxLimit int, defaultMinScore float64) error {
	if defaultLimit <= 0 {
		return errors.New("default limit must be positive")
	}
	if q.MinScore == nil {
		q.MinScore = Float64Ptr(defaultMinScore)
	}
	if *q.MinScore < 0 || *q.MinScore > 1 {
		return fmt.Errorf("min_score must be within [0, 1], got %g", *q.MinScore)
	}
	if q.Limit == nil {
		q.Limit = IntPtr(defaultLimit)
	}
	if maxLimit > 0 && *q.Limit > maxLimit {
		q.Limit = IntPtr(maxLimit)
	}
	return nil
}

// K returns the effective result count, or 0 before Validate.
func (q *RecommendQuery) K() int {
	if q.Limit == nil {
		return 0
	}
	return *q.Limit
}

// Threshold returns the effective minimum score, or 0 before Validate.
func (q *RecommendQuery) Threshold() float64 {
	if q.MinScore == nil {
		return 0
	}
	return *q.MinScore
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int {
	return &n
}

// Float64Ptr returns a pointer to f.
func Float64Ptr(f float64) *float64 {
	return &f
}
