package models

import (
	"testing"
)

func TestRecommendQuery_Validate(t *testing.T) {
	tests := []struct {
		name      string
		query     *RecommendQuery
		wantErr   bool
		wantLimit int
		wantMin   float64
	}{
		{"empty query is legal", &RecommendQuery{Query: ""}, false, 5, 0.1},
		{"sets default limit", &RecommendQuery{Query: "x"}, false, 5, 0.1},
		{"keeps explicit limit", &RecommendQuery{Query: "x", Limit: IntPtr(3)}, false, 3, 0.1},
		{"keeps zero limit", &RecommendQuery{Query: "x", Limit: IntPtr(0)}, false, 0, 0.1},
		{"keeps negative limit", &RecommendQuery{Query: "x", Limit: IntPtr(-2)}, false, -2, 0.1},
		{"caps limit at max", &RecommendQuery{Query: "x", Limit: IntPtr(500)}, false, 100, 0.1},
		{"keeps explicit zero min score", &RecommendQuery{Query: "x", MinScore: Float64Ptr(0)}, false, 5, 0},
		{"keeps explicit min score", &RecommendQuery{Query: "x", MinScore: Float64Ptr(0.5)}, false, 5, 0.5},
		{"rejects negative min score", &RecommendQuery{Query: "x", MinScore: Float64Ptr(-0.1)}, true, 0, 0},
		{"rejects min score above one", &RecommendQuery{Query: "x", MinScore: Float64Ptr(1.5)}, true, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate(5, 100, 0.1)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := tt.query.K(); got != tt.wantLimit {
				t.Errorf("K() = %d, want %d", got, tt.wantLimit)
			}
			if got := tt.query.Threshold(); got != tt.wantMin {
				t.Errorf("Threshold() = %g, want %g", got, tt.wantMin)
			}
		})
	}
}

func TestRecommendQuery_ValidateRejectsNonPositiveDefault(t *testing.T) {
	q := &RecommendQuery{Query: "x"}
	if err := q.Validate(0, 0, 0); err == nil {
		t.Fatal("expected error for non-positive default limit")
	}
}

func TestRecommendQuery_BeforeValidate(t *testing.T) {
	q := &RecommendQuery{Query: "x"}
	if q.K() != 0 || q.Threshold() != 0 {
		t.Errorf("K() = %d, Threshold() = %g before Validate", q.K(), q.Threshold())
	}
}
