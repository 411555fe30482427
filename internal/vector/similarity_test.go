package vector

import (
	"math"
	"testing"
)

func TestInnerProduct(t *testing.T) {
	a := Sparse{0: 1, 2: 2}
	b := Sparse{2: 3, 5: 4}
	if got := InnerProduct(a, b); got != 6 {
		t.Errorf("InnerProduct = %f, want 6", got)
	}
	if got := InnerProduct(b, a); got != 6 {
		t.Errorf("InnerProduct is not symmetric: %f", got)
	}
	if got := InnerProduct(a, Sparse{}); got != 0 {
		t.Errorf("InnerProduct with empty = %f", got)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b Sparse
		want float64
	}{
		{"identical", Sparse{1: 0.6, 2: 0.8}, Sparse{1: 0.6, 2: 0.8}, 1},
		{"disjoint", Sparse{1: 1}, Sparse{2: 1}, 0},
		{"zero query", Sparse{}, Sparse{2: 1}, 0},
		{"zero document", Sparse{2: 1}, nil, 0},
		{"clamped above one", Sparse{0: 1.0000001}, Sparse{0: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	v := Sparse{0: 3, 4: 4}.Normalize()
	if math.Abs(L2Norm(v)-1) > 1e-12 {
		t.Errorf("norm after Normalize = %f", L2Norm(v))
	}
	if math.Abs(v[0]-0.6) > 1e-12 || math.Abs(v[4]-0.8) > 1e-12 {
		t.Errorf("unexpected components: %v", v)
	}

	zero := Sparse{}.Normalize()
	if !zero.IsZero() || len(zero) != 0 {
		t.Errorf("zero vector should stay zero, got %v", zero)
	}
}

func TestFromCounts(t *testing.T) {
	weights := []float64{1, 2, 0.5}
	v := FromCounts(map[int]int{0: 2, 2: 4, 7: 1}, weights)
	if len(v) != 2 {
		t.Fatalf("expected 2 entries (out-of-range index dropped), got %v", v)
	}
	if v[0] != 2 || v[2] != 2 {
		t.Errorf("unexpected weights: %v", v)
	}
	if got := v.Indices(); len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("Indices() = %v", got)
	}
}
