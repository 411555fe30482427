package ranking

import (
	"reflect"
	"testing"
)

func TestTopK(t *testing.T) {
	scored := []Scored{
		{Position: 0, Score: 0.2},
		{Position: 1, Score: 0.9},
		{Position: 2, Score: 0.2},
		{Position: 3, Score: 0.5},
		{Position: 4, Score: 0.9},
	}
	tests := []struct {
		name string
		k    int
		want []int
	}{
		{"top two with tie", 2, []int{1, 4}},
		{"ties broken by position", 5, []int{1, 4, 3, 0, 2}},
		{"k larger than input", 10, []int{1, 4, 3, 0, 2}},
		{"zero k", 0, []int{}},
		{"negative k", -3, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TopK(scored, tt.k)
			positions := make([]int, len(got))
			for i, s := range got {
				positions[i] = s.Position
			}
			if !reflect.DeepEqual(positions, tt.want) {
				t.Errorf("TopK(k=%d) = %v, want %v", tt.k, positions, tt.want)
			}
		})
	}
	if scored[0].Position != 0 || scored[1].Position != 1 {
		t.Error("TopK must not reorder its input")
	}
}

func TestTopK_Idempotent(t *testing.T) {
	scored := []Scored{{0, 0.1}, {1, 0.1}, {2, 0.7}, {3, 0}}
	first := TopK(scored, 3)
	second := TopK(scored, 3)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("TopK not idempotent: %v vs %v", first, second)
	}
}

func TestTopK_AllZeroFallsBackToCorpusOrder(t *testing.T) {
	scored := []Scored{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}, {5, 0}}
	got := TopK(scored, 5)
	if len(got) != 5 {
		t.Fatalf("expected 5 results, got %d", len(got))
	}
	for i, s := range got {
		if s.Position != i || s.Score != 0 {
			t.Errorf("result %d = %+v", i, s)
		}
	}
}

func TestTopK_Empty(t *testing.T) {
	if got := TopK(nil, 5); got == nil || len(got) != 0 {
		t.Errorf("TopK(nil) = %v, want empty non-nil slice", got)
	}
}

func TestAtLeast(t *testing.T) {
	scored := []Scored{{0, 0.9}, {1, 0.1}, {2, 0.5}}
	got := AtLeast(scored, 0.5)
	if len(got) != 2 || got[0].Position != 0 || got[1].Position != 2 {
		t.Errorf("AtLeast = %v", got)
	}
	if len(AtLeast(scored, 0)) != 3 {
		t.Error("min 0 keeps everything")
	}
	if len(scored) != 3 || scored[1].Position != 1 {
		t.Error("AtLeast must not modify its input")
	}
}
