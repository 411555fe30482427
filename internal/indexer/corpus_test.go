package indexer

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/hyperjump/suisen/internal/models"
	"github.com/hyperjump/suisen/internal/vector"
)

func scenarioMovies() []models.Movie {
	return []models.Movie{
		{Title: "A", Overview: "romantic comedy love"},
		{Title: "B", Overview: "action explosion chase"},
		{Title: "C", Overview: "romantic drama love story"},
	}
}

func TestBuild_UnitNorm(t *testing.T) {
	movies := append(scenarioMovies(),
		models.Movie{Title: "D", Overview: "love love love", Keywords: "romance"},
		models.Movie{Title: "E", Overview: ""},
		models.Movie{Title: "F", Overview: "...", Keywords: ""},
	)
	c, err := Build(movies)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < c.Len(); i++ {
		v := c.Vector(i)
		if len(v) == 0 {
			continue
		}
		if math.Abs(vector.L2Norm(v)-1) > 1e-9 {
			t.Errorf("document %d norm = %f", i, vector.L2Norm(v))
		}
		for idx, w := range v {
			if w < 0 {
				t.Errorf("document %d has negative weight at %d", i, idx)
			}
		}
	}
	if len(c.Vector(4)) != 0 || len(c.Vector(5)) != 0 {
		t.Error("documents without terms must keep the zero vector")
	}
	if s := c.Stats(); s.EmptyDocuments != 2 || s.Documents != 6 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestBuild_IDF(t *testing.T) {
	c, err := Build(scenarioMovies())
	if err != nil {
		t.Fatal(err)
	}
	romantic, ok := c.Vocabulary().Index("romantic")
	if !ok {
		t.Fatal("romantic missing from vocabulary")
	}
	action, _ := c.Vocabulary().Index("action")

	// romantic appears in 2 of 3 documents, action in 1.
	wantRomantic := math.Log(4.0/3.0) + 1
	wantAction := math.Log(4.0/2.0) + 1
	if math.Abs(c.IDF(romantic)-wantRomantic) > 1e-12 {
		t.Errorf("idf(romantic) = %f, want %f", c.IDF(romantic), wantRomantic)
	}
	if math.Abs(c.IDF(action)-wantAction) > 1e-12 {
		t.Errorf("idf(action) = %f, want %f", c.IDF(action), wantAction)
	}
	if c.IDF(-1) != 0 || c.IDF(1000) != 0 {
		t.Error("out of range IDF should be 0")
	}
}

func TestIDF_AlwaysPositive(t *testing.T) {
	for n := 1; n <= 50; n++ {
		for df := 1; df <= n; df++ {
			if IDF(n, df) <= 0 {
				t.Fatalf("IDF(%d, %d) = %f", n, df, IDF(n, df))
			}
		}
	}
	if IDF(10, 10) != 1 {
		t.Errorf("IDF(n, n) = %f, want 1", IDF(10, 10))
	}
}

func TestBuild_CombinesOverviewAndKeywords(t *testing.T) {
	c, err := Build([]models.Movie{{Title: "X", Overview: "Space, travel!", Keywords: "space-opera"}})
	if err != nil {
		t.Fatal(err)
	}
	doc, ok := c.Document(0)
	if !ok {
		t.Fatal("document 0 missing")
	}
	want := []string{"space", "travel", "space", "opera"}
	if len(doc.Terms) != len(want) {
		t.Fatalf("Terms = %v, want %v", doc.Terms, want)
	}
	for i := range want {
		if doc.Terms[i] != want[i] {
			t.Errorf("Terms[%d] = %q, want %q", i, doc.Terms[i], want[i])
		}
	}
	if doc.Overview != "Space, travel!" {
		t.Errorf("Overview should keep the raw text, got %q", doc.Overview)
	}
	if _, ok := c.Document(1); ok {
		t.Error("Document(1) should not exist")
	}
}

func TestBuild_EmptyCorpus(t *testing.T) {
	_, err := Build(nil)
	if !errors.Is(err, ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}
	_, err = Build([]models.Movie{{Title: "blank"}})
	if !errors.Is(err, ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus for termless corpus, got %v", err)
	}
}

func TestBuildDocuments_CopiesInput(t *testing.T) {
	docs := []Document{
		{Position: 7, Title: "A", Terms: []string{"romantic", "comedy", "love"}},
		{Position: 9, Title: "B", Terms: []string{"action", "chase"}},
	}
	c, err := BuildDocuments(docs)
	if err != nil {
		t.Fatal(err)
	}
	if docs[0].Position != 7 || docs[1].Position != 9 {
		t.Errorf("caller positions rewritten to %d, %d", docs[0].Position, docs[1].Position)
	}

	docs[0].Title = "changed"
	docs[0].Terms[0] = "zzz"
	d, ok := c.Document(0)
	if !ok {
		t.Fatal("document 0 missing")
	}
	if d.Position != 0 || d.Title != "A" || d.Terms[0] != "romantic" {
		t.Errorf("Document(0) = %+v, want unchanged copy", d)
	}

	d.Terms[1] = "yyy"
	again, _ := c.Document(0)
	if again.Terms[1] != "comedy" {
		t.Errorf("Document(0).Terms = %v after writing to a returned copy", again.Terms)
	}
}

func TestCorpus_TermsOf(t *testing.T) {
	c, err := Build(scenarioMovies())
	if err != nil {
		t.Fatal(err)
	}
	got := c.TermsOf(c.Vectorize("story of a romantic chase, romantic"))
	want := []string{"chase", "romantic", "story"}
	if len(got) != len(want) {
		t.Fatalf("TermsOf() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("TermsOf() = %v, want %v", got, want)
		}
	}
	if terms := c.TermsOf(c.Vectorize("xyzzy")); terms == nil || len(terms) != 0 {
		t.Errorf("TermsOf(zero) = %v, want empty list", terms)
	}
}

func TestVectorize(t *testing.T) {
	c, err := Build(scenarioMovies())
	if err != nil {
		t.Fatal(err)
	}

	q := c.Vectorize("Romantic comedy, unknownword")
	if len(q) != 2 {
		t.Fatalf("expected 2 in-vocabulary dimensions, got %v", q)
	}
	if math.Abs(vector.L2Norm(q)-1) > 1e-9 {
		t.Errorf("query norm = %f", vector.L2Norm(q))
	}

	if z := c.Vectorize("nothing matches here"); len(z) != 0 {
		t.Errorf("out of vocabulary query should be zero, got %v", z)
	}
	if z := c.Vectorize(""); len(z) != 0 {
		t.Errorf("empty query should be zero, got %v", z)
	}
}

func TestVectorize_IdenticalTextScoresOne(t *testing.T) {
	text := "a lonely robot falls in love on a dusty planet"
	c, err := Build([]models.Movie{{Title: "Solo", Overview: text}})
	if err != nil {
		t.Fatal(err)
	}
	got := vector.CosineSimilarity(c.Vectorize(text), c.Vector(0))
	if math.Abs(got-1) > 1e-9 {
		t.Errorf("similarity = %f, want 1", got)
	}
}

func TestVectorize_DoesNotChangeIDF(t *testing.T) {
	c, _ := Build(scenarioMovies())
	before := append(IDFTable(nil), c.idf...)
	_ = c.Vectorize("romantic romantic romantic action")
	for i := range before {
		if before[i] != c.idf[i] {
			t.Fatalf("idf[%d] changed from %f to %f", i, before[i], c.idf[i])
		}
	}
}

func TestCorpus_ConcurrentVectorize(t *testing.T) {
	c, _ := Build(scenarioMovies())
	want := c.Vectorize("romantic drama")
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := c.Vectorize("romantic drama")
			for idx, w := range want {
				if got[idx] != w {
					t.Errorf("concurrent vectorize mismatch at %d", idx)
				}
			}
		}()
	}
	wg.Wait()
}
