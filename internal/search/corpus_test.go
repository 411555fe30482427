package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/hyperjump/suisen/internal/models"
	"github.com/hyperjump/suisen/internal/ranking"
)

// signatureMovie carries a phrase that only it and its sequels contain, so a query made of
// that phrase must rank one of them first.
type signatureMovie struct {
	title    string
	phrase   string
	overview string
}

var signatureTopics = []signatureMovie{
	{"Red Planet", "stranded astronaut botanist", "A stranded astronaut botanist grows potatoes on Mars while waiting for rescue."},
	{"Deep Heist", "vault heist crew", "A vault heist crew plans one last job beneath a casino."},
	{"Paris Letters", "bookseller romance paris", "A shy bookseller romance blossoms in Paris through anonymous letters."},
	{"Ghost Ship", "haunted ocean liner", "Passengers discover a haunted ocean liner drifting in the fog."},
	{"Dragon Exam", "young wizard tournament", "A young wizard tournament tests courage, wit and loyalty."},
	{"Court Verdict", "wrongly accused lawyer", "A wrongly accused lawyer defends himself in a sensational trial."},
	{"Jungle Run", "treasure map jungle", "Rival explorers follow a treasure map through the jungle."},
	{"Robot Heart", "android learns emotions", "An android learns emotions while caring for an elderly inventor."},
	{"Ice Rink", "hockey underdog team", "A hockey underdog team from a mining town reaches the finals."},
	{"Night Shift", "paramedic city night", "A paramedic works a city night shift that changes everything."},
}

func buildSignatureCorpus(n int) []models.Movie {
	movies := make([]models.Movie, 0, n)
	for i := 0; i < n; i++ {
		topic := signatureTopics[i%len(signatureTopics)]
		title := topic.title
		if i >= len(signatureTopics) {
			title = fmt.Sprintf("%s %d", topic.title, i/len(signatureTopics)+1)
		}
		movies = append(movies, models.Movie{
			Title:    title,
			Overview: fmt.Sprintf("%s Filmed in %d with a cast of newcomers.", topic.overview, 1950+i),
		})
	}
	return movies
}

func TestEngine_SignatureQueries(t *testing.T) {
	movies := buildSignatureCorpus(100)
	e := NewEngine(nil)
	if _, err := e.Build(movies, "dataset:signature", "signature.csv"); err != nil {
		t.Fatal(err)
	}
	for i, topic := range signatureTopics {
		t.Run(topic.title, func(t *testing.T) {
			resp, err := e.Recommend(context.Background(), &models.RecommendQuery{Query: topic.phrase})
			if err != nil {
				t.Fatal(err)
			}
			if len(resp.Results) != ranking.DefaultTopK {
				t.Fatalf("got %d results, want %d", len(resp.Results), ranking.DefaultTopK)
			}
			top := resp.Results[0]
			if top.Position%len(signatureTopics) != i {
				t.Errorf("top result %q (position %d) does not belong to topic %q", top.Title, top.Position, topic.title)
			}
			for j := 1; j < len(resp.Results); j++ {
				if resp.Results[j].Score > resp.Results[j-1].Score {
					t.Errorf("results not sorted by score at %d", j)
				}
			}
		})
	}
}

func BenchmarkEngine_Build(b *testing.B) {
	movies := buildSignatureCorpus(5000)
	e := NewEngine(nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Build(movies, "dataset:bench", "bench.csv"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEngine_Recommend(b *testing.B) {
	e := NewEngine(nil)
	if _, err := e.Build(buildSignatureCorpus(5000), "dataset:bench", "bench.csv"); err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q := &models.RecommendQuery{Query: "stranded astronaut grows potatoes"}
		if _, err := e.Recommend(ctx, q); err != nil {
			b.Fatal(err)
		}
	}
}
