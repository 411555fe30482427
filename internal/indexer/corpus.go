// Package indexer builds the TF-IDF index of a movie corpus and vectorizes queries
// against it.
package indexer

import (
	"math"
	"slices"

	"github.com/hyperjump/suisen/internal/models"
	"github.com/hyperjump/suisen/internal/vector"
)

// Document is one indexed movie. Position is its 0-based place in the corpus and
// doubles as its identity.
type Document struct {
	Position int
	Title    string
	Overview string
	Terms    []string
}

// NewDocument normalizes overview and keywords separately and joins the two term lists.
func NewDocument(position int, m models.Movie) Document {
	terms := Normalize(m.Overview)
	terms = append(terms, Normalize(m.Keywords)...)
	return Document{
		Position: position,
		Title:    m.Title,
		Overview: Preprocess(m.Overview),
		Terms:    terms,
	}
}

// IDFTable holds one inverse document frequency per vocabulary index.
type IDFTable []float64

// IDF returns the smoothed inverse document frequency ln((1+n)/(1+df)) + 1.
func IDF(n, df int) float64 {
	return math.Log(float64(1+n)/float64(1+df)) + 1
}

// Corpus is an immutable TF-IDF index. All methods are read-only, so a *Corpus can be
// shared by concurrent queries without locking.
type Corpus struct {
	docs    []Document
	vocab   *Vocabulary
	idf     IDFTable
	vectors []vector.Sparse
}

// Build indexes movies in order. It returns an *EmptyCorpusError when there are no
// movies or none of them has any term.
func Build(movies []models.Movie) (*Corpus, error) {
	docs := make([]Document, len(movies))
	for i, m := range movies {
		docs[i] = NewDocument(i, m)
	}
	return BuildDocuments(docs)
}

// BuildDocuments indexes pre-normalized documents. The corpus keeps its own copy of
// docs, with positions reassigned to match their order; the caller's slice is left as is.
func BuildDocuments(in []Document) (*Corpus, error) {
	docs := make([]Document, len(in))
	termLists := make([][]string, len(in))
	for i, d := range in {
		d.Position = i
		d.Terms = slices.Clone(d.Terms)
		docs[i] = d
		termLists[i] = d.Terms
	}
	vocab, err := BuildVocabulary(termLists)
	if err != nil {
		return nil, err
	}

	counts := make([]map[int]int, len(docs))
	df := make([]int, vocab.Size())
	for i, terms := range termLists {
		counts[i] = vocab.counts(terms)
		for idx := range counts[i] {
			df[idx]++
		}
	}

	idf := make(IDFTable, vocab.Size())
	for idx, n := range df {
		idf[idx] = IDF(len(docs), n)
	}

	vectors := make([]vector.Sparse, len(docs))
	for i := range docs {
		vectors[i] = vector.FromCounts(counts[i], idf).Normalize()
	}

	return &Corpus{
		docs:    docs,
		vocab:   vocab,
		idf:     idf,
		vectors: vectors,
	}, nil
}

// Vectorize maps query into the corpus vector space using the corpus IDF table.
// Terms outside the vocabulary are ignored; a query sharing no term with the corpus
// yields the zero vector.
func (c *Corpus) Vectorize(query string) vector.Sparse {
	return vector.FromCounts(c.vocab.counts(Normalize(query)), c.idf).Normalize()
}

// TermsOf returns the vocabulary terms of the non-zero entries of v in index order.
func (c *Corpus) TermsOf(v vector.Sparse) []string {
	out := make([]string, 0, len(v))
	for _, idx := range v.Indices() {
		if v[idx] != 0 {
			out = append(out, c.vocab.Term(idx))
		}
	}
	return out
}

// Len returns the number of documents.
func (c *Corpus) Len() int {
	return len(c.docs)
}

// Document returns a copy of the document at position and whether it exists.
func (c *Corpus) Document(position int) (Document, bool) {
	if position < 0 || position >= len(c.docs) {
		return Document{}, false
	}
	d := c.docs[position]
	d.Terms = slices.Clone(d.Terms)
	return d, true
}

// Vector returns the unit TF-IDF vector of the document at position, or nil.
// The returned map must not be modified.
func (c *Corpus) Vector(position int) vector.Sparse {
	if position < 0 || position >= len(c.vectors) {
		return nil
	}
	return c.vectors[position]
}

// Vectors returns every document vector in corpus order. The slice and its maps must
// not be modified.
func (c *Corpus) Vectors() []vector.Sparse {
	return c.vectors
}

// Vocabulary returns the corpus vocabulary.
func (c *Corpus) Vocabulary() *Vocabulary {
	return c.vocab
}

// IDF returns the inverse document frequency of the term at index, or 0 when out of range.
func (c *Corpus) IDF(index int) float64 {
	if index < 0 || index >= len(c.idf) {
		return 0
	}
	return c.idf[index]
}

// Stats summarizes a corpus.
type Stats struct {
	Documents      int `json:"documents"`
	VocabularySize int `json:"vocabulary_size"`
	EmptyDocuments int `json:"empty_documents"`
	TotalTerms     int `json:"total_terms"`
}

// Stats returns document and term counts. Empty documents are those with a zero vector.
func (c *Corpus) Stats() Stats {
	s := Stats{Documents: len(c.docs), VocabularySize: c.vocab.Size()}
	for i, d := range c.docs {
		s.TotalTerms += len(d.Terms)
		if len(c.vectors[i]) == 0 {
			s.EmptyDocuments++
		}
	}
	return s
}
