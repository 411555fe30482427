package indexer

import "sort"

// Vocabulary maps each distinct corpus term to a stable index. Indices follow the
// lexicographic order of the terms, so the same corpus always yields the same mapping.
type Vocabulary struct {
	index map[string]int
	terms []string
}

// BuildVocabulary collects the distinct terms of docs and assigns indices 0..n-1 in
// sorted order. It fails with an *EmptyCorpusError when docs is empty or holds no terms.
func BuildVocabulary(docs [][]string) (*Vocabulary, error) {
	if len(docs) == 0 {
		return nil, &EmptyCorpusError{Reason: "no documents"}
	}
	seen := make(map[string]struct{})
	for _, terms := range docs {
		for _, term := range terms {
			seen[term] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil, &EmptyCorpusError{Reason: "no terms in any document"}
	}

	terms := make([]string, 0, len(seen))
	for term := range seen {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	index := make(map[string]int, len(terms))
	for i, term := range terms {
		index[term] = i
	}
	return &Vocabulary{index: index, terms: terms}, nil
}

// Index returns the index of term and whether it is in the vocabulary.
func (v *Vocabulary) Index(term string) (int, bool) {
	i, ok := v.index[term]
	return i, ok
}

// Term returns the term at index i, or "" when i is out of range.
func (v *Vocabulary) Term(i int) string {
	if i < 0 || i >= len(v.terms) {
		return ""
	}
	return v.terms[i]
}

// Size returns the number of distinct terms.
func (v *Vocabulary) Size() int {
	return len(v.terms)
}

// counts tallies terms that are present in the vocabulary, keyed by index.
// Unknown terms are skipped.
func (v *Vocabulary) counts(terms []string) map[int]int {
	out := make(map[int]int, len(terms))
	for _, term := range terms {
		if i, ok := v.index[term]; ok {
			out[i]++
		}
	}
	return out
}
