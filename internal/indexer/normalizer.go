package indexer

import (
	"strings"
	"unicode"
)

// Normalize lowercases text and splits it into terms on every rune that is not a
// letter or a digit. Order and duplicates are preserved; empty tokens are dropped.
func Normalize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Preprocess trims text and collapses runs of whitespace into a single space.
// It is applied to display fields only; it never affects indexed terms.
func Preprocess(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
