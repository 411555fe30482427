package indexer

import "errors"

// ErrEmptyCorpus is returned when a corpus has no documents or no indexable terms.
var ErrEmptyCorpus = errors.New("empty corpus")

// EmptyCorpusError reports why a corpus could not be indexed. It matches ErrEmptyCorpus
// with errors.Is.
type EmptyCorpusError struct {
	Reason string
}

func (e *EmptyCorpusError) Error() string {
	return ErrEmptyCorpus.Error() + ": " + e.Reason
}

func (e *EmptyCorpusError) Unwrap() error {
	return ErrEmptyCorpus
}
