// Package indexer builds a new segment generation from a stream of
// documents: analyze each field with its schema-assigned profile, fold the
// document into the running content fingerprint, and hand the tokenized
// result to the segment builder. Two full in-memory passes are implicit in
// how segment.Builder accumulates postings before writing; indexer itself
// streams the source once.
package indexer

import "github.com/arcdocs/docsearch/internal/docmodel"

// DocumentSource yields documents one at a time until exhausted. Filesystem,
// git, and crawler sync runtimes each implement one of these over their own
// staging representation.
type DocumentSource interface {
	// Next returns the next document, or ok=false when the source is
	// exhausted. err is non-nil only on a read failure; the source is
	// abandoned (not retried) on error.
	Next() (doc docmodel.Document, ok bool, err error)
	// Close releases any resources (open files, network connections) held
	// by the source.
	Close() error
}

// SliceSource adapts an in-memory slice of documents to DocumentSource, used
// by tests and by sync runtimes that stage everything in memory before a
// build (e.g. a small filesystem tree).
type SliceSource struct {
	docs []docmodel.Document
	pos  int
}

// NewSliceSource returns a DocumentSource over docs.
func NewSliceSource(docs []docmodel.Document) *SliceSource {
	return &SliceSource{docs: docs}
}

func (s *SliceSource) Next() (docmodel.Document, bool, error) {
	if s.pos >= len(s.docs) {
		return docmodel.Document{}, false, nil
	}
	d := s.docs[s.pos]
	s.pos++
	return d, true, nil
}

func (s *SliceSource) Close() error { return nil }
