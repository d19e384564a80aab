package indexer

import (
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/arcdocs/docsearch/internal/analyzer"
	"github.com/arcdocs/docsearch/internal/docmodel"
	"github.com/arcdocs/docsearch/internal/fingerprint"
	"github.com/arcdocs/docsearch/internal/segment"
)

// Result summarizes one completed build.
type Result struct {
	Fingerprint string
	DocCount    int
	SegmentPath string
}

// Indexer consumes a DocumentSource and produces a new segment generation,
// grounded on the teacher's indexer pipeline shape (analyze -> transform ->
// store) but generalized from chunk-and-embed to tokenize-with-positions.
type Indexer struct {
	schema    docmodel.Schema
	segDir    string
	logger    *zap.Logger
	fieldGap  int
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithLogger attaches a logger for per-document debug events.
func WithLogger(l *zap.Logger) Option {
	return func(i *Indexer) { i.logger = l }
}

// New returns an Indexer that writes segments under segDir using schema to
// decide which fields to analyze and with which profile.
func New(schema docmodel.Schema, segDir string, opts ...Option) *Indexer {
	idx := &Indexer{schema: schema, segDir: segDir, fieldGap: analyzer.FieldGap}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Build streams every document out of src, analyzes its indexed fields, and
// publishes a new segment plus manifest. It is the sole place in this
// module that both builds a segment and writes the manifest pointing at it,
// so a generation is never half-published.
func (idx *Indexer) Build(src DocumentSource) (Result, error) {
	defer src.Close()

	builder := segment.NewBuilder(idx.segDir)
	hasher := fingerprint.New()

	profiles := make(map[string]analyzer.Profile, len(idx.schema.Fields))
	for _, f := range idx.schema.IndexedFields() {
		p, err := analyzer.Get(f.AnalyzerProfile)
		if err != nil {
			return Result{}, fmt.Errorf("indexer: field %q: %w", f.Name, err)
		}
		profiles[f.Name] = p
	}

	docCount := 0
	for {
		doc, ok, err := src.Next()
		if err != nil {
			return Result{}, fmt.Errorf("indexer: read document: %w", err)
		}
		if !ok {
			break
		}

		if idx.logger != nil {
			idx.logger.Debug("indexer analyzing document", zap.String("key", doc.Key))
		}

		tokensByField := make(map[string][]segment.Token, len(profiles))
		for field, profile := range profiles {
			segments := doc.TextSegments(field)
			offset := 0
			for _, text := range segments {
				if text == "" {
					continue
				}
				next := offset
				for _, tok := range profile.Tokenize(text) {
					pos := offset + tok.Position
					tokensByField[field] = append(tokensByField[field], segment.Token{Term: tok.Term, Position: pos})
					if pos+1 > next {
						next = pos + 1
					}
				}
				offset = next + idx.fieldGap
			}
		}

		hasher.Add(doc.Key, []byte(doc.Body))

		if err := builder.AddDocument(doc.Key, doc.Title, doc.Body, doc.Metadata, tokensByField); err != nil {
			return Result{}, fmt.Errorf("indexer: add document %q: %w", doc.Key, err)
		}
		docCount++
	}

	fp := hasher.Hex()
	segPath, err := builder.Build(fp)
	if err != nil {
		return Result{}, fmt.Errorf("indexer: build segment: %w", err)
	}

	if err := segment.WriteManifest(idx.segDir, segment.Manifest{
		Fingerprint: fp,
		BuiltAt:     time.Now().UTC(),
		DocCount:    int64(docCount),
	}); err != nil {
		return Result{}, fmt.Errorf("indexer: publish manifest: %w", err)
	}

	if idx.logger != nil {
		idx.logger.Info("indexer published segment",
			zap.String("fingerprint", fp),
			zap.Int("doc_count", docCount),
			zap.String("path", filepath.Base(segPath)),
		)
	}

	return Result{Fingerprint: fp, DocCount: docCount, SegmentPath: segPath}, nil
}
