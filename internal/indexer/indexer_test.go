package indexer

import (
	"testing"

	"github.com/arcdocs/docsearch/internal/analyzer"
	"github.com/arcdocs/docsearch/internal/docmodel"
	"github.com/arcdocs/docsearch/internal/segment"
)

func TestBuildPublishesSegmentAndManifest(t *testing.T) {
	dir := t.TempDir()
	schema := docmodel.DefaultSchema(analyzerDefaultProfileName)

	docs := []docmodel.Document{
		{Key: "doc:1", Title: "Getting Started", Body: "install the client and run the server"},
		{Key: "doc:2", Title: "Server Configuration", Body: "configure the server with a config file"},
	}

	idx := New(schema, dir)
	result, err := idx.Build(NewSliceSource(docs))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result.DocCount != 2 {
		t.Errorf("expected 2 documents, got %d", result.DocCount)
	}
	if result.Fingerprint == "" {
		t.Error("expected a non-empty fingerprint")
	}

	manifest, err := segment.ReadManifest(dir)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if manifest.Fingerprint != result.Fingerprint {
		t.Errorf("manifest fingerprint %q != build fingerprint %q", manifest.Fingerprint, result.Fingerprint)
	}

	r, err := segment.Open(result.SegmentPath, result.Fingerprint)
	if err != nil {
		t.Fatalf("Open published segment: %v", err)
	}
	defer r.Close()

	postings, err := r.Postings("body", "server")
	if err != nil {
		t.Fatalf("Postings: %v", err)
	}
	if len(postings) != 2 {
		t.Errorf("expected server to appear in both documents' bodies, got %d postings", len(postings))
	}
}

func TestBuildEmptySourceStillPublishes(t *testing.T) {
	dir := t.TempDir()
	schema := docmodel.DefaultSchema(analyzerDefaultProfileName)

	idx := New(schema, dir)
	result, err := idx.Build(NewSliceSource(nil))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result.DocCount != 0 {
		t.Errorf("expected 0 documents, got %d", result.DocCount)
	}

	if _, err := segment.ReadManifest(dir); err != nil {
		t.Fatalf("expected a manifest even for an empty corpus: %v", err)
	}
}

func TestBuildSeparatesMultiValuedFieldSegmentsByFieldGap(t *testing.T) {
	dir := t.TempDir()
	schema := docmodel.DefaultSchema(analyzerDefaultProfileName)

	docs := []docmodel.Document{
		{
			Key:        "doc:1",
			Title:      "Guide",
			Body:       "placeholder",
			HeadingsH2: []string{"alpha setup", "beta setup"},
		},
	}

	idx := New(schema, dir)
	result, err := idx.Build(NewSliceSource(docs))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	r, err := segment.Open(result.SegmentPath, result.Fingerprint)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	alpha, err := r.Postings("headings_h2", "alpha")
	if err != nil {
		t.Fatalf("Postings(alpha): %v", err)
	}
	beta, err := r.Postings("headings_h2", "beta")
	if err != nil {
		t.Fatalf("Postings(beta): %v", err)
	}
	if len(alpha) != 1 || len(beta) != 1 {
		t.Fatalf("expected one posting each, got alpha=%v beta=%v", alpha, beta)
	}

	gap := beta[0].Positions[0] - alpha[0].Positions[0]
	if gap < analyzer.FieldGap {
		t.Errorf("expected the second heading's position to be offset by at least FieldGap (%d), got gap %d", analyzer.FieldGap, gap)
	}
}

const analyzerDefaultProfileName = "default"
