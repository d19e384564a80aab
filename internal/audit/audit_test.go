package audit

import (
	"testing"
	"time"

	"github.com/arcdocs/docsearch/internal/docmodel"
	"github.com/arcdocs/docsearch/internal/indexer"
)

func docs() []docmodel.Document {
	return []docmodel.Document{
		{Key: "doc:1", Title: "Hello", Body: "hello world"},
	}
}

func TestRunMissingManifest(t *testing.T) {
	dir := t.TempDir()
	report, err := Run(indexer.NewSliceSource(docs()), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Status != StatusMissing {
		t.Errorf("expected StatusMissing, got %v", report.Status)
	}
	if report.ExpectedFingerprint == "" {
		t.Error("expected a computed fingerprint even with no manifest")
	}
}

func TestRunOKAfterMatchingBuild(t *testing.T) {
	dir := t.TempDir()
	schema := docmodel.DefaultSchema("default")
	idx := indexer.New(schema, dir)
	if _, err := idx.Build(indexer.NewSliceSource(docs())); err != nil {
		t.Fatalf("Build: %v", err)
	}

	report, err := Run(indexer.NewSliceSource(docs()), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Status != StatusOK {
		t.Errorf("expected StatusOK, got %v (expected=%s manifest=%s)", report.Status, report.ExpectedFingerprint, report.ManifestFingerprint)
	}
}

func TestRunStaleAfterSourceChanges(t *testing.T) {
	dir := t.TempDir()
	schema := docmodel.DefaultSchema("default")
	idx := indexer.New(schema, dir)
	if _, err := idx.Build(indexer.NewSliceSource(docs())); err != nil {
		t.Fatalf("Build: %v", err)
	}

	changed := []docmodel.Document{{Key: "doc:1", Title: "Hello", Body: "hello mars"}}
	report, err := Run(indexer.NewSliceSource(changed), dir)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Status != StatusStale {
		t.Errorf("expected StatusStale, got %v", report.Status)
	}
}

func TestRunWithTimeoutExceeded(t *testing.T) {
	dir := t.TempDir()
	slowSource := blockingSource{release: make(chan struct{})}
	_, err := RunWithTimeout(slowSource, dir, 10*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	close(slowSource.release)
}

type blockingSource struct {
	release chan struct{}
}

func (b blockingSource) Next() (docmodel.Document, bool, error) {
	<-b.release
	return docmodel.Document{}, false, nil
}

func (b blockingSource) Close() error { return nil }
