package segment

import (
	"testing"
	"time"
)

func TestManifestMissingReturnsErrIndexMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadManifest(dir)
	if err != ErrIndexMissing {
		t.Fatalf("expected ErrIndexMissing, got %v", err)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := Manifest{Fingerprint: "abc123", BuiltAt: time.Unix(1700000000, 0).UTC(), DocCount: 42}

	if err := WriteManifest(dir, want); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}

	got, err := ReadManifest(dir)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if got.Fingerprint != want.Fingerprint || got.DocCount != want.DocCount {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestReclaimKeepsOnlyManifestSegment(t *testing.T) {
	dir := t.TempDir()
	b := NewBuilder(dir)
	if err := b.AddDocument("doc:1", "t", "b", nil, map[string][]Token{"body": {{Term: "b", Position: 0}}}); err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	keepPath, err := b.Build("keepme")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	_ = keepPath

	b2 := NewBuilder(dir)
	if err := b2.AddDocument("doc:1", "t", "b", nil, map[string][]Token{"body": {{Term: "b", Position: 0}}}); err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	if _, err := b2.Build("orphan"); err != nil {
		t.Fatalf("Build orphan: %v", err)
	}

	if err := WriteManifest(dir, Manifest{Fingerprint: "keepme", DocCount: 1}); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}

	removed, err := Reclaim(dir)
	if err != nil {
		t.Fatalf("Reclaim: %v", err)
	}
	if len(removed) != 1 || removed[0] != "orphan.db" {
		t.Errorf("expected to remove orphan.db, removed=%v", removed)
	}
}
