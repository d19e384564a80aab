package scorer

import (
	"context"
	"testing"

	"github.com/arcdocs/docsearch/internal/segment"
)

func buildSmallSegment(t *testing.T) *segment.Reader {
	t.Helper()
	dir := t.TempDir()
	b := segment.NewBuilder(dir)

	err := b.AddDocument("doc:hello", "Hello World", "hello world, a simple greeting", nil, map[string][]segment.Token{
		"title": {{Term: "hello", Position: 0}, {Term: "world", Position: 1}},
		"body":  {{Term: "hello", Position: 0}, {Term: "world", Position: 1}, {Term: "simpl", Position: 2}, {Term: "greet", Position: 3}},
	})
	if err != nil {
		t.Fatalf("AddDocument: %v", err)
	}

	err = b.AddDocument("doc:other", "Other Document", "nothing relevant here at all", nil, map[string][]segment.Token{
		"title": {{Term: "other", Position: 0}, {Term: "document", Position: 1}},
		"body":  {{Term: "noth", Position: 0}, {Term: "relev", Position: 1}, {Term: "here", Position: 2}},
	})
	if err != nil {
		t.Fatalf("AddDocument: %v", err)
	}

	path, err := b.Build("fp1")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	r, err := segment.Open(path, "fp1")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestTopKScoresNonNegativeAndOrdered(t *testing.T) {
	r := buildSmallSegment(t)
	opts := Options{
		Params: DefaultParams(),
		Boosts: map[string]float64{"title": 2.5, "body": 1.0},
	}
	hits, err := TopK(context.Background(), r, []string{"hello"}, 10, opts)
	if err != nil {
		t.Fatalf("TopK: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected exactly 1 hit for term only present in doc:hello, got %d", len(hits))
	}
	if hits[0].Key != "doc:hello" {
		t.Errorf("expected doc:hello, got %q", hits[0].Key)
	}
	if hits[0].Score < 0 {
		t.Errorf("score must never be negative, got %v", hits[0].Score)
	}
}

func TestTopKRespectsLimit(t *testing.T) {
	r := buildSmallSegment(t)
	opts := Options{
		Params: DefaultParams(),
		Boosts: map[string]float64{"body": 1.0},
	}
	hits, err := TopK(context.Background(), r, []string{"here", "relev"}, 1, opts)
	if err != nil {
		t.Fatalf("TopK: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected limit of 1 hit, got %d", len(hits))
	}
}

func TestTopKCancellation(t *testing.T) {
	r := buildSmallSegment(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opts := Options{Params: DefaultParams(), Boosts: map[string]float64{"body": 1.0}}
	_, err := TopK(ctx, r, []string{"hello"}, 10, opts)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestTopKNoMatchesReturnsEmpty(t *testing.T) {
	r := buildSmallSegment(t)
	opts := Options{Params: DefaultParams(), Boosts: map[string]float64{"body": 1.0}}
	hits, err := TopK(context.Background(), r, []string{"nonexistentterm"}, 10, opts)
	if err != nil {
		t.Fatalf("TopK: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits, got %d", len(hits))
	}
}

func buildTiedSegment(t *testing.T) *segment.Reader {
	t.Helper()
	dir := t.TempDir()
	b := segment.NewBuilder(dir)

	// Both documents carry an identical "tie" posting (same field length,
	// same term frequency, same position) so their BM25F scores come out
	// exactly equal and the sort falls through to the tie-break.
	for _, key := range []string{"doc:second", "doc:first"} {
		err := b.AddDocument(key, key, "tie", nil, map[string][]segment.Token{
			"body": {{Term: "tie", Position: 0}},
		})
		if err != nil {
			t.Fatalf("AddDocument(%s): %v", key, err)
		}
	}

	path, err := b.Build("fp-tie")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	r, err := segment.Open(path, "fp-tie")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestTopKTiedScoresBreakByAscendingDocID(t *testing.T) {
	r := buildTiedSegment(t)
	opts := Options{Params: DefaultParams(), Boosts: map[string]float64{"body": 1.0}}
	hits, err := TopK(context.Background(), r, []string{"tie"}, 10, opts)
	if err != nil {
		t.Fatalf("TopK: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 tied hits, got %d", len(hits))
	}
	if hits[0].Score != hits[1].Score {
		t.Fatalf("expected tied scores, got %v and %v", hits[0].Score, hits[1].Score)
	}
	// doc:second was added first (docID 0), doc:first second (docID 1), so
	// ascending doc_id puts doc:second before doc:first despite the key
	// ordering suggesting the opposite.
	if hits[0].Key != "doc:second" || hits[1].Key != "doc:first" {
		t.Fatalf("expected tie-break by ascending doc_id (doc:second, doc:first), got (%s, %s)", hits[0].Key, hits[1].Key)
	}
}
