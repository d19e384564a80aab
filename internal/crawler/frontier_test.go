package crawler

import "testing"

func TestEnqueueDedupes(t *testing.T) {
	f := NewFrontier(FrontierConfig{})
	if !f.Enqueue("https://docs.example.com/a") {
		t.Fatal("expected first enqueue to succeed")
	}
	if f.Enqueue("https://docs.example.com/a") {
		t.Fatal("expected duplicate enqueue to be rejected")
	}
	if f.Len() != 1 {
		t.Errorf("expected queue length 1, got %d", f.Len())
	}
}

func TestEnqueueRespectsWhitelist(t *testing.T) {
	f := NewFrontier(FrontierConfig{WhitelistPrefixes: []string{"https://docs.example.com/"}})
	if f.Enqueue("https://other.example.com/a") {
		t.Fatal("expected out-of-whitelist URL to be rejected")
	}
	if !f.Enqueue("https://docs.example.com/a") {
		t.Fatal("expected in-whitelist URL to be accepted")
	}
}

func TestEnqueueRespectsBlacklist(t *testing.T) {
	f := NewFrontier(FrontierConfig{BlacklistPrefixes: []string{"https://docs.example.com/internal/"}})
	if f.Enqueue("https://docs.example.com/internal/secret") {
		t.Fatal("expected blacklisted URL to be rejected")
	}
	if !f.Enqueue("https://docs.example.com/public") {
		t.Fatal("expected non-blacklisted URL to be accepted")
	}
}

func TestEnqueueStopsAtMaxPages(t *testing.T) {
	f := NewFrontier(FrontierConfig{MaxPages: 2})
	if !f.Enqueue("a") || !f.Enqueue("b") {
		t.Fatal("expected first two enqueues to succeed")
	}
	if f.Enqueue("c") {
		t.Fatal("expected third enqueue to be rejected once max_pages reached")
	}
}

func TestNextDrainsInFIFOOrder(t *testing.T) {
	f := NewFrontier(FrontierConfig{})
	f.Enqueue("a")
	f.Enqueue("b")

	first, ok := f.Next()
	if !ok || first != "a" {
		t.Fatalf("expected first=a, got %q ok=%v", first, ok)
	}
	second, ok := f.Next()
	if !ok || second != "b" {
		t.Fatalf("expected second=b, got %q ok=%v", second, ok)
	}
	if _, ok := f.Next(); ok {
		t.Fatal("expected empty frontier after draining")
	}
	if f.Visited() != 2 {
		t.Errorf("expected Visited()=2, got %d", f.Visited())
	}
}

func TestMaxPagesAccountsForQueuedAndVisited(t *testing.T) {
	f := NewFrontier(FrontierConfig{MaxPages: 1})
	f.Enqueue("a")
	f.Next()
	if f.Enqueue("b") {
		t.Fatal("expected enqueue to be rejected once visited+queued reaches max_pages")
	}
}
