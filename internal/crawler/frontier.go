package crawler

import (
	"strings"
	"sync"
)

// FrontierConfig bounds one crawl's scope.
type FrontierConfig struct {
	WhitelistPrefixes []string
	BlacklistPrefixes []string
	MaxPages          int
}

// Frontier is a bounded, deduplicated crawl queue: it tracks which URLs
// have already been visited or enqueued and enforces the tenant's
// whitelist/blacklist prefixes and max_pages cap, independent of the
// adaptive pool so its queueing logic is unit-testable without a network.
type Frontier struct {
	cfg FrontierConfig

	mu      sync.Mutex
	queue   []string
	seen    map[string]bool
	visited int
}

// NewFrontier builds an empty Frontier.
func NewFrontier(cfg FrontierConfig) *Frontier {
	return &Frontier{cfg: cfg, seen: make(map[string]bool)}
}

// Enqueue adds url to the frontier unless it has already been seen, is
// outside the whitelist, matches the blacklist, or the queue has already
// admitted max_pages URLs. Returns true if the URL was added.
func (f *Frontier) Enqueue(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.seen[url] {
		return false
	}
	if !f.allowed(url) {
		return false
	}
	if f.cfg.MaxPages > 0 && f.visited+len(f.queue) >= f.cfg.MaxPages {
		return false
	}
	f.seen[url] = true
	f.queue = append(f.queue, url)
	return true
}

func (f *Frontier) allowed(url string) bool {
	for _, prefix := range f.cfg.BlacklistPrefixes {
		if strings.HasPrefix(url, prefix) {
			return false
		}
	}
	if len(f.cfg.WhitelistPrefixes) == 0 {
		return true
	}
	for _, prefix := range f.cfg.WhitelistPrefixes {
		if strings.HasPrefix(url, prefix) {
			return true
		}
	}
	return false
}

// Next pops the next URL to fetch, or ("", false) when the queue is empty.
func (f *Frontier) Next() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		return "", false
	}
	url := f.queue[0]
	f.queue = f.queue[1:]
	f.visited++
	return url, true
}

// Len returns the number of URLs currently queued but not yet popped.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Visited returns how many URLs have been popped via Next.
func (f *Frontier) Visited() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visited
}
