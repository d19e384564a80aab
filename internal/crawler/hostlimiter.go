package crawler

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiterConfig configures the leaky-bucket delay applied per host.
type HostLimiterConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// DefaultHostLimiterConfig allows a modest steady rate with a small burst,
// enough to smooth a page's sequence of asset fetches without throttling a
// single-page crawl.
func DefaultHostLimiterConfig() HostLimiterConfig {
	return HostLimiterConfig{RequestsPerSecond: 2, Burst: 4}
}

// HostLimiter applies an independent token-bucket limiter per host so one
// slow or strict host doesn't starve the shared worker pool, and one fast
// host doesn't get hammered past what it tolerates.
type HostLimiter struct {
	cfg HostLimiterConfig

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHostLimiter builds a HostLimiter with cfg applied to every host seen.
func NewHostLimiter(cfg HostLimiterConfig) *HostLimiter {
	return &HostLimiter{cfg: cfg, limiters: make(map[string]*rate.Limiter)}
}

// Wait blocks until rawURL's host is allowed to proceed, or ctx is done.
func (h *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	return h.limiterFor(rawURL).Wait(ctx)
}

func (h *HostLimiter) limiterFor(rawURL string) *rate.Limiter {
	host := hostOf(rawURL)

	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(h.cfg.RequestsPerSecond), h.cfg.Burst)
		h.limiters[host] = l
	}
	return l
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
