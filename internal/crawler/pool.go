// Package crawler implements the concurrency core shared by every
// crawler-backed sync: an adaptive worker pool, a per-host rate limiter, a
// cross-process lease lock, and a bounded crawl frontier.
package crawler

import (
	"sync"
	"time"
)

const (
	defaultSuccessThreshold = 25
	defaultQuietPeriod      = 60 * time.Second
)

// PoolConfig bounds the adaptive pool's concurrency limit.
type PoolConfig struct {
	MinConcurrency int
	MaxConcurrency int
	MaxSessions    int
}

// DefaultPoolConfig matches the spec's defaults: 5/20/50.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{MinConcurrency: 5, MaxConcurrency: 20, MaxSessions: 50}
}

// Pool is a semaphore whose capacity ramps up after a run of successes and
// halves immediately on a throttled response, as required by §4.9. Callers
// acquire a slot with Acquire, do their fetch, and report the outcome with
// ReportSuccess or ReportThrottled so the policy can adjust the limit for
// the next Acquire.
type Pool struct {
	cfg PoolConfig

	mu                sync.Mutex
	limit             int
	inFlight          int
	consecutiveOK     int
	lastThrottledAt   time.Time
	cond              *sync.Cond
}

// NewPool builds a Pool starting at cfg.MinConcurrency. cfg is clamped so
// MaxConcurrency never exceeds MaxSessions and MinConcurrency is at least 1.
func NewPool(cfg PoolConfig) *Pool {
	if cfg.MinConcurrency < 1 {
		cfg.MinConcurrency = 1
	}
	if cfg.MaxConcurrency < cfg.MinConcurrency {
		cfg.MaxConcurrency = cfg.MinConcurrency
	}
	if cfg.MaxSessions > 0 && cfg.MaxConcurrency > cfg.MaxSessions {
		cfg.MaxConcurrency = cfg.MaxSessions
		if cfg.MinConcurrency > cfg.MaxConcurrency {
			cfg.MinConcurrency = cfg.MaxConcurrency
		}
	}
	if cfg.MaxSessions < cfg.MaxConcurrency {
		cfg.MaxSessions = cfg.MaxConcurrency
	}
	p := &Pool{cfg: cfg, limit: cfg.MinConcurrency}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Acquire blocks until a slot is available under the current limit, then
// occupies it. Release must be called exactly once per successful Acquire.
func (p *Pool) Acquire() {
	p.mu.Lock()
	for p.inFlight >= p.limit {
		p.cond.Wait()
	}
	p.inFlight++
	p.mu.Unlock()
}

// Release frees the slot occupied by a prior Acquire.
func (p *Pool) Release() {
	p.mu.Lock()
	p.inFlight--
	p.cond.Signal()
	p.mu.Unlock()
}

// ReportSuccess records one successful fetch. After S_success=25 consecutive
// successes with at least T_quiet=60s since the last throttle, the limit
// increases by 1, capped at MaxConcurrency.
func (p *Pool) ReportSuccess() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.consecutiveOK++
	if p.consecutiveOK < defaultSuccessThreshold {
		return
	}
	if time.Since(p.lastThrottledAt) < defaultQuietPeriod && !p.lastThrottledAt.IsZero() {
		return
	}
	p.consecutiveOK = 0
	if p.limit < p.cfg.MaxConcurrency {
		p.limit++
		p.cond.Broadcast()
	}
}

// ReportThrottled records a throttled response: the limit is immediately
// halved, bounded below by MinConcurrency, and the consecutive-success
// counter resets.
func (p *Pool) ReportThrottled() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.consecutiveOK = 0
	p.lastThrottledAt = time.Now()
	newLimit := p.limit / 2
	if newLimit < p.cfg.MinConcurrency {
		newLimit = p.cfg.MinConcurrency
	}
	p.limit = newLimit
}

// Limit returns the pool's current concurrency ceiling.
func (p *Pool) Limit() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.limit
}
