// Package crawlrt implements the sync scheduler protocol (syncrt.Runtime)
// for an online, crawler-backed tenant: it drives internal/crawler's
// adaptive pool, host limiter, frontier, and cross-process lease around a
// caller-supplied Fetcher collaborator, then hands the crawled documents to
// the indexer exactly like any other sync runtime.
package crawlrt

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/arcdocs/docsearch/internal/crawler"
	"github.com/arcdocs/docsearch/internal/docmodel"
	"github.com/arcdocs/docsearch/internal/indexer"
	"github.com/arcdocs/docsearch/internal/syncrt"
)

const maxFetchAttempts = 3

// Publisher is called with the result of a successful build.
type Publisher func(segmentPath, fingerprint string) error

// Config bundles everything crawlrt needs beyond the fetcher itself.
type Config struct {
	EntryURLs         []string
	WhitelistPrefixes []string
	BlacklistPrefixes []string
	MaxPages          int
	Pool              crawler.PoolConfig
	HostLimiter       crawler.HostLimiterConfig
	LeaseTTL          time.Duration
	RefreshSchedule   string // standard 5-field cron, or "@every Xm"-style interval
	OwnerID           string
}

// Runtime is the crawlrt implementation of syncrt.Runtime.
type Runtime struct {
	cfg       Config
	fetcher   Fetcher
	throttled Throttled
	indexer   *indexer.Indexer
	publish   Publisher
	metaDir   string
	logger    *zap.Logger

	cron *cron.Cron

	mu            sync.Mutex
	lastSyncAt    time.Time
	lastSuccessAt time.Time
	lastError     string
	docCount      int64
	syncing       bool
}

// New builds a crawlrt.Runtime. metaDir is the tenant's
// __scheduler_meta directory, the parent of the lease lock file.
func New(cfg Config, fetcher Fetcher, throttled Throttled, schema docmodel.Schema, segDir, metaDir string, publish Publisher, logger *zap.Logger) *Runtime {
	return &Runtime{
		cfg:       cfg,
		fetcher:   fetcher,
		throttled: throttled,
		indexer:   indexer.New(schema, segDir, indexer.WithLogger(logger)),
		publish:   publish,
		metaDir:   metaDir,
		logger:    logger,
	}
}

// Initialize runs the first crawl to completion and, if a refresh schedule
// is configured, starts the cron loop that re-triggers it afterward.
func (rt *Runtime) Initialize(ctx context.Context) error {
	if rt.cfg.RefreshSchedule != "" {
		rt.cron = cron.New()
		if _, err := rt.cron.AddFunc(rt.cfg.RefreshSchedule, func() {
			rt.Trigger(context.Background(), true, false)
		}); err != nil {
			return fmt.Errorf("crawlrt: invalid refresh_schedule %q: %w", rt.cfg.RefreshSchedule, err)
		}
		rt.cron.Start()
	}

	lease := crawler.NewLease(rt.metaDir, rt.cfg.OwnerID, rt.cfg.LeaseTTL)
	if err := lease.Acquire(); err != nil {
		if err == crawler.ErrLeaseContended {
			return nil
		}
		return err
	}
	defer lease.Release()

	rt.mu.Lock()
	rt.syncing = true
	rt.mu.Unlock()
	defer func() {
		rt.mu.Lock()
		rt.syncing = false
		rt.mu.Unlock()
	}()

	_, err := rt.runSync(ctx)
	return err
}

// Trigger attempts to acquire the crawl lease synchronously. If another
// process (or goroutine, or this tenant's own cron loop) already holds it,
// Trigger returns immediately with already_running/contended and never
// blocks waiting for the crawl to finish, per §4.9. Once the lease is held,
// the crawl itself runs in the background.
func (rt *Runtime) Trigger(ctx context.Context, forceCrawler, forceFull bool) (syncrt.TriggerResult, error) {
	rt.mu.Lock()
	if rt.syncing {
		rt.mu.Unlock()
		return syncrt.TriggerResult{Status: syncrt.StatusAlreadyRunning, LockStatus: syncrt.LockStatusContended}, nil
	}
	rt.syncing = true
	rt.mu.Unlock()

	lease := crawler.NewLease(rt.metaDir, rt.cfg.OwnerID, rt.cfg.LeaseTTL)
	if err := lease.Acquire(); err != nil {
		rt.mu.Lock()
		rt.syncing = false
		rt.mu.Unlock()
		if err == crawler.ErrLeaseContended {
			return syncrt.TriggerResult{Status: syncrt.StatusAlreadyRunning, LockStatus: syncrt.LockStatusContended}, nil
		}
		rt.recordFailure(err)
		return syncrt.TriggerResult{Status: syncrt.StatusFailed}, err
	}

	go func() {
		defer lease.Release()
		defer func() {
			rt.mu.Lock()
			rt.syncing = false
			rt.mu.Unlock()
		}()
		if _, err := rt.runSync(ctx); err != nil && rt.logger != nil {
			rt.logger.Warn("crawlrt sync failed", zap.Error(err))
		}
	}()
	return syncrt.TriggerResult{Status: syncrt.StatusAccepted}, nil
}

func (rt *Runtime) runSync(ctx context.Context) (string, error) {
	docs, err := rt.crawl(ctx)
	if err != nil {
		rt.recordFailure(err)
		return "", err
	}

	result, err := rt.indexer.Build(indexer.NewSliceSource(docs))
	if err != nil {
		rt.recordFailure(err)
		return "", err
	}
	if err := rt.publish(result.SegmentPath, result.Fingerprint); err != nil {
		rt.recordFailure(err)
		return "", err
	}

	rt.mu.Lock()
	now := time.Now()
	rt.lastSyncAt = now
	rt.lastSuccessAt = now
	rt.lastError = ""
	rt.docCount = int64(result.DocCount)
	rt.mu.Unlock()
	return result.Fingerprint, nil
}

// crawl drains the frontier with the adaptive pool and host limiter,
// returning every document successfully fetched. A worker-level failure
// (after exhausting retries) is dropped from the result but does not fail
// the whole crawl.
func (rt *Runtime) crawl(ctx context.Context) ([]docmodel.Document, error) {
	frontier := crawler.NewFrontier(crawler.FrontierConfig{
		WhitelistPrefixes: rt.cfg.WhitelistPrefixes,
		BlacklistPrefixes: rt.cfg.BlacklistPrefixes,
		MaxPages:          rt.cfg.MaxPages,
	})
	for _, u := range rt.cfg.EntryURLs {
		frontier.Enqueue(u)
	}

	pool := crawler.NewPool(rt.cfg.Pool)
	hostLimiter := crawler.NewHostLimiter(rt.cfg.HostLimiter)

	var mu sync.Mutex
	var docs []docmodel.Document
	var inFlight int32
	var wg sync.WaitGroup

	workers := rt.cfg.Pool.MaxConcurrency
	if workers < 1 {
		workers = 1
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if ctx.Err() != nil {
					return
				}
				u, ok := frontier.Next()
				if !ok {
					if atomic.LoadInt32(&inFlight) == 0 {
						return
					}
					time.Sleep(5 * time.Millisecond)
					continue
				}

				atomic.AddInt32(&inFlight, 1)
				pool.Acquire()
				if err := hostLimiter.Wait(ctx, u); err == nil {
					if doc, links, err := rt.fetchWithRetry(ctx, u, pool); err == nil {
						mu.Lock()
						docs = append(docs, doc)
						mu.Unlock()
						for _, link := range links {
							frontier.Enqueue(link)
						}
					}
				}
				pool.Release()
				atomic.AddInt32(&inFlight, -1)
			}
		}()
	}
	wg.Wait()
	return docs, nil
}

func (rt *Runtime) fetchWithRetry(ctx context.Context, u string, pool *crawler.Pool) (docmodel.Document, []string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		doc, links, err := rt.fetcher.Fetch(ctx, u)
		if err == nil {
			pool.ReportSuccess()
			return doc, links, nil
		}
		lastErr = err
		if rt.throttled != nil && rt.throttled(err) {
			pool.ReportThrottled()
		}
		if attempt < maxFetchAttempts {
			time.Sleep(backoff(attempt))
		}
	}
	if rt.logger != nil {
		rt.logger.Warn("crawlrt fetch failed after retries", zap.String("url", u), zap.Error(lastErr))
	}
	return docmodel.Document{}, nil, lastErr
}

func backoff(attempt int) time.Duration {
	return time.Duration(attempt*attempt) * 250 * time.Millisecond
}

func (rt *Runtime) recordFailure(err error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.lastSyncAt = time.Now()
	rt.lastError = err.Error()
}

// Stats implements syncrt.Runtime.
func (rt *Runtime) Stats() syncrt.Stats {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return syncrt.Stats{
		LastSyncAt:     rt.lastSyncAt,
		LastSuccessAt:  rt.lastSuccessAt,
		LastError:      rt.lastError,
		DocumentsCount: rt.docCount,
	}
}

// Stop implements syncrt.Runtime: it stops the cron scheduler. In-flight
// crawl workers observe ctx cancellation (passed through from the caller of
// Trigger/Initialize) and exit without starting new fetches; a lease they
// hold simply expires at its TTL.
func (rt *Runtime) Stop(ctx context.Context) error {
	if rt.cron != nil {
		stopCtx := rt.cron.Stop()
		select {
		case <-stopCtx.Done():
		case <-ctx.Done():
		}
	}
	return nil
}
