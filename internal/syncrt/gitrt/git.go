// Package gitrt implements the sync scheduler protocol (syncrt.Runtime) for
// a git-backed tenant: it asks a Mirror collaborator for a checked-out
// subpath staging directory, then indexes it exactly the way a filesystem
// tenant indexes its docs_root_dir.
package gitrt

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arcdocs/docsearch/internal/docmodel"
	"github.com/arcdocs/docsearch/internal/indexer"
	"github.com/arcdocs/docsearch/internal/syncrt"
	"github.com/arcdocs/docsearch/internal/syncrt/filesystemrt"
)

// Publisher is called with the result of a successful build.
type Publisher func(segmentPath, fingerprint string) error

// Runtime is the gitrt implementation of syncrt.Runtime.
type Runtime struct {
	spec            RepoSpec
	mirror          Mirror
	indexer         *indexer.Indexer
	publish         Publisher
	refreshInterval time.Duration
	logger          *zap.Logger

	mu            sync.Mutex
	lastSyncAt    time.Time
	lastSuccessAt time.Time
	lastError     string
	docCount      int64
	syncing       bool
}

// New builds a gitrt.Runtime. When mirror is nil, a GoGitMirror rooted at
// workDir is used.
func New(spec RepoSpec, mirror Mirror, workDir string, schema docmodel.Schema, segDir string, publish Publisher, refreshInterval time.Duration, logger *zap.Logger) *Runtime {
	if mirror == nil {
		mirror = &GoGitMirror{WorkDir: workDir}
	}
	return &Runtime{
		spec:            spec,
		mirror:          mirror,
		indexer:         indexer.New(schema, segDir, indexer.WithLogger(logger)),
		publish:         publish,
		refreshInterval: refreshInterval,
		logger:          logger,
	}
}

// Initialize performs the first clone-and-index cycle.
func (rt *Runtime) Initialize(ctx context.Context) error {
	_, err := rt.runSync(ctx)
	return err
}

// Trigger schedules a sync in the background, subject to the freshness
// window unless forceFull is set. forceCrawler has no meaning for a git
// source and is ignored.
func (rt *Runtime) Trigger(ctx context.Context, _ bool, forceFull bool) (syncrt.TriggerResult, error) {
	rt.mu.Lock()
	if rt.syncing {
		rt.mu.Unlock()
		return syncrt.TriggerResult{Status: syncrt.StatusAlreadyRunning}, nil
	}
	if !forceFull && rt.refreshInterval > 0 && !rt.lastSyncAt.IsZero() && time.Since(rt.lastSyncAt) < rt.refreshInterval {
		rt.mu.Unlock()
		return syncrt.TriggerResult{Status: syncrt.StatusAccepted}, nil
	}
	rt.mu.Unlock()

	go func() {
		if _, err := rt.runSync(ctx); err != nil && rt.logger != nil {
			rt.logger.Warn("gitrt sync failed", zap.Error(err))
		}
	}()
	return syncrt.TriggerResult{Status: syncrt.StatusAccepted}, nil
}

func (rt *Runtime) runSync(ctx context.Context) (string, error) {
	rt.mu.Lock()
	if rt.syncing {
		rt.mu.Unlock()
		return "", nil
	}
	rt.syncing = true
	rt.mu.Unlock()
	defer func() {
		rt.mu.Lock()
		rt.syncing = false
		rt.mu.Unlock()
	}()

	staging, err := rt.mirror.Sync(ctx, rt.spec)
	if err != nil {
		rt.recordFailure(fmt.Errorf("gitrt: %w", err))
		return "", err
	}
	defer os.RemoveAll(staging)

	src, err := filesystemrt.NewDirectorySource(staging)
	if err != nil {
		rt.recordFailure(err)
		return "", err
	}
	defer src.Close()

	result, err := rt.indexer.Build(src)
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

// Stop implements syncrt.Runtime. A git sync has no background loop beyond
// an in-flight Trigger goroutine, which is left to finish its current fetch.
func (rt *Runtime) Stop(ctx context.Context) error { return nil }
