// Package filesystemrt implements the sync scheduler protocol
// (syncrt.Runtime) for a filesystem-backed tenant: it watches
// docs_root_dir with fsnotify and rebuilds the segment from the files found
// there, debounced so a burst of saves triggers one rebuild.
package filesystemrt

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arcdocs/docsearch/internal/docmodel"
	"github.com/arcdocs/docsearch/internal/indexer"
	"github.com/arcdocs/docsearch/internal/syncrt"
)

// Publisher is the callback a filesystem runtime calls with the result of a
// successful build, so it stays decoupled from the tenant package (avoiding
// an import cycle) while still being the one to call indexer.Build.
type Publisher func(segmentPath, fingerprint string) error

// Runtime is the filesystemrt implementation of syncrt.Runtime.
type Runtime struct {
	root            string
	schema          docmodel.Schema
	indexer         *indexer.Indexer
	publish         Publisher
	refreshInterval time.Duration
	logger          *zap.Logger

	watcher *watcher

	mu            sync.Mutex
	lastSyncAt    time.Time
	lastSuccessAt time.Time
	lastError     string
	docCount      int64
	syncing       bool
}

// New builds a filesystemrt.Runtime. refreshInterval governs the freshness
// check Trigger applies when forceFull is false; zero disables it (every
// trigger runs).
func New(root string, schema docmodel.Schema, segDir string, publish Publisher, refreshInterval time.Duration, logger *zap.Logger) *Runtime {
	rt := &Runtime{
		root:            root,
		schema:          schema,
		indexer:         indexer.New(schema, segDir, indexer.WithLogger(logger)),
		publish:         publish,
		refreshInterval: refreshInterval,
		logger:          logger,
	}
	rt.watcher = newWatcher(root, rt.onFileSystemChange, logger)
	return rt
}

// Initialize starts the fsnotify watcher and performs the first sync so a
// freshly started process does not wait for a file change to index what is
// already on disk.
func (rt *Runtime) Initialize(ctx context.Context) error {
	if err := rt.watcher.start(ctx); err != nil {
		return fmt.Errorf("filesystemrt: start watcher: %w", err)
	}
	_, err := rt.runSync(ctx)
	return err
}

// Trigger runs a synchronous rebuild in the background. Filesystem syncs
// are cheap enough (no network, no lease contention) that "already_running"
// only applies to an overlapping in-flight build.
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
			rt.logger.Warn("filesystemrt sync failed", zap.Error(err))
		}
	}()
	return syncrt.TriggerResult{Status: syncrt.StatusAccepted}, nil
}

func (rt *Runtime) onFileSystemChange() {
	if _, err := rt.runSync(context.Background()); err != nil && rt.logger != nil {
		rt.logger.Warn("filesystemrt debounced sync failed", zap.Error(err))
	}
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

	src, err := NewDirectorySource(rt.root)
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

// Stop implements syncrt.Runtime.
func (rt *Runtime) Stop(ctx context.Context) error {
	rt.watcher.stop()
	return nil
}
