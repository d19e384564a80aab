package filesystemrt

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// watcher recursively watches one root directory and calls onChange
// (debounced) whenever a file under it is created, written, or removed.
// Adapted from the teacher's single-callback-pair watcher.Watcher, folded
// to one root and one coalesced signal since a filesystem sync runtime only
// needs "something changed, rescan" rather than per-file index/remove
// callbacks.
type watcher struct {
	root     string
	onChange func()
	debounce time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	timer   *time.Timer
	started bool
	done    chan struct{}
}

func newWatcher(root string, onChange func(), logger *zap.Logger) *watcher {
	return &watcher{
		root:     root,
		onChange: onChange,
		debounce: defaultDebounce,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

func (w *watcher) start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.fsw = fsw
	w.started = true
	w.mu.Unlock()

	if err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	}); err != nil {
		fsw.Close()
		return err
	}

	go w.run(ctx)
	return nil
}

func (w *watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if err != nil && w.logger != nil {
				w.logger.Debug("filesystemrt watcher error", zap.Error(err))
			}
		}
	}
}

func (w *watcher) handle(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			w.fsw.Add(ev.Name)
		}
	}
	w.scheduleChange()
}

func (w *watcher) scheduleChange() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.onChange)
}

func (w *watcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.fsw.Close()
	w.started = false
	select {
	case <-w.done:
	default:
		close(w.done)
	}
}
