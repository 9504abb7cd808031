package scheduler

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/MolecularAI/smartsrx/logging"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups the burst of events produced by a single save.
const DefaultDebounce = 500 * time.Millisecond

// SourceWatcher triggers a reload when the source file changes on disk.
// The parent directory is watched so that editors replacing the file through
// a rename are noticed too.
type SourceWatcher struct {
	path     string
	debounce time.Duration
	reload   func() error

	watcher *fsnotify.Watcher
	done    chan struct{}

	mu      sync.Mutex
	timer   *time.Timer
	started bool
	stopped bool
}

// NewSourceWatcher watches path and calls reload once changes settle.
func NewSourceWatcher(path string, debounce time.Duration, reload func() error) (*SourceWatcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(absPath), err)
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &SourceWatcher{
		path:     absPath,
		debounce: debounce,
		reload:   reload,
		watcher:  watcher,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching for source changes
func (sw *SourceWatcher) Start() {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.started {
		return
	}
	sw.started = true
	go sw.watchLoop()
}

func (sw *SourceWatcher) watchLoop() {
	defer close(sw.done)

	for {
		select {
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != sw.path {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				logging.Debug("Source watcher detected change",
					"file", event.Name,
					"op", event.Op.String())
				sw.scheduleReload()
			}

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn("Source watcher error", "error", err)
		}
	}
}

// scheduleReload debounces rapid file changes and triggers reload
func (sw *SourceWatcher) scheduleReload() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.stopped {
		return
	}
	if sw.timer != nil {
		sw.timer.Stop()
	}

	sw.timer = time.AfterFunc(sw.debounce, func() {
		logging.Info("Source changed, reloading", "file", sw.path)
		if err := sw.reload(); err != nil {
			logging.Error("Source reload failed", "error", err)
		}
	})
}

// Stop stops watching and cancels any pending reload. The event loop is
// drained first so no reload can be armed afterwards.
func (sw *SourceWatcher) Stop() error {
	sw.mu.Lock()
	started := sw.started
	sw.mu.Unlock()

	err := sw.watcher.Close()
	if started {
		<-sw.done
	}

	sw.mu.Lock()
	sw.stopped = true
	if sw.timer != nil {
		sw.timer.Stop()
		sw.timer = nil
	}
	sw.mu.Unlock()
	return err
}
