package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"drover/pkg/logging"
)

const (
	// DefaultDebounceInterval is the time to wait after the last change to
	// the catalog file before reloading it.
	DefaultDebounceInterval = 300 * time.Millisecond

	// DefaultPollInterval is the fallback polling interval when fsnotify is
	// not available.
	DefaultPollInterval = 2 * time.Second
)

// WatcherConfig holds configuration for the catalog watcher.
type WatcherConfig struct {
	// Path is the catalog file to watch.
	Path string

	// Store receives every successfully parsed catalog.
	Store *Store

	// Debounce overrides DefaultDebounceInterval.
	Debounce time.Duration

	// PollInterval overrides DefaultPollInterval.
	PollInterval time.Duration

	// OnReload is called after the store was updated.
	OnReload func(*Catalog)
}

// Watcher reloads a catalog file into a Store whenever it changes. A file
// that fails to parse is logged and the previous catalog stays in place.
type Watcher struct {
	mu sync.Mutex

	config WatcherConfig

	fsWatcher *fsnotify.Watcher
	stopCh    chan struct{}
	running   bool

	lastModTime time.Time

	debounceTimer *time.Timer
	debounceMu    sync.Mutex
}

// NewWatcher creates a catalog watcher.
func NewWatcher(config WatcherConfig) (*Watcher, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("catalog watcher requires a path")
	}
	if config.Store == nil {
		return nil, fmt.Errorf("catalog watcher requires a store")
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounceInterval
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	return &Watcher{config: config}, nil
}

// Start begins watching the catalog file.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	w.stopCh = make(chan struct{})
	w.running = true

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Warn("CatalogWatcher", "fsnotify not available, falling back to polling: %v", err)
		go w.pollForChanges()
		return nil
	}

	// Watch the directory: editors commonly replace the file by renaming a
	// temporary file over it, which drops a watch on the file itself.
	dir := filepath.Dir(w.config.Path)
	if err := watcher.Add(dir); err != nil {
		logging.Warn("CatalogWatcher", "Failed to watch directory %s, falling back to polling: %v", dir, err)
		watcher.Close()
		go w.pollForChanges()
		return nil
	}
	w.fsWatcher = watcher

	go w.processEvents(watcher.Events, watcher.Errors)

	logging.Info("CatalogWatcher", "Watching %s for changes", w.config.Path)
	return nil
}

func (w *Watcher) processEvents(eventsCh <-chan fsnotify.Event, errorsCh <-chan error) {
	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-errorsCh:
			if !ok {
				return
			}
			logging.Error("CatalogWatcher", err, "fsnotify error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Base(event.Name) != filepath.Base(w.config.Path) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	logging.Debug("CatalogWatcher", "Catalog file changed: %s (%s)", event.Name, event.Op)
	w.reloadDebounced()
}

// reloadDebounced coalesces bursts of events into a single reload.
func (w *Watcher) reloadDebounced() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.config.Debounce, func() {
		w.mu.Lock()
		running := w.running
		w.mu.Unlock()

		if running {
			w.reload()
		}
	})
}

func (w *Watcher) reload() {
	cat, err := Load(w.config.Path)
	if err != nil {
		logging.Error("CatalogWatcher", err, "Keeping previous catalog")
		return
	}

	w.config.Store.Replace(cat)
	logging.Info("CatalogWatcher", "Reloaded catalog with %d services", len(cat.Services))

	if w.config.OnReload != nil {
		w.config.OnReload(cat)
	}
}

func (w *Watcher) pollForChanges() {
	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	if info, err := os.Stat(w.config.Path); err == nil {
		w.lastModTime = info.ModTime()
	}

	for {
		select {
		case <-w.stopCh:
			return

		case <-ticker.C:
			info, err := os.Stat(w.config.Path)
			if err != nil {
				continue
			}
			if info.ModTime().After(w.lastModTime) {
				w.lastModTime = info.ModTime()
				logging.Debug("CatalogWatcher", "Catalog change detected via polling")
				w.reloadDebounced()
			}
		}
	}
}

// Stop stops watching. Pending reloads are discarded.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false
	close(w.stopCh)

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMu.Unlock()

	if w.fsWatcher != nil {
		if err := w.fsWatcher.Close(); err != nil {
			logging.Warn("CatalogWatcher", "Error closing fsnotify watcher: %v", err)
		}
		w.fsWatcher = nil
	}

	logging.Info("CatalogWatcher", "Stopped watching %s", w.config.Path)
	return nil
}
