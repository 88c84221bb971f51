// Package watcher re-runs the sync whenever the reference store changes.
//
// The store is a SQLite file that is rewritten in bursts (main file, -wal,
// -journal), so events are debounced and each quiet period triggers exactly
// one full sync. Syncs never overlap.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aidanlsb/zinc/internal/notesync"
)

// DefaultDebounce is how long the store must be quiet before a sync starts.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors the store file and re-syncs the vault when it changes.
type Watcher struct {
	opts      notesync.Options
	storePath string
	watched   map[string]bool

	// Configuration
	debounceDelay time.Duration
	debug         bool

	// Internal state
	fsWatcher *fsnotify.Watcher
	pending   bool
	lastEvent time.Time
	mu        sync.Mutex

	// Callbacks
	onSync func(summary *notesync.Summary, err error)
}

// Config holds configuration options for the Watcher.
type Config struct {
	// Sync is the run performed after every change.
	Sync notesync.Options

	DebounceDelay time.Duration // Default: DefaultDebounce
	Debug         bool

	// InitialSync runs one sync before any change is observed.
	InitialSync bool

	OnSync func(summary *notesync.Summary, err error) // Optional callback
}

// New creates a new Watcher with the given configuration.
func New(cfg Config) (*Watcher, error) {
	if cfg.Sync.StorePath == "" {
		return nil, fmt.Errorf("store path is required")
	}

	storePath, err := filepath.Abs(cfg.Sync.StorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve store path: %w", err)
	}

	debounce := cfg.DebounceDelay
	if debounce == 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		opts:      cfg.Sync,
		storePath: storePath,
		watched: map[string]bool{
			storePath:              true,
			storePath + "-wal":     true,
			storePath + "-journal": true,
		},
		debounceDelay: debounce,
		debug:         cfg.Debug,
		onSync:        cfg.OnSync,
	}
	if cfg.InitialSync {
		w.pending = true
	}
	return w, nil
}

// Start begins watching the store for changes.
// It blocks until the context is cancelled and any running sync has finished.
func (w *Watcher) Start(ctx context.Context) error {
	if _, err := os.Stat(w.storePath); err != nil {
		return fmt.Errorf("failed to watch store: %w", err)
	}

	var err error
	w.fsWatcher, err = fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer w.fsWatcher.Close()

	// Watch the directory: SQLite creates and removes its sidecar files, and
	// some writers replace the main file by rename.
	dir := filepath.Dir(w.storePath)
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.logDebug("Watching store: %s", w.storePath)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.processDebounced(ctx)
	}()
	defer wg.Wait()

	// Event loop
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logDebug("Watcher error: %v", err)
		}
	}
}

// handleEvent processes a single filesystem event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !w.watched[event.Name] {
		return
	}
	if event.Op == fsnotify.Chmod {
		return
	}

	w.logDebug("Event: %s %s", event.Op, filepath.Base(event.Name))
	w.scheduleSync()
}

// scheduleSync marks the store dirty and restarts the debounce window.
func (w *Watcher) scheduleSync() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = true
	w.lastEvent = time.Now()
}

// processDebounced runs a sync once the store has been quiet long enough.
func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if w.ready() {
				w.runSync(ctx)
			}
		}
	}
}

// ready reports whether a sync is due and clears the pending flag.
func (w *Watcher) ready() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.pending || time.Since(w.lastEvent) < w.debounceDelay {
		return false
	}
	w.pending = false
	return true
}

func (w *Watcher) runSync(ctx context.Context) {
	w.logDebug("Syncing")
	summary, err := notesync.Run(ctx, w.opts)
	if err != nil {
		w.logDebug("Sync failed: %v", err)
	} else {
		w.logDebug("Synced %d records (%d created, %d updated, %d failed)",
			summary.Processed, summary.Created, summary.Updated, summary.Failed)
	}
	if w.onSync != nil {
		w.onSync(summary, err)
	}
}

// logDebug logs a debug message if debug mode is enabled.
func (w *Watcher) logDebug(format string, args ...interface{}) {
	if w.debug {
		fmt.Fprintf(os.Stderr, "[zinc-watcher] "+format+"\n", args...)
	}
}
