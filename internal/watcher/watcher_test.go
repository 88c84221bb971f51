package watcher

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aidanlsb/zinc/internal/notesync"
	"github.com/aidanlsb/zinc/internal/testutil"
)

type syncResult struct {
	summary *notesync.Summary
	err     error
}

func startWatcher(t *testing.T, store *testutil.TestStore, vault *testutil.TestVault) <-chan syncResult {
	t.Helper()

	results := make(chan syncResult, 16)
	w, err := New(Config{
		Sync: notesync.Options{
			StorePath: store.Path,
			VaultPath: vault.Path,
		},
		DebounceDelay: 100 * time.Millisecond,
		InitialSync:   true,
		OnSync: func(summary *notesync.Summary, err error) {
			results <- syncResult{summary, err}
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Start returned %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})

	return results
}

func waitForSync(t *testing.T, results <-chan syncResult, accept func(*notesync.Summary) bool) *notesync.Summary {
	t.Helper()
	timeout := time.After(10 * time.Second)
	for {
		select {
		case r := <-results:
			if r.err != nil {
				t.Fatalf("sync failed: %v", r.err)
			}
			if accept(r.summary) {
				return r.summary
			}
		case <-timeout:
			t.Fatal("timed out waiting for sync")
			return nil
		}
	}
}

func TestWatcherInitialSync(t *testing.T) {
	store := testutil.NewTestStore(t)
	id := store.AddItem("book", "BOOK0001")
	store.SetField(id, "title", "The Art of Computer Programming")
	vault := testutil.NewTestVault(t).Build()

	results := startWatcher(t, store, vault)
	waitForSync(t, results, func(s *notesync.Summary) bool { return s.Created == 1 })

	vault.AssertFileExists("Academic Papers/The Art of Computer Programming.md")
}

func TestWatcherResyncsOnStoreChange(t *testing.T) {
	store := testutil.NewTestStore(t)
	vault := testutil.NewTestVault(t).Build()

	results := startWatcher(t, store, vault)
	waitForSync(t, results, func(s *notesync.Summary) bool { return s.Processed == 0 })

	id := store.AddItem("thesis", "THES0001")
	store.SetField(id, "title", "A Mathematical Theory of Communication")

	waitForSync(t, results, func(s *notesync.Summary) bool {
		return vault.FileExists("Academic Papers/A Mathematical Theory of Communication.md")
	})
}

func TestHandleEventFiltersUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	store := filepath.Join(dir, "zotero.sqlite")
	w, err := New(Config{Sync: notesync.Options{StorePath: store}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := []struct {
		name    string
		event   fsnotify.Event
		pending bool
	}{
		{"store write", fsnotify.Event{Name: store, Op: fsnotify.Write}, true},
		{"wal write", fsnotify.Event{Name: store + "-wal", Op: fsnotify.Write}, true},
		{"journal removed", fsnotify.Event{Name: store + "-journal", Op: fsnotify.Remove}, true},
		{"store chmod", fsnotify.Event{Name: store, Op: fsnotify.Chmod}, false},
		{"other file", fsnotify.Event{Name: filepath.Join(dir, "zotero.sqlite.bak"), Op: fsnotify.Write}, false},
		{"storage dir", fsnotify.Event{Name: filepath.Join(dir, "storage"), Op: fsnotify.Create}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w.pending = false
			w.handleEvent(tt.event)
			if w.pending != tt.pending {
				t.Errorf("pending = %v, want %v", w.pending, tt.pending)
			}
		})
	}
}

func TestReadyWaitsForQuietPeriod(t *testing.T) {
	w, err := New(Config{
		Sync:          notesync.Options{StorePath: "zotero.sqlite"},
		DebounceDelay: time.Hour,
	})
	if err != nil {
		t.Fatal(err)
	}

	if w.ready() {
		t.Fatal("nothing scheduled, should not be ready")
	}
	w.scheduleSync()
	if w.ready() {
		t.Fatal("should wait for the debounce delay")
	}

	w.mu.Lock()
	w.lastEvent = time.Now().Add(-2 * time.Hour)
	w.mu.Unlock()
	if !w.ready() {
		t.Fatal("should be ready after the debounce delay")
	}
	if w.ready() {
		t.Fatal("pending flag should be cleared")
	}
}

func TestNewRequiresStore(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error without store path")
	}
}

func TestStartMissingStore(t *testing.T) {
	w, err := New(Config{Sync: notesync.Options{StorePath: filepath.Join(t.TempDir(), "missing.sqlite")}})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err == nil {
		t.Fatal("expected error for missing store")
	}
}
