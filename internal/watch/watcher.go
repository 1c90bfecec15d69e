// Package watch monitors a drop folder for new spreadsheet and markdown
// files and hands settled batches to a processing callback. Rapid saves
// and partial copies are absorbed by a per-file debounce window.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"cleandesk/internal/logging"
)

// Handler receives the files whose events have settled past the
// debounce window, as one batch per tick.
type Handler func(ctx context.Context, paths []string)

// Stats tracks watcher activity for the status display.
type Stats struct {
	FilesSeen      int
	BatchesHandled int
	Errors         int
	LastEventTime  time.Time
	LastEventPath  string
}

// Watcher watches one drop folder for processable files.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	dir         string
	handler     Handler
	debounceMap map[string]time.Time
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats Stats
}

// New creates a watcher for dir. The debounce duration controls how
// long a file must be quiet before it is handed to the handler.
func New(dir string, debounce time.Duration, handler Handler) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	return &Watcher{
		watcher:     fsw,
		dir:         dir,
		handler:     handler,
		debounceMap: make(map[string]time.Time),
		debounceDur: debounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching the drop folder. Non-blocking; the event loop
// runs in a goroutine until Stop or context cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}

	logging.Watch("watching drop folder %s (debounce %s)", w.dir, w.debounceDur)
	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to drain.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		logging.WatchError("error closing watcher: %v", err)
	}
	logging.Watch("stopped watching %s", w.dir)
}

// IsWatching reports whether the event loop is running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// GetStats returns a copy of the activity counters.
func (w *Watcher) GetStats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	// Settled files are flushed on a fixed cadence, batching saves that
	// land close together into one handler call.
	flushTicker := time.NewTicker(100 * time.Millisecond)
	defer flushTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.WatchError("watch error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-flushTicker.C:
			w.flushSettled(ctx)
		}
	}
}

// Processable reports whether a filename is something the server can
// handle: spreadsheets for cleaning, markdown for the pipeline.
func Processable(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xls", ".csv", ".md":
		return true
	}
	return false
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !Processable(event.Name) {
		return
	}
	// Create starts the window, Write extends it while a copy is still
	// in progress. Remove/rename cancels the pending file.
	switch {
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		w.mu.Lock()
		if _, pending := w.debounceMap[event.Name]; !pending {
			w.stats.FilesSeen++
		}
		w.debounceMap[event.Name] = time.Now()
		w.stats.LastEventTime = time.Now()
		w.stats.LastEventPath = event.Name
		w.mu.Unlock()
		logging.WatchDebug("event %s %s", event.Op, event.Name)

	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.mu.Lock()
		delete(w.debounceMap, event.Name)
		w.mu.Unlock()
	}
}

func (w *Watcher) flushSettled(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, eventTime := range w.debounceMap {
		if now.Sub(eventTime) >= w.debounceDur {
			settled = append(settled, path)
			delete(w.debounceMap, path)
		}
	}
	if len(settled) > 0 {
		w.stats.BatchesHandled++
	}
	w.mu.Unlock()

	if len(settled) == 0 {
		return
	}

	logging.Watch("dispatching %d settled file(s)", len(settled))
	w.handler(ctx, settled)
}
