package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type captureHandler struct {
	mu      sync.Mutex
	batches [][]string
	notify  chan struct{}
}

func newCaptureHandler() *captureHandler {
	return &captureHandler{notify: make(chan struct{}, 16)}
}

func (h *captureHandler) handle(ctx context.Context, paths []string) {
	h.mu.Lock()
	h.batches = append(h.batches, paths)
	h.mu.Unlock()
	h.notify <- struct{}{}
}

func (h *captureHandler) all() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, b := range h.batches {
		out = append(out, b...)
	}
	return out
}

func TestProcessable(t *testing.T) {
	cases := map[string]bool{
		"sales.xlsx":  true,
		"legacy.XLS":  true,
		"data.csv":    true,
		"notes.md":    true,
		"report.pdf":  false,
		"archive.zip": false,
		"noext":       false,
	}
	for name, want := range cases {
		if got := Processable(name); got != want {
			t.Errorf("Processable(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestWatcherDispatchesSettledFiles(t *testing.T) {
	dir := t.TempDir()
	handler := newCaptureHandler()

	w, err := New(dir, 50*time.Millisecond, handler.handle)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "drop.xlsx")
	if err := os.WriteFile(path, []byte("rows"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-handler.notify:
	case <-time.After(3 * time.Second):
		t.Fatal("handler never received the settled file")
	}

	got := handler.all()
	if len(got) != 1 || got[0] != path {
		t.Errorf("handler received %v, want [%s]", got, path)
	}

	stats := w.GetStats()
	if stats.FilesSeen == 0 || stats.BatchesHandled == 0 {
		t.Errorf("stats not updated: %+v", stats)
	}
}

func TestWatcherIgnoresUnprocessableFiles(t *testing.T) {
	dir := t.TempDir()
	handler := newCaptureHandler()

	w, err := New(dir, 30*time.Millisecond, handler.handle)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "image.png"), []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-handler.notify:
		t.Fatalf("handler received a batch for an unprocessable file: %v", handler.all())
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherStartOnMissingDir(t *testing.T) {
	handler := newCaptureHandler()
	w, err := New(filepath.Join(t.TempDir(), "missing"), 30*time.Millisecond, handler.handle)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.watcher.Close()

	if err := w.Start(context.Background()); err == nil {
		w.Stop()
		t.Fatal("Start on a missing directory should fail")
	}
	if w.IsWatching() {
		t.Error("failed Start left the watcher marked as running")
	}
}

func TestWatcherStopIsIdempotentBeforeStart(t *testing.T) {
	handler := newCaptureHandler()
	w, err := New(t.TempDir(), 30*time.Millisecond, handler.handle)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.watcher.Close()

	// Stop before Start must not block or panic.
	w.Stop()
}
