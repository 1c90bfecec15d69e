package workflow

import (
	"sync"

	"cleandesk/internal/api"
	"cleandesk/internal/session"
)

// RunState is the per-run state machine shared by the pipeline and
// inference controllers: idle -> submitting -> resultsReady | failed.
type RunState string

const (
	StateIdle         RunState = "idle"
	StateSubmitting   RunState = "submitting"
	StateResultsReady RunState = "resultsReady"
	StateFailed       RunState = "failed"
)

// batch is the shared core of the pipeline and inference controllers:
// the single/bulk duality, the result list, and the detail selection.
type batch struct {
	store *session.Store

	mu       sync.Mutex
	state    RunState
	results  []api.ProcessResult
	selected int
	lastErr  error
}

func newBatch(store *session.Store) batch {
	return batch{store: store, state: StateIdle, selected: -1}
}

// useBulk decides the endpoint variant: the bulk path is taken when
// the bulk-mode toggle is on OR more than one file is selected,
// regardless of the toggle.
func (b *batch) useBulk(fileCount int) bool {
	return b.store.BulkMode() || fileCount > 1
}

// begin moves to submitting and discards prior results.
func (b *batch) begin() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateSubmitting
	b.results = nil
	b.selected = -1
	b.lastErr = nil
}

// finish records the terminal outcome. On success the first result is
// auto-selected for the detail view.
func (b *batch) finish(results []api.ProcessResult, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.state = StateFailed
		b.lastErr = err
		return
	}

	b.state = StateResultsReady
	b.results = results
	if len(results) > 0 {
		b.selected = 0
	}
}

// State returns the current run state.
func (b *batch) State() RunState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Err returns the terminal error of a failed run, nil otherwise.
func (b *batch) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

// Results returns the received result list. Results are immutable
// once received; the slice is shared, not copied.
func (b *batch) Results() []api.ProcessResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.results
}

// Select picks a result for the detail view. Out-of-range indexes are
// ignored; selection never leaves resultsReady.
func (b *batch) Select(i int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i >= 0 && i < len(b.results) {
		b.selected = i
	}
}

// Selected returns the result currently shown in the detail view,
// or nil when there is none.
func (b *batch) Selected() *api.ProcessResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.selected < 0 || b.selected >= len(b.results) {
		return nil
	}
	return &b.results[b.selected]
}

// Reset returns to idle and discards all results.
func (b *batch) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateIdle
	b.results = nil
	b.selected = -1
	b.lastErr = nil
}
