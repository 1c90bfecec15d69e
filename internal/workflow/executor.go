package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cleandesk/internal/api"
	"cleandesk/internal/logging"
	"cleandesk/internal/session"
)

// CleanClient is the slice of the API client the executor needs.
type CleanClient interface {
	Clean(ctx context.Context, endpoint, sessionID string, req api.CleanRequest) (*api.CleanResponse, error)
}

// ProcessingRun is the transient state of one cleaning run. Reset at
// the start of every run; CleanedFiles is populated only from a
// successful terminal response, never incrementally.
type ProcessingRun struct {
	ProgressPercent int
	CleanedFiles    []string
	Logs            []string
}

// Executor drives a cleaning run: endpoint selection, request
// construction, synthetic progress, terminal result handling.
type Executor struct {
	store  *session.Store
	client CleanClient

	// Synthetic progress tuning. The bar is cosmetic: it advances on a
	// timer, holds below the cap until the server responds, and only
	// reaches 100 on success.
	ProgressStep     int
	ProgressInterval time.Duration
	ProgressCap      int

	mu  sync.Mutex
	run ProcessingRun
}

// NewExecutor creates an executor bound to the shared session store.
func NewExecutor(store *session.Store, client CleanClient) *Executor {
	return &Executor{
		store:            store,
		client:           client,
		ProgressStep:     7,
		ProgressInterval: 400 * time.Millisecond,
		ProgressCap:      95,
	}
}

// Snapshot returns a copy of the current run state for rendering.
func (e *Executor) Snapshot() ProcessingRun {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := ProcessingRun{
		ProgressPercent: e.run.ProgressPercent,
		CleanedFiles:    make([]string, len(e.run.CleanedFiles)),
		Logs:            make([]string, len(e.run.Logs)),
	}
	copy(out.CleanedFiles, e.run.CleanedFiles)
	copy(out.Logs, e.run.Logs)
	return out
}

// Run executes one cleaning run and blocks until the server responds.
// Preconditions (active session, metric with an endpoint) are checked
// before any network call. On failure the progress bar freezes where
// it was; it is not reset.
func (e *Executor) Run(ctx context.Context) error {
	sessionID := e.store.SessionID()
	if sessionID == "" {
		return ErrNoSession
	}

	sel := e.store.Selection()
	endpoint, err := EndpointFor(sel)
	if err != nil {
		return err
	}

	gen := e.store.Generation()
	req := BuildCleanRequest(e.store)

	e.mu.Lock()
	e.run = ProcessingRun{
		Logs: []string{fmt.Sprintf("Starting %s run for session %s", sel.Metric, sessionID)},
	}
	e.mu.Unlock()

	e.store.SetFileStatus(session.FileProcessing)
	logging.Clean("run started metric=%s endpoint=%s session=%s", sel.Metric, endpoint, sessionID)

	// Synthetic progress ticker. Stopped on both success and failure
	// paths so it cannot keep ticking after the run has ended.
	done := make(chan struct{})
	var tickerWG sync.WaitGroup
	tickerWG.Add(1)
	go func() {
		defer tickerWG.Done()
		ticker := time.NewTicker(e.ProgressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				e.mu.Lock()
				if e.run.ProgressPercent+e.ProgressStep < e.ProgressCap {
					e.run.ProgressPercent += e.ProgressStep
				} else {
					e.run.ProgressPercent = e.ProgressCap
				}
				e.mu.Unlock()
			}
		}
	}()

	resp, err := e.client.Clean(ctx, endpoint, sessionID, req)
	close(done)
	tickerWG.Wait()

	// A new upload or metric switch while the request was in flight
	// makes this response stale: drop it rather than overwrite state.
	if !e.store.IsCurrent(gen) {
		logging.Clean("run discarded as stale session=%s", sessionID)
		return ErrStaleRun
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		e.run.Logs = append(e.run.Logs, fmt.Sprintf("Error: %v", err))
		e.store.SetFileStatus(session.FileError)
		return err
	}

	e.run.ProgressPercent = 100
	e.run.CleanedFiles = append([]string(nil), resp.CleanedFiles...)
	if resp.Logs != "" {
		e.run.Logs = append(e.run.Logs, resp.Logs)
	}
	e.run.Logs = append(e.run.Logs, fmt.Sprintf("Cleaning complete: %d file(s) produced", len(resp.CleanedFiles)))
	e.store.SetFileStatus(session.FileCleaned)

	return nil
}
