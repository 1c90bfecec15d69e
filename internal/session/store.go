// Package session holds the tab-lifetime client state shared by every
// workflow: the active upload session, the metric selection, and the
// cleaning rule flags. Mutation happens only through named intents so
// the last-write-wins behavior is an explicit contract, and each
// invalidating intent bumps a generation counter that lets in-flight
// responses detect they have gone stale.
package session

import (
	"sync"

	"cleandesk/internal/logging"
)

// FileStatus is advisory UI state for an uploaded file. The server is
// the source of truth for processing outcome.
type FileStatus string

const (
	FileUploaded   FileStatus = "uploaded"
	FileProcessing FileStatus = "processing"
	FileCleaned    FileStatus = "cleaned"
	FileError      FileStatus = "error"
)

// FileRef describes one selected local file.
type FileRef struct {
	Name   string
	Path   string
	Size   int64
	Status FileStatus
}

// Generation identifies one epoch of the store. Workflows capture the
// generation when they launch a request and drop the response if the
// store has moved on.
type Generation uint64

// Store is the session state store. At most one upload session is
// active at a time; any workflow may overwrite any field through the
// intents below, last write wins.
type Store struct {
	mu sync.RWMutex

	sessionID  string
	bulkMode   bool
	folderName string
	files      []FileRef

	selection  MetricSelection
	rules      RuleSet
	vendorType VendorAnalysisType

	generation Generation
}

// NewStore creates a store with default selections.
func NewStore() *Store {
	return &Store{
		selection:  MetricSelection{Metric: MetricSales},
		rules:      DefaultRules(),
		vendorType: VendorMoM,
	}
}

// BeginSession records a server-issued session id after a successful
// upload, replacing any previous session. Prior results everywhere are
// invalidated via the generation bump.
func (s *Store) BeginSession(id string, files []FileRef, folderName string) Generation {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessionID = id
	s.folderName = folderName
	s.files = make([]FileRef, len(files))
	copy(s.files, files)
	s.generation++

	logging.Session("session started id=%s files=%d folder=%q", id, len(files), folderName)
	return s.generation
}

// ClearSession drops the active session and selected files. The vendor
// analysis type is deliberately kept: it is a workspace preference, not
// per-session state (the two call sites in the source UI disagreed;
// this is the documented policy).
func (s *Store) ClearSession() Generation {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessionID = ""
	s.folderName = ""
	s.files = nil
	s.generation++

	logging.Session("session cleared")
	return s.generation
}

// SelectMetric switches the top-level metric, resetting the sub-metric
// to the metric's first sub-option (or none). Invalidates prior results.
func (s *Store) SelectMetric(m Metric) Generation {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selection.Metric = m
	if opts := SubOptions(m); len(opts) > 0 {
		s.selection.SubMetric = opts[0]
	} else {
		s.selection.SubMetric = ""
	}
	s.generation++

	logging.SessionDebug("metric selected %s sub=%q", m, s.selection.SubMetric)
	return s.generation
}

// SelectSubMetric sets the sub-metric within the current metric.
// Unknown values for the current metric are ignored.
func (s *Store) SelectSubMetric(sub string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, opt := range SubOptions(s.selection.Metric) {
		if opt == sub {
			s.selection.SubMetric = sub
			return
		}
	}
}

// ToggleRule flips one cleaning rule flag.
func (s *Store) ToggleRule(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rules.Toggle(name)
}

// SetBulkMode switches folder-level selection on or off.
func (s *Store) SetBulkMode(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bulkMode = on
}

// SetVendorAnalysisType sets the PEX vendor comparison window.
func (s *Store) SetVendorAnalysisType(t VendorAnalysisType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vendorType = t
}

// SetFileStatus updates the advisory status of every selected file.
func (s *Store) SetFileStatus(status FileStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.files {
		s.files[i].Status = status
	}
}

// SessionID returns the active session id, empty if none.
func (s *Store) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// HasSession reports whether an upload session is active.
func (s *Store) HasSession() bool {
	return s.SessionID() != ""
}

// BulkMode reports whether folder-level selection is on.
func (s *Store) BulkMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bulkMode
}

// FolderName returns the display-only folder name from a bulk upload.
func (s *Store) FolderName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.folderName
}

// Files returns a copy of the selected file refs.
func (s *Store) Files() []FileRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]FileRef, len(s.files))
	copy(out, s.files)
	return out
}

// Selection returns the current metric selection.
func (s *Store) Selection() MetricSelection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// Rules returns a copy of the current rule flags.
func (s *Store) Rules() RuleSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rules.Clone()
}

// VendorAnalysisType returns the PEX vendor comparison window.
func (s *Store) VendorAnalysisType() VendorAnalysisType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vendorType
}

// Generation returns the current store epoch.
func (s *Store) Generation() Generation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// IsCurrent reports whether a captured generation is still live. Stale
// workflow responses use this to discard themselves instead of
// overwriting newer state.
func (s *Store) IsCurrent(g Generation) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation == g
}
