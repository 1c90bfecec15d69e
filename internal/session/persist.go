package session

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// State is the on-disk snapshot of the store, written after every CLI
// invocation so upload, clean, and download can run as separate
// processes against the same server session.
type State struct {
	SessionID  string `yaml:"session_id"`
	BulkMode   bool   `yaml:"bulk_mode"`
	FolderName string `yaml:"folder_name,omitempty"`

	Files []FileState `yaml:"files,omitempty"`

	Metric    string `yaml:"metric"`
	SubMetric string `yaml:"sub_metric,omitempty"`

	Rules      map[string]bool `yaml:"rules"`
	VendorType string          `yaml:"vendor_analysis_type"`
}

// FileState is one file ref in the snapshot.
type FileState struct {
	Name   string `yaml:"name"`
	Path   string `yaml:"path"`
	Size   int64  `yaml:"size"`
	Status string `yaml:"status"`
}

// StatePath returns the snapshot location inside the workspace.
func StatePath(workspace string) string {
	return filepath.Join(workspace, ".cleandesk", "session.yaml")
}

// Export captures the store as a serializable snapshot.
func (s *Store) Export() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := State{
		SessionID:  s.sessionID,
		BulkMode:   s.bulkMode,
		FolderName: s.folderName,
		Metric:     string(s.selection.Metric),
		SubMetric:  s.selection.SubMetric,
		Rules:      s.rules.Clone(),
		VendorType: string(s.vendorType),
	}
	for _, f := range s.files {
		st.Files = append(st.Files, FileState{
			Name: f.Name, Path: f.Path, Size: f.Size, Status: string(f.Status),
		})
	}
	return st
}

// Restore overwrites the store from a snapshot. Unknown metric or rule
// names are dropped rather than imported; the generation is bumped so
// anything captured before the restore is stale.
func (s *Store) Restore(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessionID = st.SessionID
	s.bulkMode = st.BulkMode
	s.folderName = st.FolderName

	s.files = nil
	for _, f := range st.Files {
		s.files = append(s.files, FileRef{
			Name: f.Name, Path: f.Path, Size: f.Size, Status: FileStatus(f.Status),
		})
	}

	s.selection = MetricSelection{Metric: MetricSales}
	for _, m := range AllMetrics() {
		if string(m) == st.Metric {
			s.selection.Metric = m
			break
		}
	}
	s.selection.SubMetric = ""
	for _, opt := range SubOptions(s.selection.Metric) {
		if opt == st.SubMetric {
			s.selection.SubMetric = st.SubMetric
		}
	}
	if s.selection.SubMetric == "" {
		if opts := SubOptions(s.selection.Metric); len(opts) > 0 {
			s.selection.SubMetric = opts[0]
		}
	}

	s.rules = DefaultRules()
	for name, on := range st.Rules {
		if _, known := s.rules[name]; known {
			s.rules[name] = on
		}
	}

	s.vendorType = VendorMoM
	if st.VendorType == string(VendorQTD) {
		s.vendorType = VendorQTD
	}

	s.generation++
}

// SaveState writes the store snapshot into the workspace.
func SaveState(workspace string, store *Store) error {
	path := StatePath(workspace)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := yaml.Marshal(store.Export())
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write session state: %w", err)
	}
	return nil
}

// LoadState restores the store from the workspace snapshot. A missing
// snapshot is not an error; the store keeps its defaults.
func LoadState(workspace string, store *Store) error {
	data, err := os.ReadFile(StatePath(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read session state: %w", err)
	}

	var st State
	if err := yaml.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("failed to parse session state: %w", err)
	}
	store.Restore(st)
	return nil
}
