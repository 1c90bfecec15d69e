package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.BaseURL != "http://localhost:8080" {
		t.Errorf("expected default base URL, got %q", cfg.Server.BaseURL)
	}
	if cfg.ServerTimeout() != 10*time.Minute {
		t.Errorf("expected 10m timeout, got %v", cfg.ServerTimeout())
	}
}

func TestLoad_ReadsYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".cleandesk"), 0755); err != nil {
		t.Fatal(err)
	}
	data := []byte("server:\n  base_url: http://cleaner.internal:9000\n  timeout: 3m\n")
	if err := os.WriteFile(ConfigPath(dir), data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.BaseURL != "http://cleaner.internal:9000" {
		t.Errorf("base URL not read from file: %q", cfg.Server.BaseURL)
	}
	if cfg.ServerTimeout() != 3*time.Minute {
		t.Errorf("timeout not read from file: %v", cfg.ServerTimeout())
	}
	// Fields absent from the file keep their defaults.
	if cfg.Downloads.Dir != "downloads" {
		t.Errorf("expected default download dir, got %q", cfg.Downloads.Dir)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".cleandesk"), 0755); err != nil {
		t.Fatal(err)
	}
	data := []byte("server:\n  base_url: http://cleaner.internal:9000\n")
	if err := os.WriteFile(ConfigPath(dir), data, 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CLEANDESK_SERVER_URL", "http://override:8081")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.BaseURL != "http://override:8081" {
		t.Errorf("env override not applied: %q", cfg.Server.BaseURL)
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.BaseURL = "cleaner.internal"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for URL without scheme")
	}

	cfg = DefaultConfig()
	cfg.Server.Timeout = "banana"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Server.BaseURL = "http://cleaner.internal:9000"
	cfg.Watch.Debounce = "500ms"

	if err := cfg.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Server.BaseURL != cfg.Server.BaseURL {
		t.Errorf("base URL mismatch after round trip: %q", loaded.Server.BaseURL)
	}
	if loaded.WatchDebounce() != 500*time.Millisecond {
		t.Errorf("debounce mismatch after round trip: %v", loaded.WatchDebounce())
	}
}
