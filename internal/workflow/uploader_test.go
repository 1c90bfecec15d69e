package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cleandesk/internal/session"
)

type fakeUploadClient struct {
	sessionID string
	err       error
	gotPaths  []string
}

func (f *fakeUploadClient) Upload(ctx context.Context, paths []string) (string, error) {
	f.gotPaths = paths
	return f.sessionID, f.err
}

func writeFiles(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("content"), 0644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
		paths = append(paths, path)
	}
	return paths
}

func TestUploadBeginsSession(t *testing.T) {
	dir := t.TempDir()
	paths := writeFiles(t, dir, "sales.xlsx")

	store := session.NewStore()
	u := NewUploader(store, &fakeUploadClient{sessionID: "sess-42"})

	sid, err := u.Upload(context.Background(), paths, false)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if sid != "sess-42" || store.SessionID() != "sess-42" {
		t.Errorf("session id = %q / store %q, want sess-42", sid, store.SessionID())
	}

	files := store.Files()
	if len(files) != 1 || files[0].Name != "sales.xlsx" || files[0].Status != session.FileUploaded {
		t.Errorf("file refs = %+v", files)
	}
	if store.FolderName() != "" {
		t.Errorf("folder name = %q, want empty for non-bulk upload", store.FolderName())
	}
}

func TestFailedUploadLeavesNoSession(t *testing.T) {
	dir := t.TempDir()
	paths := writeFiles(t, dir, "sales.xlsx")

	store := session.NewStore()
	store.BeginSession("old-session", nil, "")

	u := NewUploader(store, &fakeUploadClient{err: errors.New("Invalid file type")})
	if _, err := u.Upload(context.Background(), paths, false); err == nil {
		t.Fatal("Upload should have failed")
	}

	if store.HasSession() {
		t.Errorf("session id = %q after failed upload, want none", store.SessionID())
	}
}

func TestBulkUploadRecordsFolderName(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "march-actuals")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatal(err)
	}
	paths := writeFiles(t, dir, "a.xlsx", "b.xlsx")

	store := session.NewStore()
	u := NewUploader(store, &fakeUploadClient{sessionID: "sess-7"})

	if _, err := u.Upload(context.Background(), paths, true); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if store.FolderName() != "march-actuals" {
		t.Errorf("folder name = %q, want march-actuals", store.FolderName())
	}
	if !store.BulkMode() {
		t.Error("bulk mode not set by bulk upload")
	}
}

func TestUploadMissingFile(t *testing.T) {
	store := session.NewStore()
	u := NewUploader(store, &fakeUploadClient{sessionID: "sess-1"})

	if _, err := u.Upload(context.Background(), []string{"/nonexistent/file.xlsx"}, false); err == nil {
		t.Fatal("Upload of a missing file should fail before any network call")
	}
	if store.HasSession() {
		t.Error("failed upload left a session behind")
	}
}

func TestExpandFolderFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b.xlsx", "a.csv", "notes.md", "skip.pdf", "legacy.XLS")
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0755); err != nil {
		t.Fatal(err)
	}

	paths, err := ExpandFolder(dir)
	if err != nil {
		t.Fatalf("ExpandFolder failed: %v", err)
	}

	want := []string{
		filepath.Join(dir, "a.csv"),
		filepath.Join(dir, "b.xlsx"),
		filepath.Join(dir, "legacy.XLS"),
		filepath.Join(dir, "notes.md"),
	}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %s, want %s", i, paths[i], want[i])
		}
	}
}

func TestExpandFolderEmpty(t *testing.T) {
	if _, err := ExpandFolder(t.TempDir()); err == nil {
		t.Fatal("ExpandFolder on an empty dir should fail")
	}
}
