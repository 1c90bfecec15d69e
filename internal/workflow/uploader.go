package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cleandesk/internal/logging"
	"cleandesk/internal/session"
)

// UploadClient is the slice of the API client the uploader needs.
type UploadClient interface {
	Upload(ctx context.Context, paths []string) (string, error)
}

// Uploader transmits selected files and records the resulting session.
type Uploader struct {
	store  *session.Store
	client UploadClient
}

// NewUploader creates an uploader bound to the shared session store.
func NewUploader(store *session.Store, client UploadClient) *Uploader {
	return &Uploader{store: store, client: client}
}

// Upload sends the given files in one multipart request. Any previous
// session is cleared first, so a failed upload always leaves the
// store without a session. In bulk mode the first file's parent
// directory becomes the display-only folder name.
func (u *Uploader) Upload(ctx context.Context, paths []string, bulk bool) (string, error) {
	if len(paths) == 0 {
		return "", ErrNoFiles
	}

	u.store.ClearSession()
	u.store.SetBulkMode(bulk)

	folderName := ""
	if bulk {
		folderName = filepath.Base(filepath.Dir(paths[0]))
	}

	refs := make([]session.FileRef, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("cannot read %s: %w", path, err)
		}
		refs = append(refs, session.FileRef{
			Name:   filepath.Base(path),
			Path:   path,
			Size:   info.Size(),
			Status: session.FileUploaded,
		})
	}

	sid, err := u.client.Upload(ctx, paths)
	if err != nil {
		return "", err
	}

	u.store.BeginSession(sid, refs, folderName)
	return sid, nil
}

// ExpandFolder lists a folder's spreadsheet/markdown files for a bulk
// upload, sorted by name. Subdirectories are not descended; the server
// flattens everything into one session folder anyway.
func ExpandFolder(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read folder %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".xlsx", ".xls", ".csv", ".md":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, fmt.Errorf("no processable files in %s", dir)
	}

	logging.Upload("expanded folder %s to %d file(s)", dir, len(paths))
	return paths, nil
}
