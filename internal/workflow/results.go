package workflow

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"cleandesk/internal/api"
	"cleandesk/internal/logging"
)

// saveConcurrency bounds parallel writes during SaveAllResults.
const saveConcurrency = 4

// ResultFilename returns the name a result's document is saved under:
// the server-provided name, or processed_<base>.docx derived from the
// input filename.
func ResultFilename(res *api.ProcessResult) string {
	if res.Result.DocxFilename != "" {
		return res.Result.DocxFilename
	}
	base := strings.TrimSuffix(res.Filename, filepath.Ext(res.Filename))
	return fmt.Sprintf("processed_%s.docx", base)
}

// SaveResult decodes a result's base64 document payload and writes it
// under destDir, returning the written path. A malformed payload is a
// local error for this result only.
func SaveResult(res *api.ProcessResult, destDir string) (string, error) {
	if !res.Result.Success {
		return "", fmt.Errorf("result for %s was not successful: %s", res.Filename, res.Result.Error)
	}
	if res.Result.DocxBase64 == "" {
		return "", fmt.Errorf("result for %s has no document payload", res.Filename)
	}

	data, err := base64.StdEncoding.DecodeString(res.Result.DocxBase64)
	if err != nil {
		return "", fmt.Errorf("failed to decode document for %s: %w", res.Filename, err)
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	dest := filepath.Join(destDir, ResultFilename(res))
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", dest, err)
	}

	logging.Download("saved result document %s", dest)
	return dest, nil
}

// SaveAllResults saves every successful result's document, silently
// skipping entries whose result.success is false. Decode failures do
// not stop the rest of the batch; the first one is reported after all
// saves finish.
func SaveAllResults(ctx context.Context, results []api.ProcessResult, destDir string) ([]string, error) {
	var (
		mu    sync.Mutex
		saved []string
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(saveConcurrency)

	var firstErr error
	for i := range results {
		res := &results[i]
		if !res.Result.Success {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path, err := SaveResult(res, destDir)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return nil // keep saving the rest of the batch
			}
			saved = append(saved, path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return saved, err
	}
	return saved, firstErr
}
