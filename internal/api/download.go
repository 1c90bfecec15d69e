package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"cleandesk/internal/logging"
)

// DownloadFile fetches one cleaned file from a session's output and
// writes it under destDir, returning the written path. Fetch-then-save
// rather than a fire-and-forget navigation, so failures are reported.
func (c *Client) DownloadFile(ctx context.Context, sessionID, filename, destDir string) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("session id required")
	}
	if filename == "" {
		return "", fmt.Errorf("filename required")
	}

	endpoint := fmt.Sprintf("%s/download/%s/%s", c.baseURL, sessionID, url.PathEscape(filename))
	dest := filepath.Join(destDir, filepath.Base(filename))

	if err := c.fetchToFile(ctx, endpoint, dest); err != nil {
		logging.DownloadError("download %s session=%s failed: %v", filename, sessionID, err)
		return "", err
	}

	logging.Download("downloaded %s -> %s", filename, dest)
	return dest, nil
}

// DownloadZip fetches the zip of every file in a session's output.
func (c *Client) DownloadZip(ctx context.Context, sessionID, destDir string) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("session id required")
	}

	endpoint := fmt.Sprintf("%s/download/zip/%s", c.baseURL, sessionID)
	dest := filepath.Join(destDir, fmt.Sprintf("processed_data_%s.zip", sessionID))

	if err := c.fetchToFile(ctx, endpoint, dest); err != nil {
		logging.DownloadError("zip download session=%s failed: %v", sessionID, err)
		return "", err
	}

	logging.Download("downloaded session zip -> %s", dest)
	return dest, nil
}

// fetchToFile streams a GET response body to dest. A non-2xx status is
// decoded as the usual JSON error envelope.
func (c *Client) fetchToFile(ctx context.Context, endpoint, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxJSONBody))
		return decodeError(resp.StatusCode, body)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(dest)
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return nil
}
