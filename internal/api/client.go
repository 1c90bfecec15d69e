// Package api is the HTTP client for the external cleaning server.
// Every call returns either the decoded success payload or an error;
// application errors (non-2xx with an {"error": ...} body) surface the
// server's message verbatim.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cleandesk/internal/logging"
)

// Body read limits. Pipeline and inference responses embed base64 DOCX
// payloads, so they get a larger cap than the JSON-only endpoints.
const (
	maxJSONBody   = 10 * 1024 * 1024
	maxResultBody = 200 * 1024 * 1024
)

// ClientConfig configures the API client.
type ClientConfig struct {
	BaseURL string
	// Timeout bounds cleaning, pipeline, and inference calls.
	Timeout time.Duration
	// UploadTimeout bounds the multipart upload call.
	UploadTimeout time.Duration
}

// DefaultClientConfig returns sensible defaults for a local server.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL:       baseURL,
		Timeout:       10 * time.Minute,
		UploadTimeout: 2 * time.Minute,
	}
}

// Client talks to the cleaning server.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	uploadTimeout time.Duration
}

// NewClient creates a client with default timeouts.
func NewClient(baseURL string) *Client {
	return NewClientWithConfig(DefaultClientConfig(baseURL))
}

// NewClientWithConfig creates a client with custom config.
func NewClientWithConfig(cfg ClientConfig) *Client {
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		uploadTimeout: cfg.UploadTimeout,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// BaseURL returns the configured server URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Upload sends the given local files as one multipart request and
// returns the server-issued session id. A single request covers all
// files; there is no partial success from the client's perspective.
func (c *Client) Upload(ctx context.Context, paths []string) (string, error) {
	if len(paths) == 0 {
		return "", fmt.Errorf("no files to upload")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.uploadTimeout)
		defer cancel()
	}

	timer := logging.StartTimer(logging.CategoryUpload, "upload")
	defer timer.Stop()

	body, contentType, err := multipartFromFiles("files", paths, nil)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	var out UploadResponse
	if err := c.do(req, maxJSONBody, &out); err != nil {
		logging.UploadError("upload of %d file(s) failed: %v", len(paths), err)
		return "", err
	}
	if out.SessionID == "" {
		return "", fmt.Errorf("server returned no session id")
	}

	logging.Upload("uploaded %d file(s), session=%s", len(paths), out.SessionID)
	return out.SessionID, nil
}

// Clean invokes one of the clean_* endpoints for an existing session.
// The endpoint path is chosen by the caller (see workflow.EndpointFor).
func (c *Client) Clean(ctx context.Context, endpoint, sessionID string, reqBody CleanRequest) (*CleanResponse, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id required")
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s", c.baseURL, endpoint, sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out CleanResponse
	if err := c.do(req, maxJSONBody, &out); err != nil {
		logging.CleanError("%s session=%s failed: %v", endpoint, sessionID, err)
		return nil, err
	}

	logging.Clean("%s session=%s produced %d file(s)", endpoint, sessionID, len(out.CleanedFiles))
	return &out, nil
}

// RemoveDuplicates runs the server-side duplicate sweep over a
// session's output folder.
func (c *Client) RemoveDuplicates(ctx context.Context, sessionID string) (*DedupeResponse, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id required")
	}

	url := fmt.Sprintf("%s/remove_duplicates/%s", c.baseURL, sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var out DedupeResponse
	if err := c.do(req, maxJSONBody, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Preview fetches the first rows of a session's raw or cleaned data.
// previewType is "raw" or "cleaned"; processingType matches the metric.
func (c *Client) Preview(ctx context.Context, sessionID, previewType, processingType string) (*PreviewResponse, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id required")
	}

	url := fmt.Sprintf("%s/preview/%s?type=%s&processing_type=%s", c.baseURL, sessionID, previewType, processingType)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var out PreviewResponse
	if err := c.do(req, maxJSONBody, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do executes a request and decodes a JSON success payload into out.
func (c *Client) do(req *http.Request, limit int64, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// decodeError surfaces the server's error message verbatim when the
// body carries the JSON error envelope, otherwise reports the status.
func decodeError(status int, body []byte) error {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Error != "" {
			return fmt.Errorf("%s", env.Error)
		}
		if env.Message != "" {
			return fmt.Errorf("%s", env.Message)
		}
	}
	return fmt.Errorf("server returned status %d: %s", status, strings.TrimSpace(string(body)))
}

// multipartFromFiles builds a multipart body with every path appended
// under the given field name, plus optional extra form fields.
func multipartFromFiles(field string, paths []string, extra map[string]string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open %s: %w", path, err)
		}
		part, err := w.CreateFormFile(field, filepath.Base(path))
		if err != nil {
			f.Close()
			return nil, "", fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := io.Copy(part, f); err != nil {
			f.Close()
			return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		f.Close()
	}

	for key, value := range extra {
		if err := w.WriteField(key, value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", key, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
