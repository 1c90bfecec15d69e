package api

import (
	"context"
	"fmt"
	"net/http"

	"cleandesk/internal/logging"
)

// RunPipeline converts one markdown file to DOCX through the
// server-side pipeline. The response is a single ProcessResult.
func (c *Client) RunPipeline(ctx context.Context, path string) (*ProcessResult, error) {
	timer := logging.StartTimer(logging.CategoryPipeline, "run_pipeline")
	defer timer.Stop()

	var out ProcessResult
	if err := c.postFiles(ctx, "/run_pipeline", "file", []string{path}, nil, &out); err != nil {
		logging.PipelineError("run_pipeline %s failed: %v", path, err)
		return nil, err
	}
	return &out, nil
}

// RunPipelineBulk converts a batch of markdown files in one request.
// Per-file outcomes come back in bulk_results; a file can fail while
// the batch as a whole succeeds.
func (c *Client) RunPipelineBulk(ctx context.Context, paths []string) ([]ProcessResult, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files to process")
	}

	timer := logging.StartTimer(logging.CategoryPipeline, "run_pipeline_bulk")
	defer timer.Stop()

	var out BulkResponse
	if err := c.postFiles(ctx, "/run_pipeline/bulk", "files", paths, nil, &out); err != nil {
		logging.PipelineError("run_pipeline bulk (%d files) failed: %v", len(paths), err)
		return nil, err
	}

	logging.Pipeline("bulk pipeline returned %d result(s)", len(out.BulkResults))
	return out.BulkResults, nil
}

// Inference runs the AI text transform over one markdown file. An
// empty prompt tells the server to use its default instruction text.
func (c *Client) Inference(ctx context.Context, path, prompt string) (*ProcessResult, error) {
	timer := logging.StartTimer(logging.CategoryInference, "inference")
	defer timer.Stop()

	var out ProcessResult
	if err := c.postFiles(ctx, "/inference", "file", []string{path}, promptField(prompt), &out); err != nil {
		logging.InferenceError("inference %s failed: %v", path, err)
		return nil, err
	}
	return &out, nil
}

// InferenceBulk runs the AI text transform over a batch of files.
func (c *Client) InferenceBulk(ctx context.Context, paths []string, prompt string) ([]ProcessResult, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files to process")
	}

	timer := logging.StartTimer(logging.CategoryInference, "inference_bulk")
	defer timer.Stop()

	var out BulkResponse
	if err := c.postFiles(ctx, "/inference/bulk", "files", paths, promptField(prompt), &out); err != nil {
		logging.InferenceError("inference bulk (%d files) failed: %v", len(paths), err)
		return nil, err
	}

	logging.Inference("bulk inference returned %d result(s)", len(out.BulkResults))
	return out.BulkResults, nil
}

func promptField(prompt string) map[string]string {
	if prompt == "" {
		return nil
	}
	return map[string]string{"prompt": prompt}
}

// postFiles sends a multipart request and decodes the JSON response.
func (c *Client) postFiles(ctx context.Context, endpoint, field string, paths []string, extra map[string]string, out interface{}) error {
	body, contentType, err := multipartFromFiles(field, paths, extra)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	return c.do(req, maxResultBody, out)
}
