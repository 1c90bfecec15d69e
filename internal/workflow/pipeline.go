package workflow

import (
	"context"

	"cleandesk/internal/api"
	"cleandesk/internal/logging"
	"cleandesk/internal/session"
)

// PipelineClient is the slice of the API client the pipeline
// controller needs.
type PipelineClient interface {
	RunPipeline(ctx context.Context, path string) (*api.ProcessResult, error)
	RunPipelineBulk(ctx context.Context, paths []string) ([]api.ProcessResult, error)
}

// PipelineController runs markdown files through the server-side
// markdown -> DOCX pipeline and holds the received results.
type PipelineController struct {
	batch
	client PipelineClient
}

// NewPipelineController creates a pipeline controller.
func NewPipelineController(store *session.Store, client PipelineClient) *PipelineController {
	return &PipelineController{batch: newBatch(store), client: client}
}

// Submit sends the selected files through the pipeline and blocks
// until the server responds. Two or more files always take the bulk
// endpoint, whatever the bulk-mode toggle says; a single response is
// wrapped into a one-element list for uniform downstream handling.
func (p *PipelineController) Submit(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return ErrNoFiles
	}

	p.begin()
	logging.Pipeline("submitting %d file(s) bulk=%v", len(paths), p.useBulk(len(paths)))

	var (
		results []api.ProcessResult
		err     error
	)
	if p.useBulk(len(paths)) {
		results, err = p.client.RunPipelineBulk(ctx, paths)
	} else {
		var single *api.ProcessResult
		single, err = p.client.RunPipeline(ctx, paths[0])
		if err == nil {
			results = []api.ProcessResult{*single}
		}
	}

	p.finish(results, err)
	return err
}
