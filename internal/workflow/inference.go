package workflow

import (
	"context"

	"cleandesk/internal/api"
	"cleandesk/internal/logging"
	"cleandesk/internal/session"
)

// DefaultPrompt is the house-style instruction text sent when the user
// has not written a custom prompt. It mirrors the server's default, so
// the preview in the prompt editor matches what actually runs.
const DefaultPrompt = `Objective: Transform input financial commentary into company standards and Chicago style while strictly preserving original financial values, directional meaning, and syntactic structures (e.g., $xx(%yy vs PY)). Output only refined language.

Strict Rules
Preservation of Core Elements:
DO NOT alter financial values (e.g., $13.5M, $702k), directional changes (e.g., "increased," "decreased," "offset"), the syntax of comparisons (e.g., $xx(%yy vs PY)), or headcount/FTE figures (e.g., "118 (11% vs PY)").
DO NOT add, omit, or reinterpret data.

Tone and Style Requirements:
Professional, concise, objective language. Replace dramatic terms: "surged" -> "increased significantly", "dramatically" -> "significantly", "escalation" -> "increase", "uptick" -> "increase". Prefer active voice.
Chicago style: Oxford comma usage; percentages written as % (e.g., 21%, not "21 percent"); eliminate redundancies, informal phrases, emojis, and non-essential notes.

Structural Guidelines:
Organize into a Summary section (high-level overview) followed by a Comprehensive Analysis with sub-sections. Maintain original section order and data hierarchy. Use "vs PY" (not "VS PY" or "versus Prior Year") and "FTEs" (not "full-time equivalents").

Final Validation:
Verify zero numerical or directional changes, no informal or redundant language, and Chicago-compliant punctuation. For ambiguous cases, prioritize data preservation.`

// InferenceClient is the slice of the API client the inference
// controller needs.
type InferenceClient interface {
	Inference(ctx context.Context, path, prompt string) (*api.ProcessResult, error)
	InferenceBulk(ctx context.Context, paths []string, prompt string) ([]api.ProcessResult, error)
}

// InferenceController runs markdown commentary through the AI text
// transform with either the default or a custom prompt.
type InferenceController struct {
	batch
	client InferenceClient

	prompt       string
	customPrompt bool
}

// NewInferenceController creates an inference controller using the
// default prompt.
func NewInferenceController(store *session.Store, client InferenceClient) *InferenceController {
	return &InferenceController{batch: newBatch(store), client: client, prompt: DefaultPrompt}
}

// SetCustomPrompt replaces the default instruction text. An empty
// string restores the default.
func (c *InferenceController) SetCustomPrompt(prompt string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if prompt == "" {
		c.prompt = DefaultPrompt
		c.customPrompt = false
		return
	}
	c.prompt = prompt
	c.customPrompt = true
}

// Prompt returns the instruction text that will be sent.
func (c *InferenceController) Prompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prompt
}

// UsingCustomPrompt reports whether the user has edited the prompt.
func (c *InferenceController) UsingCustomPrompt() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.customPrompt
}

// Submit sends the selected files through inference and blocks until
// the server responds. Bulk selection rules match the pipeline
// controller: 2+ files force the bulk endpoint.
func (c *InferenceController) Submit(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return ErrNoFiles
	}

	prompt := c.Prompt()
	c.begin()
	logging.Inference("submitting %d file(s) bulk=%v custom_prompt=%v", len(paths), c.useBulk(len(paths)), c.UsingCustomPrompt())

	var (
		results []api.ProcessResult
		err     error
	)
	if c.useBulk(len(paths)) {
		results, err = c.client.InferenceBulk(ctx, paths, prompt)
	} else {
		var single *api.ProcessResult
		single, err = c.client.Inference(ctx, paths[0], prompt)
		if err == nil {
			results = []api.ProcessResult{*single}
		}
	}

	c.finish(results, err)
	return err
}
