package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"cleandesk/internal/history"
	"cleandesk/internal/workflow"
)

var (
	inferencePrompt     string
	inferencePromptFile string
	inferenceShowText   bool
	inferenceNoSave     bool
)

var inferenceCmd = &cobra.Command{
	Use:   "inference [markdown files...]",
	Short: "Rewrite commentary to house style via AI",
	Long: `Sends markdown commentary through the server's AI rewrite. The
default instruction preserves every financial value and comparison
while normalizing tone and style; --prompt or --prompt-file replaces it.

Examples:
  cleandesk inference commentary.md
  cleandesk inference commentary.md --show-text
  cleandesk inference *.md --prompt-file my_instructions.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInferenceCmd,
}

func init() {
	inferenceCmd.Flags().StringVar(&inferencePrompt, "prompt", "", "Custom instruction text")
	inferenceCmd.Flags().StringVar(&inferencePromptFile, "prompt-file", "", "Read the instruction text from a file")
	inferenceCmd.Flags().BoolVar(&inferenceShowText, "show-text", false, "Print each rewritten text to stdout")
	inferenceCmd.Flags().BoolVar(&inferenceNoSave, "no-save", false, "Show results without saving documents")
}

func runInferenceCmd(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	controller := workflow.NewInferenceController(store, client)
	if inferencePromptFile != "" {
		data, err := os.ReadFile(inferencePromptFile)
		if err != nil {
			return fmt.Errorf("failed to read prompt file: %w", err)
		}
		controller.SetCustomPrompt(string(data))
	} else if inferencePrompt != "" {
		controller.SetCustomPrompt(inferencePrompt)
	}

	started := time.Now()
	err := controller.Submit(ctx, args)

	outcome := history.OutcomeSuccess
	errText := ""
	if err != nil {
		outcome = history.OutcomeError
		errText = err.Error()
	}
	recordRun(ctx, history.Entry{
		StartedAt:  started,
		DurationMs: time.Since(started).Milliseconds(),
		Kind:       "inference",
		FileCount:  len(args),
		BulkMode:   len(args) > 1 || store.BulkMode(),
		Outcome:    outcome,
		Error:      errText,
	})
	if err != nil {
		return fmt.Errorf("inference failed: %w", err)
	}

	results := controller.Results()
	printResults(results)

	for _, res := range results {
		if res.Result.Stats != nil {
			s := res.Result.Stats
			fmt.Printf("  %s tokens: input=%d prompt=%d output=%d total=%d\n",
				res.Filename, s.InputTokens, s.PromptTokens, s.OutputTokens, s.TotalTokens)
		}
		if inferenceShowText && res.Result.Success {
			fmt.Printf("\n--- %s ---\n%s\n", res.Filename, res.Result.Response)
		}
	}

	if inferenceNoSave {
		return nil
	}
	return saveResultDocs(ctx, results)
}
