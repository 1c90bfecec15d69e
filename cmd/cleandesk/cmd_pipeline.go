package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cleandesk/internal/api"
	"cleandesk/internal/history"
	"cleandesk/internal/workflow"
)

var pipelineNoSave bool

var pipelineCmd = &cobra.Command{
	Use:   "pipeline [markdown files...]",
	Short: "Convert markdown commentary to DOCX",
	Long: `Sends markdown files through the server's markdown -> DOCX pipeline
and saves the generated documents to the downloads directory.

Two or more files are submitted as one bulk request; a per-file failure
inside a bulk run is reported but does not fail the rest.

Examples:
  cleandesk pipeline commentary.md
  cleandesk pipeline q1.md q2.md q3.md`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPipelineCmd,
}

func init() {
	pipelineCmd.Flags().BoolVar(&pipelineNoSave, "no-save", false, "Show results without saving documents")
}

func runPipelineCmd(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	controller := workflow.NewPipelineController(store, client)
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
		Kind:       "pipeline",
		FileCount:  len(args),
		BulkMode:   len(args) > 1 || store.BulkMode(),
		Outcome:    outcome,
		Error:      errText,
	})
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	results := controller.Results()
	printResults(results)

	if pipelineNoSave {
		return nil
	}
	return saveResultDocs(ctx, results)
}

// printResults renders the per-file outcome table shared by the
// pipeline and inference commands.
func printResults(results []api.ProcessResult) {
	ok := 0
	for _, res := range results {
		if res.Result.Success {
			ok++
			fmt.Printf("  ok    %s -> %s\n", res.Filename, workflow.ResultFilename(&res))
		} else {
			fmt.Printf("  FAIL  %s: %s\n", res.Filename, res.Result.Error)
		}
	}
	fmt.Printf("%d/%d file(s) succeeded\n", ok, len(results))
}

// saveResultDocs writes every successful result's document and reports
// where they went.
func saveResultDocs(ctx context.Context, results []api.ProcessResult) error {
	saved, err := workflow.SaveAllResults(ctx, results, downloadsDir())
	for _, path := range saved {
		fmt.Printf("saved %s\n", path)
	}
	if err != nil {
		logger.Warn("some documents could not be saved", zap.Error(err))
		return err
	}
	return nil
}
