package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cleandesk/internal/workflow"
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Remove duplicate rows from the active session's files",
	Long: `Runs the standalone duplicate-removal step on the active session
without a full cleaning pass. Useful for a quick pre-check before
picking a metric.`,
	RunE: runDedupe,
}

func runDedupe(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	if !store.HasSession() {
		return workflow.ErrNoSession
	}

	resp, err := client.RemoveDuplicates(ctx, store.SessionID())
	if err != nil {
		return fmt.Errorf("duplicate removal failed: %w", err)
	}

	fmt.Println(resp.Message)
	for _, f := range resp.CleanedFiles {
		fmt.Printf("  %s\n", f)
	}
	return nil
}
