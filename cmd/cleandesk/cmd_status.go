package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cleandesk/internal/history"
	"cleandesk/internal/session"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active session and current selections",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	fmt.Printf("Server:     %s\n", cfg.Server.BaseURL)
	fmt.Printf("Workspace:  %s\n", workspace)
	fmt.Printf("Downloads:  %s\n", downloadsDir())

	fmt.Println()
	if store.HasSession() {
		fmt.Printf("Session:    %s\n", store.SessionID())
		if store.FolderName() != "" {
			fmt.Printf("Folder:     %s\n", store.FolderName())
		}
		for _, f := range store.Files() {
			fmt.Printf("  %-10s %s (%d bytes)\n", f.Status, f.Name, f.Size)
		}
	} else {
		fmt.Println("Session:    none (run: cleandesk upload <files>)")
	}

	sel := store.Selection()
	fmt.Println()
	fmt.Printf("Metric:     %s", sel.Metric)
	if sel.SubMetric != "" {
		fmt.Printf(" / %s", sel.SubMetric)
	}
	fmt.Println()
	if sel.Metric == session.MetricPEX {
		fmt.Printf("Vendor:     %s\n", store.VendorAnalysisType())
	}
	fmt.Printf("Bulk mode:  %v\n", store.BulkMode())

	fmt.Println("Rules:")
	rules := store.Rules()
	for _, name := range session.RuleNames() {
		mark := "off"
		if rules[name] {
			mark = "on"
		}
		fmt.Printf("  %-3s %s\n", mark, name)
	}

	if journal, err := history.Open(historyPath()); err == nil {
		defer journal.Close()
		if n, err := journal.Count(ctx); err == nil {
			fmt.Printf("\nRuns recorded: %d\n", n)
		}
	}
	return nil
}
