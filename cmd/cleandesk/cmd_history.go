package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cleandesk/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent processing runs",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	journal, err := history.Open(historyPath())
	if err != nil {
		return fmt.Errorf("failed to open run history: %w", err)
	}
	defer journal.Close()

	entries, err := journal.Recent(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read run history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("no runs recorded yet")
		return nil
	}

	for _, e := range entries {
		what := e.Kind
		if e.Metric != "" {
			what = fmt.Sprintf("%s/%s", e.Kind, e.Metric)
			if e.SubMetric != "" {
				what += ":" + e.SubMetric
			}
		}
		line := fmt.Sprintf("%s  %-9s %-28s %2d file(s)  %s",
			e.StartedAt.Format(time.DateTime), e.Outcome, what, e.FileCount,
			time.Duration(e.DurationMs)*time.Millisecond)
		if e.Error != "" {
			line += "  " + e.Error
		}
		fmt.Println(line)
	}
	return nil
}
