package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cleandesk/internal/history"
	"cleandesk/internal/session"
	"cleandesk/internal/workflow"
)

var (
	cleanMetric string
	cleanSub    string
	cleanVendor string
	cleanRules  []string
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Run the selected cleaning on the active session",
	Long: `Runs server-side cleaning on the files of the active upload session.

The metric decides the endpoint and payload shape. PEX takes a
sub-metric (pex-bi or pex-vendor) and, for vendor analysis, a
comparison window (mom or qtd). Working Capital takes dso or overhead
as its sub-metric. Rule toggles from previous invocations persist.

Examples:
  cleandesk clean --metric sales
  cleandesk clean --metric pex --sub pex-vendor --vendor qtd
  cleandesk clean --metric working-capital --sub overhead
  cleandesk clean --metric sales --toggle removeOutliers --toggle groupUnits`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().StringVarP(&cleanMetric, "metric", "m", "", "Metric: sales, pex, oe, working-capital")
	cleanCmd.Flags().StringVar(&cleanSub, "sub", "", "Sub-metric (pex: pex-bi|pex-vendor, working-capital: dso|overhead)")
	cleanCmd.Flags().StringVar(&cleanVendor, "vendor", "", "PEX vendor comparison window: mom or qtd")
	cleanCmd.Flags().StringSliceVar(&cleanRules, "toggle", nil, "Flip a cleaning rule flag (repeatable)")
}

func runClean(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	if err := applyCleanSelection(); err != nil {
		return err
	}

	sel := store.Selection()
	if !session.IsCleaningMetric(sel.Metric) {
		return fmt.Errorf("metric %s is not a cleaning metric; use the pipeline or inference command", sel.Metric)
	}

	executor := workflow.NewExecutor(store, client)
	started := time.Now()
	runErr := executor.Run(ctx)

	outcome := history.OutcomeSuccess
	errText := ""
	switch {
	case errors.Is(runErr, workflow.ErrStaleRun):
		outcome = history.OutcomeStale
	case runErr != nil:
		outcome = history.OutcomeError
		errText = runErr.Error()
	}
	recordRun(ctx, history.Entry{
		StartedAt:  started,
		DurationMs: time.Since(started).Milliseconds(),
		Kind:       "clean",
		Metric:     string(sel.Metric),
		SubMetric:  sel.SubMetric,
		SessionID:  store.SessionID(),
		FileCount:  len(store.Files()),
		BulkMode:   store.BulkMode(),
		Outcome:    outcome,
		Error:      errText,
	})

	if saveErr := saveSession(); saveErr != nil {
		logger.Warn("failed to persist session state", zap.Error(saveErr))
	}
	if runErr != nil {
		return runErr
	}

	run := executor.Snapshot()
	for _, line := range run.Logs {
		fmt.Println(line)
	}
	fmt.Printf("\nCleaned files (%d):\n", len(run.CleanedFiles))
	for _, f := range run.CleanedFiles {
		fmt.Printf("  %s\n", f)
	}
	fmt.Printf("\nFetch them with: cleandesk download --zip\n")
	return nil
}

// applyCleanSelection maps the clean flags onto store intents.
func applyCleanSelection() error {
	if cleanMetric != "" {
		var metric session.Metric
		for _, m := range session.AllMetrics() {
			if string(m) == cleanMetric {
				metric = m
				break
			}
		}
		if metric == "" {
			return fmt.Errorf("unknown metric %q", cleanMetric)
		}
		store.SelectMetric(metric)
	}

	if cleanSub != "" {
		store.SelectSubMetric(cleanSub)
		if store.Selection().SubMetric != cleanSub {
			return fmt.Errorf("sub-metric %q is not valid for metric %s", cleanSub, store.Selection().Metric)
		}
	}

	switch cleanVendor {
	case "":
	case string(session.VendorMoM):
		store.SetVendorAnalysisType(session.VendorMoM)
	case string(session.VendorQTD):
		store.SetVendorAnalysisType(session.VendorQTD)
	default:
		return fmt.Errorf("unknown vendor analysis type %q (want mom or qtd)", cleanVendor)
	}

	for _, rule := range cleanRules {
		if err := store.ToggleRule(rule); err != nil {
			return err
		}
	}
	return nil
}

// recordRun journals a run outcome. Journaling is best-effort: a
// broken history database never fails the run itself.
func recordRun(ctx context.Context, e history.Entry) {
	journal, err := history.Open(historyPath())
	if err != nil {
		logger.Warn("run history unavailable", zap.Error(err))
		return
	}
	defer journal.Close()

	if err := journal.Record(ctx, e); err != nil {
		logger.Warn("failed to record run", zap.Error(err))
		return
	}
	if err := journal.Prune(ctx, cfg.History.MaxEntries); err != nil {
		logger.Warn("failed to prune run history", zap.Error(err))
	}
}
