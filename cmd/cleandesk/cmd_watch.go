package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cleandesk/internal/history"
	"cleandesk/internal/watch"
	"cleandesk/internal/workflow"
)

var watchMetric string

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a drop folder and process files as they arrive",
	Long: `Watches a folder and processes every file that lands in it:
spreadsheets are uploaded and cleaned with the configured metric,
markdown files go through the DOCX pipeline. Files that arrive close
together are batched into one run.

Runs until interrupted.

Examples:
  cleandesk watch                   # watch the configured dir (inbox)
  cleandesk watch ./drops --metric oe`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchMetric, "metric", "", "Cleaning metric for spreadsheet drops (default: current selection)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := watchDir()
	if len(args) == 1 {
		dir = args[0]
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create watch dir: %w", err)
	}

	if watchMetric != "" {
		cleanMetric = watchMetric
		if err := applyCleanSelection(); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	w, err := watch.New(dir, cfg.WatchDebounce(), handleDrop)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Stop()

	fmt.Printf("Watching %s (metric %s, debounce %s). Ctrl-C to stop.\n",
		dir, store.Selection().Metric, cfg.WatchDebounce())

	<-sigCh
	fmt.Println("\nStopping...")

	stats := w.GetStats()
	fmt.Printf("Seen %d file(s) in %d batch(es), %d error(s)\n",
		stats.FilesSeen, stats.BatchesHandled, stats.Errors)
	return nil
}

// handleDrop routes one settled batch: markdown to the pipeline,
// spreadsheets through upload + clean. A failure in one half does not
// stop the other.
func handleDrop(ctx context.Context, paths []string) {
	var sheets, docs []string
	for _, path := range paths {
		if strings.EqualFold(filepath.Ext(path), ".md") {
			docs = append(docs, path)
		} else {
			sheets = append(sheets, path)
		}
	}

	if len(docs) > 0 {
		fmt.Printf("[%s] converting %d markdown file(s)\n", time.Now().Format("15:04:05"), len(docs))
		controller := workflow.NewPipelineController(store, client)
		if err := controller.Submit(ctx, docs); err != nil {
			logger.Error("drop pipeline failed", zap.Error(err))
			fmt.Printf("  pipeline failed: %v\n", err)
		} else {
			if err := saveResultDocs(ctx, controller.Results()); err != nil {
				fmt.Printf("  some documents not saved: %v\n", err)
			}
		}
	}

	if len(sheets) > 0 {
		fmt.Printf("[%s] cleaning %d spreadsheet(s)\n", time.Now().Format("15:04:05"), len(sheets))
		if err := cleanDropped(ctx, sheets); err != nil {
			logger.Error("drop clean failed", zap.Error(err))
			fmt.Printf("  clean failed: %v\n", err)
		}
	}
}

func cleanDropped(ctx context.Context, sheets []string) error {
	uploader := workflow.NewUploader(store, client)
	if _, err := uploader.Upload(ctx, sheets, len(sheets) > 1); err != nil {
		return err
	}

	executor := workflow.NewExecutor(store, client)
	started := time.Now()
	err := executor.Run(ctx)

	outcome := history.OutcomeSuccess
	errText := ""
	if err != nil {
		outcome = history.OutcomeError
		errText = err.Error()
	}
	sel := store.Selection()
	recordRun(ctx, history.Entry{
		StartedAt:  started,
		DurationMs: time.Since(started).Milliseconds(),
		Kind:       "clean",
		Metric:     string(sel.Metric),
		SubMetric:  sel.SubMetric,
		SessionID:  store.SessionID(),
		FileCount:  len(sheets),
		BulkMode:   len(sheets) > 1,
		Outcome:    outcome,
		Error:      errText,
	})
	if err != nil {
		return err
	}

	path, err := client.DownloadZip(ctx, store.SessionID(), downloadsDir())
	if err != nil {
		return fmt.Errorf("cleaned but zip download failed: %w", err)
	}
	fmt.Printf("  saved %s\n", path)
	return nil
}
