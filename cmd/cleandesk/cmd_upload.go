package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cleandesk/internal/workflow"
)

var uploadBulk bool

var uploadCmd = &cobra.Command{
	Use:   "upload [files or folder]",
	Short: "Upload files and start a processing session",
	Long: `Uploads spreadsheets or markdown files to the cleaning server and
records the returned session id for the following clean, preview, and
download commands. Any previous session is replaced.

Passing a single directory uploads its processable files (.xlsx, .xls,
.csv, .md) as a bulk session.

Examples:
  cleandesk upload sales_march.xlsx
  cleandesk upload ./actuals --bulk
  cleandesk upload a.xlsx b.xlsx c.xlsx`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVar(&uploadBulk, "bulk", false, "Treat the upload as a folder batch")
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	paths := args
	bulk := uploadBulk

	// A single directory argument implies a bulk folder upload.
	if len(args) == 1 {
		if info, err := os.Stat(args[0]); err == nil && info.IsDir() {
			expanded, err := workflow.ExpandFolder(args[0])
			if err != nil {
				return err
			}
			paths = expanded
			bulk = true
		}
	}
	if len(paths) > 1 {
		bulk = bulk || store.BulkMode()
	}

	uploader := workflow.NewUploader(store, client)
	sid, err := uploader.Upload(ctx, paths, bulk)
	if err != nil {
		// The store was already cleared; persist that so stale session
		// ids cannot leak into the next command.
		if saveErr := saveSession(); saveErr != nil {
			logger.Warn("failed to persist cleared session", zap.Error(saveErr))
		}
		return fmt.Errorf("upload failed: %w", err)
	}

	if err := saveSession(); err != nil {
		return err
	}

	logger.Info("upload complete",
		zap.String("session_id", sid),
		zap.Int("files", len(paths)),
		zap.Bool("bulk", bulk))

	fmt.Printf("Session %s started with %d file(s)\n", sid, len(paths))
	return nil
}

// commandContext returns the command's context, falling back to
// Background when a command is invoked outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
