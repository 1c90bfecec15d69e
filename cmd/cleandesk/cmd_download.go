package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cleandesk/internal/workflow"
)

var downloadZip bool

var downloadCmd = &cobra.Command{
	Use:   "download [filenames...]",
	Short: "Fetch cleaned files from the active session",
	Long: `Downloads cleaned files produced by the last clean run into the
downloads directory. With no arguments, --zip fetches everything as a
single archive.

Examples:
  cleandesk download cleaned_sales_march.xlsx
  cleandesk download --zip`,
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().BoolVar(&downloadZip, "zip", false, "Download all cleaned files as one archive")
}

func runDownload(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	if !store.HasSession() {
		return workflow.ErrNoSession
	}
	sid := store.SessionID()

	if downloadZip {
		path, err := client.DownloadZip(ctx, sid, downloadsDir())
		if err != nil {
			return fmt.Errorf("zip download failed: %w", err)
		}
		fmt.Printf("saved %s\n", path)
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("name the files to download, or use --zip for everything")
	}

	for _, name := range args {
		path, err := client.DownloadFile(ctx, sid, name, downloadsDir())
		if err != nil {
			return fmt.Errorf("download of %s failed: %w", name, err)
		}
		fmt.Printf("saved %s\n", path)
	}
	return nil
}
