package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"cleandesk/internal/workflow"
)

var (
	previewType     string
	previewProcType string
	previewRows     int
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview session data before or after cleaning",
	Long: `Shows a tabular preview of the active session's data as the server
sees it. --type raw previews the upload, --type cleaned the output;
--processing-type tells the server which cleaning family produced it.

Examples:
  cleandesk preview
  cleandesk preview --type cleaned --processing-type sales`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVar(&previewType, "type", "raw", "Preview source: raw or cleaned")
	previewCmd.Flags().StringVar(&previewProcType, "processing-type", "", "Cleaning family that produced the data")
	previewCmd.Flags().IntVar(&previewRows, "rows", 20, "Maximum rows to print")
}

func runPreview(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	if !store.HasSession() {
		return workflow.ErrNoSession
	}

	resp, err := client.Preview(ctx, store.SessionID(), previewType, previewProcType)
	if err != nil {
		return fmt.Errorf("preview failed: %w", err)
	}

	fmt.Printf("%s (%s), sheet %q, %d row(s)\n\n", resp.Filename, resp.PreviewType, resp.SheetName, resp.TotalRows)
	if len(resp.Data) == 0 {
		fmt.Println("no rows")
		return nil
	}

	cols := make([]string, 0, len(resp.Data[0]))
	for col := range resp.Data[0] {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	fmt.Println(strings.Join(cols, "\t"))

	limit := len(resp.Data)
	if previewRows > 0 && previewRows < limit {
		limit = previewRows
	}
	for _, row := range resp.Data[:limit] {
		cells := make([]string, len(cols))
		for i, col := range cols {
			cells[i] = fmt.Sprintf("%v", row[col])
		}
		fmt.Println(strings.Join(cells, "\t"))
	}
	if limit < len(resp.Data) {
		fmt.Printf("... %d more row(s)\n", len(resp.Data)-limit)
	}
	return nil
}
