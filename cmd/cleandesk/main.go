package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"cleandesk/cmd/cleandesk/ui"
	"cleandesk/internal/api"
	"cleandesk/internal/config"
	"cleandesk/internal/logging"
	"cleandesk/internal/session"
)

var (
	// Global flags
	verbose   bool
	workspace string
	serverURL string
	timeout   time.Duration

	// Wired in PersistentPreRunE, shared by every command.
	cfg    *config.Config
	store  *session.Store
	client *api.Client
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cleandesk",
	Short: "cleandesk - financial data cleaning workbench",
	Long: `cleandesk is a terminal client for the financial data cleaning server.

Upload spreadsheets or markdown commentary, pick a metric (Sales, PEX,
OE, Working Capital), toggle cleaning rules, and run the server-side
processing. Markdown files can also go through the DOCX pipeline or the
AI house-style rewrite.

Run without arguments to start the interactive dashboard.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setup(); err != nil {
			return err
		}

		// The dashboard renders its own status line; plain commands get
		// a structured logger for their diagnostics.
		if cmd.CalledAs() != "cleandesk" {
			zcfg := zap.NewProductionConfig()
			if verbose {
				zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = zcfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return ui.Run(ui.Deps{
			Config: cfg,
			Store:  store,
			Client: client,
		})
	},
}

// setup loads config, initializes category logging, and wires the
// shared session store and API client.
func setup() error {
	if workspace == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to determine workspace: %w", err)
		}
		workspace = wd
	}

	var err error
	cfg, err = config.Load(workspace)
	if err != nil {
		return err
	}
	if serverURL != "" {
		cfg.Server.BaseURL = serverURL
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logging.Initialize(workspace); err != nil {
		// File logging is best-effort; the commands still work.
		fmt.Fprintf(os.Stderr, "warning: file logging disabled: %v\n", err)
	}

	store = session.NewStore()
	if err := session.LoadState(workspace, store); err != nil {
		return err
	}

	clientCfg := api.DefaultClientConfig(cfg.Server.BaseURL)
	clientCfg.Timeout = cfg.ServerTimeout()
	clientCfg.UploadTimeout = cfg.UploadTimeout()
	if timeout > 0 {
		clientCfg.Timeout = timeout
	}
	client = api.NewClientWithConfig(clientCfg)

	return nil
}

// saveSession persists the store snapshot for the next invocation.
func saveSession() error {
	return session.SaveState(workspace, store)
}

// resolvePath anchors a config-relative path at the workspace.
func resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(workspace, path)
}

func historyPath() string  { return resolvePath(cfg.History.DatabasePath) }
func downloadsDir() string { return resolvePath(cfg.Downloads.Dir) }
func watchDir() string     { return resolvePath(cfg.Watch.Dir) }

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Cleaning server base URL (overrides config)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Request timeout (overrides config)")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(pipelineCmd)
	rootCmd.AddCommand(inferenceCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(dedupeCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
