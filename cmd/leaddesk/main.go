package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"leaddesk/internal/notify"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string
	apiURL     string
	timeout    time.Duration
	noColor    bool

	// Logger
	logger *zap.Logger
)

// errReported marks failures whose message was already printed.
var errReported = errors.New("already reported")

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "leaddesk",
	Short: "leaddesk - terminal client for the lead manager",
	Long: `leaddesk manages your leads from the terminal.

Run without arguments to open the interactive dashboard. The subcommands
cover the same operations for scripts: sign in, list and search leads,
create, update and delete them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The dashboard owns the terminal; no zap output there.
		if cmd == cmd.Root() {
			logger = zap.NewNop()
			return nil
		}

		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runInteractive,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.leaddesk/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (overrides config and LEADDESK_API_URL)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Request timeout (default from config)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(leadsCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errReported) {
			os.Exit(1)
		}
		notify.NewPrinterTo(os.Stdout, os.Stderr, notify.ResolveColors(noColor)).Error("%s", err)
		os.Exit(1)
	}
}
