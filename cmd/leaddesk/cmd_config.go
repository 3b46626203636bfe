package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"leaddesk/cmd/leaddesk/ui"
	"leaddesk/internal/config"

	"github.com/spf13/cobra"
)

// configCmd inspects and creates the config file
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the leaddesk config file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Prints the configuration after the config file, LEADDESK_* environment
variables and command-line flags have been applied.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), resolvedConfigPath())
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configInitForce bool

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	t := ui.NewSettingsTable(resolvedConfigPath())
	t.Add("api.base_url", cfg.API.BaseURL)
	t.Add("api.timeout", cfg.GetAPITimeout().String())
	t.Add("api.requests_per_second", strconv.FormatFloat(cfg.API.RequestsPerSecond, 'f', -1, 64))
	t.Add("api.burst", strconv.Itoa(cfg.API.Burst))
	t.Add("api.user_agent", cfg.API.UserAgent)
	t.Add("storage.path", cfg.Storage.Path)
	t.Add("dashboard.page_size", strconv.Itoa(cfg.GetPageSize()))
	t.Add("dashboard.toast_duration", cfg.GetToastDuration().String())
	t.Add("ui.theme", cfg.UI.Theme)
	t.Add("logging.level", cfg.Logging.Level)
	t.Add("logging.format", cfg.Logging.Format)
	t.Add("logging.debug_mode", strconv.FormatBool(cfg.Logging.DebugMode))

	cats := make([]string, 0, len(cfg.Logging.Categories))
	for c := range cfg.Logging.Categories {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		t.Add("logging.categories."+c, strconv.FormatBool(cfg.Logging.Categories[c]))
	}

	fmt.Fprint(cmd.OutOrStdout(), t.View(ui.NewStyles(ui.ThemeFor(cfg.UI.Theme)), 0))
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := resolvedConfigPath()
	p := newPrinter(cmd)

	if _, err := os.Stat(path); err == nil && !configInitForce {
		p.Warning("%s already exists (use --force to overwrite)", path)
		return nil
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	p.Success("Wrote %s", path)
	return nil
}
