package main

import (
	"fmt"

	"leaddesk/cmd/leaddesk/console"
	"leaddesk/internal/config"
	"leaddesk/internal/logging"
	"leaddesk/internal/notify"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// runInteractive opens the dashboard. It starts at "/" and waits for the
// session to resolve before showing anything.
func runInteractive(cmd *cobra.Command, args []string) error {
	queue := notify.NewQueue(0)
	a, err := openApp(cmd, queue)
	if err != nil {
		return err
	}
	defer a.Close()
	queue.SetTTL(a.cfg.GetToastDuration())

	ctx := cmd.Context()
	m := console.New(ctx, console.Options{
		Session: a.resolver,
		Leads:   a.client,
		Queue:   queue,
		Config:  a.cfg,
	})
	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	// Flag overrides stay in force across reloads.
	watcher, err := config.NewWatcher(a.cfgPath, func(c *config.Config) {
		if apiURL != "" {
			c.API.BaseURL = apiURL
		}
		prog.Send(console.ConfigReloadedMsg{Config: c})
	})
	if err != nil {
		logging.ConfigWarn("config watcher unavailable: %v", err)
	} else {
		if err := watcher.Start(ctx); err != nil {
			logging.ConfigWarn("not watching %s: %v", a.cfgPath, err)
		}
		defer watcher.Stop()
	}

	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
