package main

import (
	"context"
	"fmt"

	"leaddesk/internal/api"
	"leaddesk/internal/config"
	"leaddesk/internal/logging"
	"leaddesk/internal/notify"
	"leaddesk/internal/route"
	"leaddesk/internal/session"
	"leaddesk/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app is everything a command needs, built from config and flags.
type app struct {
	cfgPath  string
	cfg      *config.Config
	store    *store.LocalStore
	client   *api.Client
	resolver *session.Resolver
	printer  *notify.Printer
}

func resolvedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

// loadConfig reads the config file and applies the global flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(resolvedConfigPath())
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	if timeout > 0 {
		cfg.API.Timeout = timeout.String()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newPrinter(cmd *cobra.Command) *notify.Printer {
	return notify.NewPrinterTo(cmd.OutOrStdout(), cmd.ErrOrStderr(), notify.ResolveColors(noColor))
}

// openApp wires config, logging, the local store, the API client and the
// session resolver. n receives session notices; nil prints them.
func openApp(cmd *cobra.Command, n notify.Notifier) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	if err := logging.Initialize(cfg.LogsDir(), cfg.Logging.Settings()); err != nil {
		logger.Warn("logging disabled", zap.Error(err))
	}
	logging.Boot("leaddesk %s against %s", cmd.CommandPath(), cfg.API.BaseURL)

	st, err := store.NewLocalStore(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	client := api.NewClient(api.Config{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.GetAPITimeout(),
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Burst:             cfg.API.Burst,
		UserAgent:         cfg.API.UserAgent,
	}, st, st)

	p := newPrinter(cmd)
	if n == nil {
		n = p
	}

	logger.Debug("app opened",
		zap.String("config", resolvedConfigPath()),
		zap.String("api", cfg.API.BaseURL),
		zap.String("store", st.Path()),
	)

	return &app{
		cfgPath:  resolvedConfigPath(),
		cfg:      cfg,
		store:    st,
		client:   client,
		resolver: session.NewResolver(client, st, n),
		printer:  p,
	}, nil
}

func (a *app) Close() {
	a.client.Close()
	if err := a.store.Close(); err != nil {
		logger.Warn("closing store", zap.Error(err))
	}
	logging.CloseAll()
}

// requireSession resolves the session and applies the protected-route
// guard used by the dashboard.
func (a *app) requireSession(ctx context.Context) (session.State, error) {
	st := a.resolver.Resolve(ctx)
	if d := route.Protected(st); d.Action != route.Render {
		a.printer.Error("not signed in. Run 'leaddesk login' first.")
		return st, errReported
	}
	return st, nil
}
