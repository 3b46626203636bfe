package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultAPIBaseURL is the hosted lead API the dashboard was built against.
const DefaultAPIBaseURL = "https://eron-back.onrender.com"

// Config holds all leaddesk configuration.
type Config struct {
	// Remote lead API
	API APIConfig `yaml:"api"`

	// Local persisted state (token + cookies)
	Storage StorageConfig `yaml:"storage"`

	// Lead list behaviour
	Dashboard DashboardConfig `yaml:"dashboard"`

	// Terminal presentation
	UI UIConfig `yaml:"ui"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig configures the HTTP client.
type APIConfig struct {
	BaseURL           string  `yaml:"base_url"`
	Timeout           string  `yaml:"timeout"`
	RequestsPerSecond float64 `yaml:"requests_per_second"` // 0 disables client-side limiting
	Burst             int     `yaml:"burst"`
	UserAgent         string  `yaml:"user_agent"`
}

// StorageConfig configures the local sqlite store.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// DashboardConfig configures the lead list.
type DashboardConfig struct {
	PageSize      int    `yaml:"page_size"`
	ToastDuration string `yaml:"toast_duration"`
}

// UIConfig configures the console.
type UIConfig struct {
	Theme string `yaml:"theme"` // auto, light, dark
}

// ValidThemes lists the accepted ui.theme values.
var ValidThemes = []string{"auto", "light", "dark"}

// DefaultHomeDir returns ~/.leaddesk, falling back to a relative directory.
func DefaultHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".leaddesk"
	}
	return filepath.Join(home, ".leaddesk")
}

// DefaultConfigPath returns the default path to config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(DefaultHomeDir(), "config.yaml")
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           DefaultAPIBaseURL,
			Timeout:           "30s",
			RequestsPerSecond: 5,
			Burst:             5,
			UserAgent:         "leaddesk/1.0",
		},
		Storage: StorageConfig{
			Path: filepath.Join(DefaultHomeDir(), "leaddesk.db"),
		},
		Dashboard: DashboardConfig{
			PageSize:      20,
			ToastDuration: "3s",
		},
		UI: UIConfig{
			Theme: "auto",
		},
		Logging: LoggingConfig{
			Level:     "info",
			Format:    "text",
			DebugMode: false,
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Defaults still honour the environment
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if u := os.Getenv("LEADDESK_API_URL"); u != "" {
		c.API.BaseURL = u
	}
	if p := os.Getenv("LEADDESK_DB"); p != "" {
		c.Storage.Path = p
	}
	if s := os.Getenv("LEADDESK_PAGE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			c.Dashboard.PageSize = n
		}
	}
	if t := os.Getenv("LEADDESK_THEME"); t != "" {
		c.UI.Theme = t
	}
	if d := os.Getenv("LEADDESK_DEBUG"); d != "" {
		c.Logging.DebugMode = d == "1" || strings.EqualFold(d, "true")
	}
}

// GetAPITimeout returns the HTTP timeout as a duration.
func (c *Config) GetAPITimeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// GetToastDuration returns how long notifications stay visible.
func (c *Config) GetToastDuration() time.Duration {
	d, err := time.ParseDuration(c.Dashboard.ToastDuration)
	if err != nil || d <= 0 {
		return 3 * time.Second
	}
	return d
}

// GetPageSize returns the lead page size, defaulting to 20.
func (c *Config) GetPageSize() int {
	if c.Dashboard.PageSize <= 0 {
		return 20
	}
	return c.Dashboard.PageSize
}

// LogsDir returns the directory for category log files, next to the store.
func (c *Config) LogsDir() string {
	return filepath.Join(filepath.Dir(c.Storage.Path), "logs")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url not configured (set LEADDESK_API_URL or --api-url)")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api.base_url: %q", c.API.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api.base_url scheme %q (want http or https)", u.Scheme)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path not configured")
	}
	if c.API.RequestsPerSecond < 0 {
		return fmt.Errorf("api.requests_per_second must be >= 0")
	}

	validTheme := false
	for _, t := range ValidThemes {
		if c.UI.Theme == t {
			validTheme = true
			break
		}
	}
	if !validTheme {
		return fmt.Errorf("invalid ui.theme: %s (valid: %v)", c.UI.Theme, ValidThemes)
	}

	return nil
}
