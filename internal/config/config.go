package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the default config file name.
const FileName = "shekelsync.yaml"

// Config represents the top-level shekelsync.yaml configuration.
type Config struct {
	Ledger  LedgerConfig  `yaml:"ledger"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Server  ServerConfig  `yaml:"server"`
	Git     GitConfig     `yaml:"git"`
}

// LedgerConfig points at the budgeting ledger API.
type LedgerConfig struct {
	BaseURL      string `yaml:"base_url"`
	BudgetID     string `yaml:"budget_id"`
	ClientID     string `yaml:"client_id,omitempty"`
	ClientSecret string `yaml:"client_secret,omitempty"`
	AccessToken  string `yaml:"access_token,omitempty"` // personal access token, no refresh
	AuthURL      string `yaml:"auth_url,omitempty"`
	TokenURL     string `yaml:"token_url,omitempty"`
	RedirectURL  string `yaml:"redirect_url,omitempty"`
	BatchSize    int    `yaml:"batch_size"`
	Cleared      string `yaml:"cleared"`
	Approved     bool   `yaml:"approved"`
}

// StorageConfig locates local state.
type StorageConfig struct {
	DBPath  string `yaml:"db_path"`
	DataDir string `yaml:"data_dir"`
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// GitConfig controls commits of the data dir after an import.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a shekelsync.yaml file from disk. Unset values keep their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new data dir.
func Default() *Config {
	return &Config{
		Ledger: LedgerConfig{
			BaseURL:   "https://api.ynab.com/v1",
			BudgetID:  "last-used",
			AuthURL:   "https://app.ynab.com/oauth/authorize",
			TokenURL:  "https://app.ynab.com/oauth/token",
			BatchSize: 100,
			Cleared:   "cleared",
		},
		Storage: StorageConfig{
			DBPath:  "shekelsync.db",
			DataDir: ".",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Git: GitConfig{
			AuthorName:  "shekelsync",
			AuthorEmail: "shekelsync@localhost",
		},
	}
}

// Validate rejects values no command can work with.
func (c *Config) Validate() error {
	if c.Ledger.BatchSize <= 0 {
		return fmt.Errorf("ledger.batch_size must be positive, got %d", c.Ledger.BatchSize)
	}
	switch c.Ledger.Cleared {
	case "cleared", "uncleared", "reconciled":
	default:
		return fmt.Errorf("ledger.cleared must be cleared, uncleared or reconciled, got %q", c.Ledger.Cleared)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	return nil
}
