package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// AccountConfig holds the connection settings for a single configured
// mailbox. Passwords are never stored here; they live in the system
// keyring keyed by the account address.
type AccountConfig struct {
	Address  string `mapstructure:"address" yaml:"address"`
	Name     string `mapstructure:"name" yaml:"name"`
	Provider string `mapstructure:"provider" yaml:"provider"`

	IMAPHost     string `mapstructure:"imap_host" yaml:"imap_host"`
	IMAPPort     int    `mapstructure:"imap_port" yaml:"imap_port"`
	IMAPSecurity string `mapstructure:"imap_security" yaml:"imap_security"` // "tls" or "starttls"

	SMTPHost string `mapstructure:"smtp_host" yaml:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port" yaml:"smtp_port"`

	Username string `mapstructure:"username" yaml:"username"`

	IsDefault       bool `mapstructure:"is_default" yaml:"is_default"`
	SyncIntervalSec int  `mapstructure:"sync_interval_sec" yaml:"sync_interval_sec"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	// Source selects the data source backing the store:
	// "synthetic" (default) or "imap".
	Source string `mapstructure:"source" yaml:"source"`

	// Seed drives the synthetic source; 0 means time-seeded.
	Seed int64 `mapstructure:"seed" yaml:"seed"`

	Accounts []AccountConfig `mapstructure:"accounts" yaml:"accounts"`
	Display  DisplayConfig   `mapstructure:"display" yaml:"display"`
	Log      LogConfig       `mapstructure:"log" yaml:"log"`
}

// DefaultConfigPath returns the default path for the configuration
// file, located at ~/.config/postium/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "postium", "config.yaml")
}

// DefaultLogPath returns the default log file location.
func DefaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "postium.log")
	}
	return filepath.Join(home, ".config", "postium", "logs", "postium.log")
}

// DefaultPrefsPath returns the default location of the preferences
// database used for layout persistence.
func DefaultPrefsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "prefs.db")
	}
	return filepath.Join(home, ".config", "postium", "prefs.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Source: "synthetic",
		Display: DisplayConfig{
			Theme: "default",
		},
		Log: LogConfig{
			Level: "info",
			File:  DefaultLogPath(),
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using
// Viper. If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("source", "synthetic")
	v.SetDefault("display.theme", "default")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", DefaultLogPath())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	for i := range cfg.Accounts {
		if cfg.Accounts[i].SyncIntervalSec == 0 {
			cfg.Accounts[i].SyncIntervalSec = 300
		}
		if cfg.Accounts[i].Provider == "" {
			cfg.Accounts[i].Provider = string(ProviderCustom)
		}
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("source", cfg.Source)
	v.Set("seed", cfg.Seed)
	v.Set("accounts", cfg.Accounts)
	v.Set("display", cfg.Display)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
