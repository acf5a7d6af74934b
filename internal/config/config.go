// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultMaxAssetBytes is the upload size cap applied when the config does
// not override it (5 MiB, matching the record API's documented limit).
const DefaultMaxAssetBytes = 5 << 20

// Config holds all configuration values for botsmith.
type Config struct {
	APIBaseURL      string `mapstructure:"api_base_url" yaml:"api_base_url"`
	APIToken        string `mapstructure:"api_token" yaml:"api_token"`
	AssetBaseOrigin string `mapstructure:"asset_base_origin" yaml:"asset_base_origin"`
	ChatWebhookURL  string `mapstructure:"chat_webhook_url" yaml:"chat_webhook_url"`
	DataDir         string `mapstructure:"data_dir" yaml:"data_dir"`
	LogLevel        string `mapstructure:"log_level" yaml:"log_level"`
	LogFile         string `mapstructure:"log_file" yaml:"log_file"`
	MaxAssetBytes   int64  `mapstructure:"max_asset_bytes" yaml:"max_asset_bytes"`
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("botsmith")

	// Set defaults (api_base_url has no default - it's required for syncing)
	v.SetDefault("api_token", "")
	v.SetDefault("asset_base_origin", "")
	v.SetDefault("chat_webhook_url", "")
	v.SetDefault("data_dir", ".botsmith")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("max_asset_bytes", int64(DefaultMaxAssetBytes))

	// Setup ENV binding with BOTSMITH_ prefix
	v.SetEnvPrefix("BOTSMITH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit ENV bindings for better parsing of non-string values
	for key, env := range map[string]string{
		"api_base_url":      "BOTSMITH_API_BASE_URL",
		"api_token":         "BOTSMITH_API_TOKEN",
		"asset_base_origin": "BOTSMITH_ASSET_BASE_ORIGIN",
		"chat_webhook_url":  "BOTSMITH_CHAT_WEBHOOK_URL",
		"data_dir":          "BOTSMITH_DATA_DIR",
		"log_level":         "BOTSMITH_LOG_LEVEL",
		"log_file":          "BOTSMITH_LOG_FILE",
		"max_asset_bytes":   "BOTSMITH_MAX_ASSET_BYTES",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	// Load global config first (if exists)
	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	// Merge project config on top (if exists)
	projectPath := ProjectPath()
	if fileExists(projectPath) {
		// Need to set config file explicitly for merge
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.MaxAssetBytes <= 0 {
		cfg.MaxAssetBytes = DefaultMaxAssetBytes
	}

	return &cfg, nil
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/botsmith/botsmith.yml or $XDG_CONFIG_HOME/botsmith/botsmith.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "botsmith", "botsmith.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "botsmith", "botsmith.yml")
}

// ProjectPath returns the project-local config path.
// Returns ./botsmith.yml in the current working directory.
func ProjectPath() string {
	return "botsmith.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()

	// Create parent directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return writeConfigFile(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return writeConfigFile(ProjectPath(), cfg)
}

func writeConfigFile(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
