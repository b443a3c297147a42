// Package config provides configuration loading and structs for the Scribe backend.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Terms   TermsConfig   `yaml:"terms"`
	Watch   WatchConfig   `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the history database, its search index,
// and the vocabulary directories.
type StorageConfig struct {
	DatabasePath        string `yaml:"database_path"`
	HistoryIndexPath    string `yaml:"history_index_path"`
	VocabularyDir       string `yaml:"vocabulary_dir"`
	SystemVocabularyDir string `yaml:"system_vocabulary_dir"`
}

// TermsConfig holds settings for the term-extraction API call.
// APIKey may be left empty; the OPENAI_API_KEY environment variable is
// used as a fallback at call time.
type TermsConfig struct {
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

// WatchConfig holds document inbox settings. When Directory is empty the
// inbox watcher is disabled.
type WatchConfig struct {
	Directory string `yaml:"directory"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.HistoryIndexPath = expandPath(cfg.Storage.HistoryIndexPath, configDir)
	cfg.Storage.VocabularyDir = expandPath(cfg.Storage.VocabularyDir, configDir)
	if cfg.Storage.SystemVocabularyDir != "" {
		cfg.Storage.SystemVocabularyDir = expandPath(cfg.Storage.SystemVocabularyDir, configDir)
	}
	if cfg.Watch.Directory != "" {
		cfg.Watch.Directory = expandPath(cfg.Watch.Directory, configDir)
	}

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
