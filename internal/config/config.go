// Package config provides configuration loading and structs for the suisen server and CLI.
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
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Dataset   DatasetConfig   `yaml:"dataset"`
	Storage   StorageConfig   `yaml:"storage"`
	Recommend RecommendConfig `yaml:"recommend"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatasetConfig describes the movie dataset file and the columns read from it.
type DatasetConfig struct {
	Path           string `yaml:"path"`
	TitleColumn    string `yaml:"title_column"`
	OverviewColumn string `yaml:"overview_column"`
	KeywordsColumn string `yaml:"keywords_column"`
	// Watch rebuilds the index when the dataset file changes (server mode only).
	Watch *bool `yaml:"watch"`
}

// WatchOrDefault returns whether to watch the dataset file; defaults to true when unset.
func (d *DatasetConfig) WatchOrDefault() bool {
	if d.Watch != nil {
		return *d.Watch
	}
	return true
}

// StorageConfig holds the query history database path.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// RecommendConfig holds ranking defaults.
type RecommendConfig struct {
	DefaultLimit     int     `yaml:"default_limit"`
	MaxLimit         int     `yaml:"max_limit"`
	MinScore         float64 `yaml:"min_score"`
	OverviewMaxChars int     `yaml:"overview_max_chars"`
	RecordHistory    *bool   `yaml:"record_history"`
}

// RecordHistoryOrDefault returns whether served queries are stored; defaults to true.
func (r *RecommendConfig) RecordHistoryOrDefault() bool {
	if r.RecordHistory != nil {
		return *r.RecordHistory
	}
	return true
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
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
	cfg.Dataset.Path = expandPath(cfg.Dataset.Path, configDir)

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
// other relative paths are relative to the home directory. ":memory:" is kept as-is.
func expandPath(path string, configDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
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
