// SPDX-License-Identifier: MIT

// Package config provides configuration management for satchel.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig represents the YAML configuration structure.
type FileConfig struct {
	LogLevel string `yaml:"logLevel,omitempty"`

	Server   ServerConfig   `yaml:"server"`
	Catalog  CatalogConfig  `yaml:"catalog,omitempty"`
	Playback PlaybackConfig `yaml:"playback,omitempty"`
	Progress ProgressConfig `yaml:"progress,omitempty"`
}

// ServerConfig holds upstream catalog server settings.
type ServerConfig struct {
	BaseURL string `yaml:"baseUrl"`
	APIKey  string `yaml:"apiKey,omitempty"`
	Timeout string `yaml:"timeout,omitempty"` // e.g. "30s"
}

// CatalogConfig holds query-layer settings.
type CatalogConfig struct {
	PageSize    *int     `yaml:"pageSize,omitempty"`
	ExcludeTags []string `yaml:"excludeTags,omitempty"`
	CacheTTL    string   `yaml:"cacheTtl,omitempty"` // e.g. "10m"
}

// PlaybackConfig holds player-side settings.
type PlaybackConfig struct {
	// ForceTranscode disables direct play even for natively decodable codecs.
	ForceTranscode *bool  `yaml:"forceTranscode,omitempty"`
	Resolution     string `yaml:"resolution,omitempty"` // transcode resolution tag
}

// ProgressConfig holds bookmark store settings.
type ProgressConfig struct {
	Backend string `yaml:"backend,omitempty"` // "memory", "badger" or "sqlite"
	Path    string `yaml:"path,omitempty"`
}

// Config is the resolved runtime configuration.
type Config struct {
	LogLevel string

	BaseURL string
	APIKey  string
	Timeout time.Duration

	PageSize    int
	ExcludeTags []string
	CacheTTL    time.Duration

	ForceTranscode bool
	Resolution     string

	ProgressBackend string
	ProgressPath    string
}

const (
	defaultTimeout  = 30 * time.Second
	defaultPageSize = 40
	defaultCacheTTL = 10 * time.Minute
	defaultBackend  = "badger"
)

// Load reads and resolves configuration from the given YAML file.
// SATCHEL_API_KEY overrides the file value so the secret can stay out of the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is operator-supplied
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return Resolve(&fc)
}

// Resolve applies defaults and env overrides to a parsed FileConfig.
func Resolve(fc *FileConfig) (*Config, error) {
	cfg := &Config{
		LogLevel:        fc.LogLevel,
		BaseURL:         strings.TrimRight(fc.Server.BaseURL, "/"),
		APIKey:          fc.Server.APIKey,
		Timeout:         defaultTimeout,
		PageSize:        defaultPageSize,
		ExcludeTags:     fc.Catalog.ExcludeTags,
		CacheTTL:        defaultCacheTTL,
		Resolution:      fc.Playback.Resolution,
		ProgressBackend: fc.Progress.Backend,
		ProgressPath:    fc.Progress.Path,
	}

	if env := os.Getenv("SATCHEL_API_KEY"); env != "" {
		cfg.APIKey = env
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("config: server.baseUrl is required")
	}

	if fc.Server.Timeout != "" {
		d, err := time.ParseDuration(fc.Server.Timeout)
		if err != nil {
			return nil, fmt.Errorf("config: server.timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if fc.Catalog.PageSize != nil {
		if *fc.Catalog.PageSize <= 0 {
			return nil, fmt.Errorf("config: catalog.pageSize must be positive")
		}
		cfg.PageSize = *fc.Catalog.PageSize
	}
	if fc.Catalog.CacheTTL != "" {
		d, err := time.ParseDuration(fc.Catalog.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("config: catalog.cacheTtl: %w", err)
		}
		cfg.CacheTTL = d
	}
	if fc.Playback.ForceTranscode != nil {
		cfg.ForceTranscode = *fc.Playback.ForceTranscode
	}
	if cfg.ProgressBackend == "" {
		cfg.ProgressBackend = defaultBackend
	}
	switch cfg.ProgressBackend {
	case "memory", "badger", "sqlite":
	default:
		return nil, fmt.Errorf("config: progress.backend %q is not supported", cfg.ProgressBackend)
	}
	if cfg.ProgressBackend != "memory" && cfg.ProgressPath == "" {
		return nil, fmt.Errorf("config: progress.path is required for backend %q", cfg.ProgressBackend)
	}

	return cfg, nil
}
