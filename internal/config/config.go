// Package config loads and saves the panel's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Mock   MockConfig   `yaml:"mock"`
	Notify NotifyConfig `yaml:"notify"`
}

type ServerConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token,omitempty"`
}

type MockConfig struct {
	// Enabled switches the interception layer on. The PANEL_MOCK env
	// var overrides it either way.
	Enabled      bool    `yaml:"enabled"`
	FailPercent  float64 `yaml:"fail_percent"`
	LatencyScale float64 `yaml:"latency_scale"`
	FlakyPercent float64 `yaml:"flaky_percent"`
}

type NotifyConfig struct {
	StorePath string `yaml:"store_path"`
	MaxToasts int    `yaml:"max_toasts"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{URL: "http://localhost:8480"},
		Mock: MockConfig{
			Enabled:      true,
			FailPercent:  5,
			LatencyScale: 1,
			FlakyPercent: 50,
		},
		Notify: NotifyConfig{MaxToasts: 5},
	}
}

func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".panel", "config.yaml"), nil
}

// Load reads the config at path, or the default location when path is
// empty. A missing file yields defaults, not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return nil, err
		}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if c.Server.URL == "" {
		c.Server.URL = Default().Server.URL
	}
	if c.Notify.MaxToasts <= 0 {
		c.Notify.MaxToasts = Default().Notify.MaxToasts
	}
	return c, nil
}

func Save(c *Config, path string) error {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

// MockEnabled resolves the effective mock toggle: the PANEL_MOCK env
// var wins when set ("1"/"true" or "0"/"false"), otherwise the config.
func (c *Config) MockEnabled() bool {
	switch strings.ToLower(os.Getenv("PANEL_MOCK")) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	return c.Mock.Enabled
}

// StorePath resolves the notification database location, defaulting to
// a file next to the config.
func (c *Config) StorePath() (string, error) {
	if c.Notify.StorePath != "" {
		return c.Notify.StorePath, nil
	}
	p, err := Path()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(p), "notifications.db"), nil
}
