// Package config loads the hiernet configuration file.
//
// The file lives at $XDG_CONFIG_HOME/hiernet/config.toml (~/.config/hiernet
// when XDG_CONFIG_HOME is unset). A missing file yields [Default]; command
// line flags override individual values after loading.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/hiernet/pkg/errors"
	"github.com/matzehuels/hiernet/pkg/store"
)

const appName = "hiernet"

// Config holds hiernet configuration.
type Config struct {
	Log     LogConfig     `toml:"log"`
	Store   store.Config  `toml:"store"`
	Session SessionConfig `toml:"session"`
	Server  ServerConfig  `toml:"server"`
	Render  RenderConfig  `toml:"render"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"` // "debug", "info", "warn", "error"
}

// SessionConfig controls the CLI editing session.
type SessionConfig struct {
	Dir string `toml:"dir"` // empty uses ~/.config/hiernet/sessions
	TTL string `toml:"ttl"` // Go duration, e.g. "168h"
}

// ServerConfig controls `hiernet serve`.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// RenderConfig holds render defaults.
type RenderConfig struct {
	Format   string  `toml:"format"` // "svg", "dot", "pdf", "png"
	Expand   bool    `toml:"expand"`
	Detailed bool    `toml:"detailed"`
	Scale    float64 `toml:"scale"`
	NoCache  bool    `toml:"no_cache"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Log:     LogConfig{Level: "info"},
		Store:   store.Config{Backend: store.BackendFile},
		Session: SessionConfig{TTL: "168h"},
		Server:  ServerConfig{Addr: "localhost:8080", AllowedOrigins: []string{"*"}},
		Render:  RenderConfig{Format: "svg", Scale: 2},
	}
}

// Dir returns the hiernet config directory path.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName)
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file at path, or at [Path] when path is empty.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	return cfg, nil
}

// Save writes cfg to path, or to [Path] when path is empty.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create config dir")
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create config %s", path)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write config %s", path)
	}
	return nil
}
