// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Config holds process-wide settings. CLI flags override these values.
type Config struct {
	DBPath   string     `env:"RITUALS_DB_PATH"`
	LogLevel slog.Level `env:"RITUALS_LOG_LEVEL" envDefault:"info"`
	Lang     string     `env:"RITUALS_LANG"      envDefault:"en"`
}

// Load parses the environment. An unset RITUALS_DB_PATH resolves to
// ~/.rituals/rituals.db.
func Load() (Config, error) {
	cfg, err := Parse()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.ResolveDBPath(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse reads the environment without resolving defaults that need the
// filesystem. Callers that override DBPath use it instead of Load.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// ResolveDBPath fills an empty DBPath with DefaultDBPath.
func (c *Config) ResolveDBPath() error {
	if c.DBPath != "" {
		return nil
	}
	path, err := DefaultDBPath()
	if err != nil {
		return err
	}
	c.DBPath = path
	return nil
}

// DefaultDBPath returns ~/.rituals/rituals.db.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".rituals", "rituals.db"), nil
}

// EnsureDataDir creates the directory holding the database file.
func (c Config) EnsureDataDir() error {
	dir := filepath.Dir(c.DBPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory %s: %w", dir, err)
	}
	return nil
}
