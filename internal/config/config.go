package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from the environment, after merging in a .env file if one exists.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, reading from environment variables")
	}
	return Parse()
}

// Parse reads configuration from the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.LockTimeout <= 0 {
		return Config{}, fmt.Errorf("invalid configuration: LOCK_TIMEOUT must be positive, got %s", cfg.LockTimeout)
	}
	if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: LOG_LEVEL: %w", err)
	}
	return cfg, nil
}

// Level returns the parsed log level.
func (c Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Remote reports whether the Turso primary is used instead of a local SQLite file.
func (c Config) Remote() bool {
	return c.Turso.PrimaryURL != ""
}
