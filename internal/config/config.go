// Package config loads process settings from TRACERY_* environment variables.
// Command-line flags override these values in cmd/tracery.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/aretw0/tracery/internal/logging"
)

// Store backends accepted by Config.Store.
const (
	StoreFile   = "file"
	StoreLoam   = "loam"
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Config is the process configuration shared by the CLI, HTTP and MCP servers.
type Config struct {
	Addr     string `env:"TRACERY_ADDR" envDefault:":8080"`
	LogLevel string `env:"TRACERY_LOG_LEVEL" envDefault:"info"`
	MaxDepth int    `env:"TRACERY_MAX_DEPTH" envDefault:"256"`

	// Store selects the grammar backend; GrammarDir feeds the file and loam stores.
	Store      string `env:"TRACERY_STORE" envDefault:"file"`
	GrammarDir string `env:"TRACERY_GRAMMAR_DIR" envDefault:"grammars"`

	RedisAddr     string `env:"TRACERY_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"TRACERY_REDIS_PASSWORD"`
	RedisDB       int    `env:"TRACERY_REDIS_DB" envDefault:"0"`
	SQLitePath    string `env:"TRACERY_SQLITE_PATH" envDefault:"tracery.db"`

	SessionTTL   time.Duration `env:"TRACERY_SESSION_TTL" envDefault:"30m"`
	MaxInputSize int           `env:"TRACERY_MAX_INPUT_SIZE" envDefault:"4096"`

	// OTelEndpoint enables OTLP/HTTP trace export when set.
	OTelEndpoint string `env:"TRACERY_OTEL_ENDPOINT"`
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreFile, StoreLoam, StoreMemory, StoreRedis, StoreSQLite:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("max depth must be positive, got %d", c.MaxDepth)
	}
	if c.MaxInputSize < 1 {
		return fmt.Errorf("max input size must be positive, got %d", c.MaxInputSize)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the parsed log level. Validate has already rejected bad values.
func (c *Config) Level() slog.Level {
	lvl, _ := logging.ParseLevel(c.LogLevel)
	return lvl
}
