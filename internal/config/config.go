// internal/config/config.go
//
// Process configuration read from the environment (and an optional .env).
// Every setting has a default so the server starts with no setup: an
// in-memory store on port 5175.

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store kinds selectable with HILO_STORE.
const (
	StoreMemory = "memory"
	StoreSQL    = "sql"
	StoreBolt   = "bolt"
)

// Config holds every setting of the hilo server.
type Config struct {
	Port         string `env:"PORT" envDefault:"5175"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat    string `env:"LOG_FORMAT" envDefault:"json"`
	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`

	Store       string `env:"HILO_STORE" envDefault:"memory"`
	DBDriver    string `env:"DB_DRIVER" envDefault:"sqlite3"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"./data/hilo.db"`
	BoltPath    string `env:"BOLT_PATH" envDefault:"./data/hilo.bolt"`

	// MysterySeed fixes the random source; 0 seeds from the OS.
	MysterySeed     uint64        `env:"MYSTERY_SEED" envDefault:"0"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	GuessMaxTries   uint          `env:"GUESS_MAX_TRIES" envDefault:"5"`
	OTelEndpoint    string        `env:"OTEL_ENDPOINT"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads .env when present, then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreBolt:
	case StoreSQL:
		switch c.DBDriver {
		case "sqlite3", "sqlite", "postgres":
		default:
			return fmt.Errorf("DB_DRIVER %q: want sqlite3, sqlite or postgres", c.DBDriver)
		}
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the sql store")
		}
	default:
		return fmt.Errorf("HILO_STORE %q: want memory, sql or bolt", c.Store)
	}
	if c.Store == StoreBolt && c.BoltPath == "" {
		return errors.New("BOLT_PATH is required for the bolt store")
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT %q: want json or console", c.LogFormat)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	if c.GuessMaxTries == 0 {
		return errors.New("GUESS_MAX_TRIES must be at least 1")
	}
	return nil
}

// Addr is the listen address.
func (c Config) Addr() string { return ":" + c.Port }
