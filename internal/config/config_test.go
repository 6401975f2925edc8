package config

import (
	"strings"
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Port != "5175" || cfg.Addr() != ":5175" {
		t.Fatalf("expected port 5175, got %q", cfg.Port)
	}
	if cfg.Store != StoreMemory {
		t.Fatalf("expected memory store, got %q", cfg.Store)
	}
	if cfg.RequestTimeout != 10*time.Second || cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unexpected timeouts %v %v", cfg.RequestTimeout, cfg.ShutdownTimeout)
	}
	if cfg.GuessMaxTries != 5 || cfg.MysterySeed != 0 || cfg.OTelEndpoint != "" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.ClientOrigin != "http://localhost:5173" {
		t.Fatalf("unexpected origin %q", cfg.ClientOrigin)
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("HILO_STORE", " SQL ")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/hilo")
	t.Setenv("MYSTERY_SEED", "42")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("LOG_FORMAT", "Console")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Store != StoreSQL || cfg.DBDriver != "postgres" || cfg.MysterySeed != 42 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.RequestTimeout != 3*time.Second || cfg.LogFormat != "console" || cfg.Addr() != ":9000" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad int", map[string]string{"MYSTERY_SEED": "nope"}, "parse env:"},
		{"bad store", map[string]string{"HILO_STORE": "redis"}, "HILO_STORE"},
		{"bad driver", map[string]string{"HILO_STORE": "sql", "DB_DRIVER": "mysql"}, "DB_DRIVER"},
		{"bad format", map[string]string{"LOG_FORMAT": "xml"}, "LOG_FORMAT"},
		{"zero tries", map[string]string{"GUESS_MAX_TRIES": "0"}, "GUESS_MAX_TRIES"},
		{"zero timeout", map[string]string{"REQUEST_TIMEOUT": "0s"}, "REQUEST_TIMEOUT"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Parse()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %v", tc.want, err)
			}
		})
	}
}
