// Package config loads worktimer settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexanderramin/worktimer/internal/engine"
	"github.com/alexanderramin/worktimer/internal/remote"
	"github.com/alexanderramin/worktimer/internal/snapshot"
	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Config holds everything main needs to wire the client and the server.
type Config struct {
	Endpoint      string        `env:"WORKTIMER_ENDPOINT" envDefault:"http://localhost:8787"`
	Addr          string        `env:"WORKTIMER_ADDR" envDefault:":8787"`
	DBPath        string        `env:"WORKTIMER_DB"`
	RemoteTimeout time.Duration `env:"WORKTIMER_REMOTE_TIMEOUT" envDefault:"10s"`
	MaxRetries    int           `env:"WORKTIMER_REMOTE_RETRIES" envDefault:"1"`

	TickInterval     time.Duration `env:"WORKTIMER_TICK_INTERVAL" envDefault:"1s"`
	SyncInterval     time.Duration `env:"WORKTIMER_SYNC_INTERVAL" envDefault:"30s"`
	AutosaveInterval time.Duration `env:"WORKTIMER_AUTOSAVE_INTERVAL" envDefault:"60s"`

	SnapshotTTL time.Duration `env:"WORKTIMER_SNAPSHOT_TTL" envDefault:"24h"`
	SnapshotKey string        `env:"WORKTIMER_SNAPSHOT_KEY" envDefault:"worktimer.session"`

	LogLevel string `env:"WORKTIMER_LOG_LEVEL" envDefault:"info"`
	LogCalls bool   `env:"WORKTIMER_LOG_CALLS" envDefault:"false"`
}

// DefaultConfig returns the settings used when no variable is set. DBPath is
// left empty and resolved against the home directory by Load.
func DefaultConfig() Config {
	rc := remote.DefaultConfig()
	return Config{
		Endpoint:         rc.Endpoint,
		Addr:             ":8787",
		RemoteTimeout:    rc.Timeout,
		MaxRetries:       rc.MaxRetries,
		TickInterval:     engine.DefaultTickInterval,
		SyncInterval:     engine.DefaultSyncInterval,
		AutosaveInterval: engine.DefaultAutosaveInterval,
		SnapshotTTL:      snapshot.DefaultTTL,
		SnapshotKey:      snapshot.DefaultKey,
		LogLevel:         "info",
	}
}

// Load reads the environment on top of the defaults and validates the result.
func Load() (Config, error) {
	cfg := DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("finding home directory: %w", err)
		}
		cfg.DBPath = filepath.Join(home, ".worktimer", "worktimer.db")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	for name, d := range map[string]time.Duration{
		"WORKTIMER_TICK_INTERVAL":     c.TickInterval,
		"WORKTIMER_SYNC_INTERVAL":     c.SyncInterval,
		"WORKTIMER_AUTOSAVE_INTERVAL": c.AutosaveInterval,
		"WORKTIMER_SNAPSHOT_TTL":      c.SnapshotTTL,
		"WORKTIMER_REMOTE_TIMEOUT":    c.RemoteTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("WORKTIMER_REMOTE_RETRIES must not be negative, got %d", c.MaxRetries)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Remote returns the client settings.
func (c Config) Remote() remote.Config {
	return remote.Config{
		Endpoint:   strings.TrimRight(c.Endpoint, "/"),
		Timeout:    c.RemoteTimeout,
		MaxRetries: c.MaxRetries,
	}
}

func (c Config) Level() (zerolog.Level, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("WORKTIMER_LOG_LEVEL: %w", err)
	}
	return lvl, nil
}
