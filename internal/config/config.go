// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

// Package config loads Parley configuration from defaults, an optional
// YAML file, environment overrides and command-line flags, in that order
// of increasing precedence.
package config

import (
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config holds the full Parley server configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Log      LogConfig      `koanf:"log"`
}

// ServerConfig configures the HTTP API and observability listeners.
type ServerConfig struct {
	ListenAddr      string        `koanf:"listen_addr"`
	MetricsAddr     string        `koanf:"metrics_addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// DatabaseConfig configures the PostgreSQL pool.
type DatabaseConfig struct {
	URL      string `koanf:"url"`
	MaxConns int32  `koanf:"max_conns"`
}

// AuthConfig configures session issuance.
type AuthConfig struct {
	SessionTTL time.Duration `koanf:"session_ttl"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// defaults are the baseline values before any file, env or flag overrides.
func defaults() map[string]any {
	return map[string]any{
		"server.listen_addr":      ":8080",
		"server.metrics_addr":     ":9100",
		"server.shutdown_timeout": 10 * time.Second,
		"server.cors_origins":     []string{"*"},
		"database.max_conns":      10,
		"auth.session_ttl":        30 * 24 * time.Hour,
		"log.format":              "json",
		"log.level":               "info",
	}
}

// Load builds a Config. path may be empty to skip file loading; a missing
// file at an explicit path is an error. flags may be nil; only flags the
// caller actually set override file values.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, oops.Code("CONFIG_DEFAULTS_FAILED").Wrap(err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").With("path", path).Wrap(err)
		}
	}

	if url := os.Getenv("PARLEY_DATABASE_URL"); url != "" {
		if err := k.Set("database.url", url); err != nil {
			return nil, oops.Code("CONFIG_ENV_FAILED").Wrap(err)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			// Only flags the caller actually set override file values.
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"listen":       "server.listen_addr",
	"metrics":      "server.metrics_addr",
	"database-url": "database.url",
	"log-format":   "log.format",
	"log-level":    "log.level",
}

// Validate checks invariants that would otherwise surface as confusing
// runtime failures.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return oops.Code("CONFIG_MISSING_DATABASE_URL").
			Errorf("database URL is required (set database.url or PARLEY_DATABASE_URL)")
	}
	if c.Database.MaxConns <= 0 {
		return oops.Code("CONFIG_INVALID_MAX_CONNS").
			With("max_conns", c.Database.MaxConns).
			Errorf("database.max_conns must be positive")
	}
	if c.Auth.SessionTTL <= 0 {
		return oops.Code("CONFIG_INVALID_SESSION_TTL").
			With("session_ttl", c.Auth.SessionTTL.String()).
			Errorf("auth.session_ttl must be positive")
	}
	if c.Server.ListenAddr == "" {
		return oops.Code("CONFIG_MISSING_LISTEN_ADDR").Errorf("server.listen_addr is required")
	}
	return nil
}
