// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads the wardrobe configuration from a YAML file and
// command line flags.
package config

import (
	"log/slog"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/holomush/wardrobe/internal/access"
	"github.com/holomush/wardrobe/internal/space"
	"github.com/holomush/wardrobe/internal/store"
	"github.com/holomush/wardrobe/internal/validation"
)

// DatabaseURLEnv names the environment variable used when no database url
// is configured.
const DatabaseURLEnv = "DATABASE_URL"

// Access policy presets.
const (
	PolicyDefault = "default"
	PolicyOpen    = "open"
	PolicyCustom  = "custom"
)

// Config is the complete wardrobe configuration.
type Config struct {
	Log        LogConfig               `koanf:"log"`
	Database   DatabaseConfig          `koanf:"database"`
	Catalog    CatalogConfig           `koanf:"catalog"`
	Limits     validation.Limits       `koanf:"limits"`
	Randomizer space.RateLimiterConfig `koanf:"randomizer"`
	Access     AccessConfig            `koanf:"access"`
	Metrics    MetricsConfig           `koanf:"metrics"`
}

// LogConfig selects the log output.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// DatabaseConfig locates the PostgreSQL database.
type DatabaseConfig struct {
	URL   string            `koanf:"url"`
	Retry store.RetryConfig `koanf:"retry"`
}

// CatalogConfig locates the asset catalog.
type CatalogConfig struct {
	Path string `koanf:"path"`
}

// AccessConfig is the permission policy characters get until they set
// their own. Policy is only read for the custom preset.
type AccessConfig struct {
	Preset string        `koanf:"preset"`
	Policy access.Policy `koanf:"policy"`
}

// MetricsConfig enables the metrics and health endpoint of long running
// commands. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// Default returns the configuration used for keys nobody set.
func Default() Config {
	return Config{
		Log:        LogConfig{Format: "json", Level: "info"},
		Database:   DatabaseConfig{Retry: store.DefaultRetryConfig()},
		Limits:     validation.DefaultLimits(),
		Randomizer: space.RateLimiterConfig{BurstCapacity: space.DefaultBurstCapacity, SustainedRate: space.DefaultSustainedRate},
		Access:     AccessConfig{Preset: PolicyDefault},
	}
}

// Load reads path, when not empty, then applies the flags of fs that were
// set explicitly. Flag names are config keys, e.g. --log.level.
func Load(path string, fs *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
	}
	if fs != nil {
		provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return f.Name, posflag.FlagVal(fs, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv(DatabaseURLEnv)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values Load cannot type check.
func (c Config) Validate() error {
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return oops.Code("CONFIG_INVALID").With("key", "log.format").
			Errorf("log format must be 'json' or 'text', got %q", c.Log.Format)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	l := c.Limits
	if l.CharacterItems <= 0 || l.RoomItems <= 0 || l.SpaceItems <= 0 || l.StorageDepth <= 0 {
		return oops.Code("CONFIG_INVALID").With("key", "limits").With("limits", l).
			New("item limits must be positive")
	}
	if c.Randomizer.BurstCapacity < 0 || c.Randomizer.SustainedRate < 0 {
		return oops.Code("CONFIG_INVALID").With("key", "randomizer").New("randomizer limits cannot be negative")
	}
	p, err := c.Policy()
	if err != nil {
		return err
	}
	if _, err := access.NewManagerWithPolicy(p, nil); err != nil {
		return oops.Code("CONFIG_INVALID").With("key", "access.policy").Wrap(err)
	}
	return nil
}

// LogLevel parses the configured level.
func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, oops.Code("CONFIG_INVALID").With("key", "log.level").Wrap(err)
	}
	return level, nil
}

// Policy returns the access policy the preset selects.
func (c Config) Policy() (access.Policy, error) {
	switch c.Access.Preset {
	case PolicyDefault, "":
		return access.DefaultPolicy(), nil
	case PolicyOpen:
		return access.OpenPolicy(), nil
	case PolicyCustom:
		return c.Access.Policy, nil
	default:
		return access.Policy{}, oops.Code("CONFIG_INVALID").With("key", "access.preset").
			Errorf("unknown access preset %q", c.Access.Preset)
	}
}
