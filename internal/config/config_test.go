// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/wardrobe/internal/access"
	"github.com/holomush/wardrobe/internal/config"
	"github.com/holomush/wardrobe/pkg/errutil"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wardrobe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("log.level", "info", "")
	fs.String("log.format", "json", "")
	fs.String("catalog.path", "", "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(config.DatabaseURLEnv, "")

	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, 100, cfg.Limits.CharacterItems)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
log:
  format: text
  level: debug
database:
  url: postgres://db/wardrobe
  retry:
    attempts: 5
    base: 50ms
catalog:
  path: assets.yaml
limits:
  character_items: 20
randomizer:
  burst: 1
  rate: 0.5
access:
  preset: open
metrics:
  addr: 127.0.0.1:9100
`)
	cfg, err := config.Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "postgres://db/wardrobe", cfg.Database.URL)
	assert.Equal(t, uint64(5), cfg.Database.Retry.Attempts)
	assert.Equal(t, 50*time.Millisecond, cfg.Database.Retry.Base)
	assert.Equal(t, "assets.yaml", cfg.Catalog.Path)
	assert.Equal(t, 20, cfg.Limits.CharacterItems)
	assert.Equal(t, 300, cfg.Limits.RoomItems, "unset keys keep their default")
	assert.Equal(t, 1, cfg.Randomizer.BurstCapacity)
	assert.InDelta(t, 0.5, cfg.Randomizer.SustainedRate, 1e-9)
	assert.Equal(t, "127.0.0.1:9100", cfg.Metrics.Addr)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	policy, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, access.OpenPolicy(), policy)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "log:\n  level: debug\n  format: text\n")
	fs := flagSet()
	require.NoError(t, fs.Parse([]string{"--log.level", "warn"}))

	cfg, err := config.Load(path, fs)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format, "unchanged flags do not override the file")
}

func TestLoad_DatabaseURLFromEnvironment(t *testing.T) {
	t.Setenv(config.DatabaseURLEnv, "postgres://env/wardrobe")

	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/wardrobe", cfg.Database.URL)

	cfg, err = config.Load(writeConfig(t, "database:\n  url: postgres://file/wardrobe\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://file/wardrobe", cfg.Database.URL)
}

func TestLoad_CustomPolicy(t *testing.T) {
	path := writeConfig(t, `
access:
  preset: custom
  policy:
    allow: ["interact:*"]
    forbid: ["modifyBody:*"]
`)
	cfg, err := config.Load(path, nil)
	require.NoError(t, err)

	policy, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, []string{"interact:*"}, policy.Allow)
	assert.Equal(t, []string{"modifyBody:*"}, policy.Forbid)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantCode string
	}{
		{"bad yaml", "log: [", "CONFIG_LOAD_FAILED"},
		{"bad format", "log:\n  format: xml\n", "CONFIG_INVALID"},
		{"bad level", "log:\n  level: loud\n", "CONFIG_INVALID"},
		{"zero limit", "limits:\n  room_items: 0\n", "CONFIG_INVALID"},
		{"negative burst", "randomizer:\n  burst: -1\n", "CONFIG_INVALID"},
		{"unknown preset", "access:\n  preset: lax\n", "CONFIG_INVALID"},
		{"bad pattern", "access:\n  preset: custom\n  policy:\n    allow: [\"interact:[a-\"]\n", "INVALID_PERMISSION_PATTERN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.content), nil)
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, tt.wantCode)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	errutil.AssertErrorCode(t, err, "CONFIG_LOAD_FAILED")
}
