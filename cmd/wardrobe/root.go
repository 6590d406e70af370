// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/wardrobe/internal/asset"
	"github.com/holomush/wardrobe/internal/config"
	"github.com/holomush/wardrobe/internal/logging"
	"github.com/holomush/wardrobe/internal/state"
	"github.com/holomush/wardrobe/internal/xdg"
)

// app is shared by every subcommand. cfg and logger are set before a
// subcommand runs.
type app struct {
	configFile string
	cfg        config.Config
	logger     *slog.Logger

	// Replaced in tests.
	openStores    storesOpener
	newMigrator   migratorFactory
	catalogLoader func(path string) (*asset.Catalog, error)
}

// NewRootCmd creates the root command of the wardrobe CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{
		openStores:    openPostgresStores,
		newMigrator:   newStoreMigrator,
		catalogLoader: loadCatalogFile,
	})
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wardrobe",
		Short: "Wardrobe - validated character appearance state",
		Long: `Wardrobe keeps the items characters wear and the devices placed in rooms
valid under the rules of an asset catalog.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file path (default: $XDG_CONFIG_HOME/wardrobe/config.yaml)")
	flags.String("log.format", "text", "log format (json or text)")
	flags.String("log.level", "info", "log level")
	flags.String("catalog.path", "", "asset catalog file")
	flags.String("database.url", "", "PostgreSQL connection string (default: $"+config.DatabaseURLEnv+")")

	cmd.AddCommand(
		newValidateCmd(a),
		newRepairCmd(a),
		newSchemaCmd(),
		newRandomizeCmd(a),
		newApplyCmd(a),
		newSessionCmd(a),
		newSpaceCmd(a),
		newPolicyCmd(a),
		newMigrateCmd(a),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	path := a.configFile
	if path == "" {
		path = defaultConfigFile()
	}
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return err
	}
	// The CLI reads text logs by default, unlike the service default.
	if !cmd.Flags().Changed("log.format") && path == "" {
		cfg.Log.Format = "text"
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.Setup(logging.Options{
		Service: "wardrobe",
		Version: version,
		Format:  cfg.Log.Format,
		Level:   level,
		Writer:  cmd.ErrOrStderr(),
	})
	return nil
}

// defaultConfigFile returns the XDG config file when it exists.
func defaultConfigFile() string {
	path, err := xdg.ConfigFile()
	if err != nil {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func loadCatalogFile(path string) (*asset.Catalog, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator's configuration
	if err != nil {
		return nil, oops.Code("CATALOG_READ_FAILED").With("path", path).Wrap(err)
	}
	return asset.LoadCatalog(data)
}

func (a *app) catalog() (*asset.Catalog, error) {
	if a.cfg.Catalog.Path == "" {
		return nil, oops.Code("CONFIG_INVALID").With("key", "catalog.path").
			New("an asset catalog is required (--catalog.path)")
	}
	return a.catalogLoader(a.cfg.Catalog.Path)
}

func (a *app) loadContext(manager asset.Manager, logger *slog.Logger, rng *rand.Rand) state.LoadContext {
	return state.LoadContext{Manager: manager, Limits: a.cfg.Limits, Logger: logger, Rand: rng}
}

// readInput reads a file, or stdin for "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // reading the file the operator named is the point
	}
	if err != nil {
		return nil, oops.Code("INPUT_READ_FAILED").With("path", path).Wrap(err)
	}
	return data, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return oops.Code("OUTPUT_FAILED").Wrap(err)
	}
	return nil
}

// seededRand returns a generator for seed, or a random one for 0.
func seededRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed>>1|1))
}
