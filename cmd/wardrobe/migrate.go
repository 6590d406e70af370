// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/wardrobe/internal/config"
	"github.com/holomush/wardrobe/internal/store"
)

// migrator is the part of store.Migrator the CLI drives.
type migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (uint, bool, error)
	Force(version int) error
	PendingMigrations() ([]uint, error)
	AppliedMigrations() ([]uint, error)
	Close() error
}

type migratorFactory func(databaseURL string, logger *slog.Logger) (migrator, error)

func newStoreMigrator(databaseURL string, logger *slog.Logger) (migrator, error) {
	return store.NewMigrator(databaseURL, logger)
}

// withMigrator opens a migrator on the configured database around fn.
func (a *app) withMigrator(fn func(m migrator) error) error {
	if a.cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").With("key", "database.url").
			Errorf("a database is required (--database.url or $%s)", config.DatabaseURLEnv)
	}
	m, err := a.newMigrator(a.cfg.Database.URL, a.logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := m.Close(); cerr != nil {
			a.logger.Warn("closing migrator", "error", cerr)
		}
	}()
	return fn(m)
}

// parseForceVersion parses the version argument of migrate force.
func parseForceVersion(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, oops.Code("INVALID_VERSION").With("value", s).Wrap(err)
	}
	if v < 0 {
		return 0, oops.Code("INVALID_VERSION").With("value", s).Errorf("version must be non-negative, got %d", v)
	}
	return v, nil
}

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withMigrator(func(m migrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				cmd.Println("Migrations completed successfully")
				return nil
			})
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations (all of them unless --steps is set)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withMigrator(func(m migrator) error {
				var err error
				if steps > 0 {
					err = m.Steps(-steps)
				} else {
					err = m.Down()
				}
				if err != nil {
					return err
				}
				cmd.Println("Rollback completed successfully")
				return nil
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 0, "number of migrations to roll back (0 = all)")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the schema version and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withMigrator(func(m migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				applied, err := m.AppliedMigrations()
				if err != nil {
					return err
				}
				pending, err := m.PendingMigrations()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "version: %d\n", version)
				if dirty {
					_, _ = fmt.Fprintln(out, "dirty: a migration failed; fix the database and run migrate force")
				}
				_, _ = fmt.Fprintf(out, "applied: %d\n", len(applied))
				_, _ = fmt.Fprintf(out, "pending: %d\n", len(pending))
				for _, v := range pending {
					name, err := store.MigrationName(v)
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintf(out, "  %s\n", name)
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "force <version>",
		Short: "Mark a version as applied without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := parseForceVersion(args[0])
			if err != nil {
				return err
			}
			return a.withMigrator(func(m migrator) error {
				if err := m.Force(version); err != nil {
					return err
				}
				cmd.Printf("Forced version %d\n", version)
				return nil
			})
		},
	})

	return cmd
}
