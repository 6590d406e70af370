// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"cmp"
	"embed"
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	// Register pgx/v5 database driver for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/samber/oops"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrateIface is the part of golang-migrate the Migrator drives.
type migrateIface interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (version uint, dirty bool, err error)
	Force(version int) error
	Close() (source error, database error)
}

// Migrator applies the embedded schema migrations of the wardrobe tables.
type Migrator struct {
	m      migrateIface
	logger *slog.Logger
}

// NewMigrator creates a Migrator for a PostgreSQL connection string.
// postgres:// and postgresql:// URLs are rewritten to the pgx5:// scheme of
// the golang-migrate driver.
func NewMigrator(databaseURL string, logger *slog.Logger) (*Migrator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, oops.Code("MIGRATION_SOURCE_FAILED").With("operation", "create migration source").Wrap(err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, migrateURL(databaseURL))
	if err != nil {
		_ = source.Close() //nolint:errcheck // cleanup for embedded FS; init error takes precedence
		return nil, oops.Code("MIGRATION_INIT_FAILED").With("operation", "initialize migrator").Wrap(err)
	}

	return &Migrator{m: m, logger: logger}, nil
}

func migrateURL(databaseURL string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if rest, found := strings.CutPrefix(databaseURL, scheme); found {
			return "pgx5://" + rest
		}
	}
	return databaseURL
}

// Up applies all pending migrations.
func (m *Migrator) Up() error {
	err := m.m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.Info("database schema is up to date")
		return nil
	}
	if err != nil {
		return oops.Code("MIGRATION_UP_FAILED").Wrap(err)
	}
	m.logger.Info("database schema migrated")
	return nil
}

// Down rolls back every migration, dropping the wardrobe tables and their
// data.
func (m *Migrator) Down() error {
	if err := m.m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return oops.Code("MIGRATION_DOWN_FAILED").Wrap(err)
	}
	return nil
}

// Steps applies n migrations. Positive n migrates up, negative n migrates down.
func (m *Migrator) Steps(n int) error {
	if err := m.m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return oops.Code("MIGRATION_STEPS_FAILED").With("steps", n).Wrap(err)
	}
	return nil
}

// Version returns the current migration version and whether a migration
// failed halfway. Version 0 means nothing was applied.
func (m *Migrator) Version() (version uint, dirty bool, err error) {
	version, dirty, err = m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, oops.Code("MIGRATION_VERSION_FAILED").Wrap(err)
	}
	return version, dirty, nil
}

// Force records version as applied without running anything. It recovers a
// dirty database after a manual fix.
func (m *Migrator) Force(version int) error {
	if version < 0 {
		return oops.Code("INVALID_VERSION").Errorf("version must be non-negative, got %d", version)
	}
	if err := m.m.Force(version); err != nil {
		return oops.Code("MIGRATION_FORCE_FAILED").With("version", version).Wrap(err)
	}
	return nil
}

// Close releases the migration source and the database connection.
func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	var component string
	switch {
	case srcErr != nil && dbErr != nil:
		component = "both"
	case srcErr != nil:
		component = "source"
	case dbErr != nil:
		component = "database"
	default:
		return nil
	}
	return oops.Code("MIGRATION_CLOSE_FAILED").With("component", component).Wrap(errors.Join(srcErr, dbErr))
}

type embeddedMigration struct {
	version uint
	name    string
}

// embeddedMigrations lists the up migrations by ascending version. Files not
// named NNNNNN_name.up.sql are skipped with a warning.
var embeddedMigrations = sync.OnceValues(func() ([]embeddedMigration, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, oops.Code("MIGRATION_LIST_FAILED").With("operation", "read migrations dir").Wrap(err)
	}
	var out []embeddedMigration
	for _, entry := range entries {
		name, isUp := strings.CutSuffix(entry.Name(), ".up.sql")
		if !isUp {
			continue
		}
		digits, _, _ := strings.Cut(name, "_")
		version, err := strconv.ParseUint(digits, 10, 64)
		if err != nil || len(digits) != 6 {
			slog.Warn("skipping migration with unexpected file name",
				"filename", entry.Name(), "expected_format", "NNNNNN_name.up.sql")
			continue
		}
		out = append(out, embeddedMigration{version: uint(version), name: name})
	}
	slices.SortFunc(out, func(a, b embeddedMigration) int { return cmp.Compare(a.version, b.version) })
	return out, nil
})

// allMigrationVersions returns the embedded versions in ascending order.
func allMigrationVersions() ([]uint, error) {
	migrations, err := embeddedMigrations()
	if err != nil {
		return nil, err
	}
	versions := make([]uint, len(migrations))
	for i, mig := range migrations {
		versions[i] = mig.version
	}
	return versions, nil
}

// MigrationName returns the name of a migration, e.g. "000001_spaces", or ""
// when no migration has that version.
func MigrationName(version uint) (string, error) {
	migrations, err := embeddedMigrations()
	if err != nil {
		return "", err
	}
	i, found := slices.BinarySearchFunc(migrations, version, func(m embeddedMigration, v uint) int {
		return cmp.Compare(m.version, v)
	})
	if !found {
		return "", nil
	}
	return migrations[i].name, nil
}

// PendingMigrations returns the versions Up would apply, in ascending order.
func (m *Migrator) PendingMigrations() ([]uint, error) {
	return m.split("get pending migrations", false)
}

// AppliedMigrations returns the versions already applied, in ascending order.
func (m *Migrator) AppliedMigrations() ([]uint, error) {
	return m.split("get applied migrations", true)
}

func (m *Migrator) split(operation string, applied bool) ([]uint, error) {
	current, _, err := m.Version()
	if err != nil {
		return nil, oops.With("operation", operation).Wrap(err)
	}
	all, err := allMigrationVersions()
	if err != nil {
		return nil, oops.With("operation", operation).Wrap(err)
	}
	var out []uint
	for _, v := range all {
		if (v <= current) == applied {
			out = append(out, v)
		}
	}
	return out, nil
}
