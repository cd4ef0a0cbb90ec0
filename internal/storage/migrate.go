package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrDirtySchema means an earlier migration failed halfway and the database
// needs manual repair before the ledger can use it.
var ErrDirtySchema = errors.New("database schema is dirty")

// RunMigrations brings the database at dbPath up to the latest embedded
// schema version and returns that version. It opens its own connection so
// the caller's pool is left alone.
func RunMigrations(dbPath string) (uint, error) {
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		return 0, fmt.Errorf("create sqlite driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return 0, fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	before, err := schemaVersion(m)
	if err != nil {
		return 0, err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("run migrations from version %d: %w", before, err)
	}

	after, err := schemaVersion(m)
	if err != nil {
		return 0, err
	}
	if after != before {
		slog.Info("Ledger schema migrated", "db_path", dbPath, "from_version", before, "to_version", after)
	} else {
		slog.Debug("Ledger schema up to date", "db_path", dbPath, "version", after)
	}
	return after, nil
}

// schemaVersion reports 0 for a database that has never been migrated.
func schemaVersion(m *migrate.Migrate) (uint, error) {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return v, fmt.Errorf("version %d: %w", v, ErrDirtySchema)
	}
	return v, nil
}
