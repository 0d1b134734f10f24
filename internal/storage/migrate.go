package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationFiles embed.FS

const (
	sqliteMigrations   = "migrations/sqlite"
	postgresMigrations = "migrations/postgres"
)

// MigrateUp applies the sqlite schema. Every statement is idempotent so it
// runs on each open.
func MigrateUp(db *sql.DB) error {
	return applyMigrations(db, "*")
}

// MigrateSettings applies only the settings table migration.
func MigrateSettings(db *sql.DB) error {
	return applyMigrations(db, "*_settings")
}

func applyMigrations(db *sql.DB, pattern string) error {
	entries, err := fs.Glob(migrationFiles, sqliteMigrations+"/"+pattern+".up.sql")
	if err != nil {
		return fmt.Errorf("glob migrations: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("no migrations match %q", pattern)
	}
	sort.Strings(entries)
	for _, name := range entries {
		sqlBytes, readErr := migrationFiles.ReadFile(name)
		if readErr != nil {
			return fmt.Errorf("read migration %s: %w", name, readErr)
		}
		if _, execErr := db.Exec(string(sqlBytes)); execErr != nil {
			return fmt.Errorf("apply migration %s: %w", name, execErr)
		}
	}
	return nil
}

// MigratePostgres brings the PostgreSQL schema at databaseURL up to date.
func MigratePostgres(databaseURL string) error {
	src, err := iofs.New(migrationFiles, postgresMigrations)
	if err != nil {
		return fmt.Errorf("open postgres migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply postgres migrations: %w", err)
	}
	return nil
}
