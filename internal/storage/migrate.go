package storage

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// RunMigrations applies all pending migrations for the given driver
// ("pgx" or "sqlite") on a dedicated connection so the main pool is not
// disturbed.
func RunMigrations(driver, dsn string) error {
	migrateDB, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	var m *migrate.Migrate
	switch driver {
	case "pgx":
		d, err := pgxmigrate.WithInstance(migrateDB, &pgxmigrate.Config{})
		if err != nil {
			return fmt.Errorf("create pgx migrate driver: %w", err)
		}
		src, err := iofs.New(migrationsFS, "migrations/postgres")
		if err != nil {
			return fmt.Errorf("create iofs source: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", src, "pgx5", d)
		if err != nil {
			return fmt.Errorf("create migrate instance: %w", err)
		}
	case "sqlite":
		d, err := sqlitemigrate.WithInstance(migrateDB, &sqlitemigrate.Config{})
		if err != nil {
			return fmt.Errorf("create sqlite migrate driver: %w", err)
		}
		src, err := iofs.New(migrationsFS, "migrations/sqlite")
		if err != nil {
			return fmt.Errorf("create iofs source: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", src, "sqlite", d)
		if err != nil {
			return fmt.Errorf("create migrate instance: %w", err)
		}
	default:
		return fmt.Errorf("unsupported migration driver: %s", driver)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}
