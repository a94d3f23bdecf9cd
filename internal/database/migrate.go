package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/matthieukhl/orderdesk/internal/config"
)

//go:embed migrations
var migrationsFS embed.FS

const migrationsTable = "orderdesk_schema_migrations"

// newMigrate builds a migrate instance for the backend. SQLite migrates
// through the open handle so in-memory databases see the schema; MySQL gets
// its own connection that is released by closeMigrate.
func (db *DB) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations/"+db.driver)
	if err != nil {
		return nil, fmt.Errorf("could not open migrations: %w", err)
	}

	switch db.driver {
	case config.DriverSQLite:
		driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{MigrationsTable: migrationsTable})
		if err != nil {
			return nil, fmt.Errorf("could not create migration driver: %w", err)
		}
		m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
		if err != nil {
			return nil, fmt.Errorf("could not create migrate instance: %w", err)
		}
		return m, nil
	case config.DriverMySQL:
		m, err := migrate.NewWithSourceInstance("iofs", src,
			"mysql://"+db.dsn+"&x-migrations-table="+migrationsTable)
		if err != nil {
			return nil, fmt.Errorf("could not create migrate instance: %w", err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported db driver: %q", db.driver)
	}
}

func (db *DB) closeMigrate(m *migrate.Migrate) {
	// Closing the sqlite driver would close the shared handle.
	if db.driver == config.DriverMySQL {
		m.Close()
	}
}

// Migrate brings the schema up to the latest version.
func (db *DB) Migrate() error {
	m, err := db.newMigrate()
	if err != nil {
		return err
	}
	defer db.closeMigrate(m)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

// DropSchema rolls every migration back, removing all tables and data.
func (db *DB) DropSchema() error {
	m, err := db.newMigrate()
	if err != nil {
		return err
	}
	defer db.closeMigrate(m)

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not roll back migrations: %w", err)
	}
	return nil
}

// SchemaVersion reports the applied migration version and whether the last
// migration failed halfway.
func (db *DB) SchemaVersion() (uint, bool, error) {
	m, err := db.newMigrate()
	if err != nil {
		return 0, false, err
	}
	defer db.closeMigrate(m)

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("could not read schema version: %w", err)
	}
	return version, dirty, nil
}
