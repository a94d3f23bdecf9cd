package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/matthieukhl/orderdesk/internal/config"
	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
	driver string
	dsn    string
}

// NewConnection opens the configured backend and verifies it answers.
func NewConnection(cfg *config.DBConfig) (*DB, error) {
	var (
		driverName string
		dsn        string
		err        error
	)

	switch cfg.Driver {
	case config.DriverSQLite:
		driverName, dsn = "sqlite", sqliteDSN(cfg.DSN)
	case config.DriverMySQL:
		driverName = "mysql"
		if dsn, err = mysqlDSN(cfg.DSN); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported db driver: %q", cfg.Driver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool. SQLite serializes writers anyway, and an
	// in-memory database only exists on the connection that created it.
	if cfg.Driver == config.DriverSQLite {
		db.SetMaxOpenConns(1)
	} else if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, driver: cfg.Driver, dsn: dsn}, nil
}

// Driver reports which backend this handle talks to.
func (db *DB) Driver() string {
	return db.driver
}

// HealthCheck performs a simple health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.PingContext(ctx)
}

func sqliteDSN(dsn string) string {
	var pragmas []string
	if !strings.Contains(dsn, "foreign_keys") {
		pragmas = append(pragmas, "_pragma=foreign_keys(1)")
	}
	if !strings.Contains(dsn, "busy_timeout") {
		pragmas = append(pragmas, "_pragma=busy_timeout(5000)")
	}
	if len(pragmas) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(pragmas, "&")
}

// mysqlDSN forces the options the store relies on: DATETIME scanned into
// time.Time, UTC, and multi-statement migration files.
func mysqlDSN(dsn string) (string, error) {
	c, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	c.ParseTime = true
	c.MultiStatements = true
	return c.FormatDSN(), nil
}
