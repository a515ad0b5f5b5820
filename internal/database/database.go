package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed migrations/*.sql
var migrations embed.FS

// Open opens a connection to the SQLite database and applies pending migrations.
// The parent directory of dbPath is created when missing.
func Open(dbPath string) (*sql.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Open database connection
	db, err := sql.Open("sqlite", DSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Configure(db); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := Migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// DSN returns the driver connection string for dbPath. The pragmas are set per
// connection so every pooled connection enforces foreign keys.
func DSN(dbPath string) string {
	return dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Configure applies the connection pragmas the application relies on.
func Configure(db *sql.DB) error {
	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Set timezone to UTC
	if _, err := db.Exec("PRAGMA timezone = 'UTC'"); err != nil {
		return fmt.Errorf("failed to set timezone: %w", err)
	}

	return nil
}

// Migrate applies all embedded goose migrations and returns the resulting schema version.
func Migrate(ctx context.Context, db *sql.DB) (int64, error) {
	provider, err := newProvider(db)
	if err != nil {
		return 0, err
	}
	if _, err := provider.Up(ctx); err != nil {
		return 0, fmt.Errorf("failed to apply migrations: %w", err)
	}
	return provider.GetDBVersion(ctx)
}

// Version returns the current schema version and whether migrations are pending.
func Version(ctx context.Context, db *sql.DB) (int64, bool, error) {
	provider, err := newProvider(db)
	if err != nil {
		return 0, false, err
	}
	current, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("failed to get database version: %w", err)
	}
	pending, err := provider.HasPending(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("failed to check pending migrations: %w", err)
	}
	return current, pending, nil
}

func newProvider(db *sql.DB) (*goose.Provider, error) {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}

// HealthCheck pings the database within ctx.
func HealthCheck(ctx context.Context, db *sql.DB) error {
	return db.PingContext(ctx)
}
