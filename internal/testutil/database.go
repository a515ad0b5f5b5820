package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/database"
	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates a migrated SQLite database in the test's temp directory.
// The database is automatically cleaned up when the test completes.
//
// A file database is used instead of ":memory:" so every pooled connection sees the
// same schema.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", database.DSN(path))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	if err := database.Configure(db); err != nil {
		t.Fatalf("Failed to configure test database: %v", err)
	}

	// Create schema
	if _, err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	return db
}

// CleanDatabase truncates all tables in dependency order.
// Useful for reusing the same database across multiple tests.
func CleanDatabase(t *testing.T, db *sql.DB) {
	t.Helper()

	// Order matters: delete children before parents due to foreign keys
	tables := []string{
		"universe_payment",
		"universe_ticker",
		"universe_refresh",
		"market_fetch",
		"dividend",
		"price",
	}

	for _, table := range tables {
		//nolint:gosec // G202: Table names are from hardcoded slice, no SQL injection risk
		query := "DELETE FROM " + table
		if _, err := db.Exec(query); err != nil {
			t.Fatalf("Failed to clean table %s: %v", table, err)
		}
	}
}

// CountRows returns the number of rows in a table.
// Useful for assertions in tests.
//
// Example usage:
//
//	count := testutil.CountRows(t, db, "price")
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var count int
	//nolint:gosec // G202: Table names come from test code
	query := "SELECT COUNT(*) FROM " + table
	err := db.QueryRow(query).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}

	return count
}

// AssertRowCount asserts that a table has the expected number of rows.
//
// Example usage:
//
//	testutil.AssertRowCount(t, db, "universe_ticker", 2)
func AssertRowCount(t *testing.T, db *sql.DB, table string, expected int) {
	t.Helper()

	actual := CountRows(t, db, table)
	if actual != expected {
		t.Errorf("Expected %d rows in %s, got %d", expected, table, actual)
	}
}
