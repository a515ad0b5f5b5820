package testutil

import (
	"database/sql"
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/backtest"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/marketdata"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/repository"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/service"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/yahoo"
)

// NewTestBacktestService creates a BacktestService comparing against SPY with the
// default capital and a concurrency of 4.
func NewTestBacktestService(t *testing.T, provider marketdata.Provider) *service.BacktestService {
	t.Helper()

	return service.NewBacktestService(
		provider,
		backtest.NewEngine(backtest.DefaultBenchmark),
		backtest.DefaultInitialCapital,
		4,
	)
}

// NewTestUniverseService creates a UniverseService backed by db that reads and writes
// files under dir.
func NewTestUniverseService(t *testing.T, db *sql.DB, client yahoo.Client, dir string) *service.UniverseService {
	t.Helper()

	return service.NewUniverseService(
		client,
		repository.NewUniverseRepository(db),
		dir,
		4,
	)
}

// NewTestSystemService creates a SystemService reporting SPY as the benchmark.
func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db, repository.NewUniverseRepository(db), "SPY", map[string]bool{"universe": true})
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeSymbol generates a stock ticker symbol for testing.
//
// Example usage:
//
//	symbol := testutil.MakeSymbol("AAPL")
//	// Returns: "AAPL1A2B"
func MakeSymbol(base string) string {
	if base == "" {
		base = "TEST"
	}
	return base + randomAlphanumeric(4)
}

// MakeSymbolName generates a unique security name for testing.
//
// Example usage:
//
//	name := testutil.MakeSymbolName("Tech Symbol")
//	// Returns: "Tech Symbol XYZ789"
func MakeSymbolName(base string) string {
	if base == "" {
		base = "Symbol"
	}
	return base + " " + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
