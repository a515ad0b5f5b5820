package apperrors

import "errors"

// Backtest run errors abort the computation. No partial report is produced.
var (
	// ErrDataUnavailable indicates that no ticker in the portfolio yielded usable price data.
	ErrDataUnavailable = errors.New("no valid price data")

	// ErrInsufficientHistory indicates that fewer than the minimum number of aligned
	// trading dates remain after joining the portfolio's price series.
	ErrInsufficientHistory = errors.New("insufficient data")
)

// Degraded-result errors are recovered locally and never fail a run.
var (
	// ErrBenchmarkUnavailable indicates that the benchmark series could not be fetched
	// or its return could not be computed.
	ErrBenchmarkUnavailable = errors.New("benchmark unavailable")
)

// Domain entity errors represent missing entities in the system.
var (
	// ErrSymbolNotFound indicates that a symbol lookup returned no results.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrUniverseNotFound indicates that no universe refresh has been stored yet.
	ErrUniverseNotFound = errors.New("dividend universe not found")
)

// Business logic errors represent validation failures or constraint violations.
var (
	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., end date is before start date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrEmptyPortfolio indicates that a backtest was requested without holdings.
	ErrEmptyPortfolio = errors.New("portfolio must contain at least one holding")

	ErrInvalidDate = errors.New("invalid date")

	// ErrRefreshInProgress indicates that a universe refresh is already running.
	ErrRefreshInProgress = errors.New("universe refresh already in progress")

	// ErrInvalidSeed indicates that the universe seed file could not be parsed.
	ErrInvalidSeed = errors.New("invalid universe seed file")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
var (
	ErrFailedToRunBacktest      = errors.New("failed to run backtest")
	ErrFailedToRetrieveUniverse = errors.New("failed to retrieve dividend universe")
	ErrFailedToRefreshUniverse  = errors.New("failed to refresh dividend universe")
	ErrFailedToGetVersionInfo   = errors.New("failed to get version information")
)
