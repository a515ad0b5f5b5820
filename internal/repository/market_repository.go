package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/timeseries"
)

// Fetch kinds recorded in the market_fetch table.
const (
	KindPrice    = "price"
	KindDividend = "dividend"
)

// MarketRepository provides data access methods for the price, dividend and
// market_fetch tables. It caches upstream market data; it never stores backtest results.
type MarketRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewMarketRepository creates a new MarketRepository with the provided database connection.
func NewMarketRepository(db *sql.DB) *MarketRepository {
	return &MarketRepository{db: db}
}

func (r *MarketRepository) WithTx(tx *sql.Tx) *MarketRepository {
	return &MarketRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *MarketRepository) getQuerier() interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetPrices retrieves cached closes for a ticker with start <= date < end, oldest first.
func (r *MarketRepository) GetPrices(ctx context.Context, ticker string, start, end time.Time) (timeseries.Series, error) {
	query := `
		SELECT date, close
		FROM price
		WHERE ticker = ? AND date >= ? AND date < ?
		ORDER BY date ASC
	`
	return r.querySeries(ctx, "price", query, ticker, formatDate(start), formatDate(end))
}

// GetDividends retrieves cached dividends for a ticker with start <= ex_date <= end, oldest first.
func (r *MarketRepository) GetDividends(ctx context.Context, ticker string, start, end time.Time) (timeseries.Series, error) {
	query := `
		SELECT ex_date, amount
		FROM dividend
		WHERE ticker = ? AND ex_date >= ? AND ex_date <= ?
		ORDER BY ex_date ASC
	`
	return r.querySeries(ctx, "dividend", query, ticker, formatDate(start), formatDate(end))
}

func (r *MarketRepository) querySeries(ctx context.Context, table, query string, args ...any) (timeseries.Series, error) {
	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s table: %w", table, err)
	}
	defer rows.Close()

	points := []timeseries.Point{}
	for rows.Next() {
		var (
			dateStr string
			value   float64
		)
		if err := rows.Scan(&dateStr, &value); err != nil {
			return nil, fmt.Errorf("failed to scan %s table results: %w", table, err)
		}
		date, err := parseStoredDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s date: %w", table, err)
		}
		points = append(points, timeseries.Point{Date: date, Value: value})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s table: %w", table, err)
	}

	return timeseries.New(points), nil
}

// UpsertPrices inserts or replaces closes for a ticker.
func (r *MarketRepository) UpsertPrices(ctx context.Context, ticker string, closes timeseries.Series) error {
	query := `
		INSERT INTO price (ticker, date, close) VALUES (?, ?, ?)
		ON CONFLICT(ticker, date) DO UPDATE SET close = excluded.close
	`
	return r.upsertSeries(ctx, "price", query, ticker, closes)
}

// UpsertDividends inserts or replaces dividends for a ticker.
func (r *MarketRepository) UpsertDividends(ctx context.Context, ticker string, dividends timeseries.Series) error {
	query := `
		INSERT INTO dividend (ticker, ex_date, amount) VALUES (?, ?, ?)
		ON CONFLICT(ticker, ex_date) DO UPDATE SET amount = excluded.amount
	`
	return r.upsertSeries(ctx, "dividend", query, ticker, dividends)
}

func (r *MarketRepository) upsertSeries(ctx context.Context, table, query, ticker string, s timeseries.Series) error {
	for _, p := range s {
		if _, err := r.getQuerier().ExecContext(ctx, query, ticker, formatDate(p.Date), p.Value); err != nil {
			return fmt.Errorf("failed to upsert %s for %s: %w", table, ticker, err)
		}
	}
	return nil
}

// RecordFetch marks a (ticker, kind, window) as fetched at fetchedAt.
func (r *MarketRepository) RecordFetch(ctx context.Context, ticker, kind string, start, end, fetchedAt time.Time) error {
	query := `
		INSERT INTO market_fetch (ticker, kind, start_date, end_date, fetched_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(ticker, kind, start_date, end_date) DO UPDATE SET fetched_at = excluded.fetched_at
	`
	_, err := r.getQuerier().ExecContext(ctx, query, ticker, kind, formatDate(start), formatDate(end), formatTimestamp(fetchedAt))
	if err != nil {
		return fmt.Errorf("failed to record fetch for %s: %w", ticker, err)
	}
	return nil
}

// FreshFetch reports whether the exact (ticker, kind, window) was fetched at or after notBefore.
func (r *MarketRepository) FreshFetch(ctx context.Context, ticker, kind string, start, end, notBefore time.Time) (bool, error) {
	query := `
		SELECT fetched_at
		FROM market_fetch
		WHERE ticker = ? AND kind = ? AND start_date = ? AND end_date = ?
	`
	var fetchedAtStr string
	err := r.getQuerier().QueryRowContext(ctx, query, ticker, kind, formatDate(start), formatDate(end)).Scan(&fetchedAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query market_fetch table: %w", err)
	}

	fetchedAt, err := parseStored(fetchedAtStr)
	if err != nil {
		return false, err
	}
	return !fetchedAt.Before(notBefore.UTC()), nil
}

// StoreFetch writes prices or dividends and records the fetch in a single transaction.
func (r *MarketRepository) StoreFetch(ctx context.Context, ticker, kind string, start, end time.Time, s timeseries.Series, fetchedAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	txRepo := r.WithTx(tx)
	switch kind {
	case KindPrice:
		err = txRepo.UpsertPrices(ctx, ticker, s)
	case KindDividend:
		err = txRepo.UpsertDividends(ctx, ticker, s)
	default:
		err = fmt.Errorf("unknown fetch kind %q", kind)
	}
	if err != nil {
		return err
	}

	if err := txRepo.RecordFetch(ctx, ticker, kind, start, end, fetchedAt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit fetch for %s: %w", ticker, err)
	}
	return nil
}
