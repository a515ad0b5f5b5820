package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/apperrors"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/model"
)

// UniverseRepository provides data access methods for the dividend universe tables:
// universe_refresh, universe_ticker and universe_payment.
type UniverseRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewUniverseRepository creates a new UniverseRepository with the provided database connection.
func NewUniverseRepository(db *sql.DB) *UniverseRepository {
	return &UniverseRepository{db: db}
}

func (r *UniverseRepository) WithTx(tx *sql.Tx) *UniverseRepository {
	return &UniverseRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *UniverseRepository) getQuerier() interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// InsertRefresh stores a new refresh record.
func (r *UniverseRepository) InsertRefresh(ctx context.Context, refresh model.UniverseRefresh) error {
	query := `
		INSERT INTO universe_refresh (id, started_at, total_tickers, status)
		VALUES (?, ?, ?, ?)
	`
	_, err := r.getQuerier().ExecContext(ctx, query,
		refresh.ID,
		formatTimestamp(refresh.StartedAt),
		refresh.TotalTickers,
		refresh.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to insert universe refresh: %w", err)
	}
	return nil
}

// FinishRefresh records the outcome of a refresh.
func (r *UniverseRepository) FinishRefresh(ctx context.Context, refresh model.UniverseRefresh) error {
	query := `
		UPDATE universe_refresh
		SET finished_at = ?, total_tickers = ?, status = ?, error = ?
		WHERE id = ?
	`
	finishedAt := time.Now().UTC()
	if refresh.FinishedAt != nil {
		finishedAt = refresh.FinishedAt.UTC()
	}

	var errMsg sql.NullString
	if refresh.Error != "" {
		errMsg = sql.NullString{String: refresh.Error, Valid: true}
	}

	result, err := r.getQuerier().ExecContext(ctx, query,
		formatTimestamp(finishedAt),
		refresh.TotalTickers,
		refresh.Status,
		errMsg,
		refresh.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update universe refresh: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("universe refresh %s: %w", refresh.ID, apperrors.ErrUniverseNotFound)
	}
	return nil
}

// LatestRefresh returns the most recent completed refresh.
// Returns apperrors.ErrUniverseNotFound when none exists.
func (r *UniverseRepository) LatestRefresh(ctx context.Context) (model.UniverseRefresh, error) {
	query := `
		SELECT id, started_at, finished_at, total_tickers, status, error
		FROM universe_refresh
		WHERE status = ?
		ORDER BY started_at DESC, rowid DESC
		LIMIT 1
	`
	return r.scanRefresh(r.getQuerier().QueryRowContext(ctx, query, model.RefreshComplete))
}

// GetRefresh returns the refresh with the given ID in any status.
// Returns apperrors.ErrUniverseNotFound when it does not exist.
func (r *UniverseRepository) GetRefresh(ctx context.Context, id string) (model.UniverseRefresh, error) {
	query := `
		SELECT id, started_at, finished_at, total_tickers, status, error
		FROM universe_refresh
		WHERE id = ?
	`
	return r.scanRefresh(r.getQuerier().QueryRowContext(ctx, query, id))
}

func (r *UniverseRepository) scanRefresh(row *sql.Row) (model.UniverseRefresh, error) {
	var (
		refresh      model.UniverseRefresh
		startedAtStr string
		finishedAt   sql.NullString
		errMsg       sql.NullString
	)
	err := row.Scan(
		&refresh.ID,
		&startedAtStr,
		&finishedAt,
		&refresh.TotalTickers,
		&refresh.Status,
		&errMsg,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.UniverseRefresh{}, apperrors.ErrUniverseNotFound
	}
	if err != nil {
		return model.UniverseRefresh{}, fmt.Errorf("failed to query universe_refresh table: %w", err)
	}

	refresh.StartedAt, err = parseStored(startedAtStr)
	if err != nil {
		return model.UniverseRefresh{}, err
	}
	if finishedAt.Valid {
		t, err := parseStored(finishedAt.String)
		if err != nil {
			return model.UniverseRefresh{}, err
		}
		refresh.FinishedAt = &t
	}
	refresh.Error = errMsg.String

	return refresh, nil
}

// ReplaceUniverse swaps the stored universe for tickers in a single transaction.
func (r *UniverseRepository) ReplaceUniverse(ctx context.Context, refreshID string, tickers []model.UniverseTicker) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	q := r.WithTx(tx).getQuerier()

	for _, table := range []string{"universe_payment", "universe_ticker"} {
		//nolint:gosec // G202: table names are from a hardcoded slice
		if _, err := q.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	tickerQuery := `
		INSERT INTO universe_ticker
			(symbol, refresh_id, name, sector, price, yield, ttm_dividend, frequency, last_div, currency)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	paymentQuery := `INSERT INTO universe_payment (symbol, date, amount) VALUES (?, ?, ?)`

	for _, t := range tickers {
		_, err := q.ExecContext(ctx, tickerQuery,
			t.Symbol, refreshID, t.Name, t.Sector, t.Price, t.Yield,
			t.TTMDividend, t.Frequency, t.LastDiv, t.Currency,
		)
		if err != nil {
			return fmt.Errorf("failed to insert universe ticker %s: %w", t.Symbol, err)
		}
		for _, p := range t.Payments {
			if _, err := q.ExecContext(ctx, paymentQuery, t.Symbol, p.Date, p.Amount); err != nil {
				return fmt.Errorf("failed to insert payment for %s: %w", t.Symbol, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit universe: %w", err)
	}
	return nil
}

// GetUniverse retrieves all stored tickers with their payments, ordered by symbol.
func (r *UniverseRepository) GetUniverse(ctx context.Context) ([]model.UniverseTicker, error) {
	return r.getTickers(ctx, "")
}

// GetTicker retrieves one stored ticker.
// Returns apperrors.ErrSymbolNotFound when the symbol is not in the universe.
func (r *UniverseRepository) GetTicker(ctx context.Context, symbol string) (model.UniverseTicker, error) {
	tickers, err := r.getTickers(ctx, symbol)
	if err != nil {
		return model.UniverseTicker{}, err
	}
	if len(tickers) == 0 {
		return model.UniverseTicker{}, apperrors.ErrSymbolNotFound
	}
	return tickers[0], nil
}

func (r *UniverseRepository) getTickers(ctx context.Context, symbol string) ([]model.UniverseTicker, error) {
	query := `
		SELECT symbol, name, sector, price, yield, ttm_dividend, frequency, last_div, currency
		FROM universe_ticker
	`
	var args []any
	if symbol != "" {
		query += ` WHERE symbol = ?`
		args = append(args, symbol)
	}
	query += ` ORDER BY symbol ASC`

	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query universe_ticker table: %w", err)
	}
	defer rows.Close()

	tickers := []model.UniverseTicker{}
	for rows.Next() {
		var t model.UniverseTicker
		err := rows.Scan(
			&t.Symbol,
			&t.Name,
			&t.Sector,
			&t.Price,
			&t.Yield,
			&t.TTMDividend,
			&t.Frequency,
			&t.LastDiv,
			&t.Currency,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan universe_ticker table results: %w", err)
		}
		tickers = append(tickers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating universe_ticker table: %w", err)
	}
	rows.Close()

	payments, err := r.getPayments(ctx, symbol)
	if err != nil {
		return nil, err
	}
	for i := range tickers {
		tickers[i].Payments = payments[tickers[i].Symbol]
		if tickers[i].Payments == nil {
			tickers[i].Payments = []model.DividendPayment{}
		}
	}

	return tickers, nil
}

func (r *UniverseRepository) getPayments(ctx context.Context, symbol string) (map[string][]model.DividendPayment, error) {
	query := `SELECT symbol, date, amount FROM universe_payment`
	var args []any
	if symbol != "" {
		query += ` WHERE symbol = ?`
		args = append(args, symbol)
	}
	query += ` ORDER BY symbol ASC, date ASC`

	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query universe_payment table: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]model.DividendPayment)
	for rows.Next() {
		var (
			sym     string
			dateStr string
			amount  float64
		)
		if err := rows.Scan(&sym, &dateStr, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan universe_payment table results: %w", err)
		}
		date, err := parseStoredDate(dateStr)
		if err != nil {
			return nil, err
		}
		out[sym] = append(out[sym], model.DividendPayment{Date: formatDate(date), Amount: amount})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating universe_payment table: %w", err)
	}

	return out, nil
}
