package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/model"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/repository"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/timeseries"
)

// Date parses a YYYY-MM-DD date and fails the test on error.
func Date(t *testing.T, s string) time.Time {
	t.Helper()

	d, err := time.Parse(timeseries.DateLayout, s)
	if err != nil {
		t.Fatalf("Failed to parse date %q: %v", s, err)
	}
	return d
}

// DailySeries builds a series with one point per calendar day starting at start.
//
// Example usage:
//
//	prices := testutil.DailySeries(start, 100, 101, 102)
func DailySeries(start time.Time, values ...float64) timeseries.Series {
	points := make([]timeseries.Point, len(values))
	for i, v := range values {
		points[i] = timeseries.Point{Date: start.AddDate(0, 0, i), Value: v}
	}
	return timeseries.New(points)
}

// LinearSeries builds n daily points starting at first and growing by step per day.
func LinearSeries(start time.Time, n int, first, step float64) timeseries.Series {
	values := make([]float64, n)
	for i := range values {
		values[i] = first + float64(i)*step
	}
	return DailySeries(start, values...)
}

// UniverseTickerBuilder provides a fluent interface for creating stored universe tickers.
//
// Example usage:
//
//	// Simple creation with defaults
//	ticker := testutil.NewUniverseTicker().Build()
//
//	// Customized ticker
//	ticker := testutil.NewUniverseTicker().
//	    WithSymbol("SCHD").
//	    WithPayments(0.61, 0.66, 0.72, 0.74).
//	    Build(t, db)
type UniverseTickerBuilder struct {
	Ticker model.UniverseTicker
}

// NewUniverseTicker creates a UniverseTickerBuilder with sensible defaults.
func NewUniverseTicker() *UniverseTickerBuilder {
	return &UniverseTickerBuilder{
		Ticker: model.UniverseTicker{
			Symbol:      MakeSymbol("DIV"),
			Name:        MakeSymbolName("Dividend Fund"),
			Sector:      "ETF",
			Price:       50,
			Yield:       0.04,
			TTMDividend: 2,
			Frequency:   "Quarterly",
			LastDiv:     0.5,
			Payments:    []model.DividendPayment{},
			Currency:    "USD",
		},
	}
}

// WithSymbol sets a custom symbol.
func (b *UniverseTickerBuilder) WithSymbol(symbol string) *UniverseTickerBuilder {
	b.Ticker.Symbol = symbol
	return b
}

// WithPrice sets a custom price.
func (b *UniverseTickerBuilder) WithPrice(price float64) *UniverseTickerBuilder {
	b.Ticker.Price = price
	return b
}

// WithPayments sets monthly payments ending on 2024-12-15, oldest first.
// TTM dividend, yield, frequency and last payout are derived from them.
func (b *UniverseTickerBuilder) WithPayments(amounts ...float64) *UniverseTickerBuilder {
	last := time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC)
	b.Ticker.Payments = make([]model.DividendPayment, len(amounts))
	b.Ticker.TTMDividend = 0
	for i, a := range amounts {
		d := last.AddDate(0, i-len(amounts)+1, 0)
		b.Ticker.Payments[i] = model.DividendPayment{Date: d.Format(timeseries.DateLayout), Amount: a}
		b.Ticker.TTMDividend += a
	}
	b.Ticker.LastDiv = 0
	if len(amounts) > 0 {
		b.Ticker.LastDiv = amounts[len(amounts)-1]
	}
	b.Ticker.Yield = 0
	if b.Ticker.Price > 0 {
		b.Ticker.Yield = b.Ticker.TTMDividend / b.Ticker.Price
	}
	switch n := len(amounts); {
	case n >= 10:
		b.Ticker.Frequency = "Monthly"
	case n >= 3:
		b.Ticker.Frequency = "Quarterly"
	case n >= 1:
		b.Ticker.Frequency = "Semi-Annual/Annual"
	default:
		b.Ticker.Frequency = "Unknown"
	}
	return b
}

// Build returns the ticker without storing it.
func (b *UniverseTickerBuilder) Build() model.UniverseTicker {
	return b.Ticker
}

// StoreUniverse records a completed refresh holding tickers and returns it.
func StoreUniverse(t *testing.T, db *sql.DB, tickers ...model.UniverseTicker) model.UniverseRefresh {
	t.Helper()

	ctx := context.Background()
	repo := repository.NewUniverseRepository(db)

	finished := time.Now().UTC().Truncate(time.Second)
	refresh := model.UniverseRefresh{
		ID:        MakeID(),
		StartedAt: finished.Add(-time.Minute),
		Status:    model.RefreshRunning,
	}
	if err := repo.InsertRefresh(ctx, refresh); err != nil {
		t.Fatalf("Failed to insert refresh: %v", err)
	}
	if err := repo.ReplaceUniverse(ctx, refresh.ID, tickers); err != nil {
		t.Fatalf("Failed to store universe: %v", err)
	}

	refresh.FinishedAt = &finished
	refresh.TotalTickers = len(tickers)
	refresh.Status = model.RefreshComplete
	if err := repo.FinishRefresh(ctx, refresh); err != nil {
		t.Fatalf("Failed to finish refresh: %v", err)
	}
	return refresh
}
