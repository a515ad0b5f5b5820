// Package marketdata supplies daily closes and dividend histories to the backtest service.
package marketdata

import (
	"context"
	"time"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/timeseries"
)

// Provider supplies per-ticker market data.
//
// PriceSeries returns daily closes with start <= date < end. DividendSeries returns
// per-share cash dividends keyed by ex-date with start <= date <= end.
// An empty series with a nil error means the ticker has no data in the window.
type Provider interface {
	PriceSeries(ctx context.Context, ticker string, start, end time.Time) (timeseries.Series, error)
	DividendSeries(ctx context.Context, ticker string, start, end time.Time) (timeseries.Series, error)
}
