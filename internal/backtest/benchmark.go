package backtest

import (
	"fmt"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/apperrors"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/timeseries"
)

// BenchmarkReturn is the simple total return (last close / first close) - 1
// of the benchmark over the run window.
//
// Returns an error wrapping apperrors.ErrBenchmarkUnavailable when the series
// has fewer than two closes or its first close is not positive. Callers degrade the benchmark
// fields instead of failing the run.
func BenchmarkReturn(closes timeseries.Series) (float64, error) {
	if closes.Len() < 2 {
		return 0, fmt.Errorf("%w: %d closes", apperrors.ErrBenchmarkUnavailable, closes.Len())
	}
	first, _ := closes.First()
	if first.Value <= 0 {
		return 0, fmt.Errorf("%w: first close is %v", apperrors.ErrBenchmarkUnavailable, first.Value)
	}
	last, _ := closes.Last()
	return last.Value/first.Value - 1, nil
}
