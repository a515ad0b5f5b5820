// Package backtest computes the historical performance of a fixed-weight
// dividend portfolio against a benchmark.
//
// The engine is a pure function of its inputs plus the configured benchmark
// ticker: it performs no I/O, holds no state between runs and never mutates
// the series it is given. Market data retrieval belongs to the caller (see
// the marketdata and service packages).
//
// Pipeline:
//  1. AlignUniverse drops tickers without price data and renormalizes weights
//  2. the aligned price series are inner-joined on trading date
//  3. the weighted daily return path is compounded into a growth index
//  4. dividend cash is accrued on the shares bought at the first joined date
//  5. performance and risk metrics are derived and rounded into the report
package backtest

import (
	"fmt"
	"time"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/apperrors"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/model"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/timeseries"
)

const (
	// DefaultBenchmark is the benchmark ticker used when none is configured.
	DefaultBenchmark = "SPY"

	// DefaultInitialCapital is the starting capital used when none is given.
	DefaultInitialCapital = 100000.0

	// MinTradingDays is the minimum number of aligned trading dates a run needs.
	MinTradingDays = 10
)

// Input holds everything one run consumes. Prices and Dividends are keyed by
// ticker; a ticker missing from Prices is treated as having no usable data.
// Benchmark is empty when the benchmark could not be retrieved.
type Input struct {
	Portfolio      []model.Holding
	Start          time.Time
	End            time.Time
	InitialCapital float64
	Prices         map[string]timeseries.Series
	Dividends      map[string]timeseries.Series
	Benchmark      timeseries.Series
}

// Engine runs backtests against a fixed benchmark ticker.
type Engine struct {
	benchmark string
}

// NewEngine creates an Engine comparing against the given benchmark ticker.
// An empty ticker selects DefaultBenchmark.
func NewEngine(benchmark string) *Engine {
	if benchmark == "" {
		benchmark = DefaultBenchmark
	}
	return &Engine{benchmark: benchmark}
}

// Benchmark returns the ticker the engine compares against.
func (e *Engine) Benchmark() string {
	return e.benchmark
}

// Run computes the backtest report for in.
//
// Returns an error wrapping apperrors.ErrDataUnavailable when no portfolio
// ticker has price data, or apperrors.ErrInsufficientHistory when fewer than
// MinTradingDays dates survive the inner join. A missing or unusable
// benchmark never fails the run; it leaves BenchmarkReturn and Alpha nil.
func (e *Engine) Run(in Input) (model.BacktestReport, error) {
	capital := in.InitialCapital
	if capital == 0 {
		capital = DefaultInitialCapital
	}

	prices := usablePrices(in.Prices)
	aligned, err := AlignUniverse(in.Portfolio, prices)
	if err != nil {
		return model.BacktestReport{}, err
	}

	tickers := make([]string, len(aligned))
	weights := make([]float64, len(aligned))
	for i, h := range aligned {
		tickers[i] = h.Ticker
		weights[i] = h.Weight
	}

	frame, err := timeseries.InnerJoin(prices, tickers)
	if err != nil {
		return model.BacktestReport{}, fmt.Errorf("failed to align prices: %w", err)
	}
	if frame.Rows() < MinTradingDays {
		return model.BacktestReport{}, fmt.Errorf("%w: %d aligned trading days, need %d",
			apperrors.ErrInsufficientHistory, frame.Rows(), MinTradingDays)
	}

	path, err := BuildReturnPath(frame, weights)
	if err != nil {
		return model.BacktestReport{}, err
	}

	openingPrices := make(map[string]float64, len(tickers))
	for i, ticker := range tickers {
		openingPrices[ticker] = frame.Columns[i][0]
	}
	dividendCash := AccrueDividends(aligned, in.Dividends, openingPrices, capital, in.Start, in.End)

	perf := ComputePerformance(path, dividendCash, capital, in.Start, in.End)

	benchReturn, benchErr := BenchmarkReturn(in.Benchmark.Positive())

	return assembleReport(in, capital, e.benchmark, perf, benchReturn, benchErr), nil
}

// usablePrices drops non-positive closes so a bad quote counts as a missing
// date rather than a division by zero in the return path.
func usablePrices(prices map[string]timeseries.Series) map[string]timeseries.Series {
	out := make(map[string]timeseries.Series, len(prices))
	for ticker, s := range prices {
		out[ticker] = s.Positive()
	}
	return out
}

func assembleReport(in Input, capital float64, benchmark string, perf Performance, benchReturn float64, benchErr error) model.BacktestReport {
	report := model.BacktestReport{
		StartDate:      in.Start.Format(timeseries.DateLayout),
		EndDate:        in.End.Format(timeseries.DateLayout),
		InitialCapital: capital,
		FinalValue:     roundMoney(perf.FinalTotalValue),
		TotalReturn:    roundRatio(perf.TotalReturn),
		PriceReturn:    roundRatio(perf.PriceReturn),
		DividendReturn: roundRatio(perf.DividendCash / capital),
		CAGR:           roundRatio(perf.CAGR),
		MaxDrawdown:    roundRatio(perf.MaxDrawdown),
		Volatility:     roundRatio(perf.Volatility),
		SharpeRatio:    roundSharpe(perf.Sharpe),
		Benchmark:      benchmark,
	}

	if benchErr == nil {
		b := roundRatio(benchReturn)
		alpha := roundRatio(perf.TotalReturn - benchReturn)
		report.BenchmarkReturn = &b
		report.Alpha = &alpha
	}

	return report
}
