package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/api/request"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/apperrors"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/backtest"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/marketdata"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/model"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/timeseries"
)

// BacktestService resolves request defaults, gathers market data for every ticker
// and hands the result to the backtest engine.
type BacktestService struct {
	provider       marketdata.Provider
	engine         *backtest.Engine
	initialCapital float64
	concurrency    int
	now            func() time.Time
}

// NewBacktestService creates a new BacktestService.
// initialCapital <= 0 selects backtest.DefaultInitialCapital and concurrency < 1 fetches
// one ticker at a time.
func NewBacktestService(
	provider marketdata.Provider,
	engine *backtest.Engine,
	initialCapital float64,
	concurrency int,
) *BacktestService {
	if initialCapital <= 0 {
		initialCapital = backtest.DefaultInitialCapital
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &BacktestService{
		provider:       provider,
		engine:         engine,
		initialCapital: initialCapital,
		concurrency:    concurrency,
		now:            time.Now,
	}
}

// tickerData is the market data gathered for one ticker.
type tickerData struct {
	prices    timeseries.Series
	dividends timeseries.Series
	err       error
}

// RunBacktest runs one backtest for req.
//
// Tickers whose data cannot be fetched are logged and treated as absent, so a run only
// fails on what the engine itself rejects: apperrors.ErrDataUnavailable when no ticker
// has prices and apperrors.ErrInsufficientHistory when the aligned history is too short.
// A benchmark that cannot be fetched leaves the benchmark fields of the report empty.
func (s *BacktestService) RunBacktest(ctx context.Context, req request.BacktestRequest) (model.BacktestReport, error) {
	start, err := time.Parse(timeseries.DateLayout, strings.TrimSpace(req.StartDate))
	if err != nil {
		return model.BacktestReport{}, fmt.Errorf("%w: start date %q", apperrors.ErrInvalidDate, req.StartDate)
	}

	end := timeseries.Day(s.now())
	if strings.TrimSpace(req.EndDate) != "" {
		end, err = time.Parse(timeseries.DateLayout, strings.TrimSpace(req.EndDate))
		if err != nil {
			return model.BacktestReport{}, fmt.Errorf("%w: end date %q", apperrors.ErrInvalidDate, req.EndDate)
		}
	}
	if end.Before(start) {
		return model.BacktestReport{}, apperrors.ErrInvalidDateRange
	}
	if len(req.Portfolio) == 0 {
		return model.BacktestReport{}, apperrors.ErrEmptyPortfolio
	}

	capital := s.initialCapital
	if req.InitialCapital != nil {
		capital = *req.InitialCapital
	}

	engine := s.engine
	if b := strings.ToUpper(strings.TrimSpace(req.Benchmark)); b != "" && b != engine.Benchmark() {
		engine = backtest.NewEngine(b)
	}

	portfolio := NormalizeHoldings(req.Portfolio)
	tickers := distinctTickers(portfolio)

	results := make([]tickerData, len(tickers))
	var benchmark timeseries.Series

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, ticker := range tickers {
		g.Go(func() error {
			results[i] = s.fetchTicker(ctx, ticker, start, end)
			return nil
		})
	}
	g.Go(func() error {
		prices, err := s.provider.PriceSeries(ctx, engine.Benchmark(), start, end)
		if err != nil {
			log.Printf("benchmark %s unavailable: %v", engine.Benchmark(), err)
			return nil
		}
		benchmark = prices
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return model.BacktestReport{}, err
	}

	in := backtest.Input{
		Portfolio:      portfolio,
		Start:          start,
		End:            end,
		InitialCapital: capital,
		Prices:         make(map[string]timeseries.Series, len(tickers)),
		Dividends:      make(map[string]timeseries.Series, len(tickers)),
		Benchmark:      benchmark,
	}
	for i, ticker := range tickers {
		if results[i].err != nil {
			log.Printf("skipping %s: %v", ticker, results[i].err)
			continue
		}
		in.Prices[ticker] = results[i].prices
		in.Dividends[ticker] = results[i].dividends
	}

	return engine.Run(in)
}

func (s *BacktestService) fetchTicker(ctx context.Context, ticker string, start, end time.Time) tickerData {
	prices, err := s.provider.PriceSeries(ctx, ticker, start, end)
	if err != nil {
		return tickerData{err: fmt.Errorf("prices: %w", err)}
	}
	dividends, err := s.provider.DividendSeries(ctx, ticker, start, end)
	if err != nil {
		if ctx.Err() != nil {
			return tickerData{err: fmt.Errorf("dividends: %w", err)}
		}
		log.Printf("dividends unavailable for %s, counting none: %v", ticker, err)
		return tickerData{prices: prices, dividends: timeseries.Series{}}
	}
	return tickerData{prices: prices, dividends: dividends}
}

// NormalizeHoldings trims and upper-cases tickers, keeping order and weights.
func NormalizeHoldings(holdings []model.Holding) []model.Holding {
	out := make([]model.Holding, len(holdings))
	for i, h := range holdings {
		out[i] = model.Holding{
			Ticker: strings.ToUpper(strings.TrimSpace(h.Ticker)),
			Weight: h.Weight,
		}
	}
	return out
}

func distinctTickers(holdings []model.Holding) []string {
	seen := make(map[string]bool, len(holdings))
	tickers := make([]string, 0, len(holdings))
	for _, h := range holdings {
		if seen[h.Ticker] {
			continue
		}
		seen[h.Ticker] = true
		tickers = append(tickers, h.Ticker)
	}
	return tickers
}
