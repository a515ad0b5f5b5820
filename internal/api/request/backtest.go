package request

import "github.com/ndewijer/Dividend-Portfolio-Backtester/internal/model"

// BacktestRequest represents the request body for running a backtest.
// EndDate defaults to today, InitialCapital to the configured default and Benchmark
// to the configured benchmark ticker.
type BacktestRequest struct {
	Portfolio      []model.Holding `json:"portfolio"`
	StartDate      string          `json:"startDate"`
	EndDate        string          `json:"endDate,omitempty"`
	InitialCapital *float64        `json:"initialCapital,omitempty"`
	Benchmark      string          `json:"benchmark,omitempty"`
}
