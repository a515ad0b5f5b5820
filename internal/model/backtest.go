package model

// Holding is one (ticker, raw weight) entry of a portfolio.
// Raw weights need not sum to 1; they are normalized before use.
type Holding struct {
	Ticker string  `json:"ticker"`
	Weight float64 `json:"weight"`
}

// AlignedHolding is a holding that has usable price data, with its weight
// renormalized across the aligned universe.
type AlignedHolding struct {
	Ticker string
	Weight float64
}

// BacktestReport is the result of a successful backtest run.
// Monetary values are rounded to 2 decimals, ratios to 4 and the Sharpe ratio to 2.
// BenchmarkReturn and Alpha are nil when the benchmark was unavailable.
type BacktestReport struct {
	StartDate       string   `json:"start_date"`
	EndDate         string   `json:"end_date"`
	InitialCapital  float64  `json:"initial_capital"`
	FinalValue      float64  `json:"final_value"`
	TotalReturn     float64  `json:"total_return"`
	PriceReturn     float64  `json:"price_return"`
	DividendReturn  float64  `json:"dividend_return"`
	CAGR            float64  `json:"cagr"`
	MaxDrawdown     float64  `json:"max_drawdown"`
	Volatility      float64  `json:"volatility"`
	SharpeRatio     float64  `json:"sharpe_ratio"`
	Benchmark       string   `json:"benchmark"`
	BenchmarkReturn *float64 `json:"benchmark_return"`
	Alpha           *float64 `json:"alpha"`
}

// BacktestFailure is the body returned when a run aborts. It carries no numeric fields.
type BacktestFailure struct {
	Error string `json:"error"`
}
