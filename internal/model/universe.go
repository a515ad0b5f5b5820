package model

import "time"

// DividendPayment is one cash distribution of a ticker.
type DividendPayment struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// UniverseTicker is the dividend profile of one ticker in the reference universe.
// Yield is stored as a decimal fraction (0.055 for 5.5%).
type UniverseTicker struct {
	Symbol      string            `json:"symbol"`
	Name        string            `json:"name"`
	Sector      string            `json:"sector"`
	Price       float64           `json:"price"`
	Yield       float64           `json:"yield"`
	TTMDividend float64           `json:"ttm_dividend"`
	Frequency   string            `json:"frequency"`
	LastDiv     float64           `json:"last_div"`
	Payments    []DividendPayment `json:"payments"`
	Currency    string            `json:"currency"`
}

// UniverseRefresh records one refresh of the dividend universe.
type UniverseRefresh struct {
	ID           string     `json:"id"`
	StartedAt    time.Time  `json:"startedAt"`
	FinishedAt   *time.Time `json:"finishedAt,omitempty"`
	TotalTickers int        `json:"totalTickers"`
	Status       string     `json:"status"`
	Error        string     `json:"error,omitempty"`
}

// Universe refresh statuses.
const (
	RefreshRunning  = "running"
	RefreshComplete = "complete"
	RefreshFailed   = "failed"
)

// Universe is the stored universe together with the refresh that produced it.
type Universe struct {
	Refresh UniverseRefresh  `json:"refresh"`
	Tickers []UniverseTicker `json:"tickers"`
}
