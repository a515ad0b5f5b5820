package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/timeseries"
)

// MockProvider is an in-memory marketdata.Provider for testing.
// Series are filtered to the requested window the same way the real providers do:
// prices with start <= date < end, dividends with start <= date <= end.
// It is safe for concurrent use.
type MockProvider struct {
	mu sync.Mutex

	Prices         map[string]timeseries.Series
	Dividends      map[string]timeseries.Series
	PriceErrors    map[string]error
	DividendErrors map[string]error
	// Calls counts requests per ticker across both methods.
	Calls map[string]int
}

// NewMockProvider creates an empty MockProvider. Unknown tickers return empty series.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Prices:         map[string]timeseries.Series{},
		Dividends:      map[string]timeseries.Series{},
		PriceErrors:    map[string]error{},
		DividendErrors: map[string]error{},
		Calls:          map[string]int{},
	}
}

// WithPrices configures the closes returned for ticker.
func (m *MockProvider) WithPrices(ticker string, s timeseries.Series) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prices[ticker] = s
	return m
}

// WithDividends configures the dividends returned for ticker.
func (m *MockProvider) WithDividends(ticker string, s timeseries.Series) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Dividends[ticker] = s
	return m
}

// WithPriceError makes PriceSeries fail for ticker.
func (m *MockProvider) WithPriceError(ticker string, err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PriceErrors[ticker] = err
	return m
}

// WithDividendError makes DividendSeries fail for ticker.
func (m *MockProvider) WithDividendError(ticker string, err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DividendErrors[ticker] = err
	return m
}

func (m *MockProvider) PriceSeries(_ context.Context, ticker string, start, end time.Time) (timeseries.Series, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls[ticker]++
	if err := m.PriceErrors[ticker]; err != nil {
		return nil, err
	}
	return m.Prices[ticker].Between(start, time.Time{}).Before(end), nil
}

func (m *MockProvider) DividendSeries(_ context.Context, ticker string, start, end time.Time) (timeseries.Series, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls[ticker]++
	if err := m.DividendErrors[ticker]; err != nil {
		return nil, err
	}
	return m.Dividends[ticker].Between(start, end), nil
}

// CallCount returns how many requests were made for ticker.
func (m *MockProvider) CallCount(ticker string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[ticker]
}
