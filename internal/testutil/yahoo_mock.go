package testutil

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/yahoo"
)

// MockYahooClient is a mock implementation of yahoo.Client for testing.
// It returns predefined test data per symbol instead of making actual API calls.
// It is safe for concurrent use.
type MockYahooClient struct {
	mu sync.Mutex

	// Responses maps a symbol to the response returned for it.
	Responses map[string]yahoo.Response
	// Errors maps a symbol to the error returned for it.
	Errors map[string]error
	// DefaultResponse is returned for symbols with no entry in Responses.
	DefaultResponse *yahoo.Response
	// Queries records every queried symbol in call order.
	Queries []string
}

// NewMockYahooClient creates a new mock Yahoo client with no configured symbols.
// Unconfigured symbols return an empty result.
func NewMockYahooClient() *MockYahooClient {
	return &MockYahooClient{
		Responses: map[string]yahoo.Response{},
		Errors:    map[string]error{},
	}
}

// QuerySymbolByDateRange returns the configured response or error for symbol.
func (m *MockYahooClient) QuerySymbolByDateRange(_ context.Context, symbol string, _, _ time.Time) (yahoo.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Queries = append(m.Queries, symbol)
	if err, ok := m.Errors[symbol]; ok {
		return yahoo.Response{}, err
	}
	if resp, ok := m.Responses[symbol]; ok {
		return resp, nil
	}
	if m.DefaultResponse != nil {
		return *m.DefaultResponse, nil
	}
	return yahoo.Response{Chart: yahoo.Chart{Result: []yahoo.Result{{Meta: yahoo.Meta{Symbol: symbol}}}}}, nil
}

// ParseChart delegates to the real ParseChart method since it's pure logic with no side effects.
func (m *MockYahooClient) ParseChart(yahooResult yahoo.Response) (yahoo.PriceChart, error) {
	// Use the real implementation for parsing since it's deterministic
	client := yahoo.NewFinanceClient("", 0)
	return client.ParseChart(yahooResult)
}

// WithError configures the mock to return err for symbol.
func (m *MockYahooClient) WithError(symbol string, err error) *MockYahooClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[symbol] = err
	return m
}

// WithResponse configures the mock to return resp for symbol.
func (m *MockYahooClient) WithResponse(symbol string, resp yahoo.Response) *MockYahooClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[symbol] = resp
	return m
}

// QueryCount returns how many queries were made for symbol.
func (m *MockYahooClient) QueryCount(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, q := range m.Queries {
		if q == symbol {
			n++
		}
	}
	return n
}

// MockDividend is one dividend event in a mock chart.
type MockDividend struct {
	Date   time.Time
	Amount float64
}

// MockChart describes a mock Yahoo chart response.
type MockChart struct {
	Symbol         string
	ShortName      string
	LongName       string
	Currency       string
	InstrumentType string
	MarketPrice    float64
	// Start is the date of the first close; closes are on consecutive calendar days.
	Start     time.Time
	Closes    []float64
	Dividends []MockDividend
}

// CreateMockYahooResponse builds a Yahoo Finance API response from c.
// A close of 0 is encoded as a JSON null to mimic a missing session.
func CreateMockYahooResponse(c MockChart) yahoo.Response {
	timestamps := make([]int64, len(c.Closes))
	closes := make([]*float64, len(c.Closes))
	for i, v := range c.Closes {
		// session timestamps are market open, not midnight
		timestamps[i] = c.Start.AddDate(0, 0, i).Add(14*time.Hour + 30*time.Minute).Unix()
		if v == 0 {
			continue
		}
		closes[i] = &v
	}

	var dividends map[string]yahoo.DividendEvent
	if len(c.Dividends) > 0 {
		dividends = make(map[string]yahoo.DividendEvent, len(c.Dividends))
		for _, d := range c.Dividends {
			ts := d.Date.Add(14*time.Hour + 30*time.Minute).Unix()
			dividends[strconv.FormatInt(ts, 10)] = yahoo.DividendEvent{Amount: d.Amount, Date: ts}
		}
	}

	currency := c.Currency
	if currency == "" {
		currency = "USD"
	}

	return yahoo.Response{
		Chart: yahoo.Chart{
			Result: []yahoo.Result{
				{
					Meta: yahoo.Meta{
						Symbol:             c.Symbol,
						Currency:           currency,
						ExchangeName:       "PCX",
						InstrumentType:     c.InstrumentType,
						LongName:           c.LongName,
						Shortname:          c.ShortName,
						RegularMarketPrice: c.MarketPrice,
					},
					Timestamp: timestamps,
					Indicators: yahoo.IndicatorsContainer{
						Quote: []yahoo.Quote{{Close: closes}},
					},
					Events: yahoo.Events{Dividends: dividends},
				},
			},
		},
	}
}
