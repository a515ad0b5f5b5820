package yahoo

import "time"

// Response represents the raw JSON response structure from the Yahoo Finance chart API.
// This type maps directly to the chart response format, containing nested structures
// for metadata, timestamps, price indicators and corporate events.
//
// The structure includes:
//   - Chart.Result: Array of result objects (typically contains one element)
//   - Chart.Result[].Meta: Symbol metadata (name, currency, exchange, market price)
//   - Chart.Result[].Timestamp: Unix timestamps for each data point
//   - Chart.Result[].Indicators: Price data arrays; missing sessions are JSON null
//   - Chart.Result[].Events.Dividends: Cash distributions keyed by Unix timestamp
//   - Chart.Error: Optional error object from Yahoo API
type Response struct {
	Chart Chart `json:"chart"`
}

type Chart struct {
	Result []Result `json:"result"`
	Error  *Error   `json:"error"`
}

// Error is the error object Yahoo returns in place of results.
type Error struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type Result struct {
	Meta       Meta                `json:"meta"`
	Timestamp  []int64             `json:"timestamp"`
	Indicators IndicatorsContainer `json:"indicators"`
	Events     Events              `json:"events"`
}

type Meta struct {
	Currency           string  `json:"currency"`
	Symbol             string  `json:"symbol"`
	ExchangeName       string  `json:"exchangeName"`
	FullExchangeName   string  `json:"fullExchangeName"`
	InstrumentType     string  `json:"instrumentType"`
	LongName           string  `json:"longName"`
	Shortname          string  `json:"shortName"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	PreviousClose      float64 `json:"chartPreviousClose"`
}

type IndicatorsContainer struct {
	Quote []Quote `json:"quote"`
}

type Quote struct {
	Open   []*float64 `json:"open"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
}

type Events struct {
	Dividends map[string]DividendEvent `json:"dividends"`
}

// DividendEvent is one cash distribution as reported by Yahoo.
// Date is the ex-dividend date as a Unix timestamp.
type DividendEvent struct {
	Amount float64 `json:"amount"`
	Date   int64   `json:"date"`
}

// PriceChart represents a parsed and structured price chart from Yahoo Finance.
// This is the application's internal representation after parsing the raw Response.
//
// Sessions without a close price are left out of Closes. Dividends are sorted by date.
type PriceChart struct {
	Symbol         string       `json:"symbol"`
	Currency       string       `json:"currency"`
	ExchangeName   string       `json:"exchangeName"`
	InstrumentType string       `json:"instrumentType"`
	LongName       string       `json:"longName"`
	Shortname      string       `json:"shortName"`
	MarketPrice    float64      `json:"marketPrice"`
	Closes         []DailyClose `json:"closes"`
	Dividends      []Dividend   `json:"dividends"`
}

// DailyClose is a single session's closing price.
type DailyClose struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// Dividend is a per-share cash distribution on its ex-dividend date.
type Dividend struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
}
