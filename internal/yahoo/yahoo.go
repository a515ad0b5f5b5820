package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// DefaultBaseURL is the public Yahoo Finance query host.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client is the subset of the Yahoo Finance API the application depends on.
// It is satisfied by *FinanceClient and by test mocks.
type Client interface {
	QuerySymbolByDateRange(ctx context.Context, symbol string, startDate, endDate time.Time) (Response, error)
	ParseChart(yahooResult Response) (PriceChart, error)
}

// FinanceClient provides methods for fetching daily closes and dividend events from
// the Yahoo Finance chart API.
type FinanceClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewFinanceClient creates a new Yahoo Finance client.
// An empty baseURL selects DefaultBaseURL; a zero timeout leaves requests bounded
// only by the caller's context.
func NewFinanceClient(baseURL string, timeout time.Duration) *FinanceClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &FinanceClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// ParseChart converts a raw Yahoo Finance API response into a structured price chart.
// This method extracts close prices, dividend events and symbol metadata.
//
// The method performs validation to ensure:
//   - A result is present
//   - Close price data is present when timestamps are present
//   - Timestamp and close arrays have matching lengths
//
// A chart with no timestamps is valid and yields no closes; it is up to the caller
// to decide whether that is an error.
func (c *FinanceClient) ParseChart(yahooResult Response) (PriceChart, error) {
	if len(yahooResult.Chart.Result) == 0 {
		return PriceChart{}, fmt.Errorf("no results returned")
	}
	result := yahooResult.Chart.Result[0]

	chart := PriceChart{
		Symbol:         result.Meta.Symbol,
		Currency:       result.Meta.Currency,
		ExchangeName:   result.Meta.ExchangeName,
		InstrumentType: result.Meta.InstrumentType,
		LongName:       result.Meta.LongName,
		Shortname:      result.Meta.Shortname,
		MarketPrice:    result.Meta.RegularMarketPrice,
		Closes:         []DailyClose{},
		Dividends:      []Dividend{},
	}

	if len(result.Timestamp) > 0 {
		if len(result.Indicators.Quote) == 0 || len(result.Indicators.Quote[0].Close) == 0 {
			return PriceChart{}, fmt.Errorf("no close prices returned")
		}
		closes := result.Indicators.Quote[0].Close
		if len(closes) != len(result.Timestamp) {
			return PriceChart{}, fmt.Errorf("mismatched data lengths")
		}

		for i, ts := range result.Timestamp {
			if closes[i] == nil {
				continue
			}
			chart.Closes = append(chart.Closes, DailyClose{
				Date:  time.Unix(ts, 0).UTC(),
				Close: *closes[i],
			})
		}
	}

	for _, d := range result.Events.Dividends {
		chart.Dividends = append(chart.Dividends, Dividend{
			Date:   time.Unix(d.Date, 0).UTC(),
			Amount: d.Amount,
		})
	}
	sort.Slice(chart.Dividends, func(i, j int) bool {
		return chart.Dividends[i].Date.Before(chart.Dividends[j].Date)
	})

	return chart, nil
}

// QuerySymbolByDateRange fetches daily closes and dividend events for a symbol within
// a date range.
//
// Parameters:
//   - ctx: Request context, cancelling it aborts the HTTP call
//   - symbol: Ticker symbol (e.g., "SCHD", "KO")
//   - startDate: Beginning of date range (inclusive)
//   - endDate: End of date range (exclusive, Yahoo's period2)
//
// Returns:
//   - Response: Raw API response containing price data for the range
//   - error: If the HTTP request fails, API returns an error, or no results found
func (c *FinanceClient) QuerySymbolByDateRange(ctx context.Context, symbol string, startDate, endDate time.Time) (Response, error) {
	u := fmt.Sprintf(
		"%s/v8/finance/chart/%s?interval=1d&events=div&period1=%d&period2=%d",
		c.baseURL,
		url.PathEscape(symbol),
		startDate.Unix(),
		endDate.Unix(),
	)
	result, err := c.queryYahoo(ctx, u)
	if err != nil {
		return Response{}, err
	}
	if len(result.Chart.Result) == 0 {
		return Response{}, fmt.Errorf("no results returned for symbol %s", symbol)
	}

	return result, nil
}

// queryYahoo is an internal helper that executes HTTP requests to Yahoo Finance API.
// This method handles the common logic for making requests, reading responses,
// parsing JSON, and checking for API errors.
//
// The method sets required headers:
//   - User-Agent: Mimics a browser to avoid API blocking
//   - Accept: Requests JSON response format
func (c *FinanceClient) queryYahoo(ctx context.Context, u string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Response{}, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}

	var response Response
	if err := json.Unmarshal(data, &response); err != nil {
		if resp.StatusCode != http.StatusOK {
			return Response{}, fmt.Errorf("yahoo returned status %d", resp.StatusCode)
		}
		return Response{}, err
	}

	if response.Chart.Error != nil {
		return response, fmt.Errorf("yahoo error: %s: %s", response.Chart.Error.Code, response.Chart.Error.Description)
	}
	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("yahoo returned status %d", resp.StatusCode)
	}

	return response, nil
}
