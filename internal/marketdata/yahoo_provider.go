package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/timeseries"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/yahoo"
)

// YahooProvider implements Provider on top of the Yahoo Finance chart API.
type YahooProvider struct {
	client yahoo.Client
}

// NewYahooProvider creates a YahooProvider using client for all requests.
func NewYahooProvider(client yahoo.Client) *YahooProvider {
	return &YahooProvider{client: client}
}

// PriceSeries fetches daily closes with start <= date < end.
func (p *YahooProvider) PriceSeries(ctx context.Context, ticker string, start, end time.Time) (timeseries.Series, error) {
	start, end = timeseries.Day(start), timeseries.Day(end)
	if !end.After(start) {
		return timeseries.Series{}, nil
	}

	chart, err := p.chart(ctx, ticker, start, end)
	if err != nil {
		return nil, err
	}

	points := make([]timeseries.Point, 0, len(chart.Closes))
	for _, c := range chart.Closes {
		d := timeseries.Day(c.Date)
		if d.Before(start) || !d.Before(end) {
			continue
		}
		points = append(points, timeseries.Point{Date: d, Value: c.Close})
	}
	return timeseries.New(points), nil
}

// DividendSeries fetches per-share dividends with start <= ex-date <= end.
func (p *YahooProvider) DividendSeries(ctx context.Context, ticker string, start, end time.Time) (timeseries.Series, error) {
	start, end = timeseries.Day(start), timeseries.Day(end)
	if end.Before(start) {
		return timeseries.Series{}, nil
	}

	// period2 is exclusive upstream
	chart, err := p.chart(ctx, ticker, start, end.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	points := make([]timeseries.Point, 0, len(chart.Dividends))
	for _, d := range chart.Dividends {
		points = append(points, timeseries.Point{Date: d.Date, Value: d.Amount})
	}
	return timeseries.New(points).Between(start, end), nil
}

func (p *YahooProvider) chart(ctx context.Context, ticker string, start, end time.Time) (yahoo.PriceChart, error) {
	resp, err := p.client.QuerySymbolByDateRange(ctx, ticker, start, end)
	if err != nil {
		return yahoo.PriceChart{}, fmt.Errorf("failed to query %s: %w", ticker, err)
	}
	chart, err := p.client.ParseChart(resp)
	if err != nil {
		return yahoo.PriceChart{}, fmt.Errorf("failed to parse chart for %s: %w", ticker, err)
	}
	return chart, nil
}
