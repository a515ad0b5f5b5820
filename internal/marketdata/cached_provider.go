package marketdata

import (
	"context"
	"log"
	"time"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/repository"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/timeseries"
)

// CachedProvider serves market data from SQLite when the same ticker and window were
// fetched within the TTL, and falls through to the wrapped Provider otherwise.
//
// Cache failures never fail a read: lookup errors are treated as a miss and write
// errors are logged.
type CachedProvider struct {
	next Provider
	repo *repository.MarketRepository
	ttl  time.Duration
	now  func() time.Time
}

// NewCachedProvider wraps next with a cache backed by repo.
// A ttl of zero or less disables the cache entirely.
func NewCachedProvider(next Provider, repo *repository.MarketRepository, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		next: next,
		repo: repo,
		ttl:  ttl,
		now:  time.Now,
	}
}

func (p *CachedProvider) PriceSeries(ctx context.Context, ticker string, start, end time.Time) (timeseries.Series, error) {
	return p.load(ctx, repository.KindPrice, ticker, start, end, p.next.PriceSeries, p.repo.GetPrices)
}

func (p *CachedProvider) DividendSeries(ctx context.Context, ticker string, start, end time.Time) (timeseries.Series, error) {
	return p.load(ctx, repository.KindDividend, ticker, start, end, p.next.DividendSeries, p.repo.GetDividends)
}

type seriesFunc func(ctx context.Context, ticker string, start, end time.Time) (timeseries.Series, error)

func (p *CachedProvider) load(ctx context.Context, kind, ticker string, start, end time.Time, fetch, cached seriesFunc) (timeseries.Series, error) {
	start, end = timeseries.Day(start), timeseries.Day(end)
	if p.ttl <= 0 {
		return fetch(ctx, ticker, start, end)
	}

	now := p.now().UTC()
	fresh, err := p.repo.FreshFetch(ctx, ticker, kind, start, end, now.Add(-p.ttl))
	if err != nil {
		log.Printf("cache lookup for %s %s failed: %v", ticker, kind, err)
	}
	if fresh {
		s, err := cached(ctx, ticker, start, end)
		if err == nil {
			return s, nil
		}
		log.Printf("cache read for %s %s failed: %v", ticker, kind, err)
	}

	s, err := fetch(ctx, ticker, start, end)
	if err != nil {
		return nil, err
	}

	if err := p.repo.StoreFetch(ctx, ticker, kind, start, end, s, now); err != nil {
		log.Printf("cache write for %s %s failed: %v", ticker, kind, err)
	}
	return s, nil
}
