package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/apperrors"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/model"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/repository"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/timeseries"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/yahoo"
)

const (
	// SeedFile is the optional list of tickers to profile, read from the universe directory.
	SeedFile = "universe_seed.json"

	// UniverseFile is the JSON export written after every successful refresh.
	UniverseFile = "dividend_universe.json"

	// TrailingWindowDays is how far back dividends count towards the trailing yield.
	TrailingWindowDays = 370

	// DividendHistoryYears is how much history a refresh fetches. A ticker is
	// only left out when it paid nothing over this whole span.
	DividendHistoryYears = 30

	metaLayout = "2006-01-02 15:04:05"
)

// FallbackSeed is profiled when no seed file exists.
var FallbackSeed = []string{"SCHD", "JEPI", "JEPQ", "DGRO", "O", "KO", "PEP", "JNJ"}

// Payout frequency labels.
const (
	FrequencyMonthly   = "Monthly"
	FrequencyQuarterly = "Quarterly"
	FrequencyAnnual    = "Semi-Annual/Annual"
	FrequencyUnknown   = "Unknown"
)

// SeedEntry is one ticker to profile. Sector is optional.
type SeedEntry struct {
	Symbol string `json:"symbol"`
	Sector string `json:"sector,omitempty"`
}

// UniverseService maintains the reference universe of dividend payers: trailing yield,
// payout frequency and recent payments per ticker.
type UniverseService struct {
	client      yahoo.Client
	repo        *repository.UniverseRepository
	dir         string
	concurrency int
	now         func() time.Time

	refreshing sync.Mutex
}

// NewUniverseService creates a new UniverseService reading its seed from and writing its
// export to dir.
func NewUniverseService(client yahoo.Client, repo *repository.UniverseRepository, dir string, concurrency int) *UniverseService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &UniverseService{
		client:      client,
		repo:        repo,
		dir:         dir,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// LoadSeed reads the seed file from the universe directory. Two layouts are accepted:
// a list of {"symbol": ..., "sector": ...} objects, or an object keyed by ticker whose
// values may carry a "sector". A missing file yields FallbackSeed.
func (s *UniverseService) LoadSeed() ([]SeedEntry, error) {
	path := filepath.Join(s.dir, SeedFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("%s not found, using fallback list", path)
		entries := make([]SeedEntry, len(FallbackSeed))
		for i, symbol := range FallbackSeed {
			entries[i] = SeedEntry{Symbol: symbol}
		}
		return entries, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	entries, err := ParseSeed(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrInvalidSeed, path, err)
	}
	log.Printf("loaded %d tickers from %s", len(entries), path)
	return entries, nil
}

// ParseSeed decodes seed file contents. Entries without a symbol are dropped, later
// duplicates of a symbol are ignored and keyed objects come back sorted by ticker.
func ParseSeed(data []byte) ([]SeedEntry, error) {
	data = bytes.TrimSpace(data)

	var raw []SeedEntry
	if bytes.HasPrefix(data, []byte("[")) {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	} else {
		var keyed map[string]struct {
			Sector string `json:"sector"`
		}
		if err := json.Unmarshal(data, &keyed); err != nil {
			return nil, err
		}
		for symbol, v := range keyed {
			raw = append(raw, SeedEntry{Symbol: symbol, Sector: v.Sector})
		}
		sort.Slice(raw, func(i, j int) bool { return raw[i].Symbol < raw[j].Symbol })
	}

	seen := make(map[string]bool, len(raw))
	entries := make([]SeedEntry, 0, len(raw))
	for _, e := range raw {
		e.Symbol = strings.ToUpper(strings.TrimSpace(e.Symbol))
		if e.Symbol == "" || seen[e.Symbol] {
			continue
		}
		seen[e.Symbol] = true
		entries = append(entries, e)
	}
	return entries, nil
}

// Refresh profiles every seed ticker, replaces the stored universe and writes the JSON
// export. Tickers that fail to fetch or have paid no dividends are skipped.
//
// Only one refresh runs at a time; a concurrent call returns apperrors.ErrRefreshInProgress.
// A refresh where every ticker was skipped is recorded as failed and leaves the stored
// universe untouched.
func (s *UniverseService) Refresh(ctx context.Context) (model.Universe, error) {
	if !s.refreshing.TryLock() {
		return model.Universe{}, apperrors.ErrRefreshInProgress
	}
	defer s.refreshing.Unlock()

	refresh := model.UniverseRefresh{
		ID:        uuid.New().String(),
		StartedAt: s.now().UTC(),
		Status:    model.RefreshRunning,
	}
	if err := s.repo.InsertRefresh(ctx, refresh); err != nil {
		return model.Universe{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRefreshUniverse, err)
	}

	tickers, err := s.profileSeed(ctx)
	if err == nil {
		err = s.repo.ReplaceUniverse(ctx, refresh.ID, tickers)
	}
	if err == nil {
		err = s.writeExport(tickers)
	}

	finished := s.now().UTC()
	refresh.FinishedAt = &finished
	refresh.TotalTickers = len(tickers)
	refresh.Status = model.RefreshComplete
	if err != nil {
		refresh.Status = model.RefreshFailed
		refresh.Error = err.Error()
	}

	// the request context may already be cancelled, the outcome is still recorded
	if ferr := s.repo.FinishRefresh(context.WithoutCancel(ctx), refresh); ferr != nil {
		log.Printf("failed to record universe refresh %s: %v", refresh.ID, ferr)
	}
	if err != nil {
		return model.Universe{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRefreshUniverse, err)
	}

	log.Printf("universe refresh %s stored %d tickers", refresh.ID, len(tickers))
	return model.Universe{Refresh: refresh, Tickers: tickers}, nil
}

func (s *UniverseService) profileSeed(ctx context.Context) ([]model.UniverseTicker, error) {
	seed, err := s.LoadSeed()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	start := timeseries.Day(now).AddDate(-DividendHistoryYears, 0, 0)
	end := timeseries.Day(now).AddDate(0, 0, 1)

	profiles := make([]*model.UniverseTicker, len(seed))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, entry := range seed {
		g.Go(func() error {
			chart, err := s.fetchChart(gctx, entry.Symbol, start, end)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Printf("error fetching %s: %v", entry.Symbol, err)
				return nil
			}
			profile, ok := BuildProfile(entry, chart, now)
			if !ok {
				log.Printf("%s: no dividend history", entry.Symbol)
				return nil
			}
			profiles[i] = &profile
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tickers := make([]model.UniverseTicker, 0, len(seed))
	for _, p := range profiles {
		if p != nil {
			tickers = append(tickers, *p)
		}
	}
	if len(seed) > 0 && len(tickers) == 0 {
		return nil, fmt.Errorf("none of the %d seed tickers could be profiled", len(seed))
	}
	return tickers, nil
}

func (s *UniverseService) fetchChart(ctx context.Context, symbol string, start, end time.Time) (yahoo.PriceChart, error) {
	resp, err := s.client.QuerySymbolByDateRange(ctx, symbol, start, end)
	if err != nil {
		return yahoo.PriceChart{}, err
	}
	return s.client.ParseChart(resp)
}

// BuildProfile derives the dividend profile of one ticker from its chart history.
// Only dividends strictly after now minus TrailingWindowDays count towards the
// trailing figures; a ticker with older payments only is profiled with frequency
// FrequencyUnknown and a zero yield. The boolean is false when the chart carries
// no dividends at all.
func BuildProfile(entry SeedEntry, chart yahoo.PriceChart, now time.Time) (model.UniverseTicker, bool) {
	if len(chart.Dividends) == 0 {
		return model.UniverseTicker{}, false
	}

	cutoff := now.AddDate(0, 0, -TrailingWindowDays)
	payments := []model.DividendPayment{}
	var ttm float64
	for _, d := range chart.Dividends {
		if !d.Date.After(cutoff) {
			continue
		}
		payments = append(payments, model.DividendPayment{
			Date:   d.Date.UTC().Format(timeseries.DateLayout),
			Amount: d.Amount,
		})
		ttm += d.Amount
	}

	price := chart.MarketPrice
	if price <= 0 && len(chart.Closes) > 0 {
		price = chart.Closes[len(chart.Closes)-1].Close
	}
	if price < 0 {
		price = 0
	}

	var yield, last float64
	if price > 0 {
		yield = ttm / price
	}
	if len(payments) > 0 {
		last = payments[len(payments)-1].Amount
	}

	name := chart.Shortname
	if name == "" {
		name = chart.LongName
	}
	if name == "" {
		name = entry.Symbol
	}

	currency := chart.Currency
	if currency == "" {
		currency = "USD"
	}

	return model.UniverseTicker{
		Symbol:      entry.Symbol,
		Name:        name,
		Sector:      sectorOf(entry, chart),
		Price:       price,
		Yield:       yield,
		TTMDividend: ttm,
		Frequency:   PayoutFrequency(len(payments)),
		LastDiv:     last,
		Payments:    payments,
		Currency:    currency,
	}, true
}

func sectorOf(entry SeedEntry, chart yahoo.PriceChart) string {
	if entry.Sector != "" {
		return entry.Sector
	}
	if chart.InstrumentType == "" || strings.EqualFold(chart.InstrumentType, "ETF") {
		return "ETF"
	}
	return chart.InstrumentType
}

// PayoutFrequency classifies a ticker by the number of payments in the trailing window.
func PayoutFrequency(payments int) string {
	switch {
	case payments >= 10:
		return FrequencyMonthly
	case payments >= 3:
		return FrequencyQuarterly
	case payments >= 1:
		return FrequencyAnnual
	default:
		return FrequencyUnknown
	}
}

// universeFileEntry is the per-ticker layout of the JSON export.
type universeFileEntry struct {
	Name        string                  `json:"name"`
	Sector      string                  `json:"sector"`
	Price       float64                 `json:"price"`
	Yield       float64                 `json:"yield"`
	TTMDividend float64                 `json:"ttm_dividend"`
	Frequency   string                  `json:"frequency"`
	LastDiv     float64                 `json:"last_div"`
	Payments    []model.DividendPayment `json:"payments"`
	Currency    string                  `json:"currency"`
}

type universeFileMeta struct {
	LastUpdated  string `json:"last_updated"`
	TotalTickers int    `json:"total_tickers"`
}

func (s *UniverseService) writeExport(tickers []model.UniverseTicker) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create universe directory: %w", err)
	}

	out := make(map[string]any, len(tickers)+1)
	for _, t := range tickers {
		out[t.Symbol] = universeFileEntry{
			Name:        t.Name,
			Sector:      t.Sector,
			Price:       t.Price,
			Yield:       t.Yield,
			TTMDividend: t.TTMDividend,
			Frequency:   t.Frequency,
			LastDiv:     t.LastDiv,
			Payments:    t.Payments,
			Currency:    t.Currency,
		}
	}
	out["_meta"] = universeFileMeta{
		LastUpdated:  s.now().Format(metaLayout),
		TotalTickers: len(tickers),
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode universe: %w", err)
	}

	path := filepath.Join(s.dir, UniverseFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// UniverseFilter narrows a universe listing. Zero values match everything.
type UniverseFilter struct {
	Frequency string
	MinYield  float64
}

func (f UniverseFilter) match(t model.UniverseTicker) bool {
	if f.Frequency != "" && t.Frequency != f.Frequency {
		return false
	}
	return t.Yield >= f.MinYield
}

// GetUniverse returns the stored tickers matching filter and the refresh that produced
// them. Returns apperrors.ErrUniverseNotFound when no refresh has completed yet.
func (s *UniverseService) GetUniverse(ctx context.Context, filter UniverseFilter) (model.Universe, error) {
	refresh, err := s.repo.LatestRefresh(ctx)
	if err != nil {
		return model.Universe{}, err
	}
	stored, err := s.repo.GetUniverse(ctx)
	if err != nil {
		return model.Universe{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveUniverse, err)
	}

	tickers := make([]model.UniverseTicker, 0, len(stored))
	for _, t := range stored {
		if filter.match(t) {
			tickers = append(tickers, t)
		}
	}
	return model.Universe{Refresh: refresh, Tickers: tickers}, nil
}

// GetTicker returns the stored profile of one ticker.
func (s *UniverseService) GetTicker(ctx context.Context, symbol string) (model.UniverseTicker, error) {
	return s.repo.GetTicker(ctx, strings.ToUpper(strings.TrimSpace(symbol)))
}

// GetRefresh returns a refresh record by ID.
func (s *UniverseService) GetRefresh(ctx context.Context, id string) (model.UniverseRefresh, error) {
	return s.repo.GetRefresh(ctx, id)
}
