package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/api/request"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/backtest"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/config"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/database"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/marketdata"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/model"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/repository"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/service"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/validation"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/version"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/yahoo"
)

// --- runCmd ---

type runCmd struct {
	portfolio string
	start     string
	end       string
	capital   float64
	benchmark string
	noCache   bool
	asJSON    bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "backtests a weighted portfolio" }
func (*runCmd) Usage() string {
	return `run -portfolio <TICKER:WEIGHT,...> -start <YYYY-MM-DD> [-end <YYYY-MM-DD>] [-capital <amount>] [-benchmark <TICKER>]

Buys the portfolio once on the first common trading day and holds it to the end date.
Dividends are collected as cash and not reinvested.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "portfolio", "", "Comma separated TICKER:WEIGHT pairs, e.g. SCHD:0.5,JEPI:0.5. Weights are normalized.")
	f.StringVar(&c.start, "start", "", "First day of the backtest.")
	f.StringVar(&c.end, "end", "", "Last day of the backtest, defaults to today.")
	f.Float64Var(&c.capital, "capital", 0, "Initial capital, defaults to DEFAULT_INITIAL_CAPITAL.")
	f.StringVar(&c.benchmark, "benchmark", "", "Benchmark ticker, defaults to BENCHMARK_TICKER.")
	f.BoolVar(&c.noCache, "no-cache", false, "Query Yahoo Finance directly instead of going through the local cache.")
	f.BoolVar(&c.asJSON, "json", false, "Print the report as JSON.")
}

func (c *runCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	holdings, err := parsePortfolio(c.portfolio)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	req := request.BacktestRequest{
		Portfolio: holdings,
		StartDate: c.start,
		EndDate:   c.end,
		Benchmark: c.benchmark,
	}
	if c.capital != 0 {
		req.InitialCapital = &c.capital
	}
	if err := validation.ValidateBacktestRequest(req); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}

	client := yahoo.NewFinanceClient(cfg.MarketData.YahooBaseURL, cfg.MarketData.YahooTimeout)
	var provider marketdata.Provider = marketdata.NewYahooProvider(client)
	if !c.noCache {
		db, err := database.Open(cfg.Database.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
			return subcommands.ExitFailure
		}
		defer closeDB(db)
		provider = marketdata.NewCachedProvider(provider, repository.NewMarketRepository(db), cfg.MarketData.CacheTTL)
	}

	svc := service.NewBacktestService(
		provider,
		backtest.NewEngine(cfg.Backtest.Benchmark),
		cfg.Backtest.InitialCapital,
		cfg.Backtest.FetchConcurrency,
	)

	report, err := svc.RunBacktest(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Backtest failed: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.asJSON {
		if err := writeJSON(os.Stdout, report); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printReport(os.Stdout, report)
	return subcommands.ExitSuccess
}

// parsePortfolio parses "SCHD:0.5,JEPI:0.5". A ticker without a weight gets weight 1.
func parsePortfolio(s string) ([]model.Holding, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("-portfolio is required")
	}

	var holdings []model.Holding
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		ticker, weight, found := strings.Cut(item, ":")
		h := model.Holding{Ticker: strings.TrimSpace(ticker), Weight: 1}
		if found {
			w, err := strconv.ParseFloat(strings.TrimSpace(weight), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid weight for %s: %q", h.Ticker, weight)
			}
			h.Weight = w
		}
		holdings = append(holdings, h)
	}
	if len(holdings) == 0 {
		return nil, fmt.Errorf("-portfolio is required")
	}
	return holdings, nil
}

func printReport(w io.Writer, r model.BacktestReport) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Period\t%s to %s\n", r.StartDate, r.EndDate)
	fmt.Fprintf(tw, "Initial capital\t%.2f\n", r.InitialCapital)
	fmt.Fprintf(tw, "Final value\t%.2f\n", r.FinalValue)
	fmt.Fprintf(tw, "Total return\t%.2f%%\n", r.TotalReturn*100)
	fmt.Fprintf(tw, "  Price\t%.2f%%\n", r.PriceReturn*100)
	fmt.Fprintf(tw, "  Dividends\t%.2f%%\n", r.DividendReturn*100)
	fmt.Fprintf(tw, "CAGR\t%.2f%%\n", r.CAGR*100)
	fmt.Fprintf(tw, "Max drawdown\t%.2f%%\n", r.MaxDrawdown*100)
	fmt.Fprintf(tw, "Volatility\t%.2f%%\n", r.Volatility*100)
	fmt.Fprintf(tw, "Sharpe ratio\t%.2f\n", r.SharpeRatio)
	if r.BenchmarkReturn != nil {
		fmt.Fprintf(tw, "%s return\t%.2f%%\n", r.Benchmark, *r.BenchmarkReturn*100)
	} else {
		fmt.Fprintf(tw, "%s return\tunavailable\n", r.Benchmark)
	}
	if r.Alpha != nil {
		fmt.Fprintf(tw, "Alpha\t%.2f%%\n", *r.Alpha*100)
	}
	//nolint:errcheck // Best effort output to the terminal
	tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// --- universeCmd ---

type universeCmd struct {
	dir string
}

func (*universeCmd) Name() string     { return "universe" }
func (*universeCmd) Synopsis() string { return "refreshes the dividend universe" }
func (*universeCmd) Usage() string {
	return `universe [-dir <directory>]

Profiles every ticker of <directory>/universe_seed.json (or a built-in list when the file is
missing), stores the result in the database and writes <directory>/dividend_universe.json.
`
}

func (c *universeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dir, "dir", "", "Directory holding the seed file and the export, defaults to UNIVERSE_DIR.")
}

func (c *universeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	dir := cfg.Universe.Dir
	if c.dir != "" {
		dir = c.dir
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeDB(db)

	svc := service.NewUniverseService(
		yahoo.NewFinanceClient(cfg.MarketData.YahooBaseURL, cfg.MarketData.YahooTimeout),
		repository.NewUniverseRepository(db),
		dir,
		cfg.Backtest.FetchConcurrency,
	)

	universe, err := svc.Refresh(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	printUniverse(os.Stdout, universe)
	return subcommands.ExitSuccess
}

func printUniverse(w io.Writer, u model.Universe) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tNAME\tPRICE\tYIELD\tFREQUENCY")
	for _, t := range u.Tickers {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f%%\t%s\n", t.Symbol, t.Name, t.Price, t.Yield*100, t.Frequency)
	}
	//nolint:errcheck // Best effort output to the terminal
	tw.Flush()
	fmt.Fprintf(w, "\n%d tickers, refresh %s\n", len(u.Tickers), u.Refresh.ID)
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing database: %v\n", err)
	}
}

// --- versionCmd ---

type versionCmd struct{}

func (*versionCmd) Name() string             { return "version" }
func (*versionCmd) Synopsis() string         { return "prints the version" }
func (*versionCmd) Usage() string            { return "version\n" }
func (*versionCmd) SetFlags(_ *flag.FlagSet) {}

func (*versionCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println(version.Version)
	return subcommands.ExitSuccess
}
