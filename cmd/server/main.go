package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/api"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/backtest"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/config"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/database"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/marketdata"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/repository"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/scheduler"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/service"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/version"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/yahoo"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Create repositories
	marketRepo := repository.NewMarketRepository(db)
	universeRepo := repository.NewUniverseRepository(db)

	// Market data: Yahoo behind the local cache
	yahooClient := yahoo.NewFinanceClient(cfg.MarketData.YahooBaseURL, cfg.MarketData.YahooTimeout)
	provider := marketdata.NewCachedProvider(
		marketdata.NewYahooProvider(yahooClient),
		marketRepo,
		cfg.MarketData.CacheTTL,
	)

	// Create services
	systemService := service.NewSystemService(db, universeRepo, cfg.Backtest.Benchmark, map[string]bool{
		"backtest":          true,
		"universe":          true,
		"universe_schedule": cfg.Universe.Cron != "",
		"refresh_auth":      cfg.Security.APIKey != "",
	})
	backtestService := service.NewBacktestService(
		provider,
		backtest.NewEngine(cfg.Backtest.Benchmark),
		cfg.Backtest.InitialCapital,
		cfg.Backtest.FetchConcurrency,
	)
	universeService := service.NewUniverseService(
		yahooClient,
		universeRepo,
		cfg.Universe.Dir,
		cfg.Backtest.FetchConcurrency,
	)

	// Schedule the universe refresh
	var sched *scheduler.Scheduler
	if cfg.Universe.Cron != "" {
		sched, err = scheduler.New(cfg.Universe.Cron, func(ctx context.Context) {
			if _, err := universeService.Refresh(ctx); err != nil {
				log.Printf("Scheduled universe refresh failed: %v", err)
			}
		})
		if err != nil {
			log.Fatalf("Failed to schedule universe refresh: %v", err)
		}
		sched.Start()
		log.Printf("Universe refresh scheduled (%s), next run %s", cfg.Universe.Cron, sched.Next().Format(time.RFC3339))
	}

	// Create router
	router := api.NewRouter(systemService, backtestService, universeService, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// a cold backtest or a universe refresh fans out to the upstream API
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server %s on %s", version.Version, cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if sched != nil {
		if err := sched.Stop(ctx); err != nil {
			log.Printf("Scheduled refresh did not stop in time: %v", err)
		}
	}

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
