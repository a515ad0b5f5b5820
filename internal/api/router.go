package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Dividend-Portfolio-Backtester/internal/api/middleware"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/config"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	backtestService *service.BacktestService,
	universeService *service.UniverseService,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		backtestHandler := handlers.NewBacktestHandler(backtestService)
		r.Post("/backtest", backtestHandler.RunBacktest)

		r.Route("/universe", func(r chi.Router) {
			universeHandler := handlers.NewUniverseHandler(universeService)
			r.Get("/", universeHandler.Universe)

			r.Route("/refresh", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					if cfg.Security.APIKey != "" {
						r.Use(custommiddleware.NewAPIKeyMiddleware(cfg.Security.APIKey))
					}
					r.Post("/", universeHandler.Refresh)
				})
				r.With(custommiddleware.ValidateUUIDMiddleware).Get("/{uuid}", universeHandler.RefreshStatus)
			})

			r.With(custommiddleware.ValidateSymbolMiddleware).Get("/{symbol}", universeHandler.Ticker)
		})
	})

	return r
}
