package middleware

import (
	"slices"

	"github.com/go-chi/cors"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/config"
)

// NewCORS builds the CORS middleware for the configured origins.
// Credentials are only allowed for an explicit origin list, never for "*".
func NewCORS(cfg config.CORSConfig) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Content-Type",
			"X-API-Key",
			"X-Time-Token",
			"X-Request-Id",
		},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: !slices.Contains(cfg.AllowedOrigins, "*"),
		MaxAge:           int(cfg.MaxAge.Seconds()),
	})
}
