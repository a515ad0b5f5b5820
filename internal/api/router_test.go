package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/api/middleware"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/config"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/testutil"
)

func setupRouter(t *testing.T, apiKey string) http.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)

	cfg := &config.Config{
		CORS:     config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Security: config.SecurityConfig{APIKey: apiKey},
	}

	return NewRouter(
		testutil.NewTestSystemService(t, db),
		testutil.NewTestBacktestService(t, testutil.NewMockProvider()),
		testutil.NewTestUniverseService(t, db, testutil.NewMockYahooClient(), t.TempDir()),
		cfg,
	)
}

// TestNewRouter tests that every route is mounted with its middleware.
//
// WHY: Handlers are unit tested directly, so a route mounted on the wrong path or
// without its parameter validation would otherwise go unnoticed.
func TestNewRouter(t *testing.T) {
	const apiKey = "test-key"

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		headers map[string]string
		want    int
	}{
		{name: "health", method: http.MethodGet, path: "/api/system/health", want: http.StatusOK},
		{name: "version", method: http.MethodGet, path: "/api/system/version", want: http.StatusOK},
		{name: "universe before refresh", method: http.MethodGet, path: "/api/universe", want: http.StatusNotFound},
		{name: "unknown ticker", method: http.MethodGet, path: "/api/universe/SCHD", want: http.StatusNotFound},
		{name: "malformed ticker", method: http.MethodGet, path: "/api/universe/bad_symbol", want: http.StatusBadRequest},
		{name: "malformed refresh id", method: http.MethodGet, path: "/api/universe/refresh/not-a-uuid", want: http.StatusBadRequest},
		{name: "unknown refresh id", method: http.MethodGet, path: "/api/universe/refresh/" + testutil.MakeID(), want: http.StatusNotFound},
		{name: "refresh without key", method: http.MethodPost, path: "/api/universe/refresh", want: http.StatusUnauthorized},
		{name: "refresh with wrong key", method: http.MethodPost, path: "/api/universe/refresh",
			headers: map[string]string{"X-API-Key": "nope", "X-Time-Token": "nope"}, want: http.StatusUnauthorized},
		// authenticated, but the mock client has no dividends for any seed ticker
		{name: "refresh with key", method: http.MethodPost, path: "/api/universe/refresh",
			headers: map[string]string{"X-API-Key": apiKey, "X-Time-Token": middleware.GenerateTimeToken(apiKey)},
			want:    http.StatusInternalServerError},
		{name: "backtest with empty body", method: http.MethodPost, path: "/api/backtest", want: http.StatusBadRequest},
		{name: "backtest without data", method: http.MethodPost, path: "/api/backtest",
			body: `{"portfolio":[{"ticker":"SCHD","weight":1}],"startDate":"2024-01-01","endDate":"2024-12-31"}`,
			want: http.StatusUnprocessableEntity},
		{name: "backtest wrong method", method: http.MethodGet, path: "/api/backtest", want: http.StatusMethodNotAllowed},
	}

	router := setupRouter(t, apiKey)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("Expected status %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

// TestNewRouter_OpenRefresh tests that refresh needs no key when none is configured.
func TestNewRouter_OpenRefresh(t *testing.T) {
	router := setupRouter(t, "")

	req := httptest.NewRequest(http.MethodPost, "/api/universe/refresh", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	// reaches the handler, which fails because no seed ticker pays dividends
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d: %s", w.Code, w.Body.String())
	}
}
