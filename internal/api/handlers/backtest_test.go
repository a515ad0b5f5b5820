package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/model"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/testutil"
)

// TestBacktestHandler_RunBacktest tests POST /api/backtest.
//
// WHY: The status code is the only way a client tells a data problem (422, retry with
// other tickers or dates) from a bad request (400) or a server fault (500).
func TestBacktestHandler_RunBacktest(t *testing.T) {
	setupHandler := func(t *testing.T) (*BacktestHandler, *testutil.MockProvider) {
		t.Helper()
		provider := testutil.NewMockProvider()
		return NewBacktestHandler(testutil.NewTestBacktestService(t, provider)), provider
	}

	t.Run("returns report for a valid portfolio", func(t *testing.T) {
		handler, provider := setupHandler(t)
		start := testutil.Date(t, "2024-01-02")
		provider.
			WithPrices("SCHD", testutil.LinearSeries(start, 10, 100, 2)).
			WithDividends("SCHD", testutil.DailySeries(testutil.Date(t, "2024-01-05"), 1)).
			WithPrices("SPY", testutil.LinearSeries(start, 10, 400, 5))

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/backtest", map[string]any{
			"portfolio": []map[string]any{{"ticker": "schd", "weight": 1}},
			"startDate": "2024-01-01",
			"endDate":   "2024-12-31",
		})
		w := httptest.NewRecorder()

		handler.RunBacktest(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var report model.BacktestReport
		if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
			t.Fatalf("Failed to decode report: %v", err)
		}

		if report.InitialCapital != 100000 {
			t.Errorf("Expected default capital 100000, got %v", report.InitialCapital)
		}
		// 18% price gain plus 1000 shares * $1 dividend
		if report.FinalValue != 119000 {
			t.Errorf("Expected final value 119000, got %v", report.FinalValue)
		}
		if report.Benchmark != "SPY" || report.BenchmarkReturn == nil {
			t.Errorf("Expected SPY benchmark with a return, got %q %v", report.Benchmark, report.BenchmarkReturn)
		}
	})

	t.Run("returns 422 when no ticker has price data", func(t *testing.T) {
		handler, provider := setupHandler(t)
		provider.WithPriceError("GONE", errors.New("delisted"))

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/backtest", map[string]any{
			"portfolio": []map[string]any{{"ticker": "GONE", "weight": 1}},
			"startDate": "2024-01-01",
			"endDate":   "2024-12-31",
		})
		w := httptest.NewRecorder()

		handler.RunBacktest(w, req)

		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("Expected 422, got %d: %s", w.Code, w.Body.String())
		}

		var body map[string]any
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&body)

		if body["error"] != MsgNoValidPriceData {
			t.Errorf("Expected error %q, got %v", MsgNoValidPriceData, body["error"])
		}
		if len(body) != 1 {
			t.Errorf("Expected failure body to carry only the error, got %v", body)
		}
	})

	t.Run("returns 422 when history is too short", func(t *testing.T) {
		handler, provider := setupHandler(t)
		provider.WithPrices("SCHD", testutil.LinearSeries(testutil.Date(t, "2024-01-02"), 5, 100, 1))

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/backtest", map[string]any{
			"portfolio": []map[string]any{{"ticker": "SCHD", "weight": 1}},
			"startDate": "2024-01-01",
			"endDate":   "2024-12-31",
		})
		w := httptest.NewRecorder()

		handler.RunBacktest(w, req)

		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("Expected 422, got %d: %s", w.Code, w.Body.String())
		}

		var body model.BacktestFailure
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&body)

		if body.Error != MsgInsufficientData {
			t.Errorf("Expected error %q, got %q", MsgInsufficientData, body.Error)
		}
	})

	t.Run("returns 400 for invalid requests", func(t *testing.T) {
		tests := []struct {
			name string
			body any
		}{
			{name: "malformed json", body: `{"portfolio": [`},
			{name: "unknown field", body: `{"portfolio":[{"ticker":"SCHD","weight":1}],"startDate":"2024-01-01","leverage":2}`},
			{name: "empty portfolio", body: map[string]any{"portfolio": []any{}, "startDate": "2024-01-01"}},
			{name: "missing start date", body: map[string]any{"portfolio": []map[string]any{{"ticker": "SCHD", "weight": 1}}}},
			{name: "end before start", body: map[string]any{
				"portfolio": []map[string]any{{"ticker": "SCHD", "weight": 1}},
				"startDate": "2024-06-01",
				"endDate":   "2024-01-01",
			}},
			{name: "all zero weights", body: map[string]any{
				"portfolio": []map[string]any{{"ticker": "SCHD", "weight": 0}},
				"startDate": "2024-01-01",
			}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				handler, provider := setupHandler(t)

				req := testutil.NewJSONRequest(t, http.MethodPost, "/api/backtest", tt.body)
				w := httptest.NewRecorder()

				handler.RunBacktest(w, req)

				if w.Code != http.StatusBadRequest {
					t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
				}
				if provider.CallCount("SCHD") != 0 {
					t.Error("Expected no market data requests for an invalid request")
				}
			})
		}
	})
}
