package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/model"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/testutil"
)

func setupUniverseHandler(t *testing.T) (*UniverseHandler, *sql.DB, *testutil.MockYahooClient) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	client := testutil.NewMockYahooClient()
	svc := testutil.NewTestUniverseService(t, db, client, t.TempDir())
	return NewUniverseHandler(svc), db, client
}

func TestUniverseHandler_Universe(t *testing.T) {
	t.Run("returns 404 before the first refresh", func(t *testing.T) {
		handler, _, _ := setupUniverseHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/api/universe", nil)
		w := httptest.NewRecorder()

		handler.Universe(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns stored tickers ordered by symbol", func(t *testing.T) {
		handler, db, _ := setupUniverseHandler(t)
		refresh := testutil.StoreUniverse(t, db,
			testutil.NewUniverseTicker().WithSymbol("SCHD").WithPayments(0.6, 0.65, 0.7, 0.75).Build(),
			testutil.NewUniverseTicker().WithSymbol("JEPI").WithPayments(0.4, 0.4, 0.4, 0.4, 0.4, 0.4, 0.4, 0.4, 0.4, 0.4, 0.4, 0.4).Build(),
		)

		req := httptest.NewRequest(http.MethodGet, "/api/universe", nil)
		w := httptest.NewRecorder()

		handler.Universe(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		response := testutil.DecodeResponse[model.Universe](t, w)

		if response.Refresh.ID != refresh.ID {
			t.Errorf("Expected refresh %s, got %s", refresh.ID, response.Refresh.ID)
		}
		if len(response.Tickers) != 2 {
			t.Fatalf("Expected 2 tickers, got %d", len(response.Tickers))
		}
		if response.Tickers[0].Symbol != "JEPI" || response.Tickers[1].Symbol != "SCHD" {
			t.Errorf("Expected JEPI then SCHD, got %s then %s", response.Tickers[0].Symbol, response.Tickers[1].Symbol)
		}
		if len(response.Tickers[1].Payments) != 4 {
			t.Errorf("Expected 4 SCHD payments, got %d", len(response.Tickers[1].Payments))
		}
	})

	t.Run("filters by frequency and minimum yield", func(t *testing.T) {
		handler, db, _ := setupUniverseHandler(t)
		testutil.StoreUniverse(t, db,
			// 2.70 / 50 = 5.4%
			testutil.NewUniverseTicker().WithSymbol("SCHD").WithPayments(0.6, 0.65, 0.7, 0.75).Build(),
			// 1.00 / 50 = 2%
			testutil.NewUniverseTicker().WithSymbol("KO").WithPayments(0.25, 0.25, 0.25, 0.25).Build(),
			testutil.NewUniverseTicker().WithSymbol("O").WithPayments(0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25).Build(),
		)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/universe", map[string]string{
			"frequency": "Quarterly",
			"minYield":  "0.05",
		})
		w := httptest.NewRecorder()

		handler.Universe(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		response := testutil.DecodeResponse[model.Universe](t, w)

		if len(response.Tickers) != 1 || response.Tickers[0].Symbol != "SCHD" {
			t.Errorf("Expected only SCHD, got %+v", response.Tickers)
		}
	})

	t.Run("returns 400 for invalid filters", func(t *testing.T) {
		handler, _, _ := setupUniverseHandler(t)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/universe", map[string]string{
			"minYield": "lots",
		})
		w := httptest.NewRecorder()

		handler.Universe(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestUniverseHandler_Ticker(t *testing.T) {
	t.Run("returns ticker case-insensitively", func(t *testing.T) {
		handler, db, _ := setupUniverseHandler(t)
		testutil.StoreUniverse(t, db, testutil.NewUniverseTicker().WithSymbol("SCHD").WithPrice(27.5).Build())

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/universe/schd", map[string]string{"symbol": "schd"})
		w := httptest.NewRecorder()

		handler.Ticker(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		response := testutil.DecodeResponse[model.UniverseTicker](t, w)

		if response.Symbol != "SCHD" || response.Price != 27.5 {
			t.Errorf("Unexpected ticker %+v", response)
		}
	})

	t.Run("returns 404 for unknown symbol", func(t *testing.T) {
		handler, db, _ := setupUniverseHandler(t)
		testutil.StoreUniverse(t, db, testutil.NewUniverseTicker().WithSymbol("SCHD").Build())

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/universe/VTI", map[string]string{"symbol": "VTI"})
		w := httptest.NewRecorder()

		handler.Ticker(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestUniverseHandler_Refresh(t *testing.T) {
	t.Run("refreshes and exposes the refresh record", func(t *testing.T) {
		handler, _, client := setupUniverseHandler(t)

		// every fallback ticker pays one dividend a week ago
		weekAgo := time.Now().UTC().AddDate(0, 0, -7).Truncate(24 * time.Hour)
		resp := testutil.CreateMockYahooResponse(testutil.MockChart{
			MarketPrice: 40,
			Start:       weekAgo,
			Closes:      []float64{40},
			Dividends:   []testutil.MockDividend{{Date: weekAgo, Amount: 0.5}},
		})
		client.DefaultResponse = &resp

		w := httptest.NewRecorder()
		handler.Refresh(w, httptest.NewRequest(http.MethodPost, "/api/universe/refresh", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		universe := testutil.DecodeResponse[model.Universe](t, w)

		if universe.Refresh.Status != model.RefreshComplete {
			t.Errorf("Expected complete refresh, got %s", universe.Refresh.Status)
		}
		if len(universe.Tickers) != 8 {
			t.Errorf("Expected the 8 fallback tickers, got %d", len(universe.Tickers))
		}

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/universe/refresh/"+universe.Refresh.ID,
			map[string]string{"uuid": universe.Refresh.ID})
		w = httptest.NewRecorder()

		handler.RefreshStatus(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		refresh := testutil.DecodeResponse[model.UniverseRefresh](t, w)
		if refresh.TotalTickers != 8 {
			t.Errorf("Expected 8 tickers recorded, got %d", refresh.TotalTickers)
		}
	})

	t.Run("returns 500 when no ticker can be profiled", func(t *testing.T) {
		handler, _, _ := setupUniverseHandler(t)

		w := httptest.NewRecorder()
		handler.Refresh(w, httptest.NewRequest(http.MethodPost, "/api/universe/refresh", nil))

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected 500, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 404 for unknown refresh", func(t *testing.T) {
		handler, _, _ := setupUniverseHandler(t)
		id := testutil.MakeID()

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/universe/refresh/"+id, map[string]string{"uuid": id})
		w := httptest.NewRecorder()

		handler.RefreshStatus(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}
