package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/model"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/testutil"
)

func setupSystemHandler(t *testing.T) (*SystemHandler, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewSystemHandler(testutil.NewTestSystemService(t, db)), db
}

// TestSystemHandler_Health tests GET /api/system/health.
//
// WHY: Orchestrators restart the service on a failing health check. An empty universe must
// not count as failing; a backtest can run without it.
func TestSystemHandler_Health(t *testing.T) {
	t.Run("reports an empty universe as healthy", func(t *testing.T) {
		handler, _ := setupSystemHandler(t)

		w := httptest.NewRecorder()
		handler.Health(w, httptest.NewRequest(http.MethodGet, "/api/system/health", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		status := testutil.DecodeResponse[model.HealthStatus](t, w)

		want := model.HealthStatus{Status: "healthy", Database: "connected", Universe: model.UniverseEmpty}
		if status != want {
			t.Errorf("Expected %+v, got %+v", want, status)
		}
	})

	t.Run("reports a stored universe", func(t *testing.T) {
		handler, db := setupSystemHandler(t)
		testutil.StoreUniverse(t, db, testutil.NewUniverseTicker().WithSymbol("SCHD").Build())

		w := httptest.NewRecorder()
		handler.Health(w, httptest.NewRequest(http.MethodGet, "/api/system/health", nil))

		status := testutil.DecodeResponse[model.HealthStatus](t, w)

		if status.Universe != model.UniverseLoaded {
			t.Errorf("Expected universe %q, got %q", model.UniverseLoaded, status.Universe)
		}
	})

	t.Run("returns 503 when database is disconnected", func(t *testing.T) {
		handler, db := setupSystemHandler(t)
		db.Close()

		w := httptest.NewRecorder()
		handler.Health(w, httptest.NewRequest(http.MethodGet, "/api/system/health", nil))

		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("Expected 503, got %d: %s", w.Code, w.Body.String())
		}

		status := testutil.DecodeResponse[model.HealthStatus](t, w)

		if status.Database != "disconnected" || status.Error == "" {
			t.Errorf("Expected disconnected status with an error, got %+v", status)
		}
	})
}

func TestSystemHandler_Version(t *testing.T) {
	t.Run("reports schema, benchmark and features", func(t *testing.T) {
		handler, _ := setupSystemHandler(t)

		w := httptest.NewRecorder()
		handler.Version(w, httptest.NewRequest(http.MethodGet, "/api/system/version", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		info := testutil.DecodeResponse[model.VersionInfo](t, w)

		if info.AppVersion == "" {
			t.Error("Expected app_version to be populated")
		}
		if info.SchemaVersion != 2 || info.MigrationsPending {
			t.Errorf("Expected schema 2 with nothing pending, got %d pending=%v", info.SchemaVersion, info.MigrationsPending)
		}
		if info.Benchmark != "SPY" {
			t.Errorf("Expected benchmark SPY, got %q", info.Benchmark)
		}
		if !info.Features["universe"] {
			t.Errorf("Expected universe feature, got %v", info.Features)
		}
		if info.UniverseUpdatedAt != nil {
			t.Errorf("Expected no universe timestamp before a refresh, got %v", info.UniverseUpdatedAt)
		}
	})

	t.Run("reports the last universe refresh", func(t *testing.T) {
		handler, db := setupSystemHandler(t)
		refresh := testutil.StoreUniverse(t, db, testutil.NewUniverseTicker().WithSymbol("SCHD").Build())

		w := httptest.NewRecorder()
		handler.Version(w, httptest.NewRequest(http.MethodGet, "/api/system/version", nil))

		info := testutil.DecodeResponse[model.VersionInfo](t, w)

		if info.UniverseUpdatedAt == nil || !info.UniverseUpdatedAt.Equal(*refresh.FinishedAt) {
			t.Errorf("Expected universe timestamp %v, got %v", refresh.FinishedAt, info.UniverseUpdatedAt)
		}
	})

	t.Run("returns 500 when database is closed", func(t *testing.T) {
		handler, db := setupSystemHandler(t)
		db.Close()

		w := httptest.NewRecorder()
		handler.Version(w, httptest.NewRequest(http.MethodGet, "/api/system/version", nil))

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected 500, got %d: %s", w.Code, w.Body.String())
		}
	})
}
