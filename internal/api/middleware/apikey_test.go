package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/api/middleware"
)

// TestAPIKeyMiddleware tests the guard placed in front of the universe refresh endpoint.
//
// WHY: A refresh fans out to the market data API for every seed ticker. Anyone able to
// trigger it at will can get the server rate limited upstream.
func TestAPIKeyMiddleware(t *testing.T) {
	const testAPIKey = "test-api-key-12345"

	run := func(t *testing.T, apiKey string, headers map[string]string) (*httptest.ResponseRecorder, bool) {
		t.Helper()

		handlerCalled := false
		testHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			handlerCalled = true
			w.WriteHeader(http.StatusOK)
		})

		mw := middleware.NewAPIKeyMiddleware(apiKey)(testHandler)

		req := httptest.NewRequest(http.MethodPost, "/api/universe/refresh", nil)
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, req)
		return w, handlerCalled
	}

	details := func(t *testing.T, w *httptest.ResponseRecorder) string {
		t.Helper()
		var response map[string]string
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)
		return response["details"]
	}

	tests := []struct {
		name        string
		apiKey      string
		headers     map[string]string
		wantStatus  int
		wantDetails string
	}{
		{
			name:        "rejects request without API key",
			apiKey:      testAPIKey,
			wantStatus:  http.StatusUnauthorized,
			wantDetails: "Missing API key",
		},
		{
			name:        "rejects request with invalid API key",
			apiKey:      testAPIKey,
			headers:     map[string]string{"X-API-Key": "invalid"},
			wantStatus:  http.StatusUnauthorized,
			wantDetails: "Invalid API key",
		},
		{
			name:        "rejects request without time token",
			apiKey:      testAPIKey,
			headers:     map[string]string{"X-API-Key": testAPIKey},
			wantStatus:  http.StatusUnauthorized,
			wantDetails: "Missing Time token",
		},
		{
			name:        "rejects request with invalid time token",
			apiKey:      testAPIKey,
			headers:     map[string]string{"X-API-Key": testAPIKey, "X-Time-Token": "invalid"},
			wantStatus:  http.StatusUnauthorized,
			wantDetails: "Time token is invalid or expired",
		},
		{
			name:        "rejects time token generated with another key",
			apiKey:      testAPIKey,
			headers:     map[string]string{"X-API-Key": testAPIKey, "X-Time-Token": middleware.GenerateTimeToken("other")},
			wantStatus:  http.StatusUnauthorized,
			wantDetails: "Time token is invalid or expired",
		},
		{
			name:        "fails when no key is configured",
			apiKey:      "",
			headers:     map[string]string{"X-API-Key": testAPIKey},
			wantStatus:  http.StatusInternalServerError,
			wantDetails: "Authentication not loaded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, called := run(t, tt.apiKey, tt.headers)
			if called {
				t.Error("Expected request not to complete.")
			}
			if w.Code != tt.wantStatus {
				t.Errorf("Expected %d, got %d", tt.wantStatus, w.Code)
			}
			if got := details(t, w); got != tt.wantDetails {
				t.Errorf("Expected '%s' error, got '%s'", tt.wantDetails, got)
			}
		})
	}

	t.Run("allows request with valid API key and time token", func(t *testing.T) {
		w, called := run(t, testAPIKey, map[string]string{
			"X-API-Key":    testAPIKey,
			"X-Time-Token": middleware.GenerateTimeToken(testAPIKey),
		})
		if !called {
			t.Error("Expected handler to complete.")
		}
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})
}
