package validation

import (
	"errors"
	"math"
	"testing"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/api/request"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/model"
)

func TestValidateTicker(t *testing.T) {
	valid := []string{"SCHD", "schd", "BRK-B", "^GSPC", "VWRL.AS", "EURUSD=X", " O "}
	for _, ticker := range valid {
		if err := ValidateTicker(ticker); err != nil {
			t.Errorf("ValidateTicker(%q) error = %v, want nil", ticker, err)
		}
	}

	invalid := []string{"", "  ", "BAD SYMBOL", "bad_symbol", "-SCHD", "$$$", "ABCDEFGHIJKLMNOPQ"}
	for _, ticker := range invalid {
		if err := ValidateTicker(ticker); err == nil {
			t.Errorf("ValidateTicker(%q) = nil, want error", ticker)
		}
	}
}

// TestValidateBacktestRequest tests request validation.
//
// WHY: Clients use the field keys to highlight the offending input, so each problem
// must be reported under the field it belongs to.
func TestValidateBacktestRequest(t *testing.T) {
	capital := func(v float64) *float64 { return &v }
	valid := func() request.BacktestRequest {
		return request.BacktestRequest{
			Portfolio: []model.Holding{{Ticker: "SCHD", Weight: 0.6}, {Ticker: "JEPI", Weight: 0.4}},
			StartDate: "2020-01-01",
		}
	}

	tests := []struct {
		name      string
		mutate    func(*request.BacktestRequest)
		wantField string
	}{
		{name: "valid minimal request", mutate: func(*request.BacktestRequest) {}},
		{name: "valid full request", mutate: func(r *request.BacktestRequest) {
			r.EndDate = "2024-12-31"
			r.InitialCapital = capital(5000)
			r.Benchmark = "qqq"
		}},
		{name: "zero weight beside a positive one", mutate: func(r *request.BacktestRequest) { r.Portfolio[1].Weight = 0 }},
		{name: "same start and end", mutate: func(r *request.BacktestRequest) { r.EndDate = "2020-01-01" }},
		{name: "empty portfolio", mutate: func(r *request.BacktestRequest) { r.Portfolio = nil }, wantField: "portfolio"},
		{name: "all weights zero", mutate: func(r *request.BacktestRequest) {
			r.Portfolio[0].Weight, r.Portfolio[1].Weight = 0, 0
		}, wantField: "portfolio"},
		{name: "negative weight", mutate: func(r *request.BacktestRequest) { r.Portfolio[1].Weight = -1 }, wantField: "portfolio[1].weight"},
		{name: "infinite weight", mutate: func(r *request.BacktestRequest) { r.Portfolio[0].Weight = math.Inf(1) }, wantField: "portfolio[0].weight"},
		{name: "invalid ticker", mutate: func(r *request.BacktestRequest) { r.Portfolio[0].Ticker = "S C H D" }, wantField: "portfolio[0].ticker"},
		{name: "duplicate ticker", mutate: func(r *request.BacktestRequest) { r.Portfolio[1].Ticker = "schd" }, wantField: "portfolio[1].ticker"},
		{name: "missing start", mutate: func(r *request.BacktestRequest) { r.StartDate = "" }, wantField: "startDate"},
		{name: "malformed start", mutate: func(r *request.BacktestRequest) { r.StartDate = "2020/01/01" }, wantField: "startDate"},
		{name: "malformed end", mutate: func(r *request.BacktestRequest) { r.EndDate = "tomorrow" }, wantField: "endDate"},
		{name: "end before start", mutate: func(r *request.BacktestRequest) { r.EndDate = "2019-12-31" }, wantField: "endDate"},
		{name: "zero capital", mutate: func(r *request.BacktestRequest) { r.InitialCapital = capital(0) }, wantField: "initialCapital"},
		{name: "negative capital", mutate: func(r *request.BacktestRequest) { r.InitialCapital = capital(-100) }, wantField: "initialCapital"},
		{name: "invalid benchmark", mutate: func(r *request.BacktestRequest) { r.Benchmark = "S&P 500" }, wantField: "benchmark"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)

			err := ValidateBacktestRequest(req)

			if tt.wantField == "" {
				if err != nil {
					t.Errorf("ValidateBacktestRequest() error = %v, want nil", err)
				}
				return
			}
			var verr *Error
			if !errors.As(err, &verr) {
				t.Fatalf("Expected *Error, got %v", err)
			}
			if _, ok := verr.Fields[tt.wantField]; !ok {
				t.Errorf("Expected error on %s, got %v", tt.wantField, verr.Fields)
			}
		})
	}
}

func TestValidateUniverseQuery(t *testing.T) {
	tests := []struct {
		name      string
		query     request.UniverseQuery
		wantField string
	}{
		{name: "empty", query: request.UniverseQuery{}},
		{name: "all filters", query: request.UniverseQuery{Frequency: "Semi-Annual/Annual", MinYield: "0.04"}},
		{name: "zero yield", query: request.UniverseQuery{MinYield: "0"}},
		{name: "unknown frequency", query: request.UniverseQuery{Frequency: "Weekly"}, wantField: "frequency"},
		{name: "lowercase frequency", query: request.UniverseQuery{Frequency: "monthly"}, wantField: "frequency"},
		{name: "negative yield", query: request.UniverseQuery{MinYield: "-0.01"}, wantField: "minYield"},
		{name: "percent yield", query: request.UniverseQuery{MinYield: "5%"}, wantField: "minYield"},
		{name: "nan yield", query: request.UniverseQuery{MinYield: "NaN"}, wantField: "minYield"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUniverseQuery(tt.query)

			if tt.wantField == "" {
				if err != nil {
					t.Errorf("ValidateUniverseQuery() error = %v, want nil", err)
				}
				return
			}
			var verr *Error
			if !errors.As(err, &verr) {
				t.Fatalf("Expected *Error, got %v", err)
			}
			if _, ok := verr.Fields[tt.wantField]; !ok {
				t.Errorf("Expected error on %s, got %v", tt.wantField, verr.Fields)
			}
		})
	}
}

func TestValidateUUID(t *testing.T) {
	if err := ValidateUUID("550e8400-e29b-41d4-a716-446655440000"); err != nil {
		t.Errorf("ValidateUUID() error = %v", err)
	}
	if err := ValidateUUID("not-a-uuid"); !errors.Is(err, ErrInvalidUUID) {
		t.Errorf("Expected ErrInvalidUUID, got %v", err)
	}
}

// WHY: The message ends up in logs and CLI output; map iteration order must not make
// the same request produce a different message each time.
func TestError(t *testing.T) {
	verr := &Error{}
	if verr.Err() != nil {
		t.Fatalf("Expected nil error with no failures, got %v", verr.Err())
	}

	verr.Add("startDate", "startDate is required")
	verr.Add("portfolio[0].weight", "weight cannot be negative")
	verr.Add("startDate", "ignored second message")

	want := "portfolio[0].weight: weight cannot be negative; startDate: startDate is required"
	if got := verr.Err().Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
