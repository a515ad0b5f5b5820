package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/api/request"
)

// tickerPattern matches exchange tickers such as "SCHD", "BRK-B", "^GSPC" or "VWRL.AS".
var tickerPattern = regexp.MustCompile(`^\^?[A-Z0-9][A-Z0-9.\-=]{0,15}$`)

// ValidateTicker checks that a ticker is non-blank and uses ticker characters only.
// Comparison is case-insensitive.
func ValidateTicker(ticker string) error {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if t == "" {
		return fmt.Errorf("ticker is required")
	}
	if !tickerPattern.MatchString(t) {
		return fmt.Errorf("invalid ticker: %s", ticker)
	}
	return nil
}

// ValidateBacktestRequest validates a backtest request.
//
// Required fields:
//   - portfolio: at least one holding, each with a valid ticker and a finite weight >= 0,
//     no ticker listed twice and at least one weight > 0
//   - startDate: Must be in YYYY-MM-DD format
//
// Optional fields (validated if provided):
//   - endDate: Must be in YYYY-MM-DD format and not before startDate
//   - initialCapital: Must be positive and finite
//   - benchmark: Must be a valid ticker
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateBacktestRequest(req request.BacktestRequest) error {
	verr := &Error{}

	if len(req.Portfolio) == 0 {
		verr.Add("portfolio", "portfolio must contain at least one holding")
	}

	seen := make(map[string]int, len(req.Portfolio))
	positive := false
	for i, h := range req.Portfolio {
		field := fmt.Sprintf("portfolio[%d]", i)
		if err := ValidateTicker(h.Ticker); err != nil {
			verr.Add(field+".ticker", err.Error())
		} else {
			key := strings.ToUpper(strings.TrimSpace(h.Ticker))
			if first, dup := seen[key]; dup {
				verr.Add(field+".ticker", fmt.Sprintf("duplicate ticker %s (also at portfolio[%d])", key, first))
			} else {
				seen[key] = i
			}
		}

		switch {
		case math.IsNaN(h.Weight) || math.IsInf(h.Weight, 0):
			verr.Add(field+".weight", "weight must be a finite number")
		case h.Weight < 0:
			verr.Add(field+".weight", "weight cannot be negative")
		case h.Weight > 0:
			positive = true
		}
	}
	if len(req.Portfolio) > 0 && !positive {
		verr.Add("portfolio", "at least one weight must be positive")
	}

	var start time.Time
	if strings.TrimSpace(req.StartDate) == "" {
		verr.Add("startDate", "startDate is required")
	} else {
		var err error
		start, err = time.Parse("2006-01-02", strings.TrimSpace(req.StartDate))
		if err != nil {
			verr.Add("startDate", "startDate must be in YYYY-MM-DD format")
		}
	}

	if strings.TrimSpace(req.EndDate) != "" {
		end, err := time.Parse("2006-01-02", strings.TrimSpace(req.EndDate))
		switch {
		case err != nil:
			verr.Add("endDate", "endDate must be in YYYY-MM-DD format")
		case !start.IsZero() && end.Before(start):
			verr.Add("endDate", "endDate cannot be before startDate")
		}
	}

	if req.InitialCapital != nil {
		c := *req.InitialCapital
		if math.IsNaN(c) || math.IsInf(c, 0) || c <= 0 {
			verr.Add("initialCapital", "initialCapital must be positive")
		}
	}

	if strings.TrimSpace(req.Benchmark) != "" {
		if err := ValidateTicker(req.Benchmark); err != nil {
			verr.Add("benchmark", err.Error())
		}
	}

	return verr.Err()
}
