package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/api/request"
)

// ValidFrequency contains the payout frequency labels accepted as a filter.
var ValidFrequency = map[string]bool{
	"Monthly": true, "Quarterly": true, "Semi-Annual/Annual": true, "Unknown": true,
}

// ValidateUniverseQuery validates the optional filters of a universe listing.
func ValidateUniverseQuery(q request.UniverseQuery) error {
	verr := &Error{}

	if q.Frequency != "" && !ValidFrequency[q.Frequency] {
		verr.Add("frequency", fmt.Sprintf("invalid frequency: %s", q.Frequency))
	}

	if strings.TrimSpace(q.MinYield) != "" {
		y, err := strconv.ParseFloat(strings.TrimSpace(q.MinYield), 64)
		if err != nil || math.IsNaN(y) || math.IsInf(y, 0) || y < 0 {
			verr.Add("minYield", "minYield must be a non-negative decimal (0.05 for 5%)")
		}
	}

	return verr.Err()
}
