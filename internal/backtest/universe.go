package backtest

import (
	"fmt"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/apperrors"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/model"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/timeseries"
)

// AlignUniverse intersects the portfolio with the tickers that have usable
// price data and renormalizes the surviving weights to sum to 1.
//
// Portfolio order is preserved. If a ticker appears more than once, its first
// weight is used. Tickers without prices are dropped and their weight is
// redistributed proportionally through the renormalization.
//
// Returns apperrors.ErrDataUnavailable when nothing survives or the surviving
// weights sum to zero.
func AlignUniverse(portfolio []model.Holding, prices map[string]timeseries.Series) ([]model.AlignedHolding, error) {
	weightByTicker := make(map[string]float64, len(portfolio))
	order := make([]string, 0, len(portfolio))
	for _, h := range portfolio {
		if _, seen := weightByTicker[h.Ticker]; seen {
			continue
		}
		weightByTicker[h.Ticker] = h.Weight
		order = append(order, h.Ticker)
	}

	aligned := make([]model.AlignedHolding, 0, len(order))
	var total float64
	for _, ticker := range order {
		if s, ok := prices[ticker]; !ok || s.Empty() {
			continue
		}
		w := weightByTicker[ticker]
		aligned = append(aligned, model.AlignedHolding{Ticker: ticker, Weight: w})
		total += w
	}

	if len(aligned) == 0 {
		return nil, fmt.Errorf("%w: none of %d tickers returned prices", apperrors.ErrDataUnavailable, len(order))
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: tickers with prices carry no weight", apperrors.ErrDataUnavailable)
	}

	for i := range aligned {
		aligned[i].Weight /= total
	}
	return aligned, nil
}
