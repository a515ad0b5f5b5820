package backtest

import (
	"time"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/model"
	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/timeseries"
)

// AccrueDividends returns the total cash dividends collected over [start, end].
//
// Each ticker buys capital*weight / openingPrice shares once, at the start of
// the period, and collects shares * (sum of per-share dividends in the window).
// Dividend cash is credited additively and is not reinvested into more shares.
// Tickers without dividends, or without a positive opening price, contribute 0.
func AccrueDividends(
	aligned []model.AlignedHolding,
	dividends map[string]timeseries.Series,
	openingPrices map[string]float64,
	capital float64,
	start, end time.Time,
) float64 {
	var total float64
	for _, h := range aligned {
		divs, ok := dividends[h.Ticker]
		if !ok || divs.Empty() {
			continue
		}
		price := openingPrices[h.Ticker]
		if price <= 0 {
			continue
		}
		shares := capital * h.Weight / price
		total += shares * divs.Between(start, end).Sum()
	}
	return total
}
