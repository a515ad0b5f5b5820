package backtest

import (
	"math"

	"github.com/shopspring/decimal"
)

// round rounds half away from zero on the shortest decimal representation of
// value. NaN and infinities are returned unchanged.
func round(value float64, places int32) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return value
	}
	return decimal.NewFromFloat(value).Round(places).InexactFloat64()
}

// roundMoney rounds monetary totals to cents.
func roundMoney(value float64) float64 {
	return round(value, 2)
}

// roundRatio rounds returns, drawdown and volatility.
func roundRatio(value float64) float64 {
	return round(value, 4)
}

// roundSharpe rounds the Sharpe ratio to two places.
func roundSharpe(value float64) float64 {
	return round(value, 2)
}
