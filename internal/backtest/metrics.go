package backtest

import (
	"math"
	"time"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/timeseries"
	"gonum.org/v1/gonum/stat"
)

const (
	// TradingDaysPerYear annualizes daily return statistics.
	TradingDaysPerYear = 252

	// DaysPerYear converts the calendar span of a run into years.
	DaysPerYear = 365.25

	// RiskFreeRate is the fixed annual rate subtracted in the Sharpe ratio.
	RiskFreeRate = 0.05
)

// Performance holds the unrounded statistics of one run.
type Performance struct {
	FinalPriceValue float64
	FinalTotalValue float64
	DividendCash    float64
	PriceReturn     float64
	TotalReturn     float64
	Years           float64
	CAGR            float64
	MaxDrawdown     float64
	Volatility      float64
	AnnualReturn    float64
	Sharpe          float64
}

// ComputePerformance derives the summary statistics from the return path and
// the accrued dividend cash.
func ComputePerformance(path ReturnPath, dividendCash, capital float64, start, end time.Time) Performance {
	growth := path.LastIndex()

	p := Performance{
		FinalPriceValue: capital * growth,
		DividendCash:    dividendCash,
		PriceReturn:     growth - 1,
	}
	p.FinalTotalValue = p.FinalPriceValue + dividendCash
	p.TotalReturn = (p.FinalTotalValue - capital) / capital
	p.Years = YearsElapsed(start, end)
	p.CAGR = CAGR(p.FinalTotalValue, capital, p.Years)
	p.MaxDrawdown = MaxDrawdown(path.Index)

	returns := path.Returns.Values()
	p.Volatility = AnnualizedVolatility(returns)
	p.AnnualReturn = AnnualizedMean(returns)
	p.Sharpe = SharpeRatio(p.AnnualReturn, p.Volatility)

	return p
}

// YearsElapsed is the calendar span between start and end in years of 365.25 days.
func YearsElapsed(start, end time.Time) float64 {
	days := timeseries.Day(end).Sub(timeseries.Day(start)).Hours() / 24
	return days / DaysPerYear
}

// CAGR is (final/initial)^(1/years) - 1, or 0 when years is not positive.
func CAGR(final, initial, years float64) float64 {
	if years <= 0 {
		return 0
	}
	return math.Pow(final/initial, 1/years) - 1
}

// MaxDrawdown returns the most negative decline of index from its running
// peak, as a fraction. It is 0 for a non-decreasing index and never positive.
func MaxDrawdown(index timeseries.Series) float64 {
	var worst float64
	for i, peak := range index.RunningMax() {
		dd := (index[i].Value - peak.Value) / peak.Value
		if dd < worst {
			worst = dd
		}
	}
	return worst
}

// AnnualizedVolatility is the sample standard deviation of daily returns
// scaled by the square root of the trading days per year.
func AnnualizedVolatility(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	return stat.StdDev(returns, nil) * math.Sqrt(TradingDaysPerYear)
}

// AnnualizedMean is the mean daily return scaled to a year.
func AnnualizedMean(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	return stat.Mean(returns, nil) * TradingDaysPerYear
}

// SharpeRatio is (annualReturn - RiskFreeRate) / volatility, or 0 when
// volatility is not positive.
func SharpeRatio(annualReturn, volatility float64) float64 {
	if !(volatility > 0) {
		return 0
	}
	return (annualReturn - RiskFreeRate) / volatility
}
