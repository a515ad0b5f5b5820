package backtest

import (
	"fmt"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/timeseries"
)

// ReturnPath is the portfolio's daily return series and the price-only growth
// index compounded from it. Both are one point shorter than the price table,
// since the first aligned date has no return.
type ReturnPath struct {
	Returns timeseries.Series
	Index   timeseries.Series
}

// BuildReturnPath computes the weighted daily portfolio return for every row
// of the joined price table and compounds it into a growth index from 1.0.
func BuildReturnPath(frame timeseries.Frame, weights []float64) (ReturnPath, error) {
	returns, err := frame.WeightedReturns(weights)
	if err != nil {
		return ReturnPath{}, fmt.Errorf("failed to compute portfolio returns: %w", err)
	}
	return ReturnPath{
		Returns: returns,
		Index:   returns.CumProd(),
	}, nil
}

// LastIndex returns the final growth factor, or 1 for an empty path.
func (p ReturnPath) LastIndex() float64 {
	last, ok := p.Index.Last()
	if !ok {
		return 1
	}
	return last.Value
}
