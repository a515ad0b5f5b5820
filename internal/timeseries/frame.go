package timeseries

import (
	"fmt"
	"time"
)

// Frame is a set of aligned columns sharing one date index.
// Columns[i][r] is the value of column i on Dates[r].
type Frame struct {
	Names   []string
	Dates   []time.Time
	Columns [][]float64
}

// InnerJoin aligns the named series on the dates every one of them has.
// Rows where any column is missing are dropped; nothing is forward-filled.
// Column order follows names.
func InnerJoin(series map[string]Series, names []string) (Frame, error) {
	if len(names) == 0 {
		return Frame{}, nil
	}

	lookups := make([]map[time.Time]float64, len(names))
	for i, name := range names {
		s, ok := series[name]
		if !ok {
			return Frame{}, fmt.Errorf("no series for %s", name)
		}
		m := make(map[time.Time]float64, len(s))
		for _, p := range s {
			m[p.Date] = p.Value
		}
		lookups[i] = m
	}

	frame := Frame{
		Names:   append([]string(nil), names...),
		Columns: make([][]float64, len(names)),
	}

	// the first series is chronological, so iterating it keeps rows ordered
	for _, p := range series[names[0]] {
		row := make([]float64, len(names))
		complete := true
		for i, m := range lookups {
			v, ok := m[p.Date]
			if !ok {
				complete = false
				break
			}
			row[i] = v
		}
		if !complete {
			continue
		}
		frame.Dates = append(frame.Dates, p.Date)
		for i, v := range row {
			frame.Columns[i] = append(frame.Columns[i], v)
		}
	}

	return frame, nil
}

// Rows returns the number of aligned dates.
func (f Frame) Rows() int {
	return len(f.Dates)
}

// Column returns the aligned values of one column as a Series.
func (f Frame) Column(i int) Series {
	out := make(Series, len(f.Dates))
	for r, d := range f.Dates {
		out[r] = Point{Date: d, Value: f.Columns[i][r]}
	}
	return out
}

// WeightedReturns computes, for every row after the first, the weighted sum
// of each column's simple return. weights must have one entry per column.
func (f Frame) WeightedReturns(weights []float64) (Series, error) {
	if len(weights) != len(f.Columns) {
		return nil, fmt.Errorf("expected %d weights, got %d", len(f.Columns), len(weights))
	}
	if f.Rows() < 2 {
		return Series{}, nil
	}

	out := make(Series, 0, f.Rows()-1)
	for r := 1; r < f.Rows(); r++ {
		var total float64
		for i, col := range f.Columns {
			total += weights[i] * (col[r]/col[r-1] - 1)
		}
		out = append(out, Point{Date: f.Dates[r], Value: total})
	}
	return out, nil
}
