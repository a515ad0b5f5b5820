// Package timeseries provides ordered (date, value) sequences and the join and
// cumulative operations the backtest engine performs on them.
//
// A Series is always chronological with at most one point per calendar day.
// Arithmetic between series never broadcasts implicitly: callers align series
// with InnerJoin first and then operate on the resulting Frame rows.
package timeseries

import (
	"math"
	"sort"
	"time"
)

// DateLayout is the calendar date format used across the application.
const DateLayout = "2006-01-02"

// Point is a single observation on a trading date.
type Point struct {
	Date  time.Time
	Value float64
}

// Series is a chronological sequence of points with unique dates.
type Series []Point

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// New builds a Series from unordered points. Dates are truncated to the day,
// points are sorted, and for duplicate dates the last point given wins.
func New(points []Point) Series {
	byDay := make(map[time.Time]float64, len(points))
	for _, p := range points {
		byDay[Day(p.Date)] = p.Value
	}

	out := make(Series, 0, len(byDay))
	for d, v := range byDay {
		out = append(out, Point{Date: d, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Len returns the number of points.
func (s Series) Len() int {
	return len(s)
}

// Empty reports whether the series has no points.
func (s Series) Empty() bool {
	return len(s) == 0
}

// First returns the earliest point.
func (s Series) First() (Point, bool) {
	if len(s) == 0 {
		return Point{}, false
	}
	return s[0], true
}

// Last returns the latest point.
func (s Series) Last() (Point, bool) {
	if len(s) == 0 {
		return Point{}, false
	}
	return s[len(s)-1], true
}

// Values returns the values in date order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Sum adds up all values.
func (s Series) Sum() float64 {
	var total float64
	for _, p := range s {
		total += p.Value
	}
	return total
}

// Positive returns the points with a finite value above zero.
func (s Series) Positive() Series {
	out := Series{}
	for _, p := range s {
		if p.Value > 0 && !math.IsInf(p.Value, 1) {
			out = append(out, p)
		}
	}
	return out
}

// Between returns the points with start <= date <= end.
// A zero start or end leaves that side unbounded.
func (s Series) Between(start, end time.Time) Series {
	out := Series{}
	for _, p := range s {
		if !start.IsZero() && p.Date.Before(Day(start)) {
			continue
		}
		if !end.IsZero() && p.Date.After(Day(end)) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Before returns the points strictly before end.
func (s Series) Before(end time.Time) Series {
	out := Series{}
	for _, p := range s {
		if p.Date.Before(Day(end)) {
			out = append(out, p)
		}
	}
	return out
}

// PctChange returns the simple return value_t/value_{t-1} - 1 for every point
// after the first. The result is one point shorter than s.
func (s Series) PctChange() Series {
	if len(s) < 2 {
		return Series{}
	}
	out := make(Series, 0, len(s)-1)
	for i := 1; i < len(s); i++ {
		out = append(out, Point{
			Date:  s[i].Date,
			Value: s[i].Value/s[i-1].Value - 1,
		})
	}
	return out
}

// CumProd compounds a return series into a growth index starting from 1.0:
// index_t = product of (1 + r) for all points up to and including t.
func (s Series) CumProd() Series {
	out := make(Series, len(s))
	growth := 1.0
	for i, p := range s {
		growth *= 1 + p.Value
		out[i] = Point{Date: p.Date, Value: growth}
	}
	return out
}

// RunningMax returns the maximum value seen so far at every point.
func (s Series) RunningMax() Series {
	out := make(Series, len(s))
	for i, p := range s {
		peak := p.Value
		if i > 0 && out[i-1].Value > peak {
			peak = out[i-1].Value
		}
		out[i] = Point{Date: p.Date, Value: peak}
	}
	return out
}
