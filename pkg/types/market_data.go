package types

import (
	"math"
	"time"
)

// PriceBar is one dated closing price. Close may be NaN when the source
// cell could not be parsed; consumers drop those rows.
type PriceBar struct {
	Date  time.Time
	Close float64
}

// PriceSeries is an ordered, read-only sequence of closing prices.
type PriceSeries []PriceBar

// Closes returns the closing prices in order, NaN values included.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, bar := range s {
		out[i] = bar.Close
	}
	return out
}

// Valid returns the number of bars with a finite close.
func (s PriceSeries) Valid() int {
	n := 0
	for _, bar := range s {
		if !math.IsNaN(bar.Close) && !math.IsInf(bar.Close, 0) {
			n++
		}
	}
	return n
}

// Span returns the first and last dates of the series.
func (s PriceSeries) Span() (time.Time, time.Time) {
	if len(s) == 0 {
		return time.Time{}, time.Time{}
	}
	return s[0].Date, s[len(s)-1].Date
}

// Slice returns bars with index in [from, to).
func (s PriceSeries) Slice(from, to int) PriceSeries {
	if from < 0 {
		from = 0
	}
	if to > len(s) {
		to = len(s)
	}
	if from >= to {
		return PriceSeries{}
	}
	out := make(PriceSeries, to-from)
	copy(out, s[from:to])
	return out
}
