package indicators

import (
	"errors"
	"math"
)

// SMA represents the Simple Moving Average technical indicator
type SMA struct {
	period    int
	lastValue float64
}

// NewSMA creates a new SMA indicator
func NewSMA(period int) *SMA {
	return &SMA{
		period: period,
	}
}

// Period returns the window length.
func (s *SMA) Period() int {
	return s.period
}

// Calculate returns the SMA of the last period closes.
func (s *SMA) Calculate(closes []float64) (float64, error) {
	if s.period <= 0 {
		return 0, errors.New("SMA period must be positive")
	}
	if len(closes) < s.period {
		return 0, errors.New("insufficient data for SMA calculation")
	}

	sum := 0.0
	for i := len(closes) - s.period; i < len(closes); i++ {
		sum += closes[i]
	}

	s.lastValue = sum / float64(s.period)
	return s.lastValue, nil
}

// Series returns the rolling mean for every index. Positions before the
// first full window are NaN, as is any window that contains a NaN.
// Each window is summed afresh so rounding does not drift along the series.
func (s *SMA) Series(closes []float64) []float64 {
	out := make([]float64, len(closes))
	if s.period <= 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	for i := range closes {
		if i < s.period-1 {
			out[i] = math.NaN()
			continue
		}
		sum := 0.0
		for _, v := range closes[i-s.period+1 : i+1] {
			sum += v
		}
		out[i] = sum / float64(s.period)
	}
	if len(out) > 0 && !math.IsNaN(out[len(out)-1]) {
		s.lastValue = out[len(out)-1]
	}
	return out
}

// LastValue returns the most recent value produced by Calculate or Series.
func (s *SMA) LastValue() float64 {
	return s.lastValue
}

// GetName returns the indicator name
func (s *SMA) GetName() string {
	return "SMA"
}

// GetRequiredPeriods returns the minimum number of periods needed
func (s *SMA) GetRequiredPeriods() int {
	return s.period
}
