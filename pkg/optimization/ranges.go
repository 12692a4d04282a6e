package optimization

import (
	"math"

	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
)

// IntRange is an inclusive integer interval.
type IntRange struct {
	Min int `json:"min" mapstructure:"min"`
	Max int `json:"max" mapstructure:"max"`
}

// FloatRange is an inclusive float interval.
type FloatRange struct {
	Min float64 `json:"min" mapstructure:"min"`
	Max float64 `json:"max" mapstructure:"max"`
}

// ParameterSpace defines the parameter ranges for optimization
type ParameterSpace struct {
	MIntervals        IntRange   `json:"m_intervals" mapstructure:"m_intervals"`
	HoldDays          IntRange   `json:"hold_days" mapstructure:"hold_days"`
	TargetProfitRatio FloatRange `json:"target_profit_ratio" mapstructure:"target_profit_ratio"`
	Alpha             FloatRange `json:"alpha" mapstructure:"alpha"`
}

// DefaultParameterSpace returns the default optimization ranges. The
// profit-ratio maximum only bounds random generation; mutation may push
// it higher.
func DefaultParameterSpace() ParameterSpace {
	return ParameterSpace{
		MIntervals:        IntRange{Min: 5, Max: 50},
		HoldDays:          IntRange{Min: 1, Max: 30},
		TargetProfitRatio: FloatRange{Min: 0.02, Max: 1.0},
		Alpha:             FloatRange{Min: 0.5, Max: 99.0},
	}
}

// Contains reports whether p lies inside the space.
func (s ParameterSpace) Contains(p types.TradingParameters) bool {
	return p.MIntervals >= s.MIntervals.Min && p.MIntervals <= s.MIntervals.Max &&
		p.HoldDays >= s.HoldDays.Min && p.HoldDays <= s.HoldDays.Max &&
		p.TargetProfitRatio >= s.TargetProfitRatio.Min &&
		p.Alpha >= s.Alpha.Min && p.Alpha <= s.Alpha.Max
}

// Clamp pulls p back inside the space.
func (s ParameterSpace) Clamp(p types.TradingParameters) types.TradingParameters {
	p.MIntervals = clampInt(p.MIntervals, s.MIntervals.Min, s.MIntervals.Max)
	p.HoldDays = clampInt(p.HoldDays, s.HoldDays.Min, s.HoldDays.Max)
	p.TargetProfitRatio = math.Max(s.TargetProfitRatio.Min, p.TargetProfitRatio)
	p.Alpha = clampFloat(p.Alpha, s.Alpha.Min, s.Alpha.Max)
	return p
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
