package backtest

import (
	"math"

	"github.com/ducminhle1904/ga-trading-optimizer/internal/indicators"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
)

// Signal is the per-row classification of price against the alpha band.
type Signal int

const (
	SignalSell    Signal = -1
	SignalNeutral Signal = 0
	SignalBuy     Signal = 1
)

// ExitReason records why a position was closed.
type ExitReason string

const (
	ExitTarget ExitReason = "target"
	ExitHold   ExitReason = "hold"
	ExitSignal ExitReason = "signal"
)

// minExtraRows is the number of rows required beyond the MA window.
const minExtraRows = 10

// Trade is one closed long position. Indices refer to the input slice.
type Trade struct {
	EntryIndex int
	ExitIndex  int
	EntryPrice float64
	ExitPrice  float64
	Return     float64
	HoldBars   int
	Reason     ExitReason
}

// Simulate runs the moving-average band strategy over closes. NaN and
// infinite closes are dropped before the window is applied. It never panics
// for well-formed input; Evaluator adds panic recovery on top.
func Simulate(params types.TradingParameters, closes []float64) EvaluationOutcome {
	out := EvaluationOutcome{Params: params}

	if len(closes) == 0 {
		out.Kind = OutcomeEmptyData
		return out
	}
	if params.MIntervals <= 0 || params.HoldDays <= 0 || params.TargetProfitRatio <= 0 || params.Alpha <= 0 {
		out.Kind = OutcomeInvalidParams
		return out
	}

	prices, index := cleanCloses(closes)
	out.Rows = len(prices)
	if len(prices) < params.MIntervals+minExtraRows {
		out.Kind = OutcomeInsufficientData
		return out
	}

	window := params.MIntervals
	if half := len(prices) / 2; half < window {
		window = half
	}
	if window < 1 {
		window = 1
	}
	out.Window = window

	ma := indicators.NewSMA(window).Series(prices)
	signals := GenerateSignals(prices, ma, params.Alpha/100.0)
	for _, s := range signals {
		switch s {
		case SignalBuy:
			out.BuySignals++
		case SignalSell:
			out.SellSignals++
		}
	}
	if out.BuySignals == 0 {
		out.Kind = OutcomeNoBuySignals
		return out
	}

	out.Stats = simulateTrades(params, prices, ma, signals, window, index)
	if out.Stats.Trades == 0 {
		out.Kind = OutcomeNoTrades
		return out
	}
	out.Kind = OutcomeScored
	return out
}

// GenerateSignals classifies each row: buy above MA·(1+threshold), sell below
// MA·(1−threshold). Rows with an undefined MA are neutral.
func GenerateSignals(prices, ma []float64, threshold float64) []Signal {
	signals := make([]Signal, len(prices))
	for i, p := range prices {
		if i >= len(ma) || math.IsNaN(ma[i]) {
			continue
		}
		switch {
		case p > ma[i]*(1+threshold):
			signals[i] = SignalBuy
		case p < ma[i]*(1-threshold):
			signals[i] = SignalSell
		}
	}
	return signals
}

type position struct {
	entryIndex  int
	entryPrice  float64
	targetPrice float64
}

// simulateTrades holds at most one long position and trades from index window onward.
func simulateTrades(params types.TradingParameters, prices, ma []float64, signals []Signal, window int, index []int) TradeStats {
	curve := NewEquityCurve(InitialEquity)
	var stats TradeStats
	var open *position

	for i := window; i < len(prices); i++ {
		price := prices[i]
		if math.IsNaN(ma[i]) {
			continue
		}

		if open == nil {
			if signals[i] == SignalBuy {
				open = &position{
					entryIndex:  i,
					entryPrice:  price,
					targetPrice: price * (1 + params.TargetProfitRatio),
				}
			}
			continue
		}

		held := i - open.entryIndex
		var reason ExitReason
		switch {
		case price >= open.targetPrice:
			reason = ExitTarget
		case held >= params.HoldDays:
			reason = ExitHold
		case signals[i] == SignalSell:
			reason = ExitSignal
		default:
			continue
		}

		ret := (price - open.entryPrice) / open.entryPrice
		curve.Apply(ret)
		stats.record(Trade{
			EntryIndex: index[open.entryIndex],
			ExitIndex:  index[i],
			EntryPrice: open.entryPrice,
			ExitPrice:  price,
			Return:     ret,
			HoldBars:   held,
			Reason:     reason,
		})
		open = nil
	}

	stats.MaxDrawdown = curve.MaxDrawdown()
	stats.FinalEquity = curve.Value()
	return stats
}

// cleanCloses drops non-finite prices and returns the survivors with their
// original positions.
func cleanCloses(closes []float64) ([]float64, []int) {
	prices := make([]float64, 0, len(closes))
	index := make([]int, 0, len(closes))
	for i, c := range closes {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			continue
		}
		prices = append(prices, c)
		index = append(index, i)
	}
	return prices, index
}
