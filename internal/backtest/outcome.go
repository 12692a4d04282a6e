package backtest

import (
	"math/rand"

	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
)

// OutcomeKind tags how a simulation ended.
type OutcomeKind int

const (
	OutcomeScored OutcomeKind = iota
	OutcomeEmptyData
	OutcomeInvalidParams
	OutcomeInsufficientData
	OutcomeNoBuySignals
	OutcomeNoTrades
	OutcomeInternalFault
)

// Sentinel fitness values. Failures stay comparable with real scores so the
// search can select away from them.
const (
	FitnessEmptyData        = -10.0
	FitnessInternalFault    = -10.0
	FitnessInvalidParams    = -8.0
	FitnessInsufficientData = -5.0
	FitnessNoBuySignals     = -3.0
	FitnessNoTradesExplain  = -2.0
	FitnessNoTrades         = -3.0

	scoreJitter   = 0.1
	noTradeJitter = 0.5

	// no-trade runs with thresholds above these get the lighter penalty
	highAlpha       = 50.0
	highTargetRatio = 0.5
)

var outcomeNames = map[OutcomeKind]string{
	OutcomeScored:           "scored",
	OutcomeEmptyData:        "empty_data",
	OutcomeInvalidParams:    "invalid_params",
	OutcomeInsufficientData: "insufficient_data",
	OutcomeNoBuySignals:     "no_buy_signals",
	OutcomeNoTrades:         "no_trades",
	OutcomeInternalFault:    "internal_fault",
}

func (k OutcomeKind) String() string {
	if name, ok := outcomeNames[k]; ok {
		return name
	}
	return "unknown"
}

// EvaluationOutcome is the tagged result of one simulation. Only Result
// converts it to the sentinel fitness scale.
type EvaluationOutcome struct {
	Kind        OutcomeKind
	Params      types.TradingParameters
	Rows        int
	Window      int
	BuySignals  int
	SellSignals int
	Stats       TradeStats
	Fault       string
}

// BaseFitness is the fitness before jitter.
func (o EvaluationOutcome) BaseFitness() float64 {
	switch o.Kind {
	case OutcomeScored:
		return ScoreFitness(o.Stats, o.Rows)
	case OutcomeEmptyData:
		return FitnessEmptyData
	case OutcomeInvalidParams:
		return FitnessInvalidParams
	case OutcomeInsufficientData:
		return FitnessInsufficientData
	case OutcomeNoBuySignals:
		return FitnessNoBuySignals
	case OutcomeNoTrades:
		if o.Params.Alpha > highAlpha || o.Params.TargetProfitRatio > highTargetRatio {
			return FitnessNoTradesExplain
		}
		return FitnessNoTrades
	default:
		return FitnessInternalFault
	}
}

// jitterWidth is the half-width of the uniform noise added to BaseFitness.
func (o EvaluationOutcome) jitterWidth() float64 {
	switch o.Kind {
	case OutcomeScored:
		return scoreJitter
	case OutcomeNoTrades:
		return noTradeJitter
	default:
		return 0
	}
}

// Result converts the outcome into a TradingResult. A nil rng disables jitter.
func (o EvaluationOutcome) Result(rng *rand.Rand) types.TradingResult {
	fitness := o.BaseFitness()
	if w := o.jitterWidth(); w > 0 && rng != nil {
		fitness += (rng.Float64()*2 - 1) * w
	}

	result := types.TradingResult{
		Parameters: o.Params,
		Fitness:    fitness,
	}

	switch o.Kind {
	case OutcomeScored, OutcomeNoTrades:
		result.TotalProfit = o.Stats.TotalReturn * InitialEquity
		result.WinRate = WinRate(o.Stats.Wins, o.Stats.Trades)
		result.MaxDrawdown = o.Stats.MaxDrawdown
		result.SharpeRatio = SharpeRatio(o.Stats.Returns, o.Stats.AvgHoldBars())
		result.Trades = o.Stats.Trades
	case OutcomeNoBuySignals:
		result.MaxDrawdown = 0.1
	default:
		result.MaxDrawdown = 1.0
	}
	return result
}
