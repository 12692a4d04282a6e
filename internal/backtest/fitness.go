package backtest

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ducminhle1904/ga-trading-optimizer/internal/monitoring"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
)

// Evaluator scores parameter sets against a close series. It holds no
// mutable state and is safe for concurrent use.
type Evaluator struct {
	logger   zerolog.Logger
	simulate func(types.TradingParameters, []float64) EvaluationOutcome
}

// NewEvaluator creates an evaluator logging under the "evaluator" component.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		logger:   log.With().Str("component", "evaluator").Logger(),
		simulate: Simulate,
	}
}

// Evaluate always returns a result. Faults, including panics, map to the
// sentinel fitness scale. rng supplies the jitter and may be nil.
func (e *Evaluator) Evaluate(params types.TradingParameters, closes []float64, rng *rand.Rand) types.TradingResult {
	return e.Outcome(params, closes).Result(rng)
}

// Outcome runs the simulation and returns the tagged outcome.
func (e *Evaluator) Outcome(params types.TradingParameters, closes []float64) (outcome EvaluationOutcome) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			outcome = EvaluationOutcome{
				Kind:   OutcomeInternalFault,
				Params: params,
				Fault:  fmt.Sprint(r),
			}
			e.logger.Error().
				Str("params", params.String()).
				Interface("panic", r).
				Msg("❌ Fitness evaluation failed")
		}
		monitoring.RecordEvaluation(outcome.Kind.String(), time.Since(start).Seconds())
	}()

	outcome = e.simulate(params, closes)
	e.logOutcome(outcome)
	return outcome
}

// Backtest runs one parameter set over a dated series and returns the
// outcome, including the trade log, for reporting.
func (e *Evaluator) Backtest(params types.TradingParameters, series types.PriceSeries) EvaluationOutcome {
	return e.Outcome(params, series.Closes())
}

func (e *Evaluator) logOutcome(o EvaluationOutcome) {
	if zerolog.GlobalLevel() > zerolog.DebugLevel {
		return
	}
	ev := e.logger.Debug().
		Str("params", o.Params.String()).
		Str("outcome", o.Kind.String()).
		Int("rows", o.Rows)

	switch o.Kind {
	case OutcomeInsufficientData:
		ev.Msg("⚠️ Insufficient data for window")
	case OutcomeNoBuySignals:
		ev.Int("sell_signals", o.SellSignals).Msg("⚠️ No buy signals generated")
	case OutcomeNoTrades:
		ev.Int("buy_signals", o.BuySignals).Msg("⚠️ No trades closed")
	case OutcomeScored:
		ev.Int("trades", o.Stats.Trades).
			Float64("win_rate", WinRate(o.Stats.Wins, o.Stats.Trades)).
			Float64("total_return", o.Stats.TotalReturn).
			Msg("💹 Backtest scored")
	default:
		ev.Msg("❌ Evaluation rejected")
	}
}
