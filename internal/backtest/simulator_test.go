package backtest

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
)

func params(m, hold int, target, alpha float64) types.TradingParameters {
	return types.TradingParameters{MIntervals: m, HoldDays: hold, TargetProfitRatio: target, Alpha: alpha}
}

func flat(n int, price float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = price
	}
	return out
}

func randomWalk(seed int64, n int) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	price := 100.0
	for i := range out {
		price *= 1 + rng.NormFloat64()*0.02
		out[i] = price
	}
	return out
}

func TestSimulate_EmptyData(t *testing.T) {
	out := Simulate(params(20, 5, 0.05, 2.0), nil)
	assert.Equal(t, OutcomeEmptyData, out.Kind)

	result := out.Result(rand.New(rand.NewSource(1)))
	assert.Equal(t, -10.0, result.Fitness)
	assert.Equal(t, 1.0, result.MaxDrawdown)
}

func TestSimulate_NonPositiveParameters(t *testing.T) {
	closes := randomWalk(1, 100)
	cases := []types.TradingParameters{
		params(0, 5, 0.05, 2.0),
		params(20, 0, 0.05, 2.0),
		params(20, 5, 0, 2.0),
		params(20, 5, 0.05, -1),
	}
	for _, p := range cases {
		out := Simulate(p, closes)
		assert.Equal(t, OutcomeInvalidParams, out.Kind, p.String())
		assert.Equal(t, -8.0, out.Result(nil).Fitness)
	}
}

func TestSimulate_TooFewRows(t *testing.T) {
	out := Simulate(params(20, 5, 0.05, 2.0), randomWalk(2, 10))
	assert.Equal(t, OutcomeInsufficientData, out.Kind)
	assert.Equal(t, -5.0, out.Result(rand.New(rand.NewSource(3))).Fitness)
}

func TestSimulate_AllNaNIsInsufficient(t *testing.T) {
	closes := flat(100, math.NaN())
	out := Simulate(params(10, 5, 0.05, 2.0), closes)

	assert.Equal(t, OutcomeInsufficientData, out.Kind)
	assert.Equal(t, 0, out.Rows)
	assert.Equal(t, -5.0, out.Result(nil).Fitness)
}

func TestSimulate_ConstantPriceHasNoBuySignals(t *testing.T) {
	for _, alpha := range []float64{0.5, 2.0, 25, 99} {
		out := Simulate(params(20, 5, 0.05, alpha), flat(300, 57.3))
		require.Equal(t, OutcomeNoBuySignals, out.Kind)

		result := out.Result(rand.New(rand.NewSource(9)))
		assert.Equal(t, -3.0, result.Fitness)
		assert.Equal(t, 0.1, result.MaxDrawdown)
	}
}

func TestSimulate_TargetExit(t *testing.T) {
	closes := append(flat(10, 100), 110, 120)
	closes = append(closes, flat(8, 100)...)

	out := Simulate(params(5, 10, 0.05, 2.0), closes)
	require.Equal(t, OutcomeScored, out.Kind)
	assert.Equal(t, 5, out.Window)
	assert.Equal(t, 2, out.BuySignals)

	require.Len(t, out.Stats.Log, 1)
	trade := out.Stats.Log[0]
	assert.Equal(t, 10, trade.EntryIndex)
	assert.Equal(t, 11, trade.ExitIndex)
	assert.Equal(t, ExitTarget, trade.Reason)
	assert.InDelta(t, 10.0/110.0, trade.Return, 1e-12)

	result := out.Result(nil)
	expected := 100*(10.0/110.0) + 20 + 0.5
	assert.InDelta(t, expected, result.Fitness, 1e-9)
	assert.Equal(t, 1.0, result.WinRate)
	assert.Equal(t, 0.0, result.MaxDrawdown)
	assert.InDelta(t, 1000*10.0/110.0, result.TotalProfit, 1e-9)
	assert.Equal(t, 0.0, result.SharpeRatio)

	jittered := out.Result(rand.New(rand.NewSource(5)))
	assert.InDelta(t, expected, jittered.Fitness, 0.1)
}

func TestSimulate_HoldExit(t *testing.T) {
	// two steps up: the second clears the band over the MA of the first
	closes := append(flat(10, 100), flat(3, 110)...)
	closes = append(closes, flat(7, 121)...)

	out := Simulate(params(5, 2, 0.5, 2.0), closes)
	require.Equal(t, OutcomeScored, out.Kind)
	// entries at 10 and 13, each forced out after two bars
	require.Len(t, out.Stats.Log, 2)

	for _, trade := range out.Stats.Log {
		assert.Equal(t, ExitHold, trade.Reason)
		assert.Equal(t, 2, trade.HoldBars)
		assert.Equal(t, 0.0, trade.Return)
	}
	assert.Equal(t, 10, out.Stats.Log[0].EntryIndex)
	assert.Equal(t, 12, out.Stats.Log[0].ExitIndex)
	assert.Equal(t, 13, out.Stats.Log[1].EntryIndex)
	assert.Equal(t, 15, out.Stats.Log[1].ExitIndex)
	assert.Equal(t, 121.0, out.Stats.Log[1].EntryPrice)
	assert.Equal(t, 0, out.Stats.Wins)
	assert.Equal(t, 2.0, out.Stats.AvgHoldBars())
}

func TestSimulate_SellSignalExitAndDrawdown(t *testing.T) {
	closes := append(flat(10, 100), 110, 90)
	closes = append(closes, flat(8, 90)...)

	out := Simulate(params(5, 10, 0.5, 2.0), closes)
	require.Equal(t, OutcomeScored, out.Kind)
	require.Len(t, out.Stats.Log, 1)

	trade := out.Stats.Log[0]
	assert.Equal(t, ExitSignal, trade.Reason)
	assert.InDelta(t, -20.0/110.0, trade.Return, 1e-12)
	assert.InDelta(t, 20.0/110.0, out.Stats.MaxDrawdown, 1e-12)
	assert.InDelta(t, 1000*(1-20.0/110.0), out.Stats.FinalEquity, 1e-9)
}

func TestSimulate_NoTradesPenalties(t *testing.T) {
	// the only buy signal falls on the last bar before trading starts
	closes := []float64{100, 100, 100, 100, 200}
	closes = append(closes, flat(15, 100)...)

	highAlpha := Simulate(params(5, 5, 0.05, 60), closes)
	require.Equal(t, OutcomeNoTrades, highAlpha.Kind)
	assert.Equal(t, 1, highAlpha.BuySignals)
	assert.Equal(t, -2.0, highAlpha.Result(nil).Fitness)

	highTarget := Simulate(params(5, 5, 0.6, 10), closes)
	require.Equal(t, OutcomeNoTrades, highTarget.Kind)
	assert.Equal(t, -2.0, highTarget.Result(nil).Fitness)

	generic := Simulate(params(5, 5, 0.05, 10), closes)
	require.Equal(t, OutcomeNoTrades, generic.Kind)
	assert.Equal(t, -3.0, generic.Result(nil).Fitness)

	jittered := generic.Result(rand.New(rand.NewSource(11))).Fitness
	assert.GreaterOrEqual(t, jittered, -3.5)
	assert.LessOrEqual(t, jittered, -2.5)
}

func TestSimulate_RandomWalkScenario(t *testing.T) {
	closes := randomWalk(42, 500)
	out := Simulate(params(20, 5, 0.05, 2.0), closes)
	result := out.Result(rand.New(rand.NewSource(42)))

	assert.GreaterOrEqual(t, result.WinRate, 0.0)
	assert.LessOrEqual(t, result.WinRate, 1.0)
	assert.GreaterOrEqual(t, result.MaxDrawdown, 0.0)
	assert.LessOrEqual(t, result.MaxDrawdown, 1.0)
	assert.Greater(t, result.Fitness, -5.0)
}

func TestSimulate_NaNRowsDroppedBeforeWindow(t *testing.T) {
	closes := append(flat(10, 100), 110, 120)
	closes = append(closes, flat(8, 100)...)
	withGaps := []float64{math.NaN()}
	withGaps = append(withGaps, closes[:5]...)
	withGaps = append(withGaps, math.Inf(1))
	withGaps = append(withGaps, closes[5:]...)

	clean := Simulate(params(5, 10, 0.05, 2.0), closes)
	gappy := Simulate(params(5, 10, 0.05, 2.0), withGaps)

	require.Equal(t, OutcomeScored, gappy.Kind)
	assert.Equal(t, clean.Rows, gappy.Rows)
	assert.InDelta(t, clean.Result(nil).Fitness, gappy.Result(nil).Fitness, 1e-12)
	// trade indices point into the original slice
	assert.Equal(t, 12, gappy.Stats.Log[0].EntryIndex)
}

func TestGenerateSignals(t *testing.T) {
	prices := []float64{100, 103, 97, 101}
	ma := []float64{math.NaN(), 100, 100, 100}

	signals := GenerateSignals(prices, ma, 0.02)
	assert.Equal(t, []Signal{SignalNeutral, SignalBuy, SignalSell, SignalNeutral}, signals)
}
