package backtest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSharpeRatio_KnownReturns tests the annualized per-trade Sharpe ratio
func TestSharpeRatio_KnownReturns(t *testing.T) {
	returns := []float64{0.1, -0.05, 0.05, 0.02}

	mean := 0.03
	variance := (0.07*0.07 + 0.08*0.08 + 0.02*0.02 + 0.01*0.01) / 4
	expected := mean / math.Sqrt(variance) * math.Sqrt(252.0/5.0)

	assert.InDelta(t, expected, SharpeRatio(returns, 5), 1e-9)
}

func TestSharpeRatio_Degenerate(t *testing.T) {
	assert.Equal(t, 0.0, SharpeRatio(nil, 3))
	assert.Equal(t, 0.0, SharpeRatio([]float64{0.05}, 3))
	assert.Equal(t, 0.0, SharpeRatio([]float64{0.02, 0.02, 0.02}, 3))
	assert.Equal(t, 0.0, SharpeRatio([]float64{0.02, 0.05}, 0))
}

func TestSharpeRatio_SignFollowsMean(t *testing.T) {
	assert.Greater(t, SharpeRatio([]float64{0.03, 0.01, 0.02}, 2), 0.0)
	assert.Less(t, SharpeRatio([]float64{-0.03, -0.01, 0.01}, 2), 0.0)
}

func TestEquityCurve_Drawdown(t *testing.T) {
	curve := NewEquityCurve(InitialEquity)
	curve.Apply(0.10)  // 1100
	curve.Apply(-0.20) // 880
	curve.Apply(0.05)  // 924

	assert.InDelta(t, 924.0, curve.Value(), 1e-9)
	assert.InDelta(t, 0.2, curve.MaxDrawdown(), 1e-12)

	curve.Apply(0.5) // new peak
	assert.InDelta(t, 0.2, curve.MaxDrawdown(), 1e-12)
}

func TestWinRate(t *testing.T) {
	assert.Equal(t, 0.0, WinRate(0, 0))
	assert.Equal(t, 0.75, WinRate(3, 4))
}

func TestFrequencyBonus(t *testing.T) {
	assert.Equal(t, 0.0, FrequencyBonus(1, 100))
	assert.Equal(t, 0.0, FrequencyBonus(5, 0))
	assert.InDelta(t, 0.5, FrequencyBonus(5, 100), 1e-12)
	assert.Equal(t, 5.0, FrequencyBonus(60, 100))
}

func TestScoreFitness(t *testing.T) {
	stats := TradeStats{
		Trades:      4,
		Wins:        3,
		TotalReturn: 0.12,
		MaxDrawdown: 0.1,
	}
	// 0.03·100 + 0.75·20 − 0.01·50 + min(0.04·10, 5)
	assert.InDelta(t, 3+15-0.5+0.4, ScoreFitness(stats, 100), 1e-9)
}
