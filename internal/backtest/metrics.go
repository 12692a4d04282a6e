package backtest

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	// InitialEquity is the notional the equity curve starts from.
	InitialEquity = 1000.0

	tradingDaysPerYear = 252.0
)

// TradeStats aggregates closed trades of one simulation.
type TradeStats struct {
	Trades      int
	Wins        int
	TotalReturn float64
	MaxDrawdown float64
	FinalEquity float64
	Returns     []float64
	Log         []Trade
	holdBars    int
}

func (s *TradeStats) record(t Trade) {
	s.Trades++
	if t.Return > 0 {
		s.Wins++
	}
	s.TotalReturn += t.Return
	s.Returns = append(s.Returns, t.Return)
	s.Log = append(s.Log, t)
	s.holdBars += t.HoldBars
}

// AvgHoldBars returns the mean holding period in bars.
func (s TradeStats) AvgHoldBars() float64 {
	if s.Trades == 0 {
		return 0
	}
	return float64(s.holdBars) / float64(s.Trades)
}

// AvgReturn returns the mean fractional return per trade.
func (s TradeStats) AvgReturn() float64 {
	if s.Trades == 0 {
		return 0
	}
	return s.TotalReturn / float64(s.Trades)
}

// EquityCurve compounds trade returns and tracks peak-to-trough decline.
type EquityCurve struct {
	value       float64
	peak        float64
	maxDrawdown float64
}

// NewEquityCurve starts a curve at the given notional.
func NewEquityCurve(initial float64) *EquityCurve {
	return &EquityCurve{value: initial, peak: initial}
}

// Apply compounds one trade return and updates the drawdown.
func (c *EquityCurve) Apply(ret float64) {
	c.value *= 1 + ret
	if c.value > c.peak {
		c.peak = c.value
	}
	if c.peak > 0 {
		if dd := (c.peak - c.value) / c.peak; dd > c.maxDrawdown {
			c.maxDrawdown = dd
		}
	}
}

func (c *EquityCurve) Value() float64       { return c.value }
func (c *EquityCurve) MaxDrawdown() float64 { return c.maxDrawdown }

// WinRate returns wins/trades, 0 without trades.
func WinRate(wins, trades int) float64 {
	if trades == 0 {
		return 0
	}
	return float64(wins) / float64(trades)
}

// FrequencyBonus rewards moderate activity: min(freq·10, 5) above 1% of rows.
func FrequencyBonus(trades, rows int) float64 {
	if rows == 0 {
		return 0
	}
	freq := float64(trades) / float64(rows)
	if freq <= 0.01 {
		return 0
	}
	return math.Min(freq*10, 5)
}

// ScoreFitness combines profit, win rate, drawdown and activity for a run
// with at least one trade. Jitter is added by the caller.
func ScoreFitness(stats TradeStats, rows int) float64 {
	profitScore := stats.AvgReturn() * 100
	winRateScore := WinRate(stats.Wins, stats.Trades) * 20
	drawdownPenalty := stats.MaxDrawdown * stats.MaxDrawdown * 50
	return profitScore + winRateScore - drawdownPenalty + FrequencyBonus(stats.Trades, rows)
}

// SharpeRatio is the mean over the population deviation of per-trade
// returns, annualized by the number of average-length holds in a trading
// year. Zero with fewer than two trades or no dispersion.
func SharpeRatio(returns []float64, avgHoldBars float64) float64 {
	if len(returns) < 2 || avgHoldBars <= 0 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(returns, nil)
	if std < 1e-10 {
		return 0
	}
	return mean / std * math.Sqrt(tradingDaysPerYear/avgHoldBars)
}
