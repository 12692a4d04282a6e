package types

import (
	"fmt"
	"time"
)

// TradingParameters is one genotype of the search: the four tunable inputs
// of the moving-average band strategy.
type TradingParameters struct {
	MIntervals        int     `json:"m_intervals"`
	HoldDays          int     `json:"hold_days"`
	TargetProfitRatio float64 `json:"target_profit_ratio"`
	Alpha             float64 `json:"alpha"`
}

// String formats the parameters for logs and tables.
func (p TradingParameters) String() string {
	return fmt.Sprintf("m=%d hold=%d target=%.4f alpha=%.3f", p.MIntervals, p.HoldDays, p.TargetProfitRatio, p.Alpha)
}

// TradingResult is a scored parameter set. TestResult is only set on the
// winner of a run after it has been evaluated on the holdout window.
type TradingResult struct {
	Parameters  TradingParameters `json:"parameters"`
	Fitness     float64           `json:"fitness"`
	TotalProfit float64           `json:"total_profit"`
	WinRate     float64           `json:"win_rate"`
	MaxDrawdown float64           `json:"max_drawdown"`
	SharpeRatio float64           `json:"sharpe_ratio"`
	Trades      int               `json:"trades"`
	TestResult  *TradingResult    `json:"test_result,omitempty"`
}

// RunMetadata identifies an optimization run for persistence and reports.
type RunMetadata struct {
	RunID     string    `json:"run_id"`
	Symbol    string    `json:"symbol"`
	Sector    string    `json:"sector"`
	StartedAt time.Time `json:"started_at"`
}

// RunSummary is everything a finished run hands to its collaborators.
type RunSummary struct {
	Metadata           RunMetadata    `json:"metadata"`
	Best               *TradingResult `json:"best"`
	StopReason         string         `json:"stop_reason"`
	Generations        int            `json:"generations"`
	Duration           time.Duration  `json:"duration"`
	BestFitnessHistory []float64      `json:"best_fitness_history"`
	AvgFitnessHistory  []float64      `json:"avg_fitness_history"`
}
