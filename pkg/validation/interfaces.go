package validation

import (
	"context"
	"time"

	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
)

// OptimizeFunc runs a full search on a training window and returns its winner.
type OptimizeFunc func(ctx context.Context, train types.PriceSeries) (*types.TradingResult, error)

// DataSplitter defines the interface for splitting data into train/test sets
type DataSplitter interface {
	SplitByRatio(series types.PriceSeries, ratio float64) (types.PriceSeries, types.PriceSeries)
	CreateRollingFolds(series types.PriceSeries, trainDays, testDays, rollDays int) []WalkForwardFold
}

// WalkForwardConfig holds the configuration for walk-forward validation
type WalkForwardConfig struct {
	Enable     bool    `mapstructure:"enable"`
	Rolling    bool    `mapstructure:"rolling"`
	SplitRatio float64 `mapstructure:"split_ratio"`
	TrainDays  int     `mapstructure:"train_days"`
	TestDays   int     `mapstructure:"test_days"`
	RollDays   int     `mapstructure:"roll_days"`
}

// WalkForwardFold represents a single fold in walk-forward validation
type WalkForwardFold struct {
	Train      types.PriceSeries
	Test       types.PriceSeries
	TrainStart time.Time
	TrainEnd   time.Time
	TestStart  time.Time
	TestEnd    time.Time
}

// WalkForwardResults holds the results for a single fold
type WalkForwardResults struct {
	Fold        int
	TrainResult *types.TradingResult
	TestResult  types.TradingResult
	TrainStart  time.Time
	TestEnd     time.Time
}

// WalkForwardSummary holds the summary of all walk-forward validation results
type WalkForwardSummary struct {
	Results             []WalkForwardResults
	AverageTrainFitness float64
	AverageTestFitness  float64
	TestFitnessStdDev   float64
	AverageTrainProfit  float64
	AverageTestProfit   float64
	FitnessDegradation  float64
	IsRobust            bool
	OverfittingRisk     string
}
