package validation

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"

	"github.com/ducminhle1904/ga-trading-optimizer/internal/backtest"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
)

const minHoldoutBars = 50

// WalkForwardValidator re-runs the search per fold and scores each winner
// on the following unseen window.
type WalkForwardValidator struct {
	splitter  DataSplitter
	optimize  OptimizeFunc
	evaluator *backtest.Evaluator
	logger    zerolog.Logger
}

// NewWalkForwardValidator creates a validator
func NewWalkForwardValidator(optimize OptimizeFunc, evaluator *backtest.Evaluator) *WalkForwardValidator {
	if evaluator == nil {
		evaluator = backtest.NewEvaluator()
	}
	return &WalkForwardValidator{
		splitter:  NewDefaultDataSplitter(),
		optimize:  optimize,
		evaluator: evaluator,
		logger:    log.With().Str("component", "walk_forward").Logger(),
	}
}

// Validate runs rolling or single-holdout validation
func (v *WalkForwardValidator) Validate(ctx context.Context, series types.PriceSeries, cfg WalkForwardConfig) (*WalkForwardSummary, error) {
	if v.optimize == nil {
		return nil, fmt.Errorf("walk-forward validation needs an optimizer")
	}

	var folds []WalkForwardFold
	if cfg.Rolling {
		v.logger.Info().Int("train_days", cfg.TrainDays).Int("test_days", cfg.TestDays).Int("roll_days", cfg.RollDays).
			Msg("🔄 Rolling walk-forward validation")
		folds = v.splitter.CreateRollingFolds(series, cfg.TrainDays, cfg.TestDays, cfg.RollDays)
		if len(folds) == 0 {
			return nil, fmt.Errorf("not enough data for rolling walk-forward validation")
		}
	} else {
		v.logger.Info().Float64("split_ratio", cfg.SplitRatio).Msg("🔄 Holdout validation")
		train, test := v.splitter.SplitByRatio(series, cfg.SplitRatio)
		if len(test) < minHoldoutBars {
			return nil, fmt.Errorf("not enough test data for validation: %d bars", len(test))
		}
		folds = []WalkForwardFold{{
			Train:      train,
			Test:       test,
			TrainStart: train[0].Date,
			TrainEnd:   train[len(train)-1].Date,
			TestStart:  test[0].Date,
			TestEnd:    test[len(test)-1].Date,
		}}
	}

	results := make([]WalkForwardResults, 0, len(folds))
	for i, fold := range folds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		trainResult, err := v.optimize(ctx, fold.Train)
		if err != nil {
			return nil, fmt.Errorf("optimization failed for fold %d: %w", i+1, err)
		}
		testResult := v.evaluator.Evaluate(trainResult.Parameters, fold.Test.Closes(), nil)

		v.logger.Info().
			Int("fold", i+1).
			Int("folds", len(folds)).
			Str("train", fold.TrainStart.Format("2006-01-02")+" → "+fold.TrainEnd.Format("2006-01-02")).
			Str("test", fold.TestStart.Format("2006-01-02")+" → "+fold.TestEnd.Format("2006-01-02")).
			Float64("train_fitness", trainResult.Fitness).
			Float64("test_fitness", testResult.Fitness).
			Msg("📊 Fold complete")

		results = append(results, WalkForwardResults{
			Fold:        i + 1,
			TrainResult: trainResult,
			TestResult:  testResult,
			TrainStart:  fold.TrainStart,
			TestEnd:     fold.TestEnd,
		})
	}

	summary := calculateSummary(results)
	v.logger.Info().
		Float64("avg_train_fitness", summary.AverageTrainFitness).
		Float64("avg_test_fitness", summary.AverageTestFitness).
		Float64("degradation_pct", summary.FitnessDegradation).
		Str("overfitting_risk", summary.OverfittingRisk).
		Msg("📊 Walk-forward summary")
	return summary, nil
}

// calculateSummary calculates summary statistics from all results
func calculateSummary(results []WalkForwardResults) *WalkForwardSummary {
	if len(results) == 0 {
		return &WalkForwardSummary{}
	}

	trainFitness := make([]float64, len(results))
	testFitness := make([]float64, len(results))
	trainProfit := make([]float64, len(results))
	testProfit := make([]float64, len(results))
	for i, r := range results {
		trainFitness[i] = r.TrainResult.Fitness
		testFitness[i] = r.TestResult.Fitness
		trainProfit[i] = r.TrainResult.TotalProfit
		testProfit[i] = r.TestResult.TotalProfit
	}

	avgTrain := stat.Mean(trainFitness, nil)
	avgTest := stat.Mean(testFitness, nil)
	_, testStd := stat.PopMeanStdDev(testFitness, nil)
	degradation := (avgTrain - avgTest) / math.Max(0.01, math.Abs(avgTrain)) * 100

	risk := "LOW"
	switch {
	case degradation > 30:
		risk = "HIGH"
	case degradation > 15:
		risk = "MODERATE"
	}

	return &WalkForwardSummary{
		Results:             results,
		AverageTrainFitness: avgTrain,
		AverageTestFitness:  avgTest,
		TestFitnessStdDev:   testStd,
		AverageTrainProfit:  stat.Mean(trainProfit, nil),
		AverageTestProfit:   stat.Mean(testProfit, nil),
		FitnessDegradation:  degradation,
		IsRobust:            degradation <= 30,
		OverfittingRisk:     risk,
	}
}
