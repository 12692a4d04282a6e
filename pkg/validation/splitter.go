package validation

import (
	"time"

	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
)

const (
	minFoldTrainBars = 50
	minFoldTestBars  = 10
)

// DefaultDataSplitter implements the DataSplitter interface
type DefaultDataSplitter struct{}

// NewDefaultDataSplitter creates a new default data splitter
func NewDefaultDataSplitter() *DefaultDataSplitter {
	return &DefaultDataSplitter{}
}

// SplitByRatio splits a series chronologically: the first ratio share of
// bars trains, the rest is held out. Degenerate ratios keep everything
// for training.
func (s *DefaultDataSplitter) SplitByRatio(series types.PriceSeries, ratio float64) (types.PriceSeries, types.PriceSeries) {
	if ratio <= 0 || ratio >= 1 {
		return series, types.PriceSeries{}
	}

	n := int(float64(len(series)) * ratio)
	if n < 1 || n >= len(series) {
		return series, types.PriceSeries{}
	}

	return series.Slice(0, n), series.Slice(n, len(series))
}

// CreateRollingFolds creates rolling walk-forward folds over calendar days
func (s *DefaultDataSplitter) CreateRollingFolds(series types.PriceSeries, trainDays, testDays, rollDays int) []WalkForwardFold {
	var folds []WalkForwardFold

	if len(series) < minFoldTrainBars+minFoldTestBars || rollDays <= 0 {
		return folds
	}

	trainDur := time.Duration(trainDays) * 24 * time.Hour
	testDur := time.Duration(testDays) * 24 * time.Hour
	rollDur := time.Duration(rollDays) * 24 * time.Hour

	start := 0
	for {
		// Find train window
		trainEndTs := series[start].Date.Add(trainDur)
		trainEnd := start
		for trainEnd < len(series) && series[trainEnd].Date.Before(trainEndTs) {
			trainEnd++
		}

		// Find test window
		testEndTs := trainEndTs.Add(testDur)
		testEnd := trainEnd
		for testEnd < len(series) && series[testEnd].Date.Before(testEndTs) {
			testEnd++
		}

		if trainEnd-start < minFoldTrainBars || testEnd-trainEnd < minFoldTestBars {
			break
		}

		folds = append(folds, WalkForwardFold{
			Train:      series.Slice(start, trainEnd),
			Test:       series.Slice(trainEnd, testEnd),
			TrainStart: series[start].Date,
			TrainEnd:   series[trainEnd-1].Date,
			TestStart:  series[trainEnd].Date,
			TestEnd:    series[testEnd-1].Date,
		})

		// Roll forward
		nextStartTs := series[start].Date.Add(rollDur)
		nextStart := start
		for nextStart < len(series) && series[nextStart].Date.Before(nextStartTs) {
			nextStart++
		}
		if nextStart <= start {
			nextStart = start + 1
		}
		if nextStart >= len(series) {
			break
		}
		start = nextStart
	}

	return folds
}

// SplitByRatio is a convenience function that uses the default splitter
func SplitByRatio(series types.PriceSeries, ratio float64) (types.PriceSeries, types.PriceSeries) {
	return NewDefaultDataSplitter().SplitByRatio(series, ratio)
}

// CreateRollingFolds is a convenience function that uses the default splitter
func CreateRollingFolds(series types.PriceSeries, trainDays, testDays, rollDays int) []WalkForwardFold {
	return NewDefaultDataSplitter().CreateRollingFolds(series, trainDays, testDays, rollDays)
}
