// Package reporting renders optimization runs to the console and to files.
package reporting

import (
	"github.com/ducminhle1904/ga-trading-optimizer/internal/backtest"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/validation"
)

// Report bundles a finished run with the winner's trade log on the
// training window.
type Report struct {
	Summary     types.RunSummary
	Train       types.PriceSeries
	Trades      []backtest.Trade
	WalkForward *validation.WalkForwardSummary
}

// NewReport replays the winner over the training window to recover its
// trade log.
func NewReport(summary types.RunSummary, train types.PriceSeries, evaluator *backtest.Evaluator) *Report {
	report := &Report{Summary: summary, Train: train}
	if summary.Best == nil {
		return report
	}
	if evaluator == nil {
		evaluator = backtest.NewEvaluator()
	}
	outcome := evaluator.Backtest(summary.Best.Parameters, train)
	report.Trades = outcome.Stats.Log
	return report
}

// ConsoleReporter defines interface for console output
type ConsoleReporter interface {
	OutputRun(report *Report)
	PrintBestParameters(summary types.RunSummary)
	PrintWalkForwardSummary(summary *validation.WalkForwardSummary)
	PrintBatchSummary(runs []types.RunSummary, failures map[string]error)
}

// FileReporter defines interface for file output
type FileReporter interface {
	WriteTradesCSV(report *Report, path string) error
	WriteHistoryCSV(summary types.RunSummary, path string) error
	WriteRunXLSX(report *Report, path string) error
	WriteBestParametersJSON(summary types.RunSummary, path string) error
}

// PathManager defines interface for output path management
type PathManager interface {
	GetDefaultOutputDir(symbol, variant string) string
	EnsureDirectoryExists(path string) error
}

// ExcelStyles holds Excel formatting styles
type ExcelStyles struct {
	HeaderStyle  int
	BaseStyle    int
	NumberStyle  int
	PercentStyle int
	GreenStyle   int
	RedStyle     int
	TitleStyle   int
}

// ReportingConfig holds configuration for reporting
type ReportingConfig struct {
	EnableConsole   bool   `mapstructure:"console"`
	EnableFiles     bool   `mapstructure:"files"`
	OutputDirectory string `mapstructure:"dir"`
	ExcelEnabled    bool   `mapstructure:"excel"`
	CSVEnabled      bool   `mapstructure:"csv"`
	JSONEnabled     bool   `mapstructure:"json"`
}
