package reporting

import (
	"path/filepath"

	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/validation"
)

// DefaultReporter implements the console and file reporters
type DefaultReporter struct {
	console *DefaultConsoleReporter
	csv     *DefaultCSVReporter
	excel   *DefaultExcelReporter
	paths   *DefaultPathManager
}

// NewDefaultReporter creates a reporter writing files under root
func NewDefaultReporter(root string) *DefaultReporter {
	return &DefaultReporter{
		console: NewDefaultConsoleReporter(),
		csv:     NewDefaultCSVReporter(),
		excel:   NewDefaultExcelReporter(),
		paths:   NewDefaultPathManager(root),
	}
}

// Console output methods
func (r *DefaultReporter) OutputRun(report *Report) {
	r.console.OutputRun(report)
}

func (r *DefaultReporter) PrintBestParameters(summary types.RunSummary) {
	r.console.PrintBestParameters(summary)
}

func (r *DefaultReporter) PrintWalkForwardSummary(summary *validation.WalkForwardSummary) {
	r.console.PrintWalkForwardSummary(summary)
}

func (r *DefaultReporter) PrintBatchSummary(runs []types.RunSummary, failures map[string]error) {
	r.console.PrintBatchSummary(runs, failures)
}

// File output methods
func (r *DefaultReporter) WriteTradesCSV(report *Report, path string) error {
	return r.csv.WriteTradesCSV(report, path)
}

func (r *DefaultReporter) WriteHistoryCSV(summary types.RunSummary, path string) error {
	return r.csv.WriteHistoryCSV(summary, path)
}

func (r *DefaultReporter) WriteRunXLSX(report *Report, path string) error {
	return r.excel.WriteRunXLSX(report, path)
}

func (r *DefaultReporter) WriteBestParametersJSON(summary types.RunSummary, path string) error {
	return WriteBestParametersJSON(summary, path)
}

// Path management methods
func (r *DefaultReporter) GetDefaultOutputDir(symbol, variant string) string {
	return r.paths.GetDefaultOutputDir(symbol, variant)
}

func (r *DefaultReporter) EnsureDirectoryExists(path string) error {
	return r.paths.EnsureDirectoryExists(path)
}

// ReportingManager provides a high-level interface for all reporting needs
type ReportingManager struct {
	reporter *DefaultReporter
	config   ReportingConfig
}

// NewReportingManager creates a new reporting manager with configuration
func NewReportingManager(config ReportingConfig) *ReportingManager {
	return &ReportingManager{
		reporter: NewDefaultReporter(config.OutputDirectory),
		config:   config,
	}
}

// Reporter exposes the underlying reporter.
func (m *ReportingManager) Reporter() *DefaultReporter {
	return m.reporter
}

// ReportRun prints and writes a run according to configuration and returns
// the paths written.
func (m *ReportingManager) ReportRun(report *Report, variant string) ([]string, error) {
	if m.config.EnableConsole {
		m.reporter.OutputRun(report)
		if report.WalkForward != nil {
			m.reporter.PrintWalkForwardSummary(report.WalkForward)
		}
	}

	if !m.config.EnableFiles {
		return nil, nil
	}

	outputDir := m.reporter.GetDefaultOutputDir(report.Summary.Metadata.Symbol, variant)
	var written []string

	if m.config.JSONEnabled {
		path := filepath.Join(outputDir, "best.json")
		if err := m.reporter.WriteBestParametersJSON(report.Summary, path); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if m.config.CSVEnabled {
		historyPath := filepath.Join(outputDir, "fitness_history.csv")
		if err := m.reporter.WriteHistoryCSV(report.Summary, historyPath); err != nil {
			return written, err
		}
		written = append(written, historyPath)

		tradesPath := filepath.Join(outputDir, "trades.csv")
		if err := m.reporter.WriteTradesCSV(report, tradesPath); err != nil {
			return written, err
		}
		written = append(written, tradesPath)
	}

	if m.config.ExcelEnabled {
		path := filepath.Join(outputDir, "report.xlsx")
		if err := m.reporter.WriteRunXLSX(report, path); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	return written, nil
}
