package reporting

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ducminhle1904/ga-trading-optimizer/internal/backtest"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/data"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/validation"
)

func sampleReport() *Report {
	train := data.GenerateRandomWalk(3, 30, time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), 100, 0.01)
	best := &types.TradingResult{
		Parameters:  types.TradingParameters{MIntervals: 12, HoldDays: 6, TargetProfitRatio: 0.08, Alpha: 2.5},
		Fitness:     14.25,
		TotalProfit: 95,
		WinRate:     0.75,
		MaxDrawdown: 0.04,
		SharpeRatio: 1.3,
		Trades:      2,
		TestResult:  &types.TradingResult{Fitness: 9.5, TotalProfit: 40, WinRate: 0.5},
	}
	return &Report{
		Summary: types.RunSummary{
			Metadata:           types.RunMetadata{RunID: "run-1", Symbol: "2330", Sector: "Semis", StartedAt: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)},
			Best:               best,
			StopReason:         "population converged",
			Generations:        3,
			Duration:           90 * time.Second,
			BestFitnessHistory: []float64{10, 12.5, 14.25},
			AvgFitnessHistory:  []float64{2, 5, 8},
		},
		Train: train,
		Trades: []backtest.Trade{
			{EntryIndex: 2, ExitIndex: 5, EntryPrice: 100, ExitPrice: 108, Return: 0.08, HoldBars: 3, Reason: backtest.ExitTarget},
			{EntryIndex: 10, ExitIndex: 16, EntryPrice: 104, ExitPrice: 101, Return: -0.0288, HoldBars: 6, Reason: backtest.ExitHold},
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteTradesCSV(t *testing.T) {
	report := sampleReport()
	path := filepath.Join(t.TempDir(), "nested", "trades.csv")

	require.NoError(t, WriteTradesCSV(report, path))

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, "Entry_Date", rows[0][1])
	assert.Equal(t, report.Train[2].Date.Format("2006-01-02"), rows[1][1])
	assert.Equal(t, "8.00", rows[1][5])
	assert.Equal(t, "target", rows[1][7])
	assert.Equal(t, "WIN", rows[1][8])
	assert.Equal(t, "LOSS", rows[2][8])
}

func TestWriteHistoryCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	require.NoError(t, WriteHistoryCSV(sampleReport().Summary, path))

	rows := readCSV(t, path)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"2", "14.250000", "8.000000"}, rows[3])
}

func TestBestParametersJSON_RoundTrip(t *testing.T) {
	summary := sampleReport().Summary
	path := filepath.Join(t.TempDir(), "best.json")

	require.NoError(t, WriteBestParametersJSON(summary, path))
	doc, err := ReadBestParametersJSON(path)
	require.NoError(t, err)

	assert.Equal(t, "2330", doc.Symbol)
	assert.Equal(t, summary.Best.Parameters, doc.Parameters)
	require.NotNil(t, doc.Train)
	assert.Nil(t, doc.Train.TestResult)
	require.NotNil(t, doc.Test)
	assert.Equal(t, 9.5, doc.Test.Fitness)
	assert.Equal(t, time.Date(2024, 6, 1, 8, 1, 30, 0, time.UTC), doc.GeneratedAt)
}

func TestWriteRunXLSX(t *testing.T) {
	report := sampleReport()
	path := filepath.Join(t.TempDir(), "report.xlsx")

	require.NoError(t, WriteRunXLSX(report, path))

	fx, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer fx.Close()

	assert.Equal(t, []string{summarySheet, historySheet, tradesSheet}, fx.GetSheetList())

	symbol, err := fx.GetCellValue(summarySheet, "B5")
	require.NoError(t, err)
	assert.Equal(t, "2330", symbol)

	history, err := fx.GetRows(historySheet)
	require.NoError(t, err)
	assert.Len(t, history, 4)

	trades, err := fx.GetRows(tradesSheet)
	require.NoError(t, err)
	require.Len(t, trades, 3)
	assert.Equal(t, "hold", trades[2][7])
}

func TestWriteRunXLSX_NoWinner(t *testing.T) {
	report := &Report{Summary: types.RunSummary{Metadata: types.RunMetadata{Symbol: "X"}}}
	assert.NoError(t, WriteRunXLSX(report, filepath.Join(t.TempDir(), "empty.xlsx")))
}

func TestConsoleReporter(t *testing.T) {
	var buf bytes.Buffer
	console := NewConsoleReporter(&buf)
	report := sampleReport()

	console.OutputRun(report)
	out := buf.String()
	assert.Contains(t, out, "OPTIMIZATION RESULTS")
	assert.Contains(t, out, "population converged")
	assert.Contains(t, out, "8.00%")
	assert.Contains(t, out, "4.7500")

	buf.Reset()
	console.PrintBatchSummary([]types.RunSummary{report.Summary}, map[string]error{"9999": errors.New("too few rows")})
	out = buf.String()
	assert.Contains(t, out, "2330")
	assert.Contains(t, out, "too few rows")
	assert.Contains(t, strings.ToLower(out), "1 ok / 1 failed")

	buf.Reset()
	console.PrintWalkForwardSummary(&validation.WalkForwardSummary{
		Results: []validation.WalkForwardResults{{
			Fold:        1,
			TrainResult: &types.TradingResult{Fitness: 10},
			TestResult:  types.TradingResult{Fitness: 4},
		}},
		AverageTrainFitness: 10,
		AverageTestFitness:  4,
		FitnessDegradation:  60,
		OverfittingRisk:     "HIGH",
	})
	assert.Contains(t, buf.String(), "HIGH OVERFITTING RISK")

	buf.Reset()
	console.PrintBestParameters(report.Summary)
	assert.Contains(t, buf.String(), `"m_intervals": 12`)
}

func TestReportingManager_ReportRun(t *testing.T) {
	root := t.TempDir()
	manager := NewReportingManager(ReportingConfig{
		EnableFiles:     true,
		OutputDirectory: root,
		ExcelEnabled:    true,
		CSVEnabled:      true,
		JSONEnabled:     true,
	})

	written, err := manager.ReportRun(sampleReport(), "fast")
	require.NoError(t, err)
	require.Len(t, written, 4)
	for _, path := range written {
		assert.FileExists(t, path)
		assert.Equal(t, filepath.Join(root, "2330_fast"), filepath.Dir(path))
	}
}

func TestNewReport_ReplaysWinner(t *testing.T) {
	train := data.GenerateRandomWalk(9, 400, time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), 100, 0.02)
	params := types.TradingParameters{MIntervals: 10, HoldDays: 5, TargetProfitRatio: 0.03, Alpha: 1}
	result := backtest.NewEvaluator().Evaluate(params, train.Closes(), nil)

	report := NewReport(types.RunSummary{Best: &result}, train, nil)
	assert.Len(t, report.Trades, result.Trades)

	assert.Empty(t, NewReport(types.RunSummary{}, train, nil).Trades)
}

func TestDefaultOutputDir(t *testing.T) {
	assert.Equal(t, filepath.Join("results", "BTC_ga"), DefaultOutputDir(" btc ", ""))
	assert.Equal(t, filepath.Join("out", "UNKNOWN_fast"), NewDefaultPathManager("out").GetDefaultOutputDir("", "FAST"))
}
