package reporting

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
)

// DefaultCSVReporter implements CSV output functionality
type DefaultCSVReporter struct{}

// NewDefaultCSVReporter creates a new CSV reporter
func NewDefaultCSVReporter() *DefaultCSVReporter {
	return &DefaultCSVReporter{}
}

// WriteTradesCSV writes the winner's training trades, one row per closed position.
func (r *DefaultCSVReporter) WriteTradesCSV(report *Report, path string) error {
	rows := [][]string{{
		"Trade",
		"Entry_Date",
		"Exit_Date",
		"Entry_Price",
		"Exit_Price",
		"Return_%",
		"Hold_Bars",
		"Exit_Reason",
		"Win_Loss",
	}}

	for i, t := range report.Trades {
		winLoss := "LOSS"
		if t.Return > 0 {
			winLoss = "WIN"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			dateAt(report.Train, t.EntryIndex),
			dateAt(report.Train, t.ExitIndex),
			formatFloat(t.EntryPrice, 4),
			formatFloat(t.ExitPrice, 4),
			formatFloat(t.Return*100, 2),
			strconv.Itoa(t.HoldBars),
			string(t.Reason),
			winLoss,
		})
	}
	return writeCSV(path, rows)
}

// WriteHistoryCSV writes best and average fitness per generation.
func (r *DefaultCSVReporter) WriteHistoryCSV(summary types.RunSummary, path string) error {
	rows := [][]string{{"Generation", "Best_Fitness", "Avg_Fitness"}}
	for i, best := range summary.BestFitnessHistory {
		avg := ""
		if i < len(summary.AvgFitnessHistory) {
			avg = formatFloat(summary.AvgFitnessHistory[i], 6)
		}
		rows = append(rows, []string{strconv.Itoa(i), formatFloat(best, 6), avg})
	}
	return writeCSV(path, rows)
}

func writeCSV(path string, rows [][]string) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

func dateAt(series types.PriceSeries, idx int) string {
	if idx < 0 || idx >= len(series) || series[idx].Date.IsZero() {
		return strconv.Itoa(idx)
	}
	return series[idx].Date.Format("2006-01-02")
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// WriteTradesCSV is a convenience function using the default CSV reporter
func WriteTradesCSV(report *Report, path string) error {
	return NewDefaultCSVReporter().WriteTradesCSV(report, path)
}

// WriteHistoryCSV is a convenience function using the default CSV reporter
func WriteHistoryCSV(summary types.RunSummary, path string) error {
	return NewDefaultCSVReporter().WriteHistoryCSV(summary, path)
}
