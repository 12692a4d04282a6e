package reporting

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/validation"
)

// DefaultConsoleReporter renders go-pretty tables to a writer.
type DefaultConsoleReporter struct {
	out io.Writer
}

// NewDefaultConsoleReporter creates a console reporter writing to stdout.
func NewDefaultConsoleReporter() *DefaultConsoleReporter {
	return NewConsoleReporter(os.Stdout)
}

// NewConsoleReporter creates a console reporter writing to out.
func NewConsoleReporter(out io.Writer) *DefaultConsoleReporter {
	return &DefaultConsoleReporter{out: out}
}

func (r *DefaultConsoleReporter) newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)
	return t
}

// OutputRun prints the run summary and the winner's metrics.
func (r *DefaultConsoleReporter) OutputRun(report *Report) {
	s := report.Summary

	t := r.newTable("OPTIMIZATION RESULTS")
	t.AppendRows([]table.Row{
		{"📊 Symbol", s.Metadata.Symbol},
		{"🏷️ Sector", orDash(s.Metadata.Sector)},
		{"🆔 Run", orDash(s.Metadata.RunID)},
		{"🛑 Stop Reason", s.StopReason},
		{"🔢 Generations", s.Generations},
		{"⏱️ Duration", s.Duration.Round(time.Millisecond).String()},
	})
	t.AppendSeparator()

	if s.Best == nil {
		t.AppendRow(table.Row{"❌ Result", "no winner"})
		t.Render()
		return
	}

	best := s.Best
	t.AppendRows([]table.Row{
		{"📏 MA Intervals", best.Parameters.MIntervals},
		{"📅 Hold Days", best.Parameters.HoldDays},
		{"🎯 Target Profit", fmt.Sprintf("%.2f%%", best.Parameters.TargetProfitRatio*100)},
		{"📊 Alpha", fmt.Sprintf("%.3f%%", best.Parameters.Alpha)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"📈 Train Fitness", fmt.Sprintf("%.4f", best.Fitness)},
		{"💰 Total Profit", fmt.Sprintf("%.2f", best.TotalProfit)},
		{"✅ Win Rate", fmt.Sprintf("%.1f%%", best.WinRate*100)},
		{"📉 Max Drawdown", fmt.Sprintf("%.2f%%", best.MaxDrawdown*100)},
		{"📊 Sharpe Ratio", fmt.Sprintf("%.2f", best.SharpeRatio)},
		{"🔄 Trades", len(report.Trades)},
	})
	if best.TestResult != nil {
		t.AppendSeparator()
		t.AppendRows([]table.Row{
			{"🧪 Test Fitness", fmt.Sprintf("%.4f", best.TestResult.Fitness)},
			{"🧪 Test Profit", fmt.Sprintf("%.2f", best.TestResult.TotalProfit)},
			{"🧪 Test Win Rate", fmt.Sprintf("%.1f%%", best.TestResult.WinRate*100)},
			{"📊 Train vs Test", fmt.Sprintf("%.4f", best.Fitness-best.TestResult.Fitness)},
		})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 18, WidthMax: 18, Align: text.AlignLeft},
		{Number: 2, WidthMin: 25, WidthMax: 45, Align: text.AlignLeft},
	})
	t.Render()
}

// PrintBestParameters prints the winner as indented JSON.
func (r *DefaultConsoleReporter) PrintBestParameters(summary types.RunSummary) {
	data, err := FormatBestParameters(summary)
	if err != nil {
		fmt.Fprintf(r.out, "❌ failed to format best parameters: %v\n", err)
		return
	}
	fmt.Fprintln(r.out, string(data))
}

// PrintWalkForwardSummary prints per-fold fitness and the overfitting verdict.
func (r *DefaultConsoleReporter) PrintWalkForwardSummary(summary *validation.WalkForwardSummary) {
	if summary == nil {
		return
	}

	t := r.newTable("WALK-FORWARD SUMMARY")
	t.AppendHeader(table.Row{"Fold", "Train Start", "Test End", "Train Fitness", "Test Fitness", "Test Profit"})
	for _, res := range summary.Results {
		trainFitness := 0.0
		if res.TrainResult != nil {
			trainFitness = res.TrainResult.Fitness
		}
		t.AppendRow(table.Row{
			res.Fold,
			res.TrainStart.Format("2006-01-02"),
			res.TestEnd.Format("2006-01-02"),
			fmt.Sprintf("%.4f", trainFitness),
			fmt.Sprintf("%.4f", res.TestResult.Fitness),
			fmt.Sprintf("%.2f", res.TestResult.TotalProfit),
		})
	}
	t.AppendFooter(table.Row{
		"AVG", "", "",
		fmt.Sprintf("%.4f", summary.AverageTrainFitness),
		fmt.Sprintf("%.4f ± %.4f", summary.AverageTestFitness, summary.TestFitnessStdDev),
		fmt.Sprintf("%.2f", summary.AverageTestProfit),
	})
	t.Render()

	fmt.Fprintf(r.out, "Fitness Degradation: %.1f%%\n", summary.FitnessDegradation)
	switch summary.OverfittingRisk {
	case "HIGH":
		fmt.Fprintln(r.out, "⚠️  HIGH OVERFITTING RISK - Parameters may not generalize well")
	case "MODERATE":
		fmt.Fprintln(r.out, "⚠️  MODERATE OVERFITTING - Some performance degradation")
	default:
		fmt.Fprintln(r.out, "✅ ROBUST PARAMETERS - Good generalization across time periods")
	}
}

// PrintBatchSummary prints one row per symbol, failures last.
func (r *DefaultConsoleReporter) PrintBatchSummary(runs []types.RunSummary, failures map[string]error) {
	t := r.newTable("BATCH SUMMARY")
	t.AppendHeader(table.Row{"Symbol", "Sector", "Fitness", "Test Fitness", "Stop Reason", "Parameters"})

	for _, run := range runs {
		fitness, test, params := "-", "-", "-"
		if run.Best != nil {
			fitness = fmt.Sprintf("%.4f", run.Best.Fitness)
			params = run.Best.Parameters.String()
			if run.Best.TestResult != nil {
				test = fmt.Sprintf("%.4f", run.Best.TestResult.Fitness)
			}
		}
		t.AppendRow(table.Row{run.Metadata.Symbol, orDash(run.Metadata.Sector), fitness, test, run.StopReason, params})
	}

	symbols := make([]string, 0, len(failures))
	for symbol := range failures {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	for _, symbol := range symbols {
		t.AppendRow(table.Row{symbol, "-", "-", "-", "❌ " + failures[symbol].Error(), "-"})
	}

	t.AppendFooter(table.Row{fmt.Sprintf("%d ok / %d failed", len(runs), len(failures)), "", "", "", "", ""})
	t.Render()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// OutputConsole is a convenience function using a stdout reporter
func OutputConsole(report *Report) {
	NewDefaultConsoleReporter().OutputRun(report)
}
