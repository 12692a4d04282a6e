package reporting

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
)

const (
	summarySheet = "Summary"
	historySheet = "Fitness History"
	tradesSheet  = "Trades"
)

// DefaultExcelReporter implements Excel output functionality
type DefaultExcelReporter struct{}

// NewDefaultExcelReporter creates a new Excel reporter
func NewDefaultExcelReporter() *DefaultExcelReporter {
	return &DefaultExcelReporter{}
}

// WriteRunXLSX writes a workbook with the run summary, the fitness history
// and the winner's trades.
func (r *DefaultExcelReporter) WriteRunXLSX(report *Report, path string) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}

	fx := excelize.NewFile()
	defer fx.Close()

	if err := fx.SetSheetName(fx.GetSheetName(0), summarySheet); err != nil {
		return err
	}
	for _, sheet := range []string{historySheet, tradesSheet} {
		if _, err := fx.NewSheet(sheet); err != nil {
			return err
		}
	}

	styles, err := r.createExcelStyles(fx)
	if err != nil {
		return err
	}

	if err := r.writeSummarySheet(fx, report, styles); err != nil {
		return err
	}
	if err := r.writeHistorySheet(fx, report, styles); err != nil {
		return err
	}
	if err := r.writeTradesSheet(fx, report, styles); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

func (r *DefaultExcelReporter) createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	border := []excelize.Border{
		{Type: "left", Color: "E0E0E0", Style: 1},
		{Type: "right", Color: "E0E0E0", Style: 1},
		{Type: "bottom", Color: "E0E0E0", Style: 1},
	}

	// Header style - dark slate background with white text
	styles.HeaderStyle, err = fx.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF", Family: "Calibri"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"2F4F4F"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	styles.TitleStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14, Color: "2F4F4F"},
	})
	if err != nil {
		return styles, err
	}

	styles.BaseStyle, err = fx.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "left"},
		Border:    border,
	})
	if err != nil {
		return styles, err
	}

	styles.NumberStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    4, // #,##0.00
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    border,
	})
	if err != nil {
		return styles, err
	}

	styles.PercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    10, // 0.00%
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    border,
	})
	if err != nil {
		return styles, err
	}

	styles.GreenStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    10,
		Font:      &excelize.Font{Color: "008000"},
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    border,
	})
	if err != nil {
		return styles, err
	}

	styles.RedStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    10,
		Font:      &excelize.Font{Color: "FF0000"},
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    border,
	})
	return styles, err
}

type summaryRow struct {
	label string
	value interface{}
	style int
}

func (r *DefaultExcelReporter) writeSummarySheet(fx *excelize.File, report *Report, styles ExcelStyles) error {
	s := report.Summary

	if err := fx.SetCellValue(summarySheet, "A1", "GA Optimization Summary"); err != nil {
		return err
	}
	if err := fx.SetCellStyle(summarySheet, "A1", "A1", styles.TitleStyle); err != nil {
		return err
	}
	if err := r.writeRow(fx, summarySheet, 3, []interface{}{"Metric", "Train", "Test"}, styles.HeaderStyle); err != nil {
		return err
	}

	rows := []summaryRow{
		{"Run ID", s.Metadata.RunID, styles.BaseStyle},
		{"Symbol", s.Metadata.Symbol, styles.BaseStyle},
		{"Sector", s.Metadata.Sector, styles.BaseStyle},
		{"Started", s.Metadata.StartedAt.Format(time.RFC3339), styles.BaseStyle},
		{"Stop Reason", s.StopReason, styles.BaseStyle},
		{"Generations", s.Generations, styles.NumberStyle},
		{"Duration (s)", s.Duration.Seconds(), styles.NumberStyle},
	}

	row := 4
	for _, sr := range rows {
		if err := r.writeRow(fx, summarySheet, row, []interface{}{sr.label, sr.value}, sr.style); err != nil {
			return err
		}
		row++
	}

	if s.Best == nil {
		return fx.SetColWidth(summarySheet, "A", "C", 22)
	}

	row++
	best := s.Best
	params := []summaryRow{
		{"MA Intervals", best.Parameters.MIntervals, styles.NumberStyle},
		{"Hold Days", best.Parameters.HoldDays, styles.NumberStyle},
		{"Target Profit", best.Parameters.TargetProfitRatio, styles.PercentStyle},
		{"Alpha (%)", best.Parameters.Alpha, styles.NumberStyle},
	}
	for _, sr := range params {
		if err := r.writeRow(fx, summarySheet, row, []interface{}{sr.label, sr.value}, sr.style); err != nil {
			return err
		}
		row++
	}

	row++
	metrics := []struct {
		label string
		get   func(*types.TradingResult) float64
		style int
	}{
		{"Fitness", func(t *types.TradingResult) float64 { return t.Fitness }, styles.NumberStyle},
		{"Total Profit", func(t *types.TradingResult) float64 { return t.TotalProfit }, styles.NumberStyle},
		{"Win Rate", func(t *types.TradingResult) float64 { return t.WinRate }, styles.PercentStyle},
		{"Max Drawdown", func(t *types.TradingResult) float64 { return t.MaxDrawdown }, styles.PercentStyle},
		{"Sharpe Ratio", func(t *types.TradingResult) float64 { return t.SharpeRatio }, styles.NumberStyle},
	}
	for _, m := range metrics {
		values := []interface{}{m.label, m.get(best)}
		if best.TestResult != nil {
			values = append(values, m.get(best.TestResult))
		}
		if err := r.writeRow(fx, summarySheet, row, values, m.style); err != nil {
			return err
		}
		row++
	}

	return fx.SetColWidth(summarySheet, "A", "C", 22)
}

func (r *DefaultExcelReporter) writeHistorySheet(fx *excelize.File, report *Report, styles ExcelStyles) error {
	if err := r.writeRow(fx, historySheet, 1, []interface{}{"Generation", "Best Fitness", "Avg Fitness"}, styles.HeaderStyle); err != nil {
		return err
	}

	s := report.Summary
	for i, best := range s.BestFitnessHistory {
		values := []interface{}{i, best}
		if i < len(s.AvgFitnessHistory) {
			values = append(values, s.AvgFitnessHistory[i])
		}
		if err := r.writeRow(fx, historySheet, i+2, values, styles.NumberStyle); err != nil {
			return err
		}
	}
	return fx.SetColWidth(historySheet, "A", "C", 16)
}

func (r *DefaultExcelReporter) writeTradesSheet(fx *excelize.File, report *Report, styles ExcelStyles) error {
	headers := []interface{}{"Trade", "Entry Date", "Exit Date", "Entry Price", "Exit Price", "Return", "Hold Bars", "Exit Reason"}
	if err := r.writeRow(fx, tradesSheet, 1, headers, styles.HeaderStyle); err != nil {
		return err
	}

	for i, t := range report.Trades {
		row := i + 2
		values := []interface{}{
			i + 1,
			dateAt(report.Train, t.EntryIndex),
			dateAt(report.Train, t.ExitIndex),
			t.EntryPrice,
			t.ExitPrice,
			t.Return,
			t.HoldBars,
			string(t.Reason),
		}
		if err := r.writeRow(fx, tradesSheet, row, values, styles.NumberStyle); err != nil {
			return err
		}

		returnStyle := styles.GreenStyle
		if t.Return <= 0 {
			returnStyle = styles.RedStyle
		}
		cell, err := excelize.CoordinatesToCellName(6, row)
		if err != nil {
			return err
		}
		if err := fx.SetCellStyle(tradesSheet, cell, cell, returnStyle); err != nil {
			return err
		}
	}
	return fx.SetColWidth(tradesSheet, "A", "H", 14)
}

// writeRow writes values from column A and applies style to the row.
func (r *DefaultExcelReporter) writeRow(fx *excelize.File, sheet string, row int, values []interface{}, style int) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(len(values), row)
	if err != nil {
		return err
	}
	if err := fx.SetSheetRow(sheet, start, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return fx.SetCellStyle(sheet, start, end, style)
}

// WriteRunXLSX is a convenience function using the default Excel reporter
func WriteRunXLSX(report *Report, path string) error {
	return NewDefaultExcelReporter().WriteRunXLSX(report, path)
}
