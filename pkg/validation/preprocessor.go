package validation

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ducminhle1904/ga-trading-optimizer/pkg/data"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
)

// SplitMode records which partition rule produced a Split.
type SplitMode string

const (
	SplitCalendar SplitMode = "calendar"
	SplitRatio    SplitMode = "ratio"
	SplitFailSoft SplitMode = "fail_soft"
)

var (
	// DefaultDateColumns are probed in order.
	DefaultDateColumns = []string{"Date", "date", "日期", "DATE", "DateTime", "Time"}
	// DefaultPriceColumns are probed in order before the numeric fallback.
	DefaultPriceColumns = []string{"Close", "close", "收盤價", "CLOSE", "Close Price"}

	dateLayouts = []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006/01/02",
		"2006/1/2",
		"01/02/2006",
		"1/2/2006",
		"20060102",
	}
)

const byteOrderMark = "\ufeff"

// SplitConfig controls the train/holdout partition.
type SplitConfig struct {
	TrainStartYear int
	TrainEndYear   int
	HoldoutYear    int
	FallbackRatio  float64
	DateColumns    []string
	PriceColumns   []string
}

// DefaultSplitConfig trains on 2019–2023 and holds out 2024.
func DefaultSplitConfig() SplitConfig {
	return SplitConfig{
		TrainStartYear: 2019,
		TrainEndYear:   2023,
		HoldoutYear:    2024,
		FallbackRatio:  0.8,
		DateColumns:    DefaultDateColumns,
		PriceColumns:   DefaultPriceColumns,
	}
}

// Split is the preprocessed dataset handed to the search engine.
type Split struct {
	Train       types.PriceSeries
	Holdout     types.PriceSeries
	DateColumn  string
	PriceColumn string
	Mode        SplitMode
	DroppedRows int
}

// Preprocessor resolves the date and price columns once and partitions
// the rows into a training window and a holdout window.
type Preprocessor struct {
	config SplitConfig
	filter *data.DefaultDataFilter
	logger zerolog.Logger
}

// NewPreprocessor creates a preprocessor; zero-valued fields take defaults.
func NewPreprocessor(config SplitConfig) *Preprocessor {
	def := DefaultSplitConfig()
	if config.TrainStartYear == 0 && config.TrainEndYear == 0 && config.HoldoutYear == 0 {
		config.TrainStartYear, config.TrainEndYear, config.HoldoutYear = def.TrainStartYear, def.TrainEndYear, def.HoldoutYear
	}
	if config.FallbackRatio <= 0 || config.FallbackRatio >= 1 {
		config.FallbackRatio = def.FallbackRatio
	}
	if len(config.DateColumns) == 0 {
		config.DateColumns = def.DateColumns
	}
	if len(config.PriceColumns) == 0 {
		config.PriceColumns = def.PriceColumns
	}
	return &Preprocessor{
		config: config,
		filter: data.NewDefaultDataFilter(),
		logger: log.With().Str("component", "preprocessor").Logger(),
	}
}

// Prepare never fails. Without a usable date column, or on any parse
// fault, every row becomes training data in file order and the holdout is
// empty. Without a price column both windows are empty.
func (p *Preprocessor) Prepare(table *data.Table) (split Split) {
	if table == nil || len(table.Columns) == 0 {
		p.logger.Warn().Msg("⚠️ Empty dataset")
		return Split{Mode: SplitFailSoft, Train: types.PriceSeries{}, Holdout: types.PriceSeries{}}
	}

	columns := NormalizeColumns(table.Columns)
	priceIdx := p.resolvePriceColumn(columns, table)
	if priceIdx < 0 {
		return Split{Mode: SplitFailSoft, Train: types.PriceSeries{}, Holdout: types.PriceSeries{}}
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().Interface("panic", r).Msg("❌ Data split failed, using all rows for training")
			split = p.failSoft(columns, table, priceIdx)
		}
	}()

	dateIdx := findColumn(columns, p.config.DateColumns)
	if dateIdx < 0 {
		p.logger.Warn().Strs("columns", columns).Msg("⚠️ No date column found, using all rows for training")
		return p.failSoft(columns, table, priceIdx)
	}

	series := make(types.PriceSeries, 0, len(table.Rows))
	dropped := 0
	for _, row := range table.Rows {
		date, ok := ParseDate(cell(row, dateIdx))
		if !ok {
			dropped++
			continue
		}
		series = append(series, types.PriceBar{Date: date, Close: priceAt(row, priceIdx)})
	}
	series = p.filter.SortByDate(series)

	split = Split{
		DateColumn:  columns[dateIdx],
		PriceColumn: columnName(columns, priceIdx),
		Mode:        SplitCalendar,
		DroppedRows: dropped,
	}

	if len(series) > 0 {
		first, last := series.Span()
		p.logger.Info().
			Int("rows", len(series)).
			Int("dropped", dropped).
			Str("from", first.Format("2006-01-02")).
			Str("to", last.Format("2006-01-02")).
			Msg("📅 Dataset date range")
	}

	split.Train = p.filter.FilterByYears(series, p.config.TrainStartYear, p.config.TrainEndYear)
	split.Holdout = p.filter.FilterByYears(series, p.config.HoldoutYear, p.config.HoldoutYear)

	if len(split.Train) == 0 {
		p.logger.Warn().
			Int("train_start", p.config.TrainStartYear).
			Int("train_end", p.config.TrainEndYear).
			Msg("⚠️ Calendar training window is empty, falling back to ratio split")
		split.Train, split.Holdout = SplitByRatio(series, p.config.FallbackRatio)
		split.Mode = SplitRatio
	}

	if len(split.Holdout) == 0 {
		p.logger.Warn().Int("holdout_year", p.config.HoldoutYear).Msg("⚠️ Holdout window is empty")
	}
	p.logger.Info().
		Int("train", len(split.Train)).
		Int("holdout", len(split.Holdout)).
		Str("mode", string(split.Mode)).
		Msg("📊 Data split complete")
	return split
}

func (p *Preprocessor) failSoft(columns []string, table *data.Table, priceIdx int) Split {
	series := make(types.PriceSeries, 0, len(table.Rows))
	for _, row := range table.Rows {
		series = append(series, types.PriceBar{Close: priceAt(row, priceIdx)})
	}
	return Split{
		Train:       series,
		Holdout:     types.PriceSeries{},
		PriceColumn: columnName(columns, priceIdx),
		Mode:        SplitFailSoft,
	}
}

// resolvePriceColumn prefers a recognized name, else the last column whose
// cells mostly parse as numbers. Returns -1 when nothing qualifies.
func (p *Preprocessor) resolvePriceColumn(columns []string, table *data.Table) int {
	if idx := findColumn(columns, p.config.PriceColumns); idx >= 0 {
		return idx
	}
	dateIdx := findColumn(columns, p.config.DateColumns)
	for idx := len(columns) - 1; idx >= 0; idx-- {
		if idx == dateIdx {
			continue
		}
		if numericShare(table, idx) > 0.5 {
			p.logger.Warn().Str("column", columns[idx]).Msg("⚠️ No close column found, using last numeric column")
			return idx
		}
	}
	p.logger.Error().Strs("columns", columns).Msg("❌ No price column found")
	return -1
}

// NormalizeColumns strips byte-order marks and surrounding spaces.
func NormalizeColumns(columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = strings.TrimSpace(strings.ReplaceAll(c, byteOrderMark, ""))
	}
	return out
}

// ParseDate tries each supported layout, then unix seconds.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil && secs > 1e8 {
		return time.Unix(secs, 0).UTC(), true
	}
	return time.Time{}, false
}

// ParsePrice parses a price cell, tolerating thousands separators. Bad
// cells are NaN.
func ParsePrice(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func findColumn(columns, names []string) int {
	for _, name := range names {
		for i, c := range columns {
			if c == name {
				return i
			}
		}
	}
	return -1
}

func numericShare(table *data.Table, idx int) float64 {
	if len(table.Rows) == 0 {
		return 0
	}
	n := 0
	for _, row := range table.Rows {
		if !math.IsNaN(ParsePrice(cell(row, idx))) {
			n++
		}
	}
	return float64(n) / float64(len(table.Rows))
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func priceAt(row []string, idx int) float64 {
	if idx < 0 {
		return math.NaN()
	}
	return ParsePrice(cell(row, idx))
}

func columnName(columns []string, idx int) string {
	if idx < 0 || idx >= len(columns) {
		return ""
	}
	return columns[idx]
}
