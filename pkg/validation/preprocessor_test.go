package validation

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/ga-trading-optimizer/pkg/data"
)

func yearlyTable(dateCol, priceCol string, years ...int) *data.Table {
	table := &data.Table{Columns: []string{dateCol, "Open", priceCol}}
	for _, y := range years {
		for d := 1; d <= 5; d++ {
			table.Rows = append(table.Rows, []string{
				fmt.Sprintf("%d-03-%02d", y, d),
				"1",
				fmt.Sprintf("%d.%d", y-2000, d),
			})
		}
	}
	return table
}

func TestPreprocessor_CalendarSplit(t *testing.T) {
	table := yearlyTable("\ufeffDate", "Close", 2018, 2019, 2021, 2023, 2024, 2025)

	split := NewPreprocessor(DefaultSplitConfig()).Prepare(table)

	assert.Equal(t, SplitCalendar, split.Mode)
	assert.Equal(t, "Date", split.DateColumn)
	assert.Equal(t, "Close", split.PriceColumn)
	require.Len(t, split.Train, 15)
	require.Len(t, split.Holdout, 5)
	assert.Equal(t, 2019, split.Train[0].Date.Year())
	assert.Equal(t, 2023, split.Train[len(split.Train)-1].Date.Year())
	for _, bar := range split.Holdout {
		assert.Equal(t, 2024, bar.Date.Year())
	}
}

func TestPreprocessor_SortsAndDropsBadDates(t *testing.T) {
	table := &data.Table{
		Columns: []string{"日期", "收盤價"},
		Rows: [][]string{
			{"2020-01-03", "3"},
			{"not a date", "99"},
			{"2020/01/01", "1"},
			{"", "98"},
			{"2020-01-02", "2"},
		},
	}

	split := NewPreprocessor(DefaultSplitConfig()).Prepare(table)

	assert.Equal(t, 2, split.DroppedRows)
	assert.Equal(t, []float64{1, 2, 3}, split.Train.Closes())
	assert.Equal(t, "收盤價", split.PriceColumn)
}

func TestPreprocessor_RatioFallback(t *testing.T) {
	table := yearlyTable("Date", "Close", 2010, 2011)

	split := NewPreprocessor(DefaultSplitConfig()).Prepare(table)

	assert.Equal(t, SplitRatio, split.Mode)
	assert.Len(t, split.Train, 8)
	assert.Len(t, split.Holdout, 2)
	assert.True(t, split.Train[len(split.Train)-1].Date.Before(split.Holdout[0].Date))
}

func TestPreprocessor_NoDateColumnFailsSoft(t *testing.T) {
	table := &data.Table{
		Columns: []string{"Day", "Close"},
		Rows:    [][]string{{"b", "2"}, {"a", "1"}, {"c", "x"}},
	}

	split := NewPreprocessor(DefaultSplitConfig()).Prepare(table)

	assert.Equal(t, SplitFailSoft, split.Mode)
	require.Len(t, split.Train, 3)
	assert.Equal(t, 2.0, split.Train[0].Close)
	assert.True(t, math.IsNaN(split.Train[2].Close))
	assert.Empty(t, split.Holdout)
}

func TestPreprocessor_NumericFallbackColumn(t *testing.T) {
	table := &data.Table{
		Columns: []string{"Date", "Price", "Ticker", "Adj"},
		Rows: [][]string{
			{"2021-01-04", "10", "X", "9.5"},
			{"2021-01-05", "11", "X", "10.5"},
		},
	}

	split := NewPreprocessor(DefaultSplitConfig()).Prepare(table)

	assert.Equal(t, "Adj", split.PriceColumn)
	assert.Equal(t, []float64{9.5, 10.5}, split.Train.Closes())
}

func TestPreprocessor_NoPriceColumn(t *testing.T) {
	table := &data.Table{
		Columns: []string{"Date", "Ticker"},
		Rows:    [][]string{{"2021-01-04", "X"}},
	}

	split := NewPreprocessor(DefaultSplitConfig()).Prepare(table)
	assert.Equal(t, SplitFailSoft, split.Mode)
	assert.Empty(t, split.Train)
	assert.Empty(t, split.Holdout)
}

func TestPreprocessor_EmptyAndNil(t *testing.T) {
	p := NewPreprocessor(SplitConfig{})
	assert.Empty(t, p.Prepare(nil).Train)
	assert.Empty(t, p.Prepare(&data.Table{}).Train)
}

func TestPreprocessor_CustomYears(t *testing.T) {
	table := yearlyTable("Date", "Close", 2015, 2016, 2017)
	split := NewPreprocessor(SplitConfig{TrainStartYear: 2015, TrainEndYear: 2016, HoldoutYear: 2017}).Prepare(table)

	assert.Equal(t, SplitCalendar, split.Mode)
	assert.Len(t, split.Train, 10)
	assert.Len(t, split.Holdout, 5)
}

func TestParseDate(t *testing.T) {
	cases := map[string]time.Time{
		"2024-02-29":           time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		"2024/02/29":           time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		"2024-02-29 13:30:00":  time.Date(2024, 2, 29, 13, 30, 0, 0, time.UTC),
		"02/29/2024":           time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		"20240229":             time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		"1709164800":           time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		"2024-02-29T00:00:00Z": time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, ok := ParseDate(in)
		require.True(t, ok, in)
		assert.True(t, want.Equal(got), "%s parsed as %s", in, got)
	}

	_, ok := ParseDate("2024-02-30")
	assert.False(t, ok)
}

func TestParsePrice(t *testing.T) {
	assert.Equal(t, 1234.5, ParsePrice(" 1,234.5 "))
	assert.True(t, math.IsNaN(ParsePrice("")))
	assert.True(t, math.IsNaN(ParsePrice("--")))
}

func TestNormalizeColumns(t *testing.T) {
	assert.Equal(t, []string{"Date", "Close"}, NormalizeColumns([]string{"\ufeffDate ", " Close"}))
}
