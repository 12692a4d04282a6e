package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFilterByYears(t *testing.T) {
	series := types.PriceSeries{
		{Date: day(2018, 12, 31), Close: 1},
		{Date: day(2019, 1, 2), Close: 2},
		{Date: day(2023, 12, 29), Close: 3},
		{Date: day(2024, 1, 2), Close: 4},
	}
	f := NewDefaultDataFilter()

	train := f.FilterByYears(series, 2019, 2023)
	require.Len(t, train, 2)
	assert.Equal(t, 2.0, train[0].Close)

	assert.Len(t, f.FilterByYears(series, 2030, 2031), 0)
}

func TestFilterByDateRange_Inclusive(t *testing.T) {
	series := types.PriceSeries{
		{Date: day(2024, 1, 1)}, {Date: day(2024, 1, 2)}, {Date: day(2024, 1, 3)},
	}
	out := NewDefaultDataFilter().FilterByDateRange(series, day(2024, 1, 2), day(2024, 1, 3))
	assert.Len(t, out, 2)
}

func TestSortAndValidate(t *testing.T) {
	f := NewDefaultDataFilter()
	series := types.PriceSeries{
		{Date: day(2024, 1, 3), Close: 3},
		{Date: day(2024, 1, 1), Close: 1},
		{Date: day(2024, 1, 3), Close: 33},
	}
	assert.Error(t, f.ValidateTimeSequence(series))

	sorted := f.SortByDate(series)
	require.NoError(t, f.ValidateTimeSequence(sorted))
	assert.Equal(t, []float64{1, 3, 33}, sorted.Closes())
	assert.Equal(t, 3.0, series[0].Close, "input must not be reordered")

	deduped := f.RemoveDuplicates(sorted)
	assert.Equal(t, []float64{1, 3}, deduped.Closes())
}

func TestGenerateRandomWalk_Deterministic(t *testing.T) {
	a := GenerateRandomWalk(7, 300, day(2023, 1, 2), 100, 0.02)
	b := GenerateRandomWalk(7, 300, day(2023, 1, 2), 100, 0.02)

	require.Len(t, a, 300)
	assert.Equal(t, a, b)
	for _, bar := range a {
		assert.NotEqual(t, time.Saturday, bar.Date.Weekday())
		assert.NotEqual(t, time.Sunday, bar.Date.Weekday())
		assert.Greater(t, bar.Close, 0.0)
	}
	assert.NoError(t, NewDefaultDataFilter().ValidateTimeSequence(a))

	table := SeriesToTable(a[:2])
	assert.Equal(t, []string{"Date", "Close"}, table.Columns)
	assert.Equal(t, "2023-01-02", table.Rows[0][0])
}

func TestFileLocator_FindDataFile(t *testing.T) {
	dir := t.TempDir()
	locator := NewDefaultFileLocator()

	assert.Equal(t, "", locator.FindDataFile(dir, "2330"))

	nested := writeFile(t, dir, filepath.Join("AAPL", "daily.csv"), "Date,Close\n")
	assert.Equal(t, nested, locator.FindDataFile(dir, "aapl"))

	suffixed := writeFile(t, dir, "MSFT_2019_2024.csv", "Date,Close\n")
	assert.Equal(t, suffixed, locator.FindDataFile(dir, "msft"))

	direct := writeFile(t, dir, "2330.csv", "Date,Close\n")
	assert.Equal(t, direct, locator.FindDataFile(dir, "2330"))

	require.NoError(t, os.Mkdir(filepath.Join(dir, "DIR.csv"), 0755))
	assert.Equal(t, "", locator.FindDataFile(dir, "dir"))
}
