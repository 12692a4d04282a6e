package data

import (
	"math/rand"
	"strconv"
	"time"

	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
)

// GenerateRandomWalk creates a seeded daily close series, skipping weekends,
// for demos and tests when no real data is available.
func GenerateRandomWalk(seed int64, days int, start time.Time, startPrice, volatility float64) types.PriceSeries {
	rng := rand.New(rand.NewSource(seed))
	series := make(types.PriceSeries, 0, days)

	price := startPrice
	date := start
	for len(series) < days {
		if wd := date.Weekday(); wd != time.Saturday && wd != time.Sunday {
			price *= 1 + rng.NormFloat64()*volatility
			if price < startPrice*0.05 {
				price = startPrice * 0.05
			}
			series = append(series, types.PriceBar{Date: date, Close: price})
		}
		date = date.AddDate(0, 0, 1)
	}
	return series
}

// SeriesToTable renders a series as a Date/Close table.
func SeriesToTable(series types.PriceSeries) *Table {
	table := &Table{Columns: []string{"Date", "Close"}, Rows: make([][]string, len(series))}
	for i, bar := range series {
		table.Rows[i] = []string{
			bar.Date.Format("2006-01-02"),
			strconv.FormatFloat(bar.Close, 'f', 4, 64),
		}
	}
	return table
}
