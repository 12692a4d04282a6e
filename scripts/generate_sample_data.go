package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ducminhle1904/ga-trading-optimizer/internal/logger"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/data"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
)

// Writes seeded random-walk Date/Close files, one <SYMBOL>.csv per symbol,
// in the layout the optimizer's batch mode looks for under -data-root.
func main() {
	var (
		symbols    = flag.String("symbols", "DEMO", "Comma-separated list of symbols")
		outdir     = flag.String("outdir", "data", "Directory to write CSV files")
		startDate  = flag.String("start", "2019-01-01", "First date (YYYY-MM-DD)")
		days       = flag.Int("days", 1500, "Number of weekday bars per symbol")
		startPrice = flag.Float64("price", 100, "Starting close")
		volatility = flag.Float64("volatility", 0.02, "Daily return standard deviation")
		seed       = flag.Int64("seed", 1, "Seed of the first symbol; each next symbol adds one")
	)
	flag.Parse()
	logger.Init("info", "console")

	start, err := time.Parse("2006-01-02", *startDate)
	if err != nil {
		log.Fatal().Err(err).Str("start", *startDate).Msg("❌ Invalid start date")
	}
	if err := os.MkdirAll(*outdir, 0755); err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to create output directory")
	}

	for i, symbol := range strings.Split(*symbols, ",") {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol == "" {
			continue
		}
		series := data.GenerateRandomWalk(*seed+int64(i), *days, start, *startPrice, *volatility)
		path := filepath.Join(*outdir, symbol+".csv")
		if err := saveToCSV(series, path); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("❌ Failed to write data")
		}
		log.Info().Str("path", path).Msg("💾 Data saved")
		printSummary(symbol, series)
	}
}

func saveToCSV(series types.PriceSeries, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	table := data.SeriesToTable(series)
	if err := writer.Write(table.Columns); err != nil {
		return err
	}
	if err := writer.WriteAll(table.Rows); err != nil {
		return err
	}
	return writer.Error()
}

func printSummary(symbol string, series types.PriceSeries) {
	if len(series) == 0 {
		return
	}
	first, last := series.Span()

	high, low := series[0].Close, series[0].Close
	for _, bar := range series {
		if bar.Close > high {
			high = bar.Close
		}
		if bar.Close < low {
			low = bar.Close
		}
	}

	fmt.Printf("\n📊 %s SUMMARY:\n", symbol)
	fmt.Printf("  First: %s\n", first.Format("2006-01-02"))
	fmt.Printf("  Last:  %s\n", last.Format("2006-01-02"))
	fmt.Printf("  Total: %d daily bars\n", len(series))
	fmt.Printf("  High:  %.2f\n", high)
	fmt.Printf("  Low:   %.2f\n", low)
	fmt.Printf("  Close: %.2f\n", series[len(series)-1].Close)
}
