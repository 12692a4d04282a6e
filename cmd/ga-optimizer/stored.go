package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ducminhle1904/ga-trading-optimizer/internal/config"
	"github.com/ducminhle1904/ga-trading-optimizer/internal/storage"
)

// storedReader is the read side of the result store.
type storedReader interface {
	LatestBySymbol(ctx context.Context, symbol string) (*storage.StoredParameters, error)
	CountBySymbol(ctx context.Context) (map[string]int, error)
}

// storedSymbols picks the symbols to look up: the batch list, else the
// single symbol, else nil for every stored symbol.
func storedSymbols(cfg *config.Config) []string {
	if len(cfg.Data.Symbols) > 0 {
		out := make([]string, 0, len(cfg.Data.Symbols))
		for _, entry := range cfg.Data.Symbols {
			symbol, _, _ := strings.Cut(entry, ":")
			out = append(out, strings.TrimSpace(symbol))
		}
		return out
	}
	if cfg.Data.Symbol != "" {
		return []string{cfg.Data.Symbol}
	}
	return nil
}

// showStored prints the latest stored winner and the stored run count for
// each symbol.
func showStored(ctx context.Context, w io.Writer, store storedReader, symbols []string) error {
	counts, err := store.CountBySymbol(ctx)
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		for symbol := range counts {
			symbols = append(symbols, symbol)
		}
		sort.Strings(symbols)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("STORED BEST PARAMETERS")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Symbol", "Sector", "Runs", "MA", "Hold", "Target", "Alpha", "Fitness", "Test", "Stored"})

	for _, symbol := range symbols {
		rec, err := store.LatestBySymbol(ctx, symbol)
		if errors.Is(err, storage.ErrNotFound) {
			t.AppendRow(table.Row{symbol, "-", 0, "-", "-", "-", "-", "-", "-", "never"})
			continue
		}
		if err != nil {
			return err
		}

		test := "-"
		if rec.HasHoldout {
			test = fmt.Sprintf("%.4f", rec.TestFitness)
		}
		t.AppendRow(table.Row{
			rec.Symbol, orDash(rec.Sector), counts[symbol],
			rec.Parameters.MIntervals, rec.Parameters.HoldDays,
			fmt.Sprintf("%.4f", rec.Parameters.TargetProfitRatio), fmt.Sprintf("%.3f", rec.Parameters.Alpha),
			fmt.Sprintf("%.4f", rec.Fitness), test, rec.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	t.Render()
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
