package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/ga-trading-optimizer/internal/config"
	"github.com/ducminhle1904/ga-trading-optimizer/internal/storage"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
)

type fakeStoredReader struct {
	records  map[string]*storage.StoredParameters
	counts   map[string]int
	countErr error
	lookups  []string
}

func (f *fakeStoredReader) LatestBySymbol(_ context.Context, symbol string) (*storage.StoredParameters, error) {
	f.lookups = append(f.lookups, symbol)
	rec, ok := f.records[symbol]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return rec, nil
}

func (f *fakeStoredReader) CountBySymbol(context.Context) (map[string]int, error) {
	return f.counts, f.countErr
}

func newFakeStoredReader() *fakeStoredReader {
	return &fakeStoredReader{
		records: map[string]*storage.StoredParameters{
			"2330": {
				Symbol:      "2330",
				Sector:      "Semiconductors",
				Parameters:  types.TradingParameters{MIntervals: 25, HoldDays: 7, TargetProfitRatio: 0.08, Alpha: 12.5},
				Fitness:     1.4,
				HasHoldout:  true,
				TestFitness: 0.7,
				CreatedAt:   time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
			},
			"2317": {
				Symbol:     "2317",
				Parameters: types.TradingParameters{MIntervals: 10, HoldDays: 3, TargetProfitRatio: 0.05, Alpha: 2},
				Fitness:    0.9,
				CreatedAt:  time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			},
		},
		counts: map[string]int{"2330": 3, "2317": 1},
	}
}

func TestShowStored_AllSymbolsSorted(t *testing.T) {
	store := newFakeStoredReader()
	var buf bytes.Buffer

	require.NoError(t, showStored(context.Background(), &buf, store, nil))

	assert.Equal(t, []string{"2317", "2330"}, store.lookups)
	out := buf.String()
	assert.Contains(t, out, "STORED BEST PARAMETERS")
	assert.Contains(t, out, "Semiconductors")
	assert.Contains(t, out, "0.0800")
	assert.Contains(t, out, "0.7000")
	assert.Contains(t, out, "2025-03-01 09:30")
}

func TestShowStored_UnknownSymbol(t *testing.T) {
	store := newFakeStoredReader()
	var buf bytes.Buffer

	require.NoError(t, showStored(context.Background(), &buf, store, []string{"9999"}))
	assert.Equal(t, []string{"9999"}, store.lookups)
	assert.Contains(t, buf.String(), "never")
}

func TestShowStored_CountError(t *testing.T) {
	store := newFakeStoredReader()
	store.countErr = errors.New("connection refused")

	err := showStored(context.Background(), &bytes.Buffer{}, store, nil)
	assert.ErrorContains(t, err, "connection refused")
	assert.Empty(t, store.lookups)
}

func TestStoredSymbols(t *testing.T) {
	cfg := config.Default()
	assert.Nil(t, storedSymbols(cfg))

	cfg.Data.Symbol = "2330"
	assert.Equal(t, []string{"2330"}, storedSymbols(cfg))

	cfg.Data.Symbols = []string{"2330:Semiconductors", " 2317 "}
	assert.Equal(t, []string{"2330", "2317"}, storedSymbols(cfg))
}

func TestRun_ShowStoredNeedsStore(t *testing.T) {
	fs, flags := parse(t, "-show-stored", "-env", filepath.Join(t.TempDir(), "none.env"))

	err := run(context.Background(), fs, flags)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-show-stored")
}
