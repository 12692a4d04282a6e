package data

import (
	"context"
	"time"

	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
)

// DataProvider interface for loading raw price tables from various sources
type DataProvider interface {
	// LoadTable loads a header-plus-rows table from the specified source
	LoadTable(ctx context.Context, source string) (*Table, error)

	// GetName returns the name of the data provider
	GetName() string
}

// DataCache interface for caching loaded tables. Caches are best effort:
// backend faults surface as misses.
type DataCache interface {
	// Get retrieves a table from cache if available
	Get(ctx context.Context, key string) (*Table, bool)

	// Set stores a table in cache
	Set(ctx context.Context, key string, table *Table)

	// Clear removes all cached tables
	Clear(ctx context.Context)

	// Size returns the number of cached entries
	Size(ctx context.Context) int
}

// DataFilter interface for filtering and ordering a price series
type DataFilter interface {
	// FilterByDateRange keeps bars with start <= date <= end
	FilterByDateRange(series types.PriceSeries, start, end time.Time) types.PriceSeries

	// FilterByYears keeps bars whose calendar year is in [from, to]
	FilterByYears(series types.PriceSeries, from, to int) types.PriceSeries

	// ValidateTimeSequence ensures data is in chronological order
	ValidateTimeSequence(series types.PriceSeries) error
}

// FileLocator interface for finding per-symbol data files
type FileLocator interface {
	// FindDataFile returns the first existing file for symbol under dataRoot, or ""
	FindDataFile(dataRoot, symbol string) string
}
