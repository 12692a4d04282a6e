package data

import (
	"fmt"
	"sort"
	"time"

	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
)

// DefaultDataFilter implements DataFilter for common filtering operations
type DefaultDataFilter struct{}

// NewDefaultDataFilter creates a new default data filter
func NewDefaultDataFilter() *DefaultDataFilter {
	return &DefaultDataFilter{}
}

// FilterByDateRange filters data to a specific date range
func (f *DefaultDataFilter) FilterByDateRange(series types.PriceSeries, start, end time.Time) types.PriceSeries {
	filtered := types.PriceSeries{}
	for _, bar := range series {
		if !bar.Date.Before(start) && !bar.Date.After(end) {
			filtered = append(filtered, bar)
		}
	}
	return filtered
}

// FilterByYears keeps bars whose calendar year lies in [from, to]
func (f *DefaultDataFilter) FilterByYears(series types.PriceSeries, from, to int) types.PriceSeries {
	filtered := types.PriceSeries{}
	for _, bar := range series {
		if y := bar.Date.Year(); y >= from && y <= to {
			filtered = append(filtered, bar)
		}
	}
	return filtered
}

// ValidateTimeSequence ensures data is in chronological order
func (f *DefaultDataFilter) ValidateTimeSequence(series types.PriceSeries) error {
	for i := 1; i < len(series); i++ {
		if series[i].Date.Before(series[i-1].Date) {
			return fmt.Errorf("data not in chronological order at index %d: %s comes after %s",
				i, series[i].Date.Format(time.RFC3339), series[i-1].Date.Format(time.RFC3339))
		}
	}
	return nil
}

// SortByDate returns a stably sorted copy in ascending date order
func (f *DefaultDataFilter) SortByDate(series types.PriceSeries) types.PriceSeries {
	sorted := make(types.PriceSeries, len(series))
	copy(sorted, series)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// RemoveDuplicates removes duplicate dates, keeping the first occurrence
func (f *DefaultDataFilter) RemoveDuplicates(series types.PriceSeries) types.PriceSeries {
	filtered := make(types.PriceSeries, 0, len(series))
	seen := make(map[int64]bool, len(series))
	for _, bar := range series {
		ts := bar.Date.UnixNano()
		if !seen[ts] {
			seen[ts] = true
			filtered = append(filtered, bar)
		}
	}
	return filtered
}
