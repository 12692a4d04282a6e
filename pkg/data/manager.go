package data

import (
	"context"
	"fmt"
)

// DataManager combines all data operations in a convenient interface
type DataManager struct {
	provider DataProvider
	filter   *DefaultDataFilter
	locator  FileLocator
}

// NewDataManager creates a new data manager with default components
func NewDataManager() *DataManager {
	return NewDataManagerWithProvider(NewCachedProvider(NewCSVProvider()))
}

// NewDataManagerWithProvider creates a data manager with a custom provider
func NewDataManagerWithProvider(provider DataProvider) *DataManager {
	return &DataManager{
		provider: provider,
		filter:   NewDefaultDataFilter(),
		locator:  NewDefaultFileLocator(),
	}
}

// LoadTable loads a table from a file path
func (dm *DataManager) LoadTable(ctx context.Context, source string) (*Table, error) {
	return dm.provider.LoadTable(ctx, source)
}

// LoadSymbol locates and loads a symbol's file under dataRoot
func (dm *DataManager) LoadSymbol(ctx context.Context, dataRoot, symbol string) (*Table, string, error) {
	path := dm.locator.FindDataFile(dataRoot, symbol)
	if path == "" {
		return nil, "", fmt.Errorf("no data file for %s under %s", symbol, dataRoot)
	}
	table, err := dm.provider.LoadTable(ctx, path)
	if err != nil {
		return nil, path, err
	}
	return table, path, nil
}

// GetProvider returns the underlying provider
func (dm *DataManager) GetProvider() DataProvider {
	return dm.provider
}

// GetFilter returns the series filter
func (dm *DataManager) GetFilter() *DefaultDataFilter {
	return dm.filter
}
