package data

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultFileLocator implements FileLocator
type DefaultFileLocator struct{}

// NewDefaultFileLocator creates a new default file locator
func NewDefaultFileLocator() *DefaultFileLocator {
	return &DefaultFileLocator{}
}

// FindDataFile looks for a symbol's daily prices under dataRoot, trying
// {SYMBOL}.csv, {SYMBOL}/daily.csv, then the first {SYMBOL}_*.csv.
// Returns empty string if no file is found.
func (f *DefaultFileLocator) FindDataFile(dataRoot, symbol string) string {
	upper := strings.ToUpper(symbol)

	candidates := []string{
		filepath.Join(dataRoot, symbol+".csv"),
		filepath.Join(dataRoot, upper+".csv"),
		filepath.Join(dataRoot, upper, "daily.csv"),
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}

	matches, _ := filepath.Glob(filepath.Join(dataRoot, upper+"_*.csv"))
	if len(matches) > 0 {
		sort.Strings(matches)
		return matches[0]
	}

	log.Warn().Str("symbol", symbol).Str("data_root", dataRoot).Strs("attempted", candidates).
		Msg("⚠️ No data file found")
	return ""
}
