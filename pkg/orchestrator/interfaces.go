// Package orchestrator runs the optimizer over one or many symbols:
// preprocessing, engine construction, persistence and aggregation.
package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ducminhle1904/ga-trading-optimizer/pkg/data"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/optimization"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/validation"
)

// DefaultMinRows is the smallest dataset a batch run will optimize.
const DefaultMinRows = 50

// EngineFactory builds a search engine for one symbol.
type EngineFactory func(train, holdout types.PriceSeries, cfg optimization.OptimizationConfig) (optimization.Engine, error)

// ResultStore persists run winners. storage.PostgresStore implements it.
type ResultStore interface {
	SaveBestParameters(ctx context.Context, summary types.RunSummary) (uuid.UUID, error)
}

// TableLoader resolves a file or a symbol to a raw table.
// data.DataManager implements it.
type TableLoader interface {
	LoadTable(ctx context.Context, source string) (*data.Table, error)
	LoadSymbol(ctx context.Context, dataRoot, symbol string) (*data.Table, string, error)
}

// ProgressReporter receives per-generation and per-run updates.
// monitoring.StatusTracker implements it.
type ProgressReporter interface {
	Generation(symbol string, generation int, best float64)
	Finished(symbol, stopReason string)
	Error(msg string)
}

// SymbolJob is one entry of a batch.
type SymbolJob struct {
	Symbol string `json:"symbol"`
	Sector string `json:"sector"`
	Source string `json:"source,omitempty"`
}

// RunOutcome is the result of optimizing one symbol.
type RunOutcome struct {
	Summary  types.RunSummary
	Split    validation.Split
	StoredID uuid.UUID
}

// SymbolResult records what happened to one batch entry.
type SymbolResult struct {
	Job     SymbolJob
	Outcome *RunOutcome
	Skipped bool
	Err     error
}

// BatchResult aggregates a batch run.
type BatchResult struct {
	Results     []SymbolResult
	StopReasons map[string]int
	Succeeded   int
	Failed      int
	Skipped     int
	Duration    time.Duration
}

// Summaries returns the run summaries of the successful entries.
func (b *BatchResult) Summaries() []types.RunSummary {
	out := make([]types.RunSummary, 0, b.Succeeded)
	for _, r := range b.Results {
		if r.Outcome != nil {
			out = append(out, r.Outcome.Summary)
		}
	}
	return out
}
