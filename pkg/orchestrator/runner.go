package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	opterrors "github.com/ducminhle1904/ga-trading-optimizer/internal/errors"
	"github.com/ducminhle1904/ga-trading-optimizer/internal/monitoring"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/data"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/optimization"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/validation"
)

// RunnerConfig configures single-symbol runs.
type RunnerConfig struct {
	Optimization optimization.OptimizationConfig
	Split        validation.SplitConfig
	Accelerated  bool
}

// Runner optimizes one symbol at a time: preprocess, evolve, persist.
type Runner struct {
	config       RunnerConfig
	preprocessor *validation.Preprocessor
	newEngine    EngineFactory
	store        ResultStore
	progress     ProgressReporter
	now          func() time.Time
	logger       zerolog.Logger
}

// NewRunner creates a runner that builds the base or accelerated engine
// according to cfg.Accelerated.
func NewRunner(cfg RunnerConfig) *Runner {
	accelerated := cfg.Accelerated
	return &Runner{
		config:       cfg,
		preprocessor: validation.NewPreprocessor(cfg.Split),
		newEngine: func(train, holdout types.PriceSeries, opt optimization.OptimizationConfig) (optimization.Engine, error) {
			return optimization.NewEngine(train, holdout, opt, accelerated)
		},
		now:    time.Now,
		logger: log.With().Str("component", "runner").Logger(),
	}
}

// WithStore persists every winner to store.
func (r *Runner) WithStore(store ResultStore) *Runner {
	r.store = store
	return r
}

// WithProgress forwards generation and completion updates to p.
func (r *Runner) WithProgress(p ProgressReporter) *Runner {
	r.progress = p
	return r
}

// WithEngineFactory replaces the engine constructor.
func (r *Runner) WithEngineFactory(f EngineFactory) *Runner {
	r.newEngine = f
	return r
}

// Optimize preprocesses table and runs one search for job. Storage faults
// are logged and do not fail the run.
func (r *Runner) Optimize(ctx context.Context, job SymbolJob, table *data.Table) (*RunOutcome, error) {
	split := r.preprocessor.Prepare(table)
	return r.OptimizeSplit(ctx, job, split)
}

// OptimizeSplit runs one search over an already partitioned dataset.
func (r *Runner) OptimizeSplit(ctx context.Context, job SymbolJob, split validation.Split) (*RunOutcome, error) {
	cfg := r.config.Optimization
	cfg.Symbol = job.Symbol

	engine, err := r.newEngine(split.Train, split.Holdout, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine for %s: %w", job.Symbol, err)
	}
	if r.progress != nil {
		engine.OnGeneration(func(generation int, best, _ float64) {
			r.progress.Generation(job.Symbol, generation, best)
		})
	}

	r.logger.Info().
		Str("symbol", job.Symbol).
		Str("sector", job.Sector).
		Int("train_rows", len(split.Train)).
		Int("holdout_rows", len(split.Holdout)).
		Str("split_mode", string(split.Mode)).
		Msg("🚀 Starting optimization")

	started := r.now()
	best := engine.Evolve(ctx)
	if best == nil {
		return nil, opterrors.New(opterrors.ErrorCategoryOptimization, "runner", "evolve", "engine returned no winner").
			WithContext("symbol", job.Symbol)
	}

	outcome := &RunOutcome{
		Summary: types.RunSummary{
			Metadata: types.RunMetadata{
				RunID:     uuid.NewString(),
				Symbol:    job.Symbol,
				Sector:    job.Sector,
				StartedAt: started,
			},
			Best:               best,
			StopReason:         engine.StopReason(),
			Generations:        engine.Generations(),
			Duration:           r.now().Sub(started),
			BestFitnessHistory: engine.BestFitnessHistory(),
			AvgFitnessHistory:  engine.AvgFitnessHistory(),
		},
		Split: split,
	}

	if r.store != nil {
		id, err := r.store.SaveBestParameters(ctx, outcome.Summary)
		if err != nil {
			r.logger.Warn().Err(err).Str("symbol", job.Symbol).Msg("⚠️ Failed to store best parameters")
			monitoring.RecordError("storage")
			if r.progress != nil {
				r.progress.Error(err.Error())
			}
		} else {
			outcome.StoredID = id
		}
	}

	if r.progress != nil {
		r.progress.Finished(job.Symbol, outcome.Summary.StopReason)
	}
	return outcome, nil
}
