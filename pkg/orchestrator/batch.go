package orchestrator

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ducminhle1904/ga-trading-optimizer/internal/monitoring"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/data"
)

// BatchRunner optimizes a list of symbols one after another. Each run
// already evaluates its population in parallel.
type BatchRunner struct {
	runner   *Runner
	loader   TableLoader
	dataRoot string
	minRows  int
	logger   zerolog.Logger
}

// NewBatchRunner creates a batch runner. Datasets with fewer than minRows
// rows are skipped; a non-positive minRows uses DefaultMinRows.
func NewBatchRunner(runner *Runner, loader TableLoader, dataRoot string, minRows int) *BatchRunner {
	if minRows <= 0 {
		minRows = DefaultMinRows
	}
	return &BatchRunner{
		runner:   runner,
		loader:   loader,
		dataRoot: dataRoot,
		minRows:  minRows,
		logger:   log.With().Str("component", "batch_runner").Logger(),
	}
}

// Run processes jobs in order. Cancelling ctx marks the remaining jobs as
// failed without loading them.
func (b *BatchRunner) Run(ctx context.Context, jobs []SymbolJob) *BatchResult {
	result := &BatchResult{
		Results:     make([]SymbolResult, 0, len(jobs)),
		StopReasons: make(map[string]int),
	}
	tracker := NewProgressTracker(len(jobs))
	started := b.runner.now()

	b.logger.Info().Int("symbols", len(jobs)).Int("min_rows", b.minRows).Msg("📊 Starting batch optimization")

	for i, job := range jobs {
		var res SymbolResult
		if err := ctx.Err(); err != nil {
			res = SymbolResult{Job: job, Err: err}
		} else {
			b.logger.Info().
				Str("symbol", job.Symbol).
				Str("sector", job.Sector).
				Msgf("🔄 Processing %d/%d", i+1, len(jobs))
			res = b.runOne(ctx, job)
		}

		switch {
		case res.Skipped:
			result.Skipped++
		case res.Err != nil:
			result.Failed++
			monitoring.RecordError("batch")
		default:
			result.Succeeded++
			result.StopReasons[res.Outcome.Summary.StopReason]++
		}
		result.Results = append(result.Results, res)

		tracker.Increment()
		done, total, pct, elapsed := tracker.GetProgress()
		b.logger.Debug().
			Int("done", done).
			Int("total", total).
			Float64("percent", pct).
			Str("elapsed", elapsed.Round(time.Second).String()).
			Str("eta", tracker.EstimateTimeRemaining().Round(time.Second).String()).
			Msg("⏳ Batch progress")
	}

	result.Duration = b.runner.now().Sub(started)
	b.logger.Info().
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Int("skipped", result.Skipped).
		Interface("stop_reasons", result.StopReasons).
		Str("duration", result.Duration.Round(time.Millisecond).String()).
		Msg("✅ Batch optimization complete")
	return result
}

func (b *BatchRunner) runOne(ctx context.Context, job SymbolJob) SymbolResult {
	table, err := b.load(ctx, job)
	if err != nil {
		b.logger.Error().Err(err).Str("symbol", job.Symbol).Msg("❌ Failed to load data")
		return SymbolResult{Job: job, Err: err}
	}
	if table.Len() < b.minRows {
		b.logger.Warn().
			Str("symbol", job.Symbol).
			Int("rows", table.Len()).
			Int("min_rows", b.minRows).
			Msg("⚠️ Insufficient data, skipping")
		return SymbolResult{Job: job, Skipped: true}
	}

	outcome, err := b.runner.Optimize(ctx, job, table)
	if err != nil {
		b.logger.Error().Err(err).Str("symbol", job.Symbol).Msg("❌ Optimization failed")
		return SymbolResult{Job: job, Err: err}
	}

	best := outcome.Summary.Best
	b.logger.Info().
		Str("symbol", job.Symbol).
		Str("params", best.Parameters.String()).
		Float64("fitness", best.Fitness).
		Float64("win_rate", best.WinRate).
		Str("stop_reason", outcome.Summary.StopReason).
		Msg("🏆 Symbol optimized")
	return SymbolResult{Job: job, Outcome: outcome}
}

func (b *BatchRunner) load(ctx context.Context, job SymbolJob) (*data.Table, error) {
	if job.Source != "" {
		return b.loader.LoadTable(ctx, job.Source)
	}
	table, _, err := b.loader.LoadSymbol(ctx, b.dataRoot, job.Symbol)
	return table, err
}
