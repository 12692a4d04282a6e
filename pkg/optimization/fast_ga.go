package optimization

import (
	"context"
	"math"

	"github.com/ducminhle1904/ga-trading-optimizer/internal/backtest"
	"github.com/ducminhle1904/ga-trading-optimizer/internal/monitoring"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
)

const (
	minParallelPopulation = 4
	mutationDecay         = 0.95
	minAdaptiveMutation   = 0.05
)

// FastGeneticAlgorithm is the accelerated search: concurrent evaluation,
// an elite fraction, adaptive mutation, two-offspring crossover and an
// early stop when the best-ever fitness stops improving.
type FastGeneticAlgorithm struct {
	*GeneticAlgorithm

	pool           BatchEvaluator
	fallbackLogged bool
	bestEver       *types.TradingResult
	noImprovement  int
}

// NewFastGeneticAlgorithm creates the accelerated engine. The worker pool
// is sized to min(MaxWorkers, PopulationSize).
func NewFastGeneticAlgorithm(train, holdout types.PriceSeries, cfg OptimizationConfig) (*FastGeneticAlgorithm, error) {
	base, err := NewGeneticAlgorithm(train, holdout, cfg)
	if err != nil {
		return nil, err
	}
	base.logger = base.logger.With().Str("variant", "fast").Logger()

	workers := base.config.MaxWorkers
	if workers > base.config.PopulationSize {
		workers = base.config.PopulationSize
	}
	return &FastGeneticAlgorithm{
		GeneticAlgorithm: base,
		pool:             backtest.NewWorkerPool(workers, base.evaluator),
	}, nil
}

// Evolve runs the accelerated search. The winner is the best individual
// seen in any generation, re-scored on the training window, with its
// holdout result attached when a holdout window exists.
func (f *FastGeneticAlgorithm) Evolve(ctx context.Context) *types.TradingResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.begin()
	f.bestEver = nil
	f.noImprovement = 0
	f.fallbackLogged = false

	f.logger.Info().
		Int("population", f.config.PopulationSize).
		Int("generations", f.config.Generations).
		Bool("parallel", f.parallel()).
		Float64("elite_ratio", f.config.EliteRatio).
		Int("patience", f.config.EarlyStopPatience).
		Msg("🚀 Starting accelerated genetic algorithm")

	initial := make([]types.TradingParameters, f.config.PopulationSize)
	for i := range initial {
		initial[i] = f.operator.RandomIndividual()
	}
	population := f.evaluateBatch(ctx, initial)

	for gen := 0; ; gen++ {
		best, avg := f.record(population)
		f.observe(population)

		if reason := f.checkStop(ctx, gen); reason != "" {
			f.halt(reason, gen, best, avg)
			break
		}

		rate := f.mutationRate(gen)
		next := population.Elite(f.eliteCount())
		children := make([]types.TradingParameters, 0, f.config.PopulationSize-len(next))
		for len(next)+len(children) < f.config.PopulationSize {
			p1 := f.operator.TournamentSelect(population, f.config.TournamentSize)
			p2 := f.operator.TournamentSelect(population, f.config.TournamentSize)
			c1, c2 := f.operator.CrossoverPair(p1, p2)
			children = append(children, f.operator.MutateWithRate(c1, rate))
			if len(next)+len(children) < f.config.PopulationSize {
				children = append(children, f.operator.MutateWithRate(c2, rate))
			}
		}
		population = append(next, f.evaluateBatch(ctx, children)...)

		f.logProgress(gen, best, avg)
	}

	winner := f.evaluate(f.bestEver.Parameters, f.train, f.rng)
	return f.finish(winner)
}

// checkStop adds the early-stop predicate after time and convergence.
func (f *FastGeneticAlgorithm) checkStop(ctx context.Context, gen int) string {
	switch {
	case f.timeExceeded(ctx):
		return StopTimeLimit
	case f.converged():
		return StopConverged
	case f.config.EarlyStopPatience > 0 && f.noImprovement >= f.config.EarlyStopPatience:
		return StopEarlyStop
	case gen >= f.config.Generations-1:
		return StopMaxGenerations
	}
	return ""
}

// observe updates the best-ever individual and the stagnation counter.
func (f *FastGeneticAlgorithm) observe(population Population) {
	best, ok := population.Best()
	if !ok {
		return
	}
	if f.bestEver == nil || best.Fitness > f.bestEver.Fitness {
		f.bestEver = &best
		f.noImprovement = 0
		return
	}
	f.noImprovement++
}

// BestEver returns the best individual seen so far in the current or last run.
func (f *FastGeneticAlgorithm) BestEver() *types.TradingResult {
	if f.bestEver == nil {
		return nil
	}
	best := *f.bestEver
	return &best
}

func (f *FastGeneticAlgorithm) mutationRate(gen int) float64 {
	if !f.config.AdaptiveMutation {
		return f.config.MutationRate
	}
	return math.Max(minAdaptiveMutation, f.config.MutationRate*math.Pow(mutationDecay, float64(gen)))
}

func (f *FastGeneticAlgorithm) eliteCount() int {
	n := int(float64(f.config.PopulationSize) * f.config.EliteRatio)
	if n < 1 {
		n = 1
	}
	return n
}

func (f *FastGeneticAlgorithm) parallel() bool {
	return f.config.UseParallel && f.config.PopulationSize >= minParallelPopulation
}

// evaluateBatch scores params in order. Each job gets a seed drawn here so
// the batch is reproducible whichever path runs it. The pool ignores
// cancellation; the run stops at the next generation boundary instead.
func (f *FastGeneticAlgorithm) evaluateBatch(ctx context.Context, params []types.TradingParameters) Population {
	jobs := make([]backtest.EvaluationJob, len(params))
	for i, p := range params {
		jobs[i] = backtest.EvaluationJob{Params: p, Seed: f.rng.Int63()}
	}

	if f.parallel() {
		results, err := f.pool.EvaluateBatch(context.WithoutCancel(ctx), f.active, jobs)
		if err == nil {
			return results
		}
		monitoring.RecordParallelFallback()
		if !f.fallbackLogged {
			f.fallbackLogged = true
			f.logger.Warn().Err(err).Msg("⚠️ Parallel evaluation failed, falling back to serial")
		}
	}
	return backtest.EvaluateSerial(f.evaluate, f.active, jobs)
}

// NewEngine returns the accelerated engine when accelerated is set, else
// the base engine.
func NewEngine(train, holdout types.PriceSeries, cfg OptimizationConfig, accelerated bool) (Engine, error) {
	if accelerated {
		return NewFastGeneticAlgorithm(train, holdout, cfg)
	}
	return NewGeneticAlgorithm(train, holdout, cfg)
}
