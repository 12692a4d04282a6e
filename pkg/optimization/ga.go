// Package optimization provides genetic algorithm optimization for trading strategies
package optimization

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"

	"github.com/ducminhle1904/ga-trading-optimizer/internal/backtest"
	"github.com/ducminhle1904/ga-trading-optimizer/internal/monitoring"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
)

// ProgressReportInterval is the number of generations between progress logs.
const ProgressReportInterval = 5

// GenerationObserver is called after every recorded generation.
type GenerationObserver func(generation int, best, avg float64)

// GeneticAlgorithm searches the parameter space with a generational GA:
// elitism of one, tournament selection, blend crossover and gated mutation.
// An engine optimizes exactly one series; Evolve and EvaluateOnTestData
// serialize on the engine.
type GeneticAlgorithm struct {
	config    OptimizationConfig
	evaluator *backtest.Evaluator
	evaluate  backtest.EvaluateFunc
	logger    zerolog.Logger
	now       func() time.Time
	observer  GenerationObserver

	mu      sync.Mutex
	train   []float64
	holdout []float64
	active  []float64

	rng      *rand.Rand
	operator *GeneticOperator

	bestHistory []float64
	avgHistory  []float64
	stopReason  string
	generations int
	startTime   time.Time
}

// NewGeneticAlgorithm creates an engine over the training window; the
// holdout window is only touched when scoring the winner.
func NewGeneticAlgorithm(train, holdout types.PriceSeries, cfg OptimizationConfig) (*GeneticAlgorithm, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	evaluator := backtest.NewEvaluator()
	trainCloses := train.Closes()
	ga := &GeneticAlgorithm{
		config:    cfg,
		evaluator: evaluator,
		evaluate:  evaluator.Evaluate,
		logger:    log.With().Str("component", "genetic_algorithm").Str("symbol", cfg.Symbol).Logger(),
		now:       time.Now,
		train:     trainCloses,
		holdout:   holdout.Closes(),
		active:    trainCloses,
	}
	ga.reseed()
	return ga, nil
}

// Config returns the effective configuration.
func (g *GeneticAlgorithm) Config() OptimizationConfig {
	return g.config
}

// BestFitnessHistory returns the best fitness of every completed generation.
func (g *GeneticAlgorithm) BestFitnessHistory() []float64 {
	return append([]float64(nil), g.bestHistory...)
}

// AvgFitnessHistory returns the mean fitness of every completed generation.
func (g *GeneticAlgorithm) AvgFitnessHistory() []float64 {
	return append([]float64(nil), g.avgHistory...)
}

// OnGeneration registers fn to be called after every generation.
func (g *GeneticAlgorithm) OnGeneration(fn GenerationObserver) {
	g.observer = fn
}

// StopReason returns why the last Evolve call halted.
func (g *GeneticAlgorithm) StopReason() string {
	return g.stopReason
}

// Generations returns the number of generations the last run recorded.
func (g *GeneticAlgorithm) Generations() int {
	return g.generations
}

// Evolve runs the search and returns the winner with its holdout result
// attached when a holdout window exists. Cancelling ctx halts the run at
// the next generation boundary and is reported as the time limit.
func (g *GeneticAlgorithm) Evolve(ctx context.Context) *types.TradingResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.begin()
	g.logger.Info().
		Int("population", g.config.PopulationSize).
		Int("generations", g.config.Generations).
		Float64("max_minutes", g.config.MaxTimeMinutes).
		Int("train_rows", len(g.train)).
		Int("holdout_rows", len(g.holdout)).
		Msg("🧬 Starting genetic algorithm")

	population := make(Population, 0, g.config.PopulationSize)
	for i := 0; i < g.config.PopulationSize; i++ {
		population = append(population, g.evaluateOne(g.operator.RandomIndividual()))
	}

	for gen := 0; ; gen++ {
		best, avg := g.record(population)

		if reason := g.checkStop(ctx, gen); reason != "" {
			g.halt(reason, gen, best, avg)
			break
		}

		elite, _ := population.Best()
		next := make(Population, 0, g.config.PopulationSize)
		next = append(next, elite)
		for len(next) < g.config.PopulationSize {
			p1 := g.operator.TournamentSelect(population, g.config.TournamentSize)
			p2 := g.operator.TournamentSelect(population, g.config.TournamentSize)
			child := g.operator.Mutate(g.operator.Crossover(p1, p2))
			next = append(next, g.evaluateOne(child))
		}
		population = next

		g.logProgress(gen, best, avg)
	}

	winner, _ := population.Best()
	return g.finish(winner)
}

// EvaluateOnTestData scores params on the holdout window. It returns nil
// when there is no holdout.
func (g *GeneticAlgorithm) EvaluateOnTestData(params types.TradingParameters) *types.TradingResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.evaluateOnTestData(params)
}

// evaluateOnTestData swaps the active series for the holdout and restores
// it on return, including when the evaluation panics. Callers hold g.mu.
func (g *GeneticAlgorithm) evaluateOnTestData(params types.TradingParameters) (result *types.TradingResult) {
	if len(g.holdout) == 0 {
		g.logger.Warn().Msg("⚠️ Holdout data is empty, skipping test evaluation")
		return nil
	}

	original := g.active
	g.active = g.holdout
	defer func() {
		g.active = original
		if r := recover(); r != nil {
			g.logger.Error().Interface("panic", r).Msg("❌ Test evaluation failed")
			fault := backtest.EvaluationOutcome{Kind: backtest.OutcomeInternalFault, Params: params}.Result(nil)
			result = &fault
		}
	}()

	r := g.evaluate(params, g.active, g.rng)
	return &r
}

func (g *GeneticAlgorithm) evaluateOne(params types.TradingParameters) types.TradingResult {
	return g.evaluate(params, g.active, g.rng)
}

// begin resets run state. Randomness restarts from the configured seed so
// repeated runs on one engine are reproducible.
func (g *GeneticAlgorithm) begin() {
	g.reseed()
	g.active = g.train
	g.bestHistory = g.bestHistory[:0]
	g.avgHistory = g.avgHistory[:0]
	g.stopReason = ""
	g.generations = 0
	g.startTime = g.now()
}

func (g *GeneticAlgorithm) reseed() {
	g.rng = rand.New(rand.NewSource(g.config.Seed))
	g.operator = NewGeneticOperator(g.config.Space, g.rng, g.config.CrossoverRate, g.config.MutationRate)
}

// record appends the generation's best and mean fitness to the history.
func (g *GeneticAlgorithm) record(population Population) (best, avg float64) {
	top, _ := population.Best()
	best, avg = top.Fitness, population.AverageFitness()
	g.bestHistory = append(g.bestHistory, best)
	g.avgHistory = append(g.avgHistory, avg)
	g.generations = len(g.bestHistory)
	monitoring.RecordGeneration(g.config.Symbol, best, avg)
	if g.observer != nil {
		g.observer(g.generations-1, best, avg)
	}
	return best, avg
}

// checkStop evaluates the stop predicates in priority order: time limit,
// convergence, generation budget.
func (g *GeneticAlgorithm) checkStop(ctx context.Context, gen int) string {
	switch {
	case g.timeExceeded(ctx):
		return StopTimeLimit
	case g.converged():
		return StopConverged
	case gen >= g.config.Generations-1:
		return StopMaxGenerations
	}
	return ""
}

func (g *GeneticAlgorithm) timeExceeded(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	if g.config.MaxTimeMinutes <= 0 {
		return false
	}
	return g.elapsed() >= time.Duration(g.config.MaxTimeMinutes*float64(time.Minute))
}

// converged reports whether the population standard deviation of the last
// ConvergenceGenerations best-fitness values fell below the threshold.
func (g *GeneticAlgorithm) converged() bool {
	n := g.config.ConvergenceGenerations
	if n < 1 || len(g.bestHistory) < n {
		return false
	}
	_, std := stat.PopMeanStdDev(g.bestHistory[len(g.bestHistory)-n:], nil)
	return std < g.config.ConvergenceThreshold
}

func (g *GeneticAlgorithm) elapsed() time.Duration {
	return g.now().Sub(g.startTime)
}

func (g *GeneticAlgorithm) halt(reason string, gen int, best, avg float64) {
	g.stopReason = reason
	g.logger.Info().
		Int("generation", gen).
		Str("reason", reason).
		Float64("best_fitness", best).
		Float64("avg_fitness", avg).
		Msg("🛑 Stopping evolution")
}

func (g *GeneticAlgorithm) logProgress(gen int, best, avg float64) {
	if gen%ProgressReportInterval != 0 {
		return
	}
	g.logger.Info().
		Int("generation", gen).
		Float64("best_fitness", best).
		Float64("avg_fitness", avg).
		Str("elapsed", g.elapsed().Round(time.Second).String()).
		Msg("📈 Generation progress")
}

// finish attaches the holdout result to the winner and logs the summary.
func (g *GeneticAlgorithm) finish(winner types.TradingResult) *types.TradingResult {
	winner.TestResult = g.evaluateOnTestData(winner.Parameters)

	ev := g.logger.Info().
		Str("stop_reason", g.stopReason).
		Str("duration", g.elapsed().Round(time.Millisecond).String()).
		Int("generations", g.generations).
		Int("max_generations", g.config.Generations).
		Str("params", winner.Parameters.String()).
		Float64("train_fitness", winner.Fitness)
	if winner.TestResult != nil {
		ev = ev.Float64("test_fitness", winner.TestResult.Fitness).
			Float64("train_test_gap", winner.Fitness-winner.TestResult.Fitness)
	}
	if len(g.bestHistory) > 0 {
		ev = ev.Float64("improvement", g.bestHistory[len(g.bestHistory)-1]-g.bestHistory[0])
	}
	ev.Msg("🎉 Evolution complete")

	monitoring.RecordRun(g.stopReason)
	return &winner
}
