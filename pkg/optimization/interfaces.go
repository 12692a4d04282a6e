package optimization

import (
	"context"
	"fmt"

	"github.com/ducminhle1904/ga-trading-optimizer/internal/backtest"
	opterrors "github.com/ducminhle1904/ga-trading-optimizer/internal/errors"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
)

// Stop reasons reported by the engines.
const (
	StopTimeLimit      = "time limit reached"
	StopConverged      = "population converged"
	StopMaxGenerations = "maximum generations reached"
	StopEarlyStop      = "early stop — no improvement"
)

// Engine is implemented by both the base and the accelerated search.
type Engine interface {
	Evolve(ctx context.Context) *types.TradingResult
	BestFitnessHistory() []float64
	AvgFitnessHistory() []float64
	StopReason() string
	Generations() int
	OnGeneration(fn GenerationObserver)
}

// BatchEvaluator scores a batch of parameter sets against one series.
// backtest.WorkerPool is the production implementation.
type BatchEvaluator interface {
	EvaluateBatch(ctx context.Context, closes []float64, jobs []backtest.EvaluationJob) ([]types.TradingResult, error)
}

// OptimizationConfig holds the configuration for the genetic algorithm
type OptimizationConfig struct {
	PopulationSize         int     `mapstructure:"population_size" json:"population_size"`
	Generations            int     `mapstructure:"generations" json:"generations"`
	MutationRate           float64 `mapstructure:"mutation_rate" json:"mutation_rate"`
	CrossoverRate          float64 `mapstructure:"crossover_rate" json:"crossover_rate"`
	TournamentSize         int     `mapstructure:"tournament_size" json:"tournament_size"`
	MaxTimeMinutes         float64 `mapstructure:"max_time_minutes" json:"max_time_minutes"` // <= 0 disables the time limit
	ConvergenceThreshold   float64 `mapstructure:"convergence_threshold" json:"convergence_threshold"`
	ConvergenceGenerations int     `mapstructure:"convergence_generations" json:"convergence_generations"`
	Seed                   int64   `mapstructure:"seed" json:"seed"`
	Symbol                 string  `mapstructure:"-" json:"symbol,omitempty"`

	// Accelerated variant
	UseParallel       bool    `mapstructure:"use_parallel" json:"use_parallel"`
	MaxWorkers        int     `mapstructure:"max_workers" json:"max_workers"`
	EliteRatio        float64 `mapstructure:"elite_ratio" json:"elite_ratio"`
	EarlyStopPatience int     `mapstructure:"early_stop_patience" json:"early_stop_patience"`
	AdaptiveMutation  bool    `mapstructure:"adaptive_mutation" json:"adaptive_mutation"`

	Space ParameterSpace `mapstructure:"space" json:"space"`
}

// GetDefaultOptimizationConfig returns the default base-engine configuration
func GetDefaultOptimizationConfig() OptimizationConfig {
	return OptimizationConfig{
		PopulationSize:         50,
		Generations:            100,
		MutationRate:           0.1,
		CrossoverRate:          0.8,
		TournamentSize:         3,
		MaxTimeMinutes:         10.0,
		ConvergenceThreshold:   1e-6,
		ConvergenceGenerations: 10,
		Seed:                   1,
		UseParallel:            true,
		MaxWorkers:             4,
		EliteRatio:             0.2,
		EarlyStopPatience:      10,
		AdaptiveMutation:       true,
		Space:                  DefaultParameterSpace(),
	}
}

// GetFastOptimizationConfig returns the accelerated-variant defaults.
func GetFastOptimizationConfig() OptimizationConfig {
	cfg := GetDefaultOptimizationConfig()
	cfg.PopulationSize = 30
	cfg.Generations = 50
	cfg.MaxTimeMinutes = 2.0
	cfg.ConvergenceThreshold = 0.01
	cfg.ConvergenceGenerations = 5
	return cfg
}

// Validate checks the configuration for values the engines cannot run with.
func (c OptimizationConfig) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return opterrors.NewConfigurationError("optimization", "validate", fmt.Sprintf(format, args...))
	}

	switch {
	case c.PopulationSize < 2:
		return invalid("population size must be at least 2, got %d", c.PopulationSize)
	case c.Generations < 1:
		return invalid("generations must be at least 1, got %d", c.Generations)
	case c.MutationRate < 0 || c.MutationRate > 1:
		return invalid("mutation rate must be in [0,1], got %.3f", c.MutationRate)
	case c.CrossoverRate < 0 || c.CrossoverRate > 1:
		return invalid("crossover rate must be in [0,1], got %.3f", c.CrossoverRate)
	case c.ConvergenceGenerations < 1:
		return invalid("convergence generations must be at least 1, got %d", c.ConvergenceGenerations)
	case c.ConvergenceThreshold < 0:
		return invalid("convergence threshold must not be negative, got %g", c.ConvergenceThreshold)
	case c.EliteRatio < 0 || c.EliteRatio >= 1:
		return invalid("elite ratio must be in [0,1), got %.3f", c.EliteRatio)
	case c.EarlyStopPatience < 0:
		return invalid("early stop patience must not be negative, got %d", c.EarlyStopPatience)
	}

	s := c.Space
	if s.MIntervals.Min < 1 || s.MIntervals.Max < s.MIntervals.Min ||
		s.HoldDays.Min < 1 || s.HoldDays.Max < s.HoldDays.Min ||
		s.TargetProfitRatio.Min <= 0 || s.TargetProfitRatio.Max < s.TargetProfitRatio.Min ||
		s.Alpha.Min <= 0 || s.Alpha.Max < s.Alpha.Min {
		return invalid("parameter space is empty or not positive: %+v", s)
	}
	return nil
}

// withDefaults fills zero-valued fields the caller left unset.
func (c OptimizationConfig) withDefaults() OptimizationConfig {
	def := GetDefaultOptimizationConfig()
	if c.TournamentSize <= 0 {
		c.TournamentSize = def.TournamentSize
	}
	if c.Space == (ParameterSpace{}) {
		c.Space = def.Space
	}
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = def.MaxWorkers
	}
	return c
}
