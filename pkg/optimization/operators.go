package optimization

import (
	"math"
	"math/rand"

	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
)

// Mutation settings
const (
	mutationGeneGate   = 0.25 // second gate applied per parameter after the rate gate
	mutationMStep      = 8
	mutationHoldStep   = 5
	mutationTargetStep = 0.03
	mutationAlphaStep  = 5.0
	blendLow           = 0.3
	blendHigh          = 0.7
)

// GeneticOperator implements the variation operators over TradingParameters.
// It is not safe for concurrent use: every call draws from the shared rng.
type GeneticOperator struct {
	space         ParameterSpace
	rng           *rand.Rand
	crossoverRate float64
	mutationRate  float64
}

// NewGeneticOperator creates an operator drawing from rng
func NewGeneticOperator(space ParameterSpace, rng *rand.Rand, crossoverRate, mutationRate float64) *GeneticOperator {
	return &GeneticOperator{
		space:         space,
		rng:           rng,
		crossoverRate: crossoverRate,
		mutationRate:  mutationRate,
	}
}

// Space returns the parameter space the operator samples from.
func (op *GeneticOperator) Space() ParameterSpace {
	return op.space
}

// RandomIndividual samples uniformly from the space. The profit ratio is
// rounded to 4 decimals and alpha to 3.
func (op *GeneticOperator) RandomIndividual() types.TradingParameters {
	s := op.space
	return types.TradingParameters{
		MIntervals:        s.MIntervals.Min + op.rng.Intn(s.MIntervals.Max-s.MIntervals.Min+1),
		HoldDays:          s.HoldDays.Min + op.rng.Intn(s.HoldDays.Max-s.HoldDays.Min+1),
		TargetProfitRatio: round(op.uniform(s.TargetProfitRatio.Min, s.TargetProfitRatio.Max), 4),
		Alpha:             round(op.uniform(s.Alpha.Min, s.Alpha.Max), 3),
	}
}

// Crossover produces one child. With probability 1-rate it returns one of
// the parents unchanged; otherwise the float parameters are blended and the
// integer parameters picked from either parent.
func (op *GeneticOperator) Crossover(p1, p2 types.TradingParameters) types.TradingParameters {
	if op.rng.Float64() > op.crossoverRate {
		if op.rng.Float64() < 0.5 {
			return p1
		}
		return p2
	}
	c := op.uniform(blendLow, blendHigh)
	return op.blend(p1, p2, c)
}

// CrossoverPair produces two children with symmetric blend coefficients c
// and 1-c. Below the crossover rate the parents are returned as is.
func (op *GeneticOperator) CrossoverPair(p1, p2 types.TradingParameters) (types.TradingParameters, types.TradingParameters) {
	if op.rng.Float64() > op.crossoverRate {
		return p1, p2
	}
	c := op.uniform(blendLow, blendHigh)
	return op.blend(p1, p2, c), op.blend(p1, p2, 1-c)
}

func (op *GeneticOperator) blend(p1, p2 types.TradingParameters, c float64) types.TradingParameters {
	return types.TradingParameters{
		MIntervals:        op.pickInt(p1.MIntervals, p2.MIntervals),
		HoldDays:          op.pickInt(p1.HoldDays, p2.HoldDays),
		// rounding can land a floor-valued blend just under the floor
		TargetProfitRatio: math.Max(op.space.TargetProfitRatio.Min, p1.TargetProfitRatio*c+p2.TargetProfitRatio*(1-c)),
		Alpha:             clampFloat(p1.Alpha*c+p2.Alpha*(1-c), op.space.Alpha.Min, op.space.Alpha.Max),
	}
}

// Mutate applies mutation at the operator's configured rate.
func (op *GeneticOperator) Mutate(p types.TradingParameters) types.TradingParameters {
	return op.MutateWithRate(p, op.mutationRate)
}

// MutateWithRate perturbs each parameter independently: it must pass the
// rate gate and then a 25% gate. The input is not modified.
func (op *GeneticOperator) MutateWithRate(p types.TradingParameters, rate float64) types.TradingParameters {
	s := op.space
	if op.gate(rate) {
		p.MIntervals = clampInt(p.MIntervals+op.step(mutationMStep), s.MIntervals.Min, s.MIntervals.Max)
	}
	if op.gate(rate) {
		p.HoldDays = clampInt(p.HoldDays+op.step(mutationHoldStep), s.HoldDays.Min, s.HoldDays.Max)
	}
	if op.gate(rate) {
		// no upper bound
		next := p.TargetProfitRatio + op.uniform(-mutationTargetStep, mutationTargetStep)
		if next < s.TargetProfitRatio.Min {
			next = s.TargetProfitRatio.Min
		}
		p.TargetProfitRatio = next
	}
	if op.gate(rate) {
		p.Alpha = clampFloat(p.Alpha+op.uniform(-mutationAlphaStep, mutationAlphaStep), s.Alpha.Min, s.Alpha.Max)
	}
	return p
}

// TournamentSelect draws k distinct members (capped at the population
// size) and returns the parameters of the fittest.
func (op *GeneticOperator) TournamentSelect(pop Population, k int) types.TradingParameters {
	if len(pop) == 0 {
		return op.RandomIndividual()
	}
	if k < 1 {
		k = 1
	}
	if k > len(pop) {
		k = len(pop)
	}

	idx := op.rng.Perm(len(pop))[:k]
	best := idx[0]
	for _, i := range idx[1:] {
		if pop[i].Fitness > pop[best].Fitness {
			best = i
		}
	}
	return pop[best].Parameters
}

func (op *GeneticOperator) gate(rate float64) bool {
	if op.rng.Float64() >= rate {
		return false
	}
	return op.rng.Float64() < mutationGeneGate
}

// step returns a uniform integer in [-n, n].
func (op *GeneticOperator) step(n int) int {
	return op.rng.Intn(2*n+1) - n
}

func (op *GeneticOperator) uniform(lo, hi float64) float64 {
	return lo + op.rng.Float64()*(hi-lo)
}

func (op *GeneticOperator) pickInt(a, b int) int {
	if op.rng.Intn(2) == 0 {
		return a
	}
	return b
}
