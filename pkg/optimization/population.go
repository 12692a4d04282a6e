package optimization

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
)

// Population is one generation of evaluated individuals.
type Population []types.TradingResult

// Size returns the number of individuals in the population
func (p Population) Size() int {
	return len(p)
}

// Best returns the fittest individual; ties keep the earliest. ok is false
// for an empty population.
func (p Population) Best() (best types.TradingResult, ok bool) {
	if len(p) == 0 {
		return best, false
	}
	best = p[0]
	for _, r := range p[1:] {
		if r.Fitness > best.Fitness {
			best = r
		}
	}
	return best, true
}

// AverageFitness calculates the average fitness of all individuals
func (p Population) AverageFitness() float64 {
	if len(p) == 0 {
		return 0.0
	}

	return stat.Mean(p.Fitnesses(), nil)
}

// Fitnesses returns the fitness values in population order.
func (p Population) Fitnesses() []float64 {
	out := make([]float64, len(p))
	for i, r := range p {
		out[i] = r.Fitness
	}
	return out
}

// SortByFitness sorts the population by fitness in descending order (best first)
func (p Population) SortByFitness() {
	sort.SliceStable(p, func(i, j int) bool {
		return p[i].Fitness > p[j].Fitness
	})
}

// Elite returns copies of the top n individuals without reordering p.
func (p Population) Elite(n int) Population {
	if n <= 0 {
		return Population{}
	}
	sorted := make(Population, len(p))
	copy(sorted, p)
	sorted.SortByFitness()
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
