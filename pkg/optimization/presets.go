package optimization

import "sort"

// Speed presets for the accelerated engine.
const (
	PresetUltraFast = "ultra_fast"
	PresetFast      = "fast"
	PresetBalanced  = "balanced"
	PresetQuality   = "quality"
)

// SpeedPreset trades search depth for wall-clock time.
type SpeedPreset struct {
	PopulationSize         int
	Generations            int
	MaxTimeMinutes         float64
	ConvergenceThreshold   float64
	ConvergenceGenerations int
	EarlyStopPatience      int
}

var speedPresets = map[string]SpeedPreset{
	PresetUltraFast: {PopulationSize: 20, Generations: 30, MaxTimeMinutes: 1.0, ConvergenceThreshold: 0.02, ConvergenceGenerations: 3, EarlyStopPatience: 5},
	PresetFast:      {PopulationSize: 30, Generations: 50, MaxTimeMinutes: 2.0, ConvergenceThreshold: 0.01, ConvergenceGenerations: 5, EarlyStopPatience: 8},
	PresetBalanced:  {PopulationSize: 40, Generations: 75, MaxTimeMinutes: 3.0, ConvergenceThreshold: 0.005, ConvergenceGenerations: 8, EarlyStopPatience: 10},
	PresetQuality:   {PopulationSize: 50, Generations: 100, MaxTimeMinutes: 5.0, ConvergenceThreshold: 0.001, ConvergenceGenerations: 10, EarlyStopPatience: 15},
}

// GetSpeedPreset looks up a preset by name. Unknown names resolve to
// balanced with ok false.
func GetSpeedPreset(name string) (SpeedPreset, bool) {
	p, ok := speedPresets[name]
	if !ok {
		return speedPresets[PresetBalanced], false
	}
	return p, true
}

// PresetNames lists the known presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(speedPresets))
	for name := range speedPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply overlays the preset on cfg and enables parallel evaluation.
func (p SpeedPreset) Apply(cfg OptimizationConfig) OptimizationConfig {
	cfg.PopulationSize = p.PopulationSize
	cfg.Generations = p.Generations
	cfg.MaxTimeMinutes = p.MaxTimeMinutes
	cfg.ConvergenceThreshold = p.ConvergenceThreshold
	cfg.ConvergenceGenerations = p.ConvergenceGenerations
	cfg.EarlyStopPatience = p.EarlyStopPatience
	cfg.UseParallel = true
	return cfg
}
