package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	opterrors "github.com/ducminhle1904/ga-trading-optimizer/internal/errors"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/optimization"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func requireConfigError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	category, ok := opterrors.CategoryOf(err)
	require.True(t, ok)
	assert.Equal(t, opterrors.ErrorCategoryConfiguration, category)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	def := optimization.GetDefaultOptimizationConfig()
	assert.Equal(t, def.PopulationSize, cfg.GA.PopulationSize)
	assert.Equal(t, def.Generations, cfg.GA.Generations)
	assert.Equal(t, def.Space, cfg.GA.Space)
	assert.Equal(t, int64(0), cfg.GA.Seed)
	assert.Equal(t, 2019, cfg.Split.TrainStartYear)
	assert.Equal(t, 2023, cfg.Split.TrainEndYear)
	assert.Equal(t, 2024, cfg.Split.HoldoutYear)
	assert.Equal(t, 50, cfg.Data.MinRows)
	assert.Equal(t, "results", cfg.Output.OutputDirectory)
	assert.True(t, cfg.Output.ExcelEnabled)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.False(t, cfg.UseAcceleratedEngine())
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeFile(t, "optimizer.yaml", `
ga:
  population_size: 24
  generations: 12
  seed: 99
  space:
    m_intervals:
      min: 10
      max: 30
data:
  symbol: "2330"
  sector: Semiconductors
split:
  train_start_year: 2015
  train_end_year: 2020
  holdout_year: 2021
cache:
  addr: localhost:6379
  ttl: 2h
log:
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.GA.PopulationSize)
	assert.Equal(t, 12, cfg.GA.Generations)
	assert.Equal(t, int64(99), cfg.GA.Seed)
	assert.Equal(t, optimization.IntRange{Min: 10, Max: 30}, cfg.GA.Space.MIntervals)
	assert.Equal(t, optimization.IntRange{Min: 1, Max: 30}, cfg.GA.Space.HoldDays)
	assert.Equal(t, "2330", cfg.Data.Symbol)
	assert.Equal(t, 2015, cfg.Split.TrainStartYear)
	assert.Equal(t, 2*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "json", cfg.Log.Format)

	opt := cfg.Optimization()
	assert.Equal(t, "2330", opt.Symbol)

	split := cfg.SplitConfig()
	assert.Equal(t, 2021, split.HoldoutYear)
	assert.NotEmpty(t, split.DateColumns)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "optimizer.yaml", "ga:\n  population_size: 24\n")
	t.Setenv("GAOPT_GA_POPULATION_SIZE", "64")
	t.Setenv("GAOPT_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.GA.PopulationSize)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	requireConfigError(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"population too small", "ga:\n  population_size: 1\n"},
		{"mutation rate out of range", "ga:\n  mutation_rate: 1.5\n"},
		{"unknown preset", "ga:\n  preset: turbo\n"},
		{"train years reversed", "split:\n  train_start_year: 2024\n  train_end_year: 2020\n"},
		{"holdout inside training", "split:\n  holdout_year: 2022\n"},
		{"bad log format", "log:\n  format: xml\n"},
		{"cache without ttl", "cache:\n  addr: localhost:6379\n  ttl: 0s\n"},
		{"empty space", "ga:\n  space:\n    alpha:\n      min: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "bad.yaml", tt.yaml))
			requireConfigError(t, err)
		})
	}
}

func TestOptimization_AppliesPreset(t *testing.T) {
	cfg := Default()
	cfg.GA.Preset = optimization.PresetUltraFast
	cfg.GA.UseParallel = false
	cfg.Data.Symbol = "TEST"

	opt := cfg.Optimization()
	assert.Equal(t, 20, opt.PopulationSize)
	assert.Equal(t, 30, opt.Generations)
	assert.Equal(t, 5, opt.EarlyStopPatience)
	assert.True(t, opt.UseParallel)
	assert.Equal(t, "TEST", opt.Symbol)
	assert.True(t, cfg.UseAcceleratedEngine())
	assert.NoError(t, cfg.Validate())
}

func TestLoadDotEnv(t *testing.T) {
	const key = "GAOPT_DATA_SECTOR"
	t.Cleanup(func() { os.Unsetenv(key) })

	path := writeFile(t, ".env", key+"=Financials\n")
	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "absent.env")))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "Financials", cfg.Data.Sector)
}
