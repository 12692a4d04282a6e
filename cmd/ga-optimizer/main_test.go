package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/ga-trading-optimizer/internal/config"
	opterrors "github.com/ducminhle1904/ga-trading-optimizer/internal/errors"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/reporting"
)

func parse(t *testing.T, args ...string) (*flag.FlagSet, *cliFlags) {
	t.Helper()
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	flags := registerFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs, flags
}

func TestApplyFlags_Overrides(t *testing.T) {
	fs, flags := parse(t,
		"-symbols", "2330:Semiconductors, 2317",
		"-preset", "fast",
		"-seed", "11",
		"-output", "out",
		"-console-only",
		"-dsn", "postgres://localhost/ga",
	)
	cfg := config.Default()

	require.NoError(t, applyFlags(cfg, fs, flags))
	assert.Equal(t, []string{"2330:Semiconductors", "2317"}, cfg.Data.Symbols)
	assert.Equal(t, "fast", cfg.GA.Preset)
	assert.Equal(t, int64(11), cfg.GA.Seed)
	assert.Equal(t, "out", cfg.Output.OutputDirectory)
	assert.False(t, cfg.Output.EnableFiles)
	assert.Equal(t, "postgres://localhost/ga", cfg.Storage.DSN)
	assert.True(t, cfg.UseAcceleratedEngine())
}

func TestApplyFlags_UnsetFlagsKeepConfig(t *testing.T) {
	fs, flags := parse(t)
	cfg := config.Default()
	cfg.GA.PopulationSize = 77
	cfg.GA.Seed = 5

	require.NoError(t, applyFlags(cfg, fs, flags))
	assert.Equal(t, 77, cfg.GA.PopulationSize)
	assert.Equal(t, int64(5), cfg.GA.Seed)
}

func TestApplyFlags_TimeSeedWhenUnset(t *testing.T) {
	fs, flags := parse(t)
	cfg := config.Default()

	require.NoError(t, applyFlags(cfg, fs, flags))
	assert.NotZero(t, cfg.GA.Seed)
}

func TestApplyFlags_Invalid(t *testing.T) {
	fs, flags := parse(t, "-preset", "turbo", "-population", "1")

	err := applyFlags(config.Default(), fs, flags)
	require.Error(t, err)
	category, ok := opterrors.CategoryOf(err)
	require.True(t, ok)
	assert.Equal(t, opterrors.ErrorCategoryConfiguration, category)
	assert.Contains(t, err.Error(), "turbo")
}

func TestSymbolFromFile(t *testing.T) {
	assert.Equal(t, "2330", symbolFromFile("data/2330.csv", false))
	assert.Equal(t, "BTCUSDT", symbolFromFile(`C:\prices\btcusdt.csv`, false))
	assert.Equal(t, "DEMO", symbolFromFile("", true))
	assert.Equal(t, "", symbolFromFile("", false))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b,"))
	assert.Nil(t, splitList(""))
}

func TestRun_NothingToDo(t *testing.T) {
	fs, flags := parse(t, "-env", filepath.Join(t.TempDir(), "none.env"))

	err := run(context.Background(), fs, flags)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to optimize")
}

func TestRun_DemoWritesReports(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "optimizer.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
ga:
  population_size: 8
  generations: 3
  max_time_minutes: 0
  convergence_threshold: 0
output:
  console: false
log:
  level: warn
  dir: `+filepath.Join(dir, "logs")+`
`), 0644))

	fs, flags := parse(t,
		"-env", filepath.Join(dir, "none.env"),
		"-config", cfgPath,
		"-demo",
		"-demo-days", "600",
		"-seed", "9",
		"-output", filepath.Join(dir, "results"),
	)

	require.NoError(t, run(context.Background(), fs, flags))

	outDir := filepath.Join(dir, "results", "DEMO_ga")
	for _, name := range []string{"best.json", "fitness_history.csv", "trades.csv", "report.xlsx"} {
		assert.FileExists(t, filepath.Join(outDir, name))
	}

	best, err := reporting.ReadBestParametersJSON(filepath.Join(outDir, "best.json"))
	require.NoError(t, err)
	assert.Equal(t, "DEMO", best.Symbol)

	logs, err := os.ReadDir(filepath.Join(dir, "logs"))
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}
