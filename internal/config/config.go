// Package config loads optimizer settings from defaults, an optional
// config file, a .env file and GAOPT_ environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	opterrors "github.com/ducminhle1904/ga-trading-optimizer/internal/errors"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/optimization"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/reporting"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/validation"
)

// EnvPrefix is prepended to every environment override, e.g. GAOPT_GA_SEED.
const EnvPrefix = "GAOPT"

// Config is the full optimizer configuration.
type Config struct {
	GA      GAConfig                  `mapstructure:"ga"`
	Split   SplitConfig               `mapstructure:"split"`
	Data    DataConfig                `mapstructure:"data"`
	Storage StorageConfig             `mapstructure:"storage"`
	Cache   CacheConfig               `mapstructure:"cache"`
	Output  reporting.ReportingConfig `mapstructure:"output"`
	Metrics MetricsConfig             `mapstructure:"metrics"`
	Log     LogConfig                 `mapstructure:"log"`
}

// GAConfig is the engine configuration plus engine selection.
type GAConfig struct {
	optimization.OptimizationConfig `mapstructure:",squash"`

	Preset      string `mapstructure:"preset"`
	Accelerated bool   `mapstructure:"accelerated"`
}

// SplitConfig selects the calendar years of each window.
type SplitConfig struct {
	TrainStartYear int     `mapstructure:"train_start_year"`
	TrainEndYear   int     `mapstructure:"train_end_year"`
	HoldoutYear    int     `mapstructure:"holdout_year"`
	FallbackRatio  float64 `mapstructure:"fallback_ratio"`
}

// DataConfig locates the price dataset.
type DataConfig struct {
	File    string   `mapstructure:"file"`
	Root    string   `mapstructure:"root"`
	Symbol  string   `mapstructure:"symbol"`
	Sector  string   `mapstructure:"sector"`
	Symbols []string `mapstructure:"symbols"`
	MinRows int      `mapstructure:"min_rows"`
}

// StorageConfig enables Postgres persistence when DSN is set.
type StorageConfig struct {
	DSN string `mapstructure:"dsn"`
}

// CacheConfig enables the Redis table cache when Addr is set.
type CacheConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// MetricsConfig controls the /metrics and /status listener.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// LogConfig configures zerolog and the per-run log file.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Dir    string `mapstructure:"dir"`
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return opterrors.NewConfigurationError("config", "load_dotenv", fmt.Sprintf("failed to load %s: %v", path, err))
		}
		log.Debug().Str("file", path).Msg("📄 Loaded environment file")
	}
	return nil
}

// Load reads defaults, then configPath (if non-empty), then GAOPT_
// environment variables, and validates the result.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, opterrors.NewConfigurationError("config", "read", fmt.Sprintf("failed to read config file %s: %v", configPath, err))
		}
		log.Info().Str("file", v.ConfigFileUsed()).Msg("⚙️ Loaded configuration file")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, opterrors.NewConfigurationError("config", "unmarshal", fmt.Sprintf("failed to unmarshal config: %v", err))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration without reading files or env.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Decoding the defaults alone cannot fail.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	ga := optimization.GetDefaultOptimizationConfig()
	v.SetDefault("ga.population_size", ga.PopulationSize)
	v.SetDefault("ga.generations", ga.Generations)
	v.SetDefault("ga.mutation_rate", ga.MutationRate)
	v.SetDefault("ga.crossover_rate", ga.CrossoverRate)
	v.SetDefault("ga.tournament_size", ga.TournamentSize)
	v.SetDefault("ga.max_time_minutes", ga.MaxTimeMinutes)
	v.SetDefault("ga.convergence_threshold", ga.ConvergenceThreshold)
	v.SetDefault("ga.convergence_generations", ga.ConvergenceGenerations)
	v.SetDefault("ga.seed", 0)
	v.SetDefault("ga.use_parallel", ga.UseParallel)
	v.SetDefault("ga.max_workers", ga.MaxWorkers)
	v.SetDefault("ga.elite_ratio", ga.EliteRatio)
	v.SetDefault("ga.early_stop_patience", ga.EarlyStopPatience)
	v.SetDefault("ga.adaptive_mutation", ga.AdaptiveMutation)
	v.SetDefault("ga.preset", "")
	v.SetDefault("ga.accelerated", false)

	space := ga.Space
	v.SetDefault("ga.space.m_intervals.min", space.MIntervals.Min)
	v.SetDefault("ga.space.m_intervals.max", space.MIntervals.Max)
	v.SetDefault("ga.space.hold_days.min", space.HoldDays.Min)
	v.SetDefault("ga.space.hold_days.max", space.HoldDays.Max)
	v.SetDefault("ga.space.target_profit_ratio.min", space.TargetProfitRatio.Min)
	v.SetDefault("ga.space.target_profit_ratio.max", space.TargetProfitRatio.Max)
	v.SetDefault("ga.space.alpha.min", space.Alpha.Min)
	v.SetDefault("ga.space.alpha.max", space.Alpha.Max)

	split := validation.DefaultSplitConfig()
	v.SetDefault("split.train_start_year", split.TrainStartYear)
	v.SetDefault("split.train_end_year", split.TrainEndYear)
	v.SetDefault("split.holdout_year", split.HoldoutYear)
	v.SetDefault("split.fallback_ratio", split.FallbackRatio)

	v.SetDefault("data.file", "")
	v.SetDefault("data.root", "data")
	v.SetDefault("data.symbol", "")
	v.SetDefault("data.sector", "")
	v.SetDefault("data.symbols", []string{})
	v.SetDefault("data.min_rows", 50)

	v.SetDefault("storage.dsn", "")

	v.SetDefault("cache.addr", "")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.prefix", "gaopt:table:")
	v.SetDefault("cache.ttl", 24*time.Hour)

	v.SetDefault("output.console", true)
	v.SetDefault("output.files", true)
	v.SetDefault("output.dir", "results")
	v.SetDefault("output.excel", true)
	v.SetDefault("output.csv", true)
	v.SetDefault("output.json", true)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9090")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.dir", "logs")
}

// Validate checks every section. The GA section is validated after the
// preset is applied.
func (c *Config) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return opterrors.NewConfigurationError("config", "validate", fmt.Sprintf(format, args...))
	}

	if c.GA.Preset != "" {
		if _, ok := optimization.GetSpeedPreset(c.GA.Preset); !ok {
			return invalid("unknown preset %q (valid: %s)", c.GA.Preset, strings.Join(optimization.PresetNames(), ", "))
		}
	}
	if err := c.Optimization().Validate(); err != nil {
		return err
	}

	if c.Split.TrainStartYear > c.Split.TrainEndYear {
		return invalid("train start year %d is after train end year %d", c.Split.TrainStartYear, c.Split.TrainEndYear)
	}
	if c.Split.HoldoutYear <= c.Split.TrainEndYear {
		return invalid("holdout year %d must be after train end year %d", c.Split.HoldoutYear, c.Split.TrainEndYear)
	}
	if c.Split.FallbackRatio <= 0 || c.Split.FallbackRatio >= 1 {
		return invalid("fallback ratio must be in (0,1), got %.3f", c.Split.FallbackRatio)
	}

	if c.Data.MinRows < 0 {
		return invalid("min rows must not be negative, got %d", c.Data.MinRows)
	}
	if c.Cache.Addr != "" && c.Cache.TTL <= 0 {
		return invalid("cache ttl must be positive when a cache address is set, got %s", c.Cache.TTL)
	}
	if c.Output.EnableFiles && c.Output.OutputDirectory == "" {
		return invalid("output directory is required when file output is enabled")
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return invalid("metrics address is required when metrics are enabled")
	}

	switch c.Log.Format {
	case "console", "json":
	default:
		return invalid("log format must be console or json, got %q", c.Log.Format)
	}
	return nil
}

// Optimization returns the engine configuration with the preset applied
// and the symbol filled in from the data section.
func (c *Config) Optimization() optimization.OptimizationConfig {
	cfg := c.GA.OptimizationConfig
	if c.GA.Preset != "" {
		preset, _ := optimization.GetSpeedPreset(c.GA.Preset)
		cfg = preset.Apply(cfg)
	}
	cfg.Symbol = c.Data.Symbol
	return cfg
}

// SplitConfig converts the split section for the preprocessor.
func (c *Config) SplitConfig() validation.SplitConfig {
	split := validation.DefaultSplitConfig()
	split.TrainStartYear = c.Split.TrainStartYear
	split.TrainEndYear = c.Split.TrainEndYear
	split.HoldoutYear = c.Split.HoldoutYear
	split.FallbackRatio = c.Split.FallbackRatio
	return split
}

// UseAcceleratedEngine reports whether the accelerated engine should run,
// either because it was requested or because a preset was chosen.
func (c *Config) UseAcceleratedEngine() bool {
	return c.GA.Preset != "" || c.GA.Accelerated
}
