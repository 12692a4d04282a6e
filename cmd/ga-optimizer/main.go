package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ducminhle1904/ga-trading-optimizer/cmd/common"
	"github.com/ducminhle1904/ga-trading-optimizer/internal/config"
	opterrors "github.com/ducminhle1904/ga-trading-optimizer/internal/errors"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/optimization"
)

const appName = "ga-optimizer"

// cliFlags are the command-line overrides applied on top of the loaded config.
type cliFlags struct {
	common *common.CommonFlags

	file     *string
	symbol   *string
	sector   *string
	symbols  *string
	dataRoot *string

	preset      *string
	fast        *bool
	seed        *int64
	population  *int
	generations *int
	maxMinutes  *float64
	workers     *int

	output      *string
	consoleOnly *bool

	walkForward *bool
	wfTrain     *int
	wfTest      *int
	wfRoll      *int

	demo     *bool
	demoDays *int

	metricsAddr *string
	dsn         *string
	redisAddr   *string
	showStored  *bool
}

func registerFlags(fs *flag.FlagSet) *cliFlags {
	return &cliFlags{
		common: common.RegisterCommonFlags(fs),

		file:     fs.String("file", "", "Price CSV file for a single-symbol run"),
		symbol:   fs.String("symbol", "", "Symbol name for reports and persistence"),
		sector:   fs.String("sector", "", "Sector/industry label stored with the result"),
		symbols:  fs.String("symbols", "", "Comma-separated SYMBOL[:SECTOR] list for a batch run"),
		dataRoot: fs.String("data-root", "", "Directory searched for <SYMBOL>.csv in batch runs"),

		preset:      fs.String("preset", "", "Speed preset: "+strings.Join(optimization.PresetNames(), ", ")),
		fast:        fs.Bool("fast", false, "Use the accelerated engine (parallel, elitism, early stop)"),
		seed:        fs.Int64("seed", 0, "Random seed (0 = derive from the clock)"),
		population:  fs.Int("population", 0, "Population size override"),
		generations: fs.Int("generations", 0, "Generation budget override"),
		maxMinutes:  fs.Float64("max-minutes", 0, "Wall-clock limit in minutes override"),
		workers:     fs.Int("workers", 0, "Parallel evaluation workers override"),

		output:      fs.String("output", "", "Output directory override"),
		consoleOnly: fs.Bool("console-only", false, "Console output only (no file output)"),

		walkForward: fs.Bool("walk-forward", false, "Run rolling walk-forward validation on the training window"),
		wfTrain:     fs.Int("wf-train-days", 500, "Walk-forward training window in bars"),
		wfTest:      fs.Int("wf-test-days", 120, "Walk-forward test window in bars"),
		wfRoll:      fs.Int("wf-roll-days", 120, "Walk-forward step in bars"),

		demo:     fs.Bool("demo", false, "Optimize a seeded synthetic random walk instead of a file"),
		demoDays: fs.Int("demo-days", 1500, "Bars generated in demo mode"),

		metricsAddr: fs.String("metrics-addr", "", "Serve /metrics and /status on this address"),
		dsn:         fs.String("dsn", "", "PostgreSQL DSN for storing best parameters"),
		redisAddr:   fs.String("redis", "", "Redis address for the shared data cache"),
		showStored:  fs.Bool("show-stored", false, "Print the latest stored parameters per symbol and exit (needs -dsn)"),
	}
}

func usage() *common.UsageFormatter {
	return common.NewUsageFormatter(appName, "Genetic search for moving-average trading parameters").
		AddExample(appName+" -file data/2330.csv -symbol 2330", "Optimize one dataset with the base engine").
		AddExample(appName+" -file data/2330.csv -symbol 2330 -preset fast", "Accelerated engine with a speed preset").
		AddExample(appName+" -symbols 2330:Semiconductors,2317:Electronics -data-root data", "Batch run over several symbols").
		AddExample(appName+" -demo -seed 42 -walk-forward", "Synthetic data with walk-forward validation").
		AddExample(appName+" -show-stored -dsn postgres://localhost/ga -symbols 2330,2317", "Latest stored winners per symbol")
}

func main() {
	fs := flag.NewFlagSet(appName, flag.ExitOnError)
	flags := registerFlags(fs)
	_ = fs.Parse(os.Args[1:])

	if common.CheckHelpAndVersion(appName, flags.common, usage(), fs) {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, fs, flags); err != nil {
		log.Error().Err(err).Msg("❌ Optimizer failed")
		if opterrors.IsFatal(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, fs *flag.FlagSet, flags *cliFlags) error {
	if err := config.LoadDotEnv(*flags.common.EnvFile); err != nil {
		return err
	}
	cfg, err := config.Load(*flags.common.ConfigFile)
	if err != nil {
		return err
	}
	if err := applyFlags(cfg, fs, flags); err != nil {
		return err
	}
	common.SetupLogger(flags.common, cfg.Log.Level, cfg.Log.Format)

	log.Info().Str("version", common.GetFullVersion()).Msg("🧬 " + common.ProjectName)

	app, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	switch {
	case *flags.showStored:
		if app.store == nil {
			return opterrors.NewConfigurationError("cli", "show_stored", "-show-stored needs a reachable PostgreSQL DSN (-dsn or storage.dsn)")
		}
		return showStored(ctx, os.Stdout, app.store, storedSymbols(cfg))
	case cfg.Data.File != "" || *flags.demo:
		return app.runSingle(ctx, flags)
	case len(cfg.Data.Symbols) > 0:
		return app.runBatch(ctx)
	default:
		return opterrors.NewConfigurationError("cli", "run", "nothing to optimize: pass -file, -symbols or -demo")
	}
}

// applyFlags copies explicitly set flags into cfg and revalidates it.
func applyFlags(cfg *config.Config, fs *flag.FlagSet, flags *cliFlags) error {
	validator := common.NewFlagValidator().
		ValidateChoice("preset", *flags.preset, optimization.PresetNames()).
		ValidateInt("population", *flags.population, 2, 10000).
		ValidateInt("generations", *flags.generations, 1, 100000).
		ValidateFile("file", *flags.file, false)
	if err := validator.GetError(); err != nil {
		return opterrors.NewConfigurationError("cli", "flags", err.Error())
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["file"] {
		cfg.Data.File = *flags.file
	}
	if set["symbol"] {
		cfg.Data.Symbol = *flags.symbol
	}
	if set["sector"] {
		cfg.Data.Sector = *flags.sector
	}
	if set["symbols"] {
		cfg.Data.Symbols = splitList(*flags.symbols)
	}
	if set["data-root"] {
		cfg.Data.Root = *flags.dataRoot
	}
	if set["preset"] {
		cfg.GA.Preset = *flags.preset
	}
	if set["fast"] {
		cfg.GA.Accelerated = *flags.fast
	}
	if set["seed"] {
		cfg.GA.Seed = *flags.seed
	}
	if set["population"] {
		cfg.GA.PopulationSize = *flags.population
	}
	if set["generations"] {
		cfg.GA.Generations = *flags.generations
	}
	if set["max-minutes"] {
		cfg.GA.MaxTimeMinutes = *flags.maxMinutes
	}
	if set["workers"] {
		cfg.GA.MaxWorkers = *flags.workers
	}
	if set["output"] {
		cfg.Output.OutputDirectory = *flags.output
	}
	if *flags.consoleOnly {
		cfg.Output.EnableFiles = false
	}
	if set["metrics-addr"] {
		cfg.Metrics.Enabled = *flags.metricsAddr != ""
		cfg.Metrics.Addr = *flags.metricsAddr
	}
	if set["dsn"] {
		cfg.Storage.DSN = *flags.dsn
	}
	if set["redis"] {
		cfg.Cache.Addr = *flags.redisAddr
	}

	if cfg.GA.Seed == 0 {
		cfg.GA.Seed = time.Now().UnixNano()
	}
	if cfg.Data.Symbol == "" {
		cfg.Data.Symbol = symbolFromFile(cfg.Data.File, *flags.demo)
	}
	return cfg.Validate()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func symbolFromFile(path string, demo bool) string {
	if path == "" {
		if demo {
			return "DEMO"
		}
		return ""
	}
	base := path[strings.LastIndexAny(path, `/\`)+1:]
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return strings.ToUpper(base)
}

