package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ducminhle1904/ga-trading-optimizer/internal/config"
	"github.com/ducminhle1904/ga-trading-optimizer/internal/logger"
	"github.com/ducminhle1904/ga-trading-optimizer/internal/monitoring"
	"github.com/ducminhle1904/ga-trading-optimizer/internal/storage"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/data"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/optimization"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/orchestrator"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/reporting"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/validation"
)

var demoStart = time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)

// app holds the collaborators shared by single and batch runs.
type app struct {
	cfg       *config.Config
	status    *monitoring.StatusTracker
	data      *data.DataManager
	cache     *data.RedisCache
	store     *storage.PostgresStore
	runner    *orchestrator.Runner
	reporting *reporting.ReportingManager
	server    *http.Server
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{
		cfg:       cfg,
		status:    monitoring.NewStatusTracker(),
		reporting: reporting.NewReportingManager(cfg.Output),
	}

	a.data = data.NewDataManager()
	if cfg.Cache.Addr != "" {
		cache, err := data.NewRedisCache(ctx, data.RedisCacheConfig{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			Prefix:   cfg.Cache.Prefix,
			TTL:      cfg.Cache.TTL,
		})
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ Redis cache unavailable, using in-memory cache")
			monitoring.RecordError("cache")
		} else {
			a.cache = cache
			a.data = data.NewDataManagerWithProvider(data.NewCachedProviderWithCache(data.NewCSVProvider(), cache))
		}
	}

	runner := orchestrator.NewRunner(orchestrator.RunnerConfig{
		Optimization: cfg.Optimization(),
		Split:        cfg.SplitConfig(),
		Accelerated:  cfg.UseAcceleratedEngine(),
	}).WithProgress(a.status)

	if cfg.Storage.DSN != "" {
		store, err := storage.Connect(ctx, cfg.Storage.DSN)
		if err == nil {
			err = store.EnsureSchema(ctx)
			if err != nil {
				store.Close()
			}
		}
		if err != nil {
			log.Warn().Err(err).Msg("⚠️ PostgreSQL unavailable, results will not be stored")
			monitoring.RecordError("storage")
		} else {
			a.store = store
			runner.WithStore(store)
		}
	}
	a.runner = runner

	if cfg.Metrics.Enabled {
		a.startServer()
	}
	return a, nil
}

func (a *app) startServer() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", monitoring.NewMetricsHandler())
	mux.Handle("/status", a.status)

	a.server = &http.Server{
		Addr:              a.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", a.cfg.Metrics.Addr).Msg("📡 Serving /metrics and /status")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("❌ Metrics server failed")
		}
	}()
}

// Close releases the store, cache and metrics listener.
func (a *app) Close() {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.server.Shutdown(ctx)
	}
	if a.store != nil {
		a.store.Close()
	}
	if a.cache != nil {
		_ = a.cache.Close()
	}
}

func (a *app) variant() string {
	if a.cfg.UseAcceleratedEngine() {
		return "fast_ga"
	}
	return "ga"
}

func (a *app) runSingle(ctx context.Context, flags *cliFlags) error {
	job := orchestrator.SymbolJob{Symbol: a.cfg.Data.Symbol, Sector: a.cfg.Data.Sector, Source: a.cfg.Data.File}

	var table *data.Table
	if *flags.demo {
		series := data.GenerateRandomWalk(a.cfg.GA.Seed, *flags.demoDays, demoStart, 100, 0.02)
		table = data.SeriesToTable(series)
		log.Info().Int("bars", len(series)).Int64("seed", a.cfg.GA.Seed).Msg("🎲 Generated synthetic price series")
	} else {
		loaded, err := a.data.LoadTable(ctx, job.Source)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", job.Source, err)
		}
		table = loaded
	}

	restore := a.useRunLogger(job.Symbol)
	defer restore()

	outcome, err := a.runner.Optimize(ctx, job, table)
	if err != nil {
		return err
	}

	report := reporting.NewReport(outcome.Summary, outcome.Split.Train, nil)
	if *flags.walkForward {
		report.WalkForward = a.walkForward(ctx, outcome.Split.Train, flags)
	}

	paths, err := a.reporting.ReportRun(report, a.variant())
	for _, p := range paths {
		log.Info().Str("path", p).Msg("💾 Wrote report")
	}
	if err != nil {
		log.Warn().Err(err).Msg("⚠️ Failed to write some reports")
		monitoring.RecordError("reporting")
	}
	return nil
}

// useRunLogger tees the global logger into the per-run file and returns a
// function that restores it.
func (a *app) useRunLogger(symbol string) func() {
	rl, err := logger.NewRunLogger(a.cfg.Log.Dir, symbol)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️ Run log file unavailable")
		return func() {}
	}
	previous := log.Logger
	log.Logger = rl.Logger
	log.Info().Str("path", rl.Path()).Msg("📝 Logging run to file")
	return func() {
		log.Logger = previous
		_ = rl.Close()
	}
}

// walkForward re-runs the search on rolling folds of the training window.
// Failures are logged and produce no summary.
func (a *app) walkForward(ctx context.Context, train types.PriceSeries, flags *cliFlags) *validation.WalkForwardSummary {
	opt := a.cfg.Optimization()
	accelerated := a.cfg.UseAcceleratedEngine()

	optimize := func(ctx context.Context, fold types.PriceSeries) (*types.TradingResult, error) {
		engine, err := optimization.NewEngine(fold, nil, opt, accelerated)
		if err != nil {
			return nil, err
		}
		return engine.Evolve(ctx), nil
	}

	summary, err := validation.NewWalkForwardValidator(optimize, nil).Validate(ctx, train, validation.WalkForwardConfig{
		Enable:    true,
		Rolling:   true,
		TrainDays: *flags.wfTrain,
		TestDays:  *flags.wfTest,
		RollDays:  *flags.wfRoll,
	})
	if err != nil {
		log.Warn().Err(err).Msg("⚠️ Walk-forward validation skipped")
		return nil
	}
	return summary
}

func (a *app) runBatch(ctx context.Context) error {
	jobs := make([]orchestrator.SymbolJob, 0, len(a.cfg.Data.Symbols))
	for _, entry := range a.cfg.Data.Symbols {
		symbol, sector, _ := strings.Cut(entry, ":")
		jobs = append(jobs, orchestrator.SymbolJob{Symbol: strings.TrimSpace(symbol), Sector: strings.TrimSpace(sector)})
	}

	batch := orchestrator.NewBatchRunner(a.runner, a.data, a.cfg.Data.Root, a.cfg.Data.MinRows)
	result := batch.Run(ctx, jobs)

	failures := make(map[string]error)
	for _, r := range result.Results {
		switch {
		case r.Err != nil:
			failures[r.Job.Symbol] = r.Err
		case r.Skipped:
			failures[r.Job.Symbol] = fmt.Errorf("skipped: fewer than %d rows", a.cfg.Data.MinRows)
		default:
			report := reporting.NewReport(r.Outcome.Summary, r.Outcome.Split.Train, nil)
			if _, err := a.reporting.ReportRun(report, a.variant()); err != nil {
				log.Warn().Err(err).Str("symbol", r.Job.Symbol).Msg("⚠️ Failed to write reports")
				monitoring.RecordError("reporting")
			}
		}
	}

	if a.cfg.Output.EnableConsole {
		a.reporting.Reporter().PrintBatchSummary(result.Summaries(), failures)
	}
	if result.Succeeded == 0 && len(jobs) > 0 {
		return fmt.Errorf("batch produced no results (%d failed, %d skipped)", result.Failed, result.Skipped)
	}
	return nil
}
