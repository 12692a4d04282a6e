// Package storage persists optimization winners to PostgreSQL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	opterrors "github.com/ducminhle1904/ga-trading-optimizer/internal/errors"
	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
)

// ErrNotFound is returned when no parameters are stored for a symbol.
var ErrNotFound = errors.New("no stored parameters")

// PoolInterface defines the interface for database pool operations
type PoolInterface interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS best_parameters (
		id                  UUID PRIMARY KEY,
		run_id              TEXT NOT NULL,
		symbol              TEXT NOT NULL,
		sector              TEXT NOT NULL DEFAULT '',
		m_intervals         INTEGER NOT NULL,
		hold_days           INTEGER NOT NULL,
		target_profit_ratio DOUBLE PRECISION NOT NULL,
		alpha               DOUBLE PRECISION NOT NULL,
		total_profit        DOUBLE PRECISION NOT NULL,
		win_rate            DOUBLE PRECISION NOT NULL,
		max_drawdown        DOUBLE PRECISION NOT NULL,
		sharpe_ratio        DOUBLE PRECISION NOT NULL,
		fitness             DOUBLE PRECISION NOT NULL,
		has_holdout         BOOLEAN NOT NULL DEFAULT FALSE,
		test_fitness        DOUBLE PRECISION NOT NULL DEFAULT 0,
		stop_reason         TEXT NOT NULL,
		generations         INTEGER NOT NULL,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_best_parameters_symbol_created
		ON best_parameters (symbol, created_at DESC)`,
}

// StoredParameters is one best_parameters row.
type StoredParameters struct {
	ID          uuid.UUID
	RunID       string
	Symbol      string
	Sector      string
	Parameters  types.TradingParameters
	TotalProfit float64
	WinRate     float64
	MaxDrawdown float64
	SharpeRatio float64
	Fitness     float64
	HasHoldout  bool
	TestFitness float64
	StopReason  string
	Generations int
	CreatedAt   time.Time
}

// PostgresStore writes run winners to the best_parameters table.
type PostgresStore struct {
	pool   PoolInterface
	closer func()
	now    func() time.Time
	logger zerolog.Logger
}

// NewPostgresStore creates a store over an existing pool
func NewPostgresStore(pool PoolInterface) *PostgresStore {
	return &PostgresStore{
		pool:   pool,
		closer: func() {},
		now:    time.Now,
		logger: log.With().Str("component", "postgres_store").Logger(),
	}
}

// Connect opens a pgx pool for dsn and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, opterrors.NewStorageError("postgres", "connect", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, opterrors.NewStorageError("postgres", "ping", err)
	}

	store := NewPostgresStore(pool)
	store.closer = pool.Close
	store.logger.Info().Msg("🗄️ Connected to PostgreSQL")
	return store, nil
}

// Close releases the pool when the store owns it.
func (s *PostgresStore) Close() {
	s.closer()
}

// EnsureSchema creates the best_parameters table and index if missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return opterrors.NewStorageError("postgres", "ensure_schema", err)
		}
	}
	return nil
}

// SaveBestParameters inserts the run winner and returns the row id.
func (s *PostgresStore) SaveBestParameters(ctx context.Context, summary types.RunSummary) (uuid.UUID, error) {
	if summary.Best == nil {
		return uuid.Nil, opterrors.New(opterrors.ErrorCategoryStorage, "postgres", "save_best_parameters", "run has no winner")
	}

	best := summary.Best
	hasHoldout := best.TestResult != nil
	testFitness := 0.0
	if hasHoldout {
		testFitness = best.TestResult.Fitness
	}

	id := uuid.New()
	query := `
		INSERT INTO best_parameters (
			id, run_id, symbol, sector,
			m_intervals, hold_days, target_profit_ratio, alpha,
			total_profit, win_rate, max_drawdown, sharpe_ratio, fitness,
			has_holdout, test_fitness, stop_reason, generations, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := s.pool.Exec(ctx, query,
		id, summary.Metadata.RunID, summary.Metadata.Symbol, summary.Metadata.Sector,
		best.Parameters.MIntervals, best.Parameters.HoldDays, best.Parameters.TargetProfitRatio, best.Parameters.Alpha,
		best.TotalProfit, best.WinRate, best.MaxDrawdown, best.SharpeRatio, best.Fitness,
		hasHoldout, testFitness, summary.StopReason, summary.Generations, s.now().UTC(),
	)
	if err != nil {
		return uuid.Nil, opterrors.NewStorageError("postgres", "save_best_parameters", fmt.Errorf("failed to insert best parameters: %w", err)).
			WithContext("symbol", summary.Metadata.Symbol)
	}

	s.logger.Info().
		Str("id", id.String()).
		Str("symbol", summary.Metadata.Symbol).
		Str("params", best.Parameters.String()).
		Float64("fitness", best.Fitness).
		Msg("💾 Saved best parameters")
	return id, nil
}

// LatestBySymbol returns the most recent winner stored for symbol.
func (s *PostgresStore) LatestBySymbol(ctx context.Context, symbol string) (*StoredParameters, error) {
	query := `
		SELECT id, run_id, symbol, sector,
			m_intervals, hold_days, target_profit_ratio, alpha,
			total_profit, win_rate, max_drawdown, sharpe_ratio, fitness,
			has_holdout, test_fitness, stop_reason, generations, created_at
		FROM best_parameters
		WHERE symbol = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var rec StoredParameters
	err := s.pool.QueryRow(ctx, query, symbol).Scan(
		&rec.ID, &rec.RunID, &rec.Symbol, &rec.Sector,
		&rec.Parameters.MIntervals, &rec.Parameters.HoldDays, &rec.Parameters.TargetProfitRatio, &rec.Parameters.Alpha,
		&rec.TotalProfit, &rec.WinRate, &rec.MaxDrawdown, &rec.SharpeRatio, &rec.Fitness,
		&rec.HasHoldout, &rec.TestFitness, &rec.StopReason, &rec.Generations, &rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, opterrors.NewStorageError("postgres", "latest_by_symbol", err).WithContext("symbol", symbol)
	}
	return &rec, nil
}

// CountBySymbol returns how many winners are stored per symbol.
func (s *PostgresStore) CountBySymbol(ctx context.Context) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, `SELECT symbol, COUNT(*) FROM best_parameters GROUP BY symbol`)
	if err != nil {
		return nil, opterrors.NewStorageError("postgres", "count_by_symbol", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var symbol string
		var n int
		if err := rows.Scan(&symbol, &n); err != nil {
			return nil, opterrors.NewStorageError("postgres", "count_by_symbol", err)
		}
		counts[symbol] = n
	}
	if err := rows.Err(); err != nil {
		return nil, opterrors.NewStorageError("postgres", "count_by_symbol", err)
	}
	return counts, nil
}
