package backtest

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ducminhle1904/ga-trading-optimizer/pkg/types"
)

// EvaluationJob is one parameter set to score. Seed drives the job's own
// jitter source so results do not depend on scheduling order.
type EvaluationJob struct {
	Params types.TradingParameters
	Seed   int64
}

// EvaluateFunc scores one parameter set. Evaluator.Evaluate is the production implementation.
type EvaluateFunc func(params types.TradingParameters, closes []float64, rng *rand.Rand) types.TradingResult

// WorkerPool evaluates batches of jobs on a bounded number of goroutines.
type WorkerPool struct {
	workerCount int
	evaluator   *Evaluator
}

// NewWorkerPool creates a pool. A non-positive workerCount uses NumCPU.
func NewWorkerPool(workerCount int, evaluator *Evaluator) *WorkerPool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	if evaluator == nil {
		evaluator = NewEvaluator()
	}
	return &WorkerPool{
		workerCount: workerCount,
		evaluator:   evaluator,
	}
}

// Workers returns the concurrency limit.
func (wp *WorkerPool) Workers() int {
	return wp.workerCount
}

// EvaluateBatch scores every job against closes and returns results in job
// order. A worker panic or context cancellation aborts the batch with an
// error; callers fall back to EvaluateSerial.
func (wp *WorkerPool) EvaluateBatch(ctx context.Context, closes []float64, jobs []EvaluationJob) ([]types.TradingResult, error) {
	results := make([]types.TradingResult, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(wp.workerCount)

	for i, job := range jobs {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("worker panic on job %d: %v", i, r)
				}
			}()
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = wp.evaluator.Evaluate(job.Params, closes, rand.New(rand.NewSource(job.Seed)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// EvaluateSerial scores jobs one after another on the calling goroutine,
// seeding each job's rng the same way EvaluateBatch does.
func EvaluateSerial(evaluate EvaluateFunc, closes []float64, jobs []EvaluationJob) []types.TradingResult {
	results := make([]types.TradingResult, len(jobs))
	for i, job := range jobs {
		results[i] = evaluate(job.Params, closes, rand.New(rand.NewSource(job.Seed)))
	}
	return results
}
