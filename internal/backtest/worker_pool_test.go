package backtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJobs(n int) []EvaluationJob {
	jobs := make([]EvaluationJob, n)
	for i := range jobs {
		jobs[i] = EvaluationJob{
			Params: params(5+i%40, 1+i%20, 0.02+float64(i%10)*0.01, 0.5+float64(i%8)),
			Seed:   int64(1000 + i),
		}
	}
	return jobs
}

func TestWorkerPool_MatchesSerial(t *testing.T) {
	closes := randomWalk(3, 600)
	jobs := testJobs(25)
	pool := NewWorkerPool(4, NewEvaluator())

	parallel, err := pool.EvaluateBatch(context.Background(), closes, jobs)
	require.NoError(t, err)
	serial := EvaluateSerial(NewEvaluator().Evaluate, closes, jobs)

	require.Len(t, parallel, len(jobs))
	for i := range jobs {
		assert.Equal(t, jobs[i].Params, parallel[i].Parameters)
		assert.Equal(t, serial[i].Fitness, parallel[i].Fitness, "job %d", i)
	}
}

func TestWorkerPool_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWorkerPool(2, nil).EvaluateBatch(ctx, randomWalk(3, 100), testJobs(6))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWorkerPool_PanicBecomesError(t *testing.T) {
	evaluator := NewEvaluator()
	pool := NewWorkerPool(2, evaluator)
	pool.evaluator = nil

	_, err := pool.EvaluateBatch(context.Background(), randomWalk(3, 100), testJobs(3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "worker panic")
}

func TestNewWorkerPool_DefaultWorkers(t *testing.T) {
	assert.Greater(t, NewWorkerPool(0, nil).Workers(), 0)
}
