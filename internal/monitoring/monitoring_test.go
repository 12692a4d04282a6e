package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordEvaluation_IncrementsOutcome(t *testing.T) {
	before := testutil.ToFloat64(evaluationsTotal.WithLabelValues("no_buy_signals"))
	RecordEvaluation("no_buy_signals", 0.001)
	after := testutil.ToFloat64(evaluationsTotal.WithLabelValues("no_buy_signals"))

	assert.Equal(t, before+1, after)
}

func TestRecordGeneration_SetsGauges(t *testing.T) {
	RecordGeneration("TEST", 12.5, 3.25)

	assert.Equal(t, 12.5, testutil.ToFloat64(bestFitness.WithLabelValues("TEST")))
	assert.Equal(t, 3.25, testutil.ToFloat64(avgFitness.WithLabelValues("TEST")))
}

func TestMetricsHandler_ServesRegisteredMetrics(t *testing.T) {
	RecordRun("population converged")
	RecordParallelFallback()

	rec := httptest.NewRecorder()
	NewMetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "ga_optimizer_runs_total")
	assert.Contains(t, body, "ga_optimizer_parallel_fallbacks_total")
}

func TestStatusTracker_Lifecycle(t *testing.T) {
	tracker := NewStatusTracker()
	assert.Equal(t, "idle", tracker.Snapshot().Status)

	tracker.Generation("2330", 4, 7.5)
	snap := tracker.Snapshot()
	assert.Equal(t, "running", snap.Status)
	assert.Equal(t, 4, snap.Generation)
	assert.Equal(t, 7.5, snap.BestFitness)

	tracker.Finished("2330", "population converged")
	snap = tracker.Snapshot()
	assert.Equal(t, 1, snap.CompletedRuns)
	assert.Equal(t, "population converged", snap.LastStop)
}

func TestStatusTracker_ServeHTTPDegraded(t *testing.T) {
	tracker := NewStatusTracker()
	for i := 0; i < 30; i++ {
		tracker.Error("storage unavailable")
	}

	rec := httptest.NewRecorder()
	tracker.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var status RunStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "degraded", status.Status)
	assert.Len(t, status.Errors, 20)
}
