package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Evaluation metrics
	evaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ga_optimizer_evaluations_total",
			Help: "Total number of fitness evaluations by outcome",
		},
		[]string{"outcome"},
	)

	evaluationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ga_optimizer_evaluation_seconds",
			Help:    "Distribution of single backtest durations",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
	)

	// Search metrics
	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ga_optimizer_generations_total",
			Help: "Total number of completed generations",
		},
		[]string{"symbol"},
	)

	bestFitness = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ga_optimizer_best_fitness",
			Help: "Best fitness of the latest generation",
		},
		[]string{"symbol"},
	)

	avgFitness = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ga_optimizer_avg_fitness",
			Help: "Average fitness of the latest generation",
		},
		[]string{"symbol"},
	)

	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ga_optimizer_runs_total",
			Help: "Total number of finished optimization runs by stop reason",
		},
		[]string{"stop_reason"},
	)

	parallelFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ga_optimizer_parallel_fallbacks_total",
			Help: "Number of runs that degraded from parallel to serial evaluation",
		},
	)

	// Error metrics
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ga_optimizer_errors_total",
			Help: "Total number of errors",
		},
		[]string{"type"},
	)
)

func init() {
	// Register metrics
	prometheus.MustRegister(evaluationsTotal)
	prometheus.MustRegister(evaluationDuration)
	prometheus.MustRegister(generationsTotal)
	prometheus.MustRegister(bestFitness)
	prometheus.MustRegister(avgFitness)
	prometheus.MustRegister(runsTotal)
	prometheus.MustRegister(parallelFallbacks)
	prometheus.MustRegister(errorsTotal)
}

// MetricsHandler handles Prometheus metrics endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordEvaluation counts one fitness evaluation.
func RecordEvaluation(outcome string, seconds float64) {
	evaluationsTotal.WithLabelValues(outcome).Inc()
	evaluationDuration.Observe(seconds)
}

// RecordGeneration records the fitness summary of a completed generation.
func RecordGeneration(symbol string, best, avg float64) {
	generationsTotal.WithLabelValues(symbol).Inc()
	bestFitness.WithLabelValues(symbol).Set(best)
	avgFitness.WithLabelValues(symbol).Set(avg)
}

// RecordRun counts a finished run.
func RecordRun(stopReason string) {
	runsTotal.WithLabelValues(stopReason).Inc()
}

// RecordParallelFallback counts a degradation to serial evaluation.
func RecordParallelFallback() {
	parallelFallbacks.Inc()
}

// RecordError records an error metric
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}
