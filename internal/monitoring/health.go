package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

var startTime = time.Now()

// StatusTracker exposes the progress of the runs of this process.
type StatusTracker struct {
	mu           sync.RWMutex
	symbol       string
	generation   int
	bestFitness  float64
	lastUpdate   time.Time
	completed    int
	lastStop     string
	errors       []string
	maxErrorKeep int
}

// RunStatus is the JSON body served by StatusTracker.
type RunStatus struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	Symbol        string    `json:"symbol,omitempty"`
	Generation    int       `json:"generation"`
	BestFitness   float64   `json:"best_fitness"`
	LastUpdate    time.Time `json:"last_update"`
	CompletedRuns int       `json:"completed_runs"`
	LastStop      string    `json:"last_stop_reason,omitempty"`
	Uptime        string    `json:"uptime"`
	Errors        []string  `json:"errors,omitempty"`
}

func NewStatusTracker() *StatusTracker {
	return &StatusTracker{
		errors:       make([]string, 0),
		maxErrorKeep: 20,
	}
}

// Generation records progress of the active run.
func (h *StatusTracker) Generation(symbol string, generation int, best float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.symbol = symbol
	h.generation = generation
	h.bestFitness = best
	h.lastUpdate = time.Now()
}

// Finished records a completed run.
func (h *StatusTracker) Finished(symbol, stopReason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.symbol = symbol
	h.completed++
	h.lastStop = stopReason
	h.lastUpdate = time.Now()
}

// Error keeps the most recent error messages.
func (h *StatusTracker) Error(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, msg)
	if len(h.errors) > h.maxErrorKeep {
		h.errors = h.errors[len(h.errors)-h.maxErrorKeep:]
	}
}

// Snapshot returns the current status.
func (h *StatusTracker) Snapshot() RunStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "idle"
	if !h.lastUpdate.IsZero() {
		status = "running"
	}
	if len(h.errors) > 0 {
		status = "degraded"
	}

	return RunStatus{
		Status:        status,
		Timestamp:     time.Now(),
		Symbol:        h.symbol,
		Generation:    h.generation,
		BestFitness:   h.bestFitness,
		LastUpdate:    h.lastUpdate,
		CompletedRuns: h.completed,
		LastStop:      h.lastStop,
		Uptime:        time.Since(startTime).String(),
		Errors:        append([]string(nil), h.errors...),
	}
}

func (h *StatusTracker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := h.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	if status.Status == "degraded" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(status)
}
