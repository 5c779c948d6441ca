package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bryanwahyu/ecosense/internal/domain/ai"
	"github.com/bryanwahyu/ecosense/internal/domain/footprint"
)

// Metrics holds process-wide counters served by /api/metrics.
type Metrics struct {
	requestsTotal      atomic.Uint64
	requestsInProgress atomic.Int64
	status2xx          atomic.Uint64
	status4xx          atomic.Uint64
	status5xx          atomic.Uint64

	analysesTotal  atomic.Uint64
	analysesFailed atomic.Uint64
	quotaExceeded  atomic.Uint64
	solarPlans     atomic.Uint64
	solarSimulated atomic.Uint64

	mu            sync.Mutex
	stageFailures map[string]uint64

	startTime time.Time
}

var globalMetrics = &Metrics{
	stageFailures: make(map[string]uint64),
	startTime:     time.Now(),
}

// RecordAnalysis counts one carbon pipeline run and, on failure, the layer
// that aborted it.
func RecordAnalysis(err error) {
	globalMetrics.analysesTotal.Add(1)
	if err == nil {
		return
	}
	globalMetrics.analysesFailed.Add(1)
	if errors.Is(err, ai.ErrQuotaExceeded) {
		globalMetrics.quotaExceeded.Add(1)
	}
	var se *footprint.StageError
	if errors.As(err, &se) {
		globalMetrics.mu.Lock()
		globalMetrics.stageFailures[se.Stage()]++
		globalMetrics.mu.Unlock()
	}
}

// RecordSolarPlan counts one solar plan; simulated marks a rule-based answer.
func RecordSolarPlan(simulated bool) {
	globalMetrics.solarPlans.Add(1)
	if simulated {
		globalMetrics.solarSimulated.Add(1)
	}
}

func (m *Metrics) recordStatus(code int) {
	switch {
	case code >= 500:
		m.status5xx.Add(1)
	case code >= 400:
		m.status4xx.Add(1)
	default:
		m.status2xx.Add(1)
	}
}

// GetMetrics returns a snapshot of the counters.
func GetMetrics() map[string]any {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	globalMetrics.mu.Lock()
	stages := make(map[string]uint64, len(globalMetrics.stageFailures))
	for k, v := range globalMetrics.stageFailures {
		stages[k] = v
	}
	globalMetrics.mu.Unlock()

	return map[string]any{
		"requests_total":       globalMetrics.requestsTotal.Load(),
		"requests_in_progress": globalMetrics.requestsInProgress.Load(),
		"responses": map[string]uint64{
			"2xx": globalMetrics.status2xx.Load(),
			"4xx": globalMetrics.status4xx.Load(),
			"5xx": globalMetrics.status5xx.Load(),
		},
		"analyses_total":        globalMetrics.analysesTotal.Load(),
		"analyses_failed":       globalMetrics.analysesFailed.Load(),
		"analyses_quota":        globalMetrics.quotaExceeded.Load(),
		"stage_failures":        stages,
		"solar_plans_total":     globalMetrics.solarPlans.Load(),
		"solar_plans_simulated": globalMetrics.solarSimulated.Load(),
		"uptime_seconds":        time.Since(globalMetrics.startTime).Seconds(),
		"memory": map[string]any{
			"alloc_bytes": mem.Alloc,
			"sys_bytes":   mem.Sys,
			"num_gc":      mem.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		globalMetrics.requestsTotal.Add(1)
		globalMetrics.requestsInProgress.Add(1)
		defer globalMetrics.requestsInProgress.Add(-1)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		globalMetrics.recordStatus(wrapped.statusCode)
	})
}

// MetricsHandler returns metrics as JSON
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(GetMetrics())
}
