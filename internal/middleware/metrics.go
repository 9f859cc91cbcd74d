package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics stores application metrics
type Metrics struct {
	RequestsTotal      uint64
	RequestsInProgress uint64
	RequestsSuccess    uint64
	RequestsFailed     uint64
	StartTime          time.Time

	analyses analysisStats
}

// analysisStats tracks summarization runs and how long the model took for them
type analysisStats struct {
	mu        sync.Mutex
	model     string
	total     uint64
	running   uint64
	failed    uint64
	quota     uint64
	inference float64 // seconds, successful runs only
	last      float64
}

var globalMetrics = &Metrics{
	StartTime: time.Now(),
}

// IncrementRequests increments total request counter
func IncrementRequests() {
	atomic.AddUint64(&globalMetrics.RequestsTotal, 1)
}

// IncrementInProgress increments in-progress request counter
func IncrementInProgress() {
	atomic.AddUint64(&globalMetrics.RequestsInProgress, 1)
}

// DecrementInProgress decrements in-progress request counter
func DecrementInProgress() {
	atomic.AddUint64(&globalMetrics.RequestsInProgress, ^uint64(0))
}

// IncrementSuccess increments successful request counter
func IncrementSuccess() {
	atomic.AddUint64(&globalMetrics.RequestsSuccess, 1)
}

// IncrementFailed increments failed request counter
func IncrementFailed() {
	atomic.AddUint64(&globalMetrics.RequestsFailed, 1)
}

// SetModel records the name of the model serving analyses
func SetModel(name string) {
	a := &globalMetrics.analyses
	a.mu.Lock()
	a.model = name
	a.mu.Unlock()
}

// AnalysisOutcome describes one finished analysis
type AnalysisOutcome struct {
	InferenceSeconds float64
	Err              error
	QuotaExceeded    bool
}

// StartAnalysis marks an analysis as running. The returned func must be called
// exactly once when it finishes.
func StartAnalysis() func(AnalysisOutcome) {
	a := &globalMetrics.analyses
	a.mu.Lock()
	a.total++
	a.running++
	a.mu.Unlock()

	var once sync.Once
	return func(o AnalysisOutcome) {
		once.Do(func() {
			a.mu.Lock()
			defer a.mu.Unlock()
			a.running--
			switch {
			case o.Err != nil:
				a.failed++
				if o.QuotaExceeded {
					a.quota++
				}
			default:
				a.inference += o.InferenceSeconds
				a.last = o.InferenceSeconds
			}
		})
	}
}

func (a *analysisStats) snapshot() map[string]interface{} {
	a.mu.Lock()
	defer a.mu.Unlock()

	var avg float64
	if ok := a.total - a.failed - a.running; ok > 0 {
		avg = a.inference / float64(ok)
	}
	return map[string]interface{}{
		"model":                  a.model,
		"total":                  a.total,
		"running":                a.running,
		"failed":                 a.failed,
		"quota_exceeded":         a.quota,
		"inference_seconds_sum":  a.inference,
		"inference_seconds_avg":  avg,
		"inference_seconds_last": a.last,
	}
}

// GetMetrics returns current metrics
func GetMetrics() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"requests_total":       atomic.LoadUint64(&globalMetrics.RequestsTotal),
		"requests_in_progress": atomic.LoadUint64(&globalMetrics.RequestsInProgress),
		"requests_success":     atomic.LoadUint64(&globalMetrics.RequestsSuccess),
		"requests_failed":      atomic.LoadUint64(&globalMetrics.RequestsFailed),
		"analyses":             globalMetrics.analyses.snapshot(),
		"uptime_seconds":       time.Since(globalMetrics.StartTime).Seconds(),
		"memory": map[string]interface{}{
			"alloc_bytes":       m.Alloc,
			"total_alloc_bytes": m.TotalAlloc,
			"sys_bytes":         m.Sys,
			"num_gc":            m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		IncrementRequests()
		IncrementInProgress()
		defer DecrementInProgress()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			IncrementSuccess()
		} else {
			IncrementFailed()
		}
	})
}

// MetricsHandler returns metrics as JSON
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(GetMetrics())
}
