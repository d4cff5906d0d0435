package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lineupsheet"

// Outcome labels for operations that completed without an infrastructure error
const (
	OutcomeOK = "ok"
	// OutcomeError covers storage failures and contention
	OutcomeError = "error"
)

// Recorder exposes lineup metrics on its own registry.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry        *prometheus.Registry
	operations      *prometheus.CounterVec
	versionConflict *prometheus.CounterVec
	lineupsCreated  prometheus.Counter
	sweptLineups    prometheus.Counter
	rateLimited     prometheus.Counter
}

// NewRecorder creates a Recorder with a fresh registry
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Lineup operations by operation and outcome reason.",
		}, []string{"operation", "outcome"}),
		versionConflict: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "version_conflicts_total",
			Help:      "Roster writes rejected because another writer updated the lineup first.",
		}, []string{"operation"}),
		lineupsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lineups_created_total",
			Help:      "Lineups created.",
		}),
		sweptLineups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lineups_swept_total",
			Help:      "Expired lineups physically removed by the janitor.",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
	}
	reg.MustRegister(
		r.operations,
		r.versionConflict,
		r.lineupsCreated,
		r.sweptLineups,
		r.rateLimited,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// RecordOperation counts one finished operation. outcome is a reason code,
// OutcomeOK or OutcomeError.
func (r *Recorder) RecordOperation(operation, outcome string) {
	if r == nil {
		return
	}
	r.operations.WithLabelValues(operation, outcome).Inc()
}

// RecordVersionConflict counts a lost compare-and-swap
func (r *Recorder) RecordVersionConflict(operation string) {
	if r == nil {
		return
	}
	r.versionConflict.WithLabelValues(operation).Inc()
}

// RecordLineupCreated counts a persisted lineup
func (r *Recorder) RecordLineupCreated() {
	if r == nil {
		return
	}
	r.lineupsCreated.Inc()
}

// RecordSwept counts lineups removed by a sweep
func (r *Recorder) RecordSwept(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.sweptLineups.Add(float64(n))
}

// RecordRateLimited counts a throttled request
func (r *Recorder) RecordRateLimited() {
	if r == nil {
		return
	}
	r.rateLimited.Inc()
}

// OperationCounter returns the counter for one operation and outcome
func (r *Recorder) OperationCounter(operation, outcome string) prometheus.Counter {
	return r.operations.WithLabelValues(operation, outcome)
}

// VersionConflictCounter returns the conflict counter for one operation
func (r *Recorder) VersionConflictCounter(operation string) prometheus.Counter {
	return r.versionConflict.WithLabelValues(operation)
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
