package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "clinicdesk"

var (
	once sync.Once

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Resource cache lookups by resource and result (hit, miss, refresh).",
		},
		[]string{"resource", "result"},
	)

	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Backend calls by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	apiDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Backend call latency by operation.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2, 5},
		},
		[]string{"operation"},
	)

	workflowOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_outcomes_total",
			Help:      "Booking workflow submissions by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	pollFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_failures_total",
			Help:      "Background refresh failures by view.",
		},
		[]string{"view"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(cacheLookups, apiRequests, apiDuration, workflowOutcomes, pollFailures)
	})
}

func IncCacheLookup(resource, result string) {
	cacheLookups.WithLabelValues(resource, result).Inc()
}

// ObserveAPICall records one backend call.
func ObserveAPICall(operation string, started time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	apiRequests.WithLabelValues(operation, outcome).Inc()
	apiDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

func IncWorkflowOutcome(kind, outcome string) {
	workflowOutcomes.WithLabelValues(kind, outcome).Inc()
}

func IncPollFailure(view string) {
	pollFailures.WithLabelValues(view).Inc()
}
