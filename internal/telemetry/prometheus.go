package telemetry

import (
	"net/http"
	"strconv"
	"sync"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusSink implements Sink by mapping known fetch events onto
// counters and histograms. Unknown events are counted by name only.
type PrometheusSink struct {
	once          sync.Once
	attempts      *prom.CounterVec
	fetchDuration *prom.HistogramVec
	events        *prom.CounterVec
}

// NewPrometheusSink constructs and registers the driver metrics (idempotent).
func NewPrometheusSink(reg *prom.Registry) *PrometheusSink {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	ps := &PrometheusSink{}
	ps.once.Do(func() {
		ps.attempts = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "gitdriver",
			Name:      "fetch_attempts_total",
			Help:      "Fetch attempts by event and exit result",
		}, []string{"event", "result"})
		ps.fetchDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "gitdriver",
			Name:      "fetch_attempt_duration_seconds",
			Help:      "Duration of individual fetch attempts",
			Buckets:   prom.DefBuckets,
		}, []string{"event"})
		ps.events = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "gitdriver",
			Name:      "events_total",
			Help:      "All telemetry events by name",
		}, []string{"event"})
		reg.MustRegister(ps.attempts, ps.fetchDuration, ps.events)
	})
	return ps
}

// Track implements Sink.
func (ps *PrometheusSink) Track(event string, props map[string]string) {
	ps.events.WithLabelValues(event).Inc()
	if event != EventFetch && event != EventLFSFetch {
		return
	}
	result := "failure"
	if props[PropExitCode] == "0" {
		result = "success"
	}
	ps.attempts.WithLabelValues(event, result).Inc()
	if ms, err := strconv.ParseFloat(props[PropElapsedMS], 64); err == nil {
		ps.fetchDuration.WithLabelValues(event).Observe(ms / 1000.0)
	}
}

// HTTPHandler returns an http.Handler that serves Prometheus metrics for the provided registry.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
