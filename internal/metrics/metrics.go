// Package metrics exposes the Prometheus collectors of the cardstats service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cardstats"

// Metrics owns a private registry and the collectors registered on it.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	counterIncrements   *prometheus.CounterVec
	storeQueryDuration  *prometheus.HistogramVec
	rankingsSubmitted   prometheus.Counter
}

// New creates a Metrics instance with Go runtime and process collectors
// registered alongside the service metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	auto := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpRequestDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		counterIncrements: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "counter_increments_total",
			Help:      "Card counter increments applied, by count field.",
		}, []string{"field"}),
		storeQueryDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_query_duration_seconds",
			Help:      "Latency of store operations in seconds.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"op"}),
		rankingsSubmitted: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rankings_submitted_total",
			Help:      "Rankings accepted and stored.",
		}),
	}
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// CounterIncremented records one increment of the named count field.
func (m *Metrics) CounterIncremented(field string) {
	if m == nil {
		return
	}
	m.counterIncrements.WithLabelValues(field).Inc()
}

// ObserveQuery records the time since start for store operation op.
func (m *Metrics) ObserveQuery(op string, start time.Time) {
	if m == nil {
		return
	}
	m.storeQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *Metrics) RankingSubmitted() {
	if m == nil {
		return
	}
	m.rankingsSubmitted.Inc()
}
