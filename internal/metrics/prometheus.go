// Package metrics exposes gateway metrics on a private Prometheus registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

// Registry holds all exported metrics.
type Registry struct {
	reg *prometheus.Registry

	// gateway_cache_lookups_total{result}
	cacheLookups *prometheus.CounterVec

	// gateway_cache_writes_total{result}
	cacheWrites *prometheus.CounterVec

	// gateway_retrieval_degraded_total
	retrievalDegraded prometheus.Counter

	// gateway_generations_total{provider,outcome}
	generations *prometheus.CounterVec

	// gateway_generation_duration_seconds{provider,outcome}
	generationDuration *prometheus.HistogramVec

	// gateway_route_decisions_total{provider,reason}
	routeDecisions *prometheus.CounterVec

	// gateway_provider_health{provider} 1=healthy 0=unhealthy
	providerHealth *prometheus.GaugeVec

	// gateway_provider_probe_latency_seconds{provider}
	probeLatency *prometheus.GaugeVec

	// gateway_index_records
	indexRecords prometheus.Gauge

	// gateway_http_requests_total{route,method,status}
	httpRequests *prometheus.CounterVec

	// gateway_http_request_duration_seconds{route,method}
	httpDuration *prometheus.HistogramVec
}

// New creates the registry and registers every collector.
func New() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		reg: reg,

		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_cache_lookups_total",
			Help: "Response cache lookups by result",
		}, []string{"result"}),

		cacheWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_cache_writes_total",
			Help: "Background response cache writes by result",
		}, []string{"result"}),

		retrievalDegraded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gateway_retrieval_degraded_total",
			Help: "Requests that proceeded without retrieved context after a retrieval error",
		}),

		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_generations_total",
			Help: "Completed provider generations by outcome",
		}, []string{"provider", "outcome"}),

		generationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gateway_generation_duration_seconds",
			Help:    "Time from provider call to end of stream",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"provider", "outcome"}),

		routeDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_route_decisions_total",
			Help: "Routing decisions by selected provider and reason",
		}, []string{"provider", "reason"}),

		providerHealth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gateway_provider_health",
			Help: "Last probed provider health (1 healthy, 0 unhealthy)",
		}, []string{"provider"}),

		probeLatency: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gateway_provider_probe_latency_seconds",
			Help: "Latency of the last provider probe",
		}, []string{"provider"}),

		indexRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gateway_index_records",
			Help: "Records held by the vector index",
		}),

		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_http_requests_total",
			Help: "HTTP requests handled by the gateway",
		}, []string{"route", "method", "status"}),

		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gateway_http_request_duration_seconds",
			Help:    "HTTP request duration including streamed bodies",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	reg.MustRegister(
		r.cacheLookups,
		r.cacheWrites,
		r.retrievalDegraded,
		r.generations,
		r.generationDuration,
		r.routeDecisions,
		r.providerHealth,
		r.probeLatency,
		r.indexRecords,
		r.httpRequests,
		r.httpDuration,
	)

	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Gatherer exposes the underlying registry for tests and custom exporters.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// CacheLookup counts a cache hit or miss.
func (r *Registry) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// CacheWrite counts a background cache write.
func (r *Registry) CacheWrite(err error) {
	r.cacheWrites.WithLabelValues(outcome(err)).Inc()
}

// RetrievalDegraded counts a request served without context.
func (r *Registry) RetrievalDegraded() {
	r.retrievalDegraded.Inc()
}

// GenerationFinished records the end of a provider stream.
func (r *Registry) GenerationFinished(provider string, err error, elapsed time.Duration) {
	o := outcome(err)
	r.generations.WithLabelValues(provider, o).Inc()
	r.generationDuration.WithLabelValues(provider, o).Observe(elapsed.Seconds())
}

// RouteSelected counts a routing decision.
func (r *Registry) RouteSelected(providerID string, reason string) {
	r.routeDecisions.WithLabelValues(providerID, reason).Inc()
}

// ProviderHealth records a probe result.
func (r *Registry) ProviderHealth(providerID string, healthy bool, latency time.Duration) {
	value := 0.0
	if healthy {
		value = 1
	}
	r.providerHealth.WithLabelValues(providerID).Set(value)
	r.probeLatency.WithLabelValues(providerID).Set(latency.Seconds())
}

// SetIndexRecords records the vector index size.
func (r *Registry) SetIndexRecords(n int) {
	r.indexRecords.Set(float64(n))
}

// ObserveHTTP records a finished HTTP request.
func (r *Registry) ObserveHTTP(route string, method string, status int, elapsed time.Duration) {
	r.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return outcomeError
	}
	return outcomeSuccess
}
