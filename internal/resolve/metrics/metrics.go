package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"discordcore/pkg/domain"
)

// Metrics holds the Prometheus metrics of the resolution context.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	CacheHits    *prometheus.CounterVec
	CacheMisses  *prometheus.CounterVec
	CacheErrors  *prometheus.CounterVec
	Fetches      *prometheus.CounterVec
	FetchLatency *prometheus.HistogramVec
	Coalesced    *prometheus.CounterVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CacheHits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "discordcore_resolve_cache_hits_total",
			Help: "Resolutions served from the cache",
		}, []string{"kind"}),
		CacheMisses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "discordcore_resolve_cache_misses_total",
			Help: "Resolutions that missed the cache",
		}, []string{"kind"}),
		CacheErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "discordcore_resolve_cache_errors_total",
			Help: "Cache reads or writes that failed",
		}, []string{"kind", "op"}),
		Fetches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "discordcore_resolve_fetches_total",
			Help: "Network fetches by outcome category",
		}, []string{"kind", "outcome"}),
		FetchLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "discordcore_resolve_fetch_duration_seconds",
			Help:    "Latency of network fetches",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		Coalesced: f.NewCounterVec(prometheus.CounterOpts{
			Name: "discordcore_resolve_coalesced_total",
			Help: "Resolutions that shared an in-flight fetch",
		}, []string{"kind"}),
	}
}

func (m *Metrics) IncrementCacheHit(kind domain.Kind) {
	if m == nil {
		return
	}
	m.CacheHits.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) IncrementCacheMiss(kind domain.Kind) {
	if m == nil {
		return
	}
	m.CacheMisses.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) IncrementCacheError(kind domain.Kind, op string) {
	if m == nil {
		return
	}
	m.CacheErrors.WithLabelValues(kind.String(), op).Inc()
}

func (m *Metrics) IncrementCoalesced(kind domain.Kind) {
	if m == nil {
		return
	}
	m.Coalesced.WithLabelValues(kind.String()).Inc()
}

// ObserveFetch records one network fetch; outcome is "ok" or a failure category.
func (m *Metrics) ObserveFetch(kind domain.Kind, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Fetches.WithLabelValues(kind.String(), outcome).Inc()
	m.FetchLatency.WithLabelValues(kind.String()).Observe(d.Seconds())
}
