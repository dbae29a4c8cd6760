package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry         *prometheus.Registry
	refreshRuns      *prometheus.CounterVec // total background refresh cycles
	refreshDuration  prometheus.Histogram   // time to refresh all accounts
	cachedDomains    *prometheus.GaugeVec   // cached domains per account
	providerRequests *prometheus.CounterVec // dns provider requests
	metaRequests     *prometheus.CounterVec // metadata service requests
	storeRequests    *prometheus.CounterVec // badgerdb requests
}

// Public interface for metrics operations
func (m *Metrics) IncRefreshRun(success bool) {
	m.refreshRuns.WithLabelValues(boolToResult(success)).Inc()
}

func (m *Metrics) SetRefreshDuration(duration time.Duration) {
	m.refreshDuration.Observe(duration.Seconds())
}

func (m *Metrics) SetCachedDomains(accountID string, count int) {
	if accountID == "" {
		return
	}
	m.cachedDomains.WithLabelValues(accountID).Set(float64(count))
}

func (m *Metrics) IncProviderRequest(provider, operation string, success bool) {
	if provider == "" || operation == "" {
		return
	}
	m.providerRequests.WithLabelValues(provider, operation, boolToResult(success)).Inc()
}

func (m *Metrics) IncMetaRequest(operation string, success bool) {
	if operation == "" {
		return
	}
	m.metaRequests.WithLabelValues(operation, boolToResult(success)).Inc()
}

func (m *Metrics) IncStoreRequest(operation string, success bool) {
	if operation == "" {
		return
	}
	m.storeRequests.WithLabelValues(operation, boolToResult(success)).Inc()
}

func boolToResult(b bool) string {
	if b {
		return "success"
	}
	return "failure"
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	namespace := "dns_manager_sync"

	m := &Metrics{
		registry: registry,

		refreshRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_runs_total",
			Help:      "Total number of background refresh cycles",
		}, []string{"status"}),

		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of multi-account refresh cycles in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		cachedDomains: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cached_domains_current",
			Help:      "Current cached domains per account",
		}, []string{"account"}),

		providerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Total DNS provider requests",
		}, []string{"provider", "operation", "status"}),

		metaRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "metadata_requests_total",
			Help:      "Total metadata service requests",
		}, []string{"operation", "status"}),

		storeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "badgerdb_requests_total",
			Help:      "Total badgerdb requests",
		}, []string{"operation", "status"}),
	}

	registry.MustRegister(
		m.refreshRuns,
		m.refreshDuration,
		m.cachedDomains,
		m.providerRequests,
		m.metaRequests,
		m.storeRequests,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
