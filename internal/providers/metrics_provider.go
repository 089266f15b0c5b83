package providers

import (
	"time"
	"vihub/internal/structures"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	SetPatientsTotal(count int)
	IncDirectoryRequests(operation, outcome string)
	ObserveDirectoryDuration(operation string, duration time.Duration)
	IncSyncResults(success bool)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	patientsTotal       prometheus.Gauge
	directoryRequests   *prometheus.CounterVec
	directoryDuration   *prometheus.HistogramVec
	syncResults         *prometheus.CounterVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) SetPatientsTotal(count int) {
	m.patientsTotal.Set(float64(count))
}

func (m *MetricsProvider) IncDirectoryRequests(operation, outcome string) {
	m.directoryRequests.WithLabelValues(operation, outcome).Inc()
}

func (m *MetricsProvider) ObserveDirectoryDuration(operation string, duration time.Duration) {
	m.directoryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncSyncResults(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.syncResults.WithLabelValues(outcome).Inc()
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vihub_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vihub_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vihub_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vihub_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "vihub_persistence_duration_seconds",
			Help:    "Duration of patient file writes in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		patientsTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "vihub_patients_total",
			Help: "Number of patients in the local store",
		}),

		directoryRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vihub_directory_requests_total",
			Help: "Total number of benefits directory requests",
		}, []string{"operation", "outcome"}),

		directoryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vihub_directory_request_duration_seconds",
			Help:    "Benefits directory request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),

		syncResults: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vihub_sync_results_total",
			Help: "Patient synchronize outcomes",
		}, []string{"outcome"}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                    {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration)    {}
func (n *noopMetrics) IncCacheHits()                                       {}
func (n *noopMetrics) IncCacheMisses()                                     {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)          {}
func (n *noopMetrics) SetPatientsTotal(_ int)                              {}
func (n *noopMetrics) IncDirectoryRequests(_, _ string)                    {}
func (n *noopMetrics) ObserveDirectoryDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncSyncResults(_ bool)                               {}
