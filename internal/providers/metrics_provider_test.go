package providers

import (
	"testing"
	"time"
	"vihub/internal/structures"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useFreshRegistry(t *testing.T) *prometheus.Registry {
	t.Helper()
	reg := prometheus.NewRegistry()
	prevRegisterer, prevGatherer := prometheus.DefaultRegisterer, prometheus.DefaultGatherer
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
	t.Cleanup(func() {
		prometheus.DefaultRegisterer = prevRegisterer
		prometheus.DefaultGatherer = prevGatherer
	})
	return reg
}

func TestNoopMetrics_WhenDisabled(t *testing.T) {
	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: false},
	}
	m := NewMetricsProvider(conf)
	_, ok := m.(*noopMetrics)
	assert.True(t, ok, "should return noopMetrics when disabled")

	// Ensure no-op methods don't panic
	m.IncRequestsTotal("/test", 200)
	m.ObserveRequestDuration("/test", time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.ObservePersistenceDuration(time.Millisecond)
	m.SetPatientsTotal(10)
	m.IncDirectoryRequests("detail", "ok")
	m.ObserveDirectoryDuration("detail", time.Millisecond)
	m.IncSyncResults(true)
}

func TestMetricsProvider_WhenEnabled(t *testing.T) {
	useFreshRegistry(t)

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf)
	_, ok := m.(*MetricsProvider)
	assert.True(t, ok, "should return MetricsProvider when enabled")
}

func TestMetricsProvider_IncrementCounters(t *testing.T) {
	useFreshRegistry(t)

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf)

	m.IncRequestsTotal("/patients", 200)
	m.IncRequestsTotal("/patients", 404)
	m.ObserveRequestDuration("/patients", 5*time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.ObservePersistenceDuration(100 * time.Millisecond)
	m.SetPatientsTotal(42)
	m.IncDirectoryRequests("facial", "error")
	m.ObserveDirectoryDuration("facial", 10*time.Millisecond)
	m.IncSyncResults(true)
	m.IncSyncResults(false)
	m.IncSyncResults(false)

	mp := m.(*MetricsProvider)
	assert.Equal(t, 42.0, testutil.ToFloat64(mp.patientsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(mp.syncResults.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(mp.syncResults.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mp.directoryRequests.WithLabelValues("facial", "error")))
}

func TestMetricsProvider_RegistersCollectors(t *testing.T) {
	reg := useFreshRegistry(t)

	m := NewMetricsProvider(&structures.Config{Metrics: structures.MetricsConfig{Enabled: true}})
	m.SetPatientsTotal(3)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "vihub_patients_total")
}

func TestHttpStatusBucket(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{201, "2xx"},
		{301, "3xx"},
		{400, "4xx"},
		{404, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, httpStatusBucket(tt.code))
	}
}
