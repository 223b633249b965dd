package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	dErrors "landscape/pkg/domain-errors"
)

// Metrics holds the Prometheus metrics for one generator run. Each run owns
// its registry so the result can be dumped for the textfile collector.
type Metrics struct {
	registry *prometheus.Registry

	RegistryRequests        *prometheus.CounterVec
	RegistryRequestDuration prometheus.Histogram
	RegistryRetries         prometheus.Counter
	LogoDownloads           *prometheus.CounterVec
	ProjectsFetched         prometheus.Gauge
	EntriesEmitted          prometheus.Gauge
	UnmappedProjects        prometheus.Gauge
	StaleMappings           prometheus.Gauge
	RunDuration             prometheus.Gauge
	LastSuccess             prometheus.Gauge
}

// New creates a registry and registers all generator metrics on it.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		RegistryRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "landscape_registry_requests_total",
			Help: "Registry page requests by outcome (HTTP status, or error category when no response)",
		}, []string{"outcome"}),
		RegistryRequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "landscape_registry_request_duration_seconds",
			Help:    "Duration of single registry page requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		RegistryRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "landscape_registry_retries_total",
			Help: "Registry requests retried after a transient failure",
		}),
		LogoDownloads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "landscape_logo_downloads_total",
			Help: "Logo downloads by result (ok, failed)",
		}, []string{"result"}),
		ProjectsFetched: factory.NewGauge(prometheus.GaugeOpts{
			Name: "landscape_projects_fetched",
			Help: "Projects returned by the registry in the last run",
		}),
		EntriesEmitted: factory.NewGauge(prometheus.GaugeOpts{
			Name: "landscape_entries_emitted",
			Help: "Items written to the landscape document in the last run",
		}),
		UnmappedProjects: factory.NewGauge(prometheus.GaugeOpts{
			Name: "landscape_unmapped_projects",
			Help: "Registry projects without a category mapping",
		}),
		StaleMappings: factory.NewGauge(prometheus.GaugeOpts{
			Name: "landscape_stale_mappings",
			Help: "Category map entries the registry did not return",
		}),
		RunDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "landscape_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
		LastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "landscape_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run",
		}),
	}
}

// Registry exposes the underlying registry, for tests and custom exporters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRegistryRequest records one registry request.
// Call with time.Now() at the start of the request.
func (m *Metrics) ObserveRegistryRequest(outcome string, start time.Time) {
	m.RegistryRequests.WithLabelValues(outcome).Inc()
	m.RegistryRequestDuration.Observe(time.Since(start).Seconds())
}

// IncrementRegistryRetries records a retried registry request.
func (m *Metrics) IncrementRegistryRetries() {
	m.RegistryRetries.Inc()
}

// IncrementLogoDownload records a logo download attempt.
func (m *Metrics) IncrementLogoDownload(ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.LogoDownloads.WithLabelValues(result).Inc()
}

func (m *Metrics) SetRunTotals(fetched, emitted, unmapped, stale int) {
	m.ProjectsFetched.Set(float64(fetched))
	m.EntriesEmitted.Set(float64(emitted))
	m.UnmappedProjects.Set(float64(unmapped))
	m.StaleMappings.Set(float64(stale))
}

// ObserveRun records the run duration, and the completion time when it
// succeeded.
func (m *Metrics) ObserveRun(start time.Time, succeeded bool) {
	m.RunDuration.Set(time.Since(start).Seconds())
	if succeeded {
		m.LastSuccess.SetToCurrentTime()
	}
}

// WriteTextfile dumps every metric in the text exposition format, replacing
// path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return dErrors.Wrap(err, dErrors.CodeWrite, "write metrics to "+path)
	}
	return nil
}
