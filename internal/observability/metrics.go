package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline outcomes recorded by ObservePipeline.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Metrics holds the dashboard's Prometheus collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry         *prometheus.Registry
	pipelineRuns     *prometheus.CounterVec
	pipelineDuration prometheus.Histogram
	datasetRows      prometheus.Gauge
	filteredRows     prometheus.Histogram
	uploads          *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		pipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_pipeline_runs_total",
			Help: "Load, filter and aggregate runs by outcome.",
		}, []string{"outcome"}),
		pipelineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_pipeline_duration_seconds",
			Help:    "Duration of a full dashboard run.",
			Buckets: prometheus.DefBuckets,
		}),
		datasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_dataset_rows",
			Help: "Rows in the dataset used by the latest run.",
		}),
		filteredRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_filtered_rows",
			Help:    "Rows left after filtering.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_uploads_total",
			Help: "Dataset uploads by outcome.",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashboard_http_request_duration_seconds",
			Help:    "HTTP request latency by method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.pipelineRuns,
		m.pipelineDuration,
		m.datasetRows,
		m.filteredRows,
		m.uploads,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObservePipeline(outcome string, datasetRows, filteredRows int, d time.Duration) {
	if m == nil {
		return
	}
	m.pipelineRuns.WithLabelValues(outcome).Inc()
	m.pipelineDuration.Observe(d.Seconds())
	if outcome == OutcomeError {
		return
	}
	m.datasetRows.Set(float64(datasetRows))
	m.filteredRows.Observe(float64(filteredRows))
}

func (m *Metrics) ObserveUpload(outcome string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method).Observe(d.Seconds())
}
