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

// Recorder implements feed.Recorder and the dashboard's request metrics.
type Recorder struct {
	registry     *prometheus.Registry
	fetchTotal   *prometheus.CounterVec
	fetchLatency *prometheus.HistogramVec
	fetchBytes   prometheus.Histogram
	loadTotal    *prometheus.CounterVec
	loadLatency  *prometheus.HistogramVec
	symbols      prometheus.Gauge
	entryPoints  prometheus.Gauge
	httpTotal    *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

// New creates a recorder backed by its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		fetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volprofile_fetch_total",
				Help: "Result document reads by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		fetchLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "volprofile_fetch_duration_seconds",
				Help:    "Duration of result document reads in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		fetchBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "volprofile_fetch_bytes",
				Help:    "Size of fetched result documents",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
			},
		),
		loadTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volprofile_normalize_total",
				Help: "Normalization runs by detected format and outcome",
			},
			[]string{"format", "outcome"},
		),
		loadLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "volprofile_normalize_duration_seconds",
				Help:    "Duration of detect and normalize in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"format"},
		),
		symbols: factory.NewGauge(prometheus.GaugeOpts{
			Name: "volprofile_snapshot_symbols",
			Help: "Symbols in the current snapshot",
		}),
		entryPoints: factory.NewGauge(prometheus.GaugeOpts{
			Name: "volprofile_snapshot_entry_points",
			Help: "Entry points in the current snapshot",
		}),
		httpTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "volprofile_http_requests_total",
				Help: "Dashboard HTTP requests by route and status",
			},
			[]string{"route", "status"},
		),
		httpLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "volprofile_http_request_duration_seconds",
				Help:    "Dashboard HTTP latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
}

// ObserveFetch records one document read.
func (r *Recorder) ObserveFetch(source, outcome string, elapsed time.Duration, bytes int) {
	r.fetchTotal.WithLabelValues(source, outcome).Inc()
	r.fetchLatency.WithLabelValues(source).Observe(elapsed.Seconds())
	if bytes > 0 {
		r.fetchBytes.Observe(float64(bytes))
	}
}

// ObserveLoad records one detect+normalize pass.
func (r *Recorder) ObserveLoad(format, outcome string, elapsed time.Duration, records int) {
	r.loadTotal.WithLabelValues(format, outcome).Inc()
	r.loadLatency.WithLabelValues(format).Observe(elapsed.Seconds())
}

// SetSnapshot publishes the size of the current snapshot.
func (r *Recorder) SetSnapshot(symbols, entryPoints int) {
	r.symbols.Set(float64(symbols))
	r.entryPoints.Set(float64(entryPoints))
}

// ObserveRequest records one HTTP request.
func (r *Recorder) ObserveRequest(route string, status int, elapsed time.Duration) {
	r.httpTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	r.httpLatency.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry for tests and custom collectors.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
