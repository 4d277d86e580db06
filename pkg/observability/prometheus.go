package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus implements every hook interface with Prometheus collectors.
type Prometheus struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrorsTotal     *prometheus.CounterVec
	CacheEventsTotal    *prometheus.CounterVec
	CacheBytesWritten   prometheus.Counter
	RefreshTotal        *prometheus.CounterVec
	RefreshDuration     prometheus.Histogram
	CatalogProjects     prometheus.Gauge
}

// NewPrometheus creates the collectors and registers them on a private
// registry.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipoke_http_requests_total",
				Help: "Registry HTTP responses by host and status.",
			},
			[]string{"host", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pipoke_http_request_duration_seconds",
				Help:    "Registry HTTP latency in seconds.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"host"},
		),
		HTTPErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipoke_http_errors_total",
				Help: "Registry HTTP transport failures by host.",
			},
			[]string{"host"},
		),
		CacheEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipoke_cache_events_total",
				Help: "Metadata cache events by backend and result (hit, miss, set).",
			},
			[]string{"backend", "result"},
		),
		CacheBytesWritten: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pipoke_cache_bytes_written_total",
				Help: "Bytes written to the metadata cache.",
			},
		),
		RefreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipoke_catalog_refresh_total",
				Help: "Catalog refreshes by outcome (ok, error).",
			},
			[]string{"outcome"},
		),
		RefreshDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pipoke_catalog_refresh_duration_seconds",
				Help:    "Catalog refresh latency in seconds.",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
			},
		),
		CatalogProjects: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pipoke_catalog_projects",
				Help: "Number of projects in the last refreshed catalog.",
			},
		),
	}

	p.registry.MustRegister(
		p.HTTPRequestsTotal,
		p.HTTPRequestDuration,
		p.HTTPErrorsTotal,
		p.CacheEventsTotal,
		p.CacheBytesWritten,
		p.RefreshTotal,
		p.RefreshDuration,
		p.CatalogProjects,
	)
	return p
}

// Register installs p as the catalog, cache, and HTTP hooks.
func (p *Prometheus) Register() {
	SetCatalogHooks(p)
	SetCacheHooks(p)
	SetHTTPHooks(p)
}

// WriteFile writes all metrics in the text exposition format, suitable for
// the node_exporter textfile collector.
func (p *Prometheus) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, p.registry)
}

func (p *Prometheus) OnRefreshStart(context.Context, string) {}

func (p *Prometheus) OnRefreshComplete(_ context.Context, _ string, projects int, d time.Duration, err error) {
	if err != nil {
		p.RefreshTotal.WithLabelValues("error").Inc()
		return
	}
	p.RefreshTotal.WithLabelValues("ok").Inc()
	p.RefreshDuration.Observe(d.Seconds())
	p.CatalogProjects.Set(float64(projects))
}

func (p *Prometheus) OnCacheHit(_ context.Context, backend string) {
	p.CacheEventsTotal.WithLabelValues(backend, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, backend string) {
	p.CacheEventsTotal.WithLabelValues(backend, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, backend string, size int) {
	p.CacheEventsTotal.WithLabelValues(backend, "set").Inc()
	p.CacheBytesWritten.Add(float64(size))
}

func (p *Prometheus) OnRequest(context.Context, string, string, string) {}

func (p *Prometheus) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	p.HTTPRequestsTotal.WithLabelValues(host, strconv.Itoa(status)).Inc()
	p.HTTPRequestDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (p *Prometheus) OnError(_ context.Context, _, host, _ string, _ error) {
	p.HTTPErrorsTotal.WithLabelValues(host).Inc()
}

var (
	_ CatalogHooks = (*Prometheus)(nil)
	_ CacheHooks   = (*Prometheus)(nil)
	_ HTTPHooks    = (*Prometheus)(nil)
)
