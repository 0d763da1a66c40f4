// Package prom implements the observability hooks with Prometheus metrics.
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/sankey/pkg/observability"
)

const namespace = "sankey"

// Metrics records pipeline, cache and HTTP events. It implements all three
// hook interfaces.
type Metrics struct {
	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	tableRows     prometheus.Histogram
	cacheOps      *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	httpErrors    *prometheus.CounterVec
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"stage"}),
		stageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Pipeline stages that returned an error.",
		}, []string{"stage"}),
		tableRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "table_rows",
			Help:      "Rows per loaded table.",
			Buckets:   prometheus.ExponentialBuckets(1, 10, 7),
		}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes by entry kind and result.",
		}, []string{"kind", "result"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by entry kind.",
		}, []string{"kind"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Served HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of served HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "HTTP requests that failed with an error.",
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		m.stageDuration, m.stageErrors, m.tableRows,
		m.cacheOps, m.cacheBytes,
		m.httpRequests, m.httpDuration, m.httpErrors,
	)
	return m
}

// Register installs m as the global pipeline, cache and HTTP hooks.
func (m *Metrics) Register() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

func (m *Metrics) stage(name string, d time.Duration, err error) {
	m.stageDuration.WithLabelValues(name).Observe(d.Seconds())
	if err != nil {
		m.stageErrors.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) OnLoadStart(context.Context, string) {}

func (m *Metrics) OnLoadComplete(_ context.Context, _ string, rows int, d time.Duration, err error) {
	m.stage("load", d, err)
	if err == nil {
		m.tableRows.Observe(float64(rows))
	}
}

func (m *Metrics) OnLayoutStart(context.Context, int, int) {}

func (m *Metrics) OnLayoutComplete(_ context.Context, d time.Duration, err error) {
	m.stage("layout", d, err)
}

func (m *Metrics) OnRenderStart(context.Context, string, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, _ string, _ []string, d time.Duration, err error) {
	m.stage("render", d, err)
}

func (m *Metrics) OnCacheHit(_ context.Context, kind string) {
	m.cacheOps.WithLabelValues(kind, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, kind string) {
	m.cacheOps.WithLabelValues(kind, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, kind string, size int) {
	m.cacheOps.WithLabelValues(kind, "set").Inc()
	m.cacheBytes.WithLabelValues(kind).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, method, route string, _ error) {
	m.httpErrors.WithLabelValues(method, route).Inc()
}
