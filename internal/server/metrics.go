package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/motorrutas/pkg/observability"
)

// Metrics implements the observability hooks with Prometheus collectors on
// a private registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	moves        *prometheus.CounterVec
	itemsMoved   *prometheus.CounterVec
	edgesChanged *prometheus.CounterVec
	reconciles   prometheus.Histogram
	sceneNodes   prometheus.Gauge

	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	fallbacks     prometheus.Counter

	cacheOps *prometheus.CounterVec
}

// NewMetrics creates the collectors under namespace.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_total",
			Help:      "Moves between the available and selected lists",
		}, []string{"direction"}),
		itemsMoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_moved_total",
			Help:      "Items moved between the available and selected lists",
		}, []string{"direction"}),
		edgesChanged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "edges_changed_total",
			Help:      "Edges created or deleted, by reason",
		}, []string{"reason", "change"}),
		reconciles: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconcile_duration_seconds",
			Help:      "Scene reconciliation duration in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05},
		}),
		sceneNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_scene_nodes",
			Help:      "Node count after the most recent reconciliation",
		}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_fetches_total",
			Help:      "Route source attempts by candidate and outcome",
		}, []string{"url", "outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_fetch_duration_seconds",
			Help:      "Route source attempt duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"url"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_fallbacks_total",
			Help:      "Loads that fell back to the placeholder list",
		}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache operations by key type and result",
		}, []string{"key_type", "op"}),
	}

	m.registry.MustRegister(
		m.httpRequests, m.httpDuration,
		m.moves, m.itemsMoved, m.edgesChanged, m.reconciles, m.sceneNodes,
		m.fetches, m.fetchDuration, m.fallbacks,
		m.cacheOps,
	)
	return m
}

// Install registers m as the global editor, source, cache and HTTP hooks.
func (m *Metrics) Install() {
	observability.SetEditorHooks(m)
	observability.SetSourceHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) OnMove(direction string, count int) {
	m.moves.WithLabelValues(direction).Inc()
	m.itemsMoved.WithLabelValues(direction).Add(float64(count))
}

func (m *Metrics) OnEdgesChanged(reason string, created, deleted int) {
	m.edgesChanged.WithLabelValues(reason, "created").Add(float64(created))
	m.edgesChanged.WithLabelValues(reason, "deleted").Add(float64(deleted))
}

func (m *Metrics) OnReconcile(nodes, _ int, d time.Duration) {
	m.reconciles.Observe(d.Seconds())
	m.sceneNodes.Set(float64(nodes))
}

func (m *Metrics) OnFetch(_ context.Context, url string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.fetches.WithLabelValues(url, outcome).Inc()
	m.fetchDuration.WithLabelValues(url).Observe(d.Seconds())
}

func (m *Metrics) OnFallback(context.Context) { m.fallbacks.Inc() }

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, _ int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.EditorHooks = (*Metrics)(nil)
	_ observability.SourceHooks = (*Metrics)(nil)
	_ observability.CacheHooks  = (*Metrics)(nil)
	_ observability.HTTPHooks   = (*Metrics)(nil)
)
