// Package metrics exposes Prometheus counters for HTTP traffic, poem
// generation and the fit backfill.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Metrics owns a registry and every collector the service reports.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
	poemsGenerated      *prometheus.CounterVec
	selectionFallbacks  prometheus.Counter
	usageIncrementFails prometheus.Counter
	backfillRows        *prometheus.CounterVec
	rateLimited         *prometheus.CounterVec

	dbConnsActive prometheus.Gauge
	dbConnsIdle   prometheus.Gauge
	dbConnsMax    prometheus.Gauge
}

// New registers all collectors, plus Go runtime and process collectors, on a
// fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		poemsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "poems_generated_total",
			Help: "Generation attempts by outcome",
		}, []string{"outcome"}),
		selectionFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "poem_selection_fallbacks_total",
			Help: "Generations that found no exact-fit template and fell back to any template",
		}),
		usageIncrementFails: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "poem_usage_increment_failures_total",
			Help: "Usage counter updates that failed after a successful generation",
		}),
		backfillRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "template_backfill_rows_total",
			Help: "Rows processed by the max_friend_required backfill by result",
		}, []string{"result"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rejected by a rate limit, by limit name",
		}, []string{"limit"}),
		dbConnsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "database_connections_active",
			Help: "Number of active database connections",
		}),
		dbConnsIdle: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "database_connections_idle",
			Help: "Number of idle database connections",
		}),
		dbConnsMax: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "database_connections_max",
			Help: "Maximum number of database connections",
		}),
	}

	m.registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.poemsGenerated,
		m.selectionFallbacks,
		m.usageIncrementFails,
		m.backfillRows,
		m.rateLimited,
		m.dbConnsActive,
		m.dbConnsIdle,
		m.dbConnsMax,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest records one finished HTTP request. route is the gin route
// template, never the raw path, to keep label cardinality bounded.
func (m *Metrics) RecordRequest(method, route string, status int, seconds float64) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(seconds)
}

// RateLimited counts a rejected request.
func (m *Metrics) RateLimited(limit string) {
	m.rateLimited.WithLabelValues(limit).Inc()
}

// Generated implements poem.Observer.
func (m *Metrics) Generated(outcome string) {
	m.poemsGenerated.WithLabelValues(outcome).Inc()
}

// FellBack implements poem.Observer.
func (m *Metrics) FellBack() {
	m.selectionFallbacks.Inc()
}

// UsageIncrementFailed implements poem.Observer.
func (m *Metrics) UsageIncrementFailed() {
	m.usageIncrementFails.Inc()
}

// BackfillRows adds a backfill batch summary.
func (m *Metrics) BackfillRows(updated, skipped, failed int) {
	m.backfillRows.WithLabelValues("updated").Add(float64(updated))
	m.backfillRows.WithLabelValues("skipped").Add(float64(skipped))
	m.backfillRows.WithLabelValues("failed").Add(float64(failed))
}

// UpdateDatabaseConnections refreshes the connection pool gauges.
func (m *Metrics) UpdateDatabaseConnections(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	stats := sqlDB.Stats()
	m.dbConnsActive.Set(float64(stats.InUse))
	m.dbConnsIdle.Set(float64(stats.Idle))
	m.dbConnsMax.Set(float64(stats.MaxOpenConnections))
	return nil
}
