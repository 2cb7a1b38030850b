// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Refresh metrics
	RefreshRunsTotal prometheus.Counter
	RefreshErrors    *prometheus.CounterVec
	RefreshDuration  prometheus.Histogram
	HeadsReceived    prometheus.Counter

	// Chain read metrics
	RPCCallLatency   *prometheus.HistogramVec
	PriceResolutions *prometheus.CounterVec

	// API metrics
	PreviewsComputed   prometheus.Counter
	APIRequestDuration *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulRefresh prometheus.Gauge
	LatestBlockSeen       prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "bnote_dashboard"
	}

	return &Metrics{
		// Refresh metrics
		RefreshRunsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "runs_total",
			Help:      "Total number of stats refresh cycles",
		}),
		RefreshErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "errors_total",
			Help:      "Total number of refresh errors by stage",
		}, []string{"stage"}),
		RefreshDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "duration_seconds",
			Help:      "Stats refresh cycle duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		HeadsReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "heads_received_total",
			Help:      "Total number of new-head notifications received",
		}),

		// Chain read metrics
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "evm",
			Name:      "rpc_call_latency_seconds",
			Help:      "EVM RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		PriceResolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poolprice",
			Name:      "resolutions_total",
			Help:      "Total number of pool price resolutions by pool and status",
		}, []string{"pool", "status"}),

		// API metrics
		PreviewsComputed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "previews_computed_total",
			Help:      "Total number of stake previews computed",
		}),
		APIRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "API request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulRefresh: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_refresh_timestamp",
			Help:      "Unix timestamp of last successful refresh",
		}),
		LatestBlockSeen: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "latest_block_seen",
			Help:      "Highest block number seen",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordRefresh records one refresh cycle.
func RecordRefresh(durationSeconds float64) {
	DefaultMetrics.RefreshRunsTotal.Inc()
	DefaultMetrics.RefreshDuration.Observe(durationSeconds)
}

// RecordRefreshError records a refresh error by stage.
func RecordRefreshError(stage string) {
	DefaultMetrics.RefreshErrors.WithLabelValues(stage).Inc()
}

// RecordHeadReceived increments the new-head notification counter.
func RecordHeadReceived() {
	DefaultMetrics.HeadsReceived.Inc()
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordPriceResolution records the outcome of one pool price resolution.
func RecordPriceResolution(pool string, ok bool) {
	status := "ok"
	if !ok {
		status = "unavailable"
	}
	DefaultMetrics.PriceResolutions.WithLabelValues(pool, status).Inc()
}

// RecordPreviewComputed increments the stake preview counter.
func RecordPreviewComputed() {
	DefaultMetrics.PreviewsComputed.Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// MarkRefreshSuccess updates the health gauges after a good cycle.
func MarkRefreshSuccess(unixSeconds int64, block int64) {
	DefaultMetrics.LastSuccessfulRefresh.Set(float64(unixSeconds))
	DefaultMetrics.LatestBlockSeen.Set(float64(block))
}
