// Package observability defines the Prometheus metrics exported by the application.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stackit_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stackit_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// CacheRequests counts cache lookups by key class and outcome (hit or miss).
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stackit_cache_requests_total",
		Help: "Total cache lookups by key class and outcome",
	}, []string{"key", "outcome"})

	// VotesCast counts vote toggles by target type and resulting state.
	VotesCast = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stackit_votes_cast_total",
		Help: "Total vote toggles by target type and resulting state",
	}, []string{"target", "result"})

	// NotificationsCreated counts notifications created by type.
	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stackit_notifications_created_total",
		Help: "Total notifications created by type",
	}, []string{"type"})

	// NotificationStreamConnections is the gauge of active notification stream connections.
	NotificationStreamConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stackit_notification_stream_connections",
		Help: "Number of active WebSocket notification stream connections",
	})

	// NotificationStreamDrops counts stream messages dropped due to backpressure.
	NotificationStreamDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stackit_notification_stream_drops_total",
		Help: "Total stream messages dropped due to slow clients",
	}, []string{"reason"})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}

// RecordCacheHit records a cache hit for the key class.
func RecordCacheHit(key string) {
	CacheRequests.WithLabelValues(key, "hit").Inc()
}

// RecordCacheMiss records a cache miss for the key class.
func RecordCacheMiss(key string) {
	CacheRequests.WithLabelValues(key, "miss").Inc()
}
