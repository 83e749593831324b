package observability

import (
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "echoboard_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "echoboard_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// FeedbackCreated counts submitted feedback items.
	FeedbackCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "echoboard_feedback_created_total",
		Help: "Total number of feedback items created",
	})

	// StatusCascades counts automatic cross-entity status changes by kind.
	// Kinds: task_created (feedback open -> in-development),
	// task_completed (feedback -> completed), answer_marked (feedback -> closed).
	StatusCascades = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "echoboard_status_cascades_total",
		Help: "Total number of automatic status cascades by trigger",
	}, []string{"trigger"})

	// UpvoteToggles counts upvote toggles by resulting direction.
	UpvoteToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "echoboard_upvote_toggles_total",
		Help: "Total number of upvote toggles by direction",
	}, []string{"direction"})
)

// InitMetrics creates the fiberprometheus middleware for HTTP metrics.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

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
