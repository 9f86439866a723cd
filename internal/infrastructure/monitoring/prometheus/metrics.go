package prometheus

import (
	"time"
)

// AppMetrics holds all application metrics.
type AppMetrics struct {
	// Evaluation Layer
	EvaluationsTotal      CounterVec
	EvaluationDuration    HistogramVec
	EvaluationPointsTotal CounterVec
	UnsupportedShellTotal CounterVec
	KernelDispatchTotal   CounterVec

	// Infrastructure Layer
	DBConnectionPoolSize   GaugeVec
	DBConnectionPoolActive GaugeVec
	DBQueryDuration        HistogramVec
	CacheHitsTotal         CounterVec
	CacheMissesTotal       CounterVec
	MessageQueueDepth      GaugeVec
	MessageProcessDuration HistogramVec

	// System Health
	ServiceUptime     GaugeVec
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

// Default Buckets
var (
	DefaultEvaluationDurationBuckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}
	DefaultDBDurationBuckets         = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// NewAppMetrics registers all metrics and returns AppMetrics struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// Evaluation
	m.EvaluationsTotal = collector.RegisterCounter("evaluations_total", "Grid evaluations total", "kind", "status")
	m.EvaluationDuration = collector.RegisterHistogram("evaluation_duration_seconds", "Grid evaluation wall-clock duration", DefaultEvaluationDurationBuckets, "kind")
	m.EvaluationPointsTotal = collector.RegisterCounter("evaluation_points_total", "Grid points evaluated", "kind")
	m.UnsupportedShellTotal = collector.RegisterCounter("unsupported_shell_total", "Shells skipped during normalization for lacking a kernel", "angular_type")
	m.KernelDispatchTotal = collector.RegisterCounter("kernel_dispatch_total", "Per-shell kernel dispatches", "angular_type")

	// Infrastructure
	m.DBConnectionPoolSize = collector.RegisterGauge("db_pool_size", "Database connection pool size", "db")
	m.DBConnectionPoolActive = collector.RegisterGauge("db_pool_active", "Database active connections", "db")
	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "db", "operation")
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.MessageQueueDepth = collector.RegisterGauge("mq_depth", "Message queue depth", "queue")
	m.MessageProcessDuration = collector.RegisterHistogram("mq_process_duration_seconds", "Message processing duration", DefaultDBDurationBuckets, "queue", "message_type")

	// System Health
	m.ServiceUptime = collector.RegisterGauge("service_uptime_seconds", "Service uptime", "service")
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_type", "severity")

	return m
}

// RegisterAppMetrics is an alias for NewAppMetrics.
func RegisterAppMetrics(collector MetricsCollector) *AppMetrics {
	return NewAppMetrics(collector)
}

// Helpers

// RecordEvaluation records one completed grid evaluation.
func RecordEvaluation(metrics *AppMetrics, kind string, success bool, duration time.Duration, points int) {
	status := "success"
	if !success {
		status = "failure"
	}
	metrics.EvaluationsTotal.WithLabelValues(kind, status).Inc()
	metrics.EvaluationDuration.WithLabelValues(kind).Observe(duration.Seconds())
	metrics.EvaluationPointsTotal.WithLabelValues(kind).Add(float64(points))
}

func RecordDBQuery(metrics *AppMetrics, db, operation string, duration time.Duration, err error) {
	metrics.DBQueryDuration.WithLabelValues(db, operation).Observe(duration.Seconds())
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues(db, "query_error", "error").Inc()
	}
}

func RecordCacheAccess(metrics *AppMetrics, cache string, hit bool) {
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func RecordError(metrics *AppMetrics, component, errorType, severity string) {
	metrics.ErrorsTotal.WithLabelValues(component, errorType, severity).Inc()
}
