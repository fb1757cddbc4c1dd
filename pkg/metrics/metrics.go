package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор Prometheus метрик сервиса
// Создаётся один раз при старте и передаётся во все слои, которым нужны метрики
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// База данных
	DBQueriesTotal  *prometheus.CounterVec
	DBQueryDuration *prometheus.HistogramVec
	DBOpenConns     *prometheus.GaugeVec
	DBIdleConns     *prometheus.GaugeVec

	// Broadcast pipeline
	EventsEmittedTotal     *prometheus.CounterVec
	EventsDeliveredTotal   *prometheus.CounterVec
	EventsFailedTotal      *prometheus.CounterVec
	DeliveriesCreatedTotal *prometheus.CounterVec
	JobsProcessedTotal     *prometheus.CounterVec
}

// New регистрирует метрики в дефолтном registry
func New(serviceName string) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),

		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),

		DBQueriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_queries_total",
			Help:        "Total number of database queries",
			ConstLabels: constLabels,
		}, []string{"operation", "success"}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"operation"}),

		DBOpenConns: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of open database connections",
			ConstLabels: constLabels,
		}, []string{"state"}),

		DBIdleConns: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle database connections",
			ConstLabels: constLabels,
		}, []string{"state"}),

		EventsEmittedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "broadcast_events_emitted_total",
			Help:        "Total number of emitted broadcast events",
			ConstLabels: constLabels,
		}, []string{"target_type"}),

		EventsDeliveredTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "broadcast_events_delivered_total",
			Help:        "Total number of broadcast events fully delivered",
			ConstLabels: constLabels,
		}, []string{"target_type"}),

		EventsFailedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "broadcast_events_failed_total",
			Help:        "Total number of broadcast events that failed delivery",
			ConstLabels: constLabels,
		}, []string{"target_type"}),

		DeliveriesCreatedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "broadcast_deliveries_created_total",
			Help:        "Total number of per-recipient notifications created",
			ConstLabels: constLabels,
		}, []string{"channel"}),

		JobsProcessedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "broadcast_jobs_processed_total",
			Help:        "Total number of deferred broadcast jobs processed",
			ConstLabels: constLabels,
		}, []string{"outcome"}),
	}
}

// ObserveHTTPRequest записывает метрики одного HTTP запроса
func (m *Metrics) ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveDBQuery записывает метрики одного запроса к БД
func (m *Metrics) ObserveDBQuery(operation string, duration time.Duration, err error) {
	success := "true"
	if err != nil {
		success = "false"
	}
	m.DBQueriesTotal.WithLabelValues(operation, success).Inc()
	m.DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
