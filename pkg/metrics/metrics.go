package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus-коллекторов сервиса
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration   *prometheus.HistogramVec
	DBConnectionsOpen *prometheus.GaugeVec
	DBConnectionsIdle *prometheus.GaugeVec
	DBConnectionsWait *prometheus.CounterVec

	SweeperProcessedTotal *prometheus.CounterVec
	SweeperErrorsTotal    *prometheus.CounterVec
}

// New регистрирует и возвращает коллекторы сервиса
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

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),

		DBConnectionsOpen: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_connections_open",
			Help:        "Number of open database connections",
			ConstLabels: constLabels,
		}, []string{"db"}),

		DBConnectionsIdle: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_connections_idle",
			Help:        "Number of idle database connections",
			ConstLabels: constLabels,
		}, []string{"db"}),

		DBConnectionsWait: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_connections_wait_total",
			Help:        "Total number of connections waited for",
			ConstLabels: constLabels,
		}, []string{"db"}),

		SweeperProcessedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "sweeper_reservations_processed_total",
			Help:        "Total number of reservations completed by the expiry sweeper",
			ConstLabels: constLabels,
		}, []string{"result"}),

		SweeperErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "sweeper_errors_total",
			Help:        "Total number of per-reservation sweeper failures",
			ConstLabels: constLabels,
		}, []string{"stage"}),
	}
}

// IncSweeperProcessed инкрементирует счетчик обработанных бронирований
func (m *Metrics) IncSweeperProcessed(result string) {
	m.SweeperProcessedTotal.WithLabelValues(result).Inc()
}

// IncSweeperErrors инкрементирует счетчик ошибок обработчика
func (m *Metrics) IncSweeperErrors(stage string) {
	m.SweeperErrorsTotal.WithLabelValues(stage).Inc()
}
