package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics коллектор метрик сервиса.
// Все методы безопасны для nil-получателя: при выключенных метриках передается nil.
type Metrics struct {
	registry *prometheus.Registry

	bookingsCreated  *prometheus.CounterVec
	bookingsRejected *prometheus.CounterVec
	cancellations    *prometheus.CounterVec
	slotComputations prometheus.Counter

	dbQueryDuration    *prometheus.HistogramVec
	dbOpenConnections  prometheus.Gauge
	dbInUseConnections prometheus.Gauge
}

// New создает коллектор с собственным реестром
func New(serviceName string) *Metrics {
	labels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		bookingsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bookings_created_total",
			Help:        "Number of committed bookings by creation path.",
			ConstLabels: labels,
		}, []string{"path"}),
		bookingsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bookings_rejected_total",
			Help:        "Number of rejected public booking attempts by rejection code.",
			ConstLabels: labels,
		}, []string{"reason"}),
		cancellations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_cancellations_total",
			Help:        "Number of cancellation attempts by result.",
			ConstLabels: labels,
		}, []string{"result"}),
		slotComputations: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "slot_computations_total",
			Help:        "Number of availability computations.",
			ConstLabels: labels,
		}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Duration of database calls.",
			ConstLabels: labels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"operation"}),
		dbOpenConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established database connections.",
			ConstLabels: labels,
		}),
		dbInUseConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of database connections currently in use.",
			ConstLabels: labels,
		}),
	}

	m.registry.MustRegister(
		m.bookingsCreated,
		m.bookingsRejected,
		m.cancellations,
		m.slotComputations,
		m.dbQueryDuration,
		m.dbOpenConnections,
		m.dbInUseConnections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry возвращает реестр метрик
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler возвращает HTTP-обработчик для экспорта метрик
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) IncBookingCreated(path string) {
	if m == nil {
		return
	}
	m.bookingsCreated.WithLabelValues(path).Inc()
}

func (m *Metrics) IncBookingRejected(reason string) {
	if m == nil {
		return
	}
	m.bookingsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncCancellation(result string) {
	if m == nil {
		return
	}
	m.cancellations.WithLabelValues(result).Inc()
}

func (m *Metrics) IncSlotComputation() {
	if m == nil {
		return
	}
	m.slotComputations.Inc()
}

// ObserveDBQuery фиксирует длительность обращения к БД
func (m *Metrics) ObserveDBQuery(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// SetDBPoolStats обновляет показатели пула соединений
func (m *Metrics) SetDBPoolStats(open, inUse int) {
	if m == nil {
		return
	}
	m.dbOpenConnections.Set(float64(open))
	m.dbInUseConnections.Set(float64(inUse))
}
