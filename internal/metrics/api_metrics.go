package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// APIMetrics содержит метрики HTTP API и публикации активности.
type APIMetrics struct {
	// Счётчики и тайминги запросов
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	// Счётчики доменных операций
	shipmentsCreated prometheus.Counter
	shipmentsUpdated prometheus.Counter

	// Счётчики публикаций в ленту
	activityPublished prometheus.Counter
	activityFailed    prometheus.Counter
}

// NewAPIMetrics создаёт и регистрирует метрики в default-регистре.
func NewAPIMetrics() *APIMetrics {
	return newAPIMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newAPIMetricsWithRegisterer(registerer prometheus.Registerer) *APIMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &APIMetrics{
		requestsTotal: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "shiptrack_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		requestDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "shiptrack_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"route"}),
		shipmentsCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shiptrack_shipments_created_total",
			Help: "Total number of shipments created",
		}),
		shipmentsUpdated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shiptrack_shipments_updated_total",
			Help: "Total number of shipments updated",
		}),
		activityPublished: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shiptrack_activity_published_total",
			Help: "Total number of activity events published to the feed",
		}),
		activityFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shiptrack_activity_failed_total",
			Help: "Total number of activity publish failures after commit",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordRequest учитывает завершённый HTTP-запрос.
func (m *APIMetrics) RecordRequest(method, route string, status int, duration time.Duration) {
	m.requestsTotal.WithLabelValues(method, route, fmt.Sprintf("%d", status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordShipmentCreated увеличивает счётчик созданных посылок.
func (m *APIMetrics) RecordShipmentCreated() {
	m.shipmentsCreated.Inc()
}

// RecordShipmentUpdated увеличивает счётчик обновлённых посылок.
func (m *APIMetrics) RecordShipmentUpdated() {
	m.shipmentsUpdated.Inc()
}

// RecordActivityPublished увеличивает счётчик успешных публикаций в ленту.
func (m *APIMetrics) RecordActivityPublished() {
	m.activityPublished.Inc()
}

// RecordActivityFailed увеличивает счётчик неудачных публикаций.
func (m *APIMetrics) RecordActivityFailed() {
	m.activityFailed.Inc()
}
