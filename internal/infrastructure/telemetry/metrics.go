package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups every collector exported by the API and the worker. Each
// process builds its own registry.
type Metrics struct {
	registry *prometheus.Registry

	RequestTotal      *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	RateLimitRejected *prometheus.CounterVec
	Submissions       *prometheus.CounterVec
	Reviews           *prometheus.CounterVec
	Checkouts         *prometheus.CounterVec
	TasksEnqueued     *prometheus.CounterVec
	TasksProcessed    *prometheus.CounterVec
	WSConnections     prometheus.Gauge
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		RequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillbridge_api_requests_total",
			Help: "Total HTTP requests handled by the API.",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "skillbridge_api_request_duration_seconds",
			Help:    "API request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		RateLimitRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillbridge_api_rate_limit_rejections_total",
			Help: "Total API requests rejected by rate limiting.",
		}, []string{"route"}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillbridge_submissions_total",
			Help: "Submission attempts by outcome.",
		}, []string{"outcome"}),
		Reviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillbridge_reviews_total",
			Help: "Admin submission reviews by decision.",
		}, []string{"status"}),
		Checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillbridge_membership_checkouts_total",
			Help: "Membership checkouts started by tier.",
		}, []string{"tier"}),
		TasksEnqueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillbridge_queue_tasks_enqueued_total",
			Help: "Background tasks enqueued by type.",
		}, []string{"type"}),
		TasksProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillbridge_worker_tasks_total",
			Help: "Background tasks processed by type and status.",
		}, []string{"type", "status"}),
		WSConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "skillbridge_ws_connections",
			Help: "Open realtime websocket connections.",
		}),
	}

	registry.MustRegister(
		m.RequestTotal,
		m.RequestDuration,
		m.RateLimitRejected,
		m.Submissions,
		m.Reviews,
		m.Checkouts,
		m.TasksEnqueued,
		m.TasksProcessed,
		m.WSConnections,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
