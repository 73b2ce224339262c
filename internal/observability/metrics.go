package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messenger_http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "messenger_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	messagesSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messenger_messages_sent_total",
			Help: "Total number of messages accepted by the API.",
		},
	)
	captureFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messenger_capture_failures_total",
			Help: "Total number of failed monitor capture posts.",
		},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messenger_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
	monitorRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "messenger_monitor_records",
			Help: "Number of records currently held by the monitor log.",
		},
	)
	monitorWatchers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "messenger_monitor_watchers",
			Help: "Number of active monitor live-tail connections.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		messagesSentTotal,
		captureFailuresTotal,
		amqpPublishErrorsTotal,
		monitorRecords,
		monitorWatchers,
	)
}

// HTTPMetricsMiddleware records request counts and latencies per route.
func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncMessagesSent() {
	messagesSentTotal.Inc()
}

func IncCaptureFailure() {
	captureFailuresTotal.Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}

func SetMonitorRecords(count int) {
	monitorRecords.Set(float64(count))
}

func IncMonitorWatchers() {
	monitorWatchers.Inc()
}

func DecMonitorWatchers() {
	monitorWatchers.Dec()
}
