package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	salesRecordedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sales_recorded_total",
			Help: "Total number of sales recorded",
		},
		[]string{"channel"},
	)

	orderStatusUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_status_updates_total",
			Help: "Total number of order status updates",
		},
		[]string{"status"},
	)

	storefrontEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_events_total",
			Help: "Total number of storefront tracking events recorded",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(salesRecordedTotal)
	prometheus.MustRegister(orderStatusUpdatesTotal)
	prometheus.MustRegister(storefrontEventsTotal)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func RecordSale(channel string) {
	salesRecordedTotal.WithLabelValues(channel).Inc()
}

func RecordOrderStatusUpdate(status string) {
	orderStatusUpdatesTotal.WithLabelValues(status).Inc()
}

func RecordStorefrontEvent(eventType string) {
	storefrontEventsTotal.WithLabelValues(eventType).Inc()
}
