package middlewares

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "performile_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "performile_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	scoreLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "performile_score_lookups_total",
			Help: "Trust score cache lookups",
		},
		[]string{"outcome"}, // hit | recompute | error
	)

	checkoutRanks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "performile_checkout_ranks_total",
			Help: "Checkout ranking calls",
		},
		[]string{"status"},
	)
)

// PrometheusMiddleware collects per-route request metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
	}
}

func RecordScoreLookup(outcome string) {
	scoreLookups.WithLabelValues(outcome).Inc()
}

func RecordCheckoutRank(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	checkoutRanks.WithLabelValues(status).Inc()
}
