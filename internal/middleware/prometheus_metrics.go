package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/dailybrief/internal/logger"
	"github.com/zfogg/dailybrief/internal/metrics"
	"go.uber.org/zap"
)

// MetricsMiddleware collects HTTP metrics for Prometheus
func MetricsMiddleware() gin.HandlerFunc {
	m := metrics.Get()

	return func(c *gin.Context) {
		method := c.Request.Method
		path := routeLabel(c)
		m.HTTPActiveConnections.WithLabelValues(method, path).Inc()
		defer m.HTTPActiveConnections.WithLabelValues(method, path).Dec()

		startTime := time.Now()

		c.Next()

		duration := time.Since(startTime).Seconds()
		status := c.Writer.Status()
		// Numeric status so queries like status=~"5.." match
		statusStr := strconv.Itoa(status)

		m.HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path, statusStr).Observe(duration)

		responseSize := c.Writer.Size()
		if responseSize > 0 {
			m.HTTPResponseSize.WithLabelValues(method, path, statusStr).Observe(float64(responseSize))
		}

		if status >= 500 {
			RecordError("http_"+statusStr, path)
		}

		logger.Log.Debug("HTTP request recorded",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Float64("duration_sec", duration),
			zap.Int("response_size", responseSize),
		)
	}
}

// routeLabel uses the matched route template so ids do not explode label cardinality
func routeLabel(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}

// RecordRateLimitExceeded records rate limiting events
func RecordRateLimitExceeded(endpoint, method string) {
	m := metrics.Get()
	m.RateLimitExceededTotal.WithLabelValues(endpoint, method).Inc()
}

// RecordError records errors
func RecordError(errorType, endpoint string) {
	m := metrics.Get()
	m.ErrorsTotal.WithLabelValues(errorType, endpoint).Inc()
}
