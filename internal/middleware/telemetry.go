package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/zfogg/dailybrief/internal/util"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware returns a middleware that traces HTTP requests using OpenTelemetry
func TracingMiddleware(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// SpanEnrichmentMiddleware adds request and outcome attributes to the active span.
// It must run after TracingMiddleware.
func SpanEnrichmentMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if requestID := c.GetString(util.ContextRequestID); requestID != "" {
				span.SetAttributes(attribute.String("request.id", requestID))
			}
			if date := c.Query("date"); date != "" {
				span.SetAttributes(attribute.String("content.date", date))
			}
			if topic := c.Query("topic"); topic != "" {
				span.SetAttributes(attribute.String("content.topic", topic))
			}
		}

		c.Next()

		if !span.IsRecording() {
			return
		}
		if userID := c.GetString("user_id"); userID != "" {
			span.SetAttributes(attribute.String("user.id", userID))
		}
		for _, ginErr := range c.Errors {
			if ginErr.Err != nil {
				span.RecordError(ginErr.Err)
			}
		}
		if status := c.Writer.Status(); status >= 500 {
			span.SetStatus(codes.Error, "server error")
		}
	}
}
