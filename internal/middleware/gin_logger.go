package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/dailybrief/internal/logger"
	"github.com/zfogg/dailybrief/internal/util"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// quietPaths are probed constantly and only logged at debug level
var quietPaths = map[string]bool{"/health": true, "/metrics": true}

// GinLoggerMiddleware writes one structured access log line per request
func GinLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.Request.URL.Path

		level := zapcore.InfoLevel
		switch {
		case status >= 500:
			level = zapcore.ErrorLevel
		case status >= 400:
			level = zapcore.WarnLevel
		case quietPaths[path]:
			level = zapcore.DebugLevel
		}
		ce := logger.Log.Check(level, "HTTP request")
		if ce == nil {
			return
		}

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", routeLabel(c)),
			zap.String("path", path),
			logger.WithStatus(status),
			zap.Duration("latency", time.Since(start)),
			zap.Int("response_size", c.Writer.Size()),
			logger.WithIP(c.ClientIP()),
		}
		if query := c.Request.URL.RawQuery; query != "" {
			fields = append(fields, zap.String("query", query))
		}
		if requestID := c.GetString(util.ContextRequestID); requestID != "" {
			fields = append(fields, logger.WithRequestID(requestID))
		}
		if userID := c.GetString(util.ContextUserID); userID != "" {
			fields = append(fields, logger.WithUserID(userID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", strings.TrimSpace(c.Errors.String())))
		}
		ce.Write(fields...)
	}
}
