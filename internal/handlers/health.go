package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/dailybrief/internal/cache"
)

// Health reports liveness plus the state of the store and Redis.
// GET /health
func (h *Handlers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{}

	if h.store.Ping != nil {
		if err := h.store.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			checks["store"] = "unavailable"
		} else {
			checks["store"] = "ok"
		}
	}

	// Redis is optional; losing it degrades rate limiting and markers but not serving
	if rc := cache.GetRedisClient(); rc != nil {
		if err := rc.Ping(ctx); err != nil {
			checks["redis"] = "unavailable"
		} else {
			checks["redis"] = "ok"
		}
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{
		"status":         state,
		"checks":         checks,
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	})
}
