package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/dailybrief/internal/cache"
	"github.com/zfogg/dailybrief/internal/errors"
	"github.com/zfogg/dailybrief/internal/logger"
	"github.com/zfogg/dailybrief/internal/util"
	"go.uber.org/zap"
)

// RedisRateLimitMiddleware creates a distributed fixed-window rate limiter using Redis.
// Without a Redis client it falls back to the in-memory token bucket.
func RedisRateLimitMiddleware(rc *cache.RedisClient, config RateLimitConfig) gin.HandlerFunc {
	config = config.withDefaults()
	if rc == nil {
		logger.Log.Warn("Redis rate limiter unavailable, using in-memory limiter",
			zap.String("limiter", config.Name),
		)
		return NewRateLimiter(config)
	}

	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit:%s:%s", config.Name, config.KeyFunc(c))
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		count, err := rc.IncrWindow(ctx, key, config.Window)
		if err != nil {
			// Fail closed so a broken limiter cannot be used to flood the model
			logger.Log.Error("Rate limit check failed, rejecting request",
				zap.String("key", key),
				zap.Error(err),
			)
			util.RespondWithAPIError(c, errors.ServiceUnavailable("rate limiter"))
			return
		}

		remaining := config.Limit - int(count)
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", fmt.Sprint(config.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprint(remaining))

		if count > int64(config.Limit) {
			retryAfter := int(config.Window.Seconds())
			if ttl, err := rc.TTL(ctx, key); err == nil && ttl > 0 {
				retryAfter = int(ttl.Seconds()) + 1
			}
			logger.Log.Warn("Rate limit exceeded",
				zap.String("key", key),
				zap.Int("max_requests", config.Limit),
				zap.Int64("current_requests", count),
			)
			rejectRateLimited(c, config, retryAfter)
			return
		}

		c.Next()
	}
}
