package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/zfogg/dailybrief/internal/cache"
)

func rateLimitedRouter(limiter gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(limiter)
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func get(router *gin.Engine, clientID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/test", nil)
	if clientID != "" {
		req.Header.Set("X-Client-ID", clientID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter(t *testing.T) {
	config := RateLimitConfig{
		Limit:  3,
		Window: time.Second,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	}
	router := rateLimitedRouter(NewRateLimiter(config))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, get(router, "").Code, "Request %d should succeed", i+1)
	}

	w := get(router, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code, "4th request should be rate limited")
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	time.Sleep(time.Second + 100*time.Millisecond)

	assert.Equal(t, http.StatusOK, get(router, "").Code, "Request after window should succeed")
}

func TestRateLimiterDifferentClients(t *testing.T) {
	config := RateLimitConfig{
		Limit:  2,
		Window: time.Second,
		KeyFunc: func(c *gin.Context) string {
			return c.GetHeader("X-Client-ID")
		},
	}
	router := rateLimitedRouter(NewRateLimiter(config))

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, get(router, "client-a").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, get(router, "client-a").Code, "Client A should be rate limited")
	assert.Equal(t, http.StatusOK, get(router, "client-b").Code, "Client B should not be rate limited")
}

func TestDefaultConfigs(t *testing.T) {
	defaultConfig := DefaultRateLimitConfig()
	assert.Equal(t, 100, defaultConfig.Limit)
	assert.Equal(t, time.Minute, defaultConfig.Window)
	assert.NotNil(t, defaultConfig.KeyFunc)

	generation := GenerationRateLimitConfig(0)
	assert.Equal(t, 10, generation.Limit)
	assert.Equal(t, "generation", generation.Name)
	assert.Equal(t, 4, GenerationRateLimitConfig(4).Limit)
}

func TestRedisRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := cache.Wrap(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer rc.Close()

	config := RateLimitConfig{
		Name:   "test",
		Limit:  2,
		Window: time.Minute,
		KeyFunc: func(c *gin.Context) string {
			return c.GetHeader("X-Client-ID")
		},
	}
	router := rateLimitedRouter(RedisRateLimitMiddleware(rc, config))

	assert.Equal(t, http.StatusOK, get(router, "a").Code)
	w := get(router, "a")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusTooManyRequests, get(router, "a").Code)
	assert.Equal(t, http.StatusOK, get(router, "b").Code)

	assert.Greater(t, mr.TTL("rate_limit:test:a"), time.Duration(0))

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, get(router, "a").Code)
}

func TestRedisRateLimiterFailsClosed(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := cache.Wrap(redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}))
	defer rc.Close()
	router := rateLimitedRouter(RedisRateLimitMiddleware(rc, RateLimitConfig{Limit: 5, Window: time.Minute}))

	mr.Close()
	assert.Equal(t, http.StatusServiceUnavailable, get(router, "").Code)
}

func TestRedisRateLimiterWithoutRedisUsesMemory(t *testing.T) {
	router := rateLimitedRouter(RedisRateLimitMiddleware(nil, RateLimitConfig{Limit: 1, Window: time.Minute}))
	assert.Equal(t, http.StatusOK, get(router, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(router, "").Code)
}
