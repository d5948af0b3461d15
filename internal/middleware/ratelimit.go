package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/dailybrief/internal/errors"
	"github.com/zfogg/dailybrief/internal/util"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Name scopes the counters so separate limiters do not share buckets
	Name string
	// Requests per window
	Limit int
	// Window duration
	Window time.Duration
	// KeyFunc picks the bucket for a request. Defaults to the user id, then the client IP.
	KeyFunc func(c *gin.Context) string
}

// DefaultRateLimitConfig returns sensible defaults
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Name:    "default",
		Limit:   100,         // 100 requests
		Window:  time.Minute, // per minute
		KeyFunc: userOrIPKey,
	}
}

// GenerationRateLimitConfig returns limits for endpoints that call the text model
func GenerationRateLimitConfig(perMinute int) RateLimitConfig {
	if perMinute <= 0 {
		perMinute = 10
	}
	return RateLimitConfig{
		Name:    "generation",
		Limit:   perMinute,
		Window:  time.Minute,
		KeyFunc: userOrIPKey,
	}
}

func userOrIPKey(c *gin.Context) string {
	if userID := c.GetString(util.ContextUserID); userID != "" {
		return "user:" + userID
	}
	return "ip:" + c.ClientIP()
}

func (cfg RateLimitConfig) withDefaults() RateLimitConfig {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = userOrIPKey
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultRateLimitConfig().Limit
	}
	if cfg.Name == "" {
		cfg.Name = "default"
	}
	return cfg
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is an in-process limiter holding one token bucket per key.
// Each bucket holds Limit tokens and refills at Limit per Window.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	config   RateLimitConfig
	every    rate.Limit
}

// NewMemoryRateLimiter creates an in-process limiter and starts its idle-bucket sweeper
func NewMemoryRateLimiter(config RateLimitConfig) *RateLimiter {
	config = config.withDefaults()
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		config:   config,
		every:    rate.Limit(float64(config.Limit) / config.Window.Seconds()),
	}
	go rl.sweep(time.NewTicker(config.Window))
	return rl
}

// NewRateLimiter creates a new rate limiting middleware
func NewRateLimiter(config RateLimitConfig) gin.HandlerFunc {
	return NewMemoryRateLimiter(config).Handler()
}

// Handler returns the gin middleware for this limiter
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rl.config.KeyFunc(c)
		if wait, ok := rl.reserve(key); !ok {
			rejectRateLimited(c, rl.config, int(wait.Seconds())+1)
			return
		}
		c.Next()
	}
}

// Allow consumes a token for key if one is available.
func (rl *RateLimiter) Allow(key string) bool {
	_, ok := rl.reserve(key)
	return ok
}

// reserve takes a token for key. When none is available it returns how long
// until one would be, without holding the reservation.
func (rl *RateLimiter) reserve(key string) (time.Duration, bool) {
	now := time.Now()
	r := rl.limiterFor(key, now).ReserveN(now, 1)
	if !r.OK() {
		return rl.config.Window, false
	}
	if wait := r.DelayFrom(now); wait > 0 {
		r.CancelAt(now)
		return wait, false
	}
	return 0, true
}

func (rl *RateLimiter) limiterFor(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.every, rl.config.Limit)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// sweep forgets keys idle for a full window; their buckets are full again.
func (rl *RateLimiter) sweep(ticker *time.Ticker) {
	for now := range ticker.C {
		rl.mu.Lock()
		for key, v := range rl.visitors {
			if now.Sub(v.lastSeen) >= rl.config.Window {
				delete(rl.visitors, key)
			}
		}
		rl.mu.Unlock()
	}
}

func rejectRateLimited(c *gin.Context, config RateLimitConfig, retryAfter int) {
	RecordRateLimitExceeded(config.Name, c.Request.Method)
	c.Header("Retry-After", strconv.Itoa(retryAfter))
	c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
	c.Header("X-RateLimit-Remaining", "0")
	util.RespondWithAPIError(c, errors.RateLimited(""))
}
