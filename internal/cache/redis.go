package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zfogg/dailybrief/internal/logger"
	"github.com/zfogg/dailybrief/internal/metrics"
	"go.uber.org/zap"
)

// RedisClient wraps the redis.Client with centralized connection pooling
type RedisClient struct {
	client *redis.Client
}

// Singleton instance (package-level)
var globalRedis *RedisClient

// NewRedisClient creates and initializes a Redis client with connection pooling
func NewRedisClient(host string, port string, password string) (*RedisClient, error) {
	if host == "" {
		host = "localhost"
	}
	if port == "" {
		port = "6379"
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 5,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.ErrorWithFields("Failed to connect to Redis", err)
		_ = client.Close()
		return nil, err
	}

	rc := &RedisClient{client: client}
	globalRedis = rc

	logger.Log.Info("✅ Redis client connected successfully",
		zap.String("address", addr),
	)

	return rc, nil
}

// Wrap adapts an existing go-redis client, e.g. one pointed at miniredis in tests
func Wrap(client *redis.Client) *RedisClient {
	return &RedisClient{client: client}
}

// GetRedisClient returns the global Redis client instance
func GetRedisClient() *RedisClient {
	return globalRedis
}

// SetRedisClient replaces the global client. Passing nil disables Redis-backed features.
func SetRedisClient(rc *RedisClient) {
	globalRedis = rc
}

// Close closes the Redis connection gracefully
func (rc *RedisClient) Close() error {
	if rc == nil || rc.client == nil {
		return nil
	}
	return rc.client.Close()
}

// Ping tests the Redis connection
func (rc *RedisClient) Ping(ctx context.Context) error {
	return rc.observe("ping", rc.client.Ping(ctx).Err())
}

// IncrWindow increments a fixed-window counter and starts the window on the first hit
func (rc *RedisClient) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	val, err := rc.client.Incr(ctx, key).Result()
	if err := rc.observe("incr", err); err != nil {
		return 0, err
	}
	if val == 1 {
		if err := rc.observe("expire", rc.client.Expire(ctx, key, window).Err()); err != nil {
			return val, err
		}
	}
	return val, nil
}

// TTL returns the time-to-live for a key
func (rc *RedisClient) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := rc.client.TTL(ctx, key).Result()
	return ttl, rc.observe("ttl", err)
}

// SAdd adds members to a set and refreshes the set's expiry when ttl > 0
func (rc *RedisClient) SAdd(ctx context.Context, key string, ttl time.Duration, members ...interface{}) error {
	_, err := rc.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, key, members...)
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		return nil
	})
	return rc.observe("sadd", err)
}

// SIsMember reports whether member is in the set
func (rc *RedisClient) SIsMember(ctx context.Context, key string, member interface{}) (bool, error) {
	ok, err := rc.client.SIsMember(ctx, key, member).Result()
	return ok, rc.observe("sismember", err)
}

// SMembers returns every member of the set
func (rc *RedisClient) SMembers(ctx context.Context, key string) ([]string, error) {
	members, err := rc.client.SMembers(ctx, key).Result()
	return members, rc.observe("smembers", err)
}

func (rc *RedisClient) observe(op string, err error) error {
	status := "success"
	if err != nil && err != redis.Nil {
		status = "error"
	}
	metrics.Get().RedisOperationsTotal.WithLabelValues(op, status).Inc()
	return err
}
