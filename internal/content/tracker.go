package content

import (
	"context"
	"sync"
	"time"

	"github.com/zfogg/dailybrief/internal/cache"
	"github.com/zfogg/dailybrief/internal/logger"
	"go.uber.org/zap"
)

// Tracker remembers which (date, topic) pairs a user has already generated,
// so clients can stop offering generation for them.
type Tracker interface {
	Mark(ctx context.Context, userID, date, topic string) error
	IsMarked(ctx context.Context, userID, date, topic string) (bool, error)
}

func trackerKey(userID string) string {
	return "generated:" + userID
}

func trackerMember(date, topic string) string {
	return date + "|" + topic
}

// MemoryTracker keeps markers in process memory
type MemoryTracker struct {
	mu   sync.RWMutex
	sets map[string]map[string]struct{}
}

// NewMemoryTracker creates an empty in-memory tracker
func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{sets: make(map[string]map[string]struct{})}
}

func (t *MemoryTracker) Mark(_ context.Context, userID, date, topic string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	set, ok := t.sets[userID]
	if !ok {
		set = make(map[string]struct{})
		t.sets[userID] = set
	}
	set[trackerMember(date, topic)] = struct{}{}
	return nil
}

func (t *MemoryTracker) IsMarked(_ context.Context, userID, date, topic string) (bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.sets[userID][trackerMember(date, topic)]
	return ok, nil
}

// RedisTracker stores markers in a Redis set per user. When Redis fails the
// marker is kept in memory instead so the request still succeeds.
type RedisTracker struct {
	redis    *cache.RedisClient
	ttl      time.Duration
	fallback *MemoryTracker
}

// NewRedisTracker creates a Redis-backed tracker. Sets expire ttl after the last write.
func NewRedisTracker(rc *cache.RedisClient, ttl time.Duration) *RedisTracker {
	return &RedisTracker{redis: rc, ttl: ttl, fallback: NewMemoryTracker()}
}

// NewTracker picks the Redis tracker when a client is available
func NewTracker(rc *cache.RedisClient, ttl time.Duration) Tracker {
	if rc == nil {
		return NewMemoryTracker()
	}
	return NewRedisTracker(rc, ttl)
}

func (t *RedisTracker) Mark(ctx context.Context, userID, date, topic string) error {
	if err := t.redis.SAdd(ctx, trackerKey(userID), t.ttl, trackerMember(date, topic)); err != nil {
		logger.Log.Warn("Failed to record generated marker in Redis, keeping it in memory",
			logger.WithUserID(userID),
			zap.Error(err),
		)
		return t.fallback.Mark(ctx, userID, date, topic)
	}
	return nil
}

func (t *RedisTracker) IsMarked(ctx context.Context, userID, date, topic string) (bool, error) {
	if ok, _ := t.fallback.IsMarked(ctx, userID, date, topic); ok {
		return true, nil
	}
	ok, err := t.redis.SIsMember(ctx, trackerKey(userID), trackerMember(date, topic))
	if err != nil {
		logger.Log.Warn("Failed to read generated marker from Redis",
			logger.WithUserID(userID),
			zap.Error(err),
		)
		return false, nil
	}
	return ok, nil
}
