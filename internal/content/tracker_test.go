package content

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/dailybrief/internal/cache"
)

func TestMemoryTracker(t *testing.T) {
	ctx := context.Background()
	tr := NewMemoryTracker()

	ok, err := tr.IsMarked(ctx, "u1", "2024-04-13", "sports")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, tr.Mark(ctx, "u1", "2024-04-13", "sports"))
	ok, _ = tr.IsMarked(ctx, "u1", "2024-04-13", "sports")
	assert.True(t, ok)
	ok, _ = tr.IsMarked(ctx, "u2", "2024-04-13", "sports")
	assert.False(t, ok)
}

func TestRedisTracker(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rc := cache.Wrap(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer rc.Close()

	tr := NewTracker(rc, 24*time.Hour)
	require.IsType(t, &RedisTracker{}, tr)

	require.NoError(t, tr.Mark(ctx, "u1", "2024-04-13", "sports"))
	ok, err := tr.IsMarked(ctx, "u1", "2024-04-13", "sports")
	require.NoError(t, err)
	assert.True(t, ok)

	members, err := mr.Members("generated:u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-04-13|sports"}, members)
}

func TestRedisTrackerFallsBackToMemory(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rc := cache.Wrap(redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}))
	defer rc.Close()
	tr := NewRedisTracker(rc, time.Hour)

	mr.Close()

	require.NoError(t, tr.Mark(ctx, "u1", "2024-04-13", "science"))
	ok, err := tr.IsMarked(ctx, "u1", "2024-04-13", "science")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = tr.IsMarked(ctx, "u1", "2024-04-13", "sports")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewTrackerWithoutRedis(t *testing.T) {
	assert.IsType(t, &MemoryTracker{}, NewTracker(nil, time.Hour))
}
