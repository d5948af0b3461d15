package seed

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/dailybrief/internal/database"
	"github.com/zfogg/dailybrief/internal/repository"
	"github.com/zfogg/dailybrief/internal/topics"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) (*repository.Store, *gorm.DB) {
	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), nil)
	require.NoError(t, err)
	require.NoError(t, database.MigrateDB(db))
	store := repository.NewGormStore(db)
	t.Cleanup(func() { _ = store.Close() })
	return store, db
}

func TestDates(t *testing.T) {
	store, _ := newTestStore(t)
	s, err := NewSeeder(store, "2024-04-13", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-04-11", "2024-04-12", "2024-04-13"}, s.Dates())

	_, err = NewSeeder(store, "April 13", 3)
	assert.Error(t, err)
}

func TestSeedDevCoversEveryTopicAndDate(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	s, err := NewSeeder(store, "2024-04-13", 2)
	require.NoError(t, err)
	require.NoError(t, s.SeedDev(ctx))

	for _, date := range s.Dates() {
		for _, topic := range topics.Global() {
			articles, err := store.Articles.Find(ctx, date, topic.ID)
			require.NoError(t, err)
			assert.NotEmpty(t, articles, "%s/%s", date, topic.ID)
			for _, a := range articles {
				assert.Equal(t, topic.Emoji, a.Emoji)
				assert.Contains(t, a.Headline, topic.Label+":")
			}
		}
	}
}

func TestSeedTestIsRepeatableForUsers(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	s, err := NewSeeder(store, "2024-04-13", 1)
	require.NoError(t, err)
	require.NoError(t, s.SeedTest(ctx))
	require.NoError(t, s.SeedTest(ctx))

	user, err := store.Users.Get(ctx, "test-alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	var users int64
	require.NoError(t, db.Table("users").Count(&users).Error)
	assert.Equal(t, int64(3), users)

	articles, err := store.Articles.Find(ctx, "2024-04-13", "sports")
	require.NoError(t, err)
	assert.Len(t, articles, 2)

	require.NoError(t, Clean(db))
	articles, err = store.Articles.Find(ctx, "2024-04-13", "sports")
	require.NoError(t, err)
	assert.Empty(t, articles)
}
