package docstore

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/zfogg/dailybrief/internal/models"
	"github.com/zfogg/dailybrief/internal/repository"
)

// DocstoreTestSuite runs against a real MongoDB given by MONGODB_URI
type DocstoreTestSuite struct {
	suite.Suite
	client *Client
	store  *repository.Store
	ctx    context.Context
}

func TestDocstoreSuite(t *testing.T) {
	suite.Run(t, new(DocstoreTestSuite))
}

func (suite *DocstoreTestSuite) SetupSuite() {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		suite.T().Skip("Skipping docstore tests: MONGODB_URI not set")
		return
	}
	suite.ctx = context.Background()

	client, err := Connect(suite.ctx, uri, fmt.Sprintf("dailybrief_test_%d", time.Now().UnixNano()))
	if err != nil {
		suite.T().Skipf("Skipping docstore tests: mongodb not available (%v)", err)
		return
	}
	require.NoError(suite.T(), client.EnsureIndexes(suite.ctx))
	suite.client = client
	suite.store = client.Store()
}

func (suite *DocstoreTestSuite) TearDownSuite() {
	if suite.client == nil {
		return
	}
	_ = suite.client.Drop(suite.ctx)
	_ = suite.store.Close()
}

func (suite *DocstoreTestSuite) TestFindUpsertRoundTrip() {
	found, err := suite.store.Articles.Find(suite.ctx, "2024-04-13", "custom-rt")
	suite.Require().NoError(err)
	suite.Empty(found)

	a := &models.Article{Date: "2024-04-13", Topic: "custom-rt", Headline: "H1", Text: "T1"}
	suite.Require().NoError(suite.store.Articles.Upsert(suite.ctx, a))
	b := &models.Article{Date: "2024-04-13", Topic: "custom-rt", Headline: "H2", Text: "T2"}
	suite.Require().NoError(suite.store.Articles.Upsert(suite.ctx, b))
	suite.Equal(a.ID, b.ID)

	found, err = suite.store.Articles.Find(suite.ctx, "2024-04-13", "custom-rt")
	suite.Require().NoError(err)
	suite.Require().Len(found, 1)
	suite.Equal("H2", found[0].Headline)
}

func (suite *DocstoreTestSuite) TestCommentsArePushed() {
	a := &models.Article{Date: "2024-04-13", Topic: "sports", Headline: "Match"}
	suite.Require().NoError(suite.store.Articles.Append(suite.ctx, a))

	suite.Require().NoError(suite.store.Articles.AddComment(suite.ctx, a.ID, &models.Comment{UserID: "u1", Username: "reader", Text: " great "}))
	comments, err := suite.store.Articles.Comments(suite.ctx, a.ID)
	suite.Require().NoError(err)
	suite.Require().Len(comments, 1)
	suite.Equal("great", comments[0].Text)
	suite.Equal(a.ID, comments[0].ArticleID)

	suite.ErrorIs(suite.store.Articles.AddComment(suite.ctx, "missing", &models.Comment{Text: "x"}), repository.ErrArticleNotFound)
}

func (suite *DocstoreTestSuite) TestConcurrentVotes() {
	const voters = 20
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.store.Ratings.Increment(suite.ctx, "2024-04-13", "concurrent", models.VoteLike)
			suite.NoError(err)
		}()
	}
	wg.Wait()

	rating, err := suite.store.Ratings.Get(suite.ctx, "2024-04-13", "concurrent")
	suite.Require().NoError(err)
	suite.Equal(int64(voters), rating.Likes)
	suite.Equal(int64(0), rating.Dislikes)
}

func (suite *DocstoreTestSuite) TestPinIdempotence() {
	a := &models.Article{Date: "2024-04-13", Topic: "science", Headline: "Pinned"}
	suite.Require().NoError(suite.store.Articles.Append(suite.ctx, a))

	suite.Require().NoError(suite.store.Pins.Pin(suite.ctx, "u-pin", a.ID))
	suite.Require().NoError(suite.store.Pins.Pin(suite.ctx, "u-pin", a.ID))

	pins, err := suite.store.Pins.List(suite.ctx, "u-pin")
	suite.Require().NoError(err)
	suite.Require().Len(pins, 1)
	suite.Equal("Pinned", pins[0].Article.Headline)

	suite.NoError(suite.store.Pins.Unpin(suite.ctx, "u-pin", a.ID))
	suite.NoError(suite.store.Pins.Unpin(suite.ctx, "u-pin", a.ID))
	pinned, err := suite.store.Pins.IsPinned(suite.ctx, "u-pin", a.ID)
	suite.NoError(err)
	suite.False(pinned)
}

func (suite *DocstoreTestSuite) TestUserTopics() {
	user, err := suite.store.Users.Ensure(suite.ctx, "u-topics", "reader")
	suite.Require().NoError(err)
	suite.Equal("reader", user.Username)

	custom := []models.CustomTopic{{ID: "custom-1", Label: "Space", Emoji: "🚀"}}
	_, err = suite.store.Users.UpdateTopics(suite.ctx, "u-topics", []string{"science"}, custom)
	suite.Require().NoError(err)

	user, err = suite.store.Users.Ensure(suite.ctx, "u-topics", "reader")
	suite.Require().NoError(err)
	suite.Equal(models.StringList{"science"}, user.Topics)
	suite.Equal(custom, user.CustomTopics)
}
