package content

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/zfogg/dailybrief/internal/database"
	"github.com/zfogg/dailybrief/internal/models"
	"github.com/zfogg/dailybrief/internal/parser"
	"github.com/zfogg/dailybrief/internal/repository"
)

// fakeGenerator returns numbered headlines, or err when set. When gate is
// non-nil each call blocks until it is closed.
type fakeGenerator struct {
	calls   atomic.Int32
	err     error
	gate    chan struct{}
	entered chan struct{}
}

func (g *fakeGenerator) Headline(ctx context.Context, label, date string) (parser.Result, error) {
	n := g.calls.Add(1)
	if g.entered != nil {
		select {
		case g.entered <- struct{}{}:
		default:
		}
	}
	if g.gate != nil {
		<-g.gate
	}
	if g.err != nil {
		return parser.Result{}, g.err
	}
	return parser.Result{
		Headline: fmt.Sprintf("%s headline %d", label, n),
		Analysis: fmt.Sprintf("%s analysis for %s", label, date),
		Tier:     parser.TierStructured,
	}, nil
}

type ResolverTestSuite struct {
	suite.Suite
	store     *repository.Store
	generator *fakeGenerator
	tracker   *MemoryTracker
	resolver  *Resolver
	ctx       context.Context
	customID  string
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverTestSuite))
}

func (suite *ResolverTestSuite) SetupTest() {
	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), nil)
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), database.MigrateDB(db))

	suite.ctx = context.Background()
	suite.store = repository.NewGormStore(db)
	suite.generator = &fakeGenerator{}
	suite.tracker = NewMemoryTracker()
	suite.resolver = NewResolver(suite.store.Articles, suite.store.Users, suite.generator, suite.tracker, Options{
		LatestDate: "2024-04-13",
		WindowDays: 7,
	})

	suite.customID = "custom-" + uuid.NewString()
	_, err = suite.store.Users.Ensure(suite.ctx, "u1", "reader")
	require.NoError(suite.T(), err)
	_, err = suite.store.Users.UpdateTopics(suite.ctx, "u1", []string{"sports"}, []models.CustomTopic{
		{ID: suite.customID, Label: "Space", Emoji: "🚀"},
	})
	require.NoError(suite.T(), err)
}

func (suite *ResolverTestSuite) TearDownTest() {
	_ = suite.store.Close()
}

func (suite *ResolverTestSuite) TestWindow() {
	first, latest := suite.resolver.Window()
	suite.Equal("2024-04-07", first)
	suite.Equal("2024-04-13", latest)
}

func (suite *ResolverTestSuite) TestWindowFollowsClock() {
	r := NewResolver(suite.store.Articles, suite.store.Users, suite.generator, nil, Options{
		WindowDays: 3,
		Now:        func() time.Time { return time.Date(2025, 1, 2, 23, 0, 0, 0, time.UTC) },
	})
	first, latest := r.Window()
	suite.Equal("2024-12-31", first)
	suite.Equal("2025-01-02", latest)
}

func (suite *ResolverTestSuite) TestResolveGlobalMissIsNotAnError() {
	res, err := suite.resolver.Resolve(suite.ctx, "u1", "2024-04-10", "sports")
	suite.Require().NoError(err)
	suite.Empty(res.Articles)
	suite.True(res.CanGenerate)
	suite.False(res.Generated)
	suite.Equal("⚽", res.Topic.Emoji)
	suite.Equal(int32(0), suite.generator.calls.Load())
}

func (suite *ResolverTestSuite) TestGenerateGlobalAppends() {
	first, err := suite.resolver.Generate(suite.ctx, "u1", "2024-04-10", "sports")
	suite.Require().NoError(err)
	suite.Equal("Sports headline 1", first.Headline)
	suite.Equal(models.KindArticle, first.Article.Kind)
	suite.Equal("⚽", first.Article.Emoji)

	second, err := suite.resolver.Generate(suite.ctx, "u1", "2024-04-10", "sports")
	suite.Require().NoError(err)
	suite.NotEqual(first.Article.ID, second.Article.ID)
	suite.Equal(int32(2), suite.generator.calls.Load())

	res, err := suite.resolver.Resolve(suite.ctx, "u1", "2024-04-10", "sports")
	suite.Require().NoError(err)
	suite.Len(res.Articles, 2)
	suite.True(res.Generated)

	// The marker is per user
	other, err := suite.resolver.Resolve(suite.ctx, "u2", "2024-04-10", "sports")
	suite.Require().NoError(err)
	suite.False(other.Generated)
	suite.Len(other.Articles, 2)
}

func (suite *ResolverTestSuite) TestGenerateCustomUpserts() {
	_, err := suite.resolver.Generate(suite.ctx, "u1", "2024-04-13", suite.customID)
	suite.Require().NoError(err)
	second, err := suite.resolver.Generate(suite.ctx, "u1", "2024-04-13", suite.customID)
	suite.Require().NoError(err)
	suite.Equal(models.KindAnalysis, second.Article.Kind)

	res, err := suite.resolver.Resolve(suite.ctx, "u1", "2024-04-13", suite.customID)
	suite.Require().NoError(err)
	suite.Require().Len(res.Articles, 1)
	suite.Equal("Space headline 2", res.Articles[0].Headline)
	suite.True(res.CanGenerate)
	suite.True(res.Topic.Custom)
}

func (suite *ResolverTestSuite) TestCustomTopicPastDate() {
	_, err := suite.resolver.Generate(suite.ctx, "u1", "2024-04-12", suite.customID)
	suite.ErrorIs(err, ErrPastDateGeneration)
	suite.Equal(int32(0), suite.generator.calls.Load())

	res, err := suite.resolver.Resolve(suite.ctx, "u1", "2024-04-12", suite.customID)
	suite.Require().NoError(err)
	suite.False(res.CanGenerate)
}

func (suite *ResolverTestSuite) TestCustomTopicOfAnotherUser() {
	_, err := suite.resolver.Resolve(suite.ctx, "u2", "2024-04-13", suite.customID)
	suite.ErrorIs(err, ErrUnknownTopic)
}

func (suite *ResolverTestSuite) TestGenerationFailureWritesNothing() {
	suite.generator.err = errors.New("upstream timeout")

	_, err := suite.resolver.Generate(suite.ctx, "u1", "2024-04-13", "science")
	suite.ErrorIs(err, ErrGenerationFailed)

	res, err := suite.resolver.Resolve(suite.ctx, "u1", "2024-04-13", "science")
	suite.Require().NoError(err)
	suite.Empty(res.Articles)
	suite.False(res.Generated)
}

func (suite *ResolverTestSuite) TestValidation() {
	tests := []struct {
		date  string
		topic string
		want  error
	}{
		{"13-04-2024", "sports", ErrInvalidDate},
		{"2024-02-30", "sports", ErrInvalidDate},
		{"2024-04-06", "sports", ErrDateOutOfRange},
		{"2024-04-14", "sports", ErrDateOutOfRange},
		{"2024-04-13", "movies", ErrUnknownTopic},
		{"2024-04-13", "custom-unknown", ErrUnknownTopic},
	}
	for _, tt := range tests {
		_, err := suite.resolver.Resolve(suite.ctx, "u1", tt.date, tt.topic)
		suite.ErrorIs(err, tt.want, "%s %s", tt.date, tt.topic)
		_, err = suite.resolver.Generate(suite.ctx, "u1", tt.date, tt.topic)
		suite.ErrorIs(err, tt.want, "%s %s", tt.date, tt.topic)
	}
}

func (suite *ResolverTestSuite) TestConcurrentIdenticalGenerationsShareOneCall() {
	suite.generator.gate = make(chan struct{})
	suite.generator.entered = make(chan struct{}, 1)

	const callers = 5
	var wg sync.WaitGroup
	results := make(chan *Generation, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g, err := suite.resolver.Generate(suite.ctx, "u1", "2024-04-13", "gaming")
			suite.NoError(err)
			results <- g
		}()
	}

	<-suite.generator.entered
	time.Sleep(50 * time.Millisecond)
	close(suite.generator.gate)
	wg.Wait()
	close(results)

	suite.Equal(int32(1), suite.generator.calls.Load())
	var ids []string
	for g := range results {
		ids = append(ids, g.Article.ID)
	}
	suite.Len(ids, callers)
	for _, id := range ids {
		suite.Equal(ids[0], id)
	}

	articles, err := suite.store.Articles.Find(suite.ctx, "2024-04-13", "gaming")
	suite.Require().NoError(err)
	suite.Len(articles, 1)
}
