package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/zfogg/dailybrief/internal/logger"
	"github.com/zfogg/dailybrief/internal/models"
	"github.com/zfogg/dailybrief/internal/repository"
	"github.com/zfogg/dailybrief/internal/topics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seeder fills a store with fake content for local development
type Seeder struct {
	store  *repository.Store
	latest time.Time
	days   int
	rng    *rand.Rand
}

// NewSeeder creates a seeder covering the days days ending at latest
func NewSeeder(store *repository.Store, latest string, days int) (*Seeder, error) {
	t, err := time.Parse(models.DateLayout, latest)
	if err != nil {
		return nil, fmt.Errorf("invalid latest date %q: %w", latest, err)
	}
	if days < 1 {
		days = 1
	}
	seed := time.Now().UnixNano()
	// Seed returns an error only for invalid sources
	_ = gofakeit.Seed(seed)
	return &Seeder{store: store, latest: t, days: days, rng: rand.New(rand.NewSource(seed))}, nil
}

// Dates returns the seeded dates, oldest first
func (s *Seeder) Dates() []string {
	dates := make([]string, 0, s.days)
	for i := s.days - 1; i >= 0; i-- {
		dates = append(dates, s.latest.AddDate(0, 0, -i).Format(models.DateLayout))
	}
	return dates
}

// SeedDev seeds users, articles for every global topic and date, and engagement
func (s *Seeder) SeedDev(ctx context.Context) error {
	logger.Log.Info("Creating users...")
	users, err := s.seedUsers(ctx, 20)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	logger.Log.Info("Creating articles...")
	articles, err := s.seedArticles(ctx, 1, 3)
	if err != nil {
		return fmt.Errorf("failed to seed articles: %w", err)
	}

	logger.Log.Info("Creating comments...")
	if err := s.seedComments(ctx, users, articles, len(articles)*2); err != nil {
		return fmt.Errorf("failed to seed comments: %w", err)
	}

	logger.Log.Info("Creating ratings...")
	if err := s.seedRatings(ctx, 5); err != nil {
		return fmt.Errorf("failed to seed ratings: %w", err)
	}

	logger.Log.Info("Creating pins...")
	if err := s.seedPins(ctx, users, articles, 3); err != nil {
		return fmt.Errorf("failed to seed pins: %w", err)
	}

	logger.Log.Info("Development seed complete",
		zap.Int("users", len(users)),
		zap.Int("articles", len(articles)),
		zap.Int("days", s.days),
	)
	return nil
}

// SeedTest seeds a small fixed set of users and one article per topic and date
func (s *Seeder) SeedTest(ctx context.Context) error {
	fixtures := []struct{ id, username string }{
		{"test-alice", "alice"},
		{"test-bob", "bob"},
		{"test-charlie", "charlie"},
	}

	var users []models.User
	for _, f := range fixtures {
		user, err := s.store.Users.Ensure(ctx, f.id, f.username)
		if err != nil {
			return fmt.Errorf("failed to create test user %s: %w", f.username, err)
		}
		users = append(users, *user)
	}

	articles, err := s.seedArticles(ctx, 1, 1)
	if err != nil {
		return fmt.Errorf("failed to seed articles: %w", err)
	}
	return s.seedComments(ctx, users, articles, 10)
}

func (s *Seeder) seedUsers(ctx context.Context, count int) ([]models.User, error) {
	users := make([]models.User, 0, count)
	global := topics.Global()

	for i := 0; i < count; i++ {
		username := strings.ToLower(gofakeit.Username())
		user, err := s.store.Users.Ensure(ctx, "seed-"+gofakeit.UUID(), username)
		if err != nil {
			return nil, err
		}

		// Most readers follow a handful of topics
		picked := make([]string, 0, 4)
		for _, idx := range s.rng.Perm(len(global))[:1+s.rng.Intn(4)] {
			picked = append(picked, global[idx].ID)
		}
		ids, custom, err := topics.ValidateSelection(picked, nil, nil)
		if err != nil {
			return nil, err
		}
		if user, err = s.store.Users.UpdateTopics(ctx, user.ID, ids, custom); err != nil {
			return nil, err
		}
		users = append(users, *user)
	}

	logger.Log.Info("Created users", zap.Int("count", len(users)))
	return users, nil
}

func (s *Seeder) seedArticles(ctx context.Context, min, max int) ([]models.Article, error) {
	var articles []models.Article
	for _, date := range s.Dates() {
		for _, topic := range topics.Global() {
			n := min
			if max > min {
				n += s.rng.Intn(max - min + 1)
			}
			for i := 0; i < n; i++ {
				article := &models.Article{
					Date:     date,
					Topic:    topic.ID,
					Emoji:    topic.Emoji,
					Headline: fakeHeadline(topic.Label),
					Text:     fakeBody(3),
					Sources:  models.StringList{gofakeit.URL()},
				}
				if err := s.store.Articles.Append(ctx, article); err != nil {
					return nil, err
				}
				articles = append(articles, *article)
			}
		}
	}

	logger.Log.Info("Created articles", zap.Int("count", len(articles)))
	return articles, nil
}

var commentTemplates = []string{
	"Great summary, thanks!",
	"I had not heard about this yet.",
	"Would love a follow-up on this one.",
	"Not sure I agree with the framing here.",
	"This is going to matter a lot next year.",
	"Bookmarking this for later.",
}

func (s *Seeder) seedComments(ctx context.Context, users []models.User, articles []models.Article, count int) error {
	if len(users) == 0 || len(articles) == 0 {
		return nil
	}

	for i := 0; i < count; i++ {
		user := users[s.rng.Intn(len(users))]
		article := articles[s.rng.Intn(len(articles))]

		text := commentTemplates[s.rng.Intn(len(commentTemplates))]
		if s.rng.Float32() < 0.5 {
			text = gofakeit.HipsterSentence()
		}

		comment := &models.Comment{UserID: user.ID, Username: user.Username, Text: text}
		if err := s.store.Articles.AddComment(ctx, article.ID, comment); err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
	}

	logger.Log.Info("Created comments", zap.Int("count", count))
	return nil
}

func (s *Seeder) seedRatings(ctx context.Context, maxVotes int) error {
	total := 0
	for _, date := range s.Dates() {
		for _, topic := range topics.Global() {
			for i := s.rng.Intn(maxVotes + 1); i > 0; i-- {
				vote := models.VoteLike
				if s.rng.Float32() < 0.3 {
					vote = models.VoteDislike
				}
				if _, err := s.store.Ratings.Increment(ctx, date, topic.ID, vote); err != nil {
					return err
				}
				total++
			}
		}
	}

	logger.Log.Info("Created votes", zap.Int("count", total))
	return nil
}

func (s *Seeder) seedPins(ctx context.Context, users []models.User, articles []models.Article, perUser int) error {
	if len(articles) == 0 {
		return nil
	}
	for _, user := range users {
		for i := s.rng.Intn(perUser + 1); i > 0; i-- {
			article := articles[s.rng.Intn(len(articles))]
			if err := s.store.Pins.Pin(ctx, user.ID, article.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func fakeHeadline(label string) string {
	return fmt.Sprintf("%s: %s", label, strings.TrimSuffix(gofakeit.HipsterSentence(), "."))
}

func fakeBody(paragraphs int) string {
	parts := make([]string, 0, paragraphs)
	for i := 0; i < paragraphs; i++ {
		sentences := make([]string, 0, 4)
		for j := 0; j < 4; j++ {
			sentences = append(sentences, gofakeit.HipsterSentence())
		}
		parts = append(parts, strings.Join(sentences, " "))
	}
	return strings.Join(parts, "\n\n")
}

// Clean removes all rows from a SQL store (use with caution!)
func Clean(db *gorm.DB) error {
	// Delete in reverse order of dependencies
	for _, table := range []string{"pinned_articles", "topic_ratings", "article_comments", "articles", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clean %s: %w", table, err)
		}
	}
	return nil
}
