package repository

import (
	"context"
	"errors"

	"github.com/zfogg/dailybrief/internal/models"
	"gorm.io/gorm"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrArticleNotFound = errors.New("article not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidVote     = errors.New("vote must be like or dislike")
)

// ArticleRepository stores articles keyed by (date, topic)
type ArticleRepository interface {
	// Find returns every article for the key in creation order. A miss is an
	// empty slice, never an error.
	Find(ctx context.Context, date, topic string) ([]models.Article, error)
	// Append adds another article to the key's set
	Append(ctx context.Context, article *models.Article) error
	// Upsert writes the single analysis for the key, replacing any previous one.
	// On return article holds the stored row.
	Upsert(ctx context.Context, article *models.Article) error
	Get(ctx context.Context, id string) (*models.Article, error)

	AddComment(ctx context.Context, articleID string, comment *models.Comment) error
	Comments(ctx context.Context, articleID string) ([]models.Comment, error)
}

// RatingRepository keeps per-(date, topic) vote counters
type RatingRepository interface {
	// Increment atomically bumps one counter and returns the counters after the write
	Increment(ctx context.Context, date, topic string, vote models.Vote) (*models.TopicRating, error)
	// Get returns the counters, zeroed when nobody has voted yet
	Get(ctx context.Context, date, topic string) (*models.TopicRating, error)
}

// PinRepository manages per-user pinned articles
type PinRepository interface {
	// Pin is idempotent. It fails with ErrArticleNotFound for unknown articles.
	Pin(ctx context.Context, userID, articleID string) error
	// Unpin succeeds even when nothing was pinned
	Unpin(ctx context.Context, userID, articleID string) error
	// List returns the user's pins newest first, with article details
	List(ctx context.Context, userID string) ([]models.PinnedArticle, error)
	IsPinned(ctx context.Context, userID, articleID string) (bool, error)
}

// UserRepository manages local user profiles
type UserRepository interface {
	// Ensure creates the profile on first sight and returns it
	Ensure(ctx context.Context, id, username string) (*models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	UpdateTopics(ctx context.Context, id string, topics []string, custom []models.CustomTopic) (*models.User, error)
}

// Store groups the repositories a backend provides
type Store struct {
	Articles ArticleRepository
	Ratings  RatingRepository
	Pins     PinRepository
	Users    UserRepository

	// Close releases the backend connection
	Close func() error
	// Ping reports backend health
	Ping func(ctx context.Context) error
}

// NewGormStore builds a Store over a gorm connection
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Articles: NewArticleRepository(db),
		Ratings:  NewRatingRepository(db),
		Pins:     NewPinRepository(db),
		Users:    NewUserRepository(db),
		Close: func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
}
