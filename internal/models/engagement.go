package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vote is a reader's reaction to a topic's coverage on a given day
type Vote string

const (
	VoteLike    Vote = "like"
	VoteDislike Vote = "dislike"
)

// Valid reports whether v is a known vote
func (v Vote) Valid() bool {
	return v == VoteLike || v == VoteDislike
}

// TopicRating aggregates votes for a (date, topic) key. Counters only grow.
type TopicRating struct {
	ID       string `gorm:"primaryKey;type:varchar(64)" json:"-" bson:"-"`
	Date     string `gorm:"type:varchar(10);not null;uniqueIndex:idx_topic_ratings_key" json:"date" bson:"date"`
	Topic    string `gorm:"type:varchar(64);not null;uniqueIndex:idx_topic_ratings_key" json:"topic" bson:"topic"`
	Likes    int64  `gorm:"not null;default:0" json:"likes" bson:"likes"`
	Dislikes int64  `gorm:"not null;default:0" json:"dislikes" bson:"dislikes"`

	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// TableName overrides the default table name
func (TopicRating) TableName() string {
	return "topic_ratings"
}

// BeforeCreate assigns an id
func (r *TopicRating) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// PinnedArticle is a user's bookmark; one row per (user, article).
type PinnedArticle struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id" bson:"-"`
	UserID    string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_pinned_articles_user_article" json:"user_id" bson:"user_id"`
	ArticleID string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_pinned_articles_user_article" json:"article_id" bson:"article_id"`
	Article   *Article  `gorm:"foreignKey:ArticleID" json:"article,omitempty" bson:"-"`
	PinnedAt  time.Time `gorm:"not null;index" json:"pinned_at" bson:"pinned_at"`
}

// TableName overrides the default table name
func (PinnedArticle) TableName() string {
	return "pinned_articles"
}

// BeforeCreate assigns an id and pin time
func (p *PinnedArticle) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.PinnedAt.IsZero() {
		p.PinnedAt = time.Now().UTC()
	}
	return nil
}
