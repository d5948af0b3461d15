package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ArticleKind separates multi-article topic sets from per-day custom analyses
type ArticleKind string

const (
	// KindArticle entries accumulate: many may share a (date, topic) key.
	KindArticle ArticleKind = "article"
	// KindAnalysis entries are singletons per (date, topic).
	KindAnalysis ArticleKind = "analysis"
)

// DateLayout is the calendar-day key format used across storage and the API
const DateLayout = "2006-01-02"

// Article is a stored headline with its body text for a (date, topic) key.
type Article struct {
	ID       string      `gorm:"primaryKey;type:varchar(64)" json:"id" bson:"_id"`
	Date     string      `gorm:"type:varchar(10);not null;index:idx_articles_date_topic" json:"date" bson:"date"`
	Topic    string      `gorm:"type:varchar(64);not null;index:idx_articles_date_topic" json:"topic" bson:"topic"`
	Kind     ArticleKind `gorm:"type:varchar(16);not null" json:"kind" bson:"kind"`
	Emoji    string      `gorm:"type:varchar(16)" json:"emoji" bson:"emoji"`
	Headline string      `gorm:"type:text;not null" json:"headline" bson:"headline"`
	Text     string      `gorm:"type:text" json:"text" bson:"text"`
	Sources  StringList  `gorm:"type:text" json:"sources" bson:"sources"`

	Comments []Comment `gorm:"foreignKey:ArticleID" json:"comments,omitempty" bson:"comments,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// TableName overrides the default table name
func (Article) TableName() string {
	return "articles"
}

// BeforeCreate assigns an id and normalizes empty fields
func (a *Article) BeforeCreate(tx *gorm.DB) error {
	a.Prepare()
	return nil
}

// Prepare assigns an id and defaults before an insert. Stores without
// gorm hooks call it directly.
func (a *Article) Prepare() {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.Kind == "" {
		a.Kind = KindArticle
	}
	if a.Sources == nil {
		a.Sources = StringList{}
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	a.UpdatedAt = a.CreatedAt
}

// Comment is a user's remark on an article, ordered by CreatedAt.
type Comment struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id" bson:"id"`
	ArticleID string    `gorm:"type:varchar(64);not null;index" json:"article_id" bson:"-"`
	UserID    string    `gorm:"type:varchar(64);not null;index" json:"user_id" bson:"user_id"`
	Username  string    `gorm:"not null" json:"username" bson:"username"`
	Text      string    `gorm:"type:text;not null" json:"text" bson:"text"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// TableName overrides the default table name
func (Comment) TableName() string {
	return "article_comments"
}

// BeforeCreate assigns an id
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	c.Prepare()
	return nil
}

// Prepare assigns an id and timestamp before an insert
func (c *Comment) Prepare() {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
}
