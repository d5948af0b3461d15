package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/zfogg/dailybrief/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// articleRepository implements ArticleRepository on gorm
type articleRepository struct {
	db *gorm.DB
}

// NewArticleRepository creates a new article repository
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

// Find returns the articles stored for (date, topic)
func (r *articleRepository) Find(ctx context.Context, date, topic string) ([]models.Article, error) {
	articles := make([]models.Article, 0)
	err := r.db.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("date = ? AND topic = ?", date, topic).
		Order("created_at ASC").
		Find(&articles).Error
	if err != nil {
		return nil, err
	}
	return articles, nil
}

// Append inserts a new article
func (r *articleRepository) Append(ctx context.Context, article *models.Article) error {
	if article == nil || article.Date == "" || article.Topic == "" {
		return ErrInvalidInput
	}
	article.ID = ""
	article.Kind = models.KindArticle
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(article).Error
}

// Upsert writes the analysis for (date, topic), replacing an earlier one
func (r *articleRepository) Upsert(ctx context.Context, article *models.Article) error {
	if article == nil || article.Date == "" || article.Topic == "" {
		return ErrInvalidInput
	}
	article.ID = ""
	article.Kind = models.KindAnalysis
	article.UpdatedAt = time.Now().UTC()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "date"}, {Name: "topic"}},
			TargetWhere: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "kind = 'analysis'"},
			}},
			DoUpdates: clause.AssignmentColumns([]string{"emoji", "headline", "text", "sources", "updated_at"}),
		}).Create(article).Error
		if err != nil {
			return err
		}

		// The insert may have turned into an update of an existing row
		var stored models.Article
		err = tx.Where("date = ? AND topic = ? AND kind = ?", article.Date, article.Topic, models.KindAnalysis).
			First(&stored).Error
		if err != nil {
			return err
		}
		*article = stored
		return nil
	})
}

// Get returns one article with its comments
func (r *articleRepository) Get(ctx context.Context, id string) (*models.Article, error) {
	var article models.Article
	err := r.db.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&article).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepository) exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Article{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// AddComment appends a comment to an existing article
func (r *articleRepository) AddComment(ctx context.Context, articleID string, comment *models.Comment) error {
	if comment == nil || strings.TrimSpace(comment.Text) == "" {
		return ErrInvalidInput
	}
	ok, err := r.exists(ctx, articleID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrArticleNotFound
	}

	comment.ArticleID = articleID
	comment.Text = strings.TrimSpace(comment.Text)
	return r.db.WithContext(ctx).Create(comment).Error
}

// Comments returns an article's comments oldest first
func (r *articleRepository) Comments(ctx context.Context, articleID string) ([]models.Comment, error) {
	ok, err := r.exists(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrArticleNotFound
	}

	comments := make([]models.Comment, 0)
	err = r.db.WithContext(ctx).
		Where("article_id = ?", articleID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}
