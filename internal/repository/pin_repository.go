package repository

import (
	"context"

	"github.com/zfogg/dailybrief/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// pinRepository implements PinRepository on gorm
type pinRepository struct {
	db *gorm.DB
}

// NewPinRepository creates a new pin repository
func NewPinRepository(db *gorm.DB) PinRepository {
	return &pinRepository{db: db}
}

// Pin inserts the (user, article) pair unless it already exists
func (r *pinRepository) Pin(ctx context.Context, userID, articleID string) error {
	if userID == "" || articleID == "" {
		return ErrInvalidInput
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Article{}).Where("id = ?", articleID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrArticleNotFound
	}

	pin := &models.PinnedArticle{UserID: userID, ArticleID: articleID}
	return r.db.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "article_id"}},
		DoNothing: true,
	}).Create(pin).Error
}

// Unpin removes the pair if present
func (r *pinRepository) Unpin(ctx context.Context, userID, articleID string) error {
	if userID == "" || articleID == "" {
		return ErrInvalidInput
	}
	return r.db.WithContext(ctx).
		Where("user_id = ? AND article_id = ?", userID, articleID).
		Delete(&models.PinnedArticle{}).Error
}

// List returns the user's pins newest first
func (r *pinRepository) List(ctx context.Context, userID string) ([]models.PinnedArticle, error) {
	pins := make([]models.PinnedArticle, 0)
	err := r.db.WithContext(ctx).
		Preload("Article").
		Where("user_id = ?", userID).
		Order("pinned_at DESC").
		Find(&pins).Error
	if err != nil {
		return nil, err
	}

	// Articles can disappear after being pinned; skip dangling pins
	out := pins[:0]
	for _, p := range pins {
		if p.Article != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

// IsPinned reports whether the user pinned the article
func (r *pinRepository) IsPinned(ctx context.Context, userID, articleID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PinnedArticle{}).
		Where("user_id = ? AND article_id = ?", userID, articleID).
		Count(&count).Error
	return count > 0, err
}
