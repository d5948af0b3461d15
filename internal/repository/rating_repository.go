package repository

import (
	"context"
	"errors"
	"time"

	"github.com/zfogg/dailybrief/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ratingRepository implements RatingRepository on gorm
type ratingRepository struct {
	db *gorm.DB
}

// NewRatingRepository creates a new rating repository
func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

// Increment seeds the counter row if needed, then bumps it with a single
// UPDATE so concurrent votes never overwrite each other.
func (r *ratingRepository) Increment(ctx context.Context, date, topic string, vote models.Vote) (*models.TopicRating, error) {
	if !vote.Valid() {
		return nil, ErrInvalidVote
	}
	if date == "" || topic == "" {
		return nil, ErrInvalidInput
	}

	column := "likes"
	if vote == models.VoteDislike {
		column = "dislikes"
	}

	var rating models.TopicRating
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := &models.TopicRating{Date: date, Topic: topic}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}, {Name: "topic"}},
			DoNothing: true,
		}).Create(seed).Error
		if err != nil {
			return err
		}

		err = tx.Model(&models.TopicRating{}).
			Where("date = ? AND topic = ?", date, topic).
			Updates(map[string]interface{}{
				column:       gorm.Expr(column+" + ?", 1),
				"updated_at": time.Now().UTC(),
			}).Error
		if err != nil {
			return err
		}

		return tx.Where("date = ? AND topic = ?", date, topic).First(&rating).Error
	})
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// Get returns the counters for (date, topic)
func (r *ratingRepository) Get(ctx context.Context, date, topic string) (*models.TopicRating, error) {
	var rating models.TopicRating
	err := r.db.WithContext(ctx).Where("date = ? AND topic = ?", date, topic).First(&rating).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.TopicRating{Date: date, Topic: topic}, nil
	}
	if err != nil {
		return nil, err
	}
	return &rating, nil
}
