package repository

import (
	"context"
	"errors"

	"github.com/zfogg/dailybrief/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Ensure creates the user row on first sight. The username follows the
// latest token claims.
func (r *userRepository) Ensure(ctx context.Context, id, username string) (*models.User, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}

	user := &models.User{
		ID:           id,
		Username:     username,
		Topics:       models.StringList{},
		CustomTopics: []models.CustomTopic{},
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(user).Error
	if err != nil {
		return nil, err
	}

	existing, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if username != "" && existing.Username != username {
		existing.Username = username
		if err := r.db.WithContext(ctx).Model(existing).Update("username", username).Error; err != nil {
			return nil, err
		}
	}
	return existing, nil
}

// Get gets a user by ID
func (r *userRepository) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateTopics replaces the user's topic selection in one statement
func (r *userRepository) UpdateTopics(ctx context.Context, id string, topics []string, custom []models.CustomTopic) (*models.User, error) {
	if topics == nil {
		topics = []string{}
	}
	if custom == nil {
		custom = []models.CustomTopic{}
	}

	user, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Topics = topics
	user.CustomTopics = custom

	err = r.db.WithContext(ctx).Model(user).Select("topics", "custom_topics", "updated_at").Updates(user).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}
