package docstore

import (
	"context"
	"errors"
	"time"

	"github.com/zfogg/dailybrief/internal/models"
	"github.com/zfogg/dailybrief/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ratingStore struct {
	ratings *mongo.Collection
}

// Increment uses $inc with upsert so concurrent votes are applied by the server
func (s *ratingStore) Increment(ctx context.Context, date, topic string, vote models.Vote) (*models.TopicRating, error) {
	if !vote.Valid() {
		return nil, repository.ErrInvalidVote
	}
	if date == "" || topic == "" {
		return nil, repository.ErrInvalidInput
	}

	field := "likes"
	if vote == models.VoteDislike {
		field = "dislikes"
	}
	other := "dislikes"
	if field == "dislikes" {
		other = "likes"
	}

	filter := bson.M{"date": date, "topic": topic}
	update := bson.M{
		"$inc":         bson.M{field: 1},
		"$set":         bson.M{"updated_at": time.Now().UTC()},
		"$setOnInsert": bson.M{other: 0},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var rating models.TopicRating
	err := s.ratings.FindOneAndUpdate(ctx, filter, update, opts).Decode(&rating)
	if mongo.IsDuplicateKeyError(err) {
		err = s.ratings.FindOneAndUpdate(ctx, filter, update, opts).Decode(&rating)
	}
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func (s *ratingStore) Get(ctx context.Context, date, topic string) (*models.TopicRating, error) {
	var rating models.TopicRating
	err := s.ratings.FindOne(ctx, bson.M{"date": date, "topic": topic}).Decode(&rating)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &models.TopicRating{Date: date, Topic: topic}, nil
	}
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

type pinStore struct {
	pins     *mongo.Collection
	articles *mongo.Collection
}

func (s *pinStore) Pin(ctx context.Context, userID, articleID string) error {
	if userID == "" || articleID == "" {
		return repository.ErrInvalidInput
	}
	n, err := s.articles.CountDocuments(ctx, bson.M{"_id": articleID})
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrArticleNotFound
	}

	_, err = s.pins.UpdateOne(ctx,
		bson.M{"user_id": userID, "article_id": articleID},
		bson.M{"$setOnInsert": bson.M{"pinned_at": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

func (s *pinStore) Unpin(ctx context.Context, userID, articleID string) error {
	if userID == "" || articleID == "" {
		return repository.ErrInvalidInput
	}
	_, err := s.pins.DeleteOne(ctx, bson.M{"user_id": userID, "article_id": articleID})
	return err
}

func (s *pinStore) List(ctx context.Context, userID string) ([]models.PinnedArticle, error) {
	cursor, err := s.pins.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "pinned_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var pins []models.PinnedArticle
	if err := cursor.All(ctx, &pins); err != nil {
		return nil, err
	}
	if len(pins) == 0 {
		return []models.PinnedArticle{}, nil
	}

	ids := make([]string, 0, len(pins))
	for _, p := range pins {
		ids = append(ids, p.ArticleID)
	}
	articleCursor, err := s.articles.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"comments": 0}),
	)
	if err != nil {
		return nil, err
	}
	defer articleCursor.Close(ctx)

	var articles []models.Article
	if err := articleCursor.All(ctx, &articles); err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Article, len(articles))
	for i := range articles {
		byID[articles[i].ID] = &articles[i]
	}

	out := make([]models.PinnedArticle, 0, len(pins))
	for _, p := range pins {
		if a, ok := byID[p.ArticleID]; ok {
			p.Article = a
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *pinStore) IsPinned(ctx context.Context, userID, articleID string) (bool, error) {
	n, err := s.pins.CountDocuments(ctx, bson.M{"user_id": userID, "article_id": articleID})
	return n > 0, err
}

type userStore struct {
	users *mongo.Collection
}

func (s *userStore) Ensure(ctx context.Context, id, username string) (*models.User, error) {
	if id == "" {
		return nil, repository.ErrInvalidInput
	}
	now := time.Now().UTC()
	set := bson.M{"updated_at": now}
	if username != "" {
		set["username"] = username
	}
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"topics":        bson.A{},
			"custom_topics": bson.A{},
			"created_at":    now,
		},
	}

	var user models.User
	err := s.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *userStore) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *userStore) UpdateTopics(ctx context.Context, id string, topics []string, custom []models.CustomTopic) (*models.User, error) {
	if topics == nil {
		topics = []string{}
	}
	if custom == nil {
		custom = []models.CustomTopic{}
	}

	var user models.User
	err := s.users.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"topics": topics, "custom_topics": custom, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
