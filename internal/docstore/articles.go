package docstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zfogg/dailybrief/internal/models"
	"github.com/zfogg/dailybrief/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type articleStore struct {
	articles *mongo.Collection
}

func (s *articleStore) Find(ctx context.Context, date, topic string) ([]models.Article, error) {
	cursor, err := s.articles.Find(ctx,
		bson.M{"date": date, "topic": topic},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	articles := make([]models.Article, 0)
	if err := cursor.All(ctx, &articles); err != nil {
		return nil, err
	}
	for i := range articles {
		fillCommentArticleIDs(&articles[i])
	}
	return articles, nil
}

func (s *articleStore) Append(ctx context.Context, article *models.Article) error {
	if article == nil || article.Date == "" || article.Topic == "" {
		return repository.ErrInvalidInput
	}
	article.ID = ""
	article.Kind = models.KindArticle
	article.Comments = nil
	article.Prepare()

	_, err := s.articles.InsertOne(ctx, article)
	return err
}

func (s *articleStore) Upsert(ctx context.Context, article *models.Article) error {
	if article == nil || article.Date == "" || article.Topic == "" {
		return repository.ErrInvalidInput
	}
	if article.Sources == nil {
		article.Sources = models.StringList{}
	}
	now := time.Now().UTC()

	filter := bson.M{"date": article.Date, "topic": article.Topic, "kind": models.KindAnalysis}
	update := bson.M{
		"$set": bson.M{
			"emoji":      article.Emoji,
			"headline":   article.Headline,
			"text":       article.Text,
			"sources":    article.Sources,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":        uuid.New().String(),
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored models.Article
	err := s.articles.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored)
	if mongo.IsDuplicateKeyError(err) {
		// Lost the insert race to another upsert; the row exists now
		err = s.articles.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored)
	}
	if err != nil {
		return err
	}
	fillCommentArticleIDs(&stored)
	*article = stored
	return nil
}

func (s *articleStore) Get(ctx context.Context, id string) (*models.Article, error) {
	var article models.Article
	err := s.articles.FindOne(ctx, bson.M{"_id": id}).Decode(&article)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrArticleNotFound
	}
	if err != nil {
		return nil, err
	}
	fillCommentArticleIDs(&article)
	return &article, nil
}

func (s *articleStore) AddComment(ctx context.Context, articleID string, comment *models.Comment) error {
	if comment == nil || strings.TrimSpace(comment.Text) == "" {
		return repository.ErrInvalidInput
	}
	comment.Text = strings.TrimSpace(comment.Text)
	comment.ArticleID = articleID
	comment.Prepare()

	res, err := s.articles.UpdateOne(ctx,
		bson.M{"_id": articleID},
		bson.M{"$push": bson.M{"comments": comment}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrArticleNotFound
	}
	return nil
}

func (s *articleStore) Comments(ctx context.Context, articleID string) ([]models.Comment, error) {
	article, err := s.Get(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if article.Comments == nil {
		return []models.Comment{}, nil
	}
	return article.Comments, nil
}

func fillCommentArticleIDs(article *models.Article) {
	for i := range article.Comments {
		article.Comments[i].ArticleID = article.ID
	}
}
