// Package docstore implements the repository interfaces on MongoDB. Comments
// are embedded in their article document; counters and pins rely on unique
// indexes plus atomic update operators.
package docstore

import (
	"context"
	"fmt"
	"time"

	"github.com/zfogg/dailybrief/internal/logger"
	"github.com/zfogg/dailybrief/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const (
	articlesCollection = "articles"
	ratingsCollection  = "topic_ratings"
	pinsCollection     = "pinned_articles"
	usersCollection    = "users"
)

// Client owns the MongoDB connection
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials MongoDB and verifies the connection
func Connect(ctx context.Context, uri, database string) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Log.Info("✅ MongoDB connected successfully", zap.String("database", database))
	return &Client{client: client, db: client.Database(database)}, nil
}

// EnsureIndexes creates the indexes the stores depend on for correctness
func (c *Client) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		articlesCollection: {
			{Keys: bson.D{{Key: "date", Value: 1}, {Key: "topic", Value: 1}, {Key: "created_at", Value: 1}}},
			{
				Keys: bson.D{{Key: "date", Value: 1}, {Key: "topic", Value: 1}},
				Options: options.Index().
					SetName("analysis_key").
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"kind": "analysis"}),
			},
		},
		ratingsCollection: {
			{Keys: bson.D{{Key: "date", Value: 1}, {Key: "topic", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		pinsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "article_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "pinned_at", Value: -1}}},
		},
	}

	for name, models := range indexes {
		if _, err := c.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// Store returns repository implementations backed by this client
func (c *Client) Store() *repository.Store {
	return &repository.Store{
		Articles: &articleStore{articles: c.db.Collection(articlesCollection)},
		Ratings:  &ratingStore{ratings: c.db.Collection(ratingsCollection)},
		Pins: &pinStore{
			pins:     c.db.Collection(pinsCollection),
			articles: c.db.Collection(articlesCollection),
		},
		Users: &userStore{users: c.db.Collection(usersCollection)},
		Close: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return c.client.Disconnect(ctx)
		},
		Ping: func(ctx context.Context) error {
			return c.client.Ping(ctx, readpref.Primary())
		},
	}
}

// Drop removes the database. Used by tests.
func (c *Client) Drop(ctx context.Context) error {
	return c.db.Drop(ctx)
}
