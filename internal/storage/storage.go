package storage

import (
	"context"
	"fmt"

	"github.com/zfogg/dailybrief/internal/config"
	"github.com/zfogg/dailybrief/internal/database"
	"github.com/zfogg/dailybrief/internal/docstore"
	"github.com/zfogg/dailybrief/internal/logger"
	"github.com/zfogg/dailybrief/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Backend is an opened content store plus the handle it was built on.
// Exactly one of DB and Mongo is set.
type Backend struct {
	*repository.Store

	Name  string
	DB    *gorm.DB
	Mongo *docstore.Client
}

// Open connects the store selected by cfg.StoreBackend. When migrate is set
// the schema or indexes are created before returning.
func Open(ctx context.Context, cfg *config.Config, migrate bool) (*Backend, error) {
	switch cfg.StoreBackend {
	case config.BackendMongo:
		client, err := docstore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := client.EnsureIndexes(ctx); err != nil {
				_ = client.Store().Close()
				return nil, fmt.Errorf("failed to create indexes: %w", err)
			}
		}
		logger.Log.Info("Using document store", zap.String("database", cfg.MongoDatabase))
		return &Backend{Store: client.Store(), Name: cfg.StoreBackend, Mongo: client}, nil

	case config.BackendPostgres, config.BackendSQLite:
		if err := database.Initialize(cfg); err != nil {
			return nil, err
		}
		if migrate {
			if err := database.Migrate(); err != nil {
				_ = database.Close()
				return nil, err
			}
		}
		return FromDB(database.DB, cfg.StoreBackend), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// FromDB wraps an already opened gorm connection
func FromDB(db *gorm.DB, name string) *Backend {
	return &Backend{Store: repository.NewGormStore(db), Name: name, DB: db}
}
