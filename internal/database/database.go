package database

import (
	"fmt"
	"time"

	"github.com/zfogg/dailybrief/internal/config"
	"github.com/zfogg/dailybrief/internal/logger"
	"github.com/zfogg/dailybrief/internal/models"
	"github.com/zfogg/dailybrief/internal/telemetry"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the database connection
var DB *gorm.DB

// Initialize opens the relational store selected by cfg.StoreBackend and
// stores it in DB.
func Initialize(cfg *config.Config) error {
	gormLogger := gormlogger.Default.LogMode(gormlogger.Warn)
	if cfg.Environment == "development" && cfg.LogLevel == "debug" {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err = OpenPostgres(cfg.DatabaseURL, gormLogger)
	case config.BackendSQLite:
		db, err = OpenSQLite(cfg.SQLitePath, gormLogger)
	default:
		return fmt.Errorf("store backend %q is not relational", cfg.StoreBackend)
	}
	if err != nil {
		return err
	}

	if cfg.OTelEnabled {
		if err := db.Use(telemetry.GORMTracingPlugin()); err != nil {
			logger.WarnWithFields("Failed to register database tracing plugin", err)
		}
	}

	DB = db
	logger.Log.Info("✅ Database connected successfully", zap.String("backend", cfg.StoreBackend))
	return nil
}

// OpenPostgres connects to PostgreSQL and configures the connection pool
func OpenPostgres(dsn string, gormLogger gormlogger.Interface) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:  gormLogger,
		NowFunc: nowUTC,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// OpenSQLite opens a SQLite database. path may be a file or an in-memory DSN
// such as "file:test?mode=memory&cache=shared". SQLite serializes writers, so
// the pool is capped at one connection.
func OpenSQLite(path string, gormLogger gormlogger.Interface) (*gorm.DB, error) {
	if gormLogger == nil {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:                                   gormLogger,
		NowFunc:                                  nowUTC,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// Migrate runs auto-migration for all models on the global DB
func Migrate() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	return MigrateDB(DB)
}

// MigrateDB runs auto-migration and index creation on db
func MigrateDB(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Article{},
		&models.Comment{},
		&models.PinnedArticle{},
		&models.TopicRating{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logger.Log.Info("✅ Database migrations completed")
	return nil
}

// createIndexes creates the indexes gorm tags cannot express. The statements
// are valid on both PostgreSQL and SQLite.
func createIndexes(db *gorm.DB) error {
	statements := []string{
		// A custom-topic analysis is a singleton per (date, topic)
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_articles_analysis_key ON articles (date, topic) WHERE kind = 'analysis'",
		"CREATE INDEX IF NOT EXISTS idx_articles_date_created ON articles (date, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_article_comments_article_created ON article_comments (article_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_pinned_articles_user_pinned ON pinned_articles (user_id, pinned_at DESC)",
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health checks database connectivity
func Health() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
