package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zfogg/dailybrief/internal/auth"
	"github.com/zfogg/dailybrief/internal/cache"
	"github.com/zfogg/dailybrief/internal/config"
	"github.com/zfogg/dailybrief/internal/content"
	"github.com/zfogg/dailybrief/internal/feeds"
	"github.com/zfogg/dailybrief/internal/generation"
	"github.com/zfogg/dailybrief/internal/handlers"
	"github.com/zfogg/dailybrief/internal/logger"
	"github.com/zfogg/dailybrief/internal/middleware"
	"github.com/zfogg/dailybrief/internal/queue"
	"github.com/zfogg/dailybrief/internal/storage"
	"github.com/zfogg/dailybrief/internal/telemetry"
	"go.uber.org/zap"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		os.Stderr.WriteString("Warning: .env file not found, using system environment variables\n")
	}

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Invalid configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Close()

	logger.Log.Info("=== Daily Brief server starting ===", zap.String("environment", cfg.Environment))

	tp, err := telemetry.InitTracer(telemetry.Config{
		ServiceName:  telemetry.ServiceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTelEndpoint,
		Enabled:      cfg.OTelEnabled,
		SamplingRate: cfg.OTelSamplingRate,
	})
	if err != nil {
		logger.WarnWithFields("Tracing disabled", err)
	}

	ctx := context.Background()

	backend, err := storage.Open(ctx, cfg, true)
	if err != nil {
		logger.FatalWithFields("Failed to open store", err)
	}
	defer backend.Close()

	// Redis is optional: without it rate limits and generated markers are per-process
	var redisClient *cache.RedisClient
	if rc, err := cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword); err != nil {
		logger.WarnWithFields("Redis unavailable, continuing without it", err)
	} else {
		redisClient = rc
		defer redisClient.Close()
	}

	if cfg.JWTSecret == "" {
		logger.FatalWithFields("JWT_SECRET environment variable is required", nil)
	}
	authService := auth.NewService([]byte(cfg.JWTSecret))

	genClient, err := generation.NewClientFromConfig(ctx, cfg)
	if err != nil {
		logger.FatalWithFields("Failed to initialize generation client", err)
	}
	genService := generation.NewService(genClient, cfg.GenerationTimeout)

	// Markers outlive the window by a day so they expire with the content they describe
	markerTTL := time.Duration(cfg.ContentWindowDays+1) * 24 * time.Hour
	resolver := content.NewResolver(
		backend.Articles,
		backend.Users,
		genService,
		content.NewTracker(redisClient, markerTTL),
		content.Options{LatestDate: cfg.ContentLatestDate, WindowDays: cfg.ContentWindowDays},
	)

	h := handlers.NewHandlers(backend.Store, resolver, genService)

	// Scheduled RSS ingestion
	var ingestQueue *queue.IngestQueue
	if cfg.FeedIngestInterval > 0 {
		ingestQueue = queue.NewIngestQueue(feeds.NewIngester(nil, backend.Articles, feeds.Options{}), 2)
		ingestQueue.Start()
		defer ingestQueue.Stop()

		schedCtx, stopSchedule := context.WithCancel(ctx)
		defer stopSchedule()
		go ingestQueue.RunDaily(schedCtx, cfg.FeedIngestInterval, nil)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.TracingMiddleware(telemetry.ServiceName))
	r.Use(middleware.SpanEnrichmentMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	// CORS middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Origins()
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"}
	r.Use(cors.New(corsConfig))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h.RegisterRoutes(
		r.Group("/api/v1"),
		middleware.AuthMiddleware(authService, backend.Users),
		middleware.RedisRateLimitMiddleware(redisClient, middleware.GenerationRateLimitConfig(cfg.RateLimitPerMin)),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info("📰 Daily Brief backend listening",
			zap.String("port", cfg.Port),
			zap.String("store", backend.Name),
			zap.String("generator", genService.ClientName()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.FatalWithFields("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if ingestQueue != nil {
		ingestQueue.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithFields("Server forced to shutdown", err)
	}
	if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
		logger.WarnWithFields("Tracer shutdown failed", err)
	}

	logger.Log.Info("Server exited")
}
