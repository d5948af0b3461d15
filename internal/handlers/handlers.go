package handlers

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/dailybrief/internal/content"
	"github.com/zfogg/dailybrief/internal/errors"
	"github.com/zfogg/dailybrief/internal/generation"
	"github.com/zfogg/dailybrief/internal/logger"
	"github.com/zfogg/dailybrief/internal/models"
	"github.com/zfogg/dailybrief/internal/repository"
	"github.com/zfogg/dailybrief/internal/telemetry"
	"github.com/zfogg/dailybrief/internal/util"
	"go.uber.org/zap"
)

// InsightGenerator answers follow-up requests about a stored article
type InsightGenerator interface {
	SummarizeComments(ctx context.Context, article *models.Article, comments []models.Comment) (string, error)
	Answer(ctx context.Context, article *models.Article, question string) (string, error)
}

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	store    *repository.Store
	resolver *content.Resolver
	insights InsightGenerator
	events   *telemetry.BusinessEvents
	started  time.Time
}

// NewHandlers creates a new handlers instance
func NewHandlers(store *repository.Store, resolver *content.Resolver, insights InsightGenerator) *Handlers {
	return &Handlers{
		store:    store,
		resolver: resolver,
		insights: insights,
		events:   telemetry.GetBusinessEvents(),
		started:  time.Now(),
	}
}

// respondContentError maps resolver errors to API errors
func respondContentError(c *gin.Context, err error) {
	switch {
	case stderrors.Is(err, content.ErrInvalidDate), stderrors.Is(err, content.ErrDateOutOfRange):
		util.RespondValidationError(c, "date", err.Error())
	case stderrors.Is(err, content.ErrUnknownTopic), stderrors.Is(err, content.ErrPastDateGeneration):
		util.RespondValidationError(c, "topic", err.Error())
	case stderrors.Is(err, content.ErrGenerationFailed):
		util.RespondGenerationFailed(c)
	default:
		logger.Log.Error("Content request failed",
			logger.WithRequestID(c.GetString(util.ContextRequestID)),
			zap.Error(err),
		)
		util.RespondWithAPIError(c, errors.InternalError("failed to load content"))
	}
}

// respondInsightError maps text model errors to API errors
func respondInsightError(c *gin.Context, err error) {
	if stderrors.Is(err, generation.ErrGenerationFailed) {
		util.RespondGenerationFailed(c)
		return
	}
	util.HandleStoreError(c, err, "article")
}
