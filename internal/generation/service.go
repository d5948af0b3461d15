package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zfogg/dailybrief/internal/logger"
	"github.com/zfogg/dailybrief/internal/metrics"
	"github.com/zfogg/dailybrief/internal/models"
	"github.com/zfogg/dailybrief/internal/parser"
	"github.com/zfogg/dailybrief/internal/telemetry"
	"go.uber.org/zap"
)

// Service builds prompts, bounds each call by a timeout and normalizes failures
// to ErrGenerationFailed.
type Service struct {
	client  Client
	timeout time.Duration
}

// NewService creates a generation service. A non-positive timeout disables the bound.
func NewService(client Client, timeout time.Duration) *Service {
	return &Service{client: client, timeout: timeout}
}

// ClientName reports the underlying client
func (s *Service) ClientName() string {
	return s.client.Name()
}

// Headline asks for a headline and analysis about a topic on a date
func (s *Service) Headline(ctx context.Context, label, date string) (parser.Result, error) {
	raw, err := s.complete(ctx, Request{
		Task:    TaskHeadline,
		Prompt:  headlinePrompt(label, date),
		Subject: label,
		Schema:  headlineSchema(),
	})
	if err != nil {
		return parser.Result{}, err
	}

	result := parser.Parse(raw)
	metrics.Get().ParseResultsTotal.WithLabelValues(result.Tier.String()).Inc()
	if result.Tier == parser.TierFallback {
		logger.Log.Debug("Model output was not structured, used line fallback",
			logger.WithTopic(label),
			zap.Int("raw_length", len(raw)),
		)
	}
	return result, nil
}

// SummarizeComments summarizes what commenters think about an article
func (s *Service) SummarizeComments(ctx context.Context, article *models.Article, comments []models.Comment) (string, error) {
	raw, err := s.complete(ctx, Request{
		Task:    TaskSummary,
		Prompt:  summaryPrompt(article, comments),
		Subject: article.Headline,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

// Answer responds to a question using only the article's content
func (s *Service) Answer(ctx context.Context, article *models.Article, question string) (string, error) {
	raw, err := s.complete(ctx, Request{
		Task:    TaskAnswer,
		Prompt:  answerPrompt(article, question),
		Subject: article.Headline,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

func (s *Service) complete(ctx context.Context, req Request) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	ctx, span := telemetry.TraceExternalCall(ctx, telemetry.ExternalServiceCallAttrs{
		Service:   s.client.Name(),
		Operation: string(req.Task),
	})
	defer span.End()

	m := metrics.Get()
	start := time.Now()
	raw, err := s.client.Complete(ctx, req)
	m.GenerationDuration.WithLabelValues(s.client.Name(), string(req.Task)).Observe(time.Since(start).Seconds())

	if err == nil && strings.TrimSpace(raw) == "" {
		err = ErrEmptyResponse
	}
	if err != nil {
		m.GenerationRequestsTotal.WithLabelValues(s.client.Name(), string(req.Task), "error").Inc()
		telemetry.RecordExternalCallError(span, err, true)
		logger.Log.Warn("Text generation failed",
			zap.String("client", s.client.Name()),
			zap.String("task", string(req.Task)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	m.GenerationRequestsTotal.WithLabelValues(s.client.Name(), string(req.Task), "success").Inc()
	telemetry.RecordExternalCallSuccess(span, len(raw))
	return raw, nil
}
