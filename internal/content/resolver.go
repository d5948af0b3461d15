// Package content decides whether a (date, topic) request is served from the
// store or needs an explicit generation, and persists generated results.
package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zfogg/dailybrief/internal/logger"
	"github.com/zfogg/dailybrief/internal/metrics"
	"github.com/zfogg/dailybrief/internal/models"
	"github.com/zfogg/dailybrief/internal/parser"
	"github.com/zfogg/dailybrief/internal/repository"
	"github.com/zfogg/dailybrief/internal/telemetry"
	"github.com/zfogg/dailybrief/internal/topics"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	ErrInvalidDate        = errors.New("date must be formatted as YYYY-MM-DD")
	ErrDateOutOfRange     = errors.New("date is outside the available range")
	ErrUnknownTopic       = errors.New("unknown topic")
	ErrPastDateGeneration = errors.New("custom topics can only be generated for the latest date")
	ErrGenerationFailed   = errors.New("generation failed")
	ErrStorage            = errors.New("storage failure")
)

// Generator writes a headline and analysis for a topic label on a date
type Generator interface {
	Headline(ctx context.Context, label, date string) (parser.Result, error)
}

// TopicRef is a resolved global or custom topic
type TopicRef struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Emoji  string `json:"emoji"`
	Custom bool   `json:"custom"`
}

// Resolution is what is stored for a (date, topic) and what the caller may do next
type Resolution struct {
	Date        string
	Topic       TopicRef
	Articles    []models.Article
	Generated   bool
	CanGenerate bool
}

// Generation is the outcome of an explicit generation request
type Generation struct {
	Headline string
	Analysis string
	Tier     parser.Tier
	Article  *models.Article
}

// Options configure the date window
type Options struct {
	// LatestDate pins the newest servable day (YYYY-MM-DD). Empty means today in UTC.
	LatestDate string
	// WindowDays is how many days, ending at the latest date, can be served
	WindowDays int
	// Now overrides the clock in tests
	Now func() time.Time
}

// Resolver orchestrates lookups and generations
type Resolver struct {
	articles  repository.ArticleRepository
	users     repository.UserRepository
	generator Generator
	tracker   Tracker
	opts      Options
	group     singleflight.Group
}

// NewResolver creates a resolver
func NewResolver(articles repository.ArticleRepository, users repository.UserRepository, generator Generator, tracker Tracker, opts Options) *Resolver {
	if opts.WindowDays < 1 {
		opts.WindowDays = 7
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if tracker == nil {
		tracker = NewMemoryTracker()
	}
	return &Resolver{
		articles:  articles,
		users:     users,
		generator: generator,
		tracker:   tracker,
		opts:      opts,
	}
}

// Window returns the first and latest servable dates
func (r *Resolver) Window() (first, latest string) {
	l := r.latest()
	return l.AddDate(0, 0, -(r.opts.WindowDays - 1)).Format(models.DateLayout), l.Format(models.DateLayout)
}

func (r *Resolver) latest() time.Time {
	if r.opts.LatestDate != "" {
		if t, err := time.Parse(models.DateLayout, r.opts.LatestDate); err == nil {
			return t
		}
	}
	now := r.opts.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// checkDate validates the format and the window and reports whether date is the latest day
func (r *Resolver) checkDate(date string) (bool, error) {
	d, err := time.Parse(models.DateLayout, date)
	if err != nil || d.Format(models.DateLayout) != date {
		return false, ErrInvalidDate
	}
	first, latest := r.Window()
	if date < first || date > latest {
		return false, fmt.Errorf("%w: %s to %s", ErrDateOutOfRange, first, latest)
	}
	return date == latest, nil
}

func (r *Resolver) resolveTopic(ctx context.Context, userID, key string) (TopicRef, error) {
	if t, ok := topics.Lookup(key); ok {
		return TopicRef{ID: t.ID, Label: t.Label, Emoji: t.Emoji}, nil
	}
	if !topics.IsCustomID(key) {
		return TopicRef{}, fmt.Errorf("%w: %q", ErrUnknownTopic, key)
	}

	user, err := r.users.Get(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return TopicRef{}, fmt.Errorf("%w: %q", ErrUnknownTopic, key)
	}
	if err != nil {
		return TopicRef{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	custom, ok := topics.FindCustom(user.CustomTopics, key)
	if !ok {
		return TopicRef{}, fmt.Errorf("%w: %q", ErrUnknownTopic, key)
	}
	return TopicRef{ID: custom.ID, Label: custom.Label, Emoji: custom.Emoji, Custom: true}, nil
}

// Resolve returns stored content for (date, topic). A miss is not an error
// and never triggers generation.
func (r *Resolver) Resolve(ctx context.Context, userID, date, topicKey string) (*Resolution, error) {
	ctx, span := telemetry.GetBusinessEvents().TraceResolve(ctx, date, topicKey)
	defer span.End()

	isLatest, err := r.checkDate(date)
	if err != nil {
		return nil, err
	}
	topic, err := r.resolveTopic(ctx, userID, topicKey)
	if err != nil {
		return nil, err
	}

	articles, err := r.articles.Find(ctx, date, topic.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	generated, err := r.tracker.IsMarked(ctx, userID, date, topic.ID)
	if err != nil {
		generated = false
	}

	scope := "global"
	if topic.Custom {
		scope = "custom"
	}
	result := "hit"
	if len(articles) == 0 {
		result = "miss"
	}
	metrics.Get().ContentLookupsTotal.WithLabelValues(scope, result).Inc()

	return &Resolution{
		Date:        date,
		Topic:       topic,
		Articles:    articles,
		Generated:   generated,
		CanGenerate: !topic.Custom || isLatest,
	}, nil
}

// Generated reports whether the user already generated (date, topic)
func (r *Resolver) Generated(ctx context.Context, userID, date, topic string) (bool, error) {
	return r.tracker.IsMarked(ctx, userID, date, topic)
}

// Generate calls the model for (date, topic), stores the result and marks it
// generated for the user. Concurrent identical requests share one model call;
// later requests always call the model again.
func (r *Resolver) Generate(ctx context.Context, userID, date, topicKey string) (*Generation, error) {
	isLatest, err := r.checkDate(date)
	if err != nil {
		return nil, err
	}
	topic, err := r.resolveTopic(ctx, userID, topicKey)
	if err != nil {
		return nil, err
	}
	if topic.Custom && !isLatest {
		return nil, ErrPastDateGeneration
	}

	key := userID + "|" + date + "|" + topic.ID
	// The shared call must not die with whichever caller started it
	shared := context.WithoutCancel(ctx)
	v, err, collapsed := r.group.Do(key, func() (interface{}, error) {
		return r.generate(shared, userID, date, topic)
	})
	if collapsed {
		metrics.Get().GenerationCollapsedTotal.Inc()
	}
	if err != nil {
		return nil, err
	}

	// Callers sharing a result get their own copy of the article
	g := *v.(*Generation)
	article := *g.Article
	g.Article = &article
	return &g, nil
}

func (r *Resolver) generate(ctx context.Context, userID, date string, topic TopicRef) (*Generation, error) {
	ctx, span := telemetry.GetBusinessEvents().TraceGenerate(ctx, date, topic.ID, topic.Custom)
	defer span.End()

	result, err := r.generator.Headline(ctx, topic.Label, date)
	if err != nil {
		logger.Log.Warn("Generation failed",
			logger.WithUserID(userID),
			logger.WithDate(date),
			logger.WithTopic(topic.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	article := &models.Article{
		Date:     date,
		Topic:    topic.ID,
		Emoji:    topic.Emoji,
		Headline: result.Headline,
		Text:     result.Analysis,
		Sources:  models.StringList{},
	}
	if topic.Custom {
		err = r.articles.Upsert(ctx, article)
	} else {
		err = r.articles.Append(ctx, article)
	}
	if err != nil {
		logger.Log.Error("Failed to store generated article",
			logger.WithDate(date),
			logger.WithTopic(topic.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if err := r.tracker.Mark(ctx, userID, date, topic.ID); err != nil {
		logger.WarnWithFields("Failed to mark topic as generated", err)
	}

	logger.Log.Info("Generated article",
		logger.WithUserID(userID),
		logger.WithDate(date),
		logger.WithTopic(topic.ID),
		logger.WithArticleID(article.ID),
		zap.String("tier", result.Tier.String()),
	)

	return &Generation{
		Headline: result.Headline,
		Analysis: result.Analysis,
		Tier:     result.Tier,
		Article:  article,
	}, nil
}
