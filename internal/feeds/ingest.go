package feeds

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/zfogg/dailybrief/internal/logger"
	"github.com/zfogg/dailybrief/internal/metrics"
	"github.com/zfogg/dailybrief/internal/models"
	"github.com/zfogg/dailybrief/internal/repository"
	"github.com/zfogg/dailybrief/internal/telemetry"
	"github.com/zfogg/dailybrief/internal/topics"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options tunes an ingestion run
type Options struct {
	// Sources maps topic ids to feed URLs; DefaultSources when nil
	Sources map[string][]string
	// FeedTimeout bounds a single feed fetch
	FeedTimeout time.Duration
	// MaxPerTopic caps how many entries are stored per topic and date
	MaxPerTopic int
	// Concurrency caps simultaneous feed fetches
	Concurrency int
}

// Entry is a feed item kept for storage
type Entry struct {
	Headline  string
	Text      string
	Link      string
	Source    string
	Published time.Time
}

// Report summarizes one topic's ingestion
type Report struct {
	Topic   string
	Fetched int
	Failed  int
	Stored  int
}

// Ingester pulls the day's entries from RSS feeds into the article store
type Ingester struct {
	client   *http.Client
	articles repository.ArticleRepository
	opts     Options
}

// NewIngester creates an ingester. A nil client gets a traced default.
func NewIngester(client *http.Client, articles repository.ArticleRepository, opts Options) *Ingester {
	if opts.Sources == nil {
		opts.Sources = DefaultSources
	}
	if opts.FeedTimeout <= 0 {
		opts.FeedTimeout = 15 * time.Second
	}
	if opts.MaxPerTopic <= 0 {
		opts.MaxPerTopic = 5
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	if client == nil {
		client = telemetry.NewInstrumentedHTTPClient(telemetry.HTTPClientConfig{
			ServiceName: "rss",
			Timeout:     opts.FeedTimeout,
		})
	}
	return &Ingester{client: client, articles: articles, opts: opts}
}

// IngestAll ingests every global topic for date. One topic failing does not stop the others.
func (in *Ingester) IngestAll(ctx context.Context, date string) ([]Report, error) {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	var reports []Report
	var firstErr error
	for _, t := range topics.Global() {
		report, err := in.IngestTopic(ctx, t.ID, date)
		if err != nil {
			logger.Log.Error("Feed ingestion failed", logger.WithTopic(t.ID), logger.WithDate(date), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		reports = append(reports, *report)
	}
	if len(reports) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return reports, nil
}

// IngestTopic fetches a topic's feeds concurrently and appends the best entries
// published on date. Headlines already stored for (date, topic) are skipped.
func (in *Ingester) IngestTopic(ctx context.Context, topicID, date string) (*Report, error) {
	topic, ok := topics.Lookup(topicID)
	if !ok {
		return nil, fmt.Errorf("unknown topic %q", topicID)
	}
	day, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	sources := in.opts.Sources[topicID]
	ctx, span := telemetry.GetBusinessEvents().TraceFeedIngest(ctx, topicID, date, len(sources))
	defer span.End()

	report := &Report{Topic: topicID}
	var mu sync.Mutex
	var entries []Entry

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.opts.Concurrency)
	for _, src := range sources {
		g.Go(func() error {
			found, err := in.fetch(gctx, src, day)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// A dead feed is logged and skipped
				report.Failed++
				metrics.Get().FeedFetchesTotal.WithLabelValues(topicID, "error").Inc()
				logger.Log.Warn("Feed fetch failed", zap.String("feed", src), logger.WithTopic(topicID), zap.Error(err))
				return nil
			}
			report.Fetched++
			metrics.Get().FeedFetchesTotal.WithLabelValues(topicID, "success").Inc()
			entries = append(entries, found...)
			return nil
		})
	}
	_ = g.Wait()

	if len(sources) > 0 && report.Failed == len(sources) {
		span.SetStatus(codes.Error, "all feeds failed")
		return nil, fmt.Errorf("all %d feeds failed for %s", len(sources), topicID)
	}

	existing, err := in.articles.Find(ctx, date, topicID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to load stored articles: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, a := range existing {
		seen[normalizeWhitespace(a.Headline)] = true
	}

	for _, e := range selectEntries(entries, topicID, in.opts.MaxPerTopic, seen) {
		article := &models.Article{
			Date:     date,
			Topic:    topicID,
			Emoji:    topic.Emoji,
			Headline: e.Headline,
			Text:     e.Text,
			Sources:  models.StringList{e.Source},
		}
		if err := in.articles.Append(ctx, article); err != nil {
			span.RecordError(err)
			return report, fmt.Errorf("failed to store article: %w", err)
		}
		report.Stored++
	}

	logger.Log.Info("Ingested feeds",
		logger.WithTopic(topicID),
		logger.WithDate(date),
		zap.Int("feeds_ok", report.Fetched),
		zap.Int("feeds_failed", report.Failed),
		zap.Int("stored", report.Stored),
	)
	return report, nil
}

// fetch parses one feed and returns its entries published on day
func (in *Ingester) fetch(ctx context.Context, url string, day time.Time) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, in.opts.FeedTimeout)
	defer cancel()

	fp := gofeed.NewParser()
	fp.Client = in.client
	feed, err := fp.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, err
	}

	var out []Entry
	for _, item := range feed.Items {
		published := item.PublishedParsed
		if published == nil {
			published = item.UpdatedParsed
		}
		if published == nil || !sameDay(*published, day) {
			continue
		}
		text := item.Description
		if text == "" {
			text = item.Content
		}
		out = append(out, Entry{
			Headline:  normalizeWhitespace(item.Title),
			Text:      StripHTML(text),
			Link:      item.Link,
			Source:    url,
			Published: published.UTC(),
		})
	}
	return out, nil
}

// selectEntries drops uninteresting and duplicate headlines and keeps the newest max
func selectEntries(entries []Entry, topicID string, max int, seen map[string]bool) []Entry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Published.After(entries[j].Published)
	})

	out := make([]Entry, 0, max)
	for _, e := range entries {
		switch {
		case e.Headline == "" || !Interesting(e.Headline):
			metrics.Get().FeedEntriesTotal.WithLabelValues(topicID, "filtered").Inc()
		case seen[e.Headline]:
			metrics.Get().FeedEntriesTotal.WithLabelValues(topicID, "duplicate").Inc()
		case len(out) >= max:
			metrics.Get().FeedEntriesTotal.WithLabelValues(topicID, "over_limit").Inc()
		default:
			seen[e.Headline] = true
			out = append(out, e)
			metrics.Get().FeedEntriesTotal.WithLabelValues(topicID, "stored").Inc()
		}
	}
	return out
}

func sameDay(t, day time.Time) bool {
	y1, m1, d1 := t.UTC().Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
