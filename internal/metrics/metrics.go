package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal     prometheus.CounterVec
	HTTPRequestDuration   prometheus.HistogramVec
	HTTPResponseSize      prometheus.HistogramVec
	HTTPActiveConnections prometheus.GaugeVec

	// Rate limiting metrics
	RateLimitExceededTotal prometheus.CounterVec

	// Redis metrics
	RedisOperationsTotal prometheus.CounterVec

	// Content pipeline metrics
	ContentLookupsTotal      prometheus.CounterVec
	GenerationRequestsTotal  prometheus.CounterVec
	GenerationDuration       prometheus.HistogramVec
	GenerationCollapsedTotal prometheus.Counter
	ParseResultsTotal        prometheus.CounterVec

	// Engagement metrics
	VotesTotal    prometheus.CounterVec
	PinsTotal     prometheus.CounterVec
	CommentsTotal prometheus.Counter

	// Feed ingestion metrics
	FeedFetchesTotal prometheus.CounterVec
	FeedEntriesTotal prometheus.CounterVec

	// Database metrics
	DBQueryDuration prometheus.HistogramVec

	// Error metrics
	ErrorsTotal prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			// HTTP metrics
			HTTPRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
				},
				[]string{"method", "path", "status"},
			),
			HTTPResponseSize: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_response_size_bytes",
					Help:    "HTTP response size in bytes",
					Buckets: prometheus.ExponentialBuckets(100, 10, 7),
				},
				[]string{"method", "path", "status"},
			),
			HTTPActiveConnections: *promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "http_active_connections",
					Help: "Number of currently active HTTP connections",
				},
				[]string{"method", "path"},
			),

			// Rate limiting metrics
			RateLimitExceededTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Total number of rate limit violations",
				},
				[]string{"endpoint", "method"},
			),

			// Redis metrics
			RedisOperationsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "redis_operations_total",
					Help: "Total number of Redis operations",
				},
				[]string{"operation", "status"},
			),

			// Content pipeline metrics
			ContentLookupsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "content_lookups_total",
					Help: "Article lookups by topic scope and whether content was stored",
				},
				[]string{"scope", "result"},
			),
			GenerationRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "generation_requests_total",
					Help: "Calls to the text model by client, task and outcome",
				},
				[]string{"client", "task", "outcome"},
			),
			GenerationDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "generation_duration_seconds",
					Help:    "Text model latency in seconds",
					Buckets: []float64{.25, .5, 1, 2, 3, 5, 10, 20, 30, 60},
				},
				[]string{"client", "task"},
			),
			GenerationCollapsedTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "generation_collapsed_total",
					Help: "Generation requests that joined an identical in-flight call",
				},
			),
			ParseResultsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "parse_results_total",
					Help: "Parsed model outputs by parser tier",
				},
				[]string{"tier"},
			),

			// Engagement metrics
			VotesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "topic_votes_total",
					Help: "Topic rating votes by kind",
				},
				[]string{"vote"},
			),
			PinsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "article_pins_total",
					Help: "Pin and unpin operations",
				},
				[]string{"action"},
			),
			CommentsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "article_comments_total",
					Help: "Comments posted on articles",
				},
			),

			// Feed ingestion metrics
			FeedFetchesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "feed_fetches_total",
					Help: "RSS feed fetches by topic and status",
				},
				[]string{"topic", "status"},
			),
			FeedEntriesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "feed_entries_total",
					Help: "Feed entries seen during ingestion by outcome",
				},
				[]string{"topic", "outcome"},
			),

			DBQueryDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "db_query_duration_seconds",
					Help:    "Duration of GORM statements by operation and table",
					Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
				},
				[]string{"operation", "table"},
			),

			// Error metrics
			ErrorsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "errors_total",
					Help: "Total number of errors by type",
				},
				[]string{"error_type", "endpoint"},
			),
		}
	})
	return instance
}

// Get returns the global metrics instance
func Get() *Metrics {
	if instance == nil {
		return Initialize()
	}
	return instance
}
