package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// BusinessEvents provides helper methods for tracing domain-specific operations
// beyond the HTTP and database spans.
type BusinessEvents struct {
	tracer trace.Tracer
}

// NewBusinessEvents creates a new business events tracer
func NewBusinessEvents() *BusinessEvents {
	return &BusinessEvents{
		tracer: otel.Tracer("business-events"),
	}
}

// TraceResolve creates a span for a (date, topic) content lookup
func (be *BusinessEvents) TraceResolve(ctx context.Context, date, topic string) (context.Context, trace.Span) {
	return be.tracer.Start(ctx, "content.resolve",
		trace.WithAttributes(
			attribute.String("content.date", date),
			attribute.String("content.topic", topic),
		),
	)
}

// TraceGenerate creates a span for an explicit generation
func (be *BusinessEvents) TraceGenerate(ctx context.Context, date, topic string, custom bool) (context.Context, trace.Span) {
	return be.tracer.Start(ctx, "content.generate",
		trace.WithAttributes(
			attribute.String("content.date", date),
			attribute.String("content.topic", topic),
			attribute.Bool("content.custom_topic", custom),
		),
	)
}

// EngagementEventAttrs describes a vote, pin or comment
type EngagementEventAttrs struct {
	ArticleID string
	Date      string
	Topic     string
	Vote      string
}

// TraceEngagement creates a span for an engagement write such as "vote", "pin" or "comment"
func (be *BusinessEvents) TraceEngagement(ctx context.Context, action string, attrs EngagementEventAttrs) (context.Context, trace.Span) {
	ctx, span := be.tracer.Start(ctx, "engagement."+action)

	// Record optional attributes only if set
	if attrs.ArticleID != "" {
		span.SetAttributes(attribute.String("article.id", attrs.ArticleID))
	}
	if attrs.Date != "" {
		span.SetAttributes(attribute.String("content.date", attrs.Date))
	}
	if attrs.Topic != "" {
		span.SetAttributes(attribute.String("content.topic", attrs.Topic))
	}
	if attrs.Vote != "" {
		span.SetAttributes(attribute.String("engagement.vote", attrs.Vote))
	}

	return ctx, span
}

// TraceFeedIngest creates a span for ingesting one topic's feeds for a date
func (be *BusinessEvents) TraceFeedIngest(ctx context.Context, topic, date string, feeds int) (context.Context, trace.Span) {
	return be.tracer.Start(ctx, "feeds.ingest",
		trace.WithAttributes(
			attribute.String("content.topic", topic),
			attribute.String("content.date", date),
			attribute.Int("feeds.count", feeds),
		),
	)
}

var globalEvents = NewBusinessEvents()

// GetBusinessEvents returns the shared tracer helper
func GetBusinessEvents() *BusinessEvents {
	return globalEvents
}
