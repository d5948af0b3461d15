package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// UserAgent is sent on outbound requests that do not set their own.
const UserAgent = "dailybrief/1.0 (+https://github.com/zfogg/dailybrief)"

// HTTPClientConfig describes an outbound client. ServiceName prefixes span
// names ("rss GET example.org").
type HTTPClientConfig struct {
	ServiceName string
	Timeout     time.Duration
}

// NewInstrumentedHTTPClient returns a client whose requests carry trace
// context and produce client spans.
func NewInstrumentedHTTPClient(cfg HTTPClientConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	service := cfg.ServiceName
	formatter := func(_ string, r *http.Request) string {
		if service == "" {
			return r.Method + " " + r.URL.Host
		}
		return service + " " + r.Method + " " + r.URL.Host
	}

	transport := otelhttp.NewTransport(
		userAgentTransport{next: http.DefaultTransport},
		otelhttp.WithSpanNameFormatter(formatter),
		otelhttp.WithSpanOptions(trace.WithSpanKind(trace.SpanKindClient)),
	)
	return &http.Client{Timeout: timeout, Transport: transport}
}

type userAgentTransport struct {
	next http.RoundTripper
}

func (t userAgentTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if r.Header.Get("User-Agent") != "" {
		return t.next.RoundTrip(r)
	}
	clone := r.Clone(r.Context())
	clone.Header.Set("User-Agent", UserAgent)
	return t.next.RoundTrip(clone)
}

// ExternalServiceCallAttrs names a call to a dependency such as the text
// generator or a feed host.
type ExternalServiceCallAttrs struct {
	Service    string
	Operation  string
	ResourceID string
}

// TraceExternalCall opens a "<service>.<operation>" client span.
func TraceExternalCall(ctx context.Context, attrs ExternalServiceCallAttrs) (context.Context, trace.Span) {
	kv := []attribute.KeyValue{
		attribute.String("external.service", attrs.Service),
		attribute.String("external.operation", attrs.Operation),
	}
	if attrs.ResourceID != "" {
		kv = append(kv, attribute.String("external.resource_id", attrs.ResourceID))
	}
	return otel.Tracer("external-api").Start(ctx, attrs.Service+"."+attrs.Operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(kv...),
	)
}

// RecordExternalCallError marks span failed. Deadline and cancellation
// errors are tagged so they can be told apart from upstream failures.
func RecordExternalCallError(span trace.Span, err error, retryable bool) {
	span.SetAttributes(attribute.Bool("external.error.retryable", retryable))
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		span.SetAttributes(attribute.String("external.error.kind", "timeout"))
	case errors.Is(err, context.Canceled):
		span.SetAttributes(attribute.String("external.error.kind", "canceled"))
	default:
		span.SetAttributes(attribute.String("external.error.kind", "upstream"))
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// RecordExternalCallSuccess marks span ok, noting the payload size when known.
func RecordExternalCallSuccess(span trace.Span, responseSize int) {
	if responseSize > 0 {
		span.SetAttributes(attribute.Int("external.response.size", responseSize))
	}
	span.SetStatus(codes.Ok, "")
}
