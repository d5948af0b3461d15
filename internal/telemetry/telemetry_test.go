package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func attr(span sdktrace.ReadOnlySpan, key string) string {
	for _, kv := range span.Attributes() {
		if kv.Key == attribute.Key(key) {
			return kv.Value.Emit()
		}
	}
	return ""
}

func TestGORMTracingPlugin(t *testing.T) {
	recorder := recordSpans(t)

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Use(GORMTracingPlugin()))

	type note struct {
		ID   uint
		Text string
	}
	require.NoError(t, db.AutoMigrate(&note{}))

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&note{Text: "hello"}).Error)
	var notes []note
	require.NoError(t, db.WithContext(ctx).Find(&notes).Error)

	var names []string
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
		if span.Name() == "db.select" {
			assert.Equal(t, "sqlite", attr(span, "db.system"))
			assert.Equal(t, "notes", attr(span, "db.table"))
			assert.Contains(t, attr(span, "db.statement"), "SELECT")
		}
	}
	assert.Contains(t, names, "db.insert")
	assert.Contains(t, names, "db.select")
}

func TestInstrumentedHTTPClient(t *testing.T) {
	recorder := recordSpans(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("Traceparent"))
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	otel.SetTextMapPropagator(propagation.TraceContext{})

	client := NewInstrumentedHTTPClient(HTTPClientConfig{ServiceName: "rss"})
	ctx, span := TraceExternalCall(context.Background(), ExternalServiceCallAttrs{Service: "rss", Operation: "fetch"})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	RecordExternalCallSuccess(span, 0)
	span.End()

	var names []string
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	assert.Contains(t, names, "rss.fetch")
	assert.Contains(t, names, "rss GET "+req.URL.Host)
}

func TestInitTracerDisabled(t *testing.T) {
	tp, err := InitTracer(Config{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, tp)
	assert.NoError(t, Shutdown(context.Background(), nil))
}
