package telemetry

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zfogg/dailybrief/internal/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	spanInstanceKey  = "telemetry:span"
	startInstanceKey = "telemetry:start"

	maxStatementLen = 500
)

// GORMTracingPlugin returns a GORM plugin that wraps every statement in a
// "db.<operation>" span and records its latency in db_query_duration_seconds.
func GORMTracingPlugin() gorm.Plugin {
	return &statementTracer{}
}

type statementTracer struct{}

func (statementTracer) Name() string { return "telemetry:tracing" }

// gormRegistrar is the subset of gorm's callback builder the plugin needs.
type gormRegistrar interface {
	Register(name string, fn func(*gorm.DB)) error
}

func (p statementTracer) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		operation string
		before    gormRegistrar
		after     gormRegistrar
	}{
		{"select", cb.Query().Before("gorm:query"), cb.Query().After("gorm:query")},
		{"insert", cb.Create().Before("gorm:create"), cb.Create().After("gorm:create")},
		{"update", cb.Update().Before("gorm:update"), cb.Update().After("gorm:update")},
		{"delete", cb.Delete().Before("gorm:delete"), cb.Delete().After("gorm:delete")},
		{"raw", cb.Raw().Before("gorm:raw"), cb.Raw().After("gorm:raw")},
	}

	for _, h := range hooks {
		operation := h.operation
		if err := h.before.Register("telemetry:before_"+operation, func(tx *gorm.DB) {
			p.begin(tx, operation)
		}); err != nil {
			return fmt.Errorf("register %s start hook: %w", operation, err)
		}
		if err := h.after.Register("telemetry:after_"+operation, func(tx *gorm.DB) {
			p.finish(tx, operation)
		}); err != nil {
			return fmt.Errorf("register %s finish hook: %w", operation, err)
		}
	}
	return nil
}

func (statementTracer) begin(tx *gorm.DB, operation string) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	_, span := otel.Tracer("gorm").Start(ctx, "db."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", dbSystem(tx)),
			attribute.String("db.operation", strings.ToUpper(operation)),
		),
	)
	tx.InstanceSet(spanInstanceKey, span)
	tx.InstanceSet(startInstanceKey, time.Now())
}

func (statementTracer) finish(tx *gorm.DB, operation string) {
	raw, ok := tx.InstanceGet(spanInstanceKey)
	if !ok {
		return
	}
	span, ok := raw.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	table := tableName(tx)
	span.SetAttributes(attribute.String("db.table", table))

	if raw, ok := tx.InstanceGet(startInstanceKey); ok {
		if started, ok := raw.(time.Time); ok {
			elapsed := time.Since(started)
			span.SetAttributes(attribute.Int64("db.duration_ms", elapsed.Milliseconds()))
			metrics.Get().DBQueryDuration.WithLabelValues(operation, table).Observe(elapsed.Seconds())
		}
	}

	if stmt := tx.Statement.SQL.String(); stmt != "" {
		span.SetAttributes(attribute.String("db.statement", truncateStatement(stmt)))
	}
	if tx.RowsAffected > 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", tx.RowsAffected))
	}

	// A miss on First/Take is an answer, not a failure.
	if err := tx.Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func tableName(tx *gorm.DB) string {
	if tx.Statement.Table != "" {
		return tx.Statement.Table
	}
	if tx.Statement.Schema != nil && tx.Statement.Schema.Table != "" {
		return tx.Statement.Schema.Table
	}
	return "unknown"
}

func truncateStatement(stmt string) string {
	if len(stmt) <= maxStatementLen {
		return stmt
	}
	return stmt[:maxStatementLen] + "..."
}

// dbSystem maps the gorm dialect to the semantic-convention system name
func dbSystem(tx *gorm.DB) string {
	if tx.Dialector == nil {
		return "unknown"
	}
	if name := tx.Dialector.Name(); name != "postgres" {
		return name
	}
	return "postgresql"
}
