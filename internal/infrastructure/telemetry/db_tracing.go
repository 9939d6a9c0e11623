package telemetry

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool          // include query variables (never in production)
	SlowQueryThresh time.Duration // default 200ms
	DBSystem        string        // postgresql or sqlite
}

// RegisterDBTracing installs the otelgorm plugin plus callbacks that flag slow
// queries and mark failed statements on the active span.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.SlowQueryThresh == 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	cb := &slowQueryCallback{threshold: cfg.SlowQueryThresh}
	if err := cb.register(db); err != nil {
		return err
	}

	if logger != nil {
		logger.Info("Database tracing enabled",
			zap.Bool("log_full_sql", cfg.LogFullSQL),
			zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
			zap.String("db_system", cfg.DBSystem),
		)
	}
	return nil
}

type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

type slowQueryCallback struct {
	threshold time.Duration
}

func (c *slowQueryCallback) before(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
	}
}

func (c *slowQueryCallback) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))

	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if start, ok := ctx.Value(queryStartTimeKey).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > c.threshold {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}

func (c *slowQueryCallback) register(db *gorm.DB) error {
	cbs := db.Callback()
	if err := cbs.Create().Before("gorm:create").Register("otel_timing:before_create", c.before); err != nil {
		return err
	}
	if err := cbs.Query().Before("gorm:query").Register("otel_timing:before_query", c.before); err != nil {
		return err
	}
	if err := cbs.Update().Before("gorm:update").Register("otel_timing:before_update", c.before); err != nil {
		return err
	}
	if err := cbs.Delete().Before("gorm:delete").Register("otel_timing:before_delete", c.before); err != nil {
		return err
	}
	if err := cbs.Raw().Before("gorm:raw").Register("otel_timing:before_raw", c.before); err != nil {
		return err
	}
	if err := cbs.Create().After("gorm:create").Register("otel_timing:after_create", c.after); err != nil {
		return err
	}
	if err := cbs.Query().After("gorm:query").Register("otel_timing:after_query", c.after); err != nil {
		return err
	}
	if err := cbs.Update().After("gorm:update").Register("otel_timing:after_update", c.after); err != nil {
		return err
	}
	if err := cbs.Delete().After("gorm:delete").Register("otel_timing:after_delete", c.after); err != nil {
		return err
	}
	return cbs.Raw().After("gorm:raw").Register("otel_timing:after_raw", c.after)
}
