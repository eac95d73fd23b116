package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include query variables, dev only
	SlowQueryThresh time.Duration
	DBName          string
}

type queryStartKey struct{}

// DBTracingPlugin registers otelgorm and marks slow or failed queries on
// their spans
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a database tracing plugin
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.DBName == "" {
		cfg.DBName = "datamanager"
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

// Register installs the plugin on db. It is a no-op when tracing is disabled.
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.config.Enabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBName)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	cb := db.Callback()
	errs := []error{
		cb.Create().Before("gorm:create").Register("dm_timing:before_create", markQueryStart),
		cb.Query().Before("gorm:query").Register("dm_timing:before_query", markQueryStart),
		cb.Update().Before("gorm:update").Register("dm_timing:before_update", markQueryStart),
		cb.Delete().Before("gorm:delete").Register("dm_timing:before_delete", markQueryStart),
		cb.Row().Before("gorm:row").Register("dm_timing:before_row", markQueryStart),
		cb.Raw().Before("gorm:raw").Register("dm_timing:before_raw", markQueryStart),
		cb.Create().After("gorm:create").Register("dm_timing:after_create", p.afterQuery),
		cb.Query().After("gorm:query").Register("dm_timing:after_query", p.afterQuery),
		cb.Update().After("gorm:update").Register("dm_timing:after_update", p.afterQuery),
		cb.Delete().After("gorm:delete").Register("dm_timing:after_delete", p.afterQuery),
		cb.Row().After("gorm:row").Register("dm_timing:after_row", p.afterQuery),
		cb.Raw().After("gorm:raw").Register("dm_timing:after_raw", p.afterQuery),
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	// registered after the timing hooks so spans are still open when they run
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
	)
	return nil
}

func markQueryStart(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (p *DBTracingPlugin) afterQuery(db *gorm.DB) {
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

	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.RecordError(db.Error)
		span.SetStatus(codes.Error, db.Error.Error())
	}

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > p.config.SlowQueryThresh {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
		))
	}
}
