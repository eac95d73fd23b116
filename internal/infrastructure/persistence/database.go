package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/qbic/datamanager/internal/infrastructure/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const defaultConnectTimeout = 30 * time.Second

// Database wraps the gorm handle shared by all repositories
type Database struct {
	DB *gorm.DB
}

// Option configures Open
type Option func(*openOptions)

type openOptions struct {
	logger         gormlogger.Interface
	connectTimeout time.Duration
}

// WithLogger routes gorm's query log through l. Queries are not logged
// otherwise.
func WithLogger(l gormlogger.Interface) Option {
	return func(o *openOptions) { o.logger = l }
}

// WithConnectTimeout bounds how long Open waits for the server to accept
// connections. Zero tries once.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *openOptions) { o.connectTimeout = d }
}

// Open connects to postgres and sizes the pool. A server that is still
// starting up is retried with exponential backoff.
func Open(ctx context.Context, cfg *config.DatabaseConfig, opts ...Option) (*Database, error) {
	o := openOptions{
		logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		connectTimeout: defaultConnectTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 o.logger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		DisableAutomaticPing:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	var policy backoff.BackOff = &backoff.StopBackOff{}
	if o.connectTimeout > 0 {
		exp := backoff.NewExponentialBackOff()
		exp.MaxElapsedTime = o.connectTimeout
		policy = exp
	}
	ping := func() error { return sqlDB.PingContext(ctx) }
	if err := backoff.Retry(ping, backoff.WithContext(policy, ctx)); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connect to %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return &Database{DB: db}, nil
}

// Close releases the pool
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping is used by the readiness check
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Transaction runs fn in one transaction. Repositories built on tx share it.
func (d *Database) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.DB.WithContext(ctx).Transaction(fn)
}
