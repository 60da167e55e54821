package database

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/justsurfingit/jobsprint/internal/config"
	"github.com/justsurfingit/jobsprint/internal/errors"
	"github.com/justsurfingit/jobsprint/internal/models"
)

// Provider opens the database on first use and hands out the same *gorm.DB
// afterwards. A missing DATABASE_URL is only reported when someone asks for
// the connection, so the API can start without a store.
type Provider struct {
	cfg    config.DatabaseConfig
	logger *zap.Logger
	open   func(dsn string) gorm.Dialector

	mu sync.Mutex
	db *gorm.DB
}

func NewProvider(cfg config.DatabaseConfig, logger *zap.Logger) *Provider {
	return &Provider{
		cfg:    cfg,
		logger: logger,
		open:   postgres.Open,
	}
}

// NewStaticProvider wraps an already opened and migrated connection.
func NewStaticProvider(db *gorm.DB) *Provider {
	return &Provider{db: db, logger: zap.NewNop()}
}

func (p *Provider) Configured() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.db != nil || p.cfg.DSN != ""
}

// DB returns the shared connection, connecting and migrating on the first call.
// A failed connect is not cached; the next call tries again.
func (p *Provider) DB(ctx context.Context) (*gorm.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db != nil {
		return p.db.WithContext(ctx), nil
	}
	if p.cfg.DSN == "" {
		return nil, errors.NotConfigured("store is not configured: set DATABASE_URL")
	}

	db, err := gorm.Open(p.open(p.cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Persistence("failed to connect to database", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Persistence("failed to access connection pool", err)
	}
	sqlDB.SetMaxOpenConns(p.cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(p.cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(p.cfg.ConnMaxLife)

	p.logger.Info("database connection established")

	if err := Migrate(db.WithContext(ctx)); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	p.logger.Info("database migrations applied")

	p.db = db
	return p.db.WithContext(ctx), nil
}

func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db == nil {
		return nil
	}
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	p.db = nil
	return sqlDB.Close()
}

// Migrate creates the queue and interview tables, including the unique index
// on job_application_queue.url that makes enqueue idempotent.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.QueuedApplication{}, &models.InterviewQuestion{}); err != nil {
		return errors.Persistence("failed to auto migrate", err)
	}
	return nil
}
