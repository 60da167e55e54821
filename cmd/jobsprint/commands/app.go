package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/justsurfingit/jobsprint/internal/cache"
	"github.com/justsurfingit/jobsprint/internal/config"
	"github.com/justsurfingit/jobsprint/internal/database"
	"github.com/justsurfingit/jobsprint/internal/events"
	"github.com/justsurfingit/jobsprint/internal/logger"
	"github.com/justsurfingit/jobsprint/internal/services"
)

// AppContext holds the services shared by every command. Nothing here dials
// a provider: missing credentials surface when an operation needs them.
type AppContext struct {
	Config    *config.Config
	Logger    *zap.Logger
	Database  *database.Provider
	Cache     cache.Cache
	Publisher events.Publisher

	Sniper    *services.SniperService
	Queue     *services.QueueService
	Apply     *services.ApplyService
	Interview *services.InterviewService
}

func NewAppContext(ctx context.Context, envFile string) (*AppContext, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	app := &AppContext{
		Config:    cfg,
		Logger:    log,
		Database:  database.NewProvider(cfg.Database, log),
		Publisher: events.NewNopPublisher(),
	}

	if cfg.EventsConfigured() {
		pub, err := events.NewNATSPublisher(cfg.NATS, log)
		if err != nil {
			log.Warn("event publishing disabled", zap.Error(err))
		} else {
			app.Publisher = pub
		}
	}

	var sniperOpts []services.SniperOption
	if cfg.CacheConfigured() {
		app.Cache = cache.NewRedis(cfg.Redis)
		sniperOpts = append(sniperOpts, services.WithSearchCache(app.Cache, cfg.Search.CacheTTL))
	}

	for _, missing := range cfg.Missing() {
		log.Warn("feature disabled until configured", zap.String("setting", missing))
	}

	app.Sniper = services.NewSniperService(services.NewSerperClient(cfg.Search, log), log, sniperOpts...)
	app.Queue = services.NewQueueService(app.Database, app.Publisher, log)
	app.Apply = services.NewApplyService(services.NewBrowserlessClient(cfg.Browser, log), app.Queue, app.Database, log)
	app.Interview = services.NewInterviewService(services.NewLLMService(cfg.LLM, log), app.Database, log)

	return app, nil
}

func (a *AppContext) Close() {
	if err := a.Publisher.Close(); err != nil {
		a.Logger.Warn("failed to close publisher", zap.Error(err))
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Logger.Warn("failed to close cache", zap.Error(err))
		}
	}
	if err := a.Database.Close(); err != nil {
		a.Logger.Warn("failed to close database", zap.Error(err))
	}
	_ = a.Logger.Sync()
}
