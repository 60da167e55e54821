package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/justsurfingit/jobsprint/internal/config"
)

type Sniper interface {
	Snipe(ctx context.Context, req SnipeRequest) (*SnipeResult, error)
}

type Enqueuer interface {
	Enqueue(ctx context.Context, apps []NewApplication) (int, error)
}

// AutoSniper fills the daily queue on a cron schedule.
type AutoSniper struct {
	cron    *cron.Cron
	sniper  Sniper
	queue   Enqueuer
	roles   []string
	limit   int
	timeout time.Duration
	logger  *zap.Logger
}

func NewAutoSniper(cfg config.AutoSnipeConfig, sniper Sniper, queue Enqueuer, logger *zap.Logger) *AutoSniper {
	return &AutoSniper{
		cron:    cron.New(),
		sniper:  sniper,
		queue:   queue,
		roles:   cfg.Roles,
		limit:   cfg.Limit,
		timeout: 2 * time.Minute,
		logger:  logger,
	}
}

// Start registers the job and starts the cron runner in the background.
func (a *AutoSniper) Start(schedule string) error {
	if _, err := a.cron.AddFunc(schedule, func() { a.RunOnce(context.Background()) }); err != nil {
		return err
	}
	a.cron.Start()
	a.logger.Info("auto snipe scheduled", zap.String("schedule", schedule), zap.Strings("roles", a.roles))
	return nil
}

// Stop waits for a running job to finish.
func (a *AutoSniper) Stop() {
	<-a.cron.Stop().Done()
}

// RunOnce snipes every configured role over the last day and queues the
// results. A failing role is logged and the next one still runs.
func (a *AutoSniper) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	for _, role := range a.roles {
		res, err := a.sniper.Snipe(ctx, SnipeRequest{Role: role, Window: WindowDay, Limit: a.limit})
		if err != nil {
			a.logger.Error("auto snipe failed", zap.String("role", role), zap.Error(err))
			continue
		}
		if res.Count == 0 {
			a.logger.Info("auto snipe found nothing", zap.String("role", role))
			continue
		}

		apps := make([]NewApplication, 0, len(res.Jobs))
		for _, job := range res.Jobs {
			apps = append(apps, ApplicationFromPosting(job))
		}
		inserted, err := a.queue.Enqueue(ctx, apps)
		if err != nil {
			a.logger.Error("auto snipe enqueue failed", zap.String("role", role), zap.Error(err))
			continue
		}
		a.logger.Info("auto snipe queued jobs",
			zap.String("role", role),
			zap.Int("found", res.Count),
			zap.Int("inserted", inserted))
	}
}
