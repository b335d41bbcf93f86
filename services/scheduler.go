package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/ligadelmazo/backend/repositories"
)

// Daily counters are only consulted on their own day; rows older than this
// are kept a while for audit and then swept.
const counterRetentionDays = 90

// CounterPruner runs the nightly cleanup of stale daily report counters.
type CounterPruner struct {
	scheduler gocron.Scheduler
	limitRepo repositories.DailyLimitRepository
	logger    *slog.Logger
}

func NewCounterPruner(limitRepo repositories.DailyLimitRepository, logger *slog.Logger) (*CounterPruner, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	p := &CounterPruner{
		scheduler: scheduler,
		limitRepo: limitRepo,
		logger:    logger,
	}

	_, err = scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(3, 0, 0))),
		gocron.NewTask(p.prune),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule counter prune job: %w", err)
	}
	return p, nil
}

func (p *CounterPruner) Start() {
	p.scheduler.Start()
}

func (p *CounterPruner) Stop() error {
	return p.scheduler.Shutdown()
}

func (p *CounterPruner) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -counterRetentionDays).Format("2006-01-02")
	deleted, err := p.limitRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		p.logger.Error("failed to prune daily report counters",
			slog.String("cutoff", cutoff), slog.Any("error", err))
		return
	}
	p.logger.Info("pruned daily report counters",
		slog.String("cutoff", cutoff), slog.Int64("deleted", deleted))
}
