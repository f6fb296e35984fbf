package helper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

const (
	SnapshotJobName   = "snapshot-refresh"
	PurgeResetJobName = "purge-reset-tokens"

	purgeInterval = 5 * time.Minute
	jobTimeout    = 2 * time.Minute
)

type SnapshotRefresher interface {
	Refresh(ctx context.Context)
}

type ResetTokenPurger interface {
	PurgeExpiredResetTokens(ctx context.Context) (int64, error)
}

// StartScheduler runs the periodic snapshot refresh on snapshotCron (skipped
// when empty) and purges expired reset tokens every few minutes.
func StartScheduler(snapshotCron string, reports SnapshotRefresher, auth ResetTokenPurger, logger *slog.Logger) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}

	if snapshotCron != "" {
		_, err = s.NewJob(
			gocron.CronJob(snapshotCron, false),
			gocron.NewTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
				defer cancel()
				reports.Refresh(ctx)
			}),
			gocron.WithName(SnapshotJobName),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = s.Shutdown()
			return nil, fmt.Errorf("schedule snapshot refresh: %w", err)
		}
	}

	_, err = s.NewJob(
		gocron.DurationJob(purgeInterval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			n, err := auth.PurgeExpiredResetTokens(ctx)
			if err != nil {
				logger.Error("[CRON] purge reset tokens failed", "error", err)
				return
			}
			if n > 0 {
				logger.Info("[CRON] purged expired reset tokens", "count", n)
			}
		}),
		gocron.WithName(PurgeResetJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("schedule reset token purge: %w", err)
	}

	s.Start()
	logger.Info("scheduler started", "snapshotCron", snapshotCron, "purgeInterval", purgeInterval)
	return s, nil
}
