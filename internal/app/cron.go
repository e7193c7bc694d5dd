package app

import (
	"context"
	"time"

	"github.com/panotour/core/internal/config"
	"github.com/panotour/core/internal/modules/tour/media"
	pkgcron "github.com/panotour/core/internal/pkg/cron"
	"github.com/panotour/core/internal/pkg/nativelog"
	"go.uber.org/zap"
)

const (
	stagedUploadTTL = 24 * time.Hour
	logRetention    = 30 * 24 * time.Hour
)

// registerCronJobs registers all scheduled background jobs.
func registerCronJobs(sched *pkgcron.Scheduler, mediaSvc *media.Service, cfg *config.AppConfig, logger *zap.Logger) {
	cronLogger := logger.Named("CronService")

	sched.Register(pkgcron.Job{
		Name:        "sweep_staged_uploads",
		Description: "Remove panorama uploads left in staging for over a day",
		Interval:    time.Hour,
		Fn: func(ctx context.Context) error {
			n, err := mediaSvc.SweepStaged(ctx, stagedUploadTTL)
			if err != nil {
				cronLogger.Warn("sweep staged uploads failed", zap.Error(err))
				return err
			}
			if n > 0 {
				cronLogger.Info("swept staged uploads", zap.Int("removed", n))
			}
			return nil
		},
	})

	sched.Register(pkgcron.Job{
		Name:        "prune_logs",
		Description: "Delete daily log files older than 30 days",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			n, err := nativelog.Prune(cfg.LogDir(), logRetention, time.Now())
			if err != nil {
				cronLogger.Warn("prune logs failed", zap.Error(err))
				return err
			}
			cronLogger.Info("pruned log files", zap.Int("removed", n))
			return nil
		},
	})
}
