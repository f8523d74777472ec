// File: internal/jobs/identity_prune.go
package jobs

import (
	"context"
	"time"

	"mailru_broker/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// IdentityPruner deletes federated users that have not logged in recently.
// user.Service satisfies it.
type IdentityPruner interface {
	PruneInactive(ctx context.Context, retention time.Duration) (int64, error)
}

// IdentityPruneJob periodically removes stale federated users.
type IdentityPruneJob struct {
	pruner        IdentityPruner
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

// NewIdentityPruneJob creates a new IdentityPruneJob.
func NewIdentityPruneJob(pruner IdentityPruner, logger *zap.Logger, cfg *config.Config) *IdentityPruneJob {
	cronLog := NewCronLogger(logger.Named("cron"))
	scheduler := cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.SkipIfStillRunning(cronLog)),
	)
	return &IdentityPruneJob{
		pruner:        pruner,
		logger:        logger.Named("IdentityPruneJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the job. With IDENTITY_RETENTION_DAYS=0
// or an empty schedule nothing is scheduled.
func (j *IdentityPruneJob) SetupAndStart() error {
	if j.cfg.IdentityRetention <= 0 {
		j.logger.Info("Identity retention disabled (IDENTITY_RETENTION_DAYS=0). Prune job will not run.")
		return nil
	}
	jobSpec := j.cfg.IdentityPruneSchedule
	if jobSpec == "" {
		j.logger.Warn("Identity prune schedule not defined (IDENTITY_PRUNE_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, func() { j.RunOnce(context.Background()) })
	if err != nil {
		j.logger.Error("Failed to schedule identity prune job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Identity prune job scheduled", zap.String("spec", jobSpec), zap.Int("jobID", int(jobID)))
	j.cronScheduler.Start()
	return nil
}

// RunOnce performs a single prune pass and returns the number of users removed.
func (j *IdentityPruneJob) RunOnce(ctx context.Context) int64 {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	removed, err := j.pruner.PruneInactive(ctx, j.cfg.IdentityRetention)
	if err != nil {
		j.logger.Error("Identity prune run failed", zap.Error(err))
		return 0
	}
	j.logger.Info("Identity prune run completed", zap.Int64("users_removed", removed))
	return removed
}

// Stop stops the scheduler and waits up to ten seconds for a running pass.
func (j *IdentityPruneJob) Stop() {
	stopCtx := j.cronScheduler.Stop()
	select {
	case <-stopCtx.Done():
		j.logger.Info("Identity prune scheduler stopped.")
	case <-time.After(10 * time.Second):
		j.logger.Warn("Identity prune scheduler stop timed out.")
	}
}
