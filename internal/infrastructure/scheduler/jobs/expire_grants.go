package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/promohub/levelup-hub/internal/application/command"
)

// ══════════════════════════════════════════════════════════════════════════════
// EXPIRE GRANTS JOB
// ══════════════════════════════════════════════════════════════════════════════

// ExpireGrantsJob periodically clears expired titles, VIP and boosts.
// Grant checks on the hot path already treat expired grants as inactive,
// the sweep is what persists the cleanup and emits expiry events.
type ExpireGrantsJob struct {
	sweeper *command.SweepExpiredGrantsHandler
	logger  *slog.Logger
	timeout time.Duration
}

// NewExpireGrantsJob creates a new grant expiry job.
func NewExpireGrantsJob(sweeper *command.SweepExpiredGrantsHandler, logger *slog.Logger) *ExpireGrantsJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpireGrantsJob{
		sweeper: sweeper,
		logger:  logger,
		timeout: 2 * time.Minute,
	}
}

// Name returns the job name.
func (j *ExpireGrantsJob) Name() string {
	return "expire_grants"
}

// Description returns a human-readable description.
func (j *ExpireGrantsJob) Description() string {
	return "Clears expired custom titles, VIP memberships and XP boosts"
}

// Run executes the sweep.
func (j *ExpireGrantsJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	result, err := j.sweeper.Handle(ctx)
	if err != nil {
		return err
	}

	if result.Cleared > 0 {
		j.logger.Info("grant sweep cleared expirations",
			"scanned", result.Scanned,
			"cleared", result.Cleared,
			"duration", result.Duration,
		)
	}
	return nil
}
