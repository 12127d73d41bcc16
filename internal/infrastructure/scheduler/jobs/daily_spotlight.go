package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/promohub/levelup-hub/internal/domain/account"
	"github.com/promohub/levelup-hub/internal/domain/economy"
	"github.com/promohub/levelup-hub/internal/domain/shared"
	"github.com/promohub/levelup-hub/internal/domain/social"
	"github.com/promohub/levelup-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// DAILY SPOTLIGHT JOB
// ══════════════════════════════════════════════════════════════════════════════

// DailySpotlightJob picks one recently active account per day and puts
// it in the spotlight. Accounts holding a spotlight-priority pass win
// the draw first, and the pass is consumed by winning.
type DailySpotlightJob struct {
	ledger    account.Ledger
	history   social.SpotlightHistory
	publisher shared.EventPublisher
	rng       economy.Rand
	logger    *slog.Logger
	config    DailySpotlightConfig
}

// DailySpotlightConfig contains configuration for the spotlight draw.
type DailySpotlightConfig struct {
	// ActivityWindow is how far back an account counts as active.
	ActivityWindow time.Duration

	// CandidateLimit caps the candidate pool read from the ledger.
	CandidateLimit int

	// Timeout bounds a single draw.
	Timeout time.Duration
}

// DefaultDailySpotlightConfig returns sensible defaults.
func DefaultDailySpotlightConfig() DailySpotlightConfig {
	return DailySpotlightConfig{
		ActivityWindow: 48 * time.Hour,
		CandidateLimit: 200,
		Timeout:        time.Minute,
	}
}

// NewDailySpotlightJob creates a new daily spotlight job.
func NewDailySpotlightJob(
	ledger account.Ledger,
	history social.SpotlightHistory,
	publisher shared.EventPublisher,
	rng economy.Rand,
	logger *slog.Logger,
	config DailySpotlightConfig,
) *DailySpotlightJob {
	if logger == nil {
		logger = slog.Default()
	}
	if rng == nil {
		rng = economy.NewRand()
	}
	if config.ActivityWindow <= 0 {
		config.ActivityWindow = 48 * time.Hour
	}
	if config.CandidateLimit <= 0 {
		config.CandidateLimit = 200
	}
	if config.Timeout <= 0 {
		config.Timeout = time.Minute
	}

	return &DailySpotlightJob{
		ledger:    ledger,
		history:   history,
		publisher: publisher,
		rng:       rng,
		logger:    logger,
		config:    config,
	}
}

// Name returns the job name.
func (j *DailySpotlightJob) Name() string {
	return "daily_spotlight"
}

// Description returns a human-readable description.
func (j *DailySpotlightJob) Description() string {
	return "Chooses the community spotlight member of the day"
}

// Run executes the daily draw. Running twice on the same day is a no-op,
// the history table enforces one pick per calendar day.
func (j *DailySpotlightJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	now := timeutil.Now()
	day := timeutil.StartOfDay(now)

	chosen, err := j.history.WasChosenOn(ctx, day)
	if err != nil {
		return fmt.Errorf("check spotlight history: %w", err)
	}
	if chosen {
		return nil
	}

	candidates, err := j.ledger.FindActiveSince(ctx, now.Add(-j.config.ActivityWindow), j.config.CandidateLimit)
	if err != nil {
		return fmt.Errorf("load candidates: %w", err)
	}
	if len(candidates) == 0 {
		j.logger.Info("spotlight draw skipped, no active accounts")
		return nil
	}

	// Держатели приоритета образуют отдельный пул и разыгрываются первыми.
	priority := make([]*account.Account, 0)
	for _, acc := range candidates {
		if acc.SpotlightPriority {
			priority = append(priority, acc)
		}
	}

	pool := candidates
	hasPriority := len(priority) > 0
	if hasPriority {
		pool = priority
	}
	winner := pool[j.rng.Intn(len(pool))]

	if hasPriority {
		winner, err = j.consumePriority(ctx, winner)
		if err != nil {
			return fmt.Errorf("consume spotlight priority: %w", err)
		}
	}

	pick := social.SpotlightPick{
		ID:         uuid.NewString(),
		AccountID:  winner.ID,
		TelegramID: winner.TelegramID,
		ChosenOn:   day,
		Priority:   hasPriority,
		CreatedAt:  now,
	}
	if err := j.history.Record(ctx, pick); err != nil {
		// Гонка с другим воркером, день уже разыгран.
		if errors.Is(err, social.ErrAlreadyChosen) {
			return nil
		}
		return fmt.Errorf("record spotlight pick: %w", err)
	}

	if j.publisher != nil {
		event := shared.NewSpotlightChosenEvent(winner.ID, winner.TelegramID.Int64(), winner.DisplayName(now), hasPriority)
		if err := j.publisher.Publish(event); err != nil {
			j.logger.Error("failed to publish spotlight event", "error", err)
		}
	}

	j.logger.Info("spotlight chosen",
		"telegram_id", winner.TelegramID.Int64(),
		"priority", hasPriority,
		"candidates", len(candidates),
	)
	return nil
}

func (j *DailySpotlightJob) consumePriority(ctx context.Context, winner *account.Account) (*account.Account, error) {
	return j.ledger.Mutate(ctx, winner.TelegramID, winner.Username, winner.FirstName,
		func(acc *account.Account, _ *account.Journal) error {
			acc.ConsumeSpotlightPriority()
			return nil
		})
}
