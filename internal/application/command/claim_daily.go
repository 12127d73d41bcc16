package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/promohub/levelup-hub/internal/domain/account"
	"github.com/promohub/levelup-hub/internal/domain/achievement"
	"github.com/promohub/levelup-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CLAIM DAILY COMMAND
// The daily bonus: a flat payout plus a growing streak bonus. One claim
// per UTC calendar day; skipping a day resets the streak to 1.
// ══════════════════════════════════════════════════════════════════════════════

// ClaimDailyCommand contains one daily bonus claim.
type ClaimDailyCommand struct {
	TelegramID int64
	Username   string
	FirstName  string

	// Timestamp defaults to now if zero.
	Timestamp time.Time
}

// Validate validates the command.
func (c ClaimDailyCommand) Validate() error {
	if c.TelegramID <= 0 {
		return errors.New("claim_daily: telegram_id must be positive")
	}
	return nil
}

// ClaimDailyResult contains the claim outcome.
type ClaimDailyResult struct {
	// Coins actually paid out (base + streak bonus, capped).
	Coins int

	// Streak after the claim; StreakBroken reports a reset.
	Streak       int
	StreakBroken bool

	// Achievements unlocked by this claim (streak milestones).
	Achievements []achievement.Definition

	// Account is the post-mutation snapshot.
	Account *account.Account

	Events []shared.Event
}

// ClaimDailyConfig contains the payout parameters.
type ClaimDailyConfig struct {
	// BaseCoins is the flat daily payout.
	BaseCoins int

	// PerStreakCoins extra per consecutive day beyond the first.
	PerStreakCoins int

	// MaxCoins caps the total payout.
	MaxCoins int
}

// DefaultClaimDailyConfig returns the production payout.
func DefaultClaimDailyConfig() ClaimDailyConfig {
	return ClaimDailyConfig{
		BaseCoins:      50,
		PerStreakCoins: 10,
		MaxCoins:       300,
	}
}

// ClaimDailyHandler handles the ClaimDailyCommand.
type ClaimDailyHandler struct {
	ledger       account.Ledger
	achievements *achievement.Catalog
	publisher    shared.EventPublisher
	cfg          ClaimDailyConfig
}

// NewClaimDailyHandler creates a new ClaimDailyHandler.
func NewClaimDailyHandler(
	ledger account.Ledger,
	achievements *achievement.Catalog,
	publisher shared.EventPublisher,
	cfg ClaimDailyConfig,
) *ClaimDailyHandler {
	if cfg.BaseCoins == 0 {
		cfg = DefaultClaimDailyConfig()
	}

	return &ClaimDailyHandler{
		ledger:       ledger,
		achievements: achievements,
		publisher:    publisher,
		cfg:          cfg,
	}
}

// Handle executes the claim.
func (h *ClaimDailyHandler) Handle(ctx context.Context, cmd ClaimDailyCommand) (*ClaimDailyResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := cmd.Timestamp
	if now.IsZero() {
		now = time.Now().UTC()
	}

	result := &ClaimDailyResult{}

	acc, err := h.ledger.Mutate(ctx, account.TelegramID(cmd.TelegramID), cmd.Username, cmd.FirstName,
		func(a *account.Account, j *account.Journal) error {
			streak, broken, err := a.ClaimDailyStreak(now)
			if err != nil {
				return err
			}
			result.Streak = streak
			result.StreakBroken = broken

			coins := h.cfg.BaseCoins + h.cfg.PerStreakCoins*(streak-1)
			if h.cfg.MaxCoins > 0 && coins > h.cfg.MaxCoins {
				coins = h.cfg.MaxCoins
			}
			if err := a.Credit(coins); err != nil {
				return err
			}
			j.Record(account.TransactionDaily, coins, a.Coins, fmt.Sprintf("daily:streak=%d", streak))
			result.Coins = coins

			granted, err := h.achievements.Evaluate(a)
			if err != nil {
				return err
			}
			for _, def := range granted {
				j.Record(account.TransactionReward, def.Reward, a.Coins, "achievement:"+def.ID)
			}
			result.Achievements = granted

			return nil
		})
	if err != nil {
		if errors.Is(err, account.ErrAlreadyClaimedToday) {
			return nil, account.ErrAlreadyClaimedToday
		}
		return nil, fmt.Errorf("claim_daily: %w", err)
	}

	result.Account = acc

	if result.StreakBroken {
		result.Events = append(result.Events,
			shared.NewStreakBrokenEvent(acc.ID, acc.TelegramID.Int64(), result.Streak))
	}
	for _, def := range result.Achievements {
		result.Events = append(result.Events,
			shared.NewAchievementUnlockedEvent(acc.ID, acc.TelegramID.Int64(), def.ID, def.Reward))
	}
	for _, event := range result.Events {
		_ = h.publisher.Publish(event)
	}

	return result, nil
}
