// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/promohub/levelup-hub/internal/domain/account"
	"github.com/promohub/levelup-hub/internal/domain/achievement"
	"github.com/promohub/levelup-hub/internal/domain/economy"
	"github.com/promohub/levelup-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROCESS ACTIVITY COMMAND
// Converts one inbound group message into a ledger mutation: XP and
// HubCoins gain, level-up detection, achievement evaluation. This is the
// hot path of the bot - every counted message goes through here.
// ══════════════════════════════════════════════════════════════════════════════

// errCooldown aborts the mutation without treating it as a failure.
var errCooldown = errors.New("process_activity: cooldown")

// ProcessActivityCommand contains one inbound activity event.
type ProcessActivityCommand struct {
	// TelegramID identifies the author of the message.
	TelegramID int64

	// Username and FirstName seed account creation and keep the
	// display fields fresh.
	Username  string
	FirstName string

	// Timestamp is when the message arrived (defaults to now if zero).
	Timestamp time.Time

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c ProcessActivityCommand) Validate() error {
	if c.TelegramID <= 0 {
		return errors.New("process_activity: telegram_id must be positive")
	}
	if c.FirstName == "" {
		return errors.New("process_activity: first_name is required")
	}
	return nil
}

// ProcessActivityResult describes what one message changed.
type ProcessActivityResult struct {
	// Counted is false when the message fell inside the cooldown
	// window and was silently ignored.
	Counted bool

	// XPGained and CoinsGained are the final amounts after multipliers.
	XPGained    int
	CoinsGained int

	// BoostApplied / VIPApplied report which multipliers fired.
	BoostApplied bool
	VIPApplied   bool

	// LeveledUp with the level transition and the bonus paid for it.
	LeveledUp    bool
	OldLevel     int
	NewLevel     int
	LevelUpBonus int

	// Achievements unlocked by this message, in catalog order.
	Achievements []achievement.Definition

	// Account is the post-mutation snapshot.
	Account *account.Account

	// Events contains domain events generated.
	Events []shared.Event
}

// ProcessActivityConfig contains the tunable gain parameters.
type ProcessActivityConfig struct {
	// CooldownWindow is the hard debounce between counted messages.
	CooldownWindow time.Duration

	// XPMin/XPMax and CoinMin/CoinMax are the uniform gain ranges.
	XPMin, XPMax     int
	CoinMin, CoinMax int

	// BonusPerLevel: the level-up bonus is newLevel * BonusPerLevel.
	BonusPerLevel int
}

// DefaultProcessActivityConfig returns the production gain parameters.
func DefaultProcessActivityConfig() ProcessActivityConfig {
	return ProcessActivityConfig{
		CooldownWindow: 60 * time.Second,
		XPMin:          10,
		XPMax:          30,
		CoinMin:        1,
		CoinMax:        5,
		BonusPerLevel:  50,
	}
}

// ProcessActivityHandler handles the ProcessActivityCommand.
type ProcessActivityHandler struct {
	ledger       account.Ledger
	achievements *achievement.Catalog
	publisher    shared.EventPublisher
	rng          economy.Rand
	cfg          ProcessActivityConfig
}

// NewProcessActivityHandler creates a new ProcessActivityHandler.
func NewProcessActivityHandler(
	ledger account.Ledger,
	achievements *achievement.Catalog,
	publisher shared.EventPublisher,
	rng economy.Rand,
	cfg ProcessActivityConfig,
) *ProcessActivityHandler {
	if cfg.CooldownWindow == 0 {
		cfg = DefaultProcessActivityConfig()
	}
	if rng == nil {
		rng = economy.NewRand()
	}

	return &ProcessActivityHandler{
		ledger:       ledger,
		achievements: achievements,
		publisher:    publisher,
		rng:          rng,
		cfg:          cfg,
	}
}

// Handle executes the process activity command.
//
// The whole gain is a single atomic mutation: message count, XP, coins,
// level-up bonus and achievement rewards land together or not at all.
// Randomness is drawn before entering the mutation so the mutation
// function itself stays pure.
func (h *ProcessActivityHandler) Handle(ctx context.Context, cmd ProcessActivityCommand) (*ProcessActivityResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := cmd.Timestamp
	if now.IsZero() {
		now = time.Now().UTC()
	}

	xpRoll := h.cfg.XPMin + h.rng.Intn(h.cfg.XPMax-h.cfg.XPMin+1)
	coinRoll := h.cfg.CoinMin + h.rng.Intn(h.cfg.CoinMax-h.cfg.CoinMin+1)

	result := &ProcessActivityResult{}

	acc, err := h.ledger.Mutate(ctx, account.TelegramID(cmd.TelegramID), cmd.Username, cmd.FirstName,
		func(a *account.Account, j *account.Journal) error {
			if a.InCooldown(now, h.cfg.CooldownWindow) {
				return errCooldown
			}

			a.UpdateIdentity(cmd.Username, cmd.FirstName)
			a.RecordMessage(now)

			xp := xpRoll
			if a.BoostActiveAt(now) {
				xp *= 2
				result.BoostApplied = true
			}

			coins := coinRoll
			if a.VIPActiveAt(now) {
				coins *= 2
				result.VIPApplied = true
			}

			oldLevel, newLevel, err := a.AddExperience(xp)
			if err != nil {
				return err
			}
			if err := a.Credit(coins); err != nil {
				return err
			}
			j.Record(account.TransactionEarn, coins, a.Coins, "activity")

			result.XPGained = xp
			result.CoinsGained = coins
			result.OldLevel = oldLevel
			result.NewLevel = newLevel

			if newLevel > oldLevel {
				result.LeveledUp = true
				result.LevelUpBonus = newLevel * h.cfg.BonusPerLevel
				if err := a.Credit(result.LevelUpBonus); err != nil {
					return err
				}
				j.Record(account.TransactionReward, result.LevelUpBonus, a.Coins, fmt.Sprintf("level_up:%d", newLevel))
			}

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

	if errors.Is(err, errCooldown) {
		// Hard debounce: inside the window the event is a no-op,
		// not an error the caller should surface.
		return &ProcessActivityResult{Counted: false}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("process_activity: %w", err)
	}

	result.Counted = true
	result.Account = acc
	result.Events = h.buildEvents(acc, result)

	for _, event := range result.Events {
		_ = h.publisher.Publish(event)
	}
	return result, nil
}

func (h *ProcessActivityHandler) buildEvents(acc *account.Account, result *ProcessActivityResult) []shared.Event {
	events := []shared.Event{
		shared.NewBaseEvent(shared.EventXPGained, acc.ID),
	}
	if result.LeveledUp {
		events = append(events, shared.NewLevelUpEvent(acc.ID, acc.TelegramID.Int64(), result.OldLevel, result.NewLevel, result.LevelUpBonus))
	}
	for _, def := range result.Achievements {
		events = append(events, shared.NewAchievementUnlockedEvent(acc.ID, acc.TelegramID.Int64(), def.ID, def.Reward))
	}
	return events
}
