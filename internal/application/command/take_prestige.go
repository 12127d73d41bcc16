package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/promohub/levelup-hub/internal/domain/account"
	"github.com/promohub/levelup-hub/internal/domain/achievement"
	"github.com/promohub/levelup-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// TAKE PRESTIGE COMMAND
// The endgame reset: level 100 trades the whole progress bar for a
// permanent star and a coin bonus that grows with each prestige.
// ══════════════════════════════════════════════════════════════════════════════

// TakePrestigeCommand contains one prestige request.
type TakePrestigeCommand struct {
	TelegramID int64
	Username   string
	FirstName  string
}

// Validate validates the command.
func (c TakePrestigeCommand) Validate() error {
	if c.TelegramID <= 0 {
		return errors.New("take_prestige: telegram_id must be positive")
	}
	return nil
}

// TakePrestigeResult contains the prestige outcome.
type TakePrestigeResult struct {
	// PrestigeCount after the reset.
	PrestigeCount int

	// BonusCoins paid out for this prestige.
	BonusCoins int

	// Achievements unlocked (first_prestige on the first one).
	Achievements []achievement.Definition

	Account *account.Account
	Events  []shared.Event
}

// TakePrestigeHandler handles the TakePrestigeCommand.
type TakePrestigeHandler struct {
	ledger       account.Ledger
	achievements *achievement.Catalog
	publisher    shared.EventPublisher

	// bonusPerPrestige: payout is bonusPerPrestige * new prestige count.
	bonusPerPrestige int
}

// DefaultBonusPerPrestige is the production prestige payout multiplier.
const DefaultBonusPerPrestige = 1000

// NewTakePrestigeHandler creates a new TakePrestigeHandler.
func NewTakePrestigeHandler(
	ledger account.Ledger,
	achievements *achievement.Catalog,
	publisher shared.EventPublisher,
	bonusPerPrestige int,
) *TakePrestigeHandler {
	if bonusPerPrestige <= 0 {
		bonusPerPrestige = DefaultBonusPerPrestige
	}

	return &TakePrestigeHandler{
		ledger:           ledger,
		achievements:     achievements,
		publisher:        publisher,
		bonusPerPrestige: bonusPerPrestige,
	}
}

// Handle executes the prestige.
func (h *TakePrestigeHandler) Handle(ctx context.Context, cmd TakePrestigeCommand) (*TakePrestigeResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	result := &TakePrestigeResult{}

	acc, err := h.ledger.Mutate(ctx, account.TelegramID(cmd.TelegramID), cmd.Username, cmd.FirstName,
		func(a *account.Account, j *account.Journal) error {
			if err := a.TakePrestige(); err != nil {
				return err
			}

			bonus := h.bonusPerPrestige * a.Prestige
			if err := a.Credit(bonus); err != nil {
				return err
			}
			j.Record(account.TransactionReward, bonus, a.Coins, fmt.Sprintf("prestige:%d", a.Prestige))

			result.PrestigeCount = a.Prestige
			result.BonusCoins = bonus

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
		if errors.Is(err, account.ErrPrestigeLevelNotReached) {
			return nil, account.ErrPrestigeLevelNotReached
		}
		return nil, fmt.Errorf("take_prestige: %w", err)
	}

	result.Account = acc

	result.Events = append(result.Events,
		shared.NewPrestigeTakenEvent(acc.ID, acc.TelegramID.Int64(), result.PrestigeCount, result.BonusCoins))
	for _, def := range result.Achievements {
		result.Events = append(result.Events,
			shared.NewAchievementUnlockedEvent(acc.ID, acc.TelegramID.Int64(), def.ID, def.Reward))
	}
	for _, event := range result.Events {
		_ = h.publisher.Publish(event)
	}

	return result, nil
}
