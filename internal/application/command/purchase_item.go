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
// PURCHASE ITEM COMMAND
// Looks up the item, validates options, then atomically debits the price
// and applies the effect. No partial application: if the effect fails,
// the whole mutation including the debit is discarded.
// ══════════════════════════════════════════════════════════════════════════════

// PurchaseItemCommand contains one shop purchase request.
type PurchaseItemCommand struct {
	TelegramID int64
	Username   string
	FirstName  string

	// Item is the catalog id being bought.
	Item economy.ItemKind

	// Title - requested title text, only for the custom-title item.
	Title string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command shape. Per-item option validation
// happens against the catalog in the handler.
func (c PurchaseItemCommand) Validate() error {
	if c.TelegramID <= 0 {
		return errors.New("purchase_item: telegram_id must be positive")
	}
	if c.Item == "" {
		return errors.New("purchase_item: item is required")
	}
	return nil
}

// PurchaseItemResult contains the outcome of a successful purchase.
type PurchaseItemResult struct {
	Item       *economy.Item
	Price      int
	NewBalance int

	// Effect describes what the purchase granted (mystery box winnings,
	// grant durations).
	Effect *economy.Effect

	// Achievements unlocked by this purchase (vip_member, rich...).
	Achievements []achievement.Definition

	// Account is the post-mutation snapshot.
	Account *account.Account

	// Events contains domain events generated.
	Events []shared.Event
}

// PurchaseItemHandler handles the PurchaseItemCommand.
type PurchaseItemHandler struct {
	ledger       account.Ledger
	catalog      *economy.Catalog
	achievements *achievement.Catalog
	publisher    shared.EventPublisher
	rng          economy.Rand
}

// NewPurchaseItemHandler creates a new PurchaseItemHandler.
func NewPurchaseItemHandler(
	ledger account.Ledger,
	catalog *economy.Catalog,
	achievements *achievement.Catalog,
	publisher shared.EventPublisher,
	rng economy.Rand,
) *PurchaseItemHandler {
	if rng == nil {
		rng = economy.NewRand()
	}

	return &PurchaseItemHandler{
		ledger:       ledger,
		catalog:      catalog,
		achievements: achievements,
		publisher:    publisher,
		rng:          rng,
	}
}

// Handle executes the purchase.
func (h *PurchaseItemHandler) Handle(ctx context.Context, cmd PurchaseItemCommand) (*PurchaseItemResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	// Unknown item and malformed options are rejected before any
	// mutation is attempted.
	item, err := h.catalog.Lookup(cmd.Item)
	if err != nil {
		return nil, err
	}
	opts := economy.PurchaseOptions{Title: cmd.Title}
	if err := item.Validate(opts); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	result := &PurchaseItemResult{Item: item, Price: item.Price}

	acc, err := h.ledger.Mutate(ctx, account.TelegramID(cmd.TelegramID), cmd.Username, cmd.FirstName,
		func(a *account.Account, j *account.Journal) error {
			if err := a.Debit(item.Price); err != nil {
				return err
			}
			j.Record(account.TransactionPurchase, item.Price, a.Coins, string(item.Kind))

			effect, err := item.Apply(a, now, opts, h.rng)
			if err != nil {
				return err
			}
			result.Effect = effect
			if effect.CoinsWon > 0 {
				j.Record(account.TransactionReward, effect.CoinsWon, a.Coins, string(item.Kind)+":coins")
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
	if err != nil {
		return nil, fmt.Errorf("purchase_item: %w", err)
	}

	result.Account = acc
	result.NewBalance = int(acc.Coins)

	result.Events = append(result.Events,
		shared.NewItemPurchasedEvent(acc.ID, acc.TelegramID.Int64(), string(item.Kind), item.Price, result.NewBalance))
	for _, def := range result.Achievements {
		result.Events = append(result.Events,
			shared.NewAchievementUnlockedEvent(acc.ID, acc.TelegramID.Int64(), def.ID, def.Reward))
	}
	for _, event := range result.Events {
		_ = h.publisher.Publish(event)
	}

	return result, nil
}
