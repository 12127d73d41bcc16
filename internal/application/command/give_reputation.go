package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/promohub/levelup-hub/internal/domain/account"
	"github.com/promohub/levelup-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GIVE REPUTATION COMMAND
// Reputation is the one stat money cannot buy: only another member can
// grant it, one point per /rep, never to yourself.
// ══════════════════════════════════════════════════════════════════════════════

// GiveReputationCommand contains one reputation grant.
type GiveReputationCommand struct {
	// FromTelegramID is the giver (must differ from the receiver).
	FromTelegramID int64

	// ToTelegramID is the receiver, with seed display fields in case
	// this is their first interaction with the bot.
	ToTelegramID int64
	ToUsername   string
	ToFirstName  string
}

// Validate validates the command.
func (c GiveReputationCommand) Validate() error {
	if c.FromTelegramID <= 0 || c.ToTelegramID <= 0 {
		return errors.New("give_reputation: telegram ids must be positive")
	}
	if c.FromTelegramID == c.ToTelegramID {
		return account.ErrSelfReputation
	}
	return nil
}

// GiveReputationResult contains the grant outcome.
type GiveReputationResult struct {
	// Reputation after the grant.
	Reputation int

	Account *account.Account
	Events  []shared.Event
}

// GiveReputationHandler handles the GiveReputationCommand.
type GiveReputationHandler struct {
	ledger    account.Ledger
	publisher shared.EventPublisher
}

// NewGiveReputationHandler creates a new GiveReputationHandler.
func NewGiveReputationHandler(ledger account.Ledger, publisher shared.EventPublisher) *GiveReputationHandler {
	return &GiveReputationHandler{ledger: ledger, publisher: publisher}
}

// Handle executes the grant.
func (h *GiveReputationHandler) Handle(ctx context.Context, cmd GiveReputationCommand) (*GiveReputationResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	acc, err := h.ledger.Mutate(ctx, account.TelegramID(cmd.ToTelegramID), cmd.ToUsername, cmd.ToFirstName,
		func(a *account.Account, _ *account.Journal) error {
			return a.GiveReputation(account.TelegramID(cmd.FromTelegramID))
		})
	if err != nil {
		if errors.Is(err, account.ErrSelfReputation) {
			return nil, account.ErrSelfReputation
		}
		return nil, fmt.Errorf("give_reputation: %w", err)
	}

	result := &GiveReputationResult{
		Reputation: acc.Reputation,
		Account:    acc,
	}
	result.Events = append(result.Events, shared.NewBaseEvent(shared.EventReputationGiven, acc.ID))
	for _, event := range result.Events {
		_ = h.publisher.Publish(event)
	}
	return result, nil
}
