package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/promohub/levelup-hub/internal/domain/account"
	"github.com/promohub/levelup-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GIFT COINS COMMAND
// Member-to-member transfer. Each side is its own atomic mutation; if
// crediting the receiver fails the debit is compensated, so coins are
// never destroyed.
// ══════════════════════════════════════════════════════════════════════════════

// GiftCoinsCommand contains one transfer.
type GiftCoinsCommand struct {
	FromTelegramID int64
	FromUsername   string
	FromFirstName  string

	ToTelegramID int64
	ToUsername   string
	ToFirstName  string

	Amount int
}

// ErrSelfGift - a transfer to yourself is pointless and rejected.
var ErrSelfGift = errors.New("gift_coins: cannot gift to yourself")

// Validate validates the command.
func (c GiftCoinsCommand) Validate() error {
	if c.FromTelegramID <= 0 || c.ToTelegramID <= 0 {
		return errors.New("gift_coins: telegram ids must be positive")
	}
	if c.FromTelegramID == c.ToTelegramID {
		return ErrSelfGift
	}
	if c.Amount <= 0 {
		return errors.New("gift_coins: amount must be positive")
	}
	return nil
}

// GiftCoinsResult contains the transfer outcome.
type GiftCoinsResult struct {
	Amount          int
	SenderBalance   int
	ReceiverBalance int

	Sender   *account.Account
	Receiver *account.Account
}

// GiftCoinsHandler handles the GiftCoinsCommand.
type GiftCoinsHandler struct {
	ledger    account.Ledger
	publisher shared.EventPublisher
}

// NewGiftCoinsHandler creates a new GiftCoinsHandler.
func NewGiftCoinsHandler(ledger account.Ledger, publisher shared.EventPublisher) *GiftCoinsHandler {
	return &GiftCoinsHandler{ledger: ledger, publisher: publisher}
}

// Handle executes the transfer.
func (h *GiftCoinsHandler) Handle(ctx context.Context, cmd GiftCoinsCommand) (*GiftCoinsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	ref := fmt.Sprintf("gift:%d->%d", cmd.FromTelegramID, cmd.ToTelegramID)

	sender, err := h.ledger.Mutate(ctx, account.TelegramID(cmd.FromTelegramID), cmd.FromUsername, cmd.FromFirstName,
		func(a *account.Account, j *account.Journal) error {
			if err := a.Debit(cmd.Amount); err != nil {
				return err
			}
			j.Record(account.TransactionSpend, cmd.Amount, a.Coins, ref)
			return nil
		})
	if err != nil {
		if errors.Is(err, account.ErrInsufficientBalance) {
			return nil, account.ErrInsufficientBalance
		}
		return nil, fmt.Errorf("gift_coins: debit: %w", err)
	}

	receiver, err := h.ledger.Mutate(ctx, account.TelegramID(cmd.ToTelegramID), cmd.ToUsername, cmd.ToFirstName,
		func(a *account.Account, j *account.Journal) error {
			if err := a.Credit(cmd.Amount); err != nil {
				return err
			}
			j.Record(account.TransactionEarn, cmd.Amount, a.Coins, ref)
			return nil
		})
	if err != nil {
		// Compensate the debit so the coins are not lost.
		if _, refundErr := h.ledger.Mutate(ctx, account.TelegramID(cmd.FromTelegramID), cmd.FromUsername, cmd.FromFirstName,
			func(a *account.Account, j *account.Journal) error {
				if creditErr := a.Credit(cmd.Amount); creditErr != nil {
					return creditErr
				}
				j.Record(account.TransactionEarn, cmd.Amount, a.Coins, ref+":refund")
				return nil
			}); refundErr != nil {
			return nil, fmt.Errorf("gift_coins: credit failed and refund failed: %w", errors.Join(err, refundErr))
		}
		return nil, fmt.Errorf("gift_coins: credit: %w", err)
	}

	result := &GiftCoinsResult{
		Amount:          cmd.Amount,
		SenderBalance:   int(sender.Coins),
		ReceiverBalance: int(receiver.Coins),
		Sender:          sender,
		Receiver:        receiver,
	}
	_ = h.publisher.Publish(shared.NewBaseEvent(shared.EventCoinsEarned, receiver.ID))
	return result, nil
}
