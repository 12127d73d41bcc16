package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promohub/levelup-hub/internal/domain/account"
)

func TestGiftCoins_Transfer(t *testing.T) {
	ledger := newTestLedger()
	handler := NewGiftCoinsHandler(ledger, nopPublisher{})
	seedBalance(t, ledger, 1, 400) // 500 total with the starting 100

	result, err := handler.Handle(context.Background(), GiftCoinsCommand{
		FromTelegramID: 1, FromFirstName: "Leo",
		ToTelegramID: 2, ToFirstName: "Mia",
		Amount: 200,
	})
	require.NoError(t, err)

	assert.Equal(t, 300, result.SenderBalance)
	// Receiver is auto-created with the starting balance.
	assert.Equal(t, 300, result.ReceiverBalance)
}

func TestGiftCoins_InsufficientFunds(t *testing.T) {
	ledger := newTestLedger()
	handler := NewGiftCoinsHandler(ledger, nopPublisher{})

	_, err := handler.Handle(context.Background(), GiftCoinsCommand{
		FromTelegramID: 1, FromFirstName: "Leo",
		ToTelegramID: 2, ToFirstName: "Mia",
		Amount: 99999,
	})
	assert.ErrorIs(t, err, account.ErrInsufficientBalance)

	// Neither side changed; the receiver was not even created.
	_, err = ledger.GetByTelegramID(context.Background(), account.TelegramID(2))
	assert.ErrorIs(t, err, account.ErrAccountNotFound)
}

func TestGiftCoins_Validation(t *testing.T) {
	handler := NewGiftCoinsHandler(newTestLedger(), nopPublisher{})

	_, err := handler.Handle(context.Background(), GiftCoinsCommand{
		FromTelegramID: 1, ToTelegramID: 1, Amount: 10,
	})
	assert.ErrorIs(t, err, ErrSelfGift)

	_, err = handler.Handle(context.Background(), GiftCoinsCommand{
		FromTelegramID: 1, ToTelegramID: 2, Amount: 0,
	})
	assert.Error(t, err)
}
