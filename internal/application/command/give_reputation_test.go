package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promohub/levelup-hub/internal/domain/account"
)

func TestGiveReputation_Grant(t *testing.T) {
	ledger := newTestLedger()
	handler := NewGiveReputationHandler(ledger, nopPublisher{})

	for i := 0; i < 3; i++ {
		result, err := handler.Handle(context.Background(), GiveReputationCommand{
			FromTelegramID: 1,
			ToTelegramID:   2, ToFirstName: "Mia",
		})
		require.NoError(t, err)
		assert.Equal(t, i+1, result.Reputation)
	}

	acc, err := ledger.GetByTelegramID(context.Background(), account.TelegramID(2))
	require.NoError(t, err)
	assert.Equal(t, 3, acc.Reputation)
}

func TestGiveReputation_SelfRejected(t *testing.T) {
	handler := NewGiveReputationHandler(newTestLedger(), nopPublisher{})

	_, err := handler.Handle(context.Background(), GiveReputationCommand{
		FromTelegramID: 1,
		ToTelegramID:   1,
	})
	assert.ErrorIs(t, err, account.ErrSelfReputation)
}
