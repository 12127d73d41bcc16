package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promohub/levelup-hub/internal/domain/account"
	"github.com/promohub/levelup-hub/internal/domain/achievement"
	"github.com/promohub/levelup-hub/internal/domain/progression"
)

func seedLevel(t *testing.T, ledger account.Ledger, tid int64, level int) {
	t.Helper()
	_, err := ledger.Mutate(context.Background(), account.TelegramID(tid), "", "Leo",
		func(a *account.Account, _ *account.Journal) error {
			_, _, err := a.AddExperience(progression.ThresholdFor(level))
			return err
		})
	require.NoError(t, err)
}

func TestTakePrestige_RequiresLevel100(t *testing.T) {
	ledger := newTestLedger()
	handler := NewTakePrestigeHandler(ledger, achievement.NewCatalog(), nopPublisher{}, 0)
	seedLevel(t, ledger, 42, 99)

	_, err := handler.Handle(context.Background(), TakePrestigeCommand{TelegramID: 42, FirstName: "Leo"})
	assert.ErrorIs(t, err, account.ErrPrestigeLevelNotReached)

	snap, err := ledger.GetByTelegramID(context.Background(), account.TelegramID(42))
	require.NoError(t, err)
	assert.Equal(t, 99, snap.Level)
	assert.Equal(t, 0, snap.Prestige)
}

func TestTakePrestige_ResetAndBonus(t *testing.T) {
	ledger := newTestLedger()
	handler := NewTakePrestigeHandler(ledger, achievement.NewCatalog(), nopPublisher{}, 0)
	seedLevel(t, ledger, 42, 100)

	result, err := handler.Handle(context.Background(), TakePrestigeCommand{TelegramID: 42, FirstName: "Leo"})
	require.NoError(t, err)

	assert.Equal(t, 1, result.PrestigeCount)
	assert.Equal(t, DefaultBonusPerPrestige, result.BonusCoins)
	// Престиж возвращает на первый уровень, не на нулевой.
	assert.Equal(t, 1, result.Account.Level)
	assert.Equal(t, progression.ThresholdFor(1), result.Account.XP)

	var ids []string
	for _, def := range result.Achievements {
		ids = append(ids, def.ID)
	}
	assert.Contains(t, ids, achievement.FirstPrestige)
}

func TestTakePrestige_SecondPrestigeScalesBonus(t *testing.T) {
	ledger := newTestLedger()
	handler := NewTakePrestigeHandler(ledger, achievement.NewCatalog(), nopPublisher{}, 0)

	seedLevel(t, ledger, 42, 100)
	first, err := handler.Handle(context.Background(), TakePrestigeCommand{TelegramID: 42, FirstName: "Leo"})
	require.NoError(t, err)
	require.Equal(t, 1, first.PrestigeCount)

	seedLevel(t, ledger, 42, 100)
	second, err := handler.Handle(context.Background(), TakePrestigeCommand{TelegramID: 42, FirstName: "Leo"})
	require.NoError(t, err)

	assert.Equal(t, 2, second.PrestigeCount)
	assert.Equal(t, 2*DefaultBonusPerPrestige, second.BonusCoins)

	// first_prestige was already granted and is not granted twice.
	assert.Empty(t, second.Achievements)
}
