package query

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promohub/levelup-hub/internal/domain/account"
	"github.com/promohub/levelup-hub/internal/domain/achievement"
	"github.com/promohub/levelup-hub/internal/infrastructure/persistence/memory"
)

func newTestLedger() *memory.Ledger {
	return memory.NewLedger(slog.Default(), 100)
}

func seedAccount(t *testing.T, ledger *memory.Ledger, tid int64, xp, prestigeLevels int) {
	t.Helper()
	_, err := ledger.Mutate(context.Background(), account.TelegramID(tid), "user", "User",
		func(a *account.Account, j *account.Journal) error {
			a.RecordMessage(time.Now().UTC())
			if _, _, err := a.AddExperience(xp); err != nil {
				return err
			}
			for i := 0; i < prestigeLevels; i++ {
				a.Prestige++
			}
			j.Record(account.TransactionEarn, 10, a.Coins, "activity")
			return nil
		})
	require.NoError(t, err)
}

// ─────────────────────────────────────────────────────────────────────────────
// GetProfile
// ─────────────────────────────────────────────────────────────────────────────

func TestGetProfile_ReturnsCard(t *testing.T) {
	ledger := newTestLedger()
	seedAccount(t, ledger, 7, 250, 0) // level 2: порог 200, внутри уровня 50

	handler := NewGetProfileHandler(ledger, achievement.NewCatalog(), nil)
	dto, err := handler.Handle(context.Background(), GetProfileQuery{TelegramID: 7})
	require.NoError(t, err)

	assert.Equal(t, int64(7), dto.TelegramID)
	assert.Equal(t, 250, dto.XP)
	assert.Equal(t, 2, dto.Level)
	assert.Equal(t, 50, dto.XPIntoLevel)
	assert.Equal(t, 100, dto.XPForLevel)
	assert.Equal(t, 100, dto.Coins)
	assert.Equal(t, 1, dto.MessageCount)
	// Без кеша рейтинга позиция неизвестна.
	assert.Zero(t, dto.Rank)
}

func TestGetProfile_NotFound(t *testing.T) {
	handler := NewGetProfileHandler(newTestLedger(), achievement.NewCatalog(), nil)

	_, err := handler.Handle(context.Background(), GetProfileQuery{TelegramID: 404})
	assert.ErrorIs(t, err, account.ErrAccountNotFound)
}

// ─────────────────────────────────────────────────────────────────────────────
// GetLeaderboard
// ─────────────────────────────────────────────────────────────────────────────

func TestGetLeaderboard_OrderingWithoutCache(t *testing.T) {
	ledger := newTestLedger()
	seedAccount(t, ledger, 1, 5000, 0)
	seedAccount(t, ledger, 2, 100, 1) // престиж бьёт любой XP
	seedAccount(t, ledger, 3, 9000, 0)

	handler := NewGetLeaderboardHandler(ledger, nil)
	dto, err := handler.Handle(context.Background(), GetLeaderboardQuery{Limit: 10})
	require.NoError(t, err)

	assert.False(t, dto.FromCache)
	require.Len(t, dto.Entries, 3)
	assert.Equal(t, int64(2), dto.Entries[0].TelegramID)
	assert.Equal(t, int64(3), dto.Entries[1].TelegramID)
	assert.Equal(t, int64(1), dto.Entries[2].TelegramID)
	assert.Equal(t, 1, dto.Entries[0].Rank)
	assert.Equal(t, 3, dto.Entries[2].Rank)
}

func TestGetLeaderboard_DefaultLimit(t *testing.T) {
	ledger := newTestLedger()
	for tid := int64(1); tid <= 15; tid++ {
		seedAccount(t, ledger, tid, int(tid)*10, 0)
	}

	handler := NewGetLeaderboardHandler(ledger, nil)
	dto, err := handler.Handle(context.Background(), GetLeaderboardQuery{})
	require.NoError(t, err)
	assert.Len(t, dto.Entries, 10)
}

// ─────────────────────────────────────────────────────────────────────────────
// GetTransactions
// ─────────────────────────────────────────────────────────────────────────────

func TestGetTransactions_NewestFirst(t *testing.T) {
	ledger := newTestLedger()
	seedAccount(t, ledger, 5, 50, 0)

	handler := NewGetTransactionsHandler(ledger, ledger)
	txs, err := handler.Handle(context.Background(), GetTransactionsQuery{TelegramID: 5, Limit: 10})
	require.NoError(t, err)

	require.NotEmpty(t, txs)
	assert.Equal(t, string(account.TransactionEarn), txs[0].Type)
	assert.Equal(t, 10, txs[0].Amount)
}

func TestGetTransactions_UnknownAccount(t *testing.T) {
	ledger := newTestLedger()
	handler := NewGetTransactionsHandler(ledger, ledger)

	_, err := handler.Handle(context.Background(), GetTransactionsQuery{TelegramID: 404})
	assert.ErrorIs(t, err, account.ErrAccountNotFound)
}
