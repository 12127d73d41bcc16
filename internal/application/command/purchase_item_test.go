package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promohub/levelup-hub/internal/domain/account"
	"github.com/promohub/levelup-hub/internal/domain/achievement"
	"github.com/promohub/levelup-hub/internal/domain/economy"
)

func newPurchaseHandler(ledger account.Ledger) *PurchaseItemHandler {
	return NewPurchaseItemHandler(ledger, economy.NewCatalog(economy.DefaultCatalogConfig()),
		achievement.NewCatalog(), nopPublisher{}, &seqRand{ints: []int{0, 0}})
}

func seedBalance(t *testing.T, ledger account.Ledger, tid int64, coins int) {
	t.Helper()
	_, err := ledger.Mutate(context.Background(), account.TelegramID(tid), "", "Leo",
		func(a *account.Account, _ *account.Journal) error {
			return a.Credit(coins)
		})
	require.NoError(t, err)
}

func TestPurchaseItem_UnknownItem(t *testing.T) {
	handler := newPurchaseHandler(newTestLedger())

	_, err := handler.Handle(context.Background(), PurchaseItemCommand{
		TelegramID: 42, FirstName: "Leo", Item: economy.ItemKind("jetpack"),
	})
	assert.ErrorIs(t, err, economy.ErrUnknownItem)
}

func TestPurchaseItem_InsufficientFunds(t *testing.T) {
	ledger := newTestLedger()
	handler := newPurchaseHandler(ledger)

	// Starting balance is 100, the boost costs 500.
	_, err := handler.Handle(context.Background(), PurchaseItemCommand{
		TelegramID: 42, FirstName: "Leo", Item: economy.ItemXPBoost,
	})
	assert.ErrorIs(t, err, account.ErrInsufficientBalance)

	// The failed purchase left the balance untouched.
	snap, err := ledger.GetByTelegramID(context.Background(), account.TelegramID(42))
	require.NoError(t, err)
	assert.Equal(t, account.Coins(100), snap.Coins)
	assert.Equal(t, 0, snap.TotalSpent)
	assert.False(t, snap.Boost)
}

func TestPurchaseItem_InvalidTitleRejectedBeforeMutation(t *testing.T) {
	ledger := newTestLedger()
	handler := newPurchaseHandler(ledger)
	seedBalance(t, ledger, 42, 10000)

	_, err := handler.Handle(context.Background(), PurchaseItemCommand{
		TelegramID: 42, FirstName: "Leo", Item: economy.ItemCustomTitle, Title: "Chat Admin",
	})
	assert.ErrorIs(t, err, economy.ErrTitleForbidden)

	snap, err := ledger.GetByTelegramID(context.Background(), account.TelegramID(42))
	require.NoError(t, err)
	assert.Equal(t, 0, snap.TotalSpent)
}

func TestPurchaseItem_CustomTitle(t *testing.T) {
	ledger := newTestLedger()
	handler := newPurchaseHandler(ledger)
	seedBalance(t, ledger, 42, 900) // 100 starting + 900 = 1000

	result, err := handler.Handle(context.Background(), PurchaseItemCommand{
		TelegramID: 42, FirstName: "Leo", Item: economy.ItemCustomTitle, Title: "Night Owl",
	})
	require.NoError(t, err)

	assert.Equal(t, 1000, result.Price)
	assert.Equal(t, 0, result.NewBalance)
	assert.Equal(t, "Night Owl", result.Account.CustomTitle)
}

func TestPurchaseItem_VIPUnlocksAchievementAtomically(t *testing.T) {
	ledger := newTestLedger()
	handler := newPurchaseHandler(ledger)
	seedBalance(t, ledger, 42, 9900)

	result, err := handler.Handle(context.Background(), PurchaseItemCommand{
		TelegramID: 42, FirstName: "Leo", Item: economy.ItemVIPMembership,
	})
	require.NoError(t, err)

	// The vip_member achievement and its reward land in the same
	// mutation as the purchase itself.
	var ids []string
	for _, def := range result.Achievements {
		ids = append(ids, def.ID)
	}
	assert.Contains(t, ids, achievement.VIPMember)

	snap, err := ledger.GetByTelegramID(context.Background(), account.TelegramID(42))
	require.NoError(t, err)
	assert.True(t, snap.VIP)
	assert.True(t, snap.HasAchievement(achievement.VIPMember))
	// 10000 - 10000 + 1000 achievement reward.
	assert.Equal(t, account.Coins(1000), snap.Coins)
}

func TestPurchaseItem_MysteryBoxNeverEmpty(t *testing.T) {
	ledger := newTestLedger()
	seedBalance(t, ledger, 42, 900)

	// A rand source that misses every draw.
	missAll := &seqRand{floats: []float64{0.99}}

	handler := NewPurchaseItemHandler(ledger, economy.NewCatalog(economy.DefaultCatalogConfig()),
		achievement.NewCatalog(), nopPublisher{}, missAll)

	result, err := handler.Handle(context.Background(), PurchaseItemCommand{
		TelegramID: 42, FirstName: "Leo", Item: economy.ItemMysteryBox,
	})
	require.NoError(t, err)

	require.NotNil(t, result.Effect)
	assert.True(t, result.Effect.Consolation)
	assert.Greater(t, result.Effect.CoinsWon, 0)
}

func TestPurchaseItem_JournalRecordsAudit(t *testing.T) {
	ledger := newTestLedger()
	handler := newPurchaseHandler(ledger)
	seedBalance(t, ledger, 42, 400)

	result, err := handler.Handle(context.Background(), PurchaseItemCommand{
		TelegramID: 42, FirstName: "Leo", Item: economy.ItemXPBoost,
	})
	require.NoError(t, err)

	txs, err := ledger.ListByAccount(context.Background(), result.Account.ID, 10)
	require.NoError(t, err)

	var found bool
	for _, tx := range txs {
		if tx.Type == account.TransactionPurchase && tx.Reference == string(economy.ItemXPBoost) {
			found = true
			assert.Equal(t, 500, tx.Amount)
		}
	}
	assert.True(t, found)
}
