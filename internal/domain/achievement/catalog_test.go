package achievement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promohub/levelup-hub/internal/domain/account"
)

func newEvalAccount(t *testing.T) *account.Account {
	t.Helper()
	acc, err := account.NewAccount(account.NewAccountParams{
		ID:         "acc-1",
		TelegramID: account.TelegramID(7),
		FirstName:  "Leo",
	})
	require.NoError(t, err)
	return acc
}

func TestEvaluate_FirstMessage(t *testing.T) {
	catalog := NewCatalog()
	acc := newEvalAccount(t)

	granted, err := catalog.Evaluate(acc)
	require.NoError(t, err)
	assert.Empty(t, granted)

	acc.RecordMessage(time.Now().UTC())

	granted, err = catalog.Evaluate(acc)
	require.NoError(t, err)
	require.Len(t, granted, 1)
	assert.Equal(t, FirstMessage, granted[0].ID)
	assert.Equal(t, account.Coins(10), acc.Coins)
}

func TestEvaluate_ExactlyOnce(t *testing.T) {
	catalog := NewCatalog()
	acc := newEvalAccount(t)
	acc.RecordMessage(time.Now().UTC())

	granted, err := catalog.Evaluate(acc)
	require.NoError(t, err)
	require.Len(t, granted, 1)

	// Re-evaluating the same state grants nothing and pays nothing.
	granted, err = catalog.Evaluate(acc)
	require.NoError(t, err)
	assert.Empty(t, granted)
	assert.Equal(t, account.Coins(10), acc.Coins)
	assert.Len(t, acc.Achievements, 1)
}

func TestEvaluate_MilestoneChain(t *testing.T) {
	catalog := NewCatalog()
	acc := newEvalAccount(t)

	// Jumping straight past several thresholds unlocks all of them at once.
	acc.MessageCount = 1500
	acc.Level = 50
	acc.DailyStreak = 30

	granted, err := catalog.Evaluate(acc)
	require.NoError(t, err)

	var ids []string
	for _, def := range granted {
		ids = append(ids, def.ID)
	}
	assert.ElementsMatch(t, []string{
		FirstMessage, Messages100, Messages1000,
		Level10, Level50,
		Streak7, Streak30,
	}, ids)
}

func TestEvaluate_VIPAndPrestige(t *testing.T) {
	catalog := NewCatalog()
	acc := newEvalAccount(t)

	acc.GrantVIPUntil(time.Now().UTC().Add(time.Hour))
	acc.Prestige = 1

	granted, err := catalog.Evaluate(acc)
	require.NoError(t, err)

	var ids []string
	for _, def := range granted {
		ids = append(ids, def.ID)
	}
	assert.Contains(t, ids, VIPMember)
	assert.Contains(t, ids, FirstPrestige)
}

func TestEvaluate_RichThreshold(t *testing.T) {
	catalog := NewCatalog()
	acc := newEvalAccount(t)

	require.NoError(t, acc.Credit(9999))
	granted, err := catalog.Evaluate(acc)
	require.NoError(t, err)
	assert.Empty(t, granted)

	require.NoError(t, acc.Credit(1))
	granted, err = catalog.Evaluate(acc)
	require.NoError(t, err)
	require.Len(t, granted, 1)
	assert.Equal(t, Rich, granted[0].ID)
}

func TestLookup(t *testing.T) {
	catalog := NewCatalog()

	def, ok := catalog.Lookup(Level100)
	assert.True(t, ok)
	assert.Equal(t, 2000, def.Reward)

	_, ok = catalog.Lookup("nope")
	assert.False(t, ok)
}
