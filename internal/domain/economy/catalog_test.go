package economy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promohub/levelup-hub/internal/domain/account"
)

// fakeRand replays a scripted sequence of draws.
type fakeRand struct {
	floats []float64
	ints   []int
}

func (f *fakeRand) Float64() float64 {
	v := f.floats[0]
	f.floats = f.floats[1:]
	return v
}

func (f *fakeRand) Intn(n int) int {
	v := f.ints[0]
	f.ints = f.ints[1:]
	return v % n
}

func newShopAccount(t *testing.T) *account.Account {
	t.Helper()
	acc, err := account.NewAccount(account.NewAccountParams{
		ID:            "acc-1",
		TelegramID:    account.TelegramID(42),
		FirstName:     "Leo",
		StartingCoins: 0,
	})
	require.NoError(t, err)
	return acc
}

func TestCatalog_Lookup(t *testing.T) {
	catalog := NewCatalog(DefaultCatalogConfig())

	item, err := catalog.Lookup(ItemCustomTitle)
	require.NoError(t, err)
	assert.Equal(t, 1000, item.Price)

	_, err = catalog.Lookup(ItemKind("jetpack"))
	assert.ErrorIs(t, err, ErrUnknownItem)

	assert.Len(t, catalog.Items(), 5)
}

func TestCatalog_DefaultPrices(t *testing.T) {
	catalog := NewCatalog(DefaultCatalogConfig())

	prices := map[ItemKind]int{
		ItemCustomTitle:       1000,
		ItemXPBoost:           500,
		ItemSpotlightPriority: 2500,
		ItemVIPMembership:     10000,
		ItemMysteryBox:        1000,
	}
	for kind, want := range prices {
		item, err := catalog.Lookup(kind)
		require.NoError(t, err)
		assert.Equal(t, want, item.Price, string(kind))
	}
}

func TestTitleValidation(t *testing.T) {
	catalog := NewCatalog(DefaultCatalogConfig())
	item, err := catalog.Lookup(ItemCustomTitle)
	require.NoError(t, err)

	assert.ErrorIs(t, item.Validate(PurchaseOptions{Title: "  "}), ErrTitleRequired)
	assert.ErrorIs(t, item.Validate(PurchaseOptions{Title: "a title far beyond twenty characters"}), ErrTitleTooLong)
	assert.ErrorIs(t, item.Validate(PurchaseOptions{Title: "Group Admin"}), ErrTitleForbidden)
	assert.ErrorIs(t, item.Validate(PurchaseOptions{Title: "MODERATOR"}), ErrTitleForbidden)
	assert.NoError(t, item.Validate(PurchaseOptions{Title: "Night Owl"}))

	// Other items do not require options.
	boost, err := catalog.Lookup(ItemXPBoost)
	require.NoError(t, err)
	assert.NoError(t, boost.Validate(PurchaseOptions{}))
}

func TestApply_GrantItems(t *testing.T) {
	catalog := NewCatalog(DefaultCatalogConfig())
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	acc := newShopAccount(t)
	item, _ := catalog.Lookup(ItemCustomTitle)
	effect, err := item.Apply(acc, now, PurchaseOptions{Title: "Night Owl"}, nil)
	require.NoError(t, err)
	require.Len(t, effect.Lines, 1)
	title, ok := acc.TitleActiveAt(now.Add(6 * 24 * time.Hour))
	assert.True(t, ok)
	assert.Equal(t, "Night Owl", title)
	_, ok = acc.TitleActiveAt(now.Add(8 * 24 * time.Hour))
	assert.False(t, ok)

	item, _ = catalog.Lookup(ItemXPBoost)
	_, err = item.Apply(acc, now, PurchaseOptions{}, nil)
	require.NoError(t, err)
	assert.True(t, acc.BoostActiveAt(now.Add(23*time.Hour)))
	assert.False(t, acc.BoostActiveAt(now.Add(25*time.Hour)))

	item, _ = catalog.Lookup(ItemVIPMembership)
	_, err = item.Apply(acc, now, PurchaseOptions{}, nil)
	require.NoError(t, err)
	assert.True(t, acc.VIPActiveAt(now.Add(29*24*time.Hour)))

	item, _ = catalog.Lookup(ItemSpotlightPriority)
	_, err = item.Apply(acc, now, PurchaseOptions{}, nil)
	require.NoError(t, err)
	assert.True(t, acc.SpotlightPriority)
}

func TestMysteryBox_AllDrawsHit(t *testing.T) {
	catalog := NewCatalog(DefaultCatalogConfig())
	item, _ := catalog.Lookup(ItemMysteryBox)
	acc := newShopAccount(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	// Every draw under its threshold; coin pick index 1 (100), XP roll 0 (25).
	rng := &fakeRand{floats: []float64{0.1, 0.1, 0.1, 0.1}, ints: []int{1, 0}}

	effect, err := item.Apply(acc, now, PurchaseOptions{}, rng)
	require.NoError(t, err)

	assert.Equal(t, 100, effect.CoinsWon)
	assert.Equal(t, 25, effect.XPWon)
	assert.True(t, effect.BoostWon)
	assert.Equal(t, 1, effect.ReputationWon)
	assert.False(t, effect.Consolation)
	assert.Len(t, effect.Lines, 4)

	assert.Equal(t, account.Coins(100), acc.Coins)
	assert.Equal(t, 25, acc.XP)
	assert.True(t, acc.BoostActiveAt(now.Add(5*time.Hour)))
	assert.Equal(t, 1, acc.Reputation)
}

func TestMysteryBox_AllDrawsMiss_Consolation(t *testing.T) {
	catalog := NewCatalog(DefaultCatalogConfig())
	item, _ := catalog.Lookup(ItemMysteryBox)
	acc := newShopAccount(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	rng := &fakeRand{floats: []float64{0.99, 0.99, 0.99, 0.99}}

	effect, err := item.Apply(acc, now, PurchaseOptions{}, rng)
	require.NoError(t, err)

	// Never a pure loss: the consolation payout always lands.
	assert.True(t, effect.Consolation)
	assert.Equal(t, 25, effect.CoinsWon)
	assert.Len(t, effect.Lines, 1)
	assert.Equal(t, account.Coins(25), acc.Coins)
	assert.Equal(t, 0, acc.XP)
	assert.False(t, acc.Boost)
	assert.Equal(t, 0, acc.Reputation)
}
