package account

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promohub/levelup-hub/internal/domain/progression"
)

func newTestAccount(t *testing.T) *Account {
	t.Helper()
	acc, err := NewAccount(NewAccountParams{
		ID:            "acc-1",
		TelegramID:    TelegramID(123456),
		Username:      "leo",
		FirstName:     "Leo",
		StartingCoins: 100,
	})
	require.NoError(t, err)
	return acc
}

func TestNewAccount_Validation(t *testing.T) {
	_, err := NewAccount(NewAccountParams{ID: "x", TelegramID: 0, FirstName: "Leo"})
	assert.ErrorIs(t, err, ErrInvalidTelegramID)

	_, err = NewAccount(NewAccountParams{ID: "x", TelegramID: 1, FirstName: "   "})
	assert.ErrorIs(t, err, ErrInvalidDisplayName)

	_, err = NewAccount(NewAccountParams{ID: "x", TelegramID: 1, FirstName: "Leo", StartingCoins: -1})
	assert.ErrorIs(t, err, ErrNegativeAmount)

	acc := newTestAccount(t)
	assert.Equal(t, 0, acc.XP)
	assert.Equal(t, 0, acc.Level)
	assert.Equal(t, Coins(100), acc.Coins)
	assert.Empty(t, acc.Achievements)
}

func TestAccount_AddExperience(t *testing.T) {
	acc := newTestAccount(t)

	oldLevel, newLevel, err := acc.AddExperience(999)
	require.NoError(t, err)
	assert.Equal(t, 0, oldLevel)
	assert.Equal(t, 9, newLevel)

	// Crossing the tier boundary at level 10.
	_, newLevel, err = acc.AddExperience(1)
	require.NoError(t, err)
	assert.Equal(t, 10, newLevel)
	assert.Equal(t, 1000, acc.XP)

	_, _, err = acc.AddExperience(-5)
	assert.ErrorIs(t, err, ErrNegativeAmount)
	assert.Equal(t, 1000, acc.XP)
}

func TestAccount_TakePrestige(t *testing.T) {
	acc := newTestAccount(t)

	// Level 99 is not enough.
	_, _, err := acc.AddExperience(67250 - 100)
	require.NoError(t, err)
	require.Equal(t, 99, acc.Level)
	assert.ErrorIs(t, acc.TakePrestige(), ErrPrestigeLevelNotReached)
	assert.Equal(t, 0, acc.Prestige)

	_, _, err = acc.AddExperience(100)
	require.NoError(t, err)
	require.Equal(t, 100, acc.Level)

	// После престижа аккаунт стоит ровно на первом уровне.
	require.NoError(t, acc.TakePrestige())
	assert.Equal(t, 1, acc.Prestige)
	assert.Equal(t, progression.ThresholdFor(1), acc.XP)
	assert.Equal(t, 1, acc.Level)
}

func TestAccount_CreditDebit(t *testing.T) {
	acc := newTestAccount(t)

	require.NoError(t, acc.Credit(50))
	assert.Equal(t, Coins(150), acc.Coins)
	assert.Equal(t, 50, acc.TotalEarned)

	require.NoError(t, acc.Debit(120))
	assert.Equal(t, Coins(30), acc.Coins)
	assert.Equal(t, 120, acc.TotalSpent)

	// Overdraft is rejected and leaves the balance untouched.
	err := acc.Debit(31)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, Coins(30), acc.Coins)
	assert.Equal(t, 120, acc.TotalSpent)

	assert.ErrorIs(t, acc.Credit(-1), ErrNegativeAmount)
	assert.ErrorIs(t, acc.Debit(-1), ErrNegativeAmount)
}

func TestAccount_Cooldown(t *testing.T) {
	acc := newTestAccount(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, acc.InCooldown(now, time.Minute))

	acc.RecordMessage(now)
	assert.Equal(t, 1, acc.MessageCount)
	assert.True(t, acc.InCooldown(now.Add(59*time.Second), time.Minute))
	assert.False(t, acc.InCooldown(now.Add(60*time.Second), time.Minute))
}

func TestAccount_ClaimDailyStreak(t *testing.T) {
	acc := newTestAccount(t)
	day1 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	streak, broken, err := acc.ClaimDailyStreak(day1)
	require.NoError(t, err)
	assert.Equal(t, 1, streak)
	assert.False(t, broken)

	// Same calendar day, even at 23:59.
	_, _, err = acc.ClaimDailyStreak(day1.Add(14*time.Hour + 59*time.Minute))
	assert.ErrorIs(t, err, ErrAlreadyClaimedToday)
	assert.Equal(t, 1, acc.DailyStreak)

	// Next calendar day keeps the streak going.
	streak, broken, err = acc.ClaimDailyStreak(day1.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, streak)
	assert.False(t, broken)

	// Skipping a day resets to 1, not 0.
	streak, broken, err = acc.ClaimDailyStreak(day1.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.Equal(t, 1, streak)
	assert.True(t, broken)
}

func TestAccount_GiveReputation(t *testing.T) {
	acc := newTestAccount(t)

	assert.ErrorIs(t, acc.GiveReputation(acc.TelegramID), ErrSelfReputation)
	assert.Equal(t, 0, acc.Reputation)

	require.NoError(t, acc.GiveReputation(TelegramID(999)))
	assert.Equal(t, 1, acc.Reputation)
}

func TestAccount_Grants(t *testing.T) {
	acc := newTestAccount(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, acc.SetTitle("Night Owl", now.Add(7*24*time.Hour)))
	acc.GrantVIPUntil(now.Add(30 * 24 * time.Hour))
	acc.GrantBoostUntil(now.Add(24 * time.Hour))

	title, ok := acc.TitleActiveAt(now)
	assert.True(t, ok)
	assert.Equal(t, "Night Owl", title)
	assert.True(t, acc.VIPActiveAt(now))
	assert.True(t, acc.BoostActiveAt(now))

	// Lazy reads treat the expiry instant as already expired.
	later := now.Add(24 * time.Hour)
	assert.False(t, acc.BoostActiveAt(later))
	assert.True(t, acc.VIPActiveAt(later))

	assert.ErrorIs(t, acc.SetTitle("this title is way too long to fit", now), ErrTitleTooLong)
}

func TestAccount_ClearExpiredGrants(t *testing.T) {
	acc := newTestAccount(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, acc.SetTitle("Owl", now.Add(time.Hour)))
	acc.GrantVIPUntil(now.Add(2 * time.Hour))
	acc.GrantBoostUntil(now.Add(3 * time.Hour))

	assert.False(t, acc.HasExpiredGrants(now))
	assert.Empty(t, acc.ClearExpiredGrants(now))

	cleared := acc.ClearExpiredGrants(now.Add(2 * time.Hour))
	assert.ElementsMatch(t, []GrantKind{GrantTitle, GrantVIP}, cleared)
	assert.Empty(t, acc.CustomTitle)
	assert.False(t, acc.VIP)
	assert.True(t, acc.Boost)
}

func TestAccount_SpotlightPriority(t *testing.T) {
	acc := newTestAccount(t)

	assert.False(t, acc.ConsumeSpotlightPriority())

	acc.MarkSpotlightPriority()
	assert.True(t, acc.ConsumeSpotlightPriority())
	// One-shot: a second consume finds nothing.
	assert.False(t, acc.ConsumeSpotlightPriority())
}

func TestAccount_Achievements(t *testing.T) {
	acc := newTestAccount(t)

	assert.True(t, acc.GrantAchievement("first_message"))
	assert.False(t, acc.GrantAchievement("first_message"))
	assert.True(t, acc.HasAchievement("first_message"))
	assert.Len(t, acc.Achievements, 1)

	assert.False(t, acc.GrantAchievement(""))
}

func TestAccount_DisplayName(t *testing.T) {
	acc := newTestAccount(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "Leo", acc.DisplayName(now))

	require.NoError(t, acc.SetTitle("Night Owl", now.Add(time.Hour)))
	acc.Prestige = 2
	acc.GrantVIPUntil(now.Add(time.Hour))

	assert.Equal(t, "Leo [Night Owl] 🌟🌟 👑", acc.DisplayName(now))

	// Expired title drops out of the rendered name.
	assert.Equal(t, "Leo 🌟🌟", acc.DisplayName(now.Add(2*time.Hour)))
}

func TestAccount_Clone(t *testing.T) {
	acc := newTestAccount(t)
	now := time.Now().UTC()
	require.NoError(t, acc.SetTitle("Owl", now.Add(time.Hour)))
	acc.GrantAchievement("first_message")

	clone := acc.Clone()
	clone.GrantAchievement("rich")
	*clone.CustomTitleExpiry = now.Add(99 * time.Hour)

	assert.Len(t, acc.Achievements, 1)
	assert.True(t, acc.CustomTitleExpiry.Equal(now.Add(time.Hour)))
}
