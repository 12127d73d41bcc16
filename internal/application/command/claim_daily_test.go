package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promohub/levelup-hub/internal/domain/account"
	"github.com/promohub/levelup-hub/internal/domain/achievement"
)

func TestClaimDaily_FirstClaim(t *testing.T) {
	ledger := newTestLedger()
	handler := NewClaimDailyHandler(ledger, achievement.NewCatalog(), nopPublisher{}, DefaultClaimDailyConfig())

	day1 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	result, err := handler.Handle(context.Background(), ClaimDailyCommand{
		TelegramID: 42, FirstName: "Leo", Timestamp: day1,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Streak)
	assert.Equal(t, 50, result.Coins)
	assert.False(t, result.StreakBroken)
}

func TestClaimDaily_SameDayRejected(t *testing.T) {
	ledger := newTestLedger()
	handler := NewClaimDailyHandler(ledger, achievement.NewCatalog(), nopPublisher{}, DefaultClaimDailyConfig())

	day1 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	_, err := handler.Handle(context.Background(), ClaimDailyCommand{
		TelegramID: 42, FirstName: "Leo", Timestamp: day1,
	})
	require.NoError(t, err)

	_, err = handler.Handle(context.Background(), ClaimDailyCommand{
		TelegramID: 42, FirstName: "Leo", Timestamp: day1.Add(10 * time.Hour),
	})
	assert.ErrorIs(t, err, account.ErrAlreadyClaimedToday)

	// The rejected claim paid nothing.
	snap, err := ledger.GetByTelegramID(context.Background(), account.TelegramID(42))
	require.NoError(t, err)
	assert.Equal(t, account.Coins(150), snap.Coins)
}

func TestClaimDaily_StreakGrowthAndPayout(t *testing.T) {
	ledger := newTestLedger()
	handler := NewClaimDailyHandler(ledger, achievement.NewCatalog(), nopPublisher{}, DefaultClaimDailyConfig())

	day := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	var last *ClaimDailyResult
	for i := 0; i < 7; i++ {
		result, err := handler.Handle(context.Background(), ClaimDailyCommand{
			TelegramID: 42, FirstName: "Leo", Timestamp: day.AddDate(0, 0, i),
		})
		require.NoError(t, err)
		last = result
	}

	assert.Equal(t, 7, last.Streak)
	// Day 7 payout: 50 + 10*6.
	assert.Equal(t, 110, last.Coins)

	// The one-week streak achievement lands with the seventh claim.
	var ids []string
	for _, def := range last.Achievements {
		ids = append(ids, def.ID)
	}
	assert.Contains(t, ids, achievement.Streak7)
}

func TestClaimDaily_BrokenStreakResetsToOne(t *testing.T) {
	ledger := newTestLedger()
	handler := NewClaimDailyHandler(ledger, achievement.NewCatalog(), nopPublisher{}, DefaultClaimDailyConfig())

	day := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := handler.Handle(context.Background(), ClaimDailyCommand{
			TelegramID: 42, FirstName: "Leo", Timestamp: day.AddDate(0, 0, i),
		})
		require.NoError(t, err)
	}

	// Two silent days, then a claim: reset to 1.
	result, err := handler.Handle(context.Background(), ClaimDailyCommand{
		TelegramID: 42, FirstName: "Leo", Timestamp: day.AddDate(0, 0, 5),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Streak)
	assert.True(t, result.StreakBroken)
	assert.Equal(t, 50, result.Coins)
}
