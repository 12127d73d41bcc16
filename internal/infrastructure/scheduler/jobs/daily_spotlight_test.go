package jobs

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promohub/levelup-hub/internal/domain/account"
	"github.com/promohub/levelup-hub/internal/infrastructure/persistence/memory"
)

// pickFirst always selects index 0.
type pickFirst struct{}

func (pickFirst) Float64() float64 { return 0 }
func (pickFirst) Intn(int) int     { return 0 }

func seedActive(t *testing.T, ledger *memory.Ledger, tid int64, priority bool) *account.Account {
	t.Helper()
	acc, err := ledger.Mutate(context.Background(), account.TelegramID(tid), "user", "User",
		func(a *account.Account, _ *account.Journal) error {
			a.RecordMessage(time.Now().UTC())
			if priority {
				a.MarkSpotlightPriority()
			}
			return nil
		})
	require.NoError(t, err)
	return acc
}

func newSpotlightJob(t *testing.T, ledger *memory.Ledger, history *memory.SpotlightHistory) *DailySpotlightJob {
	t.Helper()
	return NewDailySpotlightJob(ledger, history, nil, pickFirst{}, slog.Default(), DefaultDailySpotlightConfig())
}

func TestDailySpotlightJob_PicksActiveAccount(t *testing.T) {
	ledger := memory.NewLedger(slog.Default(), 0)
	history := memory.NewSpotlightHistory()
	seedActive(t, ledger, 100, false)

	job := newSpotlightJob(t, ledger, history)
	require.NoError(t, job.Run(context.Background()))

	picks, err := history.LastPicks(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, picks, 1)
	assert.Equal(t, account.TelegramID(100), picks[0].TelegramID)
	assert.False(t, picks[0].Priority)
}

func TestDailySpotlightJob_PriorityHolderWinsAndPassIsConsumed(t *testing.T) {
	ledger := memory.NewLedger(slog.Default(), 0)
	history := memory.NewSpotlightHistory()
	seedActive(t, ledger, 100, false)
	seedActive(t, ledger, 200, true)
	seedActive(t, ledger, 300, false)

	job := newSpotlightJob(t, ledger, history)
	require.NoError(t, job.Run(context.Background()))

	picks, err := history.LastPicks(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, picks, 1)
	assert.Equal(t, account.TelegramID(200), picks[0].TelegramID)
	assert.True(t, picks[0].Priority)

	winner, err := ledger.GetByTelegramID(context.Background(), 200)
	require.NoError(t, err)
	assert.False(t, winner.SpotlightPriority, "the pass is one-shot")
}

func TestDailySpotlightJob_SecondRunSameDayIsNoop(t *testing.T) {
	ledger := memory.NewLedger(slog.Default(), 0)
	history := memory.NewSpotlightHistory()
	seedActive(t, ledger, 100, false)

	job := newSpotlightJob(t, ledger, history)
	require.NoError(t, job.Run(context.Background()))
	require.NoError(t, job.Run(context.Background()))

	picks, err := history.LastPicks(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, picks, 1)
}

func TestDailySpotlightJob_NoCandidatesIsNoop(t *testing.T) {
	ledger := memory.NewLedger(slog.Default(), 0)
	history := memory.NewSpotlightHistory()

	job := newSpotlightJob(t, ledger, history)
	require.NoError(t, job.Run(context.Background()))

	picks, err := history.LastPicks(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, picks)
}
