package command

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promohub/levelup-hub/internal/domain/account"
	"github.com/promohub/levelup-hub/internal/domain/achievement"
	"github.com/promohub/levelup-hub/internal/domain/shared"
	"github.com/promohub/levelup-hub/internal/infrastructure/persistence/memory"
)

// nopPublisher swallows events in tests.
type nopPublisher struct{}

func (nopPublisher) Publish(shared.Event) error { return nil }

// seqRand replays fixed rolls so gains are deterministic.
type seqRand struct {
	ints   []int
	floats []float64
	pos    int
	fpos   int
}

func (r *seqRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0
	}
	v := r.floats[r.fpos%len(r.floats)]
	r.fpos++
	return v
}

func (r *seqRand) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[r.pos%len(r.ints)]
	r.pos++
	return v % n
}

func newTestLedger() *memory.Ledger {
	return memory.NewLedger(slog.Default(), 100)
}

func TestProcessActivity_FirstMessage(t *testing.T) {
	ledger := newTestLedger()
	handler := NewProcessActivityHandler(ledger, achievement.NewCatalog(), nopPublisher{},
		&seqRand{ints: []int{5, 2}}, DefaultProcessActivityConfig())

	result, err := handler.Handle(context.Background(), ProcessActivityCommand{
		TelegramID: 42,
		FirstName:  "Leo",
		Timestamp:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.True(t, result.Counted)
	// Rolls: XP = 10 + 5, coins = 1 + 2.
	assert.Equal(t, 15, result.XPGained)
	assert.Equal(t, 3, result.CoinsGained)
	assert.Equal(t, 1, result.Account.MessageCount)

	// First message unlocks first_message inside the same mutation.
	require.Len(t, result.Achievements, 1)
	assert.Equal(t, achievement.FirstMessage, result.Achievements[0].ID)
	assert.Equal(t, account.Coins(100+3+10), result.Account.Coins)
}

func TestProcessActivity_CooldownDebounce(t *testing.T) {
	ledger := newTestLedger()
	handler := NewProcessActivityHandler(ledger, achievement.NewCatalog(), nopPublisher{},
		&seqRand{ints: []int{0, 0}}, DefaultProcessActivityConfig())

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := handler.Handle(context.Background(), ProcessActivityCommand{
		TelegramID: 42, FirstName: "Leo", Timestamp: base,
	})
	require.NoError(t, err)
	require.True(t, first.Counted)

	// 30 seconds later: inside the window, a silent no-op.
	second, err := handler.Handle(context.Background(), ProcessActivityCommand{
		TelegramID: 42, FirstName: "Leo", Timestamp: base.Add(30 * time.Second),
	})
	require.NoError(t, err)
	assert.False(t, second.Counted)

	snap, err := ledger.GetByTelegramID(context.Background(), account.TelegramID(42))
	require.NoError(t, err)
	assert.Equal(t, 1, snap.MessageCount)
	assert.Equal(t, first.Account.XP, snap.XP)

	// 60 seconds later: counted again.
	third, err := handler.Handle(context.Background(), ProcessActivityCommand{
		TelegramID: 42, FirstName: "Leo", Timestamp: base.Add(60 * time.Second),
	})
	require.NoError(t, err)
	assert.True(t, third.Counted)
	assert.Equal(t, 2, third.Account.MessageCount)
}

func TestProcessActivity_LevelUpBonus(t *testing.T) {
	ledger := newTestLedger()
	handler := NewProcessActivityHandler(ledger, achievement.NewCatalog(), nopPublisher{},
		&seqRand{ints: []int{10, 0}}, DefaultProcessActivityConfig())

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	// Seed an account sitting just below level 10.
	_, err := ledger.Mutate(context.Background(), account.TelegramID(7), "", "Leo",
		func(a *account.Account, _ *account.Journal) error {
			_, _, err := a.AddExperience(990)
			return err
		})
	require.NoError(t, err)

	result, err := handler.Handle(context.Background(), ProcessActivityCommand{
		TelegramID: 7, FirstName: "Leo", Timestamp: base,
	})
	require.NoError(t, err)

	// XP roll 10+10=20 crosses 1000: level 9 -> 10, bonus 10*50.
	assert.True(t, result.LeveledUp)
	assert.Equal(t, 9, result.OldLevel)
	assert.Equal(t, 10, result.NewLevel)
	assert.Equal(t, 500, result.LevelUpBonus)

	// level_10 and first_message unlock in the same mutation.
	var ids []string
	for _, def := range result.Achievements {
		ids = append(ids, def.ID)
	}
	assert.Contains(t, ids, achievement.Level10)
	assert.Contains(t, ids, achievement.FirstMessage)
}

func TestProcessActivity_BoostAndVIPMultipliers(t *testing.T) {
	ledger := newTestLedger()
	handler := NewProcessActivityHandler(ledger, achievement.NewCatalog(), nopPublisher{},
		&seqRand{ints: []int{0, 0}}, DefaultProcessActivityConfig())

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := ledger.Mutate(context.Background(), account.TelegramID(9), "", "Leo",
		func(a *account.Account, _ *account.Journal) error {
			a.GrantBoostUntil(base.Add(time.Hour))
			a.GrantVIPUntil(base.Add(time.Hour))
			return nil
		})
	require.NoError(t, err)

	result, err := handler.Handle(context.Background(), ProcessActivityCommand{
		TelegramID: 9, FirstName: "Leo", Timestamp: base,
	})
	require.NoError(t, err)

	// Minimum rolls doubled independently: XP 10*2, coins 1*2.
	assert.True(t, result.BoostApplied)
	assert.True(t, result.VIPApplied)
	assert.Equal(t, 20, result.XPGained)
	assert.Equal(t, 2, result.CoinsGained)
}

func TestProcessActivity_Validation(t *testing.T) {
	handler := NewProcessActivityHandler(newTestLedger(), achievement.NewCatalog(), nopPublisher{},
		nil, DefaultProcessActivityConfig())

	_, err := handler.Handle(context.Background(), ProcessActivityCommand{TelegramID: 0, FirstName: "Leo"})
	assert.Error(t, err)

	_, err = handler.Handle(context.Background(), ProcessActivityCommand{TelegramID: 1})
	assert.Error(t, err)
}
