package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promohub/levelup-hub/internal/domain/account"
	"github.com/promohub/levelup-hub/internal/domain/shared"
)

// capturePublisher collects published events for assertions.
type capturePublisher struct {
	events []shared.Event
}

func (p *capturePublisher) Publish(event shared.Event) error {
	p.events = append(p.events, event)
	return nil
}

func seedGrants(t *testing.T, ledger account.Ledger, tid int64, titleExpiry, vipExpiry time.Time) {
	t.Helper()
	_, err := ledger.Mutate(context.Background(), account.TelegramID(tid), "user", "User",
		func(a *account.Account, _ *account.Journal) error {
			if err := a.SetTitle("Hub Legend", titleExpiry); err != nil {
				return err
			}
			a.GrantVIPUntil(vipExpiry)
			return nil
		})
	require.NoError(t, err)
}

func TestSweepExpiredGrants_ClearsOnlyExpired(t *testing.T) {
	ledger := newTestLedger()
	pub := &capturePublisher{}
	handler := NewSweepExpiredGrantsHandler(ledger, pub, 0)

	past := time.Now().UTC().Add(-time.Hour)
	future := time.Now().UTC().Add(time.Hour)
	seedGrants(t, ledger, 1, past, future) // title expired, VIP alive
	seedGrants(t, ledger, 2, future, future)

	result, err := handler.Handle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Scanned)
	assert.Equal(t, 1, result.Cleared)
	require.Len(t, result.Expired, 1)
	assert.Equal(t, account.TelegramID(1), result.Expired[0].TelegramID)
	assert.Equal(t, account.GrantTitle, result.Expired[0].Kind)

	// The stored fields are gone but the live VIP survived.
	acc, err := ledger.GetByTelegramID(context.Background(), account.TelegramID(1))
	require.NoError(t, err)
	_, active := acc.TitleActiveAt(time.Now().UTC())
	assert.False(t, active)
	assert.True(t, acc.VIPActiveAt(time.Now().UTC()))
}

func TestSweepExpiredGrants_PublishesExpiryEvents(t *testing.T) {
	ledger := newTestLedger()
	pub := &capturePublisher{}
	handler := NewSweepExpiredGrantsHandler(ledger, pub, 0)

	past := time.Now().UTC().Add(-time.Minute)
	seedGrants(t, ledger, 1, past, past)

	result, err := handler.Handle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Cleared)

	var expired, completed int
	for _, e := range pub.events {
		switch e.EventType() {
		case shared.EventGrantExpired:
			expired++
		case shared.EventSweepCompleted:
			completed++
		}
	}
	assert.Equal(t, 2, expired)
	assert.Equal(t, 1, completed)
}

func TestSweepExpiredGrants_EmptyLedger(t *testing.T) {
	handler := NewSweepExpiredGrantsHandler(newTestLedger(), nopPublisher{}, 0)

	result, err := handler.Handle(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Scanned)
	assert.Zero(t, result.Cleared)
}
