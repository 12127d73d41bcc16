package eventhandler

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promohub/levelup-hub/internal/domain/shared"
)

type recordingNotifier struct {
	chatIDs []int64
	texts   []string
	err     error
}

func (n *recordingNotifier) Announce(_ context.Context, chatID int64, html string) error {
	n.chatIDs = append(n.chatIDs, chatID)
	n.texts = append(n.texts, html)
	return n.err
}

func TestOnGrantExpired_SendsDirectMessage(t *testing.T) {
	notifier := &recordingNotifier{}
	h := NewOnGrantExpiredHandler(notifier, slog.Default())

	event := shared.NewGrantExpiredEvent("acc-1", 555, "vip", time.Now())
	require.NoError(t, h.Handle(event))

	require.Len(t, notifier.texts, 1)
	assert.Equal(t, int64(555), notifier.chatIDs[0])
	assert.Contains(t, notifier.texts[0], "VIP")
}

func TestOnGrantExpired_DeliveryFailureIsSwallowed(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("bot was blocked")}
	h := NewOnGrantExpiredHandler(notifier, slog.Default())

	event := shared.NewGrantExpiredEvent("acc-1", 555, "boost", time.Now())
	assert.NoError(t, h.Handle(event))
}

func TestOnGrantExpired_IgnoresForeignEvents(t *testing.T) {
	notifier := &recordingNotifier{}
	h := NewOnGrantExpiredHandler(notifier, slog.Default())

	require.NoError(t, h.Handle(shared.NewStreakBrokenEvent("acc-1", 555, 7)))
	assert.Empty(t, notifier.texts)
}

func TestOnSpotlightChosen_AnnouncesToGroupChat(t *testing.T) {
	notifier := &recordingNotifier{}
	h := NewOnSpotlightChosenHandler(notifier, -100200300, slog.Default())

	event := shared.NewSpotlightChosenEvent("acc-1", 555, "Aruzhan 🌟", true)
	require.NoError(t, h.Handle(event))

	require.Len(t, notifier.texts, 1)
	assert.Equal(t, int64(-100200300), notifier.chatIDs[0])
	assert.Contains(t, notifier.texts[0], "Aruzhan")
	assert.Contains(t, notifier.texts[0], "priority pass")
}

func TestOnSpotlightChosen_NoChatConfigured(t *testing.T) {
	notifier := &recordingNotifier{}
	h := NewOnSpotlightChosenHandler(notifier, 0, slog.Default())

	event := shared.NewSpotlightChosenEvent("acc-1", 555, "Aruzhan", false)
	require.NoError(t, h.Handle(event))
	assert.Empty(t, notifier.texts)
}
