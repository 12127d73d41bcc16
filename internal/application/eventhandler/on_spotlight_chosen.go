package eventhandler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/promohub/levelup-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON SPOTLIGHT CHOSEN HANDLER
// Объявляет победителя ежедневного розыгрыша в групповом чате.
// ═══════════════════════════════════════════════════════════════════════════

// OnSpotlightChosenHandler обрабатывает событие выбора spotlight.
type OnSpotlightChosenHandler struct {
	notifier Notifier
	chatID   int64
	logger   *slog.Logger
	timeout  time.Duration
}

// NewOnSpotlightChosenHandler создаёт обработчик. chatID - групповой чат,
// в который бот объявляет победителя.
func NewOnSpotlightChosenHandler(notifier Notifier, chatID int64, logger *slog.Logger) *OnSpotlightChosenHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnSpotlightChosenHandler{
		notifier: notifier,
		chatID:   chatID,
		logger:   logger.With("handler", "on_spotlight_chosen"),
		timeout:  10 * time.Second,
	}
}

// Handle реализует shared.EventHandler.
func (h *OnSpotlightChosenHandler) Handle(event shared.Event) error {
	chosen, ok := event.(shared.SpotlightChosenEvent)
	if !ok {
		h.logger.Warn("received unexpected event", "event_type", event.EventType())
		return nil
	}
	if h.chatID == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	text := fmt.Sprintf(
		"🌟 <b>Spotlight of the day!</b>\n\nGive it up for %s - today's featured member! 🎉",
		chosen.DisplayName,
	)
	if chosen.Priority {
		text += "\n\n<i>Won with a spotlight priority pass.</i>"
	}

	if err := h.notifier.Announce(ctx, h.chatID, text); err != nil {
		return fmt.Errorf("announce spotlight: %w", err)
	}
	return nil
}
