// Package eventhandler содержит обработчики доменных событий.
//
// Обработчики подписываются на шину событий и превращают факты домена
// в уведомления. Они выполняются после коммита мутации: сбой здесь
// стоит нам сообщения в чате, но никогда не откатывает журнал.
package eventhandler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/promohub/levelup-hub/internal/domain/shared"
)

// Notifier отправляет готовый HTML-текст в указанный чат.
// Реализуется адаптером над Telegram-клиентом.
type Notifier interface {
	Announce(ctx context.Context, chatID int64, html string) error
}

// ═══════════════════════════════════════════════════════════════════════════
// ON GRANT EXPIRED HANDLER
// Сообщает участнику в личку, что купленный перк закончился.
// ═══════════════════════════════════════════════════════════════════════════

// OnGrantExpiredHandler обрабатывает событие истечения перка.
type OnGrantExpiredHandler struct {
	notifier Notifier
	logger   *slog.Logger
	timeout  time.Duration
}

// NewOnGrantExpiredHandler создаёт обработчик истечения перков.
func NewOnGrantExpiredHandler(notifier Notifier, logger *slog.Logger) *OnGrantExpiredHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnGrantExpiredHandler{
		notifier: notifier,
		logger:   logger.With("handler", "on_grant_expired"),
		timeout:  10 * time.Second,
	}
}

// Handle реализует shared.EventHandler.
func (h *OnGrantExpiredHandler) Handle(event shared.Event) error {
	expired, ok := event.(shared.GrantExpiredEvent)
	if !ok {
		h.logger.Warn("received unexpected event", "event_type", event.EventType())
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	var text string
	switch expired.GrantKind {
	case "vip":
		text = "⭐ Your VIP membership has expired. Grab a new one in /shop to keep the double coins flowing!"
	case "boost":
		text = "⚡ Your XP boost has worn off. Back to regular gains!"
	case "title":
		text = "🏷 Your custom title has expired. The stage misses you, /shop has more."
	default:
		text = fmt.Sprintf("Your %s perk has expired.", expired.GrantKind)
	}

	// Личка может быть закрыта, это не ошибка обработчика.
	if err := h.notifier.Announce(ctx, expired.TelegramID, text); err != nil {
		h.logger.Info("could not deliver expiry notice",
			"telegram_id", expired.TelegramID,
			"grant_kind", expired.GrantKind,
			"error", err,
		)
	}
	return nil
}
