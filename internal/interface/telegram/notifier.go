package telegram

import (
	"context"

	"github.com/promohub/levelup-hub/internal/infrastructure/external/telegram"
)

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFIER
// Мост между обработчиками доменных событий и Bot API: событийный слой
// знает только Announce, детали доставки живут здесь.
// ══════════════════════════════════════════════════════════════════════════════

// Notifier отправляет уведомления через Bot API.
type Notifier struct {
	client *telegram.Client
}

// NewNotifier создаёт нотификатор поверх клиента.
func NewNotifier(client *telegram.Client) *Notifier {
	return &Notifier{client: client}
}

// Announce доставляет HTML-сообщение в чат или личку.
func (n *Notifier) Announce(ctx context.Context, chatID int64, html string) error {
	_, err := n.client.SendHTML(ctx, chatID, html)
	return err
}
