package handler

import (
	"context"
	"fmt"

	"github.com/promohub/levelup-hub/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// START HANDLER
// Команда /start - знакомство с ботом. Аккаунт заводится автоматически
// с первого сообщения в чате, поэтому онбординга как такового нет:
// просто объясняем правила игры.
// ══════════════════════════════════════════════════════════════════════════════

// StartHandler обрабатывает команду /start.
type StartHandler struct{}

// NewStartHandler создаёт обработчик /start.
func NewStartHandler() *StartHandler {
	return &StartHandler{}
}

// Handle отвечает приветствием и кратким описанием механики.
func (h *StartHandler) Handle(_ context.Context, req Request) (*Response, error) {
	text := fmt.Sprintf(
		"👋 Привет, <b>%s</b>! Я LevelUp Leo, хранитель прогресса ThePromotionHub.\n\n"+
			"Всё просто:\n"+
			"💬 Пишешь в чат - получаешь XP и HubCoins\n"+
			"📈 XP копится - растёт уровень\n"+
			"💰 HubCoins тратятся в /shop на плюшки\n"+
			"🎁 Раз в день /daily даёт бонус за стрик\n"+
			"⭐ Уровень 100 открывает /prestige\n\n"+
			"Команды: /help. Твоя карточка: /stats.",
		presenter.EscapeHTML(req.FirstName),
	)

	return &Response{Text: text}, nil
}
