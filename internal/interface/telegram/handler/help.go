package handler

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// HELP HANDLER
// Команда /help - справка по всем командам.
// ══════════════════════════════════════════════════════════════════════════════

const helpText = "📖 <b>Команды LevelUp Leo</b>\n\n" +
	"👤 <b>Профиль</b>\n" +
	"/stats - твоя карточка: уровень, баланс, достижения\n" +
	"/top - рейтинг участников\n" +
	"/history - последние операции с HubCoins\n\n" +
	"💰 <b>Экономика</b>\n" +
	"/daily - ежедневный бонус (стрик увеличивает награду)\n" +
	"/shop - магазин плюшек\n" +
	"/buy &lt;товар&gt; - покупка (титул: <code>/buy custom-title Текст</code>)\n" +
	"/gift &lt;сумма&gt; - подарить HubCoins (ответом на сообщение)\n\n" +
	"🤝 <b>Сообщество</b>\n" +
	"/rep - +1 репутации автору сообщения (ответом)\n" +
	"/prestige - сбросить уровень 100 ради звезды ⭐\n\n" +
	"<i>XP и HubCoins начисляются за сообщения в чате сами собой.</i>"

// HelpHandler обрабатывает команду /help.
type HelpHandler struct{}

// NewHelpHandler создаёт обработчик /help.
func NewHelpHandler() *HelpHandler {
	return &HelpHandler{}
}

// Handle возвращает справку.
func (h *HelpHandler) Handle(_ context.Context, _ Request) (*Response, error) {
	return &Response{Text: helpText}, nil
}
