// Package handler contains Telegram command handlers.
// Each handler follows the pattern: receive request → call application
// layer → format response. Handlers never talk to the Bot API directly;
// they return a Response and the bot delivers it.
package handler

import (
	"errors"

	"github.com/promohub/levelup-hub/internal/application/command"
	"github.com/promohub/levelup-hub/internal/domain/account"
	"github.com/promohub/levelup-hub/internal/domain/economy"
	"github.com/promohub/levelup-hub/internal/infrastructure/external/telegram"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMMON REQUEST / RESPONSE
// ══════════════════════════════════════════════════════════════════════════════

// Request - нормализованная команда от пользователя.
type Request struct {
	// TelegramID / Username / FirstName - отправитель команды.
	TelegramID int64
	Username   string
	FirstName  string

	// ChatID / MessageID - откуда пришла команда.
	ChatID    int64
	MessageID int64

	// Args - текст после имени команды, без ведущих пробелов.
	Args string

	// IsGroup - команда пришла из группового чата.
	IsGroup bool

	// ReplyToUser - автор сообщения, на которое ответили командой.
	// Заполнен только для команд-ответов (/rep, /gift).
	ReplyToUser *telegram.User
}

// Response - ответ бота на команду. HTML-разметка.
type Response struct {
	Text     string
	Keyboard *telegram.InlineKeyboardMarkup

	// ReplyTo - id сообщения, на которое отвечаем (0 - без ответа).
	ReplyTo int64
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERROR TRANSLATION
// Ожидаемые доменные ошибки превращаются в дружелюбный текст.
// Всё остальное уходит наверх и логируется ботом как сбой.
// ══════════════════════════════════════════════════════════════════════════════

// UserMessage переводит доменную ошибку в текст для пользователя.
// Пустая строка означает неожиданную ошибку.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, account.ErrInsufficientBalance):
		return "💸 Не хватает HubCoins. Загляни в /stats и подкопи."
	case errors.Is(err, account.ErrAlreadyClaimedToday):
		return "⏰ Сегодняшний бонус уже забран. Возвращайся завтра!"
	case errors.Is(err, account.ErrPrestigeLevelNotReached):
		return "⭐ Престиж открывается на уровне 100. Продолжай общаться!"
	case errors.Is(err, account.ErrSelfReputation):
		return "🤨 Репутацию самому себе? Хорошая попытка."
	case errors.Is(err, account.ErrAccountNotFound):
		return "👻 Этот участник ещё не писал в чат, бот его не знает."
	case errors.Is(err, command.ErrSelfGift):
		return "🎁 Подарок самому себе не считается."
	case errors.Is(err, economy.ErrUnknownItem):
		return "❓ Такого товара нет. Открой /shop и посмотри список."
	case errors.Is(err, economy.ErrTitleRequired):
		return "🏷 Укажи текст титула: <code>/buy custom-title Твой Титул</code>."
	case errors.Is(err, economy.ErrTitleTooLong), errors.Is(err, account.ErrTitleTooLong):
		return "🏷 Слишком длинный титул, максимум 20 символов."
	case errors.Is(err, economy.ErrTitleForbidden):
		return "🏷 Такой титул нельзя: он выдаёт себя за администрацию."
	default:
		return ""
	}
}
