// Package telegram implements the Telegram bot interface for LevelUp Leo.
// This package is the entry point for all Telegram interactions: it owns
// the update loop, routes commands and callbacks to handlers, and feeds
// every plain group message into the activity pipeline.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/promohub/levelup-hub/internal/infrastructure/external/telegram"
	"github.com/promohub/levelup-hub/internal/interface/telegram/handler"
	"github.com/promohub/levelup-hub/internal/interface/telegram/middleware"
)

// ══════════════════════════════════════════════════════════════════════════════
// BOT CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// BotConfig содержит настройки бота.
type BotConfig struct {
	// MaxConcurrentUpdates ограничивает параллельную обработку обновлений.
	MaxConcurrentUpdates int

	// HandlerTimeout - бюджет времени на одно обновление.
	HandlerTimeout time.Duration

	// ShutdownTimeout - ожидание обработчиков при остановке.
	ShutdownTimeout time.Duration

	// GroupChatID ограничивает пайплайн активности одной группой.
	// Ноль - без ограничения (любой групповой чат).
	GroupChatID int64

	// Logger для структурных логов.
	Logger *slog.Logger
}

// DefaultBotConfig возвращает рабочие значения по умолчанию.
func DefaultBotConfig() BotConfig {
	return BotConfig{
		MaxConcurrentUpdates: 100,
		HandlerTimeout:       30 * time.Second,
		ShutdownTimeout:      30 * time.Second,
		Logger:               slog.Default(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// BOT
// ══════════════════════════════════════════════════════════════════════════════

// Bot - жизненный цикл Telegram-бота: long polling, маршрутизация,
// лимиты и доставка ответов.
type Bot struct {
	client   *telegram.Client
	router   *Router
	activity *handler.ActivityHandler
	limiter  *middleware.RateLimiter

	config BotConfig
	logger *slog.Logger

	// sem ограничивает число одновременно обрабатываемых обновлений.
	sem chan struct{}
	wg  sync.WaitGroup

	stats botStats
}

// botStats - атомарные счётчики для health-эндпоинта.
type botStats struct {
	updates     atomic.Int64
	commands    atomic.Int64
	messages    atomic.Int64
	callbacks   atomic.Int64
	rateLimited atomic.Int64
	failures    atomic.Int64
	startedAt   time.Time
}

// BotStatsSnapshot - моментальный снимок счётчиков.
type BotStatsSnapshot struct {
	Updates     int64     `json:"updates"`
	Commands    int64     `json:"commands"`
	Messages    int64     `json:"messages"`
	Callbacks   int64     `json:"callbacks"`
	RateLimited int64     `json:"rate_limited"`
	Failures    int64     `json:"failures"`
	StartedAt   time.Time `json:"started_at"`
}

// NewBot собирает бота из готовых компонентов.
// activity может быть nil: тогда обычные сообщения игнорируются.
func NewBot(client *telegram.Client, router *Router, activity *handler.ActivityHandler, limiter *middleware.RateLimiter, config BotConfig) *Bot {
	if config.MaxConcurrentUpdates <= 0 {
		config.MaxConcurrentUpdates = DefaultBotConfig().MaxConcurrentUpdates
	}
	if config.HandlerTimeout <= 0 {
		config.HandlerTimeout = DefaultBotConfig().HandlerTimeout
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Bot{
		client:   client,
		router:   router,
		activity: activity,
		limiter:  limiter,
		config:   config,
		logger:   config.Logger.With("component", "telegram_bot"),
		sem:      make(chan struct{}, config.MaxConcurrentUpdates),
	}
}

// Start запускает long polling и блокируется до отмены контекста.
func (b *Bot) Start(ctx context.Context) error {
	me, err := b.client.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("bot: getMe: %w", err)
	}
	b.logger.Info("bot authorized", "username", me.Username, "id", me.ID)

	// Polling и webhook взаимоисключающие, старый webhook снимается.
	if err := b.client.DeleteWebhook(ctx, true); err != nil {
		return fmt.Errorf("bot: delete webhook: %w", err)
	}

	b.stats.startedAt = time.Now()

	err = b.client.StartPolling(ctx, b.handleUpdate)

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(b.config.ShutdownTimeout):
		b.logger.Warn("shutdown timeout, abandoning in-flight updates")
	}

	return err
}

// IsHealthy сообщает, отвечает ли Bot API.
func (b *Bot) IsHealthy(ctx context.Context) bool {
	return b.client.IsHealthy(ctx)
}

// Stats возвращает снимок счётчиков.
func (b *Bot) Stats() BotStatsSnapshot {
	return BotStatsSnapshot{
		Updates:     b.stats.updates.Load(),
		Commands:    b.stats.commands.Load(),
		Messages:    b.stats.messages.Load(),
		Callbacks:   b.stats.callbacks.Load(),
		RateLimited: b.stats.rateLimited.Load(),
		Failures:    b.stats.failures.Load(),
		StartedAt:   b.stats.startedAt,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE DISPATCH
// ══════════════════════════════════════════════════════════════════════════════

// handleUpdate ставит обновление в обработку, не блокируя polling-цикл.
func (b *Bot) handleUpdate(ctx context.Context, update *telegram.Update) error {
	select {
	case b.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	b.stats.updates.Add(1)
	b.wg.Add(1)

	go func() {
		defer b.wg.Done()
		defer func() { <-b.sem }()
		defer func() {
			if r := recover(); r != nil {
				b.stats.failures.Add(1)
				b.logger.Error("panic in update handler", "panic", r, "update_id", update.UpdateID)
			}
		}()

		hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.config.HandlerTimeout)
		defer cancel()

		b.processUpdate(hctx, update)
	}()

	return nil
}

// processUpdate разбирает тип обновления.
func (b *Bot) processUpdate(ctx context.Context, update *telegram.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.processCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.processMessage(ctx, update.Message)
	}
}

// processMessage - команда уходит в router, обычный групповой текст
// в пайплайн активности.
func (b *Bot) processMessage(ctx context.Context, msg *telegram.Message) {
	if msg.From == nil || msg.From.IsBot || msg.Chat == nil {
		return
	}

	if cmd := telegram.ExtractCommand(msg); cmd != "" {
		b.processCommand(ctx, msg, cmd)
		return
	}

	if b.activity == nil || !telegram.IsGroupChat(msg) || msg.Text == "" {
		return
	}

	// Активность копится только в своей группе: в чужих чатах бот
	// молчит и ничего не начисляет.
	if b.config.GroupChatID != 0 && msg.Chat.ID != b.config.GroupChatID {
		return
	}

	b.stats.messages.Add(1)

	announcements, err := b.activity.Handle(ctx, handler.ActivityRequest{
		TelegramID: msg.From.ID,
		Username:   msg.From.Username,
		FirstName:  msg.From.FirstName,
		ChatID:     msg.Chat.ID,
		Timestamp:  time.Unix(msg.Date, 0),
	})
	if err != nil {
		b.stats.failures.Add(1)
		b.logger.Error("activity processing failed", "telegram_id", msg.From.ID, "error", err)
		return
	}

	for _, text := range announcements {
		if _, err := b.client.SendHTML(ctx, msg.Chat.ID, text); err != nil {
			b.logger.Warn("announcement delivery failed", "chat_id", msg.Chat.ID, "error", err)
		}
	}
}

// processCommand прогоняет команду через лимитер и обработчик.
func (b *Bot) processCommand(ctx context.Context, msg *telegram.Message, cmd string) {
	h, ok := b.router.Command(cmd)
	if !ok {
		// Чужие и неизвестные команды молча пропускаются, в группе
		// на каждую опечатку отвечать нельзя.
		return
	}

	if b.limiter != nil {
		if res := b.limiter.Check(msg.From.ID); !res.Allowed {
			b.stats.rateLimited.Add(1)
			if !res.Banned {
				_, _ = b.client.SendReply(ctx, msg.Chat.ID, msg.MessageID, res.Message())
			}
			return
		}
	}

	b.stats.commands.Add(1)

	req := handler.Request{
		TelegramID: msg.From.ID,
		Username:   msg.From.Username,
		FirstName:  msg.From.FirstName,
		ChatID:     msg.Chat.ID,
		MessageID:  msg.MessageID,
		Args:       telegram.ExtractCommandArgs(msg),
		IsGroup:    telegram.IsGroupChat(msg),
	}
	if msg.ReplyToMessage != nil {
		req.ReplyToUser = msg.ReplyToMessage.From
	}

	resp, err := h.Handle(ctx, req)
	if err != nil {
		b.stats.failures.Add(1)
		b.logger.Error("command failed", "command", cmd, "telegram_id", msg.From.ID, "error", err)
		_, _ = b.client.SendReply(ctx, msg.Chat.ID, msg.MessageID, "😵 Что-то пошло не так. Попробуй ещё раз чуть позже.")
		return
	}

	b.deliver(ctx, msg.Chat.ID, resp)
}

// processCallback обрабатывает нажатие inline-кнопки.
func (b *Bot) processCallback(ctx context.Context, query *telegram.CallbackQuery) {
	if query.From == nil || query.Message == nil || query.Message.Chat == nil {
		return
	}

	h, payload, ok := b.router.Callback(query.Data)
	if !ok {
		_ = b.client.AnswerCallbackQuery(ctx, query.ID, "", false)
		return
	}

	if b.limiter != nil {
		if res := b.limiter.Check(query.From.ID); !res.Allowed {
			b.stats.rateLimited.Add(1)
			_ = b.client.AnswerCallbackQuery(ctx, query.ID, res.Message(), true)
			return
		}
	}

	b.stats.callbacks.Add(1)

	req := handler.Request{
		TelegramID: query.From.ID,
		Username:   query.From.Username,
		FirstName:  query.From.FirstName,
		ChatID:     query.Message.Chat.ID,
		MessageID:  query.Message.MessageID,
		IsGroup:    telegram.IsGroupChat(query.Message),
	}

	resp, err := h.HandleCallback(ctx, req, payload)
	if err != nil {
		b.stats.failures.Add(1)
		b.logger.Error("callback failed", "data", query.Data, "telegram_id", query.From.ID, "error", err)
		_ = b.client.AnswerCallbackQuery(ctx, query.ID, "Не получилось, попробуй позже.", true)
		return
	}

	_ = b.client.AnswerCallbackQuery(ctx, query.ID, "", false)
	b.deliver(ctx, query.Message.Chat.ID, resp)
}

// deliver отправляет ответ обработчика в чат.
func (b *Bot) deliver(ctx context.Context, chatID int64, resp *handler.Response) {
	if resp == nil || resp.Text == "" {
		return
	}

	_, err := b.client.SendMessage(ctx, telegram.SendMessageParams{
		ChatID:            chatID,
		Text:              resp.Text,
		ParseMode:         "HTML",
		DisableWebPreview: true,
		ReplyToMessageID:  resp.ReplyTo,
		ReplyMarkup:       resp.Keyboard,
	})
	if err != nil {
		if telegram.IsUserBlocked(err) {
			b.logger.Info("user blocked the bot", "chat_id", chatID)
			return
		}
		b.stats.failures.Add(1)
		b.logger.Error("response delivery failed", "chat_id", chatID, "error", err)
	}
}
