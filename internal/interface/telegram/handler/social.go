package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/promohub/levelup-hub/internal/application/command"
	"github.com/promohub/levelup-hub/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// SOCIAL HANDLERS
// /rep и /gift работают только ответом на сообщение: так получатель
// определяется без угадывания по @username.
// ══════════════════════════════════════════════════════════════════════════════

// RepHandler обрабатывает команду /rep.
type RepHandler struct {
	reputation *command.GiveReputationHandler
	announce   *presenter.AnnouncementPresenter
}

// NewRepHandler создаёт обработчик /rep.
func NewRepHandler(reputation *command.GiveReputationHandler, announce *presenter.AnnouncementPresenter) *RepHandler {
	return &RepHandler{reputation: reputation, announce: announce}
}

// Handle начисляет +1 репутации автору сообщения, на которое ответили.
func (h *RepHandler) Handle(ctx context.Context, req Request) (*Response, error) {
	target := req.ReplyToUser
	if target == nil {
		return &Response{Text: "🤝 Ответь командой /rep на сообщение того, кого хочешь поблагодарить."}, nil
	}
	if target.IsBot {
		return &Response{Text: "🤖 Ботам репутация ни к чему, но спасибо!"}, nil
	}

	res, err := h.reputation.Handle(ctx, command.GiveReputationCommand{
		FromTelegramID: req.TelegramID,
		ToTelegramID:   target.ID,
		ToUsername:     target.Username,
		ToFirstName:    target.FirstName,
	})
	if err != nil {
		if msg := UserMessage(err); msg != "" {
			return &Response{Text: msg}, nil
		}
		return nil, fmt.Errorf("rep: %w", err)
	}

	return &Response{
		Text:    h.announce.FormatReputation(target.FirstName, res),
		ReplyTo: req.MessageID,
	}, nil
}

// GiftHandler обрабатывает команду /gift.
type GiftHandler struct {
	gifts    *command.GiftCoinsHandler
	announce *presenter.AnnouncementPresenter
}

// NewGiftHandler создаёт обработчик /gift.
func NewGiftHandler(gifts *command.GiftCoinsHandler, announce *presenter.AnnouncementPresenter) *GiftHandler {
	return &GiftHandler{gifts: gifts, announce: announce}
}

// Handle переводит HubCoins автору сообщения, на которое ответили.
func (h *GiftHandler) Handle(ctx context.Context, req Request) (*Response, error) {
	target := req.ReplyToUser
	if target == nil {
		return &Response{Text: "💝 Ответь командой <code>/gift &lt;сумма&gt;</code> на сообщение получателя."}, nil
	}
	if target.IsBot {
		return &Response{Text: "🤖 Бот живёт на всём готовом, подари лучше человеку."}, nil
	}

	amount, err := strconv.Atoi(strings.TrimSpace(req.Args))
	if err != nil || amount <= 0 {
		return &Response{Text: "💝 Укажи целую положительную сумму: <code>/gift 100</code>."}, nil
	}

	res, err := h.gifts.Handle(ctx, command.GiftCoinsCommand{
		FromTelegramID: req.TelegramID,
		FromUsername:   req.Username,
		FromFirstName:  req.FirstName,
		ToTelegramID:   target.ID,
		ToUsername:     target.Username,
		ToFirstName:    target.FirstName,
		Amount:         amount,
	})
	if err != nil {
		if msg := UserMessage(err); msg != "" {
			return &Response{Text: msg}, nil
		}
		return nil, fmt.Errorf("gift: %w", err)
	}

	return &Response{
		Text:    h.announce.FormatGift(req.FirstName, target.FirstName, res),
		ReplyTo: req.MessageID,
	}, nil
}
