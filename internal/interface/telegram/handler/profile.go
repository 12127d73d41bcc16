package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/promohub/levelup-hub/internal/application/query"
	"github.com/promohub/levelup-hub/internal/domain/account"
	"github.com/promohub/levelup-hub/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE HANDLER
// Команда /stats - карточка участника.
// ══════════════════════════════════════════════════════════════════════════════

// ProfileHandler обрабатывает команду /stats.
type ProfileHandler struct {
	profiles *query.GetProfileHandler
	card     *presenter.ProfileCardPresenter
}

// NewProfileHandler создаёт обработчик /stats.
func NewProfileHandler(profiles *query.GetProfileHandler, card *presenter.ProfileCardPresenter) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, card: card}
}

// Handle показывает карточку отправителя.
func (h *ProfileHandler) Handle(ctx context.Context, req Request) (*Response, error) {
	dto, err := h.profiles.Handle(ctx, query.GetProfileQuery{TelegramID: req.TelegramID})
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return &Response{Text: "👻 Тебя ещё нет в системе. Напиши что-нибудь в чат, и карточка появится!"}, nil
		}
		return nil, fmt.Errorf("profile: %w", err)
	}

	return &Response{Text: h.card.FormatProfile(dto)}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HISTORY HANDLER
// Команда /history - последние операции журнала HubCoins.
// ══════════════════════════════════════════════════════════════════════════════

// HistoryHandler обрабатывает команду /history.
type HistoryHandler struct {
	transactions *query.GetTransactionsHandler
}

// NewHistoryHandler создаёт обработчик /history.
func NewHistoryHandler(transactions *query.GetTransactionsHandler) *HistoryHandler {
	return &HistoryHandler{transactions: transactions}
}

// Handle показывает последние операции отправителя.
func (h *HistoryHandler) Handle(ctx context.Context, req Request) (*Response, error) {
	txs, err := h.transactions.Handle(ctx, query.GetTransactionsQuery{TelegramID: req.TelegramID})
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return &Response{Text: "👻 Журнал пуст: тебя ещё нет в системе."}, nil
		}
		return nil, fmt.Errorf("history: %w", err)
	}

	if len(txs) == 0 {
		return &Response{Text: "📒 Журнал пока пуст. Заработай первые HubCoins сообщением в чате!"}, nil
	}

	var sb strings.Builder
	sb.WriteString("📒 <b>Последние операции</b>\n\n")
	for _, tx := range txs {
		sign := "+"
		if tx.Amount < 0 {
			sign = ""
		}
		sb.WriteString(fmt.Sprintf(
			"%s <b>%s%d</b> · %s → %d\n",
			tx.CreatedAt.Format("02.01 15:04"), sign, tx.Amount,
			presenter.EscapeHTML(tx.Type), tx.BalanceAfter,
		))
	}

	return &Response{Text: strings.TrimRight(sb.String(), "\n")}, nil
}
