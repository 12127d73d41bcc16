package handler

import (
	"context"
	"fmt"

	"github.com/promohub/levelup-hub/internal/application/command"
	"github.com/promohub/levelup-hub/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// PRESTIGE HANDLER
// Команда /prestige - сброс сотого уровня ради постоянной звезды.
// ══════════════════════════════════════════════════════════════════════════════

// PrestigeHandler обрабатывает команду /prestige.
type PrestigeHandler struct {
	prestige *command.TakePrestigeHandler
	announce *presenter.AnnouncementPresenter
}

// NewPrestigeHandler создаёт обработчик /prestige.
func NewPrestigeHandler(prestige *command.TakePrestigeHandler, announce *presenter.AnnouncementPresenter) *PrestigeHandler {
	return &PrestigeHandler{prestige: prestige, announce: announce}
}

// Handle выполняет престиж-сброс.
func (h *PrestigeHandler) Handle(ctx context.Context, req Request) (*Response, error) {
	res, err := h.prestige.Handle(ctx, command.TakePrestigeCommand{
		TelegramID: req.TelegramID,
		Username:   req.Username,
		FirstName:  req.FirstName,
	})
	if err != nil {
		if msg := UserMessage(err); msg != "" {
			return &Response{Text: msg}, nil
		}
		return nil, fmt.Errorf("prestige: %w", err)
	}

	return &Response{Text: h.announce.FormatPrestige(res)}, nil
}
