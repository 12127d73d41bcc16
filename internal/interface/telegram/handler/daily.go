package handler

import (
	"context"
	"fmt"

	"github.com/promohub/levelup-hub/internal/application/command"
	"github.com/promohub/levelup-hub/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// DAILY HANDLER
// Команда /daily - ежедневный бонус со стриком.
// ══════════════════════════════════════════════════════════════════════════════

// DailyHandler обрабатывает команду /daily.
type DailyHandler struct {
	claims   *command.ClaimDailyHandler
	announce *presenter.AnnouncementPresenter
}

// NewDailyHandler создаёт обработчик /daily.
func NewDailyHandler(claims *command.ClaimDailyHandler, announce *presenter.AnnouncementPresenter) *DailyHandler {
	return &DailyHandler{claims: claims, announce: announce}
}

// Handle выдаёт ежедневный бонус.
func (h *DailyHandler) Handle(ctx context.Context, req Request) (*Response, error) {
	res, err := h.claims.Handle(ctx, command.ClaimDailyCommand{
		TelegramID: req.TelegramID,
		Username:   req.Username,
		FirstName:  req.FirstName,
	})
	if err != nil {
		if msg := UserMessage(err); msg != "" {
			return &Response{Text: msg}, nil
		}
		return nil, fmt.Errorf("daily: %w", err)
	}

	return &Response{Text: h.announce.FormatDailyClaim(res)}, nil
}
