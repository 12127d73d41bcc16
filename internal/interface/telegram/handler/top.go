package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/promohub/levelup-hub/internal/application/query"
	"github.com/promohub/levelup-hub/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// TOP HANDLER
// Команда /top [N] - рейтинг участников. N ограничен на уровне запроса.
// ══════════════════════════════════════════════════════════════════════════════

// TopHandler обрабатывает команду /top.
type TopHandler struct {
	leaderboard *query.GetLeaderboardHandler
	board       *presenter.LeaderboardPresenter
}

// NewTopHandler создаёт обработчик /top.
func NewTopHandler(leaderboard *query.GetLeaderboardHandler, board *presenter.LeaderboardPresenter) *TopHandler {
	return &TopHandler{leaderboard: leaderboard, board: board}
}

// Handle показывает таблицу рейтинга.
func (h *TopHandler) Handle(ctx context.Context, req Request) (*Response, error) {
	limit := 0
	if arg := strings.TrimSpace(req.Args); arg != "" {
		// Мусорный аргумент молча игнорируется, показываем топ по умолчанию.
		if n, err := strconv.Atoi(arg); err == nil {
			limit = n
		}
	}

	dto, err := h.leaderboard.Handle(ctx, query.GetLeaderboardQuery{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("top: %w", err)
	}

	return &Response{Text: h.board.FormatLeaderboard(dto, req.TelegramID)}, nil
}
