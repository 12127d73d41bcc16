package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/promohub/levelup-hub/internal/application/command"
	"github.com/promohub/levelup-hub/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACTIVITY HANDLER
// Горячий путь: каждое обычное сообщение в группе начисляет XP и HubCoins.
// Обработчик молчит почти всегда; объявления возвращаются только на
// левел-ап и новые достижения, иначе бот зафлудил бы чат.
// ══════════════════════════════════════════════════════════════════════════════

// FlavorSource выдаёт короткую поздравительную строку для левел-апа.
// Реализация никогда не возвращает ошибку: на сбое отдаёт запасную фразу.
type FlavorSource interface {
	LevelUpLine(ctx context.Context, displayName string, level int) string
}

// ActivityRequest - одно обычное сообщение участника.
type ActivityRequest struct {
	TelegramID int64
	Username   string
	FirstName  string
	ChatID     int64
	Timestamp  time.Time
}

// ActivityHandler обрабатывает обычные сообщения группового чата.
type ActivityHandler struct {
	activity *command.ProcessActivityHandler
	announce *presenter.AnnouncementPresenter

	// flavor опционален; nil означает "без поздравительных строк".
	flavor FlavorSource
}

// NewActivityHandler создаёт обработчик активности.
func NewActivityHandler(activity *command.ProcessActivityHandler, announce *presenter.AnnouncementPresenter, flavor FlavorSource) *ActivityHandler {
	return &ActivityHandler{activity: activity, announce: announce, flavor: flavor}
}

// Handle начисляет награды за сообщение и возвращает объявления для чата.
// Пустой срез - самый частый результат: сообщение учтено молча.
func (h *ActivityHandler) Handle(ctx context.Context, req ActivityRequest) ([]string, error) {
	res, err := h.activity.Handle(ctx, command.ProcessActivityCommand{
		TelegramID:    req.TelegramID,
		Username:      req.Username,
		FirstName:     req.FirstName,
		Timestamp:     req.Timestamp,
		CorrelationID: uuid.NewString(),
	})
	if err != nil {
		return nil, fmt.Errorf("activity: %w", err)
	}
	if !res.Counted {
		return nil, nil
	}

	var announcements []string

	if res.LeveledUp {
		name := res.Account.DisplayName(time.Now())
		flavor := ""
		if h.flavor != nil {
			flavor = h.flavor.LevelUpLine(ctx, name, res.NewLevel)
		}
		announcements = append(announcements, h.announce.FormatLevelUp(name, res.NewLevel, res.LevelUpBonus, flavor))
	}

	for _, def := range res.Achievements {
		announcements = append(announcements, h.announce.FormatAchievement(res.Account.FirstName, def))
	}

	return announcements, nil
}
