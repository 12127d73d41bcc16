// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/promohub/levelup-hub/internal/domain/account"
	"github.com/promohub/levelup-hub/internal/domain/achievement"
	"github.com/promohub/levelup-hub/internal/domain/progression"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROFILE QUERY
// Собирает полную карточку участника: прогресс, баланс, привилегии,
// ачивки и позицию в рейтинге.
// ══════════════════════════════════════════════════════════════════════════════

// GetProfileQuery содержит параметры запроса профиля.
type GetProfileQuery struct {
	// TelegramID - идентификатор участника.
	TelegramID int64
}

// Validate проверяет корректность параметров запроса.
func (q GetProfileQuery) Validate() error {
	if q.TelegramID <= 0 {
		return errors.New("telegram_id must be positive")
	}
	return nil
}

// AchievementDTO - одна полученная ачивка.
type AchievementDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
}

// ProfileDTO - карточка участника.
type ProfileDTO struct {
	TelegramID  int64  `json:"telegram_id"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username"`

	XP    int `json:"xp"`
	Level int `json:"level"`

	// XPIntoLevel / XPForLevel - прогресс внутри текущего уровня.
	XPIntoLevel int `json:"xp_into_level"`
	XPForLevel  int `json:"xp_for_level"`

	Prestige int `json:"prestige"`

	Coins       int `json:"coins"`
	TotalEarned int `json:"total_earned"`
	TotalSpent  int `json:"total_spent"`

	MessageCount int `json:"message_count"`
	DailyStreak  int `json:"daily_streak"`
	Reputation   int `json:"reputation"`

	// Активные привилегии на момент запроса.
	CustomTitle string `json:"custom_title,omitempty"`
	VIP         bool   `json:"vip"`
	Boost       bool   `json:"boost"`

	Achievements []AchievementDTO `json:"achievements"`

	// Rank - позиция в рейтинге (0, если кеш пуст).
	Rank int `json:"rank"`

	JoinedAt time.Time `json:"joined_at"`
}

// GetProfileHandler обрабатывает запрос профиля.
type GetProfileHandler struct {
	ledger       account.Ledger
	achievements *achievement.Catalog
	leaderboard  account.LeaderboardCache
}

// NewGetProfileHandler создаёт обработчик запроса профиля.
func NewGetProfileHandler(
	ledger account.Ledger,
	achievements *achievement.Catalog,
	leaderboard account.LeaderboardCache,
) *GetProfileHandler {
	return &GetProfileHandler{
		ledger:       ledger,
		achievements: achievements,
		leaderboard:  leaderboard,
	}
}

// Handle выполняет запрос.
func (h *GetProfileHandler) Handle(ctx context.Context, q GetProfileQuery) (*ProfileDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	acc, err := h.ledger.GetByTelegramID(ctx, account.TelegramID(q.TelegramID))
	if err != nil {
		return nil, fmt.Errorf("get_profile: %w", err)
	}

	now := time.Now().UTC()

	dto := &ProfileDTO{
		TelegramID:   acc.TelegramID.Int64(),
		DisplayName:  acc.DisplayName(now),
		Username:     acc.Username,
		XP:           acc.XP,
		Level:        acc.Level,
		Prestige:     acc.Prestige,
		Coins:        int(acc.Coins),
		TotalEarned:  acc.TotalEarned,
		TotalSpent:   acc.TotalSpent,
		MessageCount: acc.MessageCount,
		DailyStreak:  acc.DailyStreak,
		Reputation:   acc.Reputation,
		VIP:          acc.VIPActiveAt(now),
		Boost:        acc.BoostActiveAt(now),
		JoinedAt:     acc.JoinedAt,
	}
	if title, ok := acc.TitleActiveAt(now); ok {
		dto.CustomTitle = title
	}

	lower := progression.ThresholdFor(acc.Level)
	upper := progression.ThresholdFor(acc.Level + 1)
	dto.XPIntoLevel = acc.XP - lower
	dto.XPForLevel = upper - lower

	for _, id := range acc.Achievements {
		if def, ok := h.achievements.Lookup(id); ok {
			dto.Achievements = append(dto.Achievements, AchievementDTO{
				ID:          def.ID,
				Name:        def.Name,
				Emoji:       def.Emoji,
				Description: def.Description,
			})
		}
	}

	if h.leaderboard != nil {
		// Позиция в рейтинге опциональна: пустой кеш не ломает профиль.
		if rank, err := h.leaderboard.Rank(ctx, acc.TelegramID); err == nil {
			dto.Rank = rank
		}
	}

	return dto, nil
}
