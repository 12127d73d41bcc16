package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/promohub/levelup-hub/internal/domain/account"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEADERBOARD QUERY
// Получает топ-N участников. Сначала пробует кеш; пустой или недоступный
// кеш прозрачно заменяется чтением из Ledger.
// Порядок рейтинга: престиж по убыванию, затем уровень, затем XP.
// ══════════════════════════════════════════════════════════════════════════════

// GetLeaderboardQuery содержит параметры запроса.
type GetLeaderboardQuery struct {
	// Limit - количество записей (по умолчанию 10, максимум 50).
	Limit int
}

// Validate проверяет корректность параметров запроса.
func (q *GetLeaderboardQuery) Validate() error {
	if q.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	if q.Limit == 0 {
		q.Limit = 10
	}
	if q.Limit > 50 {
		q.Limit = 50
	}
	return nil
}

// LeaderboardEntryDTO - одна строка рейтинга.
type LeaderboardEntryDTO struct {
	Rank        int    `json:"rank"`
	TelegramID  int64  `json:"telegram_id"`
	DisplayName string `json:"display_name"`
	Prestige    int    `json:"prestige"`
	Level       int    `json:"level"`
	XP          int    `json:"xp"`
}

// LeaderboardDTO - итоговый рейтинг.
type LeaderboardDTO struct {
	Entries []LeaderboardEntryDTO `json:"entries"`

	// FromCache - источник данных (для диагностики).
	FromCache bool `json:"from_cache"`
}

// GetLeaderboardHandler обрабатывает запрос рейтинга.
type GetLeaderboardHandler struct {
	ledger account.Ledger
	cache  account.LeaderboardCache
}

// NewGetLeaderboardHandler создаёт обработчик запроса рейтинга.
func NewGetLeaderboardHandler(ledger account.Ledger, cache account.LeaderboardCache) *GetLeaderboardHandler {
	return &GetLeaderboardHandler{ledger: ledger, cache: cache}
}

// Handle выполняет запрос.
func (h *GetLeaderboardHandler) Handle(ctx context.Context, q GetLeaderboardQuery) (*LeaderboardDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if h.cache != nil {
		if cached, err := h.cache.Top(ctx, q.Limit); err == nil && len(cached) > 0 {
			dto := &LeaderboardDTO{FromCache: true}
			for _, entry := range cached {
				dto.Entries = append(dto.Entries, LeaderboardEntryDTO{
					Rank:        entry.Rank,
					TelegramID:  entry.TelegramID.Int64(),
					DisplayName: entry.DisplayName,
					Prestige:    entry.Prestige,
					Level:       entry.Level,
					XP:          entry.XP,
				})
			}
			return dto, nil
		}
	}

	accounts, err := h.ledger.GetTop(ctx, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("get_leaderboard: %w", err)
	}

	now := time.Now().UTC()
	dto := &LeaderboardDTO{}
	for i, acc := range accounts {
		dto.Entries = append(dto.Entries, LeaderboardEntryDTO{
			Rank:        i + 1,
			TelegramID:  acc.TelegramID.Int64(),
			DisplayName: acc.DisplayName(now),
			Prestige:    acc.Prestige,
			Level:       acc.Level,
			XP:          acc.XP,
		})
	}
	return dto, nil
}
