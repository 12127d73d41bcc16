// Package social содержит социальные механики LevelUp Hub, которые
// не укладываются в персональный журнал одного аккаунта.
//
// Ежедневный spotlight - публичная "минута славы": раз в день бот
// выбирает одного активного участника и представляет его группе.
// Купленный приоритет гарантирует победу в ближайшем розыгрыше.
package social

import (
	"context"
	"errors"
	"time"

	"github.com/promohub/levelup-hub/internal/domain/account"
)

// ErrAlreadyChosen - розыгрыш за этот день уже записан.
var ErrAlreadyChosen = errors.New("social: spotlight already chosen for this day")

// SpotlightPick - один состоявшийся розыгрыш.
type SpotlightPick struct {
	ID         string
	AccountID  string
	TelegramID account.TelegramID

	// ChosenOn - календарный день розыгрыша (UTC). Уникален:
	// два розыгрыша в один день невозможны.
	ChosenOn time.Time

	// Priority - победа куплена через spotlight-priority.
	Priority bool

	CreatedAt time.Time
}

// SpotlightHistory определяет контракт журнала розыгрышей.
type SpotlightHistory interface {
	// Record сохраняет розыгрыш. Повторная запись за тот же день
	// возвращает ошибку уникальности.
	Record(ctx context.Context, pick SpotlightPick) error

	// WasChosenOn проверяет, был ли розыгрыш в указанный день.
	WasChosenOn(ctx context.Context, day time.Time) (bool, error)

	// LastPicks возвращает последние розыгрыши, новые первыми.
	LastPicks(ctx context.Context, limit int) ([]SpotlightPick, error)
}
