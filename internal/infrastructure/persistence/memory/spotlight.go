package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/promohub/levelup-hub/internal/domain/social"
	"github.com/promohub/levelup-hub/pkg/timeutil"
)

// SpotlightHistory - эфемерный журнал розыгрышей.
type SpotlightHistory struct {
	mu    sync.RWMutex
	picks []social.SpotlightPick
	days  map[string]struct{}
}

// NewSpotlightHistory создаёт пустой журнал.
func NewSpotlightHistory() *SpotlightHistory {
	return &SpotlightHistory{days: make(map[string]struct{})}
}

func dayKey(t time.Time) string {
	return timeutil.FormatDateStr(t)
}

// Record сохраняет розыгрыш.
func (h *SpotlightHistory) Record(_ context.Context, pick social.SpotlightPick) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := dayKey(pick.ChosenOn)
	if _, ok := h.days[key]; ok {
		return social.ErrAlreadyChosen
	}

	if pick.ID == "" {
		pick.ID = uuid.NewString()
	}
	pick.CreatedAt = time.Now().UTC()
	h.days[key] = struct{}{}
	h.picks = append(h.picks, pick)
	return nil
}

// WasChosenOn проверяет, был ли розыгрыш в указанный день.
func (h *SpotlightHistory) WasChosenOn(_ context.Context, day time.Time) (bool, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.days[dayKey(day)]
	return ok, nil
}

// LastPicks возвращает последние розыгрыши, новые первыми.
func (h *SpotlightHistory) LastPicks(_ context.Context, limit int) ([]social.SpotlightPick, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []social.SpotlightPick
	for i := len(h.picks) - 1; i >= 0; i-- {
		out = append(out, h.picks[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
