package presenter

import (
	"fmt"
	"strings"

	"github.com/promohub/levelup-hub/internal/application/query"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD PRESENTER
// Топ участников по престижу, уровню и XP (команда /top).
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardPresenter форматирует рейтинг для Telegram.
type LeaderboardPresenter struct{}

// NewLeaderboardPresenter создаёт презентер рейтинга.
func NewLeaderboardPresenter() *LeaderboardPresenter {
	return &LeaderboardPresenter{}
}

// FormatLeaderboard форматирует таблицу рейтинга.
// viewerID подсвечивает строку запросившего участника.
func (p *LeaderboardPresenter) FormatLeaderboard(dto *query.LeaderboardDTO, viewerID int64) string {
	if len(dto.Entries) == 0 {
		return "🏆 <b>Рейтинг пока пуст</b>\n\nНапиши что-нибудь в чат и открой таблицу первым!"
	}

	var sb strings.Builder
	sb.WriteString("🏆 <b>Топ участников ThePromotionHub</b>\n\n")

	for _, e := range dto.Entries {
		name := EscapeHTML(e.DisplayName)
		if e.TelegramID == viewerID {
			name = "<u>" + name + "</u>"
		}

		sb.WriteString(fmt.Sprintf("%s <b>%s</b>", rankEmoji(e.Rank), name))
		if e.Prestige > 0 {
			sb.WriteString(fmt.Sprintf(" ⭐%d", e.Prestige))
		}
		sb.WriteString(fmt.Sprintf("\n      ур. %d · %d XP\n", e.Level, e.XP))
	}

	if !dto.FromCache {
		sb.WriteString("\n<i>Рейтинг собран заново, кеш обновляется.</i>")
	}

	return sb.String()
}
