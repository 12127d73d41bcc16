// Package presenter formats application data for Telegram display.
// Presenters convert query DTOs and command results into HTML messages
// and inline keyboards; they hold no business logic of their own.
package presenter

import (
	"fmt"
	"strings"

	"github.com/promohub/levelup-hub/internal/application/query"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE CARD PRESENTER
// Форматирует карточку участника для отображения в Telegram.
// Показывает: уровень, XP-прогресс, баланс, стрик, репутацию, достижения.
// Философия: карточка - это "паспорт" участника в сообществе.
// ══════════════════════════════════════════════════════════════════════════════

// progressBarWidth - число сегментов в полосе прогресса уровня.
const progressBarWidth = 10

// ProfileCardPresenter форматирует карточку профиля (команда /stats).
type ProfileCardPresenter struct{}

// NewProfileCardPresenter создаёт презентер карточки профиля.
func NewProfileCardPresenter() *ProfileCardPresenter {
	return &ProfileCardPresenter{}
}

// FormatProfile форматирует полную карточку участника.
func (p *ProfileCardPresenter) FormatProfile(dto *query.ProfileDTO) string {
	var sb strings.Builder

	sb.WriteString(p.formatHeader(dto))
	sb.WriteString("\n\n")
	sb.WriteString(p.formatLevelSection(dto))
	sb.WriteString("\n\n")
	sb.WriteString(p.formatWalletSection(dto))
	sb.WriteString("\n\n")
	sb.WriteString(p.formatActivitySection(dto))

	if len(dto.Achievements) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(p.formatAchievementsSection(dto.Achievements))
	}

	return sb.String()
}

// formatHeader - имя, значки привилегий и позиция в рейтинге.
func (p *ProfileCardPresenter) formatHeader(dto *query.ProfileDTO) string {
	var sb strings.Builder

	sb.WriteString("👤 <b>")
	sb.WriteString(EscapeHTML(dto.DisplayName))
	sb.WriteString("</b>")
	if dto.VIP {
		sb.WriteString(" 👑")
	}
	if dto.CustomTitle != "" {
		sb.WriteString(fmt.Sprintf(" [%s]", EscapeHTML(dto.CustomTitle)))
	}

	if dto.Rank > 0 {
		sb.WriteString(fmt.Sprintf("\n%s место #%d в рейтинге", rankEmoji(dto.Rank), dto.Rank))
	}

	return sb.String()
}

// formatLevelSection - уровень, престиж и полоса прогресса до следующего уровня.
func (p *ProfileCardPresenter) formatLevelSection(dto *query.ProfileDTO) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("📊 <b>Уровень %d</b>", dto.Level))
	if dto.Prestige > 0 {
		sb.WriteString(fmt.Sprintf(" %s престиж %d", strings.Repeat("⭐", min(dto.Prestige, 5)), dto.Prestige))
	}
	if dto.Boost {
		sb.WriteString(" ⚡")
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("%s %d / %d XP\n", ProgressBar(dto.XPIntoLevel, dto.XPForLevel, progressBarWidth), dto.XPIntoLevel, dto.XPForLevel))
	sb.WriteString(fmt.Sprintf("Всего XP: <b>%d</b>", dto.XP))

	return sb.String()
}

// formatWalletSection - баланс и оборот HubCoins.
func (p *ProfileCardPresenter) formatWalletSection(dto *query.ProfileDTO) string {
	return fmt.Sprintf(
		"💰 <b>%d HubCoins</b>\n<i>заработано %d · потрачено %d</i>",
		dto.Coins, dto.TotalEarned, dto.TotalSpent,
	)
}

// formatActivitySection - сообщения, стрик, репутация.
func (p *ProfileCardPresenter) formatActivitySection(dto *query.ProfileDTO) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("💬 Сообщений: <b>%d</b>\n", dto.MessageCount))
	if dto.DailyStreak > 0 {
		sb.WriteString(fmt.Sprintf("🔥 Стрик: <b>%d</b> дн.\n", dto.DailyStreak))
	}
	sb.WriteString(fmt.Sprintf("🤝 Репутация: <b>%d</b>", dto.Reputation))

	return sb.String()
}

// formatAchievementsSection - список заработанных достижений.
func (p *ProfileCardPresenter) formatAchievementsSection(achievements []query.AchievementDTO) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("🏆 <b>Достижения (%d)</b>\n", len(achievements)))
	for _, a := range achievements {
		sb.WriteString(fmt.Sprintf("%s %s\n", a.Emoji, EscapeHTML(a.Name)))
	}

	return strings.TrimRight(sb.String(), "\n")
}

// ─────────────────────────────────────────────────────────────────────────────
// SHARED FORMATTING HELPERS
// ─────────────────────────────────────────────────────────────────────────────

// ProgressBar рисует полосу прогресса из filled/total в width сегментов.
func ProgressBar(current, total, width int) string {
	if total <= 0 || width <= 0 {
		return strings.Repeat("▱", max(width, 0))
	}
	filled := current * width / total
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("▰", filled) + strings.Repeat("▱", width-filled)
}

// rankEmoji возвращает медаль для призовых мест.
func rankEmoji(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return "🏅"
	}
}

// EscapeHTML экранирует спецсимволы HTML-разметки Telegram.
func EscapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
