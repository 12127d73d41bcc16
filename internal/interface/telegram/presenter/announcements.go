package presenter

import (
	"fmt"
	"strings"

	"github.com/promohub/levelup-hub/internal/application/command"
	"github.com/promohub/levelup-hub/internal/domain/achievement"
)

// ══════════════════════════════════════════════════════════════════════════════
// ANNOUNCEMENTS PRESENTER
// Короткие сообщения о событиях: левел-ап, ежедневный бонус, престиж,
// репутация, подарки. Всё, что бот пишет в общий чат или в ответ на команду.
// ══════════════════════════════════════════════════════════════════════════════

// AnnouncementPresenter форматирует событийные сообщения.
type AnnouncementPresenter struct{}

// NewAnnouncementPresenter создаёт презентер объявлений.
func NewAnnouncementPresenter() *AnnouncementPresenter {
	return &AnnouncementPresenter{}
}

// FormatLevelUp - объявление о новом уровне в общий чат.
// flavor - строка-поздравление (из Gemini или запасная), уже готовая.
func (p *AnnouncementPresenter) FormatLevelUp(displayName string, newLevel, bonusCoins int, flavor string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("🎉 <b>%s</b> достиг уровня <b>%d</b>!\n", EscapeHTML(displayName), newLevel))
	if bonusCoins > 0 {
		sb.WriteString(fmt.Sprintf("💰 Бонус за уровень: <b>+%d HubCoins</b>\n", bonusCoins))
	}
	if flavor != "" {
		sb.WriteString(fmt.Sprintf("\n<i>%s</i>", EscapeHTML(flavor)))
	}

	return strings.TrimRight(sb.String(), "\n")
}

// FormatDailyClaim - результат команды /daily.
func (p *AnnouncementPresenter) FormatDailyClaim(res *command.ClaimDailyResult) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("🎁 <b>+%d HubCoins</b> за ежедневный бонус!\n", res.Coins))
	if res.StreakBroken {
		sb.WriteString("💔 Стрик прервался, начинаем заново.\n")
	}
	sb.WriteString(fmt.Sprintf("🔥 Стрик: <b>%d</b> дн.", res.Streak))
	sb.WriteString(FormatUnlocked(res.Achievements))

	return sb.String()
}

// FormatPrestige - результат команды /prestige.
func (p *AnnouncementPresenter) FormatPrestige(res *command.TakePrestigeResult) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("⭐ <b>Престиж %d!</b>\n", res.PrestigeCount))
	sb.WriteString("Уровень и XP сброшены, звезда остаётся навсегда.\n")
	sb.WriteString(fmt.Sprintf("💰 Награда: <b>+%d HubCoins</b>", res.BonusCoins))
	sb.WriteString(FormatUnlocked(res.Achievements))

	return sb.String()
}

// FormatReputation - подтверждение команды /rep.
func (p *AnnouncementPresenter) FormatReputation(toName string, res *command.GiveReputationResult) string {
	return fmt.Sprintf(
		"🤝 <b>%s</b> получает +1 к репутации!\nТеперь у него <b>%d</b> очков.",
		EscapeHTML(toName), res.Reputation,
	)
}

// FormatGift - подтверждение команды /gift.
func (p *AnnouncementPresenter) FormatGift(fromName, toName string, res *command.GiftCoinsResult) string {
	return fmt.Sprintf(
		"💝 <b>%s</b> дарит <b>%d HubCoins</b> участнику <b>%s</b>!\nОстаток дарителя: %d.",
		EscapeHTML(fromName), res.Amount, EscapeHTML(toName), res.SenderBalance,
	)
}

// FormatAchievement - объявление об одном достижении в общий чат.
func (p *AnnouncementPresenter) FormatAchievement(displayName string, def achievement.Definition) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s <b>%s</b> открывает достижение <b>%s</b>!\n", def.Emoji, EscapeHTML(displayName), EscapeHTML(def.Name)))
	sb.WriteString(fmt.Sprintf("<i>%s</i>", EscapeHTML(def.Description)))
	if def.Reward > 0 {
		sb.WriteString(fmt.Sprintf("\n💰 Награда: +%d HubCoins", def.Reward))
	}

	return sb.String()
}

// FormatUnlocked - хвост сообщения со списком новых достижений.
// Пустой срез даёт пустую строку, сообщение остаётся как есть.
func FormatUnlocked(achievements []achievement.Definition) string {
	if len(achievements) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n\n🏆 <b>Новые достижения:</b>\n")
	for _, a := range achievements {
		sb.WriteString(fmt.Sprintf("%s %s (+%d HubCoins)\n", a.Emoji, EscapeHTML(a.Name), a.Reward))
	}

	return strings.TrimRight(sb.String(), "\n")
}
