package presenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promohub/levelup-hub/internal/application/command"
	"github.com/promohub/levelup-hub/internal/application/query"
	"github.com/promohub/levelup-hub/internal/domain/achievement"
	"github.com/promohub/levelup-hub/internal/domain/economy"
)

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "▱▱▱▱▱▱▱▱▱▱", ProgressBar(0, 100, 10))
	assert.Equal(t, "▰▰▰▰▰▱▱▱▱▱", ProgressBar(50, 100, 10))
	assert.Equal(t, "▰▰▰▰▰▰▰▰▰▰", ProgressBar(100, 100, 10))

	// Переполнение и нулевой порог не ломают полосу.
	assert.Equal(t, "▰▰▰▰▰▰▰▰▰▰", ProgressBar(250, 100, 10))
	assert.Equal(t, "▱▱▱▱▱▱▱▱▱▱", ProgressBar(10, 0, 10))
}

func TestEscapeHTML(t *testing.T) {
	assert.Equal(t, "a &amp;&lt;b&gt; c", EscapeHTML("a &<b> c"))
	assert.Equal(t, "plain", EscapeHTML("plain"))
}

func TestProfileCard_ContainsCoreSections(t *testing.T) {
	p := NewProfileCardPresenter()

	text := p.FormatProfile(&query.ProfileDTO{
		TelegramID:  100,
		DisplayName: "Alex <3",
		XP:          450,
		Level:       5,
		XPIntoLevel: 50,
		XPForLevel:  100,
		Prestige:    1,
		Coins:       1200,
		TotalEarned: 2000,
		TotalSpent:  800,

		MessageCount: 321,
		DailyStreak:  7,
		Reputation:   4,

		CustomTitle: "Hub Legend",
		VIP:         true,
		Rank:        2,

		Achievements: []query.AchievementDTO{
			{ID: "newbie", Name: "First Steps", Emoji: "👣"},
		},
	})

	assert.Contains(t, text, "Alex &lt;3")
	assert.Contains(t, text, "👑")
	assert.Contains(t, text, "🥈")
	assert.Contains(t, text, "Уровень 5")
	assert.Contains(t, text, "50 / 100 XP")
	assert.Contains(t, text, "1200 HubCoins")
	assert.Contains(t, text, "Стрик: <b>7</b>")
	assert.Contains(t, text, "First Steps")
	assert.NotContains(t, text, "<3", "raw HTML must be escaped")
}

func TestShop_ButtonsCarryItemKinds(t *testing.T) {
	p := NewShopPresenter()
	catalog := economy.NewCatalog(economy.DefaultCatalogConfig())

	text, keyboard := p.FormatShop(catalog.Items(), 500)

	assert.Contains(t, text, "Магазин HubCoins")
	assert.Contains(t, text, "500")

	require.NotNil(t, keyboard)
	require.Len(t, keyboard.InlineKeyboard, len(catalog.Items()))
	for _, row := range keyboard.InlineKeyboard {
		require.Len(t, row, 1)
		assert.True(t, len(row[0].CallbackData) > len(BuyCallbackPrefix))
		assert.Contains(t, row[0].CallbackData, BuyCallbackPrefix)
	}
}

func TestLeaderboard_HighlightsViewerAndMedals(t *testing.T) {
	p := NewLeaderboardPresenter()

	text := p.FormatLeaderboard(&query.LeaderboardDTO{
		Entries: []query.LeaderboardEntryDTO{
			{Rank: 1, TelegramID: 1, DisplayName: "First", Prestige: 2, Level: 40, XP: 90000},
			{Rank: 2, TelegramID: 2, DisplayName: "Second", Level: 30, XP: 40000},
			{Rank: 3, TelegramID: 3, DisplayName: "Third", Level: 20, XP: 15000},
			{Rank: 4, TelegramID: 4, DisplayName: "Fourth", Level: 10, XP: 3000},
		},
		FromCache: true,
	}, 2)

	assert.Contains(t, text, "🥇")
	assert.Contains(t, text, "🥈")
	assert.Contains(t, text, "🥉")
	assert.Contains(t, text, "🏅")
	assert.Contains(t, text, "<u>Second</u>")
	assert.Contains(t, text, "⭐2")
	assert.NotContains(t, text, "кеш обновляется")
}

func TestLeaderboard_Empty(t *testing.T) {
	p := NewLeaderboardPresenter()

	text := p.FormatLeaderboard(&query.LeaderboardDTO{}, 0)

	assert.Contains(t, text, "пока пуст")
}

func TestAnnouncements(t *testing.T) {
	p := NewAnnouncementPresenter()

	t.Run("level up with flavor", func(t *testing.T) {
		text := p.FormatLevelUp("Dana", 10, 500, "Onwards!")
		assert.Contains(t, text, "уровня <b>10</b>")
		assert.Contains(t, text, "+500 HubCoins")
		assert.Contains(t, text, "Onwards!")
	})

	t.Run("level up without bonus or flavor", func(t *testing.T) {
		text := p.FormatLevelUp("Dana", 2, 0, "")
		assert.NotContains(t, text, "Бонус")
		assert.NotContains(t, text, "<i>")
	})

	t.Run("daily claim with broken streak", func(t *testing.T) {
		text := p.FormatDailyClaim(&command.ClaimDailyResult{Coins: 100, Streak: 1, StreakBroken: true})
		assert.Contains(t, text, "+100 HubCoins")
		assert.Contains(t, text, "Стрик прервался")
	})

	t.Run("unlocked achievements appended", func(t *testing.T) {
		text := p.FormatDailyClaim(&command.ClaimDailyResult{
			Coins:  100,
			Streak: 7,
			Achievements: []achievement.Definition{
				{ID: "week_streak", Name: "Week Warrior", Emoji: "📅", Reward: 300},
			},
		})
		assert.Contains(t, text, "Новые достижения")
		assert.Contains(t, text, "Week Warrior")
		assert.Contains(t, text, "+300 HubCoins")
	})

	t.Run("prestige", func(t *testing.T) {
		text := p.FormatPrestige(&command.TakePrestigeResult{PrestigeCount: 3, BonusCoins: 15000})
		assert.Contains(t, text, "Престиж 3")
		assert.Contains(t, text, "+15000 HubCoins")
	})
}
