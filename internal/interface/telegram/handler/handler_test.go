package handler

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promohub/levelup-hub/internal/application/command"
	"github.com/promohub/levelup-hub/internal/application/query"
	"github.com/promohub/levelup-hub/internal/domain/achievement"
	"github.com/promohub/levelup-hub/internal/domain/economy"
	"github.com/promohub/levelup-hub/internal/domain/shared"
	"github.com/promohub/levelup-hub/internal/infrastructure/external/telegram"
	"github.com/promohub/levelup-hub/internal/infrastructure/persistence/memory"
	"github.com/promohub/levelup-hub/internal/interface/telegram/presenter"
)

// nopPublisher swallows events in tests.
type nopPublisher struct{}

func (nopPublisher) Publish(shared.Event) error { return nil }

// zeroRand always rolls the minimum.
type zeroRand struct{}

func (zeroRand) Float64() float64 { return 0 }
func (zeroRand) Intn(int) int { return 0 }

type env struct {
	ledger   *memory.Ledger
	catalog  *economy.Catalog
	profiles *query.GetProfileHandler
}

func newEnv() *env {
	ledger := memory.NewLedger(slog.Default(), 100)
	return &env{
		ledger:   ledger,
		catalog:  economy.NewCatalog(economy.DefaultCatalogConfig()),
		profiles: query.NewGetProfileHandler(ledger, achievement.NewCatalog(), nil),
	}
}

// seed runs one activity message so the account exists.
func (e *env) seed(t *testing.T, telegramID int64, name string) {
	t.Helper()
	h := command.NewProcessActivityHandler(e.ledger, achievement.NewCatalog(), nopPublisher{},
		zeroRand{}, command.DefaultProcessActivityConfig())
	_, err := h.Handle(context.Background(), command.ProcessActivityCommand{
		TelegramID: telegramID, FirstName: name,
	})
	require.NoError(t, err)
}

func TestStartAndHelp(t *testing.T) {
	start, err := NewStartHandler().Handle(context.Background(), Request{FirstName: "Dana <3"})
	require.NoError(t, err)
	assert.Contains(t, start.Text, "Dana &lt;3")
	assert.Contains(t, start.Text, "/help")

	help, err := NewHelpHandler().Handle(context.Background(), Request{})
	require.NoError(t, err)
	assert.Contains(t, help.Text, "/daily")
	assert.Contains(t, help.Text, "/prestige")
}

func TestProfileHandler(t *testing.T) {
	e := newEnv()
	h := NewProfileHandler(e.profiles, presenter.NewProfileCardPresenter())

	t.Run("unknown account gets a hint, not an error", func(t *testing.T) {
		resp, err := h.Handle(context.Background(), Request{TelegramID: 999})
		require.NoError(t, err)
		assert.Contains(t, resp.Text, "Напиши что-нибудь")
	})

	t.Run("existing account gets the card", func(t *testing.T) {
		e.seed(t, 42, "Leo")
		resp, err := h.Handle(context.Background(), Request{TelegramID: 42})
		require.NoError(t, err)
		assert.Contains(t, resp.Text, "Leo")
		assert.Contains(t, resp.Text, "HubCoins")
	})
}

func TestShopHandler_ShowsBalanceAndButtons(t *testing.T) {
	e := newEnv()
	e.seed(t, 42, "Leo")
	h := NewShopHandler(e.catalog, e.profiles, presenter.NewShopPresenter())

	resp, err := h.Handle(context.Background(), Request{TelegramID: 42})
	require.NoError(t, err)

	require.NotNil(t, resp.Keyboard)
	assert.Len(t, resp.Keyboard.InlineKeyboard, len(e.catalog.Items()))

	// Новичку без аккаунта витрина тоже открывается.
	resp, err = h.Handle(context.Background(), Request{TelegramID: 777})
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "Магазин")
}

func TestBuyHandler(t *testing.T) {
	e := newEnv()
	purchases := command.NewPurchaseItemHandler(e.ledger, e.catalog, achievement.NewCatalog(), nopPublisher{}, zeroRand{})
	h := NewBuyHandler(purchases, presenter.NewShopPresenter())

	t.Run("no args asks for an item", func(t *testing.T) {
		resp, err := h.Handle(context.Background(), Request{TelegramID: 1, FirstName: "A"})
		require.NoError(t, err)
		assert.Contains(t, resp.Text, "/shop")
	})

	t.Run("unknown item", func(t *testing.T) {
		resp, err := h.Handle(context.Background(), Request{TelegramID: 1, FirstName: "A", Args: "jetpack"})
		require.NoError(t, err)
		assert.Contains(t, resp.Text, "Такого товара нет")
	})

	t.Run("insufficient funds", func(t *testing.T) {
		e.seed(t, 2, "Poor")
		resp, err := h.Handle(context.Background(), Request{TelegramID: 2, FirstName: "Poor", Args: "vip-membership"})
		require.NoError(t, err)
		assert.Contains(t, resp.Text, "Не хватает HubCoins")
	})

	t.Run("title requires text", func(t *testing.T) {
		resp, err := h.Handle(context.Background(), Request{TelegramID: 3, FirstName: "B", Args: "custom-title"})
		require.NoError(t, err)
		assert.Contains(t, resp.Text, "Укажи текст титула")
	})

	t.Run("successful boost purchase", func(t *testing.T) {
		// Welcome balance 100 + daily claims cover the boost price.
		e.seed(t, 4, "Rich")
		claims := command.NewClaimDailyHandler(e.ledger, achievement.NewCatalog(), nopPublisher{}, command.DefaultClaimDailyConfig())
		day := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
		for i := 0; i < 10; i++ {
			_, err := claims.Handle(context.Background(), command.ClaimDailyCommand{
				TelegramID: 4, FirstName: "Rich", Timestamp: day.AddDate(0, 0, i),
			})
			require.NoError(t, err)
		}

		resp, err := h.Handle(context.Background(), Request{TelegramID: 4, FirstName: "Rich", Args: "xp-boost"})
		require.NoError(t, err)
		assert.Contains(t, resp.Text, "XP Boost")
		assert.Contains(t, resp.Text, "Остаток")
	})

	t.Run("callback rejects custom title", func(t *testing.T) {
		resp, err := h.HandleCallback(context.Background(), Request{TelegramID: 4, FirstName: "Rich"}, string(economy.ItemCustomTitle))
		require.NoError(t, err)
		assert.Contains(t, resp.Text, "/buy custom-title")
	})
}

func TestDailyHandler(t *testing.T) {
	e := newEnv()
	claims := command.NewClaimDailyHandler(e.ledger, achievement.NewCatalog(), nopPublisher{}, command.DefaultClaimDailyConfig())
	h := NewDailyHandler(claims, presenter.NewAnnouncementPresenter())

	resp, err := h.Handle(context.Background(), Request{TelegramID: 5, FirstName: "C"})
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "ежедневный бонус")

	resp, err = h.Handle(context.Background(), Request{TelegramID: 5, FirstName: "C"})
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "уже забран")
}

func TestPrestigeHandler_NotEligible(t *testing.T) {
	e := newEnv()
	e.seed(t, 6, "D")
	prestige := command.NewTakePrestigeHandler(e.ledger, achievement.NewCatalog(), nopPublisher{}, command.DefaultBonusPerPrestige)
	h := NewPrestigeHandler(prestige, presenter.NewAnnouncementPresenter())

	resp, err := h.Handle(context.Background(), Request{TelegramID: 6, FirstName: "D"})
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "уровне 100")
}

func TestRepHandler(t *testing.T) {
	e := newEnv()
	rep := command.NewGiveReputationHandler(e.ledger, nopPublisher{})
	h := NewRepHandler(rep, presenter.NewAnnouncementPresenter())

	t.Run("requires a reply", func(t *testing.T) {
		resp, err := h.Handle(context.Background(), Request{TelegramID: 7})
		require.NoError(t, err)
		assert.Contains(t, resp.Text, "Ответь командой /rep")
	})

	t.Run("self reputation rejected", func(t *testing.T) {
		resp, err := h.Handle(context.Background(), Request{
			TelegramID:  7,
			ReplyToUser: &telegram.User{ID: 7, FirstName: "Self"},
		})
		require.NoError(t, err)
		assert.Contains(t, resp.Text, "Хорошая попытка")
	})

	t.Run("grants reputation to the reply author", func(t *testing.T) {
		resp, err := h.Handle(context.Background(), Request{
			TelegramID:  7,
			MessageID:   10,
			ReplyToUser: &telegram.User{ID: 8, FirstName: "Author"},
		})
		require.NoError(t, err)
		assert.Contains(t, resp.Text, "Author")
		assert.Contains(t, resp.Text, "+1")
		assert.EqualValues(t, 10, resp.ReplyTo)
	})

	t.Run("bots are excluded", func(t *testing.T) {
		resp, err := h.Handle(context.Background(), Request{
			TelegramID:  7,
			ReplyToUser: &telegram.User{ID: 9, FirstName: "Bot", IsBot: true},
		})
		require.NoError(t, err)
		assert.Contains(t, resp.Text, "🤖")
	})
}

func TestGiftHandler(t *testing.T) {
	e := newEnv()
	e.seed(t, 11, "Giver")
	gifts := command.NewGiftCoinsHandler(e.ledger, nopPublisher{})
	h := NewGiftHandler(gifts, presenter.NewAnnouncementPresenter())

	target := &telegram.User{ID: 12, FirstName: "Lucky"}

	t.Run("bad amount", func(t *testing.T) {
		resp, err := h.Handle(context.Background(), Request{TelegramID: 11, Args: "много", ReplyToUser: target})
		require.NoError(t, err)
		assert.Contains(t, resp.Text, "/gift 100")
	})

	t.Run("self gift rejected", func(t *testing.T) {
		resp, err := h.Handle(context.Background(), Request{
			TelegramID: 11, Args: "50",
			ReplyToUser: &telegram.User{ID: 11, FirstName: "Giver"},
		})
		require.NoError(t, err)
		assert.Contains(t, resp.Text, "не считается")
	})

	t.Run("successful transfer", func(t *testing.T) {
		resp, err := h.Handle(context.Background(), Request{
			TelegramID: 11, FirstName: "Giver", Args: "50", ReplyToUser: target,
		})
		require.NoError(t, err)
		assert.Contains(t, resp.Text, "Lucky")
		assert.Contains(t, resp.Text, "50 HubCoins")
	})

	t.Run("over balance rejected", func(t *testing.T) {
		resp, err := h.Handle(context.Background(), Request{
			TelegramID: 11, FirstName: "Giver", Args: "1000000", ReplyToUser: target,
		})
		require.NoError(t, err)
		assert.Contains(t, resp.Text, "Не хватает HubCoins")
	})
}

// staticFlavor replays a fixed congratulation line.
type staticFlavor struct{ line string }

func (f staticFlavor) LevelUpLine(context.Context, string, int) string { return f.line }

func TestActivityHandler(t *testing.T) {
	e := newEnv()
	cfg := command.DefaultProcessActivityConfig()
	cfg.CooldownWindow = time.Nanosecond
	activity := command.NewProcessActivityHandler(e.ledger, achievement.NewCatalog(), nopPublisher{}, zeroRand{}, cfg)
	h := NewActivityHandler(activity, presenter.NewAnnouncementPresenter(), staticFlavor{line: "Onwards!"})

	t.Run("first message announces the First Words achievement", func(t *testing.T) {
		announcements, err := h.Handle(context.Background(), ActivityRequest{TelegramID: 21, FirstName: "Quiet"})
		require.NoError(t, err)
		assert.Contains(t, fmt.Sprint(announcements), "First Words")
	})

	t.Run("ordinary message is silent", func(t *testing.T) {
		announcements, err := h.Handle(context.Background(), ActivityRequest{TelegramID: 21, FirstName: "Quiet"})
		require.NoError(t, err)
		assert.Empty(t, announcements)
	})

	t.Run("level up produces an announcement with flavor", func(t *testing.T) {
		base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
		var announced []string
		// Минимальный ролл даёт 10 XP за сообщение, уровень 2 стоит 100 XP.
		for i := 0; i < 12; i++ {
			res, err := h.Handle(context.Background(), ActivityRequest{
				TelegramID: 22, FirstName: "Climber",
				Timestamp: base.Add(time.Duration(i) * time.Minute),
			})
			require.NoError(t, err)
			announced = append(announced, res...)
		}

		joined := fmt.Sprint(announced)
		assert.Contains(t, joined, "уровня")
		assert.Contains(t, joined, "Onwards!")
	})
}
