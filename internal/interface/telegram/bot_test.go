package telegram

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promohub/levelup-hub/internal/application/command"
	"github.com/promohub/levelup-hub/internal/domain/account"
	"github.com/promohub/levelup-hub/internal/domain/achievement"
	"github.com/promohub/levelup-hub/internal/domain/shared"
	"github.com/promohub/levelup-hub/internal/infrastructure/external/telegram"
	"github.com/promohub/levelup-hub/internal/infrastructure/persistence/memory"
	"github.com/promohub/levelup-hub/internal/interface/telegram/handler"
	"github.com/promohub/levelup-hub/internal/interface/telegram/presenter"
)

type nopBus struct{}

func (nopBus) Publish(shared.Event) error { return nil }

// newActivityBot собирает бота с живым пайплайном активности поверх
// in-memory реестра и заглушки Bot API.
func newActivityBot(t *testing.T, groupChatID int64) (*Bot, *memory.Ledger) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"chat":{"id":1,"type":"supergroup"},"date":0}}`))
	}))
	t.Cleanup(server.Close)

	clientConfig := telegram.DefaultClientConfig("test-token")
	clientConfig.BaseURL = server.URL
	client := telegram.NewClient(clientConfig)

	ledger := memory.NewLedger(slog.Default(), 100)
	activityCmd := command.NewProcessActivityHandler(ledger, achievement.NewCatalog(), nopBus{},
		nil, command.DefaultProcessActivityConfig())
	activity := handler.NewActivityHandler(activityCmd, presenter.NewAnnouncementPresenter(), nil)

	bot := NewBot(client, NewRouter(), activity, nil, BotConfig{
		GroupChatID: groupChatID,
		Logger:      slog.Default(),
	})
	return bot, ledger
}

func groupMsg(chatID, userID int64, text string) *telegram.Message {
	return &telegram.Message{
		MessageID: 10,
		From:      &telegram.User{ID: userID, FirstName: "Leo"},
		Chat:      &telegram.Chat{ID: chatID, Type: "supergroup"},
		Date:      time.Now().Unix(),
		Text:      text,
	}
}

func TestBot_ActivityIgnoresForeignGroup(t *testing.T) {
	bot, ledger := newActivityBot(t, -100500)

	// Сообщение из чужой группы не доходит до пайплайна активности.
	bot.processMessage(context.Background(), groupMsg(-200, 42, "привет"))

	assert.Zero(t, bot.Stats().Messages)
	_, err := ledger.GetByTelegramID(context.Background(), account.TelegramID(42))
	assert.ErrorIs(t, err, account.ErrAccountNotFound)
}

func TestBot_ActivityCountsConfiguredGroup(t *testing.T) {
	bot, ledger := newActivityBot(t, -100500)

	bot.processMessage(context.Background(), groupMsg(-100500, 42, "привет"))

	assert.Equal(t, int64(1), bot.Stats().Messages)
	acc, err := ledger.GetByTelegramID(context.Background(), account.TelegramID(42))
	require.NoError(t, err)
	assert.Equal(t, 1, acc.MessageCount)
}

func TestBot_ActivityUnscopedWithoutGroupID(t *testing.T) {
	// Нулевой GroupChatID оставляет старое поведение: любая группа.
	bot, ledger := newActivityBot(t, 0)

	bot.processMessage(context.Background(), groupMsg(-777, 42, "привет"))

	assert.Equal(t, int64(1), bot.Stats().Messages)
	_, err := ledger.GetByTelegramID(context.Background(), account.TelegramID(42))
	require.NoError(t, err)
}
