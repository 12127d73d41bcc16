package telegram

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promohub/levelup-hub/internal/interface/telegram/handler"
)

type echoCommand struct{ name string }

func (e echoCommand) Handle(context.Context, handler.Request) (*handler.Response, error) {
	return &handler.Response{Text: e.name}, nil
}

type echoCallback struct{}

func (echoCallback) HandleCallback(_ context.Context, _ handler.Request, payload string) (*handler.Response, error) {
	return &handler.Response{Text: payload}, nil
}

func TestRouter_Commands(t *testing.T) {
	r := NewRouter()
	r.RegisterCommand("/start", echoCommand{name: "start"})
	r.RegisterCommand("top", echoCommand{name: "top"})

	// Слэш в имени не влияет на поиск.
	h, ok := r.Command("start")
	require.True(t, ok)
	resp, _ := h.Handle(context.Background(), handler.Request{})
	assert.Equal(t, "start", resp.Text)

	_, ok = r.Command("/top")
	assert.True(t, ok)

	_, ok = r.Command("unknown")
	assert.False(t, ok)

	assert.ElementsMatch(t, []string{"start", "top"}, r.Commands())
}

func TestRouter_CallbackPrefix(t *testing.T) {
	r := NewRouter()
	r.RegisterCallbackPrefix("buy:", echoCallback{})

	h, payload, ok := r.Callback("buy:xp-boost")
	require.True(t, ok)
	assert.Equal(t, "xp-boost", payload)

	resp, err := h.HandleCallback(context.Background(), handler.Request{}, payload)
	require.NoError(t, err)
	assert.Equal(t, "xp-boost", resp.Text)

	_, _, ok = r.Callback("noop:123")
	assert.False(t, ok)
}
