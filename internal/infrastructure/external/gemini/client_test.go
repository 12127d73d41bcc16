package gemini

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// firstChoice always picks index 0.
type firstChoice struct{}

func (firstChoice) Float64() float64 { return 0 }
func (firstChoice) Intn(int) int     { return 0 }

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := DefaultConfig("test-key")
	cfg.BaseURL = server.URL
	return NewClient(cfg, firstChoice{})
}

func TestLevelUpLine_UsesGeneratedText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "gemini-pro:generateContent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"🔥 Leo salutes you!"}]}}]}`))
	})

	line := client.LevelUpLine(context.Background(), "Aruzhan", 10)
	assert.Equal(t, "🔥 Leo salutes you!", line)
}

func TestLevelUpLine_FallsBackOnAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	line := client.LevelUpLine(context.Background(), "Aruzhan", 10)
	assert.Contains(t, line, "Aruzhan")
	assert.Contains(t, line, "10")
}

func TestLevelUpLine_FallsBackOnEmptyCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	line := client.LevelUpLine(context.Background(), "Dias", 25)
	assert.Contains(t, line, "Dias")
}

func TestLevelUpLine_DisabledWithoutAPIKey(t *testing.T) {
	client := NewClient(DefaultConfig(""), firstChoice{})
	require.False(t, client.Enabled())

	line := client.LevelUpLine(context.Background(), "Dias", 50)
	assert.Contains(t, line, "Dias")
	assert.Contains(t, line, "50")
}
