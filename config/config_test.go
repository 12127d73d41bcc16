package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.App.Environment)
	assert.True(t, cfg.Database.InMemory())
	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, 60*time.Second, cfg.Game.CooldownWindow)
	assert.Equal(t, 12, cfg.Scheduler.SpotlightHour)
	assert.True(t, cfg.Features.Spotlight)
	assert.False(t, cfg.Gemini.Enabled())
}

func TestLoad_RequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
}

func TestLoad_ProductionRequiresDatabase(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("GAME_XP_MIN", "5")
	t.Setenv("GAME_XP_MAX", "15")
	t.Setenv("TELEGRAM_GROUP_CHAT_ID", "-100200300")
	t.Setenv("TELEGRAM_ADMIN_IDS", "10, 20,30")
	t.Setenv("HTTP_API_KEY_HASHES", "$2a$10$aaa,$2a$10$bbb")
	t.Setenv("FEATURE_SPOTLIGHT", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Game.XPMin)
	assert.Equal(t, 15, cfg.Game.XPMax)
	assert.EqualValues(t, -100200300, cfg.Telegram.GroupChatID)
	assert.Equal(t, []int64{10, 20, 30}, cfg.Telegram.AdminIDs)
	assert.Len(t, cfg.HTTP.APIKeyHashes, 2)
	assert.False(t, cfg.Features.Spotlight)
}

func TestLoad_InvalidRanges(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("SCHEDULER_SPOTLIGHT_HOUR", "25")
	t.Setenv("GAME_COIN_MIN", "10")
	t.Setenv("GAME_COIN_MAX", "2")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCHEDULER_SPOTLIGHT_HOUR")
	assert.Contains(t, err.Error(), "GAME_COIN_MIN")
}

func TestDatabaseConfig_BuildFromParts(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_USER", "hub")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "levelup")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Database.InMemory())
	assert.Contains(t, cfg.Database.URL, "postgres://hub:pw@db.internal:5432/levelup")
}
