// Package config loads application configuration from the environment.
// Значения читаются из переменных окружения; .env подхватывается для
// локальной разработки и молча игнорируется в проде.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Telegram  TelegramConfig
	Gemini    GeminiConfig
	Game      GameConfig
	Scheduler SchedulerConfig
	HTTP      HTTPConfig
	Features  FeatureFlags

	Observability ObservabilityConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string
	Environment Environment
	Debug       bool
	Version     string

	// Timezone управляет ежедневными задачами (spotlight, digest).
	Timezone string
	Location *time.Location

	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL connection settings.
// Пустой URL переключает персистентность на in-memory backend -
// удобно для локальной разработки и CI без базы.
type DatabaseConfig struct {
	URL string

	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	QueryTimeout    time.Duration
}

// InMemory reports whether the process should run without PostgreSQL.
func (c DatabaseConfig) InMemory() bool {
	return c.URL == ""
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int

	PoolSize     int
	MinIdleConns int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Disabled выключает кеш рейтинга и распределённую шину событий.
	Disabled bool
}

// TelegramConfig holds Telegram Bot settings.
type TelegramConfig struct {
	// Token выдаёт @BotFather.
	Token string

	RequestTimeout time.Duration
	MaxRetries     int

	// GroupChatID - чат сообщества для объявлений (spotlight).
	// 0 отключает объявления в общий чат.
	GroupChatID int64

	// Rate limiting команд.
	UserRateLimit    int
	UserRateBurst    int
	UserRateLimitBan time.Duration

	// AdminIDs освобождаются от лимитов.
	AdminIDs []int64

	MaxConcurrentUpdates int
}

// GeminiConfig holds the flavor text generator settings.
type GeminiConfig struct {
	// APIKey пустой - поздравления идут из запасного списка.
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Enabled reports whether Gemini calls are configured.
func (c GeminiConfig) Enabled() bool {
	return c.APIKey != ""
}

// GameConfig holds the gameplay tunables.
type GameConfig struct {
	// Начисления за сообщение.
	CooldownWindow time.Duration
	XPMin          int
	XPMax          int
	CoinMin        int
	CoinMax        int
	BonusPerLevel  int

	// Ежедневный бонус.
	DailyBaseCoins   int
	DailyStreakBonus int
	DailyMaxCoins    int

	// Престиж.
	PrestigeBonusCoins int

	// Баланс нового аккаунта.
	WelcomeCoins int

	// Цены магазина.
	TitlePrice      int
	TitleDuration   time.Duration
	BoostPrice      int
	BoostDuration   time.Duration
	SpotlightPrice  int
	VIPPrice        int
	VIPDuration     time.Duration
	MysteryBoxPrice int
}

// SchedulerConfig holds background job settings.
type SchedulerConfig struct {
	Enabled bool

	RebuildLeaderboardInterval time.Duration
	SweepGrantsInterval        time.Duration

	// Время ежедневного розыгрыша spotlight (в таймзоне приложения).
	SpotlightHour   int
	SpotlightMinute int

	JobTimeout time.Duration
}

// HTTPConfig holds the operational HTTP server settings.
type HTTPConfig struct {
	Enabled bool
	Host    string
	Port    int

	RateLimitPerMinute int

	// APIKeyHashes - bcrypt-хеши админских ключей, через запятую.
	APIKeyHashes []string
}

// FeatureFlags - грубые рубильники подсистем. Без процентов и когорт:
// фича либо включена для всех, либо выключена.
type FeatureFlags struct {
	Spotlight    bool
	FlavorText   bool
	Achievements bool
	GiftCoins    bool
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// .env нужен только локально; отсутствие файла не ошибка.
	_ = godotenv.Load()

	cfg := &Config{
		App:       loadAppConfig(),
		Database:  loadDatabaseConfig(),
		Redis:     loadRedisConfig(),
		Telegram:  loadTelegramConfig(),
		Gemini:    loadGeminiConfig(),
		Game:      loadGameConfig(),
		Scheduler: loadSchedulerConfig(),
		HTTP:      loadHTTPConfig(),
		Features:  loadFeatureFlags(),

		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func loadAppConfig() AppConfig {
	env := Environment(getEnv("APP_ENV", "development"))
	timezone := getEnv("APP_TIMEZONE", "UTC")

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}

	return AppConfig{
		Name:            getEnv("APP_NAME", "levelup-hub"),
		Environment:     env,
		Debug:           env == EnvDevelopment || getEnvBool("APP_DEBUG", false),
		Version:         getEnv("APP_VERSION", "0.1.0"),
		Timezone:        timezone,
		Location:        loc,
		ShutdownTimeout: getEnvDuration("APP_SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	url := getEnv("DATABASE_URL", "")
	if url == "" {
		host := getEnv("DB_HOST", "")
		if host != "" {
			url = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
				getEnv("DB_USER", "postgres"),
				getEnv("DB_PASSWORD", ""),
				host,
				getEnv("DB_PORT", "5432"),
				getEnv("DB_NAME", "levelup"),
				getEnv("DB_SSLMODE", "require"),
			)
		}
	}

	return DatabaseConfig{
		URL:             url,
		MaxConns:        getEnvInt("DB_MAX_CONNS", 25),
		MinConns:        getEnvInt("DB_MIN_CONNS", 5),
		ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", time.Minute),
		QueryTimeout:    getEnvDuration("DB_QUERY_TIMEOUT", 30*time.Second),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Host:         getEnv("REDIS_HOST", "localhost"),
		Port:         getEnvInt("REDIS_PORT", 6379),
		Password:     getEnv("REDIS_PASSWORD", ""),
		DB:           getEnvInt("REDIS_DB", 0),
		PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
		MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
		DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		Disabled:     getEnvBool("REDIS_DISABLED", false),
	}
}

func loadTelegramConfig() TelegramConfig {
	return TelegramConfig{
		Token:                getEnv("TELEGRAM_BOT_TOKEN", ""),
		RequestTimeout:       getEnvDuration("TELEGRAM_REQUEST_TIMEOUT", 60*time.Second),
		MaxRetries:           getEnvInt("TELEGRAM_MAX_RETRIES", 3),
		GroupChatID:          getEnvInt64("TELEGRAM_GROUP_CHAT_ID", 0),
		UserRateLimit:        getEnvInt("TELEGRAM_USER_RATE_LIMIT", 20),
		UserRateBurst:        getEnvInt("TELEGRAM_USER_RATE_BURST", 5),
		UserRateLimitBan:     getEnvDuration("TELEGRAM_USER_RATE_LIMIT_BAN", 10*time.Minute),
		AdminIDs:             getEnvInt64Slice("TELEGRAM_ADMIN_IDS", nil),
		MaxConcurrentUpdates: getEnvInt("TELEGRAM_MAX_CONCURRENT_UPDATES", 100),
	}
}

func loadGeminiConfig() GeminiConfig {
	return GeminiConfig{
		APIKey:  getEnv("GEMINI_API_KEY", ""),
		Model:   getEnv("GEMINI_MODEL", "gemini-pro"),
		Timeout: getEnvDuration("GEMINI_TIMEOUT", 10*time.Second),
	}
}

func loadGameConfig() GameConfig {
	return GameConfig{
		CooldownWindow: getEnvDuration("GAME_COOLDOWN_WINDOW", 60*time.Second),
		XPMin:          getEnvInt("GAME_XP_MIN", 10),
		XPMax:          getEnvInt("GAME_XP_MAX", 30),
		CoinMin:        getEnvInt("GAME_COIN_MIN", 1),
		CoinMax:        getEnvInt("GAME_COIN_MAX", 5),
		BonusPerLevel:  getEnvInt("GAME_BONUS_PER_LEVEL", 50),

		DailyBaseCoins:   getEnvInt("GAME_DAILY_BASE_COINS", 50),
		DailyStreakBonus: getEnvInt("GAME_DAILY_STREAK_BONUS", 10),
		DailyMaxCoins:    getEnvInt("GAME_DAILY_MAX_COINS", 300),

		PrestigeBonusCoins: getEnvInt("GAME_PRESTIGE_BONUS", 1000),
		WelcomeCoins:       getEnvInt("GAME_WELCOME_COINS", 100),

		TitlePrice:      getEnvInt("SHOP_TITLE_PRICE", 1000),
		TitleDuration:   getEnvDuration("SHOP_TITLE_DURATION", 7*24*time.Hour),
		BoostPrice:      getEnvInt("SHOP_BOOST_PRICE", 500),
		BoostDuration:   getEnvDuration("SHOP_BOOST_DURATION", 24*time.Hour),
		SpotlightPrice:  getEnvInt("SHOP_SPOTLIGHT_PRICE", 2500),
		VIPPrice:        getEnvInt("SHOP_VIP_PRICE", 10000),
		VIPDuration:     getEnvDuration("SHOP_VIP_DURATION", 30*24*time.Hour),
		MysteryBoxPrice: getEnvInt("SHOP_MYSTERY_BOX_PRICE", 1000),
	}
}

func loadSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:                    getEnvBool("SCHEDULER_ENABLED", true),
		RebuildLeaderboardInterval: getEnvDuration("SCHEDULER_LEADERBOARD_INTERVAL", 10*time.Minute),
		SweepGrantsInterval:        getEnvDuration("SCHEDULER_SWEEP_INTERVAL", 5*time.Minute),
		SpotlightHour:              getEnvInt("SCHEDULER_SPOTLIGHT_HOUR", 12),
		SpotlightMinute:            getEnvInt("SCHEDULER_SPOTLIGHT_MINUTE", 0),
		JobTimeout:                 getEnvDuration("SCHEDULER_JOB_TIMEOUT", 5*time.Minute),
	}
}

func loadHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Enabled:            getEnvBool("HTTP_ENABLED", true),
		Host:               getEnv("HTTP_HOST", "0.0.0.0"),
		Port:               getEnvInt("HTTP_PORT", 8080),
		RateLimitPerMinute: getEnvInt("HTTP_RATE_LIMIT_PER_MINUTE", 120),
		APIKeyHashes:       getEnvSlice("HTTP_API_KEY_HASHES", nil),
	}
}

func loadFeatureFlags() FeatureFlags {
	return FeatureFlags{
		Spotlight:    getEnvBool("FEATURE_SPOTLIGHT", true),
		FlavorText:   getEnvBool("FEATURE_FLAVOR_TEXT", true),
		Achievements: getEnvBool("FEATURE_ACHIEVEMENTS", true),
		GiftCoins:    getEnvBool("FEATURE_GIFT_COINS", true),
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	if c.Telegram.Token == "" {
		errs = append(errs, "TELEGRAM_BOT_TOKEN is required")
	}
	if c.App.Environment == EnvProduction && c.Database.InMemory() {
		errs = append(errs, "DATABASE_URL is required in production")
	}
	if c.Scheduler.SpotlightHour < 0 || c.Scheduler.SpotlightHour > 23 {
		errs = append(errs, "SCHEDULER_SPOTLIGHT_HOUR must be 0-23")
	}
	if c.Scheduler.SpotlightMinute < 0 || c.Scheduler.SpotlightMinute > 59 {
		errs = append(errs, "SCHEDULER_SPOTLIGHT_MINUTE must be 0-59")
	}
	if c.Game.XPMin <= 0 || c.Game.XPMax < c.Game.XPMin {
		errs = append(errs, "GAME_XP_MIN/GAME_XP_MAX must form a positive range")
	}
	if c.Game.CoinMin <= 0 || c.Game.CoinMax < c.Game.CoinMin {
		errs = append(errs, "GAME_COIN_MIN/GAME_COIN_MAX must form a positive range")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

// --- Helper functions for environment variable parsing ---

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func getEnvSlice(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}

	parts := strings.Split(val, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

func getEnvInt64Slice(key string, defaultVal []int64) []int64 {
	result := make([]int64, 0)
	for _, p := range getEnvSlice(key, nil) {
		i, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			continue
		}
		result = append(result, i)
	}
	if len(result) == 0 {
		return defaultVal
	}
	return result
}
