// Package main - точка входа Telegram-бота LevelUp Hub.
//
// Бот превращает активность в чате сообщества ThePromotionHub в игру:
// сообщения дают XP и HubCoins, монеты тратятся в магазине перков,
// серия ежедневных бонусов и престиж держат интерес надолго.
//
// Архитектура следует Clean Architecture и DDD:
// - Domain: чистая бизнес-логика без внешних зависимостей
// - Application: оркестрация use cases (Commands/Queries)
// - Infrastructure: персистентность, шина событий, внешние API
// - Interface: Telegram handlers, операционные HTTP endpoints
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/promohub/levelup-hub/config"

	// Domain layer
	"github.com/promohub/levelup-hub/internal/domain/account"
	"github.com/promohub/levelup-hub/internal/domain/achievement"
	"github.com/promohub/levelup-hub/internal/domain/economy"
	"github.com/promohub/levelup-hub/internal/domain/shared"
	"github.com/promohub/levelup-hub/internal/domain/social"

	// Application layer
	"github.com/promohub/levelup-hub/internal/application/command"
	"github.com/promohub/levelup-hub/internal/application/eventhandler"
	"github.com/promohub/levelup-hub/internal/application/query"

	// Infrastructure layer
	"github.com/promohub/levelup-hub/internal/infrastructure/external/gemini"
	"github.com/promohub/levelup-hub/internal/infrastructure/external/telegram"
	"github.com/promohub/levelup-hub/internal/infrastructure/messaging"
	"github.com/promohub/levelup-hub/internal/infrastructure/persistence/memory"
	"github.com/promohub/levelup-hub/internal/infrastructure/persistence/postgres"
	"github.com/promohub/levelup-hub/internal/infrastructure/persistence/redis"
	"github.com/promohub/levelup-hub/internal/infrastructure/scheduler"
	"github.com/promohub/levelup-hub/internal/infrastructure/scheduler/jobs"

	// Interface layer
	httpserver "github.com/promohub/levelup-hub/internal/interface/http"
	tgiface "github.com/promohub/levelup-hub/internal/interface/telegram"
	"github.com/promohub/levelup-hub/internal/interface/telegram/handler"
	"github.com/promohub/levelup-hub/internal/interface/telegram/middleware"
	"github.com/promohub/levelup-hub/internal/interface/telegram/presenter"

	// Packages
	"github.com/promohub/levelup-hub/pkg/logger"
)

// eventBus - общий срез обеих реализаций шины (in-memory и Redis).
type eventBus interface {
	shared.EventPublisher
	Subscribe(eventType shared.EventType, handler shared.EventHandler) error
	Close() error
	Metrics() *messaging.EventBusMetrics
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := logger.Setup(logger.Options{
		Level:   cfg.Observability.LogLevel,
		Format:  cfg.Observability.LogFormat,
		Service: "bot",
	})
	log.Info("starting LevelUp Hub bot",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"timezone", cfg.App.Timezone,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПЕРСИСТЕНТНОСТЬ (PostgreSQL или in-memory)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		ledger    account.Ledger
		txLog     account.TransactionLog
		spotlight social.SpotlightHistory
		pgConn    *postgres.Connection
	)

	if cfg.Database.InMemory() {
		// Без DATABASE_URL состояние живёт в процессе. Для локальной
		// разработки и CI этого достаточно, в продакшене Validate не пустит.
		log.Warn("DATABASE_URL is empty, using in-memory persistence")
		mem := memory.NewLedger(log, account.Coins(cfg.Game.WelcomeCoins))
		ledger = mem
		txLog = mem
		spotlight = memory.NewSpotlightHistory()
	} else {
		log.Info("connecting to database...")
		pgConn, err = postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			log.Info("closing database connection...")
			pgConn.Close()
		}()

		if err := pgConn.Ping(ctx); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
		log.Info("database connection established")

		// ─────────────────────────────────────────────────────────────────
		// 4. МИГРАЦИИ
		// ─────────────────────────────────────────────────────────────────
		log.Info("running database migrations...")
		migrator := postgres.NewMigrator(pgConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		repo := postgres.NewAccountRepo(pgConn, account.Coins(cfg.Game.WelcomeCoins))
		ledger = repo
		txLog = repo
		spotlight = postgres.NewSpotlightRepo(pgConn)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REDIS (опционально: кеш рейтинга и распределённая шина)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		redisCache       *redis.Cache
		leaderboardCache account.LeaderboardCache
	)

	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		cache, err := redis.NewCache(ctx, redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			log.Warn("failed to connect to Redis, leaderboard cache disabled", "error", err)
		} else {
			redisCache = cache
			defer redisCache.Close()
			leaderboardCache = redis.NewLeaderboardCache(redisCache)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ШИНА СОБЫТИЙ
	// ─────────────────────────────────────────────────────────────────────────
	localBusConfig := messaging.DefaultInMemoryEventBusConfig()
	localBusConfig.Logger = log

	var bus eventBus
	if redisCache != nil {
		redisBus, err := messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
			Cache:          redisCache,
			LocalBusConfig: localBusConfig,
			Logger:         log,
		})
		if err != nil {
			return fmt.Errorf("failed to start redis event bus: %w", err)
		}
		bus = redisBus
		log.Info("event bus initialized", "mode", "redis")
	} else {
		bus = messaging.NewInMemoryEventBus(localBusConfig)
		log.Info("event bus initialized", "mode", "in-memory")
	}
	defer func() {
		log.Info("closing event bus...")
		_ = bus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ДОМЕННЫЕ КАТАЛОГИ
	// ─────────────────────────────────────────────────────────────────────────
	rng := economy.NewRand()
	shopCatalog := economy.NewCatalog(economy.CatalogConfig{
		TitlePrice:      cfg.Game.TitlePrice,
		TitleDuration:   cfg.Game.TitleDuration,
		BoostPrice:      cfg.Game.BoostPrice,
		BoostDuration:   cfg.Game.BoostDuration,
		SpotlightPrice:  cfg.Game.SpotlightPrice,
		VIPPrice:        cfg.Game.VIPPrice,
		VIPDuration:     cfg.Game.VIPDuration,
		MysteryBoxPrice: cfg.Game.MysteryBoxPrice,
		MysteryBox:      economy.DefaultMysteryBoxConfig(),
	})

	achievements := achievement.NewCatalog()

	// ─────────────────────────────────────────────────────────────────────────
	// 8. APPLICATION LAYER (Commands, Queries)
	// ─────────────────────────────────────────────────────────────────────────
	activityCmd := command.NewProcessActivityHandler(ledger, achievements, bus, rng,
		command.ProcessActivityConfig{
			CooldownWindow: cfg.Game.CooldownWindow,
			XPMin:          cfg.Game.XPMin,
			XPMax:          cfg.Game.XPMax,
			CoinMin:        cfg.Game.CoinMin,
			CoinMax:        cfg.Game.CoinMax,
			BonusPerLevel:  cfg.Game.BonusPerLevel,
		})
	claimCmd := command.NewClaimDailyHandler(ledger, achievements, bus,
		command.ClaimDailyConfig{
			BaseCoins:      cfg.Game.DailyBaseCoins,
			PerStreakCoins: cfg.Game.DailyStreakBonus,
			MaxCoins:       cfg.Game.DailyMaxCoins,
		})
	purchaseCmd := command.NewPurchaseItemHandler(ledger, shopCatalog, achievements, bus, rng)
	prestigeCmd := command.NewTakePrestigeHandler(ledger, achievements, bus, cfg.Game.PrestigeBonusCoins)
	reputationCmd := command.NewGiveReputationHandler(ledger, bus)
	giftCmd := command.NewGiftCoinsHandler(ledger, bus)
	sweepCmd := command.NewSweepExpiredGrantsHandler(ledger, bus, 0)

	profileQuery := query.NewGetProfileHandler(ledger, achievements, leaderboardCache)
	leaderboardQuery := query.NewGetLeaderboardHandler(ledger, leaderboardCache)
	transactionsQuery := query.NewGetTransactionsHandler(ledger, txLog)

	// ─────────────────────────────────────────────────────────────────────────
	// 9. ВНЕШНИЕ КЛИЕНТЫ
	// ─────────────────────────────────────────────────────────────────────────
	clientConfig := telegram.DefaultClientConfig(cfg.Telegram.Token)
	clientConfig.Timeout = cfg.Telegram.RequestTimeout
	clientConfig.RetryAttempts = cfg.Telegram.MaxRetries
	clientConfig.Logger = log
	tgClient := telegram.NewClient(clientConfig)

	// Gemini даёт живые поздравления при level-up. Без ключа (или при
	// выключенной фиче) хендлер обходится запасными репликами.
	var flavor handler.FlavorSource
	if cfg.Features.FlavorText && cfg.Gemini.Enabled() {
		flavor = gemini.NewClient(gemini.Config{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			Timeout: cfg.Gemini.Timeout,
			Logger:  log,
		}, rng)
		log.Info("gemini flavor text enabled", "model", cfg.Gemini.Model)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 10. EVENT HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	notifier := tgiface.NewNotifier(tgClient)

	grantExpired := eventhandler.NewOnGrantExpiredHandler(notifier, log)
	if err := bus.Subscribe(shared.EventGrantExpired, grantExpired.Handle); err != nil {
		return fmt.Errorf("failed to subscribe grant expiry handler: %w", err)
	}
	if cfg.Telegram.GroupChatID != 0 {
		spotlightChosen := eventhandler.NewOnSpotlightChosenHandler(notifier, cfg.Telegram.GroupChatID, log)
		if err := bus.Subscribe(shared.EventSpotlightChosen, spotlightChosen.Handle); err != nil {
			return fmt.Errorf("failed to subscribe spotlight handler: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 11. TELEGRAM INTERFACE (presenters, handlers, router, bot)
	// ─────────────────────────────────────────────────────────────────────────
	announce := presenter.NewAnnouncementPresenter()
	card := presenter.NewProfileCardPresenter()
	board := presenter.NewLeaderboardPresenter()
	shop := presenter.NewShopPresenter()

	router := tgiface.NewRouter()
	router.RegisterCommand("start", handler.NewStartHandler())
	router.RegisterCommand("help", handler.NewHelpHandler())
	router.RegisterCommand("stats", handler.NewProfileHandler(profileQuery, card))
	router.RegisterCommand("top", handler.NewTopHandler(leaderboardQuery, board))
	router.RegisterCommand("history", handler.NewHistoryHandler(transactionsQuery))
	router.RegisterCommand("shop", handler.NewShopHandler(shopCatalog, profileQuery, shop))
	router.RegisterCommand("daily", handler.NewDailyHandler(claimCmd, announce))
	router.RegisterCommand("prestige", handler.NewPrestigeHandler(prestigeCmd, announce))
	router.RegisterCommand("rep", handler.NewRepHandler(reputationCmd, announce))
	if cfg.Features.GiftCoins {
		router.RegisterCommand("gift", handler.NewGiftHandler(giftCmd, announce))
	}

	buy := handler.NewBuyHandler(purchaseCmd, shop)
	router.RegisterCommand("buy", buy)
	router.RegisterCallbackPrefix(presenter.BuyCallbackPrefix, buy)

	limiterConfig := middleware.DefaultRateLimitConfig()
	limiterConfig.RequestsPerMinute = cfg.Telegram.UserRateLimit
	limiterConfig.BurstSize = cfg.Telegram.UserRateBurst
	limiterConfig.BanDuration = cfg.Telegram.UserRateLimitBan
	for _, id := range cfg.Telegram.AdminIDs {
		limiterConfig.Whitelist[id] = true
	}
	limiter := middleware.NewRateLimiter(limiterConfig)
	defer limiter.Stop()

	activityHandler := handler.NewActivityHandler(activityCmd, announce, flavor)

	botConfig := tgiface.DefaultBotConfig()
	botConfig.MaxConcurrentUpdates = cfg.Telegram.MaxConcurrentUpdates
	botConfig.ShutdownTimeout = cfg.App.ShutdownTimeout
	botConfig.GroupChatID = cfg.Telegram.GroupChatID
	botConfig.Logger = log
	bot := tgiface.NewBot(tgClient, router, activityHandler, limiter, botConfig)

	// ─────────────────────────────────────────────────────────────────────────
	// 12. ФОНОВЫЕ ЗАДАЧИ
	// ─────────────────────────────────────────────────────────────────────────
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.NewScheduler(scheduler.SchedulerConfig{
			Logger:   log,
			Timezone: cfg.App.Location,
		})

		if err := registerJobs(sched, cfg, ledger, spotlight, leaderboardCache, sweepCmd, bus, rng, log); err != nil {
			return fmt.Errorf("failed to register jobs: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 13. ОПЕРАЦИОННЫЙ HTTP-СЕРВЕР
	// ─────────────────────────────────────────────────────────────────────────
	var srv *httpserver.Server
	if cfg.HTTP.Enabled {
		httpConfig := httpserver.DefaultConfig()
		httpConfig.Host = cfg.HTTP.Host
		httpConfig.Port = cfg.HTTP.Port
		httpConfig.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute
		httpConfig.APIKeyHashes = cfg.HTTP.APIKeyHashes

		srv = httpserver.NewServer(httpConfig, buildHTTPDeps(cfg, pgConn, redisCache, bot, bus, sched, leaderboardQuery, profileQuery, log))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 14. ЗАПУСК
	// ─────────────────────────────────────────────────────────────────────────
	if sched != nil {
		go func() {
			if err := sched.Start(ctx); err != nil {
				log.Error("scheduler stopped with error", "error", err)
			}
		}()
	}
	if srv != nil {
		go func() {
			if err := srv.Start(ctx); err != nil {
				log.Error("http server stopped with error", "error", err)
			}
		}()
	}

	log.Info("bot is starting", "group_chat_id", cfg.Telegram.GroupChatID)
	return bot.Start(ctx)
}

// ══════════════════════════════════════════════════════════════════════════════
// WIRING HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// registerJobs вешает фоновые задачи на расписание.
func registerJobs(
	sched *scheduler.Scheduler,
	cfg *config.Config,
	ledger account.Ledger,
	spotlight social.SpotlightHistory,
	leaderboardCache account.LeaderboardCache,
	sweeper *command.SweepExpiredGrantsHandler,
	bus shared.EventPublisher,
	rng economy.Rand,
	log *slog.Logger,
) error {
	sweepJob := jobs.NewExpireGrantsJob(sweeper, log)
	if err := sched.Register(sweepJob, scheduler.NewIntervalSchedule(cfg.Scheduler.SweepGrantsInterval)); err != nil {
		return err
	}

	if leaderboardCache != nil {
		rebuildJob := jobs.NewRebuildLeaderboardJob(ledger, leaderboardCache, log,
			jobs.RebuildLeaderboardConfig{Timeout: cfg.Scheduler.JobTimeout})
		if err := sched.Register(rebuildJob, scheduler.NewIntervalSchedule(cfg.Scheduler.RebuildLeaderboardInterval)); err != nil {
			return err
		}
	}

	if cfg.Features.Spotlight && cfg.Telegram.GroupChatID != 0 {
		spotlightJob := jobs.NewDailySpotlightJob(ledger, spotlight, bus, rng, log,
			jobs.DailySpotlightConfig{Timeout: cfg.Scheduler.JobTimeout})
		if err := sched.Register(spotlightJob, scheduler.NewDailyAtSchedule(cfg.Scheduler.SpotlightHour, cfg.Scheduler.SpotlightMinute)); err != nil {
			return err
		}
	}

	return nil
}

// buildHTTPDeps собирает узкие зависимости для операционного HTTP-сервера.
func buildHTTPDeps(
	cfg *config.Config,
	pgConn *postgres.Connection,
	redisCache *redis.Cache,
	bot *tgiface.Bot,
	bus eventBus,
	sched *scheduler.Scheduler,
	leaderboardQuery *query.GetLeaderboardHandler,
	profileQuery *query.GetProfileHandler,
	log *slog.Logger,
) httpserver.Dependencies {
	checks := make(map[string]httpserver.ComponentCheck)
	if pgConn != nil {
		checks["postgres"] = pgConn.Ping
	}
	if redisCache != nil {
		checks["redis"] = redisCache.Ping
	}
	checks["telegram"] = func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if !bot.IsHealthy(ctx) {
			return fmt.Errorf("bot api unreachable")
		}
		return nil
	}

	deps := httpserver.Dependencies{
		Checks:   checks,
		BotStats: func() any { return bot.Stats() },
		BusStats: func() any { return bus.Metrics().Snapshot() },
		Leaderboard: func(ctx context.Context, limit int) (any, error) {
			return leaderboardQuery.Handle(ctx, query.GetLeaderboardQuery{Limit: limit})
		},
		Profile: func(ctx context.Context, telegramID int64) (any, error) {
			return profileQuery.Handle(ctx, query.GetProfileQuery{TelegramID: telegramID})
		},
		Logger: log,
	}

	if sched != nil {
		deps.Jobs = func() any { return sched.ListJobs() }
		deps.RunJob = func(ctx context.Context, name string) (any, error) {
			ctx, cancel := context.WithTimeout(ctx, cfg.Scheduler.JobTimeout)
			defer cancel()
			return sched.RunNow(ctx, name)
		}
	}

	return deps
}
