// Package main - точка входа фонового воркера LevelUp Hub.
//
// Воркер выносит периодические задачи из процесса бота:
// - чистку истёкших перков (кастомные титулы, XP-бусты, VIP)
// - пересборку кеша рейтинга в Redis
// - ежедневный розыгрыш участника дня
//
// События задач уходят в Redis-шину, процесс бота подхватывает их и
// публикует объявления в чат. Подходит для деплоя, где бот и воркер
// масштабируются независимо; в маленьких инсталляциях те же задачи
// умеет крутить и сам бот (SCHEDULER_ENABLED=true).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/promohub/levelup-hub/config"

	// Domain layer
	"github.com/promohub/levelup-hub/internal/domain/account"
	"github.com/promohub/levelup-hub/internal/domain/economy"
	"github.com/promohub/levelup-hub/internal/domain/shared"
	"github.com/promohub/levelup-hub/internal/domain/social"

	// Application layer
	"github.com/promohub/levelup-hub/internal/application/command"

	// Infrastructure layer
	"github.com/promohub/levelup-hub/internal/infrastructure/messaging"
	"github.com/promohub/levelup-hub/internal/infrastructure/persistence/memory"
	"github.com/promohub/levelup-hub/internal/infrastructure/persistence/postgres"
	"github.com/promohub/levelup-hub/internal/infrastructure/persistence/redis"
	"github.com/promohub/levelup-hub/internal/infrastructure/scheduler"
	"github.com/promohub/levelup-hub/internal/infrastructure/scheduler/jobs"

	// Interface layer
	httpserver "github.com/promohub/levelup-hub/internal/interface/http"

	// Packages
	"github.com/promohub/levelup-hub/pkg/logger"
)

// eventBus - общий срез обеих реализаций шины (in-memory и Redis).
type eventBus interface {
	shared.EventPublisher
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
		Service: "worker",
	})
	log.Info("starting LevelUp Hub worker",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"timezone", cfg.App.Timezone,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПЕРСИСТЕНТНОСТЬ
	// ─────────────────────────────────────────────────────────────────────────
	var (
		ledger    account.Ledger
		spotlight social.SpotlightHistory
		pgConn    *postgres.Connection
	)

	if cfg.Database.InMemory() {
		// In-memory состояние живёт в каждом процессе отдельно: воркер
		// без базы видит только собственный пустой реестр. Годится лишь
		// для отладки самих задач.
		log.Warn("DATABASE_URL is empty, worker runs on private in-memory state")
		mem := memory.NewLedger(log, account.Coins(cfg.Game.WelcomeCoins))
		ledger = mem
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

		// Миграции гоняет процесс бота, воркер схему не трогает.
		ledger = postgres.NewAccountRepo(pgConn, account.Coins(cfg.Game.WelcomeCoins))
		spotlight = postgres.NewSpotlightRepo(pgConn)
		log.Info("database connection established")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REDIS
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
			log.Warn("failed to connect to Redis, leaderboard rebuild disabled", "error", err)
		} else {
			redisCache = cache
			defer redisCache.Close()
			leaderboardCache = redis.NewLeaderboardCache(redisCache)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ШИНА СОБЫТИЙ
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
		// Без Redis события остаются внутри воркера: объявления в чат
		// делает только процесс бота со своей шиной.
		log.Warn("no Redis event bus, job events will not reach the bot process")
		bus = messaging.NewInMemoryEventBus(localBusConfig)
	}
	defer func() {
		log.Info("closing event bus...")
		_ = bus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ЗАДАЧИ И РАСПИСАНИЕ
	// ─────────────────────────────────────────────────────────────────────────
	sched := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Logger:   log,
		Timezone: cfg.App.Location,
	})

	sweeper := command.NewSweepExpiredGrantsHandler(ledger, bus, 0)
	sweepJob := jobs.NewExpireGrantsJob(sweeper, log)
	if err := sched.Register(sweepJob, scheduler.NewIntervalSchedule(cfg.Scheduler.SweepGrantsInterval)); err != nil {
		return fmt.Errorf("failed to register %s: %w", sweepJob.Name(), err)
	}

	if leaderboardCache != nil {
		rebuildJob := jobs.NewRebuildLeaderboardJob(ledger, leaderboardCache, log,
			jobs.RebuildLeaderboardConfig{Timeout: cfg.Scheduler.JobTimeout})
		if err := sched.Register(rebuildJob, scheduler.NewIntervalSchedule(cfg.Scheduler.RebuildLeaderboardInterval)); err != nil {
			return fmt.Errorf("failed to register %s: %w", rebuildJob.Name(), err)
		}
	}

	if cfg.Features.Spotlight {
		spotlightJob := jobs.NewDailySpotlightJob(ledger, spotlight, bus, economy.NewRand(), log,
			jobs.DailySpotlightConfig{Timeout: cfg.Scheduler.JobTimeout})
		if err := sched.Register(spotlightJob, scheduler.NewDailyAtSchedule(cfg.Scheduler.SpotlightHour, cfg.Scheduler.SpotlightMinute)); err != nil {
			return fmt.Errorf("failed to register %s: %w", spotlightJob.Name(), err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ОПЕРАЦИОННЫЙ HTTP-СЕРВЕР
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.HTTP.Enabled {
		httpConfig := httpserver.DefaultConfig()
		httpConfig.Host = cfg.HTTP.Host
		httpConfig.Port = cfg.HTTP.Port
		httpConfig.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute
		httpConfig.APIKeyHashes = cfg.HTTP.APIKeyHashes

		checks := make(map[string]httpserver.ComponentCheck)
		if pgConn != nil {
			checks["postgres"] = pgConn.Ping
		}
		if redisCache != nil {
			checks["redis"] = redisCache.Ping
		}

		srv := httpserver.NewServer(httpConfig, httpserver.Dependencies{
			Checks:   checks,
			BusStats: func() any { return bus.Metrics().Snapshot() },
			Jobs:     func() any { return sched.ListJobs() },
			RunJob: func(ctx context.Context, name string) (any, error) {
				ctx, cancel := context.WithTimeout(ctx, cfg.Scheduler.JobTimeout)
				defer cancel()
				return sched.RunNow(ctx, name)
			},
			Logger: log,
		})

		go func() {
			if err := srv.Start(ctx); err != nil {
				log.Error("http server stopped with error", "error", err)
			}
		}()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. ЗАПУСК
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("worker is starting", "jobs", len(sched.ListJobs()))
	return sched.Start(ctx)
}
