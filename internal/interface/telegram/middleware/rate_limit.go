// Package middleware contains Telegram bot middlewares for update processing.
package middleware

import (
	"fmt"
	"sync"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// RATE LIMITER
// Токен-бакет на пользователя. Защищает обработчики команд от спама:
// честный пользователь с парой лишних нажатий проходит, спамер получает
// временный бан. Обычные сообщения в чате лимит не трогает, иначе
// активные участники перестали бы получать XP.
// ══════════════════════════════════════════════════════════════════════════════

// RateLimitConfig - настройки лимитера.
type RateLimitConfig struct {
	// RequestsPerMinute - команд в минуту на пользователя.
	RequestsPerMinute int

	// BurstSize - допустимая пачка подряд (стартовый запас токенов).
	BurstSize int

	// BanDuration - длительность временного бана.
	BanDuration time.Duration

	// BanThreshold - нарушений подряд до временного бана.
	BanThreshold int

	// CleanupInterval - период чистки неактивных бакетов.
	CleanupInterval time.Duration

	// Whitelist - пользователи без ограничений (админы).
	Whitelist map[int64]bool
}

// DefaultRateLimitConfig возвращает рабочие значения по умолчанию.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 20,
		BurstSize:         5,
		BanDuration:       10 * time.Minute,
		BanThreshold:      3,
		CleanupInterval:   5 * time.Minute,
		Whitelist:         make(map[int64]bool),
	}
}

// RateLimiter ограничивает частоту команд по пользователю.
type RateLimiter struct {
	config RateLimitConfig

	mu      sync.Mutex
	buckets map[int64]*tokenBucket
	bans    map[int64]time.Time

	stopCh chan struct{}
}

// tokenBucket - состояние лимита одного пользователя.
type tokenBucket struct {
	tokens       float64
	lastRefill   time.Time
	violations   int
	lastViolated time.Time
	lastSeen     time.Time
}

// NewRateLimiter создаёт лимитер и запускает фоновую чистку.
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		config:  config,
		buckets: make(map[int64]*tokenBucket),
		bans:    make(map[int64]time.Time),
		stopCh:  make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Result - вердикт по одному обращению.
type Result struct {
	Allowed    bool
	Banned     bool
	RetryAfter time.Duration
}

// Message - текст ответа пользователю, упёршемуся в лимит.
func (r Result) Message() string {
	seconds := int(r.RetryAfter.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	if r.Banned {
		return fmt.Sprintf("🚫 Слишком много команд подряд. Пауза %d мин.", max(seconds/60, 1))
	}
	return fmt.Sprintf("⏳ Не так быстро! Попробуй через %d сек.", seconds)
}

// Check решает, пропускать ли обращение пользователя.
func (rl *RateLimiter) Check(telegramID int64) Result {
	if rl.config.Whitelist[telegramID] {
		return Result{Allowed: true}
	}

	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if until, ok := rl.bans[telegramID]; ok {
		if now.Before(until) {
			return Result{Banned: true, RetryAfter: until.Sub(now)}
		}
		delete(rl.bans, telegramID)
	}

	b, ok := rl.buckets[telegramID]
	if !ok {
		b = &tokenBucket{tokens: float64(rl.config.BurstSize), lastRefill: now}
		rl.buckets[telegramID] = b
	}
	b.lastSeen = now

	refillRate := float64(rl.config.RequestsPerMinute) / 60.0
	b.tokens += now.Sub(b.lastRefill).Seconds() * refillRate
	if b.tokens > float64(rl.config.BurstSize) {
		b.tokens = float64(rl.config.BurstSize)
	}
	b.lastRefill = now

	if b.tokens >= 1.0 {
		b.tokens--
		return Result{Allowed: true}
	}

	// Старые нарушения не копятся вечно.
	if now.Sub(b.lastViolated) > 5*time.Minute {
		b.violations = 0
	}
	b.violations++
	b.lastViolated = now

	if b.violations >= rl.config.BanThreshold {
		until := now.Add(rl.config.BanDuration)
		rl.bans[telegramID] = until
		return Result{Banned: true, RetryAfter: rl.config.BanDuration}
	}

	retryAfter := time.Duration((1.0 - b.tokens) / refillRate * float64(time.Second))
	return Result{RetryAfter: retryAfter}
}

// Stop останавливает фоновую чистку.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// cleanupLoop выбрасывает бакеты пользователей, молчавших дольше периода чистки.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for id, b := range rl.buckets {
				if now.Sub(b.lastSeen) > rl.config.CleanupInterval {
					delete(rl.buckets, id)
				}
			}
			for id, until := range rl.bans {
				if now.After(until) {
					delete(rl.bans, id)
				}
			}
			rl.mu.Unlock()
		}
	}
}
