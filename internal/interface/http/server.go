// Package http exposes the operational HTTP surface: готовность и
// живость для оркестратора, публичное API рейтинга и админ-ручки
// планировщика. Бот живёт на long polling, вебхуков здесь нет.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config содержит настройки HTTP-сервера.
type Config struct {
	// Host - адрес для bind (по умолчанию "0.0.0.0").
	Host string

	// Port - порт (по умолчанию 8080).
	Port int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// RateLimitPerMinute - запросов в минуту с одного IP (0 - без лимита).
	RateLimitPerMinute int

	// APIKeyHeader - заголовок с ключом для админ-ручек.
	APIKeyHeader string

	// APIKeyHashes - bcrypt-хеши допустимых ключей. Пустой список
	// закрывает админ-ручки совсем.
	APIKeyHashes []string
}

// DefaultConfig возвращает рабочие значения по умолчанию.
func DefaultConfig() Config {
	return Config{
		Host:               "0.0.0.0",
		Port:               8080,
		ReadTimeout:        15 * time.Second,
		WriteTimeout:       15 * time.Second,
		IdleTimeout:        60 * time.Second,
		RateLimitPerMinute: 120,
		APIKeyHeader:       "X-API-Key",
	}
}

// Address - строка адреса для net/http.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// Хендлеры принимают узкие функции-зависимости, чтобы сервер не тянул
// за собой конкретные типы инфраструктуры.
// ══════════════════════════════════════════════════════════════════════════════

// ComponentCheck проверяет готовность одной подсистемы.
type ComponentCheck func(ctx context.Context) error

// Dependencies - всё, что нужно хендлерам.
type Dependencies struct {
	// Checks - именованные проверки готовности (postgres, redis...).
	Checks map[string]ComponentCheck

	// Снимки статистики для /api/v1/status. Любое поле может быть nil,
	// тогда секция опускается.
	BotStats func() any
	BusStats func() any
	Jobs     func() any

	// RunJob запускает зарегистрированную фоновую задачу вне расписания.
	RunJob func(ctx context.Context, name string) (any, error)

	// Leaderboard / Profile - публичное API чтения.
	Leaderboard func(ctx context.Context, limit int) (any, error)
	Profile     func(ctx context.Context, telegramID int64) (any, error)

	Logger *slog.Logger
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// Server - HTTP-сервер с graceful shutdown.
type Server struct {
	config     Config
	deps       Dependencies
	httpServer *http.Server
	logger     *slog.Logger

	limiter *ipLimiter

	mu        sync.RWMutex
	startedAt time.Time
}

// NewServer собирает сервер и маршруты.
func NewServer(config Config, deps Dependencies) *Server {
	if config.Port == 0 {
		config = DefaultConfig()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config: config,
		deps:   deps,
		logger: logger.With("component", "http_server"),
	}
	if config.RateLimitPerMinute > 0 {
		s.limiter = newIPLimiter(config.RateLimitPerMinute)
	}

	mux := http.NewServeMux()
	s.routes(mux)

	s.httpServer = &http.Server{
		Addr:         config.Address(),
		Handler:      s.middleware(mux),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return s
}

// routes регистрирует все маршруты.
func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /live", s.handleLive)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.HandleFunc("GET /health", s.handleReady) // k8s-совместимый алиас

	mux.HandleFunc("GET /api/v1/leaderboard", s.handleLeaderboard)
	mux.HandleFunc("GET /api/v1/members/{id}", s.handleProfile)
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)

	mux.Handle("POST /api/v1/admin/jobs/{name}/run", s.requireAPIKey(http.HandlerFunc(s.handleRunJob)))
}

// Start запускает сервер и блокируется до отмены контекста.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	s.startedAt = time.Now()
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.config.Address())
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info("http server shutting down")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

// Handler отдаёт собранный стек для тестов.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ══════════════════════════════════════════════════════════════════════════════
// MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

type contextKey string

const contextKeyRequestID contextKey = "request_id"

// middleware оборачивает роутер общим стеком.
func (s *Server) middleware(next http.Handler) http.Handler {
	h := next
	h = s.logging(h)
	h = s.recovery(h)
	if s.limiter != nil {
		h = s.rateLimit(h)
	}
	h = s.requestID(h)
	return h
}

// requestID проставляет и пробрасывает X-Request-ID.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKeyRequestID, id)))
	})
}

// logging пишет строку на каждый запрос.
func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", clientIP(r),
			"request_id", r.Context().Value(contextKeyRequestID),
		)
	})
}

// recovery превращает панику хендлера в 500.
func (s *Server) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic in http handler",
					"panic", rec,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				writeError(w, http.StatusInternalServerError, "internal_error", "unexpected error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// rateLimit ограничивает запросы по IP.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(clientIP(r)) {
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusWriter запоминает код ответа для логов.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// clientIP достаёт IP клиента, доверяя X-Forwarded-For за прокси.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		for i := 0; i < len(fwd); i++ {
			if fwd[i] == ',' {
				return fwd[:i]
			}
		}
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ══════════════════════════════════════════════════════════════════════════════
// IP RATE LIMITER
// ══════════════════════════════════════════════════════════════════════════════

// ipLimiter - скользящее окно в минуту на IP. Точности токен-бакета
// здесь не нужно, объёмы смешные.
type ipLimiter struct {
	perMinute int

	mu      sync.Mutex
	windows map[string]*ipWindow
}

type ipWindow struct {
	start time.Time
	count int
}

func newIPLimiter(perMinute int) *ipLimiter {
	return &ipLimiter{
		perMinute: perMinute,
		windows:   make(map[string]*ipWindow),
	}
}

// Allow учитывает запрос и решает, пропускать ли его.
func (l *ipLimiter) Allow(ip string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[ip]
	if !ok || now.Sub(w.start) >= time.Minute {
		// Заодно выбрасываем протухшие окна, карта не растёт бесконечно.
		if len(l.windows) > 10000 {
			for k, win := range l.windows {
				if now.Sub(win.start) >= time.Minute {
					delete(l.windows, k)
				}
			}
		}
		l.windows[ip] = &ipWindow{start: now, count: 1}
		return true
	}

	w.count++
	return w.count <= l.perMinute
}

// ══════════════════════════════════════════════════════════════════════════════
// JSON HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error":   code,
		"message": message,
	})
}
