package http

import (
	"net/http"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH ENDPOINTS
// /live отвечает всегда, пока процесс жив. /ready гоняет проверки
// подсистем и возвращает 503, если хоть одна лежит.
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	startedAt := s.startedAt
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "alive",
		"uptime": time.Since(startedAt).Round(time.Second).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	components := make(map[string]string, len(s.deps.Checks))
	healthy := true
	for name, check := range s.deps.Checks {
		if err := check(ctx); err != nil {
			components[name] = err.Error()
			healthy = false
			continue
		}
		components[name] = "ok"
	}

	status := http.StatusOK
	state := "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}

	writeJSON(w, status, map[string]any{
		"status":     state,
		"components": components,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// PUBLIC READ API
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.deps.Leaderboard == nil {
		writeError(w, http.StatusNotFound, "not_available", "leaderboard is not exposed")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_limit", "limit must be an integer")
			return
		}
		limit = n
	}

	payload, err := s.deps.Leaderboard(r.Context(), limit)
	if err != nil {
		s.logger.Error("leaderboard query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "query_failed", "leaderboard unavailable")
		return
	}

	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	if s.deps.Profile == nil {
		writeError(w, http.StatusNotFound, "not_available", "profiles are not exposed")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "bad_id", "id must be a positive integer")
		return
	}

	payload, err := s.deps.Profile(r.Context(), id)
	if err != nil {
		// Несуществующий участник - штатный случай, не 500.
		writeError(w, http.StatusNotFound, "not_found", "member not found")
		return
	}

	writeJSON(w, http.StatusOK, payload)
}

// handleStatus собирает снимки всех подсистем в один ответ.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	startedAt := s.startedAt
	s.mu.RUnlock()

	payload := map[string]any{
		"uptime": time.Since(startedAt).Round(time.Second).String(),
	}
	if s.deps.BotStats != nil {
		payload["bot"] = s.deps.BotStats()
	}
	if s.deps.BusStats != nil {
		payload["event_bus"] = s.deps.BusStats()
	}
	if s.deps.Jobs != nil {
		payload["jobs"] = s.deps.Jobs()
	}

	writeJSON(w, http.StatusOK, payload)
}

// ══════════════════════════════════════════════════════════════════════════════
// ADMIN API
// ══════════════════════════════════════════════════════════════════════════════

// requireAPIKey сверяет ключ из заголовка с bcrypt-хешами из конфига.
// Хеши вместо открытых ключей: утечка конфига не раздаёт доступ.
func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(s.config.APIKeyHashes) == 0 {
			writeError(w, http.StatusForbidden, "admin_disabled", "no admin keys configured")
			return
		}

		key := r.Header.Get(s.config.APIKeyHeader)
		if key == "" {
			writeError(w, http.StatusUnauthorized, "missing_key", "API key required")
			return
		}

		for _, hash := range s.config.APIKeyHashes {
			if bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil {
				next.ServeHTTP(w, r)
				return
			}
		}

		writeError(w, http.StatusUnauthorized, "invalid_key", "API key not recognized")
	})
}

// handleRunJob запускает фоновую задачу вне расписания.
func (s *Server) handleRunJob(w http.ResponseWriter, r *http.Request) {
	if s.deps.RunJob == nil {
		writeError(w, http.StatusNotFound, "not_available", "job control is not exposed")
		return
	}

	name := r.PathValue("name")
	result, err := s.deps.RunJob(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusBadRequest, "job_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"job":    name,
		"result": result,
	})
}
