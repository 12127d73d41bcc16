// Package jobs contains implementations of scheduled jobs for LevelUp Hub.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/promohub/levelup-hub/internal/domain/account"
)

// ══════════════════════════════════════════════════════════════════════════════
// REBUILD LEADERBOARD JOB
// ══════════════════════════════════════════════════════════════════════════════

// RebuildLeaderboardJob reads the current ranking from the ledger and
// pushes it into the Redis cache. /top then answers from the cache and
// rank lookups stay O(log N) even in busy chats.
type RebuildLeaderboardJob struct {
	ledger account.Ledger
	cache  account.LeaderboardCache
	logger *slog.Logger
	config RebuildLeaderboardConfig

	lastStats atomic.Value // *RebuildStats
}

// RebuildLeaderboardConfig contains configuration for the rebuild job.
type RebuildLeaderboardConfig struct {
	// TopLimit is how many accounts the cache holds.
	TopLimit int

	// Timeout bounds a single rebuild run.
	Timeout time.Duration
}

// DefaultRebuildLeaderboardConfig returns sensible defaults.
func DefaultRebuildLeaderboardConfig() RebuildLeaderboardConfig {
	return RebuildLeaderboardConfig{
		TopLimit: 100,
		Timeout:  time.Minute,
	}
}

// RebuildStats contains statistics from a rebuild run.
type RebuildStats struct {
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	Entries     int
}

// NewRebuildLeaderboardJob creates a new rebuild leaderboard job.
func NewRebuildLeaderboardJob(
	ledger account.Ledger,
	cache account.LeaderboardCache,
	logger *slog.Logger,
	config RebuildLeaderboardConfig,
) *RebuildLeaderboardJob {
	if logger == nil {
		logger = slog.Default()
	}
	if config.TopLimit <= 0 {
		config.TopLimit = 100
	}
	if config.Timeout <= 0 {
		config.Timeout = time.Minute
	}

	return &RebuildLeaderboardJob{
		ledger: ledger,
		cache:  cache,
		logger: logger,
		config: config,
	}
}

// Name returns the job name.
func (j *RebuildLeaderboardJob) Name() string {
	return "rebuild_leaderboard"
}

// Description returns a human-readable description.
func (j *RebuildLeaderboardJob) Description() string {
	return "Rebuilds the cached leaderboard ranking from the account ledger"
}

// Run executes the rebuild job.
func (j *RebuildLeaderboardJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	startedAt := time.Now()

	accounts, err := j.ledger.GetTop(ctx, j.config.TopLimit)
	if err != nil {
		return fmt.Errorf("load top accounts: %w", err)
	}

	now := time.Now()
	entries := make([]account.RankedEntry, 0, len(accounts))
	for i, acc := range accounts {
		entries = append(entries, account.RankedEntry{
			TelegramID:  acc.TelegramID,
			DisplayName: acc.DisplayName(now),
			Prestige:    acc.Prestige,
			Level:       acc.Level,
			XP:          acc.XP,
			Rank:        i + 1,
		})
	}

	if err := j.cache.Rebuild(ctx, entries); err != nil {
		return fmt.Errorf("rebuild cache: %w", err)
	}

	completedAt := time.Now()
	stats := &RebuildStats{
		StartedAt:   startedAt,
		CompletedAt: completedAt,
		Duration:    completedAt.Sub(startedAt),
		Entries:     len(entries),
	}
	j.lastStats.Store(stats)

	j.logger.Info("leaderboard rebuilt",
		"entries", stats.Entries,
		"duration", stats.Duration,
	)
	return nil
}

// LastStats returns statistics from the most recent run, nil if never ran.
func (j *RebuildLeaderboardJob) LastStats() *RebuildStats {
	stats, _ := j.lastStats.Load().(*RebuildStats)
	return stats
}
