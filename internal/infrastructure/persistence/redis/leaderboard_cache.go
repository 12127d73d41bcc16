// ═══════════════════════════════════════════════════════════════════════════
// leaderboard_cache.go - Кэш рейтинга на Redis Sorted Set.
//
// Архитектура:
//   - ZSET leaderboard:ranking - member = telegram_id, score = составной
//     ранг (престиж, уровень, опыт). Позиция читается за O(log N) через
//     ZREVRANK, без пересчёта всего рейтинга.
//   - HASH leaderboard:entries - member = telegram_id, value = JSON строки
//     рейтинга. Хранит то, что ZSET выразить не может (имя, точные цифры).
//
// Rebuild переписывает обе структуры в одном TxPipeline, так что читатели
// никогда не видят рейтинг наполовину.
// ═══════════════════════════════════════════════════════════════════════════

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/promohub/levelup-hub/internal/domain/account"
)

const (
	rankingKey = "leaderboard:ranking"
	entriesKey = "leaderboard:entries"

	// leaderboardTTL страхует от устаревших данных, если воркер
	// с пересборкой рейтинга умер. Пересборка идёт чаще.
	leaderboardTTL = 15 * time.Minute
)

// Составной score упаковывает порядок сортировки в одно число:
// престиж важнее уровня, уровень важнее опыта. float64 хранит целые
// до 2^53 без потерь, диапазонов хватает с запасом.
const (
	scorePrestigeWeight = 1e12
	scoreLevelWeight    = 1e6
)

func compositeScore(e account.RankedEntry) float64 {
	return float64(e.Prestige)*scorePrestigeWeight +
		float64(e.Level)*scoreLevelWeight +
		float64(e.XP)
}

// LeaderboardCache реализует account.LeaderboardCache поверх Redis.
type LeaderboardCache struct {
	cache *Cache
}

// NewLeaderboardCache создаёт кэш рейтинга.
func NewLeaderboardCache(cache *Cache) *LeaderboardCache {
	return &LeaderboardCache{cache: cache}
}

var _ account.LeaderboardCache = (*LeaderboardCache)(nil)

// Rebuild атомарно заменяет содержимое рейтинга.
func (l *LeaderboardCache) Rebuild(ctx context.Context, entries []account.RankedEntry) error {
	members := make([]redis.Z, 0, len(entries))
	rows := make([]interface{}, 0, len(entries)*2)

	for _, e := range entries {
		member := strconv.FormatInt(e.TelegramID.Int64(), 10)
		members = append(members, redis.Z{
			Score:  compositeScore(e),
			Member: member,
		})
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("leaderboard: marshal entry %s: %w", member, err)
		}
		rows = append(rows, member, data)
	}

	pipe := l.cache.Client().TxPipeline()
	pipe.Del(ctx, rankingKey, entriesKey)
	if len(members) > 0 {
		pipe.ZAdd(ctx, rankingKey, members...)
		pipe.HSet(ctx, entriesKey, rows...)
		pipe.Expire(ctx, rankingKey, leaderboardTTL)
		pipe.Expire(ctx, entriesKey, leaderboardTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("leaderboard: rebuild: %w", err)
	}
	return nil
}

// Top возвращает первые limit строк рейтинга.
// ErrCacheMiss означает пустой или истёкший кэш, вызывающий идёт в Ledger.
func (l *LeaderboardCache) Top(ctx context.Context, limit int) ([]account.RankedEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	members, err := l.cache.Client().ZRevRange(ctx, rankingKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard: top: %w", err)
	}
	if len(members) == 0 {
		return nil, ErrCacheMiss
	}

	raw, err := l.cache.Client().HMGet(ctx, entriesKey, members...).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard: entries: %w", err)
	}

	entries := make([]account.RankedEntry, 0, len(members))
	for i, v := range raw {
		s, ok := v.(string)
		if !ok {
			// ZSET и HASH разошлись, кэш считается битым.
			return nil, ErrCacheMiss
		}
		var e account.RankedEntry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			return nil, fmt.Errorf("leaderboard: unmarshal entry %s: %w", members[i], err)
		}
		e.Rank = i + 1
		entries = append(entries, e)
	}
	return entries, nil
}

// Rank возвращает позицию аккаунта (1-based), 0 - аккаунта в рейтинге нет.
func (l *LeaderboardCache) Rank(ctx context.Context, telegramID account.TelegramID) (int, error) {
	member := strconv.FormatInt(telegramID.Int64(), 10)
	pos, err := l.cache.Client().ZRevRank(ctx, rankingKey, member).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("leaderboard: rank %s: %w", member, err)
	}
	return int(pos) + 1, nil
}

// Invalidate сбрасывает кеш.
func (l *LeaderboardCache) Invalidate(ctx context.Context) error {
	return l.cache.Delete(ctx, rankingKey, entriesKey)
}
