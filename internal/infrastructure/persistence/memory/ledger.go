// Package memory contains the ephemeral ledger backend.
//
// It exists as an explicit fallback selected at construction time when
// the durable backend is not configured. Selection is a one-time, logged
// decision; the system never switches backends silently at runtime.
// All state is lost on restart.
package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/promohub/levelup-hub/internal/domain/account"
)

// stripes bounds the number of per-identity mutation locks.
const stripes = 64

// Ledger is the in-memory account.Ledger and account.TransactionLog
// implementation.
type Ledger struct {
	log *slog.Logger

	// mu protects the maps; locks serialise mutations per identity.
	mu       sync.RWMutex
	accounts map[account.TelegramID]*account.Account
	byID     map[string]account.TelegramID
	txs      map[string][]account.Transaction

	locks [stripes]sync.Mutex

	startingCoins account.Coins
}

// NewLedger creates an empty ephemeral ledger.
func NewLedger(log *slog.Logger, startingCoins account.Coins) *Ledger {
	if log == nil {
		log = slog.Default()
	}
	log.Warn("using ephemeral in-memory ledger, all state is lost on restart")

	return &Ledger{
		log:           log,
		accounts:      make(map[account.TelegramID]*account.Account),
		byID:          make(map[string]account.TelegramID),
		txs:           make(map[string][]account.Transaction),
		startingCoins: startingCoins,
	}
}

func (l *Ledger) stripe(id account.TelegramID) *sync.Mutex {
	return &l.locks[uint64(id)%stripes]
}

// GetByID returns a snapshot by internal id.
func (l *Ledger) GetByID(_ context.Context, id string) (*account.Account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	tid, ok := l.byID[id]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	return l.accounts[tid].Clone(), nil
}

// GetByTelegramID returns a snapshot by Telegram id.
func (l *Ledger) GetByTelegramID(_ context.Context, telegramID account.TelegramID) (*account.Account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	acc, ok := l.accounts[telegramID]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	return acc.Clone(), nil
}

// GetOrCreate returns the account, creating it on first contact.
func (l *Ledger) GetOrCreate(ctx context.Context, telegramID account.TelegramID, username, firstName string) (*account.Account, error) {
	lock := l.stripe(telegramID)
	lock.Lock()
	defer lock.Unlock()

	return l.getOrCreateLocked(telegramID, username, firstName)
}

func (l *Ledger) getOrCreateLocked(telegramID account.TelegramID, username, firstName string) (*account.Account, error) {
	l.mu.RLock()
	acc, ok := l.accounts[telegramID]
	l.mu.RUnlock()
	if ok {
		return acc.Clone(), nil
	}

	acc, err := account.NewAccount(account.NewAccountParams{
		ID:            uuid.NewString(),
		TelegramID:    telegramID,
		Username:      username,
		FirstName:     firstName,
		StartingCoins: l.startingCoins,
	})
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.accounts[telegramID] = acc
	l.byID[acc.ID] = telegramID
	l.mu.Unlock()

	l.log.Info("account created", "telegram_id", telegramID.Int64(), "account_id", acc.ID)
	return acc.Clone(), nil
}

// Mutate runs fn against a private copy under the identity's stripe
// lock and installs the copy only when fn succeeds, so a failed
// mutation leaves no trace.
func (l *Ledger) Mutate(ctx context.Context, telegramID account.TelegramID, username, firstName string, fn account.MutateFn) (*account.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lock := l.stripe(telegramID)
	lock.Lock()
	defer lock.Unlock()

	snapshot, err := l.getOrCreateLocked(telegramID, username, firstName)
	if err != nil {
		return nil, err
	}

	journal := &account.Journal{}
	if err := fn(snapshot, journal); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	l.mu.Lock()
	l.accounts[telegramID] = snapshot
	for _, entry := range journal.Entries() {
		entry.ID = uuid.NewString()
		entry.AccountID = snapshot.ID
		entry.TelegramID = telegramID
		entry.CreatedAt = now
		l.txs[snapshot.ID] = append(l.txs[snapshot.ID], entry)
	}
	l.mu.Unlock()

	return snapshot.Clone(), nil
}

// GetAll returns accounts with pagination. SortBy honors the same
// column whitelist as the SQL backend; unknown fields fall back to XP.
func (l *Ledger) GetAll(_ context.Context, opts account.ListOptions) ([]*account.Account, error) {
	all := l.snapshotAll()

	less := sortLess(opts.SortBy)
	sort.Slice(all, func(i, j int) bool {
		if opts.SortDesc {
			i, j = j, i
		}
		return less(all[i], all[j])
	})

	if opts.Offset >= len(all) {
		return nil, nil
	}
	all = all[opts.Offset:]
	if opts.Limit > 0 && len(all) > opts.Limit {
		all = all[:opts.Limit]
	}
	return all, nil
}

// GetTop returns the ranking: prestige desc, then level, then XP.
func (l *Ledger) GetTop(_ context.Context, limit int) ([]*account.Account, error) {
	all := l.snapshotAll()

	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Prestige != b.Prestige {
			return a.Prestige > b.Prestige
		}
		if a.Level != b.Level {
			return a.Level > b.Level
		}
		return a.XP > b.XP
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func sortLess(field string) func(a, b *account.Account) bool {
	switch field {
	case "level":
		return func(a, b *account.Account) bool { return a.Level < b.Level }
	case "coins":
		return func(a, b *account.Account) bool { return a.Coins < b.Coins }
	case "message_count":
		return func(a, b *account.Account) bool { return a.MessageCount < b.MessageCount }
	case "reputation":
		return func(a, b *account.Account) bool { return a.Reputation < b.Reputation }
	case "joined_at":
		return func(a, b *account.Account) bool { return a.JoinedAt.Before(b.JoinedAt) }
	default:
		return func(a, b *account.Account) bool { return a.XP < b.XP }
	}
}

// Count returns the number of accounts.
func (l *Ledger) Count(_ context.Context) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.accounts), nil
}

// FindExpiredGrants scans for accounts with anything to sweep.
func (l *Ledger) FindExpiredGrants(_ context.Context, now time.Time, limit int) ([]account.TelegramID, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var ids []account.TelegramID
	for tid, acc := range l.accounts {
		if acc.HasExpiredGrants(now) {
			ids = append(ids, tid)
			if limit > 0 && len(ids) >= limit {
				break
			}
		}
	}
	return ids, nil
}

// FindActiveSince returns accounts with activity after since.
func (l *Ledger) FindActiveSince(_ context.Context, since time.Time, limit int) ([]*account.Account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []*account.Account
	for _, acc := range l.accounts {
		if acc.LastActivityAt.After(since) {
			out = append(out, acc.Clone())
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// Append adds a journal entry outside of a mutation.
func (l *Ledger) Append(_ context.Context, tx account.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	l.txs[tx.AccountID] = append(l.txs[tx.AccountID], tx)
	return nil
}

// ListByAccount returns the newest entries first.
func (l *Ledger) ListByAccount(_ context.Context, accountID string, limit int) ([]account.Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := l.txs[accountID]
	out := make([]account.Transaction, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (l *Ledger) snapshotAll() []*account.Account {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*account.Account, 0, len(l.accounts))
	for _, acc := range l.accounts {
		out = append(out, acc.Clone())
	}
	return out
}
