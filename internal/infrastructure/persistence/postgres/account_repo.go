package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/promohub/levelup-hub/internal/domain/account"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACCOUNT REPOSITORY
// Durable implementation of account.Ledger and account.TransactionLog.
//
// Mutate takes the account's row lock (SELECT ... FOR UPDATE), so for
// any single account at most one mutation is in flight; everyone else
// queues on the lock. Journal entries are inserted in the same
// transaction as the account update.
// ══════════════════════════════════════════════════════════════════════════════

const accountColumns = `
	id, telegram_id, username, first_name,
	xp, level, prestige,
	coins, total_earned, total_spent,
	message_count, reputation, last_activity_at,
	daily_streak, last_daily_at,
	custom_title, custom_title_expiry,
	vip, vip_expiry, boost, boost_expiry, spotlight_priority,
	achievements, joined_at, created_at, updated_at`

// AccountRepo is the PostgreSQL ledger.
type AccountRepo struct {
	conn *Connection

	// startingCoins seeds newly created accounts.
	startingCoins account.Coins
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(conn *Connection, startingCoins account.Coins) *AccountRepo {
	return &AccountRepo{conn: conn, startingCoins: startingCoins}
}

// GetByID returns a snapshot by internal id.
func (r *AccountRepo) GetByID(ctx context.Context, id string) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.scanOne(r.conn.QueryRow(ctx, query, id))
}

// GetByTelegramID returns a snapshot by Telegram id.
func (r *AccountRepo) GetByTelegramID(ctx context.Context, telegramID account.TelegramID) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE telegram_id = $1`
	return r.scanOne(r.conn.QueryRow(ctx, query, telegramID.Int64()))
}

// GetOrCreate returns the account, creating it on first contact.
// Creation is race-safe: ON CONFLICT DO NOTHING followed by a re-read.
func (r *AccountRepo) GetOrCreate(ctx context.Context, telegramID account.TelegramID, username, firstName string) (*account.Account, error) {
	acc, err := r.GetByTelegramID(ctx, telegramID)
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, account.ErrAccountNotFound) {
		return nil, err
	}

	fresh, err := account.NewAccount(account.NewAccountParams{
		ID:            uuid.NewString(),
		TelegramID:    telegramID,
		Username:      username,
		FirstName:     firstName,
		StartingCoins: r.startingCoins,
	})
	if err != nil {
		return nil, err
	}

	if err := r.insert(ctx, r.conn.Pool(), fresh); err != nil {
		return nil, err
	}
	// Re-read: a concurrent creator may have won the conflict.
	return r.GetByTelegramID(ctx, telegramID)
}

// Mutate runs fn under the account's row lock and persists the result
// together with the journal in one transaction.
func (r *AccountRepo) Mutate(ctx context.Context, telegramID account.TelegramID, username, firstName string, fn account.MutateFn) (*account.Account, error) {
	var result *account.Account

	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		acc, err := r.lockForUpdate(ctx, tx, telegramID)
		if errors.Is(err, account.ErrAccountNotFound) {
			acc, err = r.createLocked(ctx, tx, telegramID, username, firstName)
		}
		if err != nil {
			return err
		}

		journal := &account.Journal{}
		if err := fn(acc, journal); err != nil {
			return err
		}

		if err := r.update(ctx, tx, acc); err != nil {
			return err
		}
		if err := r.appendEntries(ctx, tx, acc, journal.Entries()); err != nil {
			return err
		}

		result = acc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *AccountRepo) lockForUpdate(ctx context.Context, tx pgx.Tx, telegramID account.TelegramID) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE telegram_id = $1 FOR UPDATE`
	return r.scanOne(tx.QueryRow(ctx, query, telegramID.Int64()))
}

// createLocked inserts the account inside the mutation transaction and
// re-locks the surviving row, whichever transaction created it.
func (r *AccountRepo) createLocked(ctx context.Context, tx pgx.Tx, telegramID account.TelegramID, username, firstName string) (*account.Account, error) {
	fresh, err := account.NewAccount(account.NewAccountParams{
		ID:            uuid.NewString(),
		TelegramID:    telegramID,
		Username:      username,
		FirstName:     firstName,
		StartingCoins: r.startingCoins,
	})
	if err != nil {
		return nil, err
	}

	if err := r.insert(ctx, tx, fresh); err != nil {
		return nil, err
	}
	return r.lockForUpdate(ctx, tx, telegramID)
}

// GetAll returns accounts with pagination.
func (r *AccountRepo) GetAll(ctx context.Context, opts account.ListOptions) ([]*account.Account, error) {
	order := "ASC"
	if opts.SortDesc {
		order = "DESC"
	}
	sortBy := "xp"
	switch opts.SortBy {
	case "xp", "level", "coins", "message_count", "reputation", "joined_at":
		sortBy = opts.SortBy
	}

	query := fmt.Sprintf(`SELECT %s FROM accounts ORDER BY %s %s LIMIT $1 OFFSET $2`,
		accountColumns, sortBy, order)

	rows, err := r.conn.Query(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list accounts: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// GetTop returns the ranking: prestige desc, then level, then XP.
func (r *AccountRepo) GetTop(ctx context.Context, limit int) ([]*account.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM accounts
		ORDER BY prestige DESC, level DESC, xp DESC
		LIMIT $1`

	rows, err := r.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: top accounts: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// Count returns the number of accounts.
func (r *AccountRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("postgres: count accounts: %w", err)
	}
	return count, nil
}

// FindExpiredGrants returns ids with at least one expired grant.
// The partial indexes on the expiry columns keep this cheap.
func (r *AccountRepo) FindExpiredGrants(ctx context.Context, now time.Time, limit int) ([]account.TelegramID, error) {
	query := `SELECT telegram_id FROM accounts
		WHERE (custom_title <> '' AND custom_title_expiry <= $1)
		   OR (vip AND vip_expiry <= $1)
		   OR (boost AND boost_expiry <= $1)
		LIMIT $2`

	rows, err := r.conn.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: find expired grants: %w", err)
	}
	defer rows.Close()

	var ids []account.TelegramID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, account.TelegramID(id))
	}
	return ids, rows.Err()
}

// FindActiveSince returns accounts with activity after since.
func (r *AccountRepo) FindActiveSince(ctx context.Context, since time.Time, limit int) ([]*account.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM accounts
		WHERE last_activity_at > $1
		ORDER BY last_activity_at DESC
		LIMIT $2`

	rows, err := r.conn.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: find active accounts: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// ══════════════════════════════════════════════════════════════════════════════
// TRANSACTION LOG
// ══════════════════════════════════════════════════════════════════════════════

// Append adds a journal entry outside of a mutation.
func (r *AccountRepo) Append(ctx context.Context, tx account.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	_, err := r.conn.Exec(ctx, `
		INSERT INTO transactions (id, account_id, telegram_id, type, amount, balance_after, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		tx.ID, tx.AccountID, tx.TelegramID.Int64(), string(tx.Type),
		tx.Amount, tx.BalanceAfter, tx.Reference, tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: append transaction: %w", err)
	}
	return nil
}

// ListByAccount returns the newest entries first.
func (r *AccountRepo) ListByAccount(ctx context.Context, accountID string, limit int) ([]account.Transaction, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT id, account_id, telegram_id, type, amount, balance_after, reference, created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list transactions: %w", err)
	}
	defer rows.Close()

	var out []account.Transaction
	for rows.Next() {
		var tx account.Transaction
		var telegramID int64
		var typ string
		if err := rows.Scan(&tx.ID, &tx.AccountID, &telegramID, &typ,
			&tx.Amount, &tx.BalanceAfter, &tx.Reference, &tx.CreatedAt); err != nil {
			return nil, err
		}
		tx.TelegramID = account.TelegramID(telegramID)
		tx.Type = account.TransactionType(typ)
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (r *AccountRepo) appendEntries(ctx context.Context, tx pgx.Tx, acc *account.Account, entries []account.Transaction) error {
	now := time.Now().UTC()
	for _, entry := range entries {
		_, err := tx.Exec(ctx, `
			INSERT INTO transactions (id, account_id, telegram_id, type, amount, balance_after, reference, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.NewString(), acc.ID, acc.TelegramID.Int64(), string(entry.Type),
			entry.Amount, entry.BalanceAfter, entry.Reference, now)
		if err != nil {
			return fmt.Errorf("postgres: journal entry: %w", err)
		}
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ROW MAPPING
// ══════════════════════════════════════════════════════════════════════════════

func (r *AccountRepo) insert(ctx context.Context, q Querier, acc *account.Account) error {
	achievements, err := json.Marshal(acc.Achievements)
	if err != nil {
		return fmt.Errorf("postgres: marshal achievements: %w", err)
	}

	_, err = q.Exec(ctx, `
		INSERT INTO accounts (
			id, telegram_id, username, first_name,
			xp, level, prestige,
			coins, total_earned, total_spent,
			message_count, reputation, last_activity_at,
			daily_streak, last_daily_at,
			custom_title, custom_title_expiry,
			vip, vip_expiry, boost, boost_expiry, spotlight_priority,
			achievements, joined_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26
		) ON CONFLICT (telegram_id) DO NOTHING`,
		acc.ID, acc.TelegramID.Int64(), acc.Username, acc.FirstName,
		acc.XP, acc.Level, acc.Prestige,
		int(acc.Coins), acc.TotalEarned, acc.TotalSpent,
		acc.MessageCount, acc.Reputation, nullableTime(acc.LastActivityAt),
		acc.DailyStreak, acc.LastDailyAt,
		acc.CustomTitle, acc.CustomTitleExpiry,
		acc.VIP, acc.VIPExpiry, acc.Boost, acc.BoostExpiry, acc.SpotlightPriority,
		achievements, acc.JoinedAt, acc.CreatedAt, acc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: insert account: %w", err)
	}
	return nil
}

func (r *AccountRepo) update(ctx context.Context, tx pgx.Tx, acc *account.Account) error {
	achievements, err := json.Marshal(acc.Achievements)
	if err != nil {
		return fmt.Errorf("postgres: marshal achievements: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE accounts SET
			username = $2, first_name = $3,
			xp = $4, level = $5, prestige = $6,
			coins = $7, total_earned = $8, total_spent = $9,
			message_count = $10, reputation = $11, last_activity_at = $12,
			daily_streak = $13, last_daily_at = $14,
			custom_title = $15, custom_title_expiry = $16,
			vip = $17, vip_expiry = $18, boost = $19, boost_expiry = $20,
			spotlight_priority = $21,
			achievements = $22, updated_at = $23
		WHERE id = $1`,
		acc.ID, acc.Username, acc.FirstName,
		acc.XP, acc.Level, acc.Prestige,
		int(acc.Coins), acc.TotalEarned, acc.TotalSpent,
		acc.MessageCount, acc.Reputation, nullableTime(acc.LastActivityAt),
		acc.DailyStreak, acc.LastDailyAt,
		acc.CustomTitle, acc.CustomTitleExpiry,
		acc.VIP, acc.VIPExpiry, acc.Boost, acc.BoostExpiry,
		acc.SpotlightPriority,
		achievements, acc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return account.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepo) scanOne(row pgx.Row) (*account.Account, error) {
	var (
		acc            account.Account
		telegramID     int64
		coins          int
		lastActivityAt *time.Time
		achievements   []byte
	)

	err := row.Scan(
		&acc.ID, &telegramID, &acc.Username, &acc.FirstName,
		&acc.XP, &acc.Level, &acc.Prestige,
		&coins, &acc.TotalEarned, &acc.TotalSpent,
		&acc.MessageCount, &acc.Reputation, &lastActivityAt,
		&acc.DailyStreak, &acc.LastDailyAt,
		&acc.CustomTitle, &acc.CustomTitleExpiry,
		&acc.VIP, &acc.VIPExpiry, &acc.Boost, &acc.BoostExpiry, &acc.SpotlightPriority,
		&achievements, &acc.JoinedAt, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound
		}
		return nil, fmt.Errorf("postgres: scan account: %w", err)
	}

	acc.TelegramID = account.TelegramID(telegramID)
	acc.Coins = account.Coins(coins)
	if lastActivityAt != nil {
		acc.LastActivityAt = *lastActivityAt
	}
	if err := json.Unmarshal(achievements, &acc.Achievements); err != nil {
		return nil, fmt.Errorf("postgres: unmarshal achievements: %w", err)
	}
	return &acc, nil
}

func (r *AccountRepo) scanMany(rows pgx.Rows) ([]*account.Account, error) {
	var out []*account.Account
	for rows.Next() {
		acc, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, acc)
	}
	return out, rows.Err()
}

// nullableTime maps the zero time to NULL.
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
