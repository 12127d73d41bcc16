package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATIONS
// Embedded as const strings and applied in order; every migration runs
// inside its own transaction.
// ══════════════════════════════════════════════════════════════════════════════

// Migration represents a database migration.
type Migration struct {
	Version   int
	Name      string
	UpSQL     string
	DownSQL   string
	AppliedAt time.Time
	IsApplied bool
}

// Migrator handles database migrations.
type Migrator struct {
	conn       *Connection
	migrations []Migration
	tableName  string
}

// NewMigrator creates a new migrator with embedded migrations.
func NewMigrator(conn *Connection) *Migrator {
	return &Migrator{
		conn:       conn,
		migrations: GetMigrations(),
		tableName:  "schema_migrations",
	}
}

// EnsureMigrationTable creates the migration tracking table if needed.
func (m *Migrator) EnsureMigrationTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`, m.tableName)

	if _, err := m.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// GetAppliedMigrations returns all applied migrations.
func (m *Migrator) GetAppliedMigrations(ctx context.Context) (map[int]time.Time, error) {
	query := fmt.Sprintf("SELECT version, applied_at FROM %s ORDER BY version", m.tableName)

	rows, err := m.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var version int
		var appliedAt time.Time
		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[version] = appliedAt
	}
	return applied, rows.Err()
}

// Migrate applies all pending migrations.
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.EnsureMigrationTable(ctx); err != nil {
		return err
	}

	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}

	for _, mig := range m.migrations {
		if _, isApplied := applied[mig.Version]; isApplied {
			continue
		}
		if mig.UpSQL == "" {
			return fmt.Errorf("%w: missing up SQL for migration %d", ErrMigrationFailed, mig.Version)
		}

		err := m.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.UpSQL); err != nil {
				return fmt.Errorf("failed to execute migration %d: %w", mig.Version, err)
			}
			insertQuery := fmt.Sprintf("INSERT INTO %s (version, name) VALUES ($1, $2)", m.tableName)
			_, err := tx.Exec(ctx, insertQuery, mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return fmt.Errorf("%w: version %d: %v", ErrMigrationFailed, mig.Version, err)
		}
	}
	return nil
}

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{Version: 1, Name: "create_accounts", UpSQL: migration001Up, DownSQL: migration001Down},
		{Version: 2, Name: "create_transactions", UpSQL: migration002Up, DownSQL: migration002Down},
		{Version: 3, Name: "create_spotlight_history", UpSQL: migration003Up, DownSQL: migration003Down},
	}
}

const migration001Up = `
CREATE TABLE IF NOT EXISTS accounts (
	id UUID PRIMARY KEY,
	telegram_id BIGINT NOT NULL UNIQUE,
	username TEXT NOT NULL DEFAULT '',
	first_name TEXT NOT NULL,

	xp INTEGER NOT NULL DEFAULT 0 CHECK (xp >= 0),
	level INTEGER NOT NULL DEFAULT 0,
	prestige INTEGER NOT NULL DEFAULT 0,

	coins INTEGER NOT NULL DEFAULT 0 CHECK (coins >= 0),
	total_earned INTEGER NOT NULL DEFAULT 0,
	total_spent INTEGER NOT NULL DEFAULT 0,

	message_count INTEGER NOT NULL DEFAULT 0,
	reputation INTEGER NOT NULL DEFAULT 0,
	last_activity_at TIMESTAMPTZ,

	daily_streak INTEGER NOT NULL DEFAULT 0,
	last_daily_at TIMESTAMPTZ,

	custom_title TEXT NOT NULL DEFAULT '',
	custom_title_expiry TIMESTAMPTZ,
	vip BOOLEAN NOT NULL DEFAULT FALSE,
	vip_expiry TIMESTAMPTZ,
	boost BOOLEAN NOT NULL DEFAULT FALSE,
	boost_expiry TIMESTAMPTZ,
	spotlight_priority BOOLEAN NOT NULL DEFAULT FALSE,

	achievements JSONB NOT NULL DEFAULT '[]'::jsonb,

	joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_accounts_ranking
	ON accounts (prestige DESC, level DESC, xp DESC);

CREATE INDEX IF NOT EXISTS idx_accounts_title_expiry
	ON accounts (custom_title_expiry) WHERE custom_title <> '';
CREATE INDEX IF NOT EXISTS idx_accounts_vip_expiry
	ON accounts (vip_expiry) WHERE vip;
CREATE INDEX IF NOT EXISTS idx_accounts_boost_expiry
	ON accounts (boost_expiry) WHERE boost;

CREATE INDEX IF NOT EXISTS idx_accounts_last_activity
	ON accounts (last_activity_at DESC);
`

const migration001Down = `
DROP TABLE IF EXISTS accounts;
`

const migration002Up = `
CREATE TABLE IF NOT EXISTS transactions (
	id UUID PRIMARY KEY,
	account_id UUID NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
	telegram_id BIGINT NOT NULL,
	type TEXT NOT NULL,
	amount INTEGER NOT NULL,
	balance_after INTEGER NOT NULL,
	reference TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_transactions_account
	ON transactions (account_id, created_at DESC);
`

const migration002Down = `
DROP TABLE IF EXISTS transactions;
`

const migration003Up = `
CREATE TABLE IF NOT EXISTS spotlight_history (
	id UUID PRIMARY KEY,
	account_id UUID NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
	telegram_id BIGINT NOT NULL,
	chosen_on DATE NOT NULL UNIQUE,
	priority BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

const migration003Down = `
DROP TABLE IF EXISTS spotlight_history;
`
