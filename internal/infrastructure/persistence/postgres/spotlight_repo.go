package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/promohub/levelup-hub/internal/domain/account"
	"github.com/promohub/levelup-hub/internal/domain/social"
)

// SpotlightRepo persists daily spotlight draws.
type SpotlightRepo struct {
	conn *Connection
}

// NewSpotlightRepo creates a new SpotlightRepo.
func NewSpotlightRepo(conn *Connection) *SpotlightRepo {
	return &SpotlightRepo{conn: conn}
}

// Record saves a draw. The UNIQUE constraint on chosen_on rejects a
// second draw for the same day.
func (r *SpotlightRepo) Record(ctx context.Context, pick social.SpotlightPick) error {
	if pick.ID == "" {
		pick.ID = uuid.NewString()
	}

	_, err := r.conn.Exec(ctx, `
		INSERT INTO spotlight_history (id, account_id, telegram_id, chosen_on, priority)
		VALUES ($1, $2, $3, $4, $5)`,
		pick.ID, pick.AccountID, pick.TelegramID.Int64(),
		pick.ChosenOn.UTC().Truncate(24*time.Hour), pick.Priority)
	if err != nil {
		if IsUniqueViolation(err) {
			return social.ErrAlreadyChosen
		}
		return fmt.Errorf("postgres: record spotlight: %w", err)
	}
	return nil
}

// WasChosenOn reports whether a draw already happened that day.
func (r *SpotlightRepo) WasChosenOn(ctx context.Context, day time.Time) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM spotlight_history WHERE chosen_on = $1)`,
		day.UTC().Truncate(24*time.Hour)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("postgres: spotlight lookup: %w", err)
	}
	return exists, nil
}

// LastPicks returns recent draws, newest first.
func (r *SpotlightRepo) LastPicks(ctx context.Context, limit int) ([]social.SpotlightPick, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT id, account_id, telegram_id, chosen_on, priority, created_at
		FROM spotlight_history
		ORDER BY chosen_on DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: spotlight history: %w", err)
	}
	defer rows.Close()

	var out []social.SpotlightPick
	for rows.Next() {
		var pick social.SpotlightPick
		var telegramID int64
		if err := rows.Scan(&pick.ID, &pick.AccountID, &telegramID,
			&pick.ChosenOn, &pick.Priority, &pick.CreatedAt); err != nil {
			return nil, err
		}
		pick.TelegramID = account.TelegramID(telegramID)
		out = append(out, pick)
	}
	return out, rows.Err()
}
