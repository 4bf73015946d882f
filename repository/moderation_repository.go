package repository

import (
	"context"
	"fmt"

	"guildkeeper/database"
	"guildkeeper/models"
)

// MuteRepository implements the MuteRepository interface
type MuteRepository struct {
	q queryable
}

// NewMuteRepository creates a new mute repository
func NewMuteRepository(db *database.DB) *MuteRepository {
	return &MuteRepository{q: db.Pool}
}

// LoadAll returns every active mute keyed by user id
func (r *MuteRepository) LoadAll(ctx context.Context) (map[string]*models.Mute, error) {
	rows, err := r.q.Query(ctx, `SELECT user_id, guild_id, unmute_at, reason FROM mutes`)
	if err != nil {
		return nil, fmt.Errorf("failed to query mutes: %w", err)
	}
	defer rows.Close()

	mutes := make(map[string]*models.Mute)
	for rows.Next() {
		var m models.Mute
		if err := rows.Scan(&m.UserID, &m.GuildID, &m.UnmuteAt, &m.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan mute: %w", err)
		}
		mutes[m.UserID] = &m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mutes: %w", err)
	}
	return mutes, nil
}

// Upsert inserts or replaces the mute of a user
func (r *MuteRepository) Upsert(ctx context.Context, m *models.Mute) error {
	query := `
		INSERT INTO mutes (user_id, guild_id, unmute_at, reason)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			guild_id = EXCLUDED.guild_id,
			unmute_at = EXCLUDED.unmute_at,
			reason = EXCLUDED.reason
	`

	if _, err := r.q.Exec(ctx, query, m.UserID, m.GuildID, m.UnmuteAt, m.Reason); err != nil {
		return fmt.Errorf("failed to upsert mute of %s: %w", m.UserID, err)
	}
	return nil
}

// Delete removes the mute of a user
func (r *MuteRepository) Delete(ctx context.Context, userID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM mutes WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete mute of %s: %w", userID, err)
	}
	return nil
}

// WarningRepository implements the WarningRepository interface
type WarningRepository struct {
	q queryable
}

// NewWarningRepository creates a new warning repository
func NewWarningRepository(db *database.DB) *WarningRepository {
	return &WarningRepository{q: db.Pool}
}

// LoadAll returns the warning count of every warned user
func (r *WarningRepository) LoadAll(ctx context.Context) (map[string]int, error) {
	rows, err := r.q.Query(ctx, `SELECT user_id, count FROM warnings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query warnings: %w", err)
	}
	defer rows.Close()

	warnings := make(map[string]int)
	for rows.Next() {
		var userID string
		var count int
		if err := rows.Scan(&userID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan warning: %w", err)
		}
		warnings[userID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating warnings: %w", err)
	}
	return warnings, nil
}

// Upsert stores the warning count of a user
func (r *WarningRepository) Upsert(ctx context.Context, userID string, count int) error {
	query := `
		INSERT INTO warnings (user_id, count) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET count = EXCLUDED.count
	`

	if _, err := r.q.Exec(ctx, query, userID, count); err != nil {
		return fmt.Errorf("failed to upsert warnings of %s: %w", userID, err)
	}
	return nil
}

// AFKRepository implements the AFKRepository interface
type AFKRepository struct {
	q queryable
}

// NewAFKRepository creates a new AFK repository
func NewAFKRepository(db *database.DB) *AFKRepository {
	return &AFKRepository{q: db.Pool}
}

// LoadAll returns every AFK status keyed by user id
func (r *AFKRepository) LoadAll(ctx context.Context) (map[string]*models.AFK, error) {
	rows, err := r.q.Query(ctx, `SELECT user_id, reason, since FROM afk_users`)
	if err != nil {
		return nil, fmt.Errorf("failed to query afk users: %w", err)
	}
	defer rows.Close()

	afk := make(map[string]*models.AFK)
	for rows.Next() {
		var a models.AFK
		if err := rows.Scan(&a.UserID, &a.Reason, &a.Since); err != nil {
			return nil, fmt.Errorf("failed to scan afk user: %w", err)
		}
		afk[a.UserID] = &a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating afk users: %w", err)
	}
	return afk, nil
}

// Upsert inserts or replaces the AFK status of a user
func (r *AFKRepository) Upsert(ctx context.Context, a *models.AFK) error {
	query := `
		INSERT INTO afk_users (user_id, reason, since) VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET reason = EXCLUDED.reason, since = EXCLUDED.since
	`

	if _, err := r.q.Exec(ctx, query, a.UserID, a.Reason, a.Since); err != nil {
		return fmt.Errorf("failed to upsert afk status of %s: %w", a.UserID, err)
	}
	return nil
}

// Delete clears the AFK status of a user
func (r *AFKRepository) Delete(ctx context.Context, userID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM afk_users WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete afk status of %s: %w", userID, err)
	}
	return nil
}
