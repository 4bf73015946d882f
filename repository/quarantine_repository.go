package repository

import (
	"context"
	"fmt"

	"guildkeeper/database"
	"guildkeeper/models"
)

// QuarantineRepository implements the QuarantineRepository interface
type QuarantineRepository struct {
	q queryable
}

// NewQuarantineRepository creates a new quarantine repository
func NewQuarantineRepository(db *database.DB) *QuarantineRepository {
	return &QuarantineRepository{q: db.Pool}
}

// LoadAll returns every active quarantine
func (r *QuarantineRepository) LoadAll(ctx context.Context) ([]*models.Quarantine, error) {
	query := `
		SELECT guild_id, user_id, channel_id, reason, quarantined_by, quarantined_at
		FROM quarantines
		ORDER BY quarantined_at
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query quarantines: %w", err)
	}
	defer rows.Close()

	var quarantines []*models.Quarantine
	for rows.Next() {
		var q models.Quarantine
		err := rows.Scan(
			&q.GuildID,
			&q.UserID,
			&q.ChannelID,
			&q.Reason,
			&q.QuarantinedBy,
			&q.QuarantinedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quarantine: %w", err)
		}
		quarantines = append(quarantines, &q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quarantines: %w", err)
	}

	return quarantines, nil
}

// Upsert inserts or replaces the quarantine of a (guild, user) pair
func (r *QuarantineRepository) Upsert(ctx context.Context, q *models.Quarantine) error {
	query := `
		INSERT INTO quarantines (guild_id, user_id, channel_id, reason, quarantined_by, quarantined_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (guild_id, user_id) DO UPDATE SET
			channel_id = EXCLUDED.channel_id,
			reason = EXCLUDED.reason,
			quarantined_by = EXCLUDED.quarantined_by,
			quarantined_at = EXCLUDED.quarantined_at
	`

	_, err := r.q.Exec(ctx, query, q.GuildID, q.UserID, q.ChannelID, q.Reason, q.QuarantinedBy, q.QuarantinedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert quarantine of %s in guild %s: %w", q.UserID, q.GuildID, err)
	}
	return nil
}

// Delete removes the quarantine of a (guild, user) pair
func (r *QuarantineRepository) Delete(ctx context.Context, guildID, userID string) error {
	query := `DELETE FROM quarantines WHERE guild_id = $1 AND user_id = $2`

	if _, err := r.q.Exec(ctx, query, guildID, userID); err != nil {
		return fmt.Errorf("failed to delete quarantine of %s in guild %s: %w", userID, guildID, err)
	}
	return nil
}
