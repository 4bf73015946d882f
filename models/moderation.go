package models

import (
	"time"
)

// Mute is an active timed mute
type Mute struct {
	UserID   string    `json:"user_id" db:"user_id"`
	GuildID  string    `json:"guild_id" db:"guild_id"`
	UnmuteAt time.Time `json:"unmute_at" db:"unmute_at"`
	Reason   string    `json:"reason" db:"reason"`
}

// Expired reports whether the mute should have been lifted by now
func (m *Mute) Expired(now time.Time) bool {
	return !now.Before(m.UnmuteAt)
}

// AFK marks a user as away
type AFK struct {
	UserID string    `json:"user_id" db:"user_id"`
	Reason string    `json:"reason" db:"reason"`
	Since  time.Time `json:"since" db:"since"`
}

// Quarantine confines a user to a single channel of a guild
type Quarantine struct {
	GuildID       string    `json:"guild_id" db:"guild_id"`
	UserID        string    `json:"user_id" db:"user_id"`
	ChannelID     string    `json:"channel_id" db:"channel_id"`
	Reason        string    `json:"reason" db:"reason"`
	QuarantinedBy string    `json:"quarantined_by" db:"quarantined_by"`
	QuarantinedAt time.Time `json:"quarantined_at" db:"quarantined_at"`
}
