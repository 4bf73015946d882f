package models

import (
	"time"
)

// MaxBusinessLevel is the highest level a business can be upgraded to
const MaxBusinessLevel = 10

// Business is the single business a user may own
type Business struct {
	Name            string     `json:"name"`
	Type            string     `json:"type"`
	Emoji           string     `json:"emoji"`
	Investment      int64      `json:"investment"`
	ProfitRate      float64    `json:"profit_rate"`
	Level           int        `json:"level"`
	TotalProfit     int64      `json:"total_profit"`
	CreatedAt       time.Time  `json:"created_at"`
	LastCollectedAt *time.Time `json:"last_collected_at,omitempty"`
}

// DailyProfit is the amount a business yields per 24h period
func (b *Business) DailyProfit() int64 {
	return int64(float64(b.Investment) * b.ProfitRate)
}

// Collectable reports whether a full period has passed since the last payout.
// A business that has never paid out is collectable straight away.
func (b *Business) Collectable(now time.Time, period time.Duration) bool {
	return b.LastCollectedAt == nil || !now.Before(b.LastCollectedAt.Add(period))
}

// Clone returns a copy of the business
func (b *Business) Clone() *Business {
	if b == nil {
		return nil
	}
	c := *b
	c.LastCollectedAt = cloneTime(b.LastCollectedAt)
	return &c
}
