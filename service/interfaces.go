package service

import (
	"context"
	"time"

	"guildkeeper/events"
	"guildkeeper/models"
)

// AccountRepository defines the interface for ledger persistence
type AccountRepository interface {
	// LoadAll returns every persisted ledger entry keyed by user id
	LoadAll(ctx context.Context) (map[string]*models.Account, error)

	// Upsert inserts or replaces the ledger entry of one user
	Upsert(ctx context.Context, account *models.Account) error

	// UpsertMany writes several ledger entries in one atomic step
	UpsertMany(ctx context.Context, accounts []*models.Account) error
}

// QuarantineRepository defines the interface for quarantine persistence
type QuarantineRepository interface {
	// LoadAll returns every active quarantine
	LoadAll(ctx context.Context) ([]*models.Quarantine, error)

	// Upsert inserts or replaces the quarantine of a (guild, user) pair
	Upsert(ctx context.Context, quarantine *models.Quarantine) error

	// Delete removes the quarantine of a (guild, user) pair
	Delete(ctx context.Context, guildID, userID string) error
}

// MuteRepository defines the interface for timed mute persistence
type MuteRepository interface {
	// LoadAll returns every active mute keyed by user id
	LoadAll(ctx context.Context) (map[string]*models.Mute, error)

	// Upsert inserts or replaces the mute of a user
	Upsert(ctx context.Context, mute *models.Mute) error

	// Delete removes the mute of a user
	Delete(ctx context.Context, userID string) error
}

// WarningRepository defines the interface for warning counters
type WarningRepository interface {
	// LoadAll returns the warning count of every warned user
	LoadAll(ctx context.Context) (map[string]int, error)

	// Upsert stores the warning count of a user
	Upsert(ctx context.Context, userID string, count int) error
}

// AFKRepository defines the interface for AFK status persistence
type AFKRepository interface {
	LoadAll(ctx context.Context) (map[string]*models.AFK, error)
	Upsert(ctx context.Context, afk *models.AFK) error
	Delete(ctx context.Context, userID string) error
}

// ShopRepository defines the interface for the shop catalogue
type ShopRepository interface {
	// LoadAll returns every catalogue item in insertion order
	LoadAll(ctx context.Context) ([]*models.ShopItem, error)

	// Upsert inserts or replaces an item identified by category and name
	Upsert(ctx context.Context, item *models.ShopItem) error
}

// SalaryRepository defines the interface for role salaries
type SalaryRepository interface {
	LoadAll(ctx context.Context) (map[string]int64, error)
	Upsert(ctx context.Context, role string, amount int64) error
}

// TriviaScoreRepository defines the interface for trivia leaderboard scores
type TriviaScoreRepository interface {
	LoadAll(ctx context.Context) (map[string]int64, error)
	Upsert(ctx context.Context, userID string, score int64) error
}

// TaskRunRepository defines the interface for scheduled task history
type TaskRunRepository interface {
	// GetLatest returns the run with the most recent slot for a task, or nil
	GetLatest(ctx context.Context, taskName string) (*models.TaskRun, error)

	// Create claims a slot for a task; returns ErrTaskRunExists if the slot was already claimed
	Create(ctx context.Context, run *models.TaskRun) error

	// Complete stores the outcome of a claimed run
	Complete(ctx context.Context, run *models.TaskRun) error
}

// Store bundles the repositories of one persistence backend
type Store interface {
	Accounts() AccountRepository
	Quarantines() QuarantineRepository
	Mutes() MuteRepository
	Warnings() WarningRepository
	AFK() AFKRepository
	Shop() ShopRepository
	Salaries() SalaryRepository
	TriviaScores() TriviaScoreRepository
	TaskRuns() TaskRunRepository

	// Close releases the backend's resources
	Close() error
}

// EventPublisher defines the interface for publishing events raised by a state update
type EventPublisher interface {
	Publish(event events.Event)
}

// Clock abstracts time so cooldowns and game timers can be tested
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending AfterFunc call
type Timer interface {
	Stop() bool
}

// Random abstracts the random source used by games and rewards
type Random interface {
	Float64() float64
	Intn(n int) int
}
