// Package memory keeps persisted state in process memory. It backs the bot when
// the configured store is unreachable and serves as the store in service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"guildkeeper/models"
	"guildkeeper/service"
)

// Store is an in-memory service.Store
type Store struct {
	mu          sync.Mutex
	accounts    map[string]*models.Account
	quarantines map[string]*models.Quarantine
	mutes       map[string]*models.Mute
	warnings    map[string]int
	afk         map[string]*models.AFK
	shop        []*models.ShopItem
	salaries    map[string]int64
	scores      map[string]int64
	runs        []*models.TaskRun
	nextRunID   int64
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		accounts:    make(map[string]*models.Account),
		quarantines: make(map[string]*models.Quarantine),
		mutes:       make(map[string]*models.Mute),
		warnings:    make(map[string]int),
		afk:         make(map[string]*models.AFK),
		salaries:    make(map[string]int64),
		scores:      make(map[string]int64),
	}
}

func (s *Store) Accounts() service.AccountRepository { return accountRepo{s} }
func (s *Store) Quarantines() service.QuarantineRepository { return quarantineRepo{s} }
func (s *Store) Mutes() service.MuteRepository { return muteRepo{s} }
func (s *Store) Warnings() service.WarningRepository { return warningRepo{s} }
func (s *Store) AFK() service.AFKRepository { return afkRepo{s} }
func (s *Store) Shop() service.ShopRepository { return shopRepo{s} }
func (s *Store) Salaries() service.SalaryRepository { return salaryRepo{s} }
func (s *Store) TriviaScores() service.TriviaScoreRepository { return scoreRepo{s} }
func (s *Store) TaskRuns() service.TaskRunRepository { return taskRunRepo{s} }
func (s *Store) Close() error { return nil }

func quarantineKey(guildID, userID string) string {
	return guildID + "/" + userID
}

type accountRepo struct{ s *Store }

func (r accountRepo) LoadAll(ctx context.Context) (map[string]*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[string]*models.Account, len(r.s.accounts))
	for id, account := range r.s.accounts {
		out[id] = account.Clone()
	}
	return out, nil
}

func (r accountRepo) Upsert(ctx context.Context, account *models.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.accounts[account.UserID] = account.Clone()
	return nil
}

func (r accountRepo) UpsertMany(ctx context.Context, accounts []*models.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, account := range accounts {
		r.s.accounts[account.UserID] = account.Clone()
	}
	return nil
}

type quarantineRepo struct{ s *Store }

func (r quarantineRepo) LoadAll(ctx context.Context) ([]*models.Quarantine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Quarantine, 0, len(r.s.quarantines))
	for _, q := range r.s.quarantines {
		copied := *q
		out = append(out, &copied)
	}
	return out, nil
}

func (r quarantineRepo) Upsert(ctx context.Context, q *models.Quarantine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copied := *q
	r.s.quarantines[quarantineKey(q.GuildID, q.UserID)] = &copied
	return nil
}

func (r quarantineRepo) Delete(ctx context.Context, guildID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.quarantines, quarantineKey(guildID, userID))
	return nil
}

type muteRepo struct{ s *Store }

func (r muteRepo) LoadAll(ctx context.Context) (map[string]*models.Mute, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[string]*models.Mute, len(r.s.mutes))
	for id, m := range r.s.mutes {
		copied := *m
		out[id] = &copied
	}
	return out, nil
}

func (r muteRepo) Upsert(ctx context.Context, m *models.Mute) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copied := *m
	r.s.mutes[m.UserID] = &copied
	return nil
}

func (r muteRepo) Delete(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.mutes, userID)
	return nil
}

type warningRepo struct{ s *Store }

func (r warningRepo) LoadAll(ctx context.Context) (map[string]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[string]int, len(r.s.warnings))
	for id, count := range r.s.warnings {
		out[id] = count
	}
	return out, nil
}

func (r warningRepo) Upsert(ctx context.Context, userID string, count int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.warnings[userID] = count
	return nil
}

type afkRepo struct{ s *Store }

func (r afkRepo) LoadAll(ctx context.Context) (map[string]*models.AFK, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[string]*models.AFK, len(r.s.afk))
	for id, a := range r.s.afk {
		copied := *a
		out[id] = &copied
	}
	return out, nil
}

func (r afkRepo) Upsert(ctx context.Context, a *models.AFK) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copied := *a
	r.s.afk[a.UserID] = &copied
	return nil
}

func (r afkRepo) Delete(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.afk, userID)
	return nil
}

type shopRepo struct{ s *Store }

func (r shopRepo) LoadAll(ctx context.Context) ([]*models.ShopItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.ShopItem, len(r.s.shop))
	for i, item := range r.s.shop {
		copied := *item
		out[i] = &copied
	}
	return out, nil
}

func (r shopRepo) Upsert(ctx context.Context, item *models.ShopItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copied := *item
	for i, existing := range r.s.shop {
		if existing.Category == item.Category && strings.EqualFold(existing.Name, item.Name) {
			r.s.shop[i] = &copied
			return nil
		}
	}
	r.s.shop = append(r.s.shop, &copied)
	return nil
}

type salaryRepo struct{ s *Store }

func (r salaryRepo) LoadAll(ctx context.Context) (map[string]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[string]int64, len(r.s.salaries))
	for role, amount := range r.s.salaries {
		out[role] = amount
	}
	return out, nil
}

func (r salaryRepo) Upsert(ctx context.Context, role string, amount int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.salaries[role] = amount
	return nil
}

type scoreRepo struct{ s *Store }

func (r scoreRepo) LoadAll(ctx context.Context) (map[string]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[string]int64, len(r.s.scores))
	for id, score := range r.s.scores {
		out[id] = score
	}
	return out, nil
}

func (r scoreRepo) Upsert(ctx context.Context, userID string, score int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.scores[userID] = score
	return nil
}

type taskRunRepo struct{ s *Store }

func (r taskRunRepo) GetLatest(ctx context.Context, taskName string) (*models.TaskRun, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *models.TaskRun
	for _, run := range r.s.runs {
		if run.TaskName == taskName && (latest == nil || run.Slot.After(latest.Slot)) {
			latest = run
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (r taskRunRepo) Create(ctx context.Context, run *models.TaskRun) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.runs {
		if existing.TaskName == run.TaskName && existing.Slot.Equal(run.Slot) {
			return service.ErrTaskRunExists
		}
	}
	r.s.nextRunID++
	run.ID = r.s.nextRunID
	copied := *run
	r.s.runs = append(r.s.runs, &copied)
	return nil
}

func (r taskRunRepo) Complete(ctx context.Context, run *models.TaskRun) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, existing := range r.s.runs {
		if existing.ID == run.ID {
			copied := *run
			r.s.runs[i] = &copied
			return nil
		}
	}
	return nil
}

// Runs returns the recorded runs of a task ordered by slot, for tests and diagnostics
func (s *Store) Runs(taskName string) []models.TaskRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.TaskRun
	for _, run := range s.runs {
		if run.TaskName == taskName {
			out = append(out, *run)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot.Before(out[j].Slot) })
	return out
}
