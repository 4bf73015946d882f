// Package jsonfile persists state as flat JSON documents in a data directory,
// one document per domain.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"guildkeeper/models"
	"guildkeeper/service"
)

// Document file names
const (
	EconomyFile    = "economy_data.json"
	BotDataFile    = "bot_data.json"
	QuarantineFile = "quarantine_data.json"
	ShopFile       = "shop_items.json"
	SalariesFile   = "role_salaries.json"
	ScoresFile     = "country_scores.json"
	TaskRunsFile   = "task_runs.json"
)

type economyDoc struct {
	Wallets    map[string]int64               `json:"wallets"`
	Banks      map[string]int64               `json:"banks"`
	LastDaily  map[string]timestamp           `json:"last_daily"`
	LastWork   map[string]timestamp           `json:"last_work"`
	OwnedItems map[string]map[string][]string `json:"owned_items"`
	Businesses map[string]*businessEntry      `json:"businesses"`
}

// businessEntry keeps the stored business layout, where last_profit is the last collection
type businessEntry struct {
	Name        string     `json:"name"`
	Type        string     `json:"type"`
	Emoji       string     `json:"emoji"`
	Investment  int64      `json:"investment"`
	ProfitRate  float64    `json:"profit_rate"`
	Level       int        `json:"level"`
	TotalProfit int64      `json:"total_profit"`
	CreatedAt   timestamp  `json:"created_at"`
	LastProfit  *timestamp `json:"last_profit"`
}

func toBusinessEntry(b *models.Business) *businessEntry {
	e := &businessEntry{
		Name:        b.Name,
		Type:        b.Type,
		Emoji:       b.Emoji,
		Investment:  b.Investment,
		ProfitRate:  b.ProfitRate,
		Level:       b.Level,
		TotalProfit: b.TotalProfit,
		CreatedAt:   timestamp(b.CreatedAt),
	}
	if b.LastCollectedAt != nil {
		t := timestamp(*b.LastCollectedAt)
		e.LastProfit = &t
	}
	return e
}

func (e *businessEntry) business() *models.Business {
	b := &models.Business{
		Name:        e.Name,
		Type:        e.Type,
		Emoji:       e.Emoji,
		Investment:  e.Investment,
		ProfitRate:  e.ProfitRate,
		Level:       e.Level,
		TotalProfit: e.TotalProfit,
		CreatedAt:   time.Time(e.CreatedAt),
	}
	if b.Level < 1 {
		b.Level = 1
	}
	if e.LastProfit != nil {
		b.LastCollectedAt = e.LastProfit.ptr()
	}
	return b
}

func newEconomyDoc() *economyDoc {
	return &economyDoc{
		Wallets:    make(map[string]int64),
		Banks:      make(map[string]int64),
		LastDaily:  make(map[string]timestamp),
		LastWork:   make(map[string]timestamp),
		OwnedItems: make(map[string]map[string][]string),
		Businesses: make(map[string]*businessEntry),
	}
}

// ensure replaces maps that decoded as null
func (d *economyDoc) ensure() {
	fresh := newEconomyDoc()
	if d.Wallets == nil {
		d.Wallets = fresh.Wallets
	}
	if d.Banks == nil {
		d.Banks = fresh.Banks
	}
	if d.LastDaily == nil {
		d.LastDaily = fresh.LastDaily
	}
	if d.LastWork == nil {
		d.LastWork = fresh.LastWork
	}
	if d.OwnedItems == nil {
		d.OwnedItems = fresh.OwnedItems
	}
	if d.Businesses == nil {
		d.Businesses = fresh.Businesses
	}
}

type afkEntry struct {
	Reason string    `json:"reason"`
	Time   timestamp `json:"time"`
}

type muteEntry struct {
	UnmuteAt timestamp `json:"unmute_time"`
	Reason   string    `json:"reason"`
	GuildID  string    `json:"guild_id"`
}

type botDoc struct {
	AFKUsers   map[string]afkEntry  `json:"afk_users"`
	Warnings   map[string]int       `json:"warnings"`
	MutedUsers map[string]muteEntry `json:"muted_users"`
}

func newBotDoc() *botDoc {
	return &botDoc{
		AFKUsers:   make(map[string]afkEntry),
		Warnings:   make(map[string]int),
		MutedUsers: make(map[string]muteEntry),
	}
}

type quarantineEntry struct {
	ChannelID     string    `json:"channel_id"`
	Reason        string    `json:"reason"`
	QuarantinedBy string    `json:"quarantined_by"`
	QuarantinedAt timestamp `json:"quarantined_at"`
}

type quarantineDoc struct {
	Users    map[string]map[string]quarantineEntry `json:"quarantined_users"`
	Channels map[string]map[string]string          `json:"quarantine_channels"`
}

func newQuarantineDoc() *quarantineDoc {
	return &quarantineDoc{
		Users:    make(map[string]map[string]quarantineEntry),
		Channels: make(map[string]map[string]string),
	}
}

// shopDoc maps category to items. Categories that fail to decode are skipped.
type shopDoc map[string][]*models.ShopItem

func (d *shopDoc) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(shopDoc, len(raw))
	for category, items := range raw {
		var list []*models.ShopItem
		if err := json.Unmarshal(items, &list); err != nil {
			out[category] = nil
			continue
		}
		for _, item := range list {
			item.Category = category
		}
		out[category] = list
	}
	*d = out
	return nil
}

type taskRunsDoc struct {
	NextID int64             `json:"next_id"`
	Runs   []*models.TaskRun `json:"runs"`
}

type int64Map map[string]int64

// Store is a service.Store writing JSON documents into a directory
type Store struct {
	dir        string
	economy    *document[economyDoc]
	bot        *document[botDoc]
	quarantine *document[quarantineDoc]
	shop       *document[shopDoc]
	salaries   *document[int64Map]
	scores     *document[int64Map]
	runs       *document[taskRunsDoc]
}

// NewStore creates a store in dir, creating the directory if needed
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	newMap := func() *int64Map { m := make(int64Map); return &m }
	return &Store{
		dir:        dir,
		economy:    newDocument(dir, EconomyFile, newEconomyDoc),
		bot:        newDocument(dir, BotDataFile, newBotDoc),
		quarantine: newDocument(dir, QuarantineFile, newQuarantineDoc),
		shop:       newDocument(dir, ShopFile, func() *shopDoc { d := make(shopDoc); return &d }),
		salaries:   newDocument(dir, SalariesFile, newMap),
		scores:     newDocument(dir, ScoresFile, newMap),
		runs:       newDocument(dir, TaskRunsFile, func() *taskRunsDoc { return &taskRunsDoc{} }),
	}, nil
}

// Dir returns the data directory
func (s *Store) Dir() string { return s.dir }

func (s *Store) Accounts() service.AccountRepository { return accountRepo{s.economy} }
func (s *Store) Quarantines() service.QuarantineRepository { return quarantineRepo{s.quarantine} }
func (s *Store) Mutes() service.MuteRepository { return muteRepo{s.bot} }
func (s *Store) Warnings() service.WarningRepository { return warningRepo{s.bot} }
func (s *Store) AFK() service.AFKRepository { return afkRepo{s.bot} }
func (s *Store) Shop() service.ShopRepository { return shopRepo{s.shop} }
func (s *Store) Salaries() service.SalaryRepository { return salaryRepo{s.salaries} }
func (s *Store) TriviaScores() service.TriviaScoreRepository { return scoreRepo{s.scores} }
func (s *Store) TaskRuns() service.TaskRunRepository { return taskRunRepo{s.runs} }

// Close is a no-op; every write is flushed immediately
func (s *Store) Close() error { return nil }

type accountRepo struct{ doc *document[economyDoc] }

func (r accountRepo) LoadAll(ctx context.Context) (map[string]*models.Account, error) {
	accounts := make(map[string]*models.Account)
	r.doc.read(func(d *economyDoc) {
		get := func(id string) *models.Account {
			if a, ok := accounts[id]; ok {
				return a
			}
			a := models.NewAccount(id)
			accounts[id] = a
			return a
		}
		for id, v := range d.Wallets {
			get(id).Wallet = v
		}
		for id, v := range d.Banks {
			get(id).Bank = v
		}
		for id, v := range d.LastDaily {
			get(id).LastDaily = v.ptr()
		}
		for id, v := range d.LastWork {
			get(id).LastWork = v.ptr()
		}
		for id, items := range d.OwnedItems {
			a := get(id)
			for category, names := range items {
				a.OwnedItems[category] = append([]string(nil), names...)
			}
		}
		for id, e := range d.Businesses {
			if e != nil {
				get(id).Business = e.business()
			}
		}
	})
	return accounts, nil
}

func putAccount(d *economyDoc, a *models.Account) {
	d.ensure()
	d.Wallets[a.UserID] = a.Wallet
	d.Banks[a.UserID] = a.Bank
	if a.LastDaily != nil {
		d.LastDaily[a.UserID] = timestamp(*a.LastDaily)
	} else {
		delete(d.LastDaily, a.UserID)
	}
	if a.LastWork != nil {
		d.LastWork[a.UserID] = timestamp(*a.LastWork)
	} else {
		delete(d.LastWork, a.UserID)
	}
	if len(a.OwnedItems) > 0 {
		d.OwnedItems[a.UserID] = a.Clone().OwnedItems
	} else {
		delete(d.OwnedItems, a.UserID)
	}
	if a.Business != nil {
		d.Businesses[a.UserID] = toBusinessEntry(a.Business)
	} else {
		delete(d.Businesses, a.UserID)
	}
}

func (r accountRepo) Upsert(ctx context.Context, account *models.Account) error {
	return r.doc.write(func(d *economyDoc) { putAccount(d, account) })
}

func (r accountRepo) UpsertMany(ctx context.Context, accounts []*models.Account) error {
	return r.doc.write(func(d *economyDoc) {
		for _, account := range accounts {
			putAccount(d, account)
		}
	})
}

type quarantineRepo struct{ doc *document[quarantineDoc] }

func (r quarantineRepo) LoadAll(ctx context.Context) ([]*models.Quarantine, error) {
	var out []*models.Quarantine
	r.doc.read(func(d *quarantineDoc) {
		for guildID, users := range d.Users {
			for userID, e := range users {
				out = append(out, &models.Quarantine{
					GuildID:       guildID,
					UserID:        userID,
					ChannelID:     e.ChannelID,
					Reason:        e.Reason,
					QuarantinedBy: e.QuarantinedBy,
					QuarantinedAt: *e.QuarantinedAt.ptr(),
				})
			}
		}
	})
	return out, nil
}

func (r quarantineRepo) Upsert(ctx context.Context, q *models.Quarantine) error {
	return r.doc.write(func(d *quarantineDoc) {
		if d.Users[q.GuildID] == nil {
			d.Users[q.GuildID] = make(map[string]quarantineEntry)
		}
		if d.Channels[q.GuildID] == nil {
			d.Channels[q.GuildID] = make(map[string]string)
		}
		d.Users[q.GuildID][q.UserID] = quarantineEntry{
			ChannelID:     q.ChannelID,
			Reason:        q.Reason,
			QuarantinedBy: q.QuarantinedBy,
			QuarantinedAt: timestamp(q.QuarantinedAt),
		}
		d.Channels[q.GuildID][q.ChannelID] = q.UserID
	})
}

func (r quarantineRepo) Delete(ctx context.Context, guildID, userID string) error {
	return r.doc.write(func(d *quarantineDoc) {
		if e, ok := d.Users[guildID][userID]; ok {
			delete(d.Channels[guildID], e.ChannelID)
		}
		delete(d.Users[guildID], userID)
		if len(d.Users[guildID]) == 0 {
			delete(d.Users, guildID)
		}
		if len(d.Channels[guildID]) == 0 {
			delete(d.Channels, guildID)
		}
	})
}

type muteRepo struct{ doc *document[botDoc] }

func (r muteRepo) LoadAll(ctx context.Context) (map[string]*models.Mute, error) {
	out := make(map[string]*models.Mute)
	r.doc.read(func(d *botDoc) {
		for userID, e := range d.MutedUsers {
			out[userID] = &models.Mute{
				UserID:   userID,
				GuildID:  e.GuildID,
				UnmuteAt: *e.UnmuteAt.ptr(),
				Reason:   e.Reason,
			}
		}
	})
	return out, nil
}

func (r muteRepo) Upsert(ctx context.Context, m *models.Mute) error {
	return r.doc.write(func(d *botDoc) {
		d.MutedUsers[m.UserID] = muteEntry{UnmuteAt: timestamp(m.UnmuteAt), Reason: m.Reason, GuildID: m.GuildID}
	})
}

func (r muteRepo) Delete(ctx context.Context, userID string) error {
	return r.doc.write(func(d *botDoc) { delete(d.MutedUsers, userID) })
}

type warningRepo struct{ doc *document[botDoc] }

func (r warningRepo) LoadAll(ctx context.Context) (map[string]int, error) {
	out := make(map[string]int)
	r.doc.read(func(d *botDoc) {
		for userID, count := range d.Warnings {
			out[userID] = count
		}
	})
	return out, nil
}

func (r warningRepo) Upsert(ctx context.Context, userID string, count int) error {
	return r.doc.write(func(d *botDoc) { d.Warnings[userID] = count })
}

type afkRepo struct{ doc *document[botDoc] }

func (r afkRepo) LoadAll(ctx context.Context) (map[string]*models.AFK, error) {
	out := make(map[string]*models.AFK)
	r.doc.read(func(d *botDoc) {
		for userID, e := range d.AFKUsers {
			out[userID] = &models.AFK{UserID: userID, Reason: e.Reason, Since: *e.Time.ptr()}
		}
	})
	return out, nil
}

func (r afkRepo) Upsert(ctx context.Context, a *models.AFK) error {
	return r.doc.write(func(d *botDoc) {
		d.AFKUsers[a.UserID] = afkEntry{Reason: a.Reason, Time: timestamp(a.Since)}
	})
}

func (r afkRepo) Delete(ctx context.Context, userID string) error {
	return r.doc.write(func(d *botDoc) { delete(d.AFKUsers, userID) })
}

type shopRepo struct{ doc *document[shopDoc] }

func (r shopRepo) LoadAll(ctx context.Context) ([]*models.ShopItem, error) {
	var out []*models.ShopItem
	r.doc.read(func(d *shopDoc) {
		categories := make([]string, 0, len(*d))
		for category := range *d {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		for _, category := range categories {
			for _, item := range (*d)[category] {
				copied := *item
				if copied.Emoji == "" {
					copied.Emoji = models.DefaultItemEmoji
				}
				out = append(out, &copied)
			}
		}
	})
	return out, nil
}

func (r shopRepo) Upsert(ctx context.Context, item *models.ShopItem) error {
	return r.doc.write(func(d *shopDoc) {
		copied := *item
		items := (*d)[item.Category]
		for i, existing := range items {
			if strings.EqualFold(existing.Name, item.Name) {
				items[i] = &copied
				return
			}
		}
		(*d)[item.Category] = append(items, &copied)
	})
}

type salaryRepo struct{ doc *document[int64Map] }

func (r salaryRepo) LoadAll(ctx context.Context) (map[string]int64, error) {
	return copyInt64Map(r.doc), nil
}

func (r salaryRepo) Upsert(ctx context.Context, role string, amount int64) error {
	return r.doc.write(func(m *int64Map) { (*m)[role] = amount })
}

type scoreRepo struct{ doc *document[int64Map] }

func (r scoreRepo) LoadAll(ctx context.Context) (map[string]int64, error) {
	return copyInt64Map(r.doc), nil
}

func (r scoreRepo) Upsert(ctx context.Context, userID string, score int64) error {
	return r.doc.write(func(m *int64Map) { (*m)[userID] = score })
}

func copyInt64Map(doc *document[int64Map]) map[string]int64 {
	out := make(map[string]int64)
	doc.read(func(m *int64Map) {
		for k, v := range *m {
			out[k] = v
		}
	})
	return out
}

type taskRunRepo struct{ doc *document[taskRunsDoc] }

func (r taskRunRepo) GetLatest(ctx context.Context, taskName string) (*models.TaskRun, error) {
	var latest *models.TaskRun
	r.doc.read(func(d *taskRunsDoc) {
		for _, run := range d.Runs {
			if run.TaskName == taskName && (latest == nil || run.Slot.After(latest.Slot)) {
				copied := *run
				latest = &copied
			}
		}
	})
	return latest, nil
}

func (r taskRunRepo) Create(ctx context.Context, run *models.TaskRun) error {
	var exists bool
	err := r.doc.write(func(d *taskRunsDoc) {
		for _, existing := range d.Runs {
			if existing.TaskName == run.TaskName && existing.Slot.Equal(run.Slot) {
				exists = true
				return
			}
		}
		d.NextID++
		run.ID = d.NextID
		copied := *run
		d.Runs = append(d.Runs, &copied)
	})
	if exists {
		return service.ErrTaskRunExists
	}
	return err
}

func (r taskRunRepo) Complete(ctx context.Context, run *models.TaskRun) error {
	return r.doc.write(func(d *taskRunsDoc) {
		for i, existing := range d.Runs {
			if existing.ID == run.ID {
				copied := *run
				d.Runs[i] = &copied
				return
			}
		}
	})
}
