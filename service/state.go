package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"guildkeeper/config"
	"guildkeeper/events"
	"guildkeeper/models"

	log "github.com/sirupsen/logrus"
)

// State is the application context shared by every service and command handler.
//
// In-memory maps are the source of truth. Each mutation runs under one lock from
// validation through persistence, and the store mirrors the result with an upsert.
// Store failures are logged and do not roll back the in-memory change.
type State struct {
	mu      sync.Mutex
	store   Store
	bus     *events.Bus
	clock   Clock
	rng     Random
	economy *config.Economy

	accounts     map[string]*models.Account
	quarantines  map[string]map[string]*models.Quarantine // guild -> user
	mutes        map[string]*models.Mute
	warnings     map[string]int
	afk          map[string]*models.AFK
	categories   []string
	shop         map[string][]*models.ShopItem // category -> items
	salaries     map[string]int64
	triviaScores map[string]int64
}

// Option customises a State
type Option func(*State)

// WithClock replaces the wall clock
func WithClock(clock Clock) Option {
	return func(s *State) { s.clock = clock }
}

// WithRandom replaces the random source
func WithRandom(rng Random) Option {
	return func(s *State) { s.rng = rng }
}

// WithEventBus sets the bus that receives events after each update
func WithEventBus(bus *events.Bus) Option {
	return func(s *State) { s.bus = bus }
}

// NewState creates an empty application state backed by a store
func NewState(store Store, economy *config.Economy, opts ...Option) *State {
	if economy == nil {
		economy = config.DefaultEconomy()
	}
	s := &State{
		store:        store,
		economy:      economy,
		clock:        SystemClock{},
		rng:          NewRandom(),
		bus:          events.NewBus(),
		accounts:     make(map[string]*models.Account),
		quarantines:  make(map[string]map[string]*models.Quarantine),
		mutes:        make(map[string]*models.Mute),
		warnings:     make(map[string]int),
		afk:          make(map[string]*models.AFK),
		shop:         make(map[string][]*models.ShopItem),
		salaries:     make(map[string]int64),
		triviaScores: make(map[string]int64),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, category := range economy.ShopCategories {
		s.addCategoryLocked(category)
	}
	return s
}

// Load reads every domain from the store. A domain that fails to load keeps its
// defaults; the failures are returned joined so the caller can decide to continue.
func (s *State) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	fail := func(domain string, err error) {
		log.WithError(err).WithField("domain", domain).Error("Failed to load persisted state")
		errs = append(errs, fmt.Errorf("failed to load %s: %w", domain, err))
	}

	if accounts, err := s.store.Accounts().LoadAll(ctx); err != nil {
		fail("accounts", err)
	} else {
		for id, account := range accounts {
			if account.OwnedItems == nil {
				account.OwnedItems = make(map[string][]string)
			}
			account.UserID = id
			s.accounts[id] = account
		}
	}

	if quarantines, err := s.store.Quarantines().LoadAll(ctx); err != nil {
		fail("quarantines", err)
	} else {
		for _, q := range quarantines {
			s.putQuarantineLocked(q)
		}
	}

	if mutes, err := s.store.Mutes().LoadAll(ctx); err != nil {
		fail("mutes", err)
	} else {
		s.mutes = mutes
	}

	if warnings, err := s.store.Warnings().LoadAll(ctx); err != nil {
		fail("warnings", err)
	} else {
		s.warnings = warnings
	}

	if afk, err := s.store.AFK().LoadAll(ctx); err != nil {
		fail("afk", err)
	} else {
		s.afk = afk
	}

	if items, err := s.store.Shop().LoadAll(ctx); err != nil {
		fail("shop", err)
	} else {
		for _, item := range items {
			s.addCategoryLocked(item.Category)
			s.shop[item.Category] = append(s.shop[item.Category], item)
		}
	}

	if salaries, err := s.store.Salaries().LoadAll(ctx); err != nil {
		fail("salaries", err)
	} else {
		s.salaries = salaries
	}

	if scores, err := s.store.TriviaScores().LoadAll(ctx); err != nil {
		fail("trivia scores", err)
	} else {
		s.triviaScores = scores
	}

	s.seedDefaultsLocked(ctx)

	log.WithFields(log.Fields{
		"accounts":    len(s.accounts),
		"quarantines": s.quarantineCountLocked(),
		"mutes":       len(s.mutes),
		"shopItems":   s.shopItemCountLocked(),
	}).Info("State loaded")

	return errors.Join(errs...)
}

// seedDefaultsLocked fills empty salary and shop tables from the economy settings
func (s *State) seedDefaultsLocked(ctx context.Context) {
	if len(s.salaries) == 0 {
		for role, amount := range s.economy.DefaultSalaries {
			s.salaries[role] = amount
			s.logStoreError(s.store.Salaries().Upsert(ctx, role, amount), "salary", log.Fields{"role": role})
		}
	}
	if _, ok := s.salaries[DefaultSalaryKey]; !ok {
		amount := s.economy.DefaultSalaries[DefaultSalaryKey]
		s.salaries[DefaultSalaryKey] = amount
		s.logStoreError(s.store.Salaries().Upsert(ctx, DefaultSalaryKey, amount), "salary", log.Fields{"role": DefaultSalaryKey})
	}

	if s.shopItemCountLocked() == 0 {
		for _, seed := range s.economy.ShopSeed {
			item := &models.ShopItem{
				Category:    strings.ToLower(seed.Category),
				Name:        seed.Name,
				Price:       seed.Price,
				Description: seed.Description,
				Emoji:       seed.Emoji,
			}
			if item.Emoji == "" {
				item.Emoji = models.DefaultItemEmoji
			}
			s.addCategoryLocked(item.Category)
			s.shop[item.Category] = append(s.shop[item.Category], item)
			s.logStoreError(s.store.Shop().Upsert(ctx, item), "shop item", log.Fields{"item": item.Name})
		}
	}
}

// Now returns the state's current time
func (s *State) Now() time.Time {
	return s.clock.Now()
}

// Clock returns the state's clock
func (s *State) Clock() Clock {
	return s.clock
}

// Economy returns the economy settings
func (s *State) Economy() *config.Economy {
	return s.economy
}

// EventBus returns the bus that receives events after each update
func (s *State) EventBus() *events.Bus {
	return s.bus
}

// Store returns the persistence backend
func (s *State) Store() Store {
	return s.store
}

// update runs fn under the state lock. Events published by fn are emitted only if it succeeds.
func (s *State) update(ctx context.Context, fn func(tx EventPublisher) error) error {
	s.mu.Lock()
	tx := events.NewTransactionalBus(s.bus)
	err := fn(tx)
	s.mu.Unlock()

	if err != nil {
		tx.Discard()
		return err
	}
	tx.Flush(ctx)
	return nil
}

// view runs fn under the state lock without publishing events
func (s *State) view(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// accountLocked returns the ledger entry of a user, creating an empty one in memory
func (s *State) accountLocked(userID string) *models.Account {
	account, ok := s.accounts[userID]
	if !ok {
		account = models.NewAccount(userID)
		s.accounts[userID] = account
	}
	return account
}

// saveAccountLocked mirrors one ledger entry to the store
func (s *State) saveAccountLocked(ctx context.Context, account *models.Account) {
	err := s.store.Accounts().Upsert(ctx, account.Clone())
	s.logStoreError(err, "account", log.Fields{"user_id": account.UserID})
}

// saveAccountsLocked mirrors several ledger entries to the store in one write
func (s *State) saveAccountsLocked(ctx context.Context, accounts []*models.Account) {
	if len(accounts) == 0 {
		return
	}
	snapshot := make([]*models.Account, len(accounts))
	for i, account := range accounts {
		snapshot[i] = account.Clone()
	}
	err := s.store.Accounts().UpsertMany(ctx, snapshot)
	s.logStoreError(err, "accounts", log.Fields{"count": len(accounts)})
}

func (s *State) logStoreError(err error, what string, fields log.Fields) {
	if err == nil {
		return
	}
	log.WithError(err).WithFields(fields).Errorf("Failed to persist %s", what)
}

func (s *State) putQuarantineLocked(q *models.Quarantine) {
	byUser, ok := s.quarantines[q.GuildID]
	if !ok {
		byUser = make(map[string]*models.Quarantine)
		s.quarantines[q.GuildID] = byUser
	}
	byUser[q.UserID] = q
}

func (s *State) quarantineCountLocked() int {
	n := 0
	for _, byUser := range s.quarantines {
		n += len(byUser)
	}
	return n
}

func (s *State) addCategoryLocked(category string) {
	category = strings.ToLower(category)
	for _, existing := range s.categories {
		if existing == category {
			return
		}
	}
	s.categories = append(s.categories, category)
	if _, ok := s.shop[category]; !ok {
		s.shop[category] = nil
	}
}

func (s *State) shopItemCountLocked() int {
	n := 0
	for _, items := range s.shop {
		n += len(items)
	}
	return n
}
