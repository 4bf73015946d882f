package service

import (
	"context"

	"guildkeeper/models"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) LoadAll(ctx context.Context) (map[string]*models.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Upsert(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpsertMany(ctx context.Context, accounts []*models.Account) error {
	args := m.Called(ctx, accounts)
	return args.Error(0)
}

// MockQuarantineRepository is a mock implementation of QuarantineRepository
type MockQuarantineRepository struct {
	mock.Mock
}

func (m *MockQuarantineRepository) LoadAll(ctx context.Context) ([]*models.Quarantine, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Quarantine), args.Error(1)
}

func (m *MockQuarantineRepository) Upsert(ctx context.Context, quarantine *models.Quarantine) error {
	args := m.Called(ctx, quarantine)
	return args.Error(0)
}

func (m *MockQuarantineRepository) Delete(ctx context.Context, guildID, userID string) error {
	args := m.Called(ctx, guildID, userID)
	return args.Error(0)
}

// MockMuteRepository is a mock implementation of MuteRepository
type MockMuteRepository struct {
	mock.Mock
}

func (m *MockMuteRepository) LoadAll(ctx context.Context) (map[string]*models.Mute, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*models.Mute), args.Error(1)
}

func (m *MockMuteRepository) Upsert(ctx context.Context, mute *models.Mute) error {
	args := m.Called(ctx, mute)
	return args.Error(0)
}

func (m *MockMuteRepository) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockWarningRepository is a mock implementation of WarningRepository
type MockWarningRepository struct {
	mock.Mock
}

func (m *MockWarningRepository) LoadAll(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockWarningRepository) Upsert(ctx context.Context, userID string, count int) error {
	args := m.Called(ctx, userID, count)
	return args.Error(0)
}

// MockAFKRepository is a mock implementation of AFKRepository
type MockAFKRepository struct {
	mock.Mock
}

func (m *MockAFKRepository) LoadAll(ctx context.Context) (map[string]*models.AFK, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*models.AFK), args.Error(1)
}

func (m *MockAFKRepository) Upsert(ctx context.Context, afk *models.AFK) error {
	args := m.Called(ctx, afk)
	return args.Error(0)
}

func (m *MockAFKRepository) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockShopRepository is a mock implementation of ShopRepository
type MockShopRepository struct {
	mock.Mock
}

func (m *MockShopRepository) LoadAll(ctx context.Context) ([]*models.ShopItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ShopItem), args.Error(1)
}

func (m *MockShopRepository) Upsert(ctx context.Context, item *models.ShopItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// MockInt64Repository mocks the role salary and trivia score repositories
type MockInt64Repository struct {
	mock.Mock
}

func (m *MockInt64Repository) LoadAll(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockInt64Repository) Upsert(ctx context.Context, key string, value int64) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// MockTaskRunRepository is a mock implementation of TaskRunRepository
type MockTaskRunRepository struct {
	mock.Mock
}

func (m *MockTaskRunRepository) GetLatest(ctx context.Context, taskName string) (*models.TaskRun, error) {
	args := m.Called(ctx, taskName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TaskRun), args.Error(1)
}

func (m *MockTaskRunRepository) Create(ctx context.Context, run *models.TaskRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockTaskRunRepository) Complete(ctx context.Context, run *models.TaskRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

// MockStore bundles one mock per repository
type MockStore struct {
	AccountRepo    *MockAccountRepository
	QuarantineRepo *MockQuarantineRepository
	MuteRepo       *MockMuteRepository
	WarningRepo    *MockWarningRepository
	AFKRepo        *MockAFKRepository
	ShopRepo       *MockShopRepository
	SalaryRepo     *MockInt64Repository
	ScoreRepo      *MockInt64Repository
	TaskRunRepo    *MockTaskRunRepository
}

// NewMockStore creates a store of fresh mocks
func NewMockStore() *MockStore {
	return &MockStore{
		AccountRepo:    new(MockAccountRepository),
		QuarantineRepo: new(MockQuarantineRepository),
		MuteRepo:       new(MockMuteRepository),
		WarningRepo:    new(MockWarningRepository),
		AFKRepo:        new(MockAFKRepository),
		ShopRepo:       new(MockShopRepository),
		SalaryRepo:     new(MockInt64Repository),
		ScoreRepo:      new(MockInt64Repository),
		TaskRunRepo:    new(MockTaskRunRepository),
	}
}

func (s *MockStore) Accounts() AccountRepository { return s.AccountRepo }
func (s *MockStore) Quarantines() QuarantineRepository { return s.QuarantineRepo }
func (s *MockStore) Mutes() MuteRepository { return s.MuteRepo }
func (s *MockStore) Warnings() WarningRepository { return s.WarningRepo }
func (s *MockStore) AFK() AFKRepository { return s.AFKRepo }
func (s *MockStore) Shop() ShopRepository { return s.ShopRepo }
func (s *MockStore) Salaries() SalaryRepository { return s.SalaryRepo }
func (s *MockStore) TriviaScores() TriviaScoreRepository { return s.ScoreRepo }
func (s *MockStore) TaskRuns() TaskRunRepository { return s.TaskRunRepo }
func (s *MockStore) Close() error { return nil }
