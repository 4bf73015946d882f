package service_test

import (
	"context"
	"errors"
	"testing"

	"guildkeeper/models"
	"guildkeeper/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// emptyLoads makes every repository of the mock store load nothing
func emptyLoads(store *service.MockStore) {
	store.AccountRepo.On("LoadAll", mock.Anything).Return(map[string]*models.Account{}, nil)
	store.QuarantineRepo.On("LoadAll", mock.Anything).Return([]*models.Quarantine{}, nil)
	store.MuteRepo.On("LoadAll", mock.Anything).Return(map[string]*models.Mute{}, nil)
	store.WarningRepo.On("LoadAll", mock.Anything).Return(map[string]int{}, nil)
	store.AFKRepo.On("LoadAll", mock.Anything).Return(map[string]*models.AFK{}, nil)
	store.ShopRepo.On("LoadAll", mock.Anything).Return([]*models.ShopItem{}, nil)
	store.SalaryRepo.On("LoadAll", mock.Anything).Return(map[string]int64{}, nil)
	store.ScoreRepo.On("LoadAll", mock.Anything).Return(map[string]int64{}, nil)
}

func TestState_LoadSeedsSalaries(t *testing.T) {
	ctx := context.Background()
	store := service.NewMockStore()
	emptyLoads(store)
	store.SalaryRepo.On("Upsert", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("int64")).Return(nil)

	state := service.NewState(store, nil, service.WithClock(newFakeClock()))
	require.NoError(t, state.Load(ctx))

	store.SalaryRepo.AssertNumberOfCalls(t, "Upsert", 3)
	store.SalaryRepo.AssertCalled(t, "Upsert", mock.Anything, "Admin", int64(5000))
	store.ShopRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestState_LoadFillsMissingDefaultSalary(t *testing.T) {
	ctx := context.Background()
	store := service.NewMockStore()
	store.AccountRepo.On("LoadAll", mock.Anything).Return(map[string]*models.Account{}, nil)
	store.QuarantineRepo.On("LoadAll", mock.Anything).Return([]*models.Quarantine{}, nil)
	store.MuteRepo.On("LoadAll", mock.Anything).Return(map[string]*models.Mute{}, nil)
	store.WarningRepo.On("LoadAll", mock.Anything).Return(map[string]int{}, nil)
	store.AFKRepo.On("LoadAll", mock.Anything).Return(map[string]*models.AFK{}, nil)
	store.ShopRepo.On("LoadAll", mock.Anything).Return([]*models.ShopItem{}, nil)
	store.SalaryRepo.On("LoadAll", mock.Anything).Return(map[string]int64{"Admin": 7000}, nil)
	store.ScoreRepo.On("LoadAll", mock.Anything).Return(map[string]int64{}, nil)
	store.SalaryRepo.On("Upsert", mock.Anything, service.DefaultSalaryKey, int64(1000)).Return(nil)

	state := service.NewState(store, nil, service.WithClock(newFakeClock()))
	require.NoError(t, state.Load(ctx))

	store.SalaryRepo.AssertNumberOfCalls(t, "Upsert", 1)
	salaries := service.NewSalaryService(state).List()
	require.Len(t, salaries, 2)
	assert.Equal(t, service.RoleSalary{Role: service.DefaultSalaryKey, Amount: 1000}, salaries[0])
	assert.Equal(t, service.RoleSalary{Role: "Admin", Amount: 7000}, salaries[1])
}

func TestState_LoadFailureKeepsDefaults(t *testing.T) {
	ctx := context.Background()
	store := service.NewMockStore()
	dbErr := errors.New("connection refused")

	store.AccountRepo.On("LoadAll", mock.Anything).Return(nil, dbErr)
	store.QuarantineRepo.On("LoadAll", mock.Anything).Return(nil, dbErr)
	store.MuteRepo.On("LoadAll", mock.Anything).Return(map[string]*models.Mute{}, nil)
	store.WarningRepo.On("LoadAll", mock.Anything).Return(map[string]int{"u1": 2}, nil)
	store.AFKRepo.On("LoadAll", mock.Anything).Return(map[string]*models.AFK{}, nil)
	store.ShopRepo.On("LoadAll", mock.Anything).Return([]*models.ShopItem{}, nil)
	store.SalaryRepo.On("LoadAll", mock.Anything).Return(map[string]int64{"default": 250}, nil)
	store.ScoreRepo.On("LoadAll", mock.Anything).Return(map[string]int64{}, nil)

	state := service.NewState(store, nil, service.WithClock(newFakeClock()))
	err := state.Load(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	assert.Contains(t, err.Error(), "accounts")
	assert.Contains(t, err.Error(), "quarantines")

	assert.Equal(t, 2, service.NewModerationService(state).Warnings("u1"))
	assert.Equal(t, int64(250), service.NewSalaryService(state).SalaryFor(nil))
	store.SalaryRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
}

func TestState_StoreErrorsDoNotRollBack(t *testing.T) {
	ctx := context.Background()
	store := service.NewMockStore()
	emptyLoads(store)
	store.SalaryRepo.On("Upsert", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	store.AccountRepo.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	store.AccountRepo.On("UpsertMany", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	state := service.NewState(store, nil, service.WithClock(newFakeClock()))
	require.NoError(t, state.Load(ctx))
	economy := service.NewEconomyService(state)

	amount, account, err := economy.Daily(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, amount, account.Wallet)

	_, err = economy.Transfer(ctx, "u1", "u2", false, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(98), economy.Balance("u2").Wallet)

	store.AccountRepo.AssertCalled(t, "Upsert", mock.Anything, mock.MatchedBy(func(a *models.Account) bool {
		return a.UserID == "u1" && a.Wallet == 10000
	}))
	store.AccountRepo.AssertNumberOfCalls(t, "UpsertMany", 1)
}

func TestState_FailedUpdateDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	store := service.NewMockStore()
	emptyLoads(store)
	store.SalaryRepo.On("Upsert", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	state := service.NewState(store, nil, service.WithClock(newFakeClock()))
	require.NoError(t, state.Load(ctx))

	_, err := service.NewEconomyService(state).Transfer(ctx, "u1", "u2", false, 100)
	require.ErrorIs(t, err, service.ErrInsufficientFunds)
	store.AccountRepo.AssertNotCalled(t, "UpsertMany", mock.Anything, mock.Anything)
}

func TestCountries(t *testing.T) {
	countries, err := service.LoadCountries("")
	require.NoError(t, err)
	assert.NotEmpty(t, countries.Continents())

	parsed, err := service.ParseCountries([]byte(`{"North America": [{"country": "Canada", "capital": "Ottawa", "flag": "🇨🇦"}], "Empty": []}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"northamerica"}, parsed.Continents())

	key, ok := parsed.Lookup("north_america")
	assert.True(t, ok)
	assert.Equal(t, "northamerica", key)
	_, ok = parsed.Lookup("europe")
	assert.False(t, ok)

	_, err = service.ParseCountries([]byte(`{}`))
	assert.Error(t, err)
	_, err = service.ParseCountries([]byte(`not json`))
	assert.Error(t, err)
	_, err = service.LoadCountries("/nonexistent/countries.json")
	assert.Error(t, err)
}
