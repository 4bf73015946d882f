package service_test

import (
	"context"
	"testing"

	"guildkeeper/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalary_DefaultsSeededOnLoad(t *testing.T) {
	env := newTestEnv(t)
	salaries := service.NewSalaryService(env.state)

	assert.Equal(t, []service.RoleSalary{
		{Role: "default", Amount: 1000},
		{Role: "Admin", Amount: 5000},
		{Role: "Moderator", Amount: 3000},
	}, salaries.List())

	persisted, err := env.store.Salaries().LoadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, persisted, 3)
}

func TestSalary_SetAndLookup(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	salaries := service.NewSalaryService(env.state)

	require.NoError(t, salaries.SetSalary(ctx, "VIP", 8000))
	assert.ErrorIs(t, salaries.SetSalary(ctx, "VIP", -1), service.ErrInvalidAmount)

	assert.Equal(t, int64(1000), salaries.SalaryFor(nil))
	assert.Equal(t, int64(1000), salaries.SalaryFor([]string{"Member"}))
	assert.Equal(t, int64(5000), salaries.SalaryFor([]string{"moderator", "admin"}))
	assert.Equal(t, int64(8000), salaries.SalaryFor([]string{"Admin", "VIP"}))

	list := salaries.List()
	require.Len(t, list, 4)
	assert.Equal(t, "default", list[0].Role)
	assert.Equal(t, "VIP", list[1].Role)
}

func TestSalary_PayCreditsBankOncePerUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	salaries := service.NewSalaryService(env.state)
	economy := service.NewEconomyService(env.state)

	summary, err := salaries.Pay(ctx, []service.Member{
		{UserID: "admin", RoleNames: []string{"Admin"}},
		{UserID: "mod", RoleNames: []string{"Moderator"}},
		{UserID: "plain"},
		{UserID: "bot", Bot: true, RoleNames: []string{"Admin"}},
		// same user seen in a second guild with a better role
		{UserID: "plain", RoleNames: []string{"Moderator"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Paid)
	assert.Equal(t, int64(5000+3000+3000), summary.Total)
	assert.Equal(t, []service.RolePayout{
		{Role: "Moderator", Count: 2, Amount: 6000},
		{Role: "Admin", Count: 1, Amount: 5000},
	}, summary.ByRole)

	assert.Equal(t, int64(5000), economy.Balance("admin").Bank)
	assert.Equal(t, int64(0), economy.Balance("admin").Wallet)
	assert.Equal(t, int64(3000), economy.Balance("plain").Bank)
	assert.Equal(t, int64(0), economy.Balance("bot").Total())
}

func TestSalary_ZeroSalaryIsSkipped(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	salaries := service.NewSalaryService(env.state)
	require.NoError(t, salaries.SetSalary(ctx, service.DefaultSalaryKey, 0))

	summary, err := salaries.Pay(ctx, []service.Member{{UserID: "plain"}})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Paid)
	assert.Empty(t, summary.ByRole)
}
