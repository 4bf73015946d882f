package admin

import (
	"context"
	"testing"

	"guildkeeper/bot/bottest"
	"guildkeeper/bot/common"
	"guildkeeper/service"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type salaryRun struct {
	salary  *service.SalaryService
	members []service.Member
	calls   int
}

func (r *salaryRun) PayNow(ctx context.Context) (*service.PayoutSummary, error) {
	r.calls++
	return r.salary.Pay(ctx, r.members)
}

type fixture struct {
	feature   *Feature
	economy   *service.EconomyService
	salary    *service.SalaryService
	payroll   *salaryRun
	messenger *bottest.Messenger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	state := bottest.NewState(t)
	economy := service.NewEconomyService(state)
	salary := service.NewSalaryService(state)
	payroll := &salaryRun{salary: salary}
	f := New(economy, salary, payroll)
	f.roles = func(inv *common.Invocation) ([]*discordgo.Role, error) {
		return []*discordgo.Role{{ID: "r1", Name: "Admin"}, {ID: "r2", Name: "Vice President"}}, nil
	}
	return &fixture{feature: f, economy: economy, salary: salary, payroll: payroll, messenger: &bottest.Messenger{}}
}

func (fx *fixture) run(t *testing.T, name string, args ...string) error {
	t.Helper()
	msg := bottest.Message("g1", "c1", "admin", "")
	msg.Mentions = []*discordgo.User{{ID: "101", Username: "target"}}
	return bottest.Invoke(t, fx.messenger, bottest.Find(t, fx.feature.Commands(), name), msg, args...)
}

func TestGiveMoneyAndSetBalance(t *testing.T) {
	fx := newFixture(t)

	require.NoError(t, fx.run(t, "givemoney", "<@101>", "2,500"))
	embed := fx.messenger.Last().Embed
	assert.Equal(t, "✅ Money Given", embed.Title)
	assert.Equal(t, "Gave **$2,500** to <@101>\n**Their New Balance:** $2,500", embed.Description)
	assert.Equal(t, "Given by useradmin", embed.Footer.Text)

	var botErr *common.BotError
	require.ErrorAs(t, fx.run(t, "givemoney", "<@101>", "0"), &botErr)
	assert.Equal(t, "Amount must be positive!", botErr.Message)

	require.ErrorAs(t, fx.run(t, "setbalance", "<@101>", "-5"), &botErr)
	assert.Equal(t, "Amount cannot be negative!", botErr.Message)

	require.NoError(t, fx.run(t, "setbalance", "<@101>", "700"))
	assert.Equal(t, int64(700), fx.economy.Balance("101").Wallet)

	require.NoError(t, fx.run(t, "addmoney", "300"))
	assert.Equal(t, int64(300), fx.economy.Balance("admin").Wallet)
	assert.Equal(t, "✅ Money Added", fx.messenger.Last().Embed.Title)
}

func TestSetSalary_UsesExactRoleName(t *testing.T) {
	fx := newFixture(t)

	require.NoError(t, fx.run(t, "setsalary", "vice president", "4000"))
	assert.Equal(t, int64(4000), fx.salary.SalaryFor([]string{"Vice President"}))
	assert.Contains(t, fx.messenger.Last().Embed.Description, "**Role ID:** r2")

	var botErr *common.BotError
	require.ErrorAs(t, fx.run(t, "setsalary", "Ghost", "10"), &botErr)
	assert.Equal(t, "Role **Ghost** not found in this server!", botErr.Message)
}

func TestSalaryList(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, fx.run(t, "salarylist"))

	embed := fx.messenger.Last().Embed
	assert.Equal(t, "💰 Role Salaries", embed.Title)
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "👤 Default (no special role)", embed.Fields[0].Name)
	assert.Equal(t, "$1,000", embed.Fields[0].Value)
	assert.Equal(t, "👑 Admin", embed.Fields[1].Name)
	assert.True(t, embed.Fields[1].Inline)
	assert.Equal(t, "👑 Moderator", embed.Fields[2].Name)
	assert.Equal(t, "Total special roles: 2", embed.Footer.Text)
}

func TestPaySalary(t *testing.T) {
	fx := newFixture(t)
	fx.payroll.members = []service.Member{
		{UserID: "a", RoleNames: []string{"Admin"}},
		{UserID: "b"},
		{UserID: "c"},
		{UserID: "bot", Bot: true},
	}

	require.NoError(t, fx.run(t, "paysalary"))
	assert.Equal(t, 1, fx.payroll.calls)

	sent := fx.messenger.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "💰 Processing manual salary payment...", sent[0].Content)
	embed := sent[1].Embed
	assert.Equal(t, "💰 Manual Salary Payment Complete", embed.Title)
	assert.Contains(t, embed.Description, "**Total Paid:** $7,000\n**Users Paid:** 3")
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, "**Admin:** 1 users × $5,000 = $5,000\n**Default:** 2 users × $1,000 = $2,000\n", embed.Fields[0].Value)
	assert.Equal(t, int64(5000), fx.economy.Balance("a").Bank)
}
