package admin

import (
	"context"

	"guildkeeper/bot/common"
	"guildkeeper/service"

	"github.com/bwmarrin/discordgo"
)

// Payroll runs the salary task on demand
type Payroll interface {
	PayNow(ctx context.Context) (*service.PayoutSummary, error)
}

type Feature struct {
	economy *service.EconomyService
	salary  *service.SalaryService
	payroll Payroll
	// roles lists the guild's roles; replaced in tests
	roles func(inv *common.Invocation) ([]*discordgo.Role, error)
}

func New(economy *service.EconomyService, salary *service.SalaryService, payroll Payroll) *Feature {
	return &Feature{
		economy: economy,
		salary:  salary,
		payroll: payroll,
		roles: func(inv *common.Invocation) ([]*discordgo.Role, error) {
			return common.GuildRoles(inv.Session, inv.GuildID())
		},
	}
}

func (f *Feature) Commands() []common.Command {
	return []common.Command{
		{Name: "givemoney", Category: "Admin", Usage: "<@user> <amount>", Description: "Give money to a user", Permission: discordgo.PermissionAdministrator, Handler: f.handleGiveMoney},
		{Name: "setbalance", Category: "Admin", Usage: "<@user> <amount>", Description: "Set a user's wallet", Permission: discordgo.PermissionAdministrator, Handler: f.handleSetBalance},
		{Name: "addmoney", Category: "Admin", Usage: "<amount>", Description: "Add money to your own wallet", Permission: discordgo.PermissionAdministrator, Handler: f.handleAddMoney},
		{Name: "setsalary", Category: "Admin", Usage: `"<role name>" <amount>`, Description: "Set the daily salary of a role", Permission: discordgo.PermissionAdministrator, Handler: f.handleSetSalary},
		{Name: "salarylist", Category: "Economy", Description: "View all role salaries", Handler: f.handleSalaryList},
		{Name: "paysalary", Aliases: []string{"paysalaries", "salarypay", "forcepay"}, Category: "Admin", Description: "Pay daily salaries now", Permission: discordgo.PermissionAdministrator, Handler: f.handlePaySalary},
	}
}
