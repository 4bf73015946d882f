package admin

import (
	"errors"
	"fmt"
	"strings"

	"guildkeeper/bot/common"
	"guildkeeper/service"

	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleGiveMoney(inv *common.Invocation) error {
	id, err := inv.UserArg(0)
	if err != nil {
		return err
	}
	member, err := inv.User(id)
	if err != nil {
		return err
	}
	amount, err := inv.IntArg(1, "amount")
	if err != nil {
		return err
	}
	if amount <= 0 {
		return common.NewBotError("Error", "Amount must be positive!")
	}

	account, err := f.economy.GiveMoney(inv.Ctx, id, amount)
	if err != nil {
		return err
	}
	embed := common.NewEmbed(
		"✅ Money Given",
		fmt.Sprintf("Gave **%s** to %s\n**Their New Balance:** %s",
			common.FormatMoney(amount), member.Mention(), common.FormatMoney(account.Wallet)),
		common.ColorSuccess,
	)
	common.SetFooter(embed, "Given by "+inv.Author().Username)
	inv.ReplyEmbed(embed)
	return nil
}

func (f *Feature) handleSetBalance(inv *common.Invocation) error {
	id, err := inv.UserArg(0)
	if err != nil {
		return err
	}
	member, err := inv.User(id)
	if err != nil {
		return err
	}
	amount, err := inv.IntArg(1, "amount")
	if err != nil {
		return err
	}

	if _, err := f.economy.SetBalance(inv.Ctx, id, amount); err != nil {
		if errors.Is(err, service.ErrInvalidAmount) {
			return common.NewBotError("Error", "Amount cannot be negative!")
		}
		return err
	}
	embed := common.NewEmbed(
		"✅ Balance Set",
		fmt.Sprintf("Set %s's wallet to **%s**", member.Mention(), common.FormatMoney(amount)),
		common.ColorSuccess,
	)
	common.SetFooter(embed, "Set by "+inv.Author().Username)
	inv.ReplyEmbed(embed)
	return nil
}

func (f *Feature) handleAddMoney(inv *common.Invocation) error {
	amount, err := inv.IntArg(0, "amount")
	if err != nil {
		return err
	}
	if amount <= 0 {
		return common.NewBotError("Error", "Amount must be positive!")
	}

	account, err := f.economy.GiveMoney(inv.Ctx, inv.AuthorID(), amount)
	if err != nil {
		return err
	}
	inv.ReplyEmbed(common.NewEmbed(
		"✅ Money Added",
		fmt.Sprintf("Added **%s** to your wallet!\n**New Balance:** %s",
			common.FormatMoney(amount), common.FormatMoney(account.Wallet)),
		common.ColorSuccess,
	))
	return nil
}

func (f *Feature) handleSetSalary(inv *common.Invocation) error {
	name, err := inv.Arg(0)
	if err != nil {
		return err
	}
	amount, err := inv.IntArg(1, "amount")
	if err != nil {
		return err
	}
	if amount < 0 {
		return common.NewBotError("Error", "Salary cannot be negative!")
	}

	roles, err := f.roles(inv)
	if err != nil {
		return err
	}
	role := common.FindRoleByName(roles, name)
	if role == nil {
		return common.NewBotError("Error", "Role **%s** not found in this server!", name)
	}

	if err := f.salary.SetSalary(inv.Ctx, role.Name, amount); err != nil {
		return err
	}
	inv.ReplyEmbed(common.NewEmbed(
		"✅ Salary Set",
		fmt.Sprintf("**Role:** %s\n**Daily Salary:** %s\n**Role ID:** %s\n\nUsers with the **%s** role will receive this amount daily in their bank.",
			role.Name, common.FormatMoney(amount), role.ID, role.Name),
		common.ColorSuccess,
	))
	return nil
}

func (f *Feature) handleSalaryList(inv *common.Invocation) error {
	list := f.salary.List()
	if len(list) == 0 {
		inv.Reply("No role salaries set yet!")
		return nil
	}

	embed := common.NewEmbed("💰 Role Salaries", "Daily salaries paid to bank accounts", common.ColorGold)
	special := 0
	for _, entry := range list {
		if entry.Role == service.DefaultSalaryKey {
			common.AddField(embed, "👤 Default (no special role)", common.FormatMoney(entry.Amount), false)
			continue
		}
		special++
		common.AddField(embed, "👑 "+entry.Role, common.FormatMoney(entry.Amount), true)
	}
	common.SetFooter(embed, fmt.Sprintf("Total special roles: %d", special))
	inv.ReplyEmbed(embed)
	return nil
}

func (f *Feature) handlePaySalary(inv *common.Invocation) error {
	inv.Reply("💰 Processing manual salary payment...")

	summary, err := f.payroll.PayNow(inv.Ctx)
	if err != nil {
		return err
	}

	embed := common.NewEmbed(
		"💰 Manual Salary Payment Complete",
		fmt.Sprintf("**Total Paid:** %s\n**Users Paid:** %d\n**Time:** %s",
			common.FormatMoney(summary.Total), summary.Paid, common.FormatDiscordTimestamp(inv.Message.Timestamp, "f")),
		common.ColorSuccess,
	)
	if len(summary.ByRole) > 0 {
		common.AddField(embed, "📊 Breakdown by Role", Breakdown(summary.ByRole), false)
	}
	common.SetFooter(embed, "Paid by "+inv.Author().Username)
	inv.ReplyEmbed(embed)

	log.WithFields(log.Fields{
		"by":    inv.AuthorID(),
		"total": summary.Total,
		"users": summary.Paid,
	}).Info("Manual salary payment")
	return nil
}

// Breakdown renders per-role payout lines
func Breakdown(payouts []service.RolePayout) string {
	var b strings.Builder
	for _, p := range payouts {
		role := p.Role
		if role == service.DefaultSalaryKey {
			role = "Default"
		}
		fmt.Fprintf(&b, "**%s:** %d users × %s = %s\n",
			role, p.Count, common.FormatMoney(p.Amount/int64(p.Count)), common.FormatMoney(p.Amount))
	}
	return b.String()
}
