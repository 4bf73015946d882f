package business

import (
	"errors"
	"fmt"
	"strings"

	"guildkeeper/bot/common"
	"guildkeeper/service"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var title = cases.Title(language.English)

// typeList renders the business catalogue with minimum investments
func (f *Feature) typeList() string {
	var b strings.Builder
	for _, t := range f.business.Types() {
		fmt.Fprintf(&b, "• `%s` %s (min: %s)\n", t.Key, t.Emoji, common.FormatMoney(t.MinInvestment))
	}
	return b.String()
}

func (f *Feature) handleCreate(inv *common.Invocation) error {
	businessType, err := inv.Arg(0)
	if err != nil {
		return err
	}
	name, err := inv.Arg(1)
	if err != nil {
		return err
	}
	investment, err := inv.IntArg(2, "investment")
	if err != nil {
		return err
	}

	created, err := f.business.Create(inv.Ctx, inv.AuthorID(), businessType, name, investment)
	switch {
	case errors.Is(err, service.ErrInvestmentTooLow) && investment < service.MinBusinessInvestment:
		return common.NewBotError("Investment Too Low",
			"Minimum investment is %s!\nBusiness types and their minimum investments:\n%s",
			common.FormatMoney(service.MinBusinessInvestment), f.typeList())
	case errors.Is(err, service.ErrInsufficientFunds):
		wallet := f.economy.Balance(inv.AuthorID()).Wallet
		return common.NewBotError("Insufficient Funds", "You need %s but only have %s!",
			common.FormatMoney(investment), common.FormatMoney(wallet))
	case errors.Is(err, service.ErrAlreadyOwnsBusiness):
		return common.NewBotError("Business Limit", "You already own a business! You can only own one business at a time.")
	case errors.Is(err, service.ErrUnknownBusinessType):
		var keys []string
		for _, t := range f.business.Types() {
			keys = append(keys, t.Key)
		}
		return common.NewBotError("Invalid Business Type",
			"Available types: %s\nExample: `%screatebusiness cafe \"Coffee Corner\" 50000`",
			strings.Join(keys, ", "), inv.Prefix)
	case err != nil:
		return err
	}

	inv.ReplyEmbed(common.NewEmbed(
		fmt.Sprintf("🏢 Business Created! %s", created.Emoji),
		fmt.Sprintf("**Business Name:** %s\n**Type:** %s\n**Investment:** %s\n**Daily Profit:** %s\n**Profit Rate:** %g%%\n**Level:** %d\n\n"+
			"Your business will generate profits every 24 hours!\nUse `%smybusiness` to check your business status.",
			created.Name, title.String(created.Type), common.FormatMoney(created.Investment),
			common.FormatMoney(created.DailyProfit()), created.ProfitRate*100, created.Level, inv.Prefix),
		common.ColorSuccess,
	))
	return nil
}

func (f *Feature) handleStatus(inv *common.Invocation) error {
	business, err := f.business.Get(inv.AuthorID())
	if errors.Is(err, service.ErrNoBusiness) {
		inv.ReplyEmbed(common.NewEmbed(
			"🏢 No Business",
			fmt.Sprintf("You don't own a business yet!\nStart one with `%screatebusiness <type> <name> <investment>`\n\n**Available Types:**\n%s",
				inv.Prefix, f.typeList()),
			common.ColorInfo,
		))
		return nil
	}
	if err != nil {
		return err
	}

	now := f.state.Now()
	lastCollected := "Never"
	if business.LastCollectedAt != nil {
		lastCollected = fmt.Sprintf("%d hours ago", int(now.Sub(*business.LastCollectedAt).Hours()))
	}
	next := "Ready to collect!"
	if !business.Collectable(now, service.ProfitPeriod) {
		next = common.FormatDiscordTimestamp(service.NextCollection(business), "R")
	}

	commands := fmt.Sprintf("**Commands:**\n• `%[1]supgradebusiness` - Upgrade your business\n"+
		"• `%[1]scollectprofit` - Collect your profits\n• `%[1]sclosebusiness` - Close your business", inv.Prefix)

	inv.ReplyEmbed(common.NewEmbed(
		fmt.Sprintf("%s %s", business.Emoji, business.Name),
		fmt.Sprintf("**Type:** %s\n**Level:** %d\n**Investment:** %s\n**Daily Profit:** %s\n**Total Profits:** %s\n**Last Collected:** %s\n**Next Profit:** %s\n\n%s",
			title.String(business.Type), business.Level, common.FormatMoney(business.Investment),
			common.FormatMoney(business.DailyProfit()), common.FormatMoney(business.TotalProfit),
			lastCollected, next, commands),
		common.ColorGold,
	))
	return nil
}

func (f *Feature) handleCollect(inv *common.Invocation) error {
	profit, business, err := f.business.CollectProfit(inv.Ctx, inv.AuthorID())
	var cooldown *service.CooldownError
	if errors.As(err, &cooldown) {
		return common.NewBotError("⏳ Profit Not Ready",
			"Your business needs more time to generate profits!\nCome back in **%s**", service.FormatDuration(cooldown.Remaining))
	}
	if err != nil {
		return err
	}

	wallet := f.economy.Balance(inv.AuthorID()).Wallet
	inv.ReplyEmbed(common.NewEmbed(
		fmt.Sprintf("💰 Profit Collected! %s", business.Emoji),
		fmt.Sprintf("**Business:** %s\n**Profit Collected:** %s\n**Total Profits:** %s\n**New Balance:** %s\n\nYour business will generate more profits in 24 hours!",
			business.Name, common.FormatMoney(profit), common.FormatMoney(business.TotalProfit), common.FormatMoney(wallet)),
		common.ColorSuccess,
	))
	return nil
}

func (f *Feature) handleUpgrade(inv *common.Invocation) error {
	result, err := f.business.Upgrade(inv.Ctx, inv.AuthorID())
	if errors.Is(err, service.ErrInsufficientFunds) {
		cost := int64(0)
		if b, getErr := f.business.Get(inv.AuthorID()); getErr == nil {
			cost = service.UpgradeCost(b)
		}
		wallet := f.economy.Balance(inv.AuthorID()).Wallet
		return common.NewBotError("Insufficient Funds", "Upgrade costs %s but you only have %s!",
			common.FormatMoney(cost), common.FormatMoney(wallet))
	}
	if err != nil {
		return err
	}

	b := result.Business
	inv.ReplyEmbed(common.NewEmbed(
		fmt.Sprintf("⬆️ Business Upgraded! %s", b.Emoji),
		fmt.Sprintf("**Business:** %s\n**New Level:** %d\n**New Investment:** %s\n**New Daily Profit:** %s\n**Upgrade Cost:** %s\n\nYour business is now more profitable!",
			b.Name, b.Level, common.FormatMoney(b.Investment), common.FormatMoney(b.DailyProfit()), common.FormatMoney(result.Cost)),
		common.ColorSuccess,
	))
	return nil
}

func (f *Feature) handleClose(inv *common.Invocation) error {
	refund, closed, err := f.business.Close(inv.Ctx, inv.AuthorID())
	if err != nil {
		return err
	}
	wallet := f.economy.Balance(inv.AuthorID()).Wallet
	inv.ReplyEmbed(common.NewEmbed(
		"🏢 Business Closed",
		fmt.Sprintf("**Business:** %s\n**Refund Received:** %s\n**Total Profits Made:** %s\n**New Balance:** %s\n\nYou can start a new business anytime with `%screatebusiness`",
			closed.Name, common.FormatMoney(refund), common.FormatMoney(closed.TotalProfit), common.FormatMoney(wallet), inv.Prefix),
		common.ColorWarning,
	))
	return nil
}
