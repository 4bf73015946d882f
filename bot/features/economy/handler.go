package economy

import (
	"errors"
	"fmt"

	"guildkeeper/bot/common"
	"guildkeeper/service"
)

func (f *Feature) handleBalance(inv *common.Invocation) error {
	target := inv.Author()
	if len(inv.Args) > 0 {
		id, err := inv.UserArg(0)
		if err != nil {
			return err
		}
		if target, err = inv.User(id); err != nil {
			return err
		}
	}

	account := f.economy.Balance(target.ID)
	embed := common.NewEmbed(
		fmt.Sprintf("💰 %s's Balance", target.Username),
		fmt.Sprintf("**Wallet:** %s\n**Bank:** %s\n**Total:** %s",
			common.FormatMoney(account.Wallet), common.FormatMoney(account.Bank), common.FormatMoney(account.Total())),
		common.ColorGold,
	)
	if target.ID != inv.AuthorID() {
		common.SetFooter(embed, "Requested by "+inv.Author().Username)
	}
	inv.ReplyEmbed(embed)
	return nil
}

func (f *Feature) handleDaily(inv *common.Invocation) error {
	amount, account, err := f.economy.Daily(inv.Ctx, inv.AuthorID())
	if err != nil {
		return err
	}
	inv.ReplyEmbed(common.NewEmbed(
		"💰 Daily Reward Claimed!",
		fmt.Sprintf("You claimed **%s**!\n**New Balance:** %s", common.FormatMoney(amount), common.FormatMoney(account.Wallet)),
		common.ColorSuccess,
	))
	return nil
}

func (f *Feature) handleWork(inv *common.Invocation) error {
	result, err := f.economy.Work(inv.Ctx, inv.AuthorID())
	if err != nil {
		return err
	}
	inv.ReplyEmbed(common.NewEmbed(
		"💼 Work Complete!",
		fmt.Sprintf("You %s and earned **%s**!\n**New Balance:** %s",
			result.Job, common.FormatMoney(result.Amount), common.FormatMoney(result.Account.Wallet)),
		common.ColorSuccess,
	))
	return nil
}

func (f *Feature) parseAmount(inv *common.Invocation) (service.Amount, error) {
	raw, err := inv.Arg(0)
	if err != nil {
		return service.Amount{}, err
	}
	amount, err := service.ParseAmount(raw)
	if err != nil {
		return service.Amount{}, common.InvalidArgument("Invalid amount! Use a number or 'all'.")
	}
	return amount, nil
}

func (f *Feature) handleDeposit(inv *common.Invocation) error {
	amount, err := f.parseAmount(inv)
	if err != nil {
		return err
	}
	moved, account, err := f.economy.Deposit(inv.Ctx, inv.AuthorID(), amount)
	if err != nil {
		return f.shortfall(inv, err, "Error")
	}
	inv.ReplyEmbed(common.NewEmbed(
		"🏦 Deposit Successful",
		fmt.Sprintf("Deposited **%s** to your bank!\n**New Wallet:** %s\n**New Bank:** %s",
			common.FormatMoney(moved), common.FormatMoney(account.Wallet), common.FormatMoney(account.Bank)),
		common.ColorSuccess,
	))
	return nil
}

func (f *Feature) handleWithdraw(inv *common.Invocation) error {
	amount, err := f.parseAmount(inv)
	if err != nil {
		return err
	}
	moved, account, err := f.economy.Withdraw(inv.Ctx, inv.AuthorID(), amount)
	if err != nil {
		return f.shortfall(inv, err, "Error")
	}
	inv.ReplyEmbed(common.NewEmbed(
		"💵 Withdrawal Successful",
		fmt.Sprintf("Withdrew **%s** from your bank!\n**New Wallet:** %s\n**New Bank:** %s",
			common.FormatMoney(moved), common.FormatMoney(account.Wallet), common.FormatMoney(account.Bank)),
		common.ColorSuccess,
	))
	return nil
}

func (f *Feature) handleTransfer(inv *common.Invocation) error {
	targetID, err := inv.UserArg(0)
	if err != nil {
		return err
	}
	amount, err := inv.IntArg(1, "amount")
	if err != nil {
		return err
	}
	target, err := inv.User(targetID)
	if err != nil {
		return err
	}

	result, err := f.economy.Transfer(inv.Ctx, inv.AuthorID(), target.ID, target.Bot, amount)
	if err != nil {
		return f.shortfall(inv, err, "Error")
	}
	inv.ReplyEmbed(common.NewEmbed(
		"💸 Transfer Successful",
		fmt.Sprintf("**From:** %s\n**To:** %s\n**Amount:** %s\n**Tax (2%%):** %s\n**Total Sent:** %s\n\n**Your New Balance:** %s",
			inv.Author().Mention(), target.Mention(),
			common.FormatMoney(result.Received), common.FormatMoney(result.Tax), common.FormatMoney(result.Amount),
			common.FormatMoney(result.Sender.Wallet)),
		common.ColorSuccess,
	))
	return nil
}

func (f *Feature) handleGamble(inv *common.Invocation) error {
	stake, err := inv.IntArg(0, "amount")
	if err != nil {
		return err
	}
	result, err := f.economy.Gamble(inv.Ctx, inv.AuthorID(), stake)
	if err != nil {
		return f.shortfall(inv, err, "Insufficient Funds")
	}

	title, line, color, profit := "🎲 Gambling Loss", fmt.Sprintf("🎰 **You lost %s!**", common.FormatMoney(stake)), common.ColorError, -stake
	if result.Won {
		title, line, color, profit = "🎲 Gambling Win!", fmt.Sprintf("🎰 **You won %s!**", common.FormatMoney(result.Payout)), common.ColorSuccess, result.Payout-stake
	}
	inv.ReplyEmbed(common.NewEmbed(
		title,
		fmt.Sprintf("%s\n**Profit/Loss:** %s\n**New Balance:** %s\n**Chance:** 45%% to win 1.5x",
			line, common.FormatMoney(profit), common.FormatMoney(result.Account.Wallet)),
		color,
	))
	return nil
}

func (f *Feature) handleCoinflip(inv *common.Invocation) error {
	side, err := inv.Arg(0)
	if err != nil {
		return err
	}
	call, err := service.ParseCoinSide(side)
	if err != nil {
		return common.NewBotError("Invalid Choice",
			"Choose **heads** or **tails**!\n**Examples:**\n• `%[1]scoinflip heads 1000`\n• `%[1]scoinflip tails 5000`\n• `%[1]scf h 2000` (h = heads, t = tails)",
			inv.Prefix)
	}
	stake, err := inv.IntArg(1, "amount")
	if err != nil {
		return err
	}

	result, err := f.economy.Coinflip(inv.Ctx, inv.AuthorID(), call, stake)
	if err != nil {
		return f.shortfall(inv, err, "Insufficient Funds")
	}

	title := "💸 🪙 You Lose"
	line := fmt.Sprintf("**🪙 It's %s! You lost %s.**", result.Outcome, common.FormatMoney(stake))
	color, profit := common.ColorError, -stake
	if result.Won {
		title = "🎉 💎 You Win!"
		line = fmt.Sprintf("**💎 It's %s! You won %s!**", result.Outcome, common.FormatMoney(result.Payout))
		color, profit = common.ColorSuccess, result.Payout-stake
	}
	inv.ReplyEmbed(common.NewEmbed(
		title,
		fmt.Sprintf("%s\n\n**Your Choice:** %s\n**Coin Result:** %s\n**Bet Amount:** %s\n**Profit/Loss:** %s\n**New Balance:** %s",
			line, call, result.Outcome, common.FormatMoney(stake), common.FormatMoney(profit), common.FormatMoney(result.Account.Wallet)),
		color,
	))
	return nil
}

// shortfall reports the caller's balance when an operation was not covered
func (f *Feature) shortfall(inv *common.Invocation, err error, title string) error {
	account := f.economy.Balance(inv.AuthorID())
	switch {
	case errors.Is(err, service.ErrInsufficientFunds):
		return common.NewBotError(title, "You only have **%s** in your wallet!", common.FormatMoney(account.Wallet))
	case errors.Is(err, service.ErrInsufficientBank):
		return common.NewBotError(title, "You only have **%s** in your bank!", common.FormatMoney(account.Bank))
	}
	return err
}
