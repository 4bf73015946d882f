package economy

import (
	"guildkeeper/bot/common"
	"guildkeeper/service"
)

type Feature struct {
	economy *service.EconomyService
}

func New(economy *service.EconomyService) *Feature {
	return &Feature{
		economy: economy,
	}
}

// Commands returns the ledger commands
func (f *Feature) Commands() []common.Command {
	return []common.Command{
		{Name: "balance", Aliases: []string{"bal", "money"}, Category: "Economy", Usage: "[@user]", Description: "Check your balance or another user's", Handler: f.handleBalance},
		{Name: "daily", Category: "Economy", Description: "Claim $10,000 once a day", Handler: f.handleDaily},
		{Name: "work", Category: "Economy", Description: "Work for $5,000-$20,000 (1h cooldown)", Handler: f.handleWork},
		{Name: "deposit", Aliases: []string{"dep"}, Category: "Economy", Usage: "<amount|all>", Description: "Move money to your bank", Handler: f.handleDeposit},
		{Name: "withdraw", Aliases: []string{"with"}, Category: "Economy", Usage: "<amount|all>", Description: "Move money to your wallet", Handler: f.handleWithdraw},
		{Name: "transfer", Aliases: []string{"pay"}, Category: "Economy", Usage: "<@user> <amount>", Description: "Send money (2% tax)", Handler: f.handleTransfer},
		{Name: "gamble", Category: "Gambling", Usage: "<amount>", Description: "45% chance to win 1.5x", Handler: f.handleGamble},
		{Name: "coinflip", Aliases: []string{"cf", "flip"}, Category: "Gambling", Usage: "<heads|tails> <amount>", Description: "Call the coin to win 2x", Handler: f.handleCoinflip},
	}
}
