package service

import (
	"guildkeeper/events"
	"guildkeeper/models"
)

// Balance change reasons carried on BalanceChangeEvent
const (
	ReasonDaily           = "daily"
	ReasonWork            = "work"
	ReasonDeposit         = "deposit"
	ReasonWithdraw        = "withdraw"
	ReasonTransferOut     = "transfer_out"
	ReasonTransferIn      = "transfer_in"
	ReasonGamble          = "gamble"
	ReasonCoinflip        = "coinflip"
	ReasonBusinessCreate  = "business_create"
	ReasonBusinessCollect = "business_collect"
	ReasonBusinessUpgrade = "business_upgrade"
	ReasonBusinessClose   = "business_close"
	ReasonShopPurchase    = "shop_purchase"
	ReasonSalary          = "salary"
	ReasonAdminGive       = "admin_give"
	ReasonAdminSetBalance = "admin_set_balance"
)

// applyBalanceChange adjusts wallet and bank of an account and publishes the change.
// This is the single entry point for all balance changes; callers validate beforehand.
func applyBalanceChange(tx EventPublisher, account *models.Account, reason string, walletDelta, bankDelta int64) {
	oldWallet, oldBank := account.Wallet, account.Bank
	account.Wallet += walletDelta
	account.Bank += bankDelta

	tx.Publish(events.BalanceChangeEvent{
		UserID:    account.UserID,
		Reason:    reason,
		OldWallet: oldWallet,
		NewWallet: account.Wallet,
		OldBank:   oldBank,
		NewBank:   account.Bank,
	})
}
