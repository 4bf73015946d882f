package testutil

import (
	"time"

	"guildkeeper/models"
)

// CreateTestAccount creates a ledger entry with the given balances
func CreateTestAccount(userID string, wallet, bank int64) *models.Account {
	account := models.NewAccount(userID)
	account.Wallet = wallet
	account.Bank = bank
	return account
}

// CreateTestBusiness creates a level 1 cafe created at the given time
func CreateTestBusiness(name string, investment int64, createdAt time.Time) *models.Business {
	return &models.Business{
		Name:       name,
		Type:       "cafe",
		Emoji:      "☕",
		Investment: investment,
		ProfitRate: 0.15,
		Level:      1,
		CreatedAt:  createdAt,
	}
}

// CreateTestQuarantine creates a quarantine record
func CreateTestQuarantine(guildID, userID, channelID string, at time.Time) *models.Quarantine {
	return &models.Quarantine{
		GuildID:       guildID,
		UserID:        userID,
		ChannelID:     channelID,
		Reason:        "test",
		QuarantinedBy: "moderator",
		QuarantinedAt: at,
	}
}

// CreateTestTaskRun creates an unfinished run of a task for a slot
func CreateTestTaskRun(taskName string, slot time.Time) *models.TaskRun {
	return &models.TaskRun{
		TaskName:  taskName,
		Slot:      slot,
		StartedAt: slot,
	}
}
