package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccount_CloneIsDeep(t *testing.T) {
	daily := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	original := &Account{
		UserID:     "u1",
		Wallet:     10,
		LastDaily:  &daily,
		OwnedItems: map[string][]string{"vehicles": {"Bike"}},
		Business:   &Business{Name: "Cafe", Level: 1},
	}

	clone := original.Clone()
	clone.OwnedItems["vehicles"][0] = "Car"
	clone.OwnedItems["roles"] = []string{"VIP"}
	*clone.LastDaily = daily.Add(time.Hour)
	clone.Business.Level = 5

	assert.Equal(t, "Bike", original.OwnedItems["vehicles"][0])
	assert.NotContains(t, original.OwnedItems, "roles")
	assert.Equal(t, daily, *original.LastDaily)
	assert.Equal(t, 1, original.Business.Level)

	var nilAccount *Account
	assert.Nil(t, nilAccount.Clone())
}

func TestAccount_HasItem(t *testing.T) {
	account := NewAccount("u1")
	assert.False(t, account.HasItem("roles", "VIP"))
	account.OwnedItems["roles"] = []string{"VIP"}
	assert.True(t, account.HasItem("roles", "VIP"))
	assert.False(t, account.HasItem("vehicles", "VIP"))
}

func TestAccount_TotalOnValue(t *testing.T) {
	account := Account{UserID: "u1", Wallet: 250, Bank: 750}
	assert.Equal(t, int64(1000), account.Total())

	byValue := func() Account { return account }
	assert.Equal(t, int64(1000), byValue().Total())
}

func TestBusiness_DailyProfitAndCollectable(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := &Business{Investment: 50000, ProfitRate: 0.25, CreatedAt: created}
	assert.Equal(t, int64(12500), b.DailyProfit())
	assert.True(t, b.Collectable(created, 24*time.Hour))

	collected := created.Add(48 * time.Hour)
	b.LastCollectedAt = &collected
	assert.False(t, b.Collectable(collected.Add(23*time.Hour), 24*time.Hour))
	assert.True(t, b.Collectable(collected.Add(24*time.Hour), 24*time.Hour))
}

func TestMute_Expired(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := &Mute{UnmuteAt: at}
	assert.False(t, m.Expired(at.Add(-time.Nanosecond)))
	assert.True(t, m.Expired(at))
	assert.True(t, m.Expired(at.Add(time.Minute)))
}
