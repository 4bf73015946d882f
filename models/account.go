package models

import (
	"time"
)

// Account is a user's ledger entry
type Account struct {
	UserID     string              `json:"user_id" db:"user_id"`
	Wallet     int64               `json:"wallet" db:"wallet"`
	Bank       int64               `json:"bank" db:"bank"`
	LastDaily  *time.Time          `json:"last_daily,omitempty" db:"last_daily"`
	LastWork   *time.Time          `json:"last_work,omitempty" db:"last_work"`
	OwnedItems map[string][]string `json:"owned_items,omitempty" db:"-"`
	Business   *Business           `json:"business,omitempty" db:"-"`
}

// NewAccount returns an empty ledger entry for a user
func NewAccount(userID string) *Account {
	return &Account{
		UserID:     userID,
		OwnedItems: make(map[string][]string),
	}
}

// Total returns wallet plus bank
func (a Account) Total() int64 {
	return a.Wallet + a.Bank
}

// HasItem reports whether the user owns an item in a category
func (a *Account) HasItem(category, name string) bool {
	for _, owned := range a.OwnedItems[category] {
		if owned == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the account
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	c.LastDaily = cloneTime(a.LastDaily)
	c.LastWork = cloneTime(a.LastWork)
	c.OwnedItems = make(map[string][]string, len(a.OwnedItems))
	for category, items := range a.OwnedItems {
		c.OwnedItems[category] = append([]string(nil), items...)
	}
	c.Business = a.Business.Clone()
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
