package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// BusinessType describes one kind of business a user can open
type BusinessType struct {
	Key           string  `toml:"key"`
	MinInvestment int64   `toml:"min_investment"`
	ProfitRate    float64 `toml:"profit_rate"`
	Emoji         string  `toml:"emoji"`
}

// ShopSeed is a catalogue entry added when the shop is empty
type ShopSeed struct {
	Category    string `toml:"category"`
	Name        string `toml:"name"`
	Price       int64  `toml:"price"`
	Description string `toml:"description"`
	Emoji       string `toml:"emoji"`
}

// Economy holds the tunable numbers of the virtual economy
type Economy struct {
	DailyReward     int64            `toml:"daily_reward"`
	WorkMin         int64            `toml:"work_min"`
	WorkMax         int64            `toml:"work_max"`
	WorkJobs        []string         `toml:"work_jobs"`
	BusinessTypes   []BusinessType   `toml:"business_types"`
	DefaultSalaries map[string]int64 `toml:"default_salaries"`
	ShopCategories  []string         `toml:"shop_categories"`
	ShopSeed        []ShopSeed       `toml:"shop_seed"`
}

// DefaultEconomy returns the built-in economy settings
func DefaultEconomy() *Economy {
	return &Economy{
		DailyReward: 10000,
		WorkMin:     5000,
		WorkMax:     20000,
		WorkJobs: []string{
			"worked at a coffee shop ☕",
			"fixed some computers 💻",
			"delivered packages 📦",
			"did some freelance work 💼",
			"worked as a cashier 🏪",
			"did some gardening 🌱",
			"fixed cars at a garage 🚗",
			"did some construction work 🏗️",
		},
		BusinessTypes: []BusinessType{
			{Key: "cafe", MinInvestment: 10000, ProfitRate: 0.15, Emoji: "☕"},
			{Key: "shop", MinInvestment: 20000, ProfitRate: 0.20, Emoji: "🛍️"},
			{Key: "factory", MinInvestment: 50000, ProfitRate: 0.25, Emoji: "🏭"},
			{Key: "farm", MinInvestment: 30000, ProfitRate: 0.18, Emoji: "🚜"},
			{Key: "tech", MinInvestment: 100000, ProfitRate: 0.30, Emoji: "💻"},
			{Key: "restaurant", MinInvestment: 40000, ProfitRate: 0.22, Emoji: "🍽️"},
		},
		DefaultSalaries: map[string]int64{
			"default":   1000,
			"Admin":     5000,
			"Moderator": 3000,
		},
		ShopCategories: []string{"roles", "vehicles", "properties", "aircraft", "yachts"},
	}
}

// LoadEconomy reads economy settings from a TOML file.
// Fields absent from the file keep their defaults; an empty path returns the defaults.
func LoadEconomy(path string) (*Economy, error) {
	economy := DefaultEconomy()
	if path == "" {
		return economy, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open economy file: %w", err)
	}
	defer f.Close()

	if err := toml.NewDecoder(f).Decode(economy); err != nil {
		return nil, fmt.Errorf("failed to decode economy file %s: %w", path, err)
	}

	if err := economy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid economy file %s: %w", path, err)
	}
	return economy, nil
}

// Validate checks the economy settings for values the services cannot work with
func (e *Economy) Validate() error {
	if e.DailyReward <= 0 {
		return fmt.Errorf("daily_reward must be positive")
	}
	if e.WorkMin <= 0 || e.WorkMax < e.WorkMin {
		return fmt.Errorf("work range %d-%d is invalid", e.WorkMin, e.WorkMax)
	}
	if len(e.WorkJobs) == 0 {
		return fmt.Errorf("work_jobs must not be empty")
	}
	seen := make(map[string]bool, len(e.BusinessTypes))
	for _, bt := range e.BusinessTypes {
		key := strings.ToLower(bt.Key)
		if key == "" || seen[key] {
			return fmt.Errorf("business type %q is empty or duplicated", bt.Key)
		}
		if bt.MinInvestment <= 0 || bt.ProfitRate <= 0 {
			return fmt.Errorf("business type %q needs a positive minimum and rate", bt.Key)
		}
		seen[key] = true
	}
	return nil
}

// BusinessType looks up a business type by key, case-insensitively
func (e *Economy) BusinessType(key string) (BusinessType, bool) {
	for _, bt := range e.BusinessTypes {
		if strings.EqualFold(bt.Key, key) {
			return bt, true
		}
	}
	return BusinessType{}, false
}
