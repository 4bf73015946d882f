package service

import (
	"context"
	"strings"
	"time"

	"guildkeeper/config"
	"guildkeeper/events"
	"guildkeeper/models"

	log "github.com/sirupsen/logrus"
)

const (
	// MinBusinessInvestment applies to every business type
	MinBusinessInvestment = 10000
	// ProfitPeriod is how often a business yields its daily profit
	ProfitPeriod = 24 * time.Hour
	// UpgradeCostRate is the fraction of the investment an upgrade costs
	UpgradeCostRate = 0.5
	// UpgradeRateBonus is added to the profit rate on each upgrade
	UpgradeRateBonus = 0.02
)

// UpgradeResult describes a completed upgrade
type UpgradeResult struct {
	Cost     int64
	Business models.Business
}

// AccrualSummary describes one profit accrual pass
type AccrualSummary struct {
	Businesses int
	Total      int64
}

// BusinessService implements the business lifecycle
type BusinessService struct {
	state *State
}

// NewBusinessService creates a new business service
func NewBusinessService(state *State) *BusinessService {
	return &BusinessService{state: state}
}

// Types returns the business catalogue
func (s *BusinessService) Types() []config.BusinessType {
	return append([]config.BusinessType(nil), s.state.economy.BusinessTypes...)
}

// Create opens a business funded from the user's wallet
func (s *BusinessService) Create(ctx context.Context, userID, businessType, name string, investment int64) (*models.Business, error) {
	if investment < MinBusinessInvestment {
		return nil, &MinimumInvestmentError{Type: "any business", Minimum: MinBusinessInvestment}
	}

	var created *models.Business
	err := s.state.update(ctx, func(tx EventPublisher) error {
		account := s.state.accountLocked(userID)
		if account.Wallet < investment {
			return ErrInsufficientFunds
		}
		if account.Business != nil {
			return ErrAlreadyOwnsBusiness
		}
		bt, ok := s.state.economy.BusinessType(businessType)
		if !ok {
			return ErrUnknownBusinessType
		}
		if investment < bt.MinInvestment {
			return &MinimumInvestmentError{Type: bt.Key, Minimum: bt.MinInvestment}
		}

		applyBalanceChange(tx, account, ReasonBusinessCreate, -investment, 0)
		account.Business = &models.Business{
			Name:       strings.TrimSpace(name),
			Type:       bt.Key,
			Emoji:      bt.Emoji,
			Investment: investment,
			ProfitRate: bt.ProfitRate,
			Level:      1,
			CreatedAt:  s.state.Now(),
		}
		s.state.saveAccountLocked(ctx, account)

		tx.Publish(events.BusinessChangeEvent{UserID: userID, Action: "created", Amount: investment, Level: 1})
		created = account.Business.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":    userID,
		"type":       created.Type,
		"investment": investment,
	}).Info("Business created")
	return created, nil
}

// Get returns a copy of the user's business
func (s *BusinessService) Get(userID string) (*models.Business, error) {
	var business *models.Business
	s.state.view(func() {
		if account, ok := s.state.accounts[userID]; ok {
			business = account.Business.Clone()
		}
	})
	if business == nil {
		return nil, ErrNoBusiness
	}
	return business, nil
}

// NextCollection returns when the business can next be collected.
// The zero time means it is collectable now.
func NextCollection(b *models.Business) time.Time {
	if b.LastCollectedAt == nil {
		return time.Time{}
	}
	return b.LastCollectedAt.Add(ProfitPeriod)
}

// CollectProfit pays the daily profit to the wallet once per 24 hours
func (s *BusinessService) CollectProfit(ctx context.Context, userID string) (int64, *models.Business, error) {
	var profit int64
	var result *models.Business

	err := s.state.update(ctx, func(tx EventPublisher) error {
		account, ok := s.state.accounts[userID]
		if !ok || account.Business == nil {
			return ErrNoBusiness
		}
		business := account.Business
		now := s.state.Now()
		if left := remaining(now, business.LastCollectedAt, ProfitPeriod); left > 0 {
			return &CooldownError{Action: "collect", Remaining: left}
		}

		profit = business.DailyProfit()
		applyBalanceChange(tx, account, ReasonBusinessCollect, profit, 0)
		business.TotalProfit += profit
		business.LastCollectedAt = &now
		s.state.saveAccountLocked(ctx, account)

		tx.Publish(events.BusinessChangeEvent{UserID: userID, Action: "collected", Amount: profit, Level: business.Level})
		result = business.Clone()
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return profit, result, nil
}

// UpgradeCost is the price of the next upgrade
func UpgradeCost(b *models.Business) int64 {
	return int64(float64(b.Investment) * UpgradeCostRate)
}

// Upgrade raises the business level, investment and profit rate
func (s *BusinessService) Upgrade(ctx context.Context, userID string) (*UpgradeResult, error) {
	var result *UpgradeResult

	err := s.state.update(ctx, func(tx EventPublisher) error {
		account, ok := s.state.accounts[userID]
		if !ok || account.Business == nil {
			return ErrNoBusiness
		}
		business := account.Business
		if business.Level >= models.MaxBusinessLevel {
			return ErrMaxLevel
		}
		cost := UpgradeCost(business)
		if account.Wallet < cost {
			return ErrInsufficientFunds
		}

		applyBalanceChange(tx, account, ReasonBusinessUpgrade, -cost, 0)
		business.Level++
		business.Investment += cost
		business.ProfitRate += UpgradeRateBonus
		s.state.saveAccountLocked(ctx, account)

		tx.Publish(events.BusinessChangeEvent{UserID: userID, Action: "upgraded", Amount: cost, Level: business.Level})
		result = &UpgradeResult{Cost: cost, Business: *business.Clone()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Close removes the business and refunds half the investment
func (s *BusinessService) Close(ctx context.Context, userID string) (int64, *models.Business, error) {
	var refund int64
	var closed *models.Business

	err := s.state.update(ctx, func(tx EventPublisher) error {
		account, ok := s.state.accounts[userID]
		if !ok || account.Business == nil {
			return ErrNoBusiness
		}
		closed = account.Business.Clone()
		refund = closed.Investment / 2

		applyBalanceChange(tx, account, ReasonBusinessClose, refund, 0)
		account.Business = nil
		s.state.saveAccountLocked(ctx, account)

		tx.Publish(events.BusinessChangeEvent{UserID: userID, Action: "closed", Amount: refund, Level: closed.Level})
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return refund, closed, nil
}

// AccrueProfits adds each business's daily profit to its accumulated profit
// and restarts its collection timer. Wallets are untouched.
func (s *BusinessService) AccrueProfits(ctx context.Context) (AccrualSummary, error) {
	var summary AccrualSummary

	err := s.state.update(ctx, func(tx EventPublisher) error {
		now := s.state.Now()
		var changed []*models.Account
		for _, account := range s.state.accounts {
			business := account.Business
			if business == nil {
				continue
			}
			profit := business.DailyProfit()
			business.TotalProfit += profit
			business.LastCollectedAt = &now
			changed = append(changed, account)

			summary.Businesses++
			summary.Total += profit
		}
		s.state.saveAccountsLocked(ctx, changed)
		return nil
	})
	if err != nil {
		return AccrualSummary{}, err
	}

	log.WithFields(log.Fields{
		"businesses": summary.Businesses,
		"total":      summary.Total,
	}).Info("Business profits accrued")
	return summary, nil
}
