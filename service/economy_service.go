package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"guildkeeper/models"

	log "github.com/sirupsen/logrus"
)

const (
	DailyCooldown = 24 * time.Hour
	WorkCooldown  = time.Hour

	// TransferTaxRate is the fraction of every transfer withheld as tax
	TransferTaxRate = 0.02

	// GambleWinChance is the probability that a gamble pays out
	GambleWinChance = 0.45
	// GambleWinMultiplier is applied to the stake on a gamble win
	GambleWinMultiplier = 1.5
	// CoinflipWinMultiplier is applied to the stake on a correct coinflip call
	CoinflipWinMultiplier = 2
)

// Amount is a user-supplied money amount that may be the keyword "all"
type Amount struct {
	Value int64
	All   bool
}

// ParseAmount parses a positive integer or the keyword "all"
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if strings.EqualFold(s, "all") {
		return Amount{All: true}, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Amount{}, fmt.Errorf("%q is not a number: %w", s, ErrInvalidAmount)
	}
	return Amount{Value: v}, nil
}

// resolve turns "all" into the available balance
func (a Amount) resolve(available int64) int64 {
	if a.All {
		return available
	}
	return a.Value
}

// WorkResult describes a completed shift
type WorkResult struct {
	Amount  int64
	Job     string
	Account models.Account
}

// TransferResult describes a completed transfer
type TransferResult struct {
	Amount   int64
	Tax      int64
	Received int64
	Sender   models.Account
}

// GameResult describes the outcome of a gamble or coinflip
type GameResult struct {
	Won     bool
	Stake   int64
	Payout  int64  // credited on a win
	Outcome string // coin side for coinflips
	Account models.Account
}

// LeaderboardEntry is one row of the wealth leaderboard
type LeaderboardEntry struct {
	Rank   int
	UserID string
	Wallet int64
	Bank   int64
	Total  int64
}

// EconomyService implements the ledger operations
type EconomyService struct {
	state *State
}

// NewEconomyService creates a new economy service
func NewEconomyService(state *State) *EconomyService {
	return &EconomyService{state: state}
}

// Balance returns a copy of a user's ledger entry. Unknown users read as zero.
func (s *EconomyService) Balance(userID string) models.Account {
	var account models.Account
	s.state.view(func() {
		if existing, ok := s.state.accounts[userID]; ok {
			account = *existing.Clone()
		} else {
			account = *models.NewAccount(userID)
		}
	})
	return account
}

// Daily credits the daily reward once per 24 hours
func (s *EconomyService) Daily(ctx context.Context, userID string) (int64, models.Account, error) {
	var result models.Account
	reward := s.state.economy.DailyReward

	err := s.state.update(ctx, func(tx EventPublisher) error {
		now := s.state.Now()
		account := s.state.accountLocked(userID)
		if left := remaining(now, account.LastDaily, DailyCooldown); left > 0 {
			return &CooldownError{Action: "daily", Remaining: left}
		}

		applyBalanceChange(tx, account, ReasonDaily, reward, 0)
		account.LastDaily = &now
		s.state.saveAccountLocked(ctx, account)
		result = *account.Clone()
		return nil
	})
	if err != nil {
		return 0, models.Account{}, err
	}

	log.WithFields(log.Fields{"user_id": userID, "amount": reward}).Info("Daily reward claimed")
	return reward, result, nil
}

// Work credits a random wage once per hour
func (s *EconomyService) Work(ctx context.Context, userID string) (*WorkResult, error) {
	var result *WorkResult
	economy := s.state.economy

	err := s.state.update(ctx, func(tx EventPublisher) error {
		now := s.state.Now()
		account := s.state.accountLocked(userID)
		if left := remaining(now, account.LastWork, WorkCooldown); left > 0 {
			return &CooldownError{Action: "work", Remaining: left}
		}

		amount := economy.WorkMin + int64(s.state.rng.Intn(int(economy.WorkMax-economy.WorkMin)+1))
		job := economy.WorkJobs[s.state.rng.Intn(len(economy.WorkJobs))]

		applyBalanceChange(tx, account, ReasonWork, amount, 0)
		account.LastWork = &now
		s.state.saveAccountLocked(ctx, account)
		result = &WorkResult{Amount: amount, Job: job, Account: *account.Clone()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Deposit moves money from wallet to bank
func (s *EconomyService) Deposit(ctx context.Context, userID string, amount Amount) (int64, models.Account, error) {
	return s.move(ctx, userID, amount, true)
}

// Withdraw moves money from bank to wallet
func (s *EconomyService) Withdraw(ctx context.Context, userID string, amount Amount) (int64, models.Account, error) {
	return s.move(ctx, userID, amount, false)
}

func (s *EconomyService) move(ctx context.Context, userID string, amount Amount, toBank bool) (int64, models.Account, error) {
	var moved int64
	var result models.Account

	err := s.state.update(ctx, func(tx EventPublisher) error {
		account := s.state.accountLocked(userID)
		available, shortErr := account.Wallet, ErrInsufficientFunds
		if !toBank {
			available, shortErr = account.Bank, ErrInsufficientBank
		}

		moved = amount.resolve(available)
		if moved <= 0 {
			return ErrInvalidAmount
		}
		if moved > available {
			return shortErr
		}

		if toBank {
			applyBalanceChange(tx, account, ReasonDeposit, -moved, moved)
		} else {
			applyBalanceChange(tx, account, ReasonWithdraw, moved, -moved)
		}
		s.state.saveAccountLocked(ctx, account)
		result = *account.Clone()
		return nil
	})
	if err != nil {
		return 0, models.Account{}, err
	}
	return moved, result, nil
}

// TransferTax is the tax withheld from a transfer of amount
func TransferTax(amount int64) int64 {
	return int64(float64(amount) * TransferTaxRate)
}

// Transfer moves wallet money between users, withholding the transfer tax
func (s *EconomyService) Transfer(ctx context.Context, fromID, toID string, toIsBot bool, amount int64) (*TransferResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if fromID == toID {
		return nil, ErrSelfTransfer
	}
	if toIsBot {
		return nil, ErrBotTarget
	}

	var result *TransferResult
	err := s.state.update(ctx, func(tx EventPublisher) error {
		sender := s.state.accountLocked(fromID)
		if sender.Wallet < amount {
			return ErrInsufficientFunds
		}
		receiver := s.state.accountLocked(toID)

		tax := TransferTax(amount)
		applyBalanceChange(tx, sender, ReasonTransferOut, -amount, 0)
		applyBalanceChange(tx, receiver, ReasonTransferIn, amount-tax, 0)
		s.state.saveAccountsLocked(ctx, []*models.Account{sender, receiver})

		result = &TransferResult{Amount: amount, Tax: tax, Received: amount - tax, Sender: *sender.Clone()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"from":   fromID,
		"to":     toID,
		"amount": amount,
		"tax":    result.Tax,
	}).Info("Transfer completed")
	return result, nil
}

// Gamble stakes wallet money on a 45% chance of winning 1.5x the stake
func (s *EconomyService) Gamble(ctx context.Context, userID string, stake int64) (*GameResult, error) {
	return s.play(ctx, userID, stake, ReasonGamble, func() (bool, int64, string) {
		won := s.state.rng.Float64() < GambleWinChance
		return won, int64(float64(stake) * GambleWinMultiplier), ""
	})
}

// ParseCoinSide normalises a coin call to "heads" or "tails"
func ParseCoinSide(side string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(side)) {
	case "h", "head", "heads":
		return "heads", nil
	case "t", "tail", "tails":
		return "tails", nil
	}
	return "", ErrInvalidCoinSide
}

// Coinflip stakes wallet money on a coin call paying twice the stake
func (s *EconomyService) Coinflip(ctx context.Context, userID, side string, stake int64) (*GameResult, error) {
	call, err := ParseCoinSide(side)
	if err != nil {
		return nil, err
	}
	return s.play(ctx, userID, stake, ReasonCoinflip, func() (bool, int64, string) {
		outcome := "heads"
		if s.state.rng.Intn(2) == 1 {
			outcome = "tails"
		}
		return outcome == call, stake * CoinflipWinMultiplier, outcome
	})
}

func (s *EconomyService) play(ctx context.Context, userID string, stake int64, reason string, roll func() (bool, int64, string)) (*GameResult, error) {
	if stake <= 0 {
		return nil, ErrInvalidAmount
	}

	var result *GameResult
	err := s.state.update(ctx, func(tx EventPublisher) error {
		account := s.state.accountLocked(userID)
		if account.Wallet < stake {
			return ErrInsufficientFunds
		}

		won, payout, outcome := roll()
		if won {
			applyBalanceChange(tx, account, reason, payout, 0)
		} else {
			applyBalanceChange(tx, account, reason, -stake, 0)
			payout = 0
		}
		s.state.saveAccountLocked(ctx, account)
		result = &GameResult{Won: won, Stake: stake, Payout: payout, Outcome: outcome, Account: *account.Clone()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Leaderboard returns the richest users with a positive total, and the caller's rank (0 if unranked)
func (s *EconomyService) Leaderboard(callerID string, limit int) ([]LeaderboardEntry, int) {
	var entries []LeaderboardEntry
	s.state.view(func() {
		for id, account := range s.state.accounts {
			if account.Total() > 0 {
				entries = append(entries, LeaderboardEntry{
					UserID: id,
					Wallet: account.Wallet,
					Bank:   account.Bank,
					Total:  account.Total(),
				})
			}
		}
	})

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Total != entries[j].Total {
			return entries[i].Total > entries[j].Total
		}
		return entries[i].UserID < entries[j].UserID
	})

	callerRank := 0
	for i := range entries {
		entries[i].Rank = i + 1
		if entries[i].UserID == callerID {
			callerRank = i + 1
		}
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, callerRank
}

// GiveMoney credits a user's wallet
func (s *EconomyService) GiveMoney(ctx context.Context, userID string, amount int64) (models.Account, error) {
	if amount <= 0 {
		return models.Account{}, ErrInvalidAmount
	}
	var result models.Account
	err := s.state.update(ctx, func(tx EventPublisher) error {
		account := s.state.accountLocked(userID)
		applyBalanceChange(tx, account, ReasonAdminGive, amount, 0)
		s.state.saveAccountLocked(ctx, account)
		result = *account.Clone()
		return nil
	})
	return result, err
}

// SetBalance overwrites a user's wallet
func (s *EconomyService) SetBalance(ctx context.Context, userID string, amount int64) (models.Account, error) {
	if amount < 0 {
		return models.Account{}, fmt.Errorf("balance cannot be negative: %w", ErrInvalidAmount)
	}
	var result models.Account
	err := s.state.update(ctx, func(tx EventPublisher) error {
		account := s.state.accountLocked(userID)
		applyBalanceChange(tx, account, ReasonAdminSetBalance, amount-account.Wallet, 0)
		s.state.saveAccountLocked(ctx, account)
		result = *account.Clone()
		return nil
	})
	return result, err
}
