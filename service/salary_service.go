package service

import (
	"context"
	"sort"
	"strings"

	"guildkeeper/models"

	log "github.com/sirupsen/logrus"
)

// DefaultSalaryKey names the salary paid to members without a better-paying role
const DefaultSalaryKey = "default"

// Member is a guild member as seen by the salary run
type Member struct {
	UserID    string
	Bot       bool
	RoleNames []string
}

// RoleSalary is one row of the salary table
type RoleSalary struct {
	Role   string
	Amount int64
}

// RolePayout aggregates what was paid under one role
type RolePayout struct {
	Role   string
	Count  int
	Amount int64
}

// PayoutSummary describes a salary run
type PayoutSummary struct {
	Paid   int
	Total  int64
	ByRole []RolePayout
}

// SalaryService implements role salaries
type SalaryService struct {
	state *State
}

// NewSalaryService creates a new salary service
func NewSalaryService(state *State) *SalaryService {
	return &SalaryService{state: state}
}

// SetSalary stores the salary of a role. The caller resolves the exact role name.
func (s *SalaryService) SetSalary(ctx context.Context, role string, amount int64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	return s.state.update(ctx, func(tx EventPublisher) error {
		s.state.salaries[role] = amount
		s.state.logStoreError(s.state.store.Salaries().Upsert(ctx, role, amount), "salary", log.Fields{"role": role})
		return nil
	})
}

// List returns the default salary first, then role salaries by amount descending
func (s *SalaryService) List() []RoleSalary {
	var list []RoleSalary
	var def *RoleSalary
	s.state.view(func() {
		for role, amount := range s.state.salaries {
			if role == DefaultSalaryKey {
				def = &RoleSalary{Role: role, Amount: amount}
				continue
			}
			list = append(list, RoleSalary{Role: role, Amount: amount})
		}
	})

	sort.Slice(list, func(i, j int) bool {
		if list[i].Amount != list[j].Amount {
			return list[i].Amount > list[j].Amount
		}
		return list[i].Role < list[j].Role
	})
	if def != nil {
		list = append([]RoleSalary{*def}, list...)
	}
	return list
}

// salaryForLocked returns the best salary among the member's roles and the role it came from
func (s *SalaryService) salaryForLocked(roleNames []string) (int64, string) {
	best, bestRole := s.state.salaries[DefaultSalaryKey], DefaultSalaryKey
	for _, name := range roleNames {
		for role, amount := range s.state.salaries {
			if role != DefaultSalaryKey && strings.EqualFold(role, name) && amount > best {
				best, bestRole = amount, role
			}
		}
	}
	return best, bestRole
}

// SalaryFor returns the salary a member with these roles earns
func (s *SalaryService) SalaryFor(roleNames []string) int64 {
	var amount int64
	s.state.view(func() {
		amount, _ = s.salaryForLocked(roleNames)
	})
	return amount
}

// Pay credits each non-bot member's bank with their salary.
// A user listed several times (one entry per guild) is paid once, at their best salary.
func (s *SalaryService) Pay(ctx context.Context, members []Member) (*PayoutSummary, error) {
	summary := &PayoutSummary{}

	err := s.state.update(ctx, func(tx EventPublisher) error {
		type payout struct {
			amount int64
			role   string
		}
		best := make(map[string]payout)
		var order []string
		for _, member := range members {
			if member.Bot {
				continue
			}
			amount, role := s.salaryForLocked(member.RoleNames)
			current, seen := best[member.UserID]
			if !seen {
				order = append(order, member.UserID)
			}
			if !seen || amount > current.amount {
				best[member.UserID] = payout{amount: amount, role: role}
			}
		}

		byRole := make(map[string]*RolePayout)
		var changed []*models.Account
		for _, userID := range order {
			p := best[userID]
			if p.amount <= 0 {
				continue
			}
			account := s.state.accountLocked(userID)
			applyBalanceChange(tx, account, ReasonSalary, 0, p.amount)
			changed = append(changed, account)

			summary.Paid++
			summary.Total += p.amount
			rp, ok := byRole[p.role]
			if !ok {
				rp = &RolePayout{Role: p.role}
				byRole[p.role] = rp
			}
			rp.Count++
			rp.Amount += p.amount
		}
		s.state.saveAccountsLocked(ctx, changed)

		for _, rp := range byRole {
			summary.ByRole = append(summary.ByRole, *rp)
		}
		sort.Slice(summary.ByRole, func(i, j int) bool {
			if summary.ByRole[i].Amount != summary.ByRole[j].Amount {
				return summary.ByRole[i].Amount > summary.ByRole[j].Amount
			}
			return summary.ByRole[i].Role < summary.ByRole[j].Role
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"paid":  summary.Paid,
		"total": summary.Total,
	}).Info("Salaries paid")
	return summary, nil
}
