package service

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Errors returned to users. Handlers map them to friendly messages.
var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInsufficientBank    = errors.New("insufficient bank balance")
	ErrCooldown            = errors.New("action is on cooldown")
	ErrSelfTransfer        = errors.New("cannot transfer to yourself")
	ErrBotTarget           = errors.New("cannot target a bot")
	ErrInvalidCoinSide     = errors.New("invalid coin side")
	ErrInvestmentTooLow    = errors.New("investment below minimum")
	ErrAlreadyOwnsBusiness = errors.New("user already owns a business")
	ErrUnknownBusinessType = errors.New("unknown business type")
	ErrNoBusiness          = errors.New("user has no business")
	ErrMaxLevel            = errors.New("business is at max level")
	ErrUnknownCategory     = errors.New("unknown shop category")
	ErrItemNotFound        = errors.New("item not found")
	ErrDuplicateItem       = errors.New("item already exists")
	ErrAlreadyOwned        = errors.New("item already owned")
	ErrAlreadyQuarantined  = errors.New("user is already quarantined")
	ErrNotQuarantined      = errors.New("user is not quarantined")
	ErrNotMuted            = errors.New("user is not muted")
	ErrInvalidDuration     = errors.New("duration must be positive")
	ErrGameActive          = errors.New("a game is already running")
	ErrNoActiveGame        = errors.New("no game is running")
	ErrGamePaused          = errors.New("game is already paused")
	ErrGameNotPaused       = errors.New("game is not paused")
	ErrUnknownContinent    = errors.New("unknown continent")
	ErrInvalidTriviaMode   = errors.New("invalid game type")
	ErrTaskRunExists       = errors.New("task run already recorded for slot")
)

// CooldownError reports how long until a timed action is available again
type CooldownError struct {
	Action    string
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s is on cooldown for %s", e.Action, FormatDuration(e.Remaining))
}

func (e *CooldownError) Is(target error) bool {
	return target == ErrCooldown
}

// MinimumInvestmentError reports the minimum investment a business type requires
type MinimumInvestmentError struct {
	Type    string
	Minimum int64
}

func (e *MinimumInvestmentError) Error() string {
	return fmt.Sprintf("%s requires a minimum investment of %d", e.Type, e.Minimum)
}

func (e *MinimumInvestmentError) Is(target error) bool {
	return target == ErrInvestmentTooLow
}

// ItemNotFoundError carries close matches for an unknown shop item
type ItemNotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *ItemNotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("item %q not found", e.Name)
	}
	return fmt.Sprintf("item %q not found, did you mean %s", e.Name, strings.Join(e.Suggestions, ", "))
}

func (e *ItemNotFoundError) Is(target error) bool {
	return target == ErrItemNotFound
}
