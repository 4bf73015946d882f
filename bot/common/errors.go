package common

import (
	"errors"
	"fmt"
	"strings"

	"guildkeeper/service"
)

// BotError is a command failure shown to the user
type BotError struct {
	Title   string
	Message string
}

func (e *BotError) Error() string {
	return e.Title + ": " + e.Message
}

// NewBotError creates a user-facing error
func NewBotError(title, format string, args ...interface{}) *BotError {
	return &BotError{Title: title, Message: fmt.Sprintf(format, args...)}
}

// UnknownCommand is returned for a prefixed message naming no command
func UnknownCommand(prefix string) *BotError {
	return NewBotError("Command Not Found", "Command not found! Use `%shelp` to see all commands.", prefix)
}

// PermissionDenied is returned when the caller lacks the command's permission
func PermissionDenied() *BotError {
	return NewBotError("Permission Denied", "You don't have permission to use this command!")
}

// MissingArgument is returned when a required argument is absent
func MissingArgument(prefix, name, usage string) *BotError {
	return NewBotError("Missing Argument", "Missing required argument!\nUsage: `%s%s %s`", prefix, name, usage)
}

// InvalidArgument is returned when an argument cannot be parsed
func InvalidArgument(format string, args ...interface{}) *BotError {
	return NewBotError("Invalid Argument", format, args...)
}

// GenericError is shown for failures the user cannot act on
var GenericError = NewBotError("Error", "Something went wrong. Please try again.")

// sentinel messages for service errors
var userMessages = []struct {
	err     error
	title   string
	message string
}{
	{service.ErrInsufficientFunds, "Insufficient Funds", "You don't have enough money in your wallet."},
	{service.ErrInsufficientBank, "Insufficient Funds", "You don't have enough money in your bank."},
	{service.ErrInvalidAmount, "Invalid Amount", "Amount must be positive."},
	{service.ErrSelfTransfer, "Error", "You can't transfer money to yourself."},
	{service.ErrBotTarget, "Error", "You can't transfer money to bots."},
	{service.ErrInvalidCoinSide, "Invalid Choice", "Choose heads or tails."},
	{service.ErrAlreadyOwnsBusiness, "Error", "You already own a business! Close it first."},
	{service.ErrUnknownBusinessType, "Invalid Business Type", "Unknown business type."},
	{service.ErrNoBusiness, "No Business", "You don't own a business."},
	{service.ErrMaxLevel, "Max Level", "Your business is already at max level."},
	{service.ErrUnknownCategory, "Invalid Category", "That shop category doesn't exist."},
	{service.ErrDuplicateItem, "Error", "An item with that name already exists in this category."},
	{service.ErrAlreadyOwned, "Already Owned", "You already own this item."},
	{service.ErrAlreadyQuarantined, "Error", "That user is already quarantined!"},
	{service.ErrNotQuarantined, "Error", "That user is not quarantined!"},
	{service.ErrNotMuted, "Error", "This user is not muted."},
	{service.ErrInvalidDuration, "Invalid Argument", "Duration must be positive."},
	{service.ErrGameActive, "Error", "A game is already running in this server."},
	{service.ErrNoActiveGame, "Error", "No game is running."},
	{service.ErrGamePaused, "Error", "The game is already paused."},
	{service.ErrGameNotPaused, "Error", "The game is not paused."},
	{service.ErrUnknownContinent, "Invalid Continent", "Unknown continent."},
	{service.ErrInvalidTriviaMode, "Invalid Game Type", "Game type must be `flag` or `capital`."},
}

var cooldownActions = map[string]string{
	"daily":   "claim your daily",
	"work":    "work",
	"collect": "collect profit",
}

// UserError translates an error into the message shown to the user.
// It returns false for unexpected errors, which the caller logs.
func UserError(err error) (*BotError, bool) {
	var botErr *BotError
	if errors.As(err, &botErr) {
		return botErr, true
	}

	var cooldown *service.CooldownError
	if errors.As(err, &cooldown) {
		action, ok := cooldownActions[cooldown.Action]
		if !ok {
			action = cooldown.Action
		}
		return NewBotError("⏳ Cooldown", "You can %s again in **%s**.", action, service.FormatDuration(cooldown.Remaining)), true
	}

	var minimum *service.MinimumInvestmentError
	if errors.As(err, &minimum) {
		return NewBotError("Investment Too Low", "Minimum investment for %s is %s.", minimum.Type, FormatMoney(minimum.Minimum)), true
	}

	var notFound *service.ItemNotFoundError
	if errors.As(err, &notFound) {
		msg := fmt.Sprintf("Item **%s** not found.", notFound.Name)
		if len(notFound.Suggestions) > 0 {
			msg += fmt.Sprintf("\nDid you mean: %s?", strings.Join(notFound.Suggestions, ", "))
		}
		return &BotError{Title: "Item Not Found", Message: msg}, true
	}

	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return &BotError{Title: m.title, Message: m.message}, true
		}
	}
	return nil, false
}
