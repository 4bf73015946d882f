package common

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"guildkeeper/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserError(t *testing.T) {
	t.Run("bot error passes through", func(t *testing.T) {
		in := InvalidArgument("bad %s", "thing")
		out, ok := UserError(fmt.Errorf("wrapped: %w", in))
		require.True(t, ok)
		assert.Same(t, in, out)
	})

	t.Run("cooldown reports remaining time", func(t *testing.T) {
		err := &service.CooldownError{Action: "work", Remaining: 90 * time.Minute}
		out, ok := UserError(err)
		require.True(t, ok)
		assert.Contains(t, out.Message, "work")
		assert.Contains(t, out.Message, service.FormatDuration(90*time.Minute))
	})

	t.Run("minimum investment", func(t *testing.T) {
		out, ok := UserError(&service.MinimumInvestmentError{Type: "tech", Minimum: 100000})
		require.True(t, ok)
		assert.Contains(t, out.Message, "$100,000")
	})

	t.Run("item suggestions", func(t *testing.T) {
		out, ok := UserError(&service.ItemNotFoundError{Name: "sprts car", Suggestions: []string{"Sports Car"}})
		require.True(t, ok)
		assert.Contains(t, out.Message, "Did you mean: Sports Car?")
	})

	t.Run("wrapped sentinel", func(t *testing.T) {
		out, ok := UserError(fmt.Errorf("buy: %w", service.ErrInsufficientFunds))
		require.True(t, ok)
		assert.Equal(t, "Insufficient Funds", out.Title)
	})

	t.Run("unexpected error", func(t *testing.T) {
		_, ok := UserError(errors.New("connection reset"))
		assert.False(t, ok)
	})
}

func TestStandardErrors(t *testing.T) {
	assert.Equal(t, "Command Not Found", UnknownCommand("!").Title)
	assert.Contains(t, UnknownCommand("?").Message, "`?help`")
	assert.Equal(t, "Permission Denied", PermissionDenied().Title)

	missing := MissingArgument("!", "transfer", "<@user> <amount>")
	assert.Equal(t, "Missing Argument", missing.Title)
	assert.Contains(t, missing.Message, "`!transfer <@user> <amount>`")

	embed := ErrorEmbed(missing)
	assert.Equal(t, "❌ Missing Argument", embed.Title)
	assert.Equal(t, ColorError, embed.Color)
}
