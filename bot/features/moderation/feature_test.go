package moderation

import (
	"context"
	"testing"

	"guildkeeper/bot/bottest"
	"guildkeeper/bot/common"
	"guildkeeper/service"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFeature(t *testing.T) (*Feature, *service.ModerationService, *bottest.Messenger) {
	t.Helper()
	messenger := &bottest.Messenger{}
	moderation := service.NewModerationService(bottest.NewState(t))
	return New(moderation, messenger), moderation, messenger
}

func message(author string, mentions ...*discordgo.User) *discordgo.Message {
	msg := bottest.Message("g1", "c1", author, "")
	msg.Mentions = mentions
	return msg
}

func TestWarnAndWarnings(t *testing.T) {
	f, moderation, messenger := newFeature(t)
	target := &discordgo.User{ID: "200", Username: "rowdy"}
	warn := bottest.Find(t, f.Commands(), "warn")

	require.NoError(t, bottest.Invoke(t, messenger, warn, message("100", target), "<@200>", "spamming", "links"))
	require.NoError(t, bottest.Invoke(t, messenger, warn, message("100", target), "<@200>"))
	embed := messenger.Last().Embed
	assert.Equal(t, "⚠️ User Warned", embed.Title)
	assert.Contains(t, embed.Description, "**Reason:** No reason")
	assert.Contains(t, embed.Description, "**Total Warnings:** 2")
	assert.Equal(t, 2, moderation.Warnings("200"))

	require.NoError(t, bottest.Invoke(t, messenger, warn, message("100", target), "<@200>"))
	require.NoError(t, bottest.Invoke(t, messenger, bottest.Find(t, f.Commands(), "warnings"), message("100", target), "<@200>"))
	embed = messenger.Last().Embed
	assert.Equal(t, "📊 Warnings for rowdy", embed.Title)
	assert.Equal(t, common.ColorError, embed.Color)

	require.NoError(t, bottest.Invoke(t, messenger, bottest.Find(t, f.Commands(), "warnings"), message("300")))
	assert.Equal(t, common.ColorInfo, messenger.Last().Embed.Color)
}

func TestAFKLifecycle(t *testing.T) {
	f, moderation, messenger := newFeature(t)

	require.NoError(t, bottest.Invoke(t, messenger, bottest.Find(t, f.Commands(), "afk"), message("100"), "out", "to", "lunch"))
	assert.Equal(t, "⏸️ AFK Set", messenger.Last().Embed.Title)
	afk, ok := moderation.GetAFK("100")
	require.True(t, ok)
	assert.Equal(t, "out to lunch", afk.Reason)

	away := &discordgo.User{ID: "100", Username: "sleeper"}
	f.NotifyMentionedAFK(message("200", away))
	assert.Contains(t, messenger.Last().Content, "💤 **sleeper** is AFK: out to lunch")

	f.ClearAFK(context.Background(), message("100"))
	assert.Equal(t, "👋 Welcome back <@100>! You were AFK for 0 minutes.", messenger.Last().Content)
	_, ok = moderation.GetAFK("100")
	assert.False(t, ok)

	before := len(messenger.Sent())
	f.ClearAFK(context.Background(), message("100"))
	f.NotifyMentionedAFK(message("200", away))
	assert.Len(t, messenger.Sent(), before)
}

func TestArgumentValidation(t *testing.T) {
	f, _, messenger := newFeature(t)
	target := &discordgo.User{ID: "200", Username: "rowdy"}

	var botErr *common.BotError
	err := bottest.Invoke(t, messenger, bottest.Find(t, f.Commands(), "mute"), message("100", target), "<@200>", "0")
	require.ErrorAs(t, err, &botErr)
	assert.Equal(t, "Duration must be a positive number of minutes.", botErr.Message)

	err = bottest.Invoke(t, messenger, bottest.Find(t, f.Commands(), "kick"), message("100"), "someone")
	require.ErrorAs(t, err, &botErr)
	assert.Equal(t, "Could not find member `someone`.", botErr.Message)

	require.NoError(t, bottest.Invoke(t, messenger, bottest.Find(t, f.Commands(), "clear"), message("100"), "500"))
	assert.Equal(t, "Amount must be between 1 and 100.", messenger.Last().Embed.Description)
}
