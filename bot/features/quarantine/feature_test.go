package quarantine

import (
	"context"
	"testing"

	"guildkeeper/bot/bottest"
	"guildkeeper/bot/common"
	"guildkeeper/models"
	"guildkeeper/service"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFeature(t *testing.T) (*Feature, *service.QuarantineService, *bottest.Messenger) {
	t.Helper()
	svc := service.NewQuarantineService(bottest.NewState(t))
	messenger := &bottest.Messenger{}
	return New(svc, messenger, []string{"Admin", "Mod"}), svc, messenger
}

func TestConfine_RemovesMessagesOutsideQuarantineChannel(t *testing.T) {
	f, svc, messenger := newFeature(t)
	require.NoError(t, svc.Quarantine(context.Background(), &models.Quarantine{GuildID: "g1", UserID: "u1", ChannelID: "qc"}))

	assert.False(t, f.Confine(bottest.Message("g1", "qc", "u1", "hello")))
	assert.False(t, f.Confine(bottest.Message("g1", "general", "u2", "hello")))
	assert.False(t, f.Confine(bottest.Message("g2", "general", "u1", "hello")))

	msg := bottest.Message("g1", "general", "u1", "hello")
	require.True(t, f.Confine(msg))
	assert.Equal(t, []string{msg.ID}, messenger.Deleted())
	dm := messenger.Last()
	assert.Equal(t, "dm-u1", dm.ChannelID)
	assert.Equal(t, "⚠️ You are quarantined! You can only talk in the quarantine channel.", dm.Content)
}

func TestList(t *testing.T) {
	f, svc, messenger := newFeature(t)
	list := bottest.Find(t, f.Commands(), "quarantinelist")
	msg := bottest.Message("g1", "c1", "mod", "")

	require.NoError(t, bottest.Invoke(t, messenger, list, msg))
	assert.Equal(t, "No users are currently quarantined.", messenger.Last().Embed.Description)

	require.NoError(t, svc.Quarantine(context.Background(), &models.Quarantine{
		GuildID: "g1", UserID: "u1", ChannelID: "qc", Reason: "raid", QuarantinedBy: "mod",
	}))
	require.NoError(t, bottest.Invoke(t, messenger, list, msg))
	embed := messenger.Last().Embed
	assert.Equal(t, "🦠 Quarantined Users", embed.Title)
	assert.Equal(t, "Total: 1", embed.Description)
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, "👤 User u1", embed.Fields[0].Name)
	assert.Contains(t, embed.Fields[0].Value, "**Reason:** raid")
	assert.Contains(t, embed.Fields[0].Value, "**By:** <@mod>")
}

func TestRelease(t *testing.T) {
	f, svc, messenger := newFeature(t)
	release := bottest.Find(t, f.Commands(), "unquarantine")
	target := &discordgo.User{ID: "101", Username: "target"}
	msg := bottest.Message("g1", "c1", "mod", "")
	msg.Mentions = []*discordgo.User{target}

	err := bottest.Invoke(t, messenger, release, msg, "<@101>")
	var botErr *common.BotError
	require.ErrorAs(t, err, &botErr)
	assert.Equal(t, "<@101> is not quarantined!", botErr.Message)

	require.NoError(t, svc.Quarantine(context.Background(), &models.Quarantine{GuildID: "g1", UserID: "101", ChannelID: "qc"}))
	require.NoError(t, bottest.Invoke(t, messenger, release, msg, "<@101>"))

	_, ok := svc.Get("g1", "101")
	assert.False(t, ok)
	sent := messenger.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "✅ User Released", sent[0].Embed.Title)
	assert.Equal(t, "dm-101", sent[1].ChannelID)
	assert.Equal(t, "🎉 You have been released from quarantine in the server!", sent[1].Content)
}

func TestIsStaff(t *testing.T) {
	f, _, _ := newFeature(t)
	assert.True(t, f.isStaff(&discordgo.Role{Name: "Mod"}))
	assert.True(t, f.isStaff(&discordgo.Role{Name: "Owners", Permissions: discordgo.PermissionAdministrator}))
	assert.False(t, f.isStaff(&discordgo.Role{Name: "mod"}))
	assert.Equal(t, "quarantine-spammer", ChannelName(&discordgo.User{Username: "Spammer"}))
}
