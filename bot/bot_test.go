package bot

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWelcomeChannel(t *testing.T) {
	text := func(id, name string) *discordgo.Channel {
		return &discordgo.Channel{ID: id, Name: name, Type: discordgo.ChannelTypeGuildText}
	}

	tests := []struct {
		name     string
		channels []*discordgo.Channel
		want     string
	}{
		{"welcome first", []*discordgo.Channel{text("1", "general"), text("2", "Welcome")}, "2"},
		{"general fallback", []*discordgo.Channel{text("1", "random"), text("3", "general")}, "3"},
		{"voice channels ignored", []*discordgo.Channel{{ID: "4", Name: "welcome", Type: discordgo.ChannelTypeGuildVoice}}, "sys"},
		{"system channel", nil, "sys"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WelcomeChannel(tt.channels, "sys"))
		})
	}
	assert.Empty(t, WelcomeChannel(nil, ""))
}

func TestWelcomeEmbed(t *testing.T) {
	guild := &discordgo.Guild{Name: "Atlas", MemberCount: 42}
	member := &discordgo.Member{User: &discordgo.User{ID: "7", Username: "neo", Avatar: "abc"}}

	embed := WelcomeEmbed(guild, member)
	assert.Equal(t, "Welcome", embed.Title)
	assert.Equal(t, "Welcome <@!7> to Atlas!", embed.Description)
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, "Member Count", embed.Fields[0].Name)
	assert.Equal(t, "42", embed.Fields[0].Value)
	require.NotNil(t, embed.Thumbnail)
	assert.Contains(t, embed.Thumbnail.URL, "avatars/7/abc")

	member.User.Avatar = ""
	assert.Nil(t, WelcomeEmbed(guild, member).Thumbnail)
}
