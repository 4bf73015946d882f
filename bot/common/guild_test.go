package common

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func testRoles() []*discordgo.Role {
	return []*discordgo.Role{
		{ID: "r1", Name: "Admin", Permissions: discordgo.PermissionAdministrator},
		{ID: "r2", Name: "Moderator", Permissions: discordgo.PermissionManageMessages},
		{ID: "r3", Name: "Muted"},
	}
}

func TestFindRoleByName(t *testing.T) {
	roles := testRoles()
	assert.Equal(t, "r2", FindRoleByName(roles, "moderator").ID)
	assert.Equal(t, "r3", FindRoleByName(roles, "MUTED").ID)
	assert.Nil(t, FindRoleByName(roles, "VIP"))
}

func TestMemberRoles(t *testing.T) {
	roles := testRoles()
	mod := &discordgo.Member{Roles: []string{"r2", "gone"}}
	admin := &discordgo.Member{Roles: []string{"r1", "r3"}}

	assert.Equal(t, []string{"Moderator"}, MemberRoleNames(roles, mod))
	assert.ElementsMatch(t, []string{"Admin", "Muted"}, MemberRoleNames(roles, admin))

	assert.False(t, HasAdministrator(roles, mod))
	assert.True(t, HasAdministrator(roles, admin))

	assert.True(t, HasRole(admin, "r3"))
	assert.False(t, HasRole(mod, "r3"))
}

func TestFindTextChannel(t *testing.T) {
	channels := []*discordgo.Channel{
		{ID: "c0", Name: "welcome", Type: discordgo.ChannelTypeGuildVoice},
		{ID: "c1", Name: "General", Type: discordgo.ChannelTypeGuildText},
		{ID: "c2", Name: "welcome", Type: discordgo.ChannelTypeGuildText},
	}
	assert.Equal(t, "c2", FindTextChannel(channels, "welcome", "general").ID)
	assert.Equal(t, "c1", FindTextChannel(channels, "general").ID)
	assert.Nil(t, FindTextChannel(channels, "rules"))
}
