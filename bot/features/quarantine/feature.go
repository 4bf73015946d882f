package quarantine

import (
	"guildkeeper/bot/common"
	"guildkeeper/service"

	"github.com/bwmarrin/discordgo"
)

// CategoryName is the channel category holding quarantine channels
const CategoryName = "Quarantine"

type Feature struct {
	quarantine *service.QuarantineService
	messenger  common.Messenger
	staffRoles map[string]bool
}

func New(quarantine *service.QuarantineService, messenger common.Messenger, staffRoles []string) *Feature {
	staff := make(map[string]bool, len(staffRoles))
	for _, role := range staffRoles {
		staff[role] = true
	}
	return &Feature{
		quarantine: quarantine,
		messenger:  messenger,
		staffRoles: staff,
	}
}

func (f *Feature) Commands() []common.Command {
	return []common.Command{
		{Name: "quarantine", Aliases: []string{"q"}, Category: "Moderation", Usage: "<@user> [reason]", Description: "Confine a member to a private channel", Permission: discordgo.PermissionManageMessages, Handler: f.handleQuarantine},
		{Name: "unquarantine", Aliases: []string{"uq"}, Category: "Moderation", Usage: "<@user>", Description: "Release a member from quarantine", Permission: discordgo.PermissionManageMessages, Handler: f.handleRelease},
		{Name: "quarantinelist", Aliases: []string{"qlist"}, Category: "Moderation", Description: "List quarantined members", Permission: discordgo.PermissionManageMessages, Handler: f.handleList},
	}
}

// isStaff reports whether a role may see quarantine channels
func (f *Feature) isStaff(role *discordgo.Role) bool {
	return f.staffRoles[role.Name] || role.Permissions&discordgo.PermissionAdministrator != 0
}
