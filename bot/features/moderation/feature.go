package moderation

import (
	"guildkeeper/bot/common"
	"guildkeeper/service"

	"github.com/bwmarrin/discordgo"
)

const (
	defaultReason     = "No reason"
	defaultClearCount = 10
	maxClearCount     = 100
)

type Feature struct {
	moderation *service.ModerationService
	messenger  common.Messenger
}

func New(moderation *service.ModerationService, messenger common.Messenger) *Feature {
	return &Feature{
		moderation: moderation,
		messenger:  messenger,
	}
}

func (f *Feature) Commands() []common.Command {
	return []common.Command{
		{Name: "afk", Category: "General", Usage: "[reason]", Description: "Set your AFK status", Handler: f.handleAFK},
		{Name: "mute", Category: "Moderation", Usage: "<@user> [minutes] [reason]", Description: "Mute a member (default 10 minutes)", Permission: discordgo.PermissionManageMessages, Handler: f.handleMute},
		{Name: "unmute", Category: "Moderation", Usage: "<@user>", Description: "Unmute a member", Permission: discordgo.PermissionManageMessages, Handler: f.handleUnmute},
		{Name: "kick", Category: "Moderation", Usage: "<@user> [reason]", Description: "Kick a member", Permission: discordgo.PermissionKickMembers, Handler: f.handleKick},
		{Name: "ban", Category: "Moderation", Usage: "<@user> [reason]", Description: "Ban a member", Permission: discordgo.PermissionBanMembers, Handler: f.handleBan},
		{Name: "clear", Aliases: []string{"purge"}, Category: "Moderation", Usage: "[amount]", Description: "Delete recent messages (1-100)", Permission: discordgo.PermissionManageMessages, Handler: f.handleClear},
		{Name: "warn", Category: "Moderation", Usage: "<@user> [reason]", Description: "Warn a member", Permission: discordgo.PermissionManageMessages, Handler: f.handleWarn},
		{Name: "warnings", Category: "Moderation", Usage: "[@user]", Description: "Show a member's warnings", Handler: f.handleWarnings},
	}
}
