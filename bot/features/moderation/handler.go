package moderation

import (
	"fmt"
	"strconv"
	"time"

	"guildkeeper/bot/common"
	"guildkeeper/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleAFK(inv *common.Invocation) error {
	reason := inv.Rest(0)
	if reason == "" {
		reason = defaultReason
	}
	f.moderation.SetAFK(inv.Ctx, inv.AuthorID(), reason)
	inv.ReplyEmbedTemporary(common.NewEmbed(
		"⏸️ AFK Set",
		fmt.Sprintf("%s is now AFK\n**Reason:** %s", inv.Author().Mention(), reason),
		common.ColorInfo,
	), 10*time.Second)
	return nil
}

// target resolves the member a moderation command acts on, refusing administrators
func (f *Feature) target(inv *common.Invocation, action string) (*discordgo.User, error) {
	id, err := inv.UserArg(0)
	if err != nil {
		return nil, err
	}
	user, err := inv.User(id)
	if err != nil {
		return nil, err
	}
	if inv.Session != nil && common.IsAdministrator(inv.Session, inv.GuildID(), id) {
		return nil, common.NewBotError("Error", "Cannot %s an administrator.", action)
	}
	return user, nil
}

func (f *Feature) handleMute(inv *common.Invocation) error {
	user, err := f.target(inv, "mute")
	if err != nil {
		return err
	}

	minutes := int64(service.DefaultMuteDuration / time.Minute)
	reasonFrom := 1
	if raw := inv.OptionalArg(1, ""); raw != "" {
		if n, convErr := strconv.ParseInt(raw, 10, 64); convErr == nil {
			minutes = n
			reasonFrom = 2
		}
	}
	if minutes <= 0 {
		return common.InvalidArgument("Duration must be a positive number of minutes.")
	}
	reason := inv.Rest(reasonFrom)
	if reason == "" {
		reason = defaultReason
	}

	role, err := common.EnsureMutedRole(inv.Session, inv.GuildID())
	if err != nil {
		log.WithError(err).WithField("guild_id", inv.GuildID()).Warn("Failed to prepare muted role")
		return common.NewBotError("Error", "I don't have permission to create roles.")
	}
	if err := inv.Session.GuildMemberRoleAdd(inv.GuildID(), user.ID, role.ID,
		discordgo.WithAuditLogReason(fmt.Sprintf("Muted by %s: %s", inv.Author().Username, reason))); err != nil {
		return common.NewBotError("Error", "I don't have permission to mute this user.")
	}

	mute, err := f.moderation.Mute(inv.Ctx, inv.GuildID(), user.ID, time.Duration(minutes)*time.Minute, reason)
	if err != nil {
		return err
	}
	inv.ReplyEmbed(common.NewEmbed(
		"🔇 User Muted",
		fmt.Sprintf("**User:** %s\n**Duration:** %d minutes\n**Reason:** %s\n**Until:** %s",
			user.Mention(), minutes, reason, common.FormatDiscordTimestamp(mute.UnmuteAt, "T")),
		common.ColorWarning,
	))
	return nil
}

func (f *Feature) handleUnmute(inv *common.Invocation) error {
	id, err := inv.UserArg(0)
	if err != nil {
		return err
	}
	user, err := inv.User(id)
	if err != nil {
		return err
	}

	roles, err := common.GuildRoles(inv.Session, inv.GuildID())
	if err != nil {
		return err
	}
	role := common.FindRoleByName(roles, common.MutedRoleName)
	member, err := common.GuildMember(inv.Session, inv.GuildID(), id)
	if err != nil {
		return err
	}
	if role == nil || !common.HasRole(member, role.ID) {
		return common.NewBotError("Error", "This user is not muted.")
	}
	if err := inv.Session.GuildMemberRoleRemove(inv.GuildID(), id, role.ID); err != nil {
		return fmt.Errorf("failed to remove muted role: %w", err)
	}
	f.moderation.Unmute(inv.Ctx, id)

	inv.ReplyEmbed(common.NewEmbed(
		"🔊 User Unmuted",
		fmt.Sprintf("%s has been unmuted by %s", user.Mention(), inv.Author().Mention()),
		common.ColorSuccess,
	))
	return nil
}

func (f *Feature) handleKick(inv *common.Invocation) error {
	user, err := f.target(inv, "kick")
	if err != nil {
		return err
	}
	reason := inv.Rest(1)
	if reason == "" {
		reason = defaultReason
	}
	if err := inv.Session.GuildMemberDeleteWithReason(inv.GuildID(), user.ID, inv.Author().Username+": "+reason); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Warn("Failed to kick member")
		return common.NewBotError("Error", "I don't have permission to kick this user.")
	}
	inv.ReplyEmbed(common.NewEmbed(
		"👢 User Kicked",
		fmt.Sprintf("**User:** %s\n**Reason:** %s\n**By:** %s", user.Mention(), reason, inv.Author().Mention()),
		common.ColorWarning,
	))
	return nil
}

func (f *Feature) handleBan(inv *common.Invocation) error {
	user, err := f.target(inv, "ban")
	if err != nil {
		return err
	}
	reason := inv.Rest(1)
	if reason == "" {
		reason = defaultReason
	}
	if err := inv.Session.GuildBanCreateWithReason(inv.GuildID(), user.ID, inv.Author().Username+": "+reason, 0); err != nil {
		log.WithError(err).WithField("user_id", user.ID).Warn("Failed to ban member")
		return common.NewBotError("Error", "I don't have permission to ban this user.")
	}
	inv.ReplyEmbed(common.NewEmbed(
		"🔨 User Banned",
		fmt.Sprintf("**User:** %s\n**Reason:** %s\n**By:** %s", user.Mention(), reason, inv.Author().Mention()),
		common.ColorError,
	))
	return nil
}

func (f *Feature) handleClear(inv *common.Invocation) error {
	amount := int64(defaultClearCount)
	if len(inv.Args) > 0 {
		var err error
		if amount, err = inv.IntArg(0, "amount"); err != nil {
			return err
		}
	}
	if amount < 1 || amount > maxClearCount {
		inv.ReplyEmbedTemporary(common.ErrorEmbed(common.NewBotError("Error", "Amount must be between 1 and 100.")), 5*time.Second)
		return nil
	}

	messages, err := inv.Session.ChannelMessages(inv.ChannelID(), int(amount), inv.Message.ID, "", "")
	if err != nil {
		return fmt.Errorf("failed to fetch messages: %w", err)
	}
	ids := make([]string, len(messages))
	for i, m := range messages {
		ids[i] = m.ID
	}
	if err := inv.Session.ChannelMessagesBulkDelete(inv.ChannelID(), ids); err != nil {
		log.WithError(err).WithField("channel_id", inv.ChannelID()).Warn("Failed to clear messages")
		inv.ReplyEmbedTemporary(common.ErrorEmbed(common.NewBotError("Error", "I don't have permission to delete messages.")), 5*time.Second)
		return nil
	}
	if err := inv.Messenger.ChannelMessageDelete(inv.ChannelID(), inv.Message.ID); err != nil {
		log.WithError(err).Debug("Failed to delete clear command message")
	}

	inv.ReplyEmbedTemporary(common.NewEmbed(
		"🧹 Messages Cleared",
		fmt.Sprintf("Cleared **%d** messages", len(ids)),
		common.ColorSuccess,
	), 3*time.Second)
	return nil
}

func (f *Feature) handleWarn(inv *common.Invocation) error {
	user, err := f.target(inv, "warn")
	if err != nil {
		return err
	}
	reason := inv.Rest(1)
	if reason == "" {
		reason = defaultReason
	}
	count := f.moderation.Warn(inv.Ctx, user.ID)
	inv.ReplyEmbed(common.NewEmbed(
		"⚠️ User Warned",
		fmt.Sprintf("**User:** %s\n**Reason:** %s\n**Total Warnings:** %d\n**By:** %s",
			user.Mention(), reason, count, inv.Author().Mention()),
		common.ColorWarning,
	))
	return nil
}

func (f *Feature) handleWarnings(inv *common.Invocation) error {
	target := inv.Author()
	if len(inv.Args) > 0 {
		id, err := inv.UserArg(0)
		if err != nil {
			return err
		}
		if target, err = inv.User(id); err != nil {
			return err
		}
	}

	count := f.moderation.Warnings(target.ID)
	color := common.ColorInfo
	switch {
	case count >= 3:
		color = common.ColorError
	case count > 0:
		color = common.ColorWarning
	}
	inv.ReplyEmbed(common.NewEmbed(
		fmt.Sprintf("📊 Warnings for %s", target.Username),
		fmt.Sprintf("**Total Warnings:** %d\n**User:** %s", count, target.Mention()),
		color,
	))
	return nil
}
