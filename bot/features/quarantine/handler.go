package quarantine

import (
	"errors"
	"fmt"
	"strings"

	"guildkeeper/bot/common"
	"guildkeeper/models"
	"guildkeeper/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	defaultReason = "No reason provided"
	staffAccess   = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory
)

func (f *Feature) handleQuarantine(inv *common.Invocation) error {
	id, err := inv.UserArg(0)
	if err != nil {
		return err
	}
	user, err := inv.User(id)
	if err != nil {
		return err
	}
	if common.IsAdministrator(inv.Session, inv.GuildID(), id) {
		return common.NewBotError("Error", "Cannot quarantine an administrator.")
	}
	if _, ok := f.quarantine.Get(inv.GuildID(), id); ok {
		return common.NewBotError("Error", "%s is already quarantined!", user.Mention())
	}
	reason := inv.Rest(1)
	if reason == "" {
		reason = defaultReason
	}

	roles, err := common.GuildRoles(inv.Session, inv.GuildID())
	if err != nil {
		return err
	}
	category, err := f.ensureCategory(inv.Session, inv.GuildID(), roles)
	if err != nil {
		log.WithError(err).WithField("guild_id", inv.GuildID()).Warn("Failed to prepare quarantine category")
		return common.NewBotError("Error", "I don't have permission to create categories!")
	}
	channel, err := f.createChannel(inv.Session, inv.GuildID(), category, roles, user)
	if err != nil {
		log.WithError(err).WithField("guild_id", inv.GuildID()).Warn("Failed to create quarantine channel")
		return common.NewBotError("Error", "I don't have permission to create channels!")
	}

	err = f.quarantine.Quarantine(inv.Ctx, &models.Quarantine{
		GuildID:       inv.GuildID(),
		UserID:        id,
		ChannelID:     channel.ID,
		Reason:        reason,
		QuarantinedBy: inv.AuthorID(),
	})
	if err != nil {
		if _, delErr := inv.Session.ChannelDelete(channel.ID); delErr != nil {
			log.WithError(delErr).WithField("channel_id", channel.ID).Warn("Failed to remove unused quarantine channel")
		}
		if errors.Is(err, service.ErrAlreadyQuarantined) {
			return common.NewBotError("Error", "%s is already quarantined!", user.Mention())
		}
		return err
	}

	inv.ReplyEmbed(common.NewEmbed(
		"🦠 User Quarantined",
		fmt.Sprintf("**User:** %s\n**Reason:** %s\n**By:** %s\n**Channel:** %s\n\nThe user can only talk in the quarantine channel until released.",
			user.Mention(), reason, inv.Author().Mention(), channel.Mention()),
		common.ColorWarning,
	))

	_, err = inv.Session.ChannelMessageSendComplex(channel.ID, &discordgo.MessageSend{
		Content: user.Mention(),
		Embeds: []*discordgo.MessageEmbed{common.NewEmbed(
			"🦠 You have been quarantined",
			fmt.Sprintf("You have been placed in quarantine by %s\n**Reason:** %s\n\n"+
				"You can only communicate in this channel until a staff member releases you.\n"+
				"Please follow the server rules and await further instructions.",
				inv.Author().Mention(), reason),
			common.ColorWarning,
		)},
	})
	if err != nil {
		log.WithError(err).WithField("channel_id", channel.ID).Warn("Failed to greet quarantined user")
	}
	return nil
}

// ensureCategory finds the quarantine category or creates it visible to staff only
func (f *Feature) ensureCategory(s *discordgo.Session, guildID string, roles []*discordgo.Role) (*discordgo.Channel, error) {
	channels, err := common.GuildChannels(s, guildID)
	if err != nil {
		return nil, err
	}
	for _, channel := range channels {
		if channel.Type == discordgo.ChannelTypeGuildCategory && channel.Name == CategoryName {
			return channel, nil
		}
	}

	overwrites := make([]*discordgo.PermissionOverwrite, 0, len(roles))
	for _, role := range roles {
		overwrite := &discordgo.PermissionOverwrite{ID: role.ID, Type: discordgo.PermissionOverwriteTypeRole}
		if f.isStaff(role) {
			overwrite.Allow = staffAccess
		} else {
			overwrite.Deny = discordgo.PermissionViewChannel
		}
		overwrites = append(overwrites, overwrite)
	}
	return s.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 CategoryName,
		Type:                 discordgo.ChannelTypeGuildCategory,
		PermissionOverwrites: overwrites,
	})
}

// ChannelName is the name of a user's quarantine channel
func ChannelName(user *discordgo.User) string {
	return "quarantine-" + strings.ToLower(user.Username)
}

// createChannel replaces any stale channel of the user and creates a fresh one
func (f *Feature) createChannel(s *discordgo.Session, guildID string, category *discordgo.Channel, roles []*discordgo.Role, user *discordgo.User) (*discordgo.Channel, error) {
	name := ChannelName(user)
	channels, err := common.GuildChannels(s, guildID)
	if err != nil {
		return nil, err
	}
	for _, channel := range channels {
		if channel.ParentID == category.ID && channel.Name == name {
			if _, err := s.ChannelDelete(channel.ID); err != nil {
				log.WithError(err).WithField("channel_id", channel.ID).Warn("Failed to delete stale quarantine channel")
			}
		}
	}

	overwrites := []*discordgo.PermissionOverwrite{
		// the @everyone role shares the guild id
		{ID: guildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
		{ID: user.ID, Type: discordgo.PermissionOverwriteTypeMember, Allow: staffAccess},
	}
	if s.State != nil && s.State.User != nil {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{ID: s.State.User.ID, Type: discordgo.PermissionOverwriteTypeMember, Allow: staffAccess})
	}
	for _, role := range roles {
		if role.ID != guildID && f.isStaff(role) {
			overwrites = append(overwrites, &discordgo.PermissionOverwrite{ID: role.ID, Type: discordgo.PermissionOverwriteTypeRole, Allow: staffAccess})
		}
	}

	return s.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             category.ID,
		PermissionOverwrites: overwrites,
	}, discordgo.WithAuditLogReason("Quarantine for "+user.Username))
}

func (f *Feature) handleRelease(inv *common.Invocation) error {
	id, err := inv.UserArg(0)
	if err != nil {
		return err
	}
	user, err := inv.User(id)
	if err != nil {
		return err
	}

	released, err := f.quarantine.Release(inv.Ctx, inv.GuildID(), id)
	if errors.Is(err, service.ErrNotQuarantined) {
		return common.NewBotError("Error", "%s is not quarantined!", user.Mention())
	}
	if err != nil {
		return err
	}

	if released.ChannelID != "" && inv.Session != nil {
		if _, err := inv.Session.ChannelDelete(released.ChannelID, discordgo.WithAuditLogReason("Unquarantine "+user.Username)); err != nil {
			log.WithError(err).WithField("channel_id", released.ChannelID).Warn("Failed to delete quarantine channel")
		}
	}

	inv.ReplyEmbed(common.NewEmbed(
		"✅ User Released",
		fmt.Sprintf("%s has been released from quarantine by %s\nThey can now participate in regular channels.",
			user.Mention(), inv.Author().Mention()),
		common.ColorSuccess,
	))

	guildName := "the server"
	if inv.Session != nil {
		if guild, err := inv.Session.State.Guild(inv.GuildID()); err == nil {
			guildName = guild.Name
		}
	}
	inv.DM(id, fmt.Sprintf("🎉 You have been released from quarantine in %s!", guildName))
	return nil
}

func (f *Feature) handleList(inv *common.Invocation) error {
	list := f.quarantine.List(inv.GuildID())
	if len(list) == 0 {
		inv.ReplyEmbed(common.NewEmbed("🦠 Quarantine List", "No users are currently quarantined.", common.ColorInfo))
		return nil
	}

	embed := common.NewEmbed("🦠 Quarantined Users", fmt.Sprintf("Total: %d", len(list)), common.ColorWarning)
	for _, q := range list {
		by := "Unknown"
		if q.QuarantinedBy != "" {
			by = fmt.Sprintf("<@%s>", q.QuarantinedBy)
		}
		common.AddField(embed, fmt.Sprintf("👤 %s", f.userName(inv, q.UserID)),
			fmt.Sprintf("**Reason:** %s\n**By:** %s\n**Since:** %s\n**Channel:** <#%s>",
				q.Reason, by, common.FormatDiscordTimestamp(q.QuarantinedAt, "f"), q.ChannelID),
			false)
	}
	inv.ReplyEmbed(embed)
	return nil
}

func (f *Feature) userName(inv *common.Invocation, userID string) string {
	user, err := inv.User(userID)
	if err != nil {
		return "User " + userID
	}
	return user.Username
}

// Confine deletes a quarantined member's message outside their channel and warns them.
// It reports whether the message was removed.
func (f *Feature) Confine(m *discordgo.Message) bool {
	if m.GuildID == "" || !f.quarantine.Confined(m.GuildID, m.Author.ID, m.ChannelID) {
		return false
	}
	if err := f.messenger.ChannelMessageDelete(m.ChannelID, m.ID); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"guild_id": m.GuildID,
			"user_id":  m.Author.ID,
		}).Warn("Failed to delete quarantined user's message")
	}
	common.SendDM(f.messenger, m.Author.ID, "⚠️ You are quarantined! You can only talk in the quarantine channel.")
	return true
}
