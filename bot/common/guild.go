package common

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// MutedRoleName is the role given to muted members
const MutedRoleName = "Muted"

// FindRoleByName returns the first role whose name matches case-insensitively
func FindRoleByName(roles []*discordgo.Role, name string) *discordgo.Role {
	for _, role := range roles {
		if strings.EqualFold(role.Name, name) {
			return role
		}
	}
	return nil
}

// MemberRoleNames returns the names of the roles a member holds
func MemberRoleNames(roles []*discordgo.Role, member *discordgo.Member) []string {
	byID := make(map[string]string, len(roles))
	for _, role := range roles {
		byID[role.ID] = role.Name
	}
	names := make([]string, 0, len(member.Roles))
	for _, id := range member.Roles {
		if name, ok := byID[id]; ok {
			names = append(names, name)
		}
	}
	return names
}

// HasRole reports whether a member holds a role id
func HasRole(member *discordgo.Member, roleID string) bool {
	for _, id := range member.Roles {
		if id == roleID {
			return true
		}
	}
	return false
}

// HasAdministrator reports whether any of the member's roles grants administrator
func HasAdministrator(roles []*discordgo.Role, member *discordgo.Member) bool {
	held := make(map[string]bool, len(member.Roles))
	for _, id := range member.Roles {
		held[id] = true
	}
	for _, role := range roles {
		if held[role.ID] && role.Permissions&discordgo.PermissionAdministrator != 0 {
			return true
		}
	}
	return false
}

// FindTextChannel returns the first text channel matching one of names, in order of names
func FindTextChannel(channels []*discordgo.Channel, names ...string) *discordgo.Channel {
	for _, name := range names {
		for _, channel := range channels {
			if channel.Type == discordgo.ChannelTypeGuildText && strings.EqualFold(channel.Name, name) {
				return channel
			}
		}
	}
	return nil
}

// GuildRoles returns a guild's roles from the session state, falling back to the REST API
func GuildRoles(s *discordgo.Session, guildID string) ([]*discordgo.Role, error) {
	if guild, err := s.State.Guild(guildID); err == nil && len(guild.Roles) > 0 {
		return guild.Roles, nil
	}
	roles, err := s.GuildRoles(guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roles of guild %s: %w", guildID, err)
	}
	return roles, nil
}

// GuildChannels returns a guild's channels from the session state, falling back to the REST API
func GuildChannels(s *discordgo.Session, guildID string) ([]*discordgo.Channel, error) {
	if guild, err := s.State.Guild(guildID); err == nil && len(guild.Channels) > 0 {
		return guild.Channels, nil
	}
	channels, err := s.GuildChannels(guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channels of guild %s: %w", guildID, err)
	}
	return channels, nil
}

// GuildMember returns a member from the session state, falling back to the REST API
func GuildMember(s *discordgo.Session, guildID, userID string) (*discordgo.Member, error) {
	if member, err := s.State.Member(guildID, userID); err == nil {
		return member, nil
	}
	member, err := s.GuildMember(guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member %s: %w", userID, err)
	}
	return member, nil
}

// IsAdministrator reports whether a member owns the guild or holds an administrator role
func IsAdministrator(s *discordgo.Session, guildID, userID string) bool {
	if guild, err := s.State.Guild(guildID); err == nil && guild.OwnerID == userID {
		return true
	}
	member, err := GuildMember(s, guildID, userID)
	if err != nil {
		return false
	}
	roles, err := GuildRoles(s, guildID)
	if err != nil {
		return false
	}
	return HasAdministrator(roles, member)
}

// MemberPermissions computes a member's permissions in a channel
func MemberPermissions(s *discordgo.Session, userID, channelID string) (int64, error) {
	if perms, err := s.State.UserChannelPermissions(userID, channelID); err == nil {
		return perms, nil
	}
	return s.UserChannelPermissions(userID, channelID)
}

// EnsureMutedRole returns the guild's Muted role, creating it with send, speak and
// reaction permissions denied on every channel when it does not exist.
func EnsureMutedRole(s *discordgo.Session, guildID string) (*discordgo.Role, error) {
	roles, err := GuildRoles(s, guildID)
	if err != nil {
		return nil, err
	}
	if role := FindRoleByName(roles, MutedRoleName); role != nil {
		return role, nil
	}

	color := ColorMuted
	perms := int64(0)
	role, err := s.GuildRoleCreate(guildID, &discordgo.RoleParams{
		Name:        MutedRoleName,
		Color:       &color,
		Permissions: &perms,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create muted role: %w", err)
	}

	channels, err := GuildChannels(s, guildID)
	if err != nil {
		return role, nil
	}
	deny := int64(discordgo.PermissionSendMessages | discordgo.PermissionVoiceSpeak | discordgo.PermissionAddReactions)
	for _, channel := range channels {
		if err := s.ChannelPermissionSet(channel.ID, role.ID, discordgo.PermissionOverwriteTypeRole, 0, deny); err != nil {
			log.WithFields(log.Fields{
				"guild_id":   guildID,
				"channel_id": channel.ID,
			}).WithError(err).Warn("Failed to deny muted role in channel")
		}
	}
	log.WithField("guild_id", guildID).Info("Created muted role")
	return role, nil
}
