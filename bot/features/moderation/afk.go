package moderation

import (
	"context"
	"fmt"
	"time"

	"guildkeeper/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const afkNoticeLifetime = 5 * time.Second

// ClearAFK ends the author's AFK status on a regular message and welcomes them back
func (f *Feature) ClearAFK(ctx context.Context, m *discordgo.Message) {
	away, ok := f.moderation.ClearAFK(ctx, m.Author.ID)
	if !ok {
		return
	}
	msg, err := f.messenger.ChannelMessageSend(m.ChannelID,
		fmt.Sprintf("👋 Welcome back %s! You were AFK for %d minutes.", m.Author.Mention(), int(away.Minutes())))
	if err != nil {
		log.WithError(err).WithField("user_id", m.Author.ID).Warn("Failed to send AFK welcome")
		return
	}
	common.DeleteAfter(f.messenger, msg, afkNoticeLifetime)
}

// NotifyMentionedAFK tells the channel when a message mentions users who are away
func (f *Feature) NotifyMentionedAFK(m *discordgo.Message) {
	for _, user := range m.Mentions {
		if user.ID == m.Author.ID {
			continue
		}
		afk, ok := f.moderation.GetAFK(user.ID)
		if !ok {
			continue
		}
		if _, err := f.messenger.ChannelMessageSend(m.ChannelID,
			fmt.Sprintf("💤 **%s** is AFK: %s (%s)", user.Username, afk.Reason, common.FormatDiscordTimestamp(afk.Since, "R"))); err != nil {
			log.WithError(err).WithField("user_id", user.ID).Warn("Failed to send AFK notice")
		}
	}
}
