package common

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Messenger is the part of the gateway session used to answer messages
type Messenger interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

// Handler runs a command. Returned errors are shown to the caller as an error embed.
type Handler func(inv *Invocation) error

// Command is a prefixed text command
type Command struct {
	Name        string
	Aliases     []string
	Category    string
	Usage       string
	Description string
	// Permission is the guild permission bit the caller needs, 0 for none
	Permission int64
	Handler    Handler
}

// Invocation is a single call of a command
type Invocation struct {
	Ctx       context.Context
	Session   *discordgo.Session
	Messenger Messenger
	Message   *discordgo.Message
	Prefix    string
	Command   *Command
	// Name is the command name or alias as typed
	Name string
	Args []string
	// Raw is the message text after the command name
	Raw string
}

// GuildID returns the guild the command was sent in
func (inv *Invocation) GuildID() string {
	return inv.Message.GuildID
}

// ChannelID returns the channel the command was sent in
func (inv *Invocation) ChannelID() string {
	return inv.Message.ChannelID
}

// Author returns the user who sent the command
func (inv *Invocation) Author() *discordgo.User {
	return inv.Message.Author
}

// AuthorID returns the id of the user who sent the command
func (inv *Invocation) AuthorID() string {
	return inv.Message.Author.ID
}

// Reply sends a plain message to the command's channel
func (inv *Invocation) Reply(content string) {
	if _, err := inv.Messenger.ChannelMessageSend(inv.ChannelID(), content); err != nil {
		log.WithError(err).WithField("channel_id", inv.ChannelID()).Warn("Failed to send reply")
	}
}

// ReplyEmbed sends an embed to the command's channel
func (inv *Invocation) ReplyEmbed(embed *discordgo.MessageEmbed) {
	if _, err := inv.Messenger.ChannelMessageSendEmbed(inv.ChannelID(), embed); err != nil {
		log.WithError(err).WithField("channel_id", inv.ChannelID()).Warn("Failed to send embed")
	}
}

// ReplyEmbedTemporary sends an embed that is deleted after d
func (inv *Invocation) ReplyEmbedTemporary(embed *discordgo.MessageEmbed, d time.Duration) {
	msg, err := inv.Messenger.ChannelMessageSendEmbed(inv.ChannelID(), embed)
	if err != nil {
		log.WithError(err).WithField("channel_id", inv.ChannelID()).Warn("Failed to send embed")
		return
	}
	DeleteAfter(inv.Messenger, msg, d)
}

// DeleteAfter deletes a sent message once d has passed
func DeleteAfter(m Messenger, msg *discordgo.Message, d time.Duration) {
	if msg == nil {
		return
	}
	time.AfterFunc(d, func() {
		if err := m.ChannelMessageDelete(msg.ChannelID, msg.ID); err != nil {
			log.WithError(err).WithField("message_id", msg.ID).Debug("Failed to delete temporary message")
		}
	})
}

// DM sends a direct message to a user. It reports whether the message was delivered.
func (inv *Invocation) DM(userID, content string) bool {
	return SendDM(inv.Messenger, userID, content)
}

// SendDM opens a DM channel with a user and sends content to it
func SendDM(m Messenger, userID, content string) bool {
	channel, err := m.UserChannelCreate(userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Debug("Failed to open DM channel")
		return false
	}
	if _, err := m.ChannelMessageSend(channel.ID, content); err != nil {
		log.WithError(err).WithField("user_id", userID).Debug("Failed to send DM")
		return false
	}
	return true
}

// Missing returns the missing argument error for this command
func (inv *Invocation) Missing() *BotError {
	return MissingArgument(inv.Prefix, inv.Command.Name, inv.Command.Usage)
}

// Arg returns the i-th argument or a missing argument error
func (inv *Invocation) Arg(i int) (string, error) {
	if i >= len(inv.Args) || inv.Args[i] == "" {
		return "", inv.Missing()
	}
	return inv.Args[i], nil
}

// OptionalArg returns the i-th argument or def when absent
func (inv *Invocation) OptionalArg(i int, def string) string {
	if i >= len(inv.Args) || inv.Args[i] == "" {
		return def
	}
	return inv.Args[i]
}

// Rest joins the arguments from index i onwards
func (inv *Invocation) Rest(i int) string {
	if i >= len(inv.Args) {
		return ""
	}
	return strings.Join(inv.Args[i:], " ")
}

// UserArg parses the i-th argument as a member mention or id
func (inv *Invocation) UserArg(i int) (string, error) {
	raw, err := inv.Arg(i)
	if err != nil {
		return "", err
	}
	id, ok := ParseUserID(raw)
	if !ok {
		return "", InvalidArgument("Could not find member `%s`.", raw)
	}
	return id, nil
}

// RoleArg parses the i-th argument as a role mention or id
func (inv *Invocation) RoleArg(i int) (string, error) {
	raw, err := inv.Arg(i)
	if err != nil {
		return "", err
	}
	id, ok := ParseRoleID(raw)
	if !ok {
		return "", InvalidArgument("Could not find role `%s`.", raw)
	}
	return id, nil
}

// IntArg parses the i-th argument as an integer
func (inv *Invocation) IntArg(i int, name string) (int64, error) {
	raw, err := inv.Arg(i)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(raw, ",", ""), 10, 64)
	if err != nil {
		return 0, InvalidArgument("`%s` is not a valid %s.", raw, name)
	}
	return n, nil
}

// User returns a user by id, from the message mentions when present
func (inv *Invocation) User(id string) (*discordgo.User, error) {
	for _, u := range inv.Message.Mentions {
		if u.ID == id {
			return u, nil
		}
	}
	if inv.Message.Author != nil && inv.Message.Author.ID == id {
		return inv.Message.Author, nil
	}
	if inv.Session == nil {
		return nil, InvalidArgument("Could not find member <@%s>.", id)
	}
	if member, err := GuildMember(inv.Session, inv.GuildID(), id); err == nil && member.User != nil {
		return member.User, nil
	}
	user, err := inv.Session.User(id)
	if err != nil {
		return nil, InvalidArgument("Could not find member <@%s>.", id)
	}
	return user, nil
}
