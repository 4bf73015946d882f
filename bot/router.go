package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"guildkeeper/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// PermissionFunc returns the permissions the author of a message has in its channel
type PermissionFunc func(m *discordgo.Message) (int64, error)

// Router parses prefixed messages and dispatches them to commands
type Router struct {
	prefix      string
	session     *discordgo.Session
	messenger   common.Messenger
	permissions PermissionFunc

	commands map[string]*common.Command
	order    []*common.Command
}

// NewRouter creates a router for prefix. The session may be nil in tests.
func NewRouter(prefix string, session *discordgo.Session, messenger common.Messenger, permissions PermissionFunc) *Router {
	return &Router{
		prefix:      prefix,
		session:     session,
		messenger:   messenger,
		permissions: permissions,
		commands:    make(map[string]*common.Command),
	}
}

// Prefix returns the command prefix
func (r *Router) Prefix() string {
	return r.prefix
}

// Register adds commands. Names and aliases are case-insensitive; a later
// registration of the same name wins.
func (r *Router) Register(commands ...common.Command) {
	for i := range commands {
		cmd := &commands[i]
		r.order = append(r.order, cmd)
		r.commands[strings.ToLower(cmd.Name)] = cmd
		for _, alias := range cmd.Aliases {
			r.commands[strings.ToLower(alias)] = cmd
		}
	}
}

// Lookup finds a command by name or alias
func (r *Router) Lookup(name string) (*common.Command, bool) {
	cmd, ok := r.commands[strings.ToLower(name)]
	return cmd, ok
}

// Commands returns the registered commands grouped by category, in registration order
func (r *Router) Commands() []*common.Command {
	out := make([]*common.Command, len(r.order))
	copy(out, r.order)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// IsCommand reports whether a message is addressed to the router
func (r *Router) IsCommand(content string) bool {
	return strings.HasPrefix(content, r.prefix)
}

// Parse splits a prefixed message into the command name and the text after it
func (r *Router) Parse(content string) (name, rest string, ok bool) {
	if !r.IsCommand(content) {
		return "", "", false
	}
	body := strings.TrimPrefix(content, r.prefix)
	end := strings.IndexFunc(body, unicode.IsSpace)
	if end < 0 {
		end = len(body)
	}
	name = strings.ToLower(body[:end])
	if name == "" {
		return "", "", false
	}
	return name, strings.TrimSpace(body[end:]), true
}

// Dispatch runs the command a message names. It reports whether the message was a command.
func (r *Router) Dispatch(ctx context.Context, m *discordgo.Message) bool {
	name, rest, ok := r.Parse(m.Content)
	if !ok {
		return false
	}

	cmd, found := r.Lookup(name)
	if !found {
		r.fail(m.ChannelID, common.UnknownCommand(r.prefix))
		return true
	}

	fields := log.Fields{
		"command":  cmd.Name,
		"user_id":  m.Author.ID,
		"guild_id": m.GuildID,
	}

	if cmd.Permission != 0 && !r.allowed(m, cmd.Permission) {
		log.WithFields(fields).Debug("Command denied")
		r.fail(m.ChannelID, common.PermissionDenied())
		return true
	}

	inv := &common.Invocation{
		Ctx:       ctx,
		Session:   r.session,
		Messenger: r.messenger,
		Message:   m,
		Prefix:    r.prefix,
		Command:   cmd,
		Name:      name,
		Args:      common.SplitArgs(rest),
		Raw:       rest,
	}

	if err := r.run(inv); err != nil {
		if botErr, ok := common.UserError(err); ok {
			r.fail(m.ChannelID, botErr)
			return true
		}
		log.WithFields(fields).WithError(err).Error("Command failed")
		r.fail(m.ChannelID, common.GenericError)
	}
	return true
}

func (r *Router) run(inv *common.Invocation) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("command %s panicked: %v", inv.Command.Name, p)
		}
	}()
	return inv.Command.Handler(inv)
}

func (r *Router) allowed(m *discordgo.Message, required int64) bool {
	if m.GuildID == "" || r.permissions == nil {
		return false
	}
	perms, err := r.permissions(m)
	if err != nil {
		log.WithError(err).WithField("user_id", m.Author.ID).Warn("Failed to compute permissions")
		return false
	}
	if perms&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return perms&required == required
}

func (r *Router) fail(channelID string, err *common.BotError) {
	if _, sendErr := r.messenger.ChannelMessageSendEmbed(channelID, common.ErrorEmbed(err)); sendErr != nil {
		log.WithError(sendErr).WithField("channel_id", channelID).Warn("Failed to send error embed")
	}
}
