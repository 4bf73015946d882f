// Package bottest provides fakes for exercising command handlers without a gateway
package bottest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"guildkeeper/bot/common"
	"guildkeeper/config"
	"guildkeeper/repository/memory"
	"guildkeeper/service"

	"github.com/bwmarrin/discordgo"
)

// Sent is a message recorded by the fake messenger
type Sent struct {
	ChannelID string
	Content   string
	Embed     *discordgo.MessageEmbed
	Files     []*discordgo.File
}

// Messenger records outgoing messages in memory
type Messenger struct {
	mu      sync.Mutex
	sent    []Sent
	deleted []string
	nextID  int
}

func (m *Messenger) record(s Sent) *discordgo.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, s)
	m.nextID++
	msg := &discordgo.Message{ID: fmt.Sprintf("sent-%d", m.nextID), ChannelID: s.ChannelID, Content: s.Content}
	if s.Embed != nil {
		msg.Embeds = []*discordgo.MessageEmbed{s.Embed}
	}
	return msg
}

func (m *Messenger) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	return m.record(Sent{ChannelID: channelID, Content: content}), nil
}

func (m *Messenger) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	return m.record(Sent{ChannelID: channelID, Embed: embed}), nil
}

func (m *Messenger) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	sent := Sent{ChannelID: channelID, Content: data.Content, Embed: data.Embed, Files: data.Files}
	if sent.Embed == nil && len(data.Embeds) > 0 {
		sent.Embed = data.Embeds[0]
	}
	return m.record(sent), nil
}

func (m *Messenger) ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, messageID)
	return nil
}

// UserChannelCreate returns a DM channel whose ID is "dm-" plus the user ID
func (m *Messenger) UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error) {
	return &discordgo.Channel{ID: "dm-" + recipientID, Type: discordgo.ChannelTypeDM}, nil
}

// Sent returns every recorded message
func (m *Messenger) Sent() []Sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Sent(nil), m.sent...)
}

// Last returns the most recent message, or the zero value
func (m *Messenger) Last() Sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return Sent{}
	}
	return m.sent[len(m.sent)-1]
}

// Deleted returns the IDs of deleted messages
func (m *Messenger) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

// Message builds a guild message from an author
func Message(guildID, channelID, authorID, content string) *discordgo.Message {
	return &discordgo.Message{
		ID:        "msg-" + authorID,
		GuildID:   guildID,
		ChannelID: channelID,
		Content:   content,
		Author:    &discordgo.User{ID: authorID, Username: "user" + authorID},
	}
}

// Invoke runs a command handler the way the router would, without a session
func Invoke(t *testing.T, m *Messenger, cmd common.Command, msg *discordgo.Message, args ...string) error {
	t.Helper()
	raw := ""
	for i, arg := range args {
		if i > 0 {
			raw += " "
		}
		raw += arg
	}
	inv := &common.Invocation{
		Ctx:       context.Background(),
		Messenger: m,
		Message:   msg,
		Prefix:    "!",
		Command:   &cmd,
		Name:      cmd.Name,
		Args:      args,
		Raw:       raw,
	}
	return cmd.Handler(inv)
}

// Find returns the command with the given name
func Find(t *testing.T, commands []common.Command, name string) common.Command {
	t.Helper()
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd
		}
	}
	t.Fatalf("command %q not registered", name)
	return common.Command{}
}

// NewState loads a state over an empty in-memory store
func NewState(t *testing.T, opts ...service.Option) *service.State {
	t.Helper()
	state := service.NewState(memory.NewStore(), config.DefaultEconomy(), opts...)
	if err := state.Load(context.Background()); err != nil {
		t.Fatalf("failed to load state: %v", err)
	}
	return state
}
