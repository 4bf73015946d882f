package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// AFKTracker reacts to chat from and about away users
type AFKTracker interface {
	ClearAFK(ctx context.Context, m *discordgo.Message)
	NotifyMentionedAFK(m *discordgo.Message)
}

// Confiner removes messages quarantined users post outside their channel
type Confiner interface {
	Confine(m *discordgo.Message) bool
}

// GuessHandler scores trivia answers
type GuessHandler interface {
	HandleGuess(ctx context.Context, m *discordgo.Message) bool
}

// Gate routes every incoming message through AFK, quarantine, trivia and commands, in that order
type Gate struct {
	router     *Router
	afk        AFKTracker
	quarantine Confiner
	trivia     GuessHandler
}

func NewGate(router *Router, afk AFKTracker, quarantine Confiner, trivia GuessHandler) *Gate {
	return &Gate{
		router:     router,
		afk:        afk,
		quarantine: quarantine,
		trivia:     trivia,
	}
}

// Handle processes a message
func (g *Gate) Handle(ctx context.Context, m *discordgo.Message) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	command := g.router.IsCommand(m.Content)

	if !command {
		g.afk.ClearAFK(ctx, m)
		g.afk.NotifyMentionedAFK(m)
	}
	if g.quarantine.Confine(m) {
		return
	}
	if !command {
		g.trivia.HandleGuess(ctx, m)
		return
	}
	g.router.Dispatch(ctx, m)
}
