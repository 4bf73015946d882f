package info

import (
	"time"

	"guildkeeper/bot/common"

	"github.com/bwmarrin/discordgo"
)

// Catalog lists registered commands
type Catalog interface {
	Commands() []*common.Command
}

type Feature struct {
	catalog Catalog
	started time.Time
	now     func() time.Time
	latency func() time.Duration
	system  func() (SystemStats, error)
}

// New creates the info feature. The session may be nil, in which case latency reads as zero.
func New(session *discordgo.Session, catalog Catalog, started time.Time) *Feature {
	f := &Feature{
		catalog: catalog,
		started: started,
		now:     time.Now,
		latency: func() time.Duration { return 0 },
		system:  ReadSystemStats,
	}
	if session != nil {
		f.latency = session.HeartbeatLatency
	}
	return f
}

func (f *Feature) Commands() []common.Command {
	return []common.Command{
		{Name: "ping", Category: "General", Description: "Check bot latency", Handler: f.handlePing},
		{Name: "uptime", Category: "General", Description: "Check how long the bot has been online", Handler: f.handleUptime},
		{Name: "help", Aliases: []string{"commands"}, Category: "General", Usage: "[command]", Description: "List commands", Handler: f.handleHelp},
	}
}
