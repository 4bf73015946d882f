package trivia

import (
	"guildkeeper/bot/common"
	"guildkeeper/service"

	"github.com/bwmarrin/discordgo"
)

const leaderboardSize = 10

type Feature struct {
	trivia    *service.TriviaService
	messenger common.Messenger
	names     *common.UserResolver
}

// New creates the trivia feature and registers it as the service's announcer
func New(trivia *service.TriviaService, messenger common.Messenger, names *common.UserResolver) *Feature {
	f := &Feature{
		trivia:    trivia,
		messenger: messenger,
		names:     names,
	}
	trivia.SetAnnouncer(f)
	return f
}

func (f *Feature) Commands() []common.Command {
	return []common.Command{
		{Name: "startcountrygame", Category: "Country Game", Usage: "<flag|capital> <continent>", Description: "Start a flag or capital guessing game", Permission: discordgo.PermissionManageMessages, Handler: f.handleStart},
		{Name: "pausegame", Category: "Country Game", Description: "Pause the country game", Permission: discordgo.PermissionManageMessages, Handler: f.handlePause},
		{Name: "resumegame", Category: "Country Game", Description: "Resume a paused country game", Permission: discordgo.PermissionManageMessages, Handler: f.handleResume},
		{Name: "stopcountrygame", Category: "Country Game", Description: "Stop the country game", Permission: discordgo.PermissionManageMessages, Handler: f.handleStop},
		{Name: "countryleaderboard", Aliases: []string{"countrylb", "countryscores"}, Category: "Country Game", Description: "Show the country game leaderboard", Handler: f.handleLeaderboard},
	}
}
