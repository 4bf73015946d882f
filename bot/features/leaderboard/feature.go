package leaderboard

import (
	"guildkeeper/bot/common"
	"guildkeeper/service"
)

const size = 10

type Feature struct {
	economy *service.EconomyService
	names   *common.UserResolver
	card    *CardGenerator
}

func New(economy *service.EconomyService, names *common.UserResolver) *Feature {
	return &Feature{
		economy: economy,
		names:   names,
		card:    NewCardGenerator(),
	}
}

func (f *Feature) Commands() []common.Command {
	return []common.Command{
		{Name: "rich", Aliases: []string{"leaderboard", "top", "lb"}, Category: "Economy", Description: "Show the richest users", Handler: f.handleRich},
		{Name: "richcard", Aliases: []string{"topcard"}, Category: "Economy", Description: "Show the richest users as an image", Handler: f.handleCard},
	}
}
