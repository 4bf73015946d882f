package business

import (
	"guildkeeper/bot/common"
	"guildkeeper/service"
)

type Feature struct {
	business *service.BusinessService
	economy  *service.EconomyService
	state    *service.State
}

func New(state *service.State, business *service.BusinessService, economy *service.EconomyService) *Feature {
	return &Feature{
		business: business,
		economy:  economy,
		state:    state,
	}
}

func (f *Feature) Commands() []common.Command {
	return []common.Command{
		{Name: "createbusiness", Aliases: []string{"startbusiness"}, Category: "Business", Usage: `<type> "<name>" <investment>`, Description: "Start a business", Handler: f.handleCreate},
		{Name: "mybusiness", Aliases: []string{"business", "mybiz"}, Category: "Business", Description: "Show your business", Handler: f.handleStatus},
		{Name: "collectprofit", Category: "Business", Description: "Collect your daily profit", Handler: f.handleCollect},
		{Name: "upgradebusiness", Category: "Business", Description: "Upgrade your business (max level 10)", Handler: f.handleUpgrade},
		{Name: "closebusiness", Category: "Business", Description: "Close your business for a 50% refund", Handler: f.handleClose},
	}
}
