package shop

import (
	"guildkeeper/bot/common"
	"guildkeeper/service"

	"github.com/bwmarrin/discordgo"
)

type Feature struct {
	shop    *service.ShopService
	economy *service.EconomyService
	// granter builds the role granter for a purchase; replaced in tests
	granter func(inv *common.Invocation) service.RoleGranter
}

func New(shop *service.ShopService, economy *service.EconomyService) *Feature {
	f := &Feature{
		shop:    shop,
		economy: economy,
	}
	f.granter = sessionGranter
	return f
}

func (f *Feature) Commands() []common.Command {
	return []common.Command{
		{Name: "shop", Category: "Shop", Usage: "[category]", Description: "Browse the shop", Handler: f.handleShop},
		{Name: "buy", Category: "Shop", Usage: "<category> <item name>", Description: "Buy an item", Handler: f.handleBuy},
		{Name: "inventory", Aliases: []string{"inv", "items"}, Category: "Shop", Usage: "[@user]", Description: "Show owned items", Handler: f.handleInventory},
		{Name: "addshopitem", Category: "Admin", Usage: `<category> "<name>" <price> [description]`, Description: "Add a shop item", Permission: discordgo.PermissionAdministrator, Handler: f.handleAddItem},
		{Name: "editshopitem", Aliases: []string{"edititem"}, Category: "Admin", Usage: `<category> "<name>" <price> <description>`, Description: "Edit a shop item", Permission: discordgo.PermissionAdministrator, Handler: f.handleEditItem},
	}
}
