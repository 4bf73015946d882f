package shop

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"guildkeeper/bot/common"
	"guildkeeper/models"
	"guildkeeper/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const inventoryDisplayLimit = 10

var title = cases.Title(language.English)

func (f *Feature) handleShop(inv *common.Invocation) error {
	wallet := f.economy.Balance(inv.AuthorID()).Wallet

	if len(inv.Args) == 0 {
		var b strings.Builder
		for _, category := range f.shop.Categories() {
			items, _ := f.shop.Items(category)
			if len(items) == 0 {
				continue
			}
			plural := "s"
			if len(items) == 1 {
				plural = ""
			}
			fmt.Fprintf(&b, "• `%sshop %s` - %d item%s\n", inv.Prefix, category, len(items), plural)
		}
		inv.ReplyEmbed(common.NewEmbed(
			"🛒 Shop - Categories",
			fmt.Sprintf("**Available Categories:**\n%s\n**How to buy:** `%[2]sbuy <category> <item_name>`\n**Example:** `%[2]sbuy roles VIP`\n\n**Your Balance:** %[3]s",
				b.String(), inv.Prefix, common.FormatMoney(wallet)),
			common.ColorInfo,
		))
		return nil
	}

	category := strings.ToLower(inv.Args[0])
	items, err := f.shop.Items(category)
	if err != nil && !errors.Is(err, service.ErrUnknownCategory) {
		return err
	}
	if len(items) == 0 {
		return common.NewBotError("Shop Error",
			"No items in **%s** category yet!\nAdmins can add items with `%saddshopitem %s <name> <price> <description>`",
			category, inv.Prefix, category)
	}

	embed := common.NewEmbed(
		fmt.Sprintf("🛒 %s Shop", title.String(category)),
		fmt.Sprintf("Use `%sbuy %s <item_name>` to purchase\n**Your Balance:** %s", inv.Prefix, category, common.FormatMoney(wallet)),
		common.ColorInfo,
	)
	for i, item := range items {
		desc := item.Description
		if desc == "" {
			desc = "No description"
		}
		common.AddField(embed, fmt.Sprintf("%s %d. %s - %s", item.Emoji, i+1, item.Name, common.FormatMoney(item.Price)), desc, false)
	}
	inv.ReplyEmbed(embed)
	return nil
}

func (f *Feature) handleBuy(inv *common.Invocation) error {
	if len(inv.Args) < 2 {
		return common.NewBotError("Usage Error",
			"**Usage:** `%[1]sbuy <category> <item_name>`\n**Example:** `%[1]sbuy roles VIP`\n\nUse `%[1]sshop` to see available categories and items.",
			inv.Prefix)
	}
	category := strings.ToLower(inv.Args[0])
	name := inv.Rest(1)

	item, account, err := f.shop.Buy(inv.Ctx, inv.AuthorID(), category, name, f.granter(inv))
	var notFound *service.ItemNotFoundError
	switch {
	case errors.Is(err, service.ErrUnknownCategory):
		return common.NewBotError("Shop Error", "Category **%s** not found!\nUse `%sshop` to see available categories.", category, inv.Prefix)
	case errors.As(err, &notFound):
		msg := fmt.Sprintf("Item **%s** not found in %s category!\nUse `%sshop %s` to see available items.", name, category, inv.Prefix, category)
		if len(notFound.Suggestions) > 0 {
			msg += fmt.Sprintf("\nDid you mean: %s?", strings.Join(notFound.Suggestions, ", "))
		}
		return &common.BotError{Title: "Shop Error", Message: msg}
	case errors.Is(err, service.ErrInsufficientFunds):
		wallet := f.economy.Balance(inv.AuthorID()).Wallet
		price := int64(0)
		if items, itemsErr := f.shop.Items(category); itemsErr == nil {
			for _, it := range items {
				if strings.EqualFold(it.Name, name) {
					price = it.Price
				}
			}
		}
		return common.NewBotError("Insufficient Funds", "You need **%s** but only have **%s**!\nUse `%swork` or `%sdaily` to earn more money.",
			common.FormatMoney(price), common.FormatMoney(wallet), inv.Prefix, inv.Prefix)
	case errors.Is(err, service.ErrAlreadyOwned):
		return common.NewBotError("Already Owned", "You already have the **%s** role!", name)
	case err != nil:
		return err
	}

	embed := common.NewEmbed(
		"✅ Purchase Successful!",
		fmt.Sprintf("You bought **%s** for **%s**!", item.Name, common.FormatMoney(item.Price)),
		common.ColorSuccess,
	)
	if item.Category == models.CategoryRoles {
		common.AddField(embed, "🎭 Role Added", fmt.Sprintf("You now have the **%s** role!", item.Name), false)
	}
	common.AddField(embed, "💰 New Balance", fmt.Sprintf("**%s**", common.FormatMoney(account.Wallet)), false)
	inv.ReplyEmbed(embed)
	return nil
}

func (f *Feature) handleInventory(inv *common.Invocation) error {
	target := inv.Author()
	if len(inv.Args) > 0 {
		id, err := inv.UserArg(0)
		if err != nil {
			return err
		}
		if target, err = inv.User(id); err != nil {
			return err
		}
	}

	owned := f.shop.Inventory(target.ID)
	heading := fmt.Sprintf("📦 %s's Inventory", target.Username)
	if len(owned) == 0 {
		inv.ReplyEmbed(common.NewEmbed(heading,
			fmt.Sprintf("%s doesn't own any items yet!\nVisit the shop with `%sshop` to buy items.", target.Username, inv.Prefix),
			common.ColorInfo))
		return nil
	}

	total := 0
	for _, items := range owned {
		total += len(items)
	}
	embed := common.NewEmbed(heading, fmt.Sprintf("**Total Items:** %d", total), common.ColorInfo)
	for _, category := range f.inventoryOrder(owned) {
		items := owned[category]
		shown := items
		if len(shown) > inventoryDisplayLimit {
			shown = shown[:inventoryDisplayLimit]
		}
		lines := make([]string, len(shown))
		for i, item := range shown {
			lines[i] = "• " + item
		}
		if extra := len(items) - len(shown); extra > 0 {
			lines = append(lines, fmt.Sprintf("• ... and %d more", extra))
		}
		common.AddField(embed, fmt.Sprintf("%s (%d)", title.String(category), len(items)), strings.Join(lines, "\n"), false)
	}
	if target.ID != inv.AuthorID() {
		common.SetFooter(embed, "Requested by "+inv.Author().Username)
	}
	inv.ReplyEmbed(embed)
	return nil
}

// inventoryOrder lists owned categories in shop order, unknown ones last
func (f *Feature) inventoryOrder(owned map[string][]string) []string {
	var order []string
	seen := make(map[string]bool)
	for _, category := range f.shop.Categories() {
		if _, ok := owned[category]; ok {
			order = append(order, category)
			seen[category] = true
		}
	}
	var rest []string
	for category := range owned {
		if !seen[category] {
			rest = append(rest, category)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

func (f *Feature) handleAddItem(inv *common.Invocation) error {
	category, err := inv.Arg(0)
	if err != nil {
		return err
	}
	name, err := inv.Arg(1)
	if err != nil {
		return err
	}
	price, err := inv.IntArg(2, "price")
	if err != nil {
		return err
	}
	description := inv.Rest(3)

	item, err := f.shop.AddItem(inv.Ctx, category, name, price, description, "")
	switch {
	case errors.Is(err, service.ErrInvalidAmount):
		return common.InvalidArgument("Price must be greater than 0!")
	case errors.Is(err, service.ErrDuplicateItem):
		return common.NewBotError("Error", "Item '%s' already exists in %s category!", name, strings.ToLower(category))
	case err != nil:
		return err
	}

	if description == "" {
		description = "No description"
	}
	inv.ReplyEmbed(common.NewEmbed(
		"✅ Shop Item Added",
		fmt.Sprintf("**Item:** %s\n**Category:** %s\n**Price:** %s\n**Description:** %s\n\nUse `%sshop %s` to view it!",
			item.Name, item.Category, common.FormatMoney(item.Price), description, inv.Prefix, item.Category),
		common.ColorSuccess,
	))
	return nil
}

func (f *Feature) handleEditItem(inv *common.Invocation) error {
	category, err := inv.Arg(0)
	if err != nil {
		return err
	}
	name, err := inv.Arg(1)
	if err != nil {
		return err
	}
	price, err := inv.IntArg(2, "price")
	if err != nil {
		return err
	}
	description := inv.Rest(3)
	if description == "" {
		return inv.Missing()
	}

	var previous string
	if items, itemsErr := f.shop.Items(category); itemsErr == nil {
		for _, it := range items {
			if strings.EqualFold(it.Name, name) {
				previous = it.Description
			}
		}
	}
	if previous == "" {
		previous = "No description"
	}

	oldPrice, item, err := f.shop.EditItem(inv.Ctx, category, name, price, description)
	if errors.Is(err, service.ErrUnknownCategory) || errors.Is(err, service.ErrItemNotFound) {
		return common.NewBotError("Error", "Item **%s** not found in %s category!", name, strings.ToLower(category))
	}
	if err != nil {
		return err
	}

	inv.ReplyEmbed(common.NewEmbed(
		"✅ Item Updated",
		fmt.Sprintf("**Item:** %s\n**Category:** %s\n\n**Old Price:** %s\n**New Price:** %s\n\n**Old Description:** %s\n**New Description:** %s",
			item.Name, item.Category, common.FormatMoney(oldPrice), common.FormatMoney(item.Price), previous, item.Description),
		common.ColorSuccess,
	))
	return nil
}

// sessionGranter gives the buyer the guild role named after the item, creating the role when missing
func sessionGranter(inv *common.Invocation) service.RoleGranter {
	return func(item models.ShopItem) error {
		s := inv.Session
		if s == nil || inv.GuildID() == "" {
			return common.NewBotError("Error", "Roles can only be bought inside a server.")
		}
		roles, err := common.GuildRoles(s, inv.GuildID())
		if err != nil {
			return err
		}
		role := common.FindRoleByName(roles, item.Name)
		if role == nil {
			color := common.ColorGold
			role, err = s.GuildRoleCreate(inv.GuildID(), &discordgo.RoleParams{Name: item.Name, Color: &color})
			if err != nil {
				log.WithError(err).WithField("role", item.Name).Warn("Failed to create shop role")
				return common.NewBotError("Permission Error", "I don't have permission to create roles!")
			}
		}

		member, err := common.GuildMember(s, inv.GuildID(), inv.AuthorID())
		if err != nil {
			return err
		}
		if common.HasRole(member, role.ID) {
			return service.ErrAlreadyOwned
		}
		if err := s.GuildMemberRoleAdd(inv.GuildID(), inv.AuthorID(), role.ID); err != nil {
			log.WithError(err).WithField("role", item.Name).Warn("Failed to grant shop role")
			return common.NewBotError("Permission Error", "I don't have permission to give you this role!")
		}
		return nil
	}
}
