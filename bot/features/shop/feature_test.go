package shop

import (
	"context"
	"testing"

	"guildkeeper/bot/bottest"
	"guildkeeper/bot/common"
	"guildkeeper/models"
	"guildkeeper/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	feature   *Feature
	economy   *service.EconomyService
	messenger *bottest.Messenger
	granted   []string
	grantErr  error
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	state := bottest.NewState(t)
	economy := service.NewEconomyService(state)
	fx := &fixture{
		feature:   New(service.NewShopService(state), economy),
		economy:   economy,
		messenger: &bottest.Messenger{},
	}
	fx.feature.granter = func(inv *common.Invocation) service.RoleGranter {
		return func(item models.ShopItem) error {
			if fx.grantErr != nil {
				return fx.grantErr
			}
			fx.granted = append(fx.granted, item.Name)
			return nil
		}
	}
	return fx
}

func (fx *fixture) run(t *testing.T, name string, args ...string) error {
	t.Helper()
	return bottest.Invoke(t, fx.messenger, bottest.Find(t, fx.feature.Commands(), name), bottest.Message("g1", "c1", "100", ""), args...)
}

func TestAddBrowseAndBuy(t *testing.T) {
	fx := newFixture(t)

	require.NoError(t, fx.run(t, "addshopitem", "vehicles", "Sports Car", "5000", "Very", "fast"))
	assert.Equal(t, "✅ Shop Item Added", fx.messenger.Last().Embed.Title)
	assert.Contains(t, fx.messenger.Last().Embed.Description, "**Description:** Very fast")

	var botErr *common.BotError
	require.ErrorAs(t, fx.run(t, "addshopitem", "vehicles", "sports car", "10"), &botErr)
	assert.Equal(t, "Item 'sports car' already exists in vehicles category!", botErr.Message)

	require.NoError(t, fx.run(t, "shop"))
	assert.Contains(t, fx.messenger.Last().Embed.Description, "• `!shop vehicles` - 1 item\n")

	require.NoError(t, fx.run(t, "shop", "vehicles"))
	embed := fx.messenger.Last().Embed
	assert.Equal(t, "🛒 Vehicles Shop", embed.Title)
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, "🛍️ 1. Sports Car - $5,000", embed.Fields[0].Name)

	require.ErrorAs(t, fx.run(t, "buy", "vehicles", "Sports", "Car"), &botErr)
	assert.Equal(t, "Insufficient Funds", botErr.Title)
	assert.Contains(t, botErr.Message, "You need **$5,000** but only have **$0**!")

	_, err := fx.economy.SetBalance(context.Background(), "100", 8000)
	require.NoError(t, err)

	require.ErrorAs(t, fx.run(t, "buy", "vehicles", "Sport", "Car"), &botErr)
	assert.Contains(t, botErr.Message, "Did you mean: Sports Car?")

	require.NoError(t, fx.run(t, "buy", "vehicles", "sports", "car"))
	assert.Equal(t, "✅ Purchase Successful!", fx.messenger.Last().Embed.Title)
	assert.Equal(t, int64(3000), fx.economy.Balance("100").Wallet)

	require.NoError(t, fx.run(t, "inventory"))
	embed = fx.messenger.Last().Embed
	assert.Equal(t, "**Total Items:** 1", embed.Description)
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, "Vehicles (1)", embed.Fields[0].Name)
	assert.Equal(t, "• Sports Car", embed.Fields[0].Value)
}

func TestBuyRole(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, fx.run(t, "addshopitem", "roles", "VIP", "1000"))
	_, err := fx.economy.SetBalance(context.Background(), "100", 5000)
	require.NoError(t, err)

	fx.grantErr = service.ErrAlreadyOwned
	var botErr *common.BotError
	require.ErrorAs(t, fx.run(t, "buy", "roles", "VIP"), &botErr)
	assert.Equal(t, "You already have the **VIP** role!", botErr.Message)
	assert.Equal(t, int64(5000), fx.economy.Balance("100").Wallet)

	fx.grantErr = nil
	require.NoError(t, fx.run(t, "buy", "roles", "VIP"))
	assert.Equal(t, []string{"VIP"}, fx.granted)
	embed := fx.messenger.Last().Embed
	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "🎭 Role Added", embed.Fields[0].Name)
	assert.Equal(t, int64(4000), fx.economy.Balance("100").Wallet)

	require.ErrorAs(t, fx.run(t, "buy", "gadgets", "Phone"), &botErr)
	assert.Equal(t, "Category **gadgets** not found!\nUse `!shop` to see available categories.", botErr.Message)

	require.ErrorAs(t, fx.run(t, "buy", "roles"), &botErr)
	assert.Equal(t, "Usage Error", botErr.Title)
}
