package business

import (
	"context"
	"testing"

	"guildkeeper/bot/bottest"
	"guildkeeper/bot/common"
	"guildkeeper/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	feature   *Feature
	economy   *service.EconomyService
	business  *service.BusinessService
	messenger *bottest.Messenger
}

func newFixture(t *testing.T, wallet int64) *fixture {
	t.Helper()
	state := bottest.NewState(t)
	economy := service.NewEconomyService(state)
	business := service.NewBusinessService(state)
	_, err := economy.SetBalance(context.Background(), "100", wallet)
	require.NoError(t, err)
	return &fixture{
		feature:   New(state, business, economy),
		economy:   economy,
		business:  business,
		messenger: &bottest.Messenger{},
	}
}

func (fx *fixture) run(t *testing.T, name string, args ...string) error {
	t.Helper()
	msg := bottest.Message("g1", "c1", "100", "")
	return bottest.Invoke(t, fx.messenger, bottest.Find(t, fx.feature.Commands(), name), msg, args...)
}

func TestCreateStatusAndClose(t *testing.T) {
	fx := newFixture(t, 60000)

	require.NoError(t, fx.run(t, "mybusiness"))
	assert.Equal(t, "🏢 No Business", fx.messenger.Last().Embed.Title)
	assert.Contains(t, fx.messenger.Last().Embed.Description, "• `cafe` ☕ (min: $10,000)")

	require.NoError(t, fx.run(t, "createbusiness", "cafe", "Coffee Corner", "50000"))
	embed := fx.messenger.Last().Embed
	assert.Equal(t, "🏢 Business Created! ☕", embed.Title)
	assert.Contains(t, embed.Description, "**Type:** Cafe")
	assert.Contains(t, embed.Description, "**Daily Profit:** $7,500")
	assert.Equal(t, int64(10000), fx.economy.Balance("100").Wallet)

	require.NoError(t, fx.run(t, "mybusiness"))
	embed = fx.messenger.Last().Embed
	assert.Equal(t, "☕ Coffee Corner", embed.Title)
	assert.Contains(t, embed.Description, "**Last Collected:** Never")

	require.NoError(t, fx.run(t, "collectprofit"))
	embed = fx.messenger.Last().Embed
	assert.Equal(t, "💰 Profit Collected! ☕", embed.Title)
	assert.Contains(t, embed.Description, "**Profit Collected:** $7,500")
	assert.Contains(t, embed.Description, "**New Balance:** $17,500")

	var botErr *common.BotError
	require.ErrorAs(t, fx.run(t, "collectprofit"), &botErr)
	assert.Equal(t, "⏳ Profit Not Ready", botErr.Title)
	assert.Contains(t, botErr.Message, "Come back in **")

	_, err := fx.economy.SetBalance(context.Background(), "100", 40000)
	require.NoError(t, err)
	require.ErrorAs(t, fx.run(t, "createbusiness", "shop", "Second", "20000"), &botErr)
	assert.Equal(t, "Business Limit", botErr.Title)
	assert.Equal(t, int64(40000), fx.economy.Balance("100").Wallet)

	require.NoError(t, fx.run(t, "closebusiness"))
	assert.Contains(t, fx.messenger.Last().Embed.Description, "**Refund Received:** $25,000")
	assert.Equal(t, int64(65000), fx.economy.Balance("100").Wallet)

	_, err = fx.business.Get("100")
	assert.ErrorIs(t, err, service.ErrNoBusiness)
}

func TestCreateRejections(t *testing.T) {
	fx := newFixture(t, 15000)

	var botErr *common.BotError
	require.ErrorAs(t, fx.run(t, "createbusiness", "cafe", "Tiny", "500"), &botErr)
	assert.Equal(t, "Investment Too Low", botErr.Title)

	require.ErrorAs(t, fx.run(t, "createbusiness", "cafe", "Big", "90000"), &botErr)
	assert.Equal(t, "You need $90,000 but only have $15,000!", botErr.Message)

	require.ErrorAs(t, fx.run(t, "createbusiness", "casino", "Vegas", "12000"), &botErr)
	assert.Equal(t, "Invalid Business Type", botErr.Title)
	assert.Contains(t, botErr.Message, "cafe, shop, factory")

	require.ErrorAs(t, fx.run(t, "createbusiness", "cafe"), &botErr)
	assert.Equal(t, "Missing Argument", botErr.Title)
}
