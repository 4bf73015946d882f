package bot

import (
	"context"
	"testing"

	"guildkeeper/bot/bottest"
	"guildkeeper/bot/common"
	"guildkeeper/bot/features/economy"
	"guildkeeper/bot/features/moderation"
	"guildkeeper/bot/features/quarantine"
	"guildkeeper/bot/features/trivia"
	"guildkeeper/models"
	"guildkeeper/service"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gateFixture struct {
	gate       *Gate
	messenger  *bottest.Messenger
	moderation *service.ModerationService
	quarantine *service.QuarantineService
	trivia     *service.TriviaService
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()
	state := bottest.NewState(t)
	messenger := &bottest.Messenger{}

	countries, err := service.ParseCountries([]byte(`{"europe": [{"country": "Italy", "capital": "Rome", "flag": "🇮🇹"}]}`))
	require.NoError(t, err)

	modSvc := service.NewModerationService(state)
	quarantineSvc := service.NewQuarantineService(state)
	triviaSvc := service.NewTriviaService(state, countries)
	t.Cleanup(triviaSvc.StopAll)

	router := NewRouter("!", nil, messenger, func(m *discordgo.Message) (int64, error) { return 0, nil })
	router.Register(economy.New(service.NewEconomyService(state)).Commands()...)

	names := common.NewUserResolver(8, 0, func(guildID, userID string) (string, error) { return userID, nil })
	gate := NewGate(router,
		moderation.New(modSvc, messenger),
		quarantine.New(quarantineSvc, messenger, nil),
		trivia.New(triviaSvc, messenger, names),
	)
	return &gateFixture{gate: gate, messenger: messenger, moderation: modSvc, quarantine: quarantineSvc, trivia: triviaSvc}
}

func TestGate_IgnoresBots(t *testing.T) {
	fx := newGateFixture(t)
	msg := bottest.Message("g1", "c1", "b1", "!balance")
	msg.Author.Bot = true

	fx.gate.Handle(context.Background(), msg)
	assert.Empty(t, fx.messenger.Sent())
}

func TestGate_DispatchesCommands(t *testing.T) {
	fx := newGateFixture(t)
	fx.gate.Handle(context.Background(), bottest.Message("g1", "c1", "u1", "!balance"))

	require.Len(t, fx.messenger.Sent(), 1)
	assert.Equal(t, "💰 useru1's Balance", fx.messenger.Last().Embed.Title)
}

func TestGate_ClearsAFKOnChat(t *testing.T) {
	ctx := context.Background()
	fx := newGateFixture(t)
	fx.moderation.SetAFK(ctx, "u1", "lunch")

	fx.gate.Handle(ctx, bottest.Message("g1", "c1", "u1", "!balance"))
	_, away := fx.moderation.GetAFK("u1")
	assert.True(t, away, "commands do not end AFK")

	fx.gate.Handle(ctx, bottest.Message("g1", "c1", "u1", "back"))
	_, away = fx.moderation.GetAFK("u1")
	assert.False(t, away)
	assert.Equal(t, "👋 Welcome back <@u1>! You were AFK for 0 minutes.", fx.messenger.Last().Content)
}

func TestGate_NotifiesMentionedAFK(t *testing.T) {
	ctx := context.Background()
	fx := newGateFixture(t)
	fx.moderation.SetAFK(ctx, "u2", "sleeping")

	msg := bottest.Message("g1", "c1", "u1", "hey <@u2>")
	msg.Mentions = []*discordgo.User{{ID: "u2", Username: "sleeper"}}
	fx.gate.Handle(ctx, msg)

	require.Len(t, fx.messenger.Sent(), 1)
	assert.Contains(t, fx.messenger.Last().Content, "💤 **sleeper** is AFK: sleeping")
}

func TestGate_QuarantineBlocksCommandsAndChat(t *testing.T) {
	ctx := context.Background()
	fx := newGateFixture(t)
	require.NoError(t, fx.quarantine.Quarantine(ctx, &models.Quarantine{GuildID: "g1", UserID: "u1", ChannelID: "qc"}))

	cmd := bottest.Message("g1", "general", "u1", "!balance")
	fx.gate.Handle(ctx, cmd)
	assert.Equal(t, []string{cmd.ID}, fx.messenger.Deleted())
	assert.Equal(t, "dm-u1", fx.messenger.Last().ChannelID)

	fx.gate.Handle(ctx, bottest.Message("g1", "qc", "u1", "!balance"))
	assert.Equal(t, "💰 useru1's Balance", fx.messenger.Last().Embed.Title)
}

func TestGate_ScoresTriviaGuesses(t *testing.T) {
	ctx := context.Background()
	fx := newGateFixture(t)
	_, err := fx.trivia.Start("g1", "c1", "capital", "europe")
	require.NoError(t, err)

	fx.gate.Handle(ctx, bottest.Message("g1", "c1", "u1", "rome"))
	require.Len(t, fx.messenger.Sent(), 1)
	assert.Equal(t, "🥇 Correct!", fx.messenger.Last().Embed.Title)

	fx.gate.Handle(ctx, bottest.Message("g1", "c1", "u2", "!rome"))
	assert.Equal(t, "❌ Command Not Found", fx.messenger.Last().Embed.Title)
}
