package bot

import (
	"context"
	"fmt"
	"time"

	"guildkeeper/bot/common"
	"guildkeeper/bot/features/admin"
	"guildkeeper/bot/features/business"
	"guildkeeper/bot/features/economy"
	"guildkeeper/bot/features/info"
	"guildkeeper/bot/features/leaderboard"
	"guildkeeper/bot/features/moderation"
	"guildkeeper/bot/features/quarantine"
	"guildkeeper/bot/features/shop"
	"guildkeeper/bot/features/trivia"
	"guildkeeper/scheduler"
	"guildkeeper/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const (
	nameCacheSize = 1024
	nameCacheTTL  = 10 * time.Minute
)

// Config holds bot configuration
type Config struct {
	Token      string
	Prefix     string
	StaffRoles []string
}

// Services are the domain services the bot exposes as commands
type Services struct {
	State      *service.State
	Economy    *service.EconomyService
	Business   *service.BusinessService
	Shop       *service.ShopService
	Salary     *service.SalaryService
	Moderation *service.ModerationService
	Quarantine *service.QuarantineService
	Trivia     *service.TriviaService
	Scheduler  *scheduler.Scheduler
}

type Bot struct {
	config  Config
	session *discordgo.Session
	router  *Router
	gate    *Gate
	workers *Workers
	names   *common.UserResolver
	trivia  *service.TriviaService
	ctx     context.Context
	cancel  context.CancelFunc
}

// New builds the session, features and scheduled jobs. Call Open to connect.
func New(config Config, svc Services) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	ctx, cancel := context.WithCancel(context.Background())
	b := &Bot{
		config:  config,
		session: dg,
		names:   common.NewUserResolver(nameCacheSize, nameCacheTTL, common.SessionNameFetcher(dg)),
		trivia:  svc.Trivia,
		ctx:     ctx,
		cancel:  cancel,
	}

	b.router = NewRouter(config.Prefix, dg, dg, func(m *discordgo.Message) (int64, error) {
		return common.MemberPermissions(dg, m.Author.ID, m.ChannelID)
	})
	b.workers = NewWorkers(svc.Scheduler, dg, svc.Salary, svc.Business, svc.Moderation)

	moderationFeature := moderation.New(svc.Moderation, dg)
	quarantineFeature := quarantine.New(svc.Quarantine, dg, config.StaffRoles)
	triviaFeature := trivia.New(svc.Trivia, dg, b.names)

	b.router.Register(info.New(dg, b.router, svc.State.Now()).Commands()...)
	b.router.Register(economy.New(svc.Economy).Commands()...)
	b.router.Register(leaderboard.New(svc.Economy, b.names).Commands()...)
	b.router.Register(business.New(svc.State, svc.Business, svc.Economy).Commands()...)
	b.router.Register(shop.New(svc.Shop, svc.Economy).Commands()...)
	b.router.Register(moderationFeature.Commands()...)
	b.router.Register(quarantineFeature.Commands()...)
	b.router.Register(triviaFeature.Commands()...)
	b.router.Register(admin.New(svc.Economy, svc.Salary, b.workers).Commands()...)

	b.gate = NewGate(b.router, moderationFeature, quarantineFeature, triviaFeature)

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onMemberAdd)
	dg.AddHandler(b.onMemberUpdate)
	return b, nil
}

// Open connects to the gateway
func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}
	return nil
}

func (b *Bot) Close() error {
	b.cancel()
	b.trivia.StopAll()
	return b.session.Close()
}

// Session exposes the gateway session
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.WithFields(log.Fields{
		"user":   r.User.Username,
		"id":     r.User.ID,
		"guilds": len(r.Guilds),
	}).Info("Logged in")
	if err := s.UpdateWatchStatus(0, b.config.Prefix+"help for commands"); err != nil {
		log.WithError(err).Warn("Failed to set presence")
	}
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	b.gate.Handle(b.ctx, m.Message)
}

func (b *Bot) onMemberUpdate(s *discordgo.Session, m *discordgo.GuildMemberUpdate) {
	if m.Member != nil && m.User != nil {
		b.names.Forget(m.GuildID, m.User.ID)
	}
}

func (b *Bot) onMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	guild, err := s.State.Guild(m.GuildID)
	if err != nil {
		log.WithError(err).WithField("guild_id", m.GuildID).Warn("Failed to load guild for welcome")
		return
	}
	channels, err := common.GuildChannels(s, m.GuildID)
	if err != nil {
		log.WithError(err).WithField("guild_id", m.GuildID).Warn("Failed to list channels for welcome")
		return
	}
	channelID := WelcomeChannel(channels, guild.SystemChannelID)
	if channelID == "" {
		return
	}
	if _, err := s.ChannelMessageSendEmbed(channelID, WelcomeEmbed(guild, m.Member)); err != nil {
		log.WithError(err).WithField("guild_id", m.GuildID).Warn("Failed to send welcome")
	}
}

// WelcomeChannel picks #welcome, then #general, then the system channel
func WelcomeChannel(channels []*discordgo.Channel, systemChannelID string) string {
	if channel := common.FindTextChannel(channels, "welcome", "general"); channel != nil {
		return channel.ID
	}
	return systemChannelID
}

// WelcomeEmbed greets a new member
func WelcomeEmbed(guild *discordgo.Guild, member *discordgo.Member) *discordgo.MessageEmbed {
	embed := common.NewEmbed("Welcome",
		fmt.Sprintf("Welcome %s to %s!", member.Mention(), guild.Name),
		common.ColorSuccess)
	common.AddField(embed, "Member Count", fmt.Sprintf("%d", guild.MemberCount), true)
	if member.User != nil && member.User.Avatar != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: member.User.AvatarURL("256")}
	}
	return embed
}
