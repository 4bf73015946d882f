package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"guildkeeper/bot"
	"guildkeeper/config"
	"guildkeeper/database"
	"guildkeeper/events"
	"guildkeeper/repository"
	"guildkeeper/repository/jsonfile"
	"guildkeeper/repository/memory"
	"guildkeeper/repository/sqlite"
	"guildkeeper/scheduler"
	"guildkeeper/service"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// ConfigureLogging applies the configured level and format to the standard logger
func ConfigureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if strings.EqualFold(cfg.LogFormat, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	ConfigureLogging(cfg)
	log.WithField("environment", cfg.Environment).Info("Starting guildkeeper")

	economy, err := config.LoadEconomy(cfg.EconomyFile)
	if err != nil {
		return err
	}
	countries, err := service.LoadCountries(cfg.CountriesFile)
	if err != nil {
		return err
	}

	store := OpenStore(ctx, cfg)
	defer func() {
		if err := store.Close(); err != nil {
			log.WithError(err).Warn("Failed to close store")
		}
	}()

	eventBus := events.NewBus()
	if cfg.NATSServers != "" {
		forwarder, err := events.ConnectNATS(cfg.NATSServers, "guildkeeper")
		if err != nil {
			log.WithError(err).Warn("Event forwarding disabled")
		} else {
			forwarder.Attach(eventBus)
			defer forwarder.Close()
		}
	}

	state := service.NewState(store, economy, service.WithEventBus(eventBus))
	if err := state.Load(ctx); err != nil {
		log.WithError(err).Warn("Continuing with partially loaded state")
	}

	services := bot.Services{
		State:      state,
		Economy:    service.NewEconomyService(state),
		Business:   service.NewBusinessService(state),
		Shop:       service.NewShopService(state),
		Salary:     service.NewSalaryService(state),
		Moderation: service.NewModerationService(state),
		Quarantine: service.NewQuarantineService(state),
		Trivia:     service.NewTriviaService(state, countries),
		Scheduler:  scheduler.New(store.TaskRuns(), state.Clock(), eventBus),
	}

	discordBot, err := bot.New(bot.Config{
		Token:      cfg.DiscordToken,
		Prefix:     cfg.CommandPrefix,
		StaffRoles: cfg.StaffRoles,
	}, services)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}

	if err := discordBot.Open(); err != nil {
		return err
	}
	log.WithField("prefix", cfg.CommandPrefix).Info("Bot is running")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stop := services.Scheduler.Start(gctx)
		<-gctx.Done()
		stop()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down bot...")
		return discordBot.Close()
	})

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err = <-done:
	case <-waitAfter(ctx, shutdownTimeout):
		err = errors.New("shutdown timeout exceeded")
	}
	if err != nil {
		log.WithError(err).Error("Shutdown finished with errors")
		return err
	}
	log.Info("Shutdown completed")
	return nil
}

// waitAfter fires d after ctx is cancelled
func waitAfter(ctx context.Context, d time.Duration) <-chan time.Time {
	out := make(chan time.Time, 1)
	go func() {
		<-ctx.Done()
		out <- <-time.After(d)
	}()
	return out
}

// OpenStore opens the configured backend. A backend that cannot be opened is
// logged and replaced by an in-memory store so the bot keeps running.
func OpenStore(ctx context.Context, cfg *config.Config) service.Store {
	store, err := openBackend(ctx, cfg)
	if err != nil {
		log.WithError(err).WithField("backend", cfg.StorageBackend).
			Error("Storage unavailable, falling back to in-memory store; data will not survive a restart")
		return memory.NewStore()
	}
	log.WithField("backend", cfg.StorageBackend).Info("Storage ready")
	return store
}

func openBackend(ctx context.Context, cfg *config.Config) (service.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		url := database.ConstructDatabaseURL(cfg.DatabaseURL, cfg.DatabaseName)
		if err := database.EnsureSchema(url); err != nil {
			return nil, err
		}
		db, err := database.NewConnection(ctx, url)
		if err != nil {
			return nil, err
		}
		return repository.NewStore(db), nil
	case config.BackendSQLite:
		return sqlite.Open(cfg.SQLitePath)
	case config.BackendJSON:
		return jsonfile.NewStore(cfg.DataDir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
