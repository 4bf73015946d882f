package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"guildkeeper/cmd"
	"guildkeeper/database"

	log "github.com/sirupsen/logrus"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := handleMigrationCommand(); err != nil {
			log.WithError(err).Fatal("Migration failed")
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx); err != nil {
		log.WithError(err).Fatal("Application error")
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: guildkeeper migrate [up|down|status] [steps]")
	}

	url := database.MigrationDatabaseURL()
	if url == "" {
		return fmt.Errorf("DATABASE_URL is required for migrations")
	}

	migrator, err := database.NewMigrator(url)
	if err != nil {
		return err
	}
	defer migrator.Close()

	switch os.Args[2] {
	case "up":
		changed, err := migrator.Up()
		if err != nil {
			return err
		}
		if !changed {
			log.Info("No new migrations to apply")
			return nil
		}
	case "down":
		arg := ""
		if len(os.Args) > 3 {
			arg = os.Args[3]
		}
		steps, err := database.ParseSteps(arg)
		if err != nil {
			return err
		}
		changed, err := migrator.Down(steps)
		if err != nil {
			return err
		}
		if !changed {
			log.Info("No migrations to roll back")
			return nil
		}
	case "status":
	default:
		return fmt.Errorf("unknown migration command: %s", os.Args[2])
	}

	status, err := migrator.Status()
	if err != nil {
		return err
	}
	if status.Empty {
		log.Info("No migrations have been applied yet")
		return nil
	}
	log.WithFields(log.Fields{"version": status.Version, "dirty": status.Dirty}).Info("Schema version")
	return nil
}
