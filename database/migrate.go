package database

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SchemaVersion is the state of the guildkeeper schema in a database
type SchemaVersion struct {
	Version uint
	Dirty   bool
	// Empty is set when no migration has ever been applied
	Empty bool
}

// Migrator applies the embedded guildkeeper schema to one Postgres database
type Migrator struct {
	m *migrate.Migrate
}

// MigrationDatabaseURL reads the Postgres URL for `guildkeeper migrate` from the
// environment, so the subcommand works without a Discord token or economy file
func MigrationDatabaseURL() string {
	baseURL := os.Getenv("DATABASE_URL")
	if baseURL == "" {
		baseURL = os.Getenv("SUPABASE_URL")
	}
	return ConstructDatabaseURL(baseURL, os.Getenv("DATABASE_NAME"))
}

// ParseSteps reads the rollback count of `guildkeeper migrate down`, defaulting to one
func ParseSteps(arg string) (int, error) {
	if arg == "" {
		return 1, nil
	}
	steps, err := strconv.Atoi(arg)
	if err != nil || steps <= 0 {
		return 0, fmt.Errorf("invalid steps value %q: must be a positive integer", arg)
	}
	return steps, nil
}

// NewMigrator opens a dedicated connection for schema changes
func NewMigrator(databaseURL string) (*Migrator, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	driver, err := postgres.WithInstance(stdlib.OpenDB(*config.ConnConfig), &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return &Migrator{m: m}, nil
}

// Close releases the migration connection
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}

// Up applies every pending migration and reports whether anything changed
func (mg *Migrator) Up() (bool, error) {
	if err := mg.m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return false, nil
		}
		return false, fmt.Errorf("failed to apply migrations: %w", err)
	}
	return true, nil
}

// Down rolls back steps migrations and reports whether anything changed
func (mg *Migrator) Down(steps int) (bool, error) {
	if err := mg.m.Steps(-steps); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return false, nil
		}
		return false, fmt.Errorf("failed to roll back %d migrations: %w", steps, err)
	}
	return true, nil
}

// Status returns the schema version currently recorded in the database
func (mg *Migrator) Status() (SchemaVersion, error) {
	version, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return SchemaVersion{Empty: true}, nil
	}
	if err != nil {
		return SchemaVersion{}, fmt.Errorf("failed to read schema version: %w", err)
	}
	return SchemaVersion{Version: version, Dirty: dirty}, nil
}

// EnsureSchema brings the database up to date before the Postgres store opens.
// The bot calls it on every start; it is a no-op once the schema is current.
func EnsureSchema(databaseURL string) error {
	mg, err := NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer mg.Close()

	changed, err := mg.Up()
	if err != nil {
		return err
	}
	if changed {
		status, err := mg.Status()
		if err != nil {
			return err
		}
		log.WithField("version", status.Version).Info("Database schema upgraded")
	}
	return nil
}
