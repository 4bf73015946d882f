package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends
const (
	BackendJSON     = "json"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken    string `env:"DISCORD_TOKEN"`
	DiscordBotToken string `env:"DISCORD_BOT_TOKEN"`
	CommandPrefix   string `env:"COMMAND_PREFIX" envDefault:"!"`

	// Roles that can see quarantine channels, besides administrators
	StaffRoles []string `env:"STAFF_ROLES" envSeparator:"," envDefault:"president,vice president,prime minister,Chief of staff,Attorney general,LEGENDARY,Hall of famers,Admin,Mod,sergeant"`

	// Storage configuration
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"json"`
	DataDir        string `env:"DATA_DIR" envDefault:"data"`
	DatabaseURL    string `env:"DATABASE_URL"`
	SupabaseURL    string `env:"SUPABASE_URL"`
	DatabaseName   string `env:"DATABASE_NAME"`
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"data/guildkeeper.db"`

	// Game data
	EconomyFile   string `env:"ECONOMY_FILE"`
	CountriesFile string `env:"COUNTRIES_FILE"`

	// Event fan-out, disabled when empty
	NATSServers string `env:"NATS_SERVERS"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// Environment
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		if instance != nil {
			return
		}
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// Load reads configuration from the environment without touching the global instance
func Load() (*Config, error) {
	return load()
}

// load loads configuration from a .env file (if present) and environment variables
func load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// normalize folds legacy variable names into their canonical fields
func (c *Config) normalize() {
	if c.DiscordToken == "" {
		c.DiscordToken = c.DiscordBotToken
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = c.SupabaseURL
	}
	c.StorageBackend = strings.ToLower(strings.TrimSpace(c.StorageBackend))
	if c.CommandPrefix == "" {
		c.CommandPrefix = "!"
	}
	roles := c.StaffRoles[:0]
	for _, role := range c.StaffRoles {
		if role = strings.TrimSpace(role); role != "" {
			roles = append(roles, role)
		}
	}
	c.StaffRoles = roles
}

// Validate checks that required settings are present for the selected backend
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendJSON, BackendSQLite:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s backend", BackendPostgres)
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	if c.Environment != "test" && c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	return nil
}

// NewTestConfig returns a configuration suitable for tests
func NewTestConfig() *Config {
	return &Config{
		CommandPrefix:  "!",
		StaffRoles:     []string{"Admin", "Mod"},
		StorageBackend: BackendJSON,
		DataDir:        os.TempDir(),
		LogLevel:       "debug",
		LogFormat:      "text",
		Environment:    "test",
	}
}

// SetTestConfig replaces the global configuration, for tests only
func SetTestConfig(cfg *Config) {
	once.Do(func() {})
	instance = cfg
}

// ResetConfig clears the global configuration so the next Get reloads it
func ResetConfig() {
	instance = nil
	once = sync.Once{}
}
