package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"guildkeeper/config"
	"guildkeeper/repository/jsonfile"
	"guildkeeper/repository/memory"
	"guildkeeper/repository/sqlite"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("json", func(t *testing.T) {
		cfg := config.NewTestConfig()
		cfg.DataDir = t.TempDir()
		store := OpenStore(ctx, cfg)
		defer store.Close()
		assert.IsType(t, &jsonfile.Store{}, store)
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := config.NewTestConfig()
		cfg.StorageBackend = config.BackendSQLite
		cfg.SQLitePath = filepath.Join(t.TempDir(), "bot.db")
		store := OpenStore(ctx, cfg)
		defer store.Close()
		assert.IsType(t, &sqlite.Store{}, store)
	})

	t.Run("unusable data dir falls back to memory", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

		cfg := config.NewTestConfig()
		cfg.DataDir = filepath.Join(blocker, "data")
		store := OpenStore(ctx, cfg)
		assert.IsType(t, &memory.Store{}, store)
	})

	t.Run("unknown backend falls back to memory", func(t *testing.T) {
		cfg := config.NewTestConfig()
		cfg.StorageBackend = "redis"
		assert.IsType(t, &memory.Store{}, OpenStore(ctx, cfg))
	})
}

func TestConfigureLogging(t *testing.T) {
	defer log.SetLevel(log.GetLevel())
	defer log.SetFormatter(log.StandardLogger().Formatter)

	cfg := config.NewTestConfig()
	cfg.LogLevel = "warn"
	cfg.LogFormat = "json"
	ConfigureLogging(cfg)
	assert.Equal(t, log.WarnLevel, log.GetLevel())
	assert.IsType(t, &log.JSONFormatter{}, log.StandardLogger().Formatter)

	cfg.LogLevel = "chatty"
	cfg.LogFormat = "text"
	ConfigureLogging(cfg)
	assert.Equal(t, log.InfoLevel, log.GetLevel())
	assert.IsType(t, &log.TextFormatter{}, log.StandardLogger().Formatter)
}
