package repository

import (
	"context"
	"testing"
	"time"

	"guildkeeper/models"
	"guildkeeper/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModerationRepositories(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	store := NewStore(testDB.DB)
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)

	t.Run("mutes", func(t *testing.T) {
		mute := &models.Mute{UserID: "u1", GuildID: "g1", UnmuteAt: now.Add(10 * time.Minute), Reason: "spam"}
		require.NoError(t, store.Mutes().Upsert(ctx, mute))

		mutes, err := store.Mutes().LoadAll(ctx)
		require.NoError(t, err)
		require.Contains(t, mutes, "u1")
		assert.True(t, mute.UnmuteAt.Equal(mutes["u1"].UnmuteAt))
		assert.Equal(t, "spam", mutes["u1"].Reason)

		require.NoError(t, store.Mutes().Delete(ctx, "u1"))
		mutes, err = store.Mutes().LoadAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, mutes)
	})

	t.Run("warnings", func(t *testing.T) {
		require.NoError(t, store.Warnings().Upsert(ctx, "u2", 1))
		require.NoError(t, store.Warnings().Upsert(ctx, "u2", 2))

		warnings, err := store.Warnings().LoadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"u2": 2}, warnings)
	})

	t.Run("afk", func(t *testing.T) {
		require.NoError(t, store.AFK().Upsert(ctx, &models.AFK{UserID: "u3", Reason: "lunch", Since: now}))

		afk, err := store.AFK().LoadAll(ctx)
		require.NoError(t, err)
		require.Contains(t, afk, "u3")
		assert.Equal(t, "lunch", afk["u3"].Reason)

		require.NoError(t, store.AFK().Delete(ctx, "u3"))
		afk, err = store.AFK().LoadAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, afk)
	})

	t.Run("quarantines", func(t *testing.T) {
		q := testutil.CreateTestQuarantine("g1", "u4", "c1", now)
		require.NoError(t, store.Quarantines().Upsert(ctx, q))

		list, err := store.Quarantines().LoadAll(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "c1", list[0].ChannelID)

		require.NoError(t, store.Quarantines().Delete(ctx, "g1", "u4"))
		list, err = store.Quarantines().LoadAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("shop salaries and scores", func(t *testing.T) {
		require.NoError(t, store.Shop().Upsert(ctx, &models.ShopItem{Category: "vehicles", Name: "Bike", Price: 100}))
		require.NoError(t, store.Shop().Upsert(ctx, &models.ShopItem{Category: "vehicles", Name: "BIKE", Price: 120}))
		items, err := store.Shop().LoadAll(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, int64(120), items[0].Price)

		require.NoError(t, store.Salaries().Upsert(ctx, "Admin", 5000))
		salaries, err := store.Salaries().LoadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(5000), salaries["Admin"])

		require.NoError(t, store.TriviaScores().Upsert(ctx, "u5", 6))
		scores, err := store.TriviaScores().LoadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(6), scores["u5"])
	})
}
