package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"guildkeeper/models"
	"guildkeeper/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*Store, string) {
	path := filepath.Join(t.TempDir(), "data", "guildkeeper.db")
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestAccounts_PersistAcrossReopen(t *testing.T) {
	ctx := context.Background()
	store, path := openTestStore(t)

	work := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	account := models.NewAccount("10")
	account.Wallet = 300
	account.Bank = 700
	account.LastWork = &work
	account.OwnedItems["roles"] = []string{"VIP"}
	account.Business = &models.Business{Name: "Byte", Type: "tech", Investment: 100000, ProfitRate: 0.3, Level: 1, CreatedAt: work}
	require.NoError(t, store.Accounts().Upsert(ctx, account))
	require.NoError(t, store.Accounts().UpsertMany(ctx, []*models.Account{
		{UserID: "11", Wallet: 1},
		{UserID: "12", Wallet: 2},
	}))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	accounts, err := reopened.Accounts().LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 3)

	got := accounts["10"]
	assert.Equal(t, int64(300), got.Wallet)
	assert.Equal(t, int64(700), got.Bank)
	assert.Nil(t, got.LastDaily)
	require.NotNil(t, got.LastWork)
	assert.True(t, work.Equal(*got.LastWork))
	assert.Equal(t, []string{"VIP"}, got.OwnedItems["roles"])
	require.NotNil(t, got.Business)
	assert.Equal(t, "Byte", got.Business.Name)
	assert.NotNil(t, accounts["12"].OwnedItems)
}

func TestModerationTables(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Mutes().Upsert(ctx, &models.Mute{UserID: "u1", GuildID: "g1", UnmuteAt: now, Reason: "spam"}))
	mutes, err := store.Mutes().LoadAll(ctx)
	require.NoError(t, err)
	require.Contains(t, mutes, "u1")
	assert.True(t, now.Equal(mutes["u1"].UnmuteAt))
	require.NoError(t, store.Mutes().Delete(ctx, "u1"))
	mutes, err = store.Mutes().LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, mutes)

	require.NoError(t, store.Warnings().Upsert(ctx, "u1", 3))
	warnings, err := store.Warnings().LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, warnings["u1"])

	require.NoError(t, store.AFK().Upsert(ctx, &models.AFK{UserID: "u2", Reason: "away", Since: now}))
	afk, err := store.AFK().LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "away", afk["u2"].Reason)

	q := &models.Quarantine{GuildID: "g1", UserID: "u3", ChannelID: "c9", QuarantinedAt: now}
	require.NoError(t, store.Quarantines().Upsert(ctx, q))
	list, err := store.Quarantines().LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "c9", list[0].ChannelID)
	require.NoError(t, store.Quarantines().Delete(ctx, "g1", "u3"))
	list, err = store.Quarantines().LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestShopUpsert_CaseInsensitiveName(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)

	require.NoError(t, store.Shop().Upsert(ctx, &models.ShopItem{Category: "yachts", Name: "Sloop", Price: 10}))
	require.NoError(t, store.Shop().Upsert(ctx, &models.ShopItem{Category: "yachts", Name: "Ketch", Price: 20}))
	require.NoError(t, store.Shop().Upsert(ctx, &models.ShopItem{Category: "yachts", Name: "sloop", Price: 15}))

	items, err := store.Shop().LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(15), items[0].Price)
	assert.Equal(t, "Ketch", items[1].Name)
}

func TestSalariesAndScores(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)

	require.NoError(t, store.Salaries().Upsert(ctx, "default", 1000))
	require.NoError(t, store.Salaries().Upsert(ctx, "default", 1200))
	salaries, err := store.Salaries().LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"default": 1200}, salaries)

	require.NoError(t, store.TriviaScores().Upsert(ctx, "u1", 4))
	scores, err := store.TriviaScores().LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"u1": 4}, scores)
}

func TestTaskRuns_ClaimOncePerSlot(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)
	slot := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	latest, err := store.TaskRuns().GetLatest(ctx, "salaries")
	require.NoError(t, err)
	assert.Nil(t, latest)

	run := &models.TaskRun{TaskName: "salaries", Slot: slot, StartedAt: slot}
	require.NoError(t, store.TaskRuns().Create(ctx, run))
	assert.NotZero(t, run.ID)

	err = store.TaskRuns().Create(ctx, &models.TaskRun{TaskName: "salaries", Slot: slot, StartedAt: slot})
	assert.ErrorIs(t, err, service.ErrTaskRunExists)

	done := slot.Add(time.Minute)
	run.CompletedAt = &done
	run.Affected = 2
	run.TotalAmount = 2000
	run.Summary = map[string]interface{}{"default": float64(2000)}
	require.NoError(t, store.TaskRuns().Complete(ctx, run))

	latest, err = store.TaskRuns().GetLatest(ctx, "salaries")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, run.ID, latest.ID)
	assert.True(t, slot.Equal(latest.Slot))
	require.NotNil(t, latest.CompletedAt)
	assert.True(t, done.Equal(*latest.CompletedAt))
	assert.Equal(t, 2, latest.Affected)
	assert.Equal(t, float64(2000), latest.Summary["default"])
}
