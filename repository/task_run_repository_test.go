package repository

import (
	"context"
	"testing"
	"time"

	"guildkeeper/repository/testutil"
	"guildkeeper/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskRunRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewTaskRunRepository(testDB.DB)
	ctx := context.Background()

	slot := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("no run found", func(t *testing.T) {
		run, err := repo.GetLatest(ctx, "salaries")
		require.NoError(t, err)
		assert.Nil(t, run)
	})

	t.Run("slot claimed once", func(t *testing.T) {
		run := testutil.CreateTestTaskRun("salaries", slot)
		require.NoError(t, repo.Create(ctx, run))
		assert.NotZero(t, run.ID)

		err := repo.Create(ctx, testutil.CreateTestTaskRun("salaries", slot))
		assert.ErrorIs(t, err, service.ErrTaskRunExists)

		// other tasks may share the slot
		require.NoError(t, repo.Create(ctx, testutil.CreateTestTaskRun("business_profits", slot)))
	})

	t.Run("complete and get latest", func(t *testing.T) {
		later := testutil.CreateTestTaskRun("salaries", slot.Add(time.Hour))
		require.NoError(t, repo.Create(ctx, later))

		completed := later.Slot.Add(2 * time.Second)
		later.CompletedAt = &completed
		later.Affected = 4
		later.TotalAmount = 9000
		later.Summary = map[string]interface{}{"default": float64(4000)}
		require.NoError(t, repo.Complete(ctx, later))

		latest, err := repo.GetLatest(ctx, "salaries")
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, later.ID, latest.ID)
		assert.True(t, later.Slot.Equal(latest.Slot))
		require.NotNil(t, latest.CompletedAt)
		assert.Equal(t, 4, latest.Affected)
		assert.Equal(t, int64(9000), latest.TotalAmount)
		assert.Equal(t, float64(4000), latest.Summary["default"])
	})
}
