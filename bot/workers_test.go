package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"guildkeeper/bot/bottest"
	"guildkeeper/models"
	"guildkeeper/scheduler"
	"guildkeeper/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) service.Timer {
	return stoppedTimer{}
}

type stoppedTimer struct{}

func (stoppedTimer) Stop() bool { return false }

type workersFixture struct {
	workers    *Workers
	scheduler  *scheduler.Scheduler
	clock      *manualClock
	economy    *service.EconomyService
	moderation *service.ModerationService
	unmuted    []string
}

func newWorkersFixture(t *testing.T) *workersFixture {
	t.Helper()
	clock := &manualClock{now: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	state := bottest.NewState(t, service.WithClock(clock))
	sched := scheduler.New(state.Store().TaskRuns(), clock, nil)

	fx := &workersFixture{
		scheduler:  sched,
		clock:      clock,
		economy:    service.NewEconomyService(state),
		moderation: service.NewModerationService(state),
	}
	fx.workers = NewWorkers(sched, nil,
		service.NewSalaryService(state),
		service.NewBusinessService(state),
		fx.moderation,
	)
	fx.workers.members = func(ctx context.Context) ([]service.Member, error) {
		return []service.Member{
			{UserID: "admin", RoleNames: []string{"admin"}},
			{UserID: "pleb"},
			{UserID: "admin", RoleNames: []string{}},
			{UserID: "robot", Bot: true},
		}, nil
	}
	fx.workers.unmute = func(mute *models.Mute) error {
		fx.unmuted = append(fx.unmuted, mute.GuildID+"/"+mute.UserID)
		return nil
	}
	return fx
}

func TestWorkers_PayNow(t *testing.T) {
	fx := newWorkersFixture(t)

	summary, err := fx.workers.PayNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Paid)
	assert.Equal(t, int64(6000), summary.Total)
	require.Len(t, summary.ByRole, 2)
	assert.Equal(t, service.RolePayout{Role: "Admin", Count: 1, Amount: 5000}, summary.ByRole[0])

	assert.Equal(t, int64(5000), fx.economy.Balance("admin").Bank)
	assert.Equal(t, int64(0), fx.economy.Balance("robot").Bank)

	ran, err := fx.scheduler.RunDue(context.Background(), TaskSalaries, fx.clock.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ran, "a manual payment counts as the day's run")
}

func TestWorkers_SalariesRunOncePerDay(t *testing.T) {
	ctx := context.Background()
	fx := newWorkersFixture(t)

	ran, err := fx.scheduler.RunDue(ctx, TaskSalaries, fx.clock.Now())
	require.NoError(t, err)
	assert.True(t, ran)

	fx.clock.Advance(12 * time.Hour)
	ran, err = fx.scheduler.RunDue(ctx, TaskSalaries, fx.clock.Now())
	require.NoError(t, err)
	assert.False(t, ran)

	fx.clock.Advance(12 * time.Hour)
	ran, err = fx.scheduler.RunDue(ctx, TaskSalaries, fx.clock.Now())
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, int64(2000), fx.economy.Balance("pleb").Bank)
}

func TestWorkers_ExpireMutes(t *testing.T) {
	ctx := context.Background()
	fx := newWorkersFixture(t)
	_, err := fx.moderation.Mute(ctx, "g1", "u1", 10*time.Minute, "spam")
	require.NoError(t, err)
	_, err = fx.moderation.Mute(ctx, "g1", "u2", time.Hour, "spam")
	require.NoError(t, err)

	result, err := fx.scheduler.RunNow(ctx, TaskMuteExpiry)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Affected)

	fx.clock.Advance(11 * time.Minute)
	result, err = fx.scheduler.RunNow(ctx, TaskMuteExpiry)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Affected)
	assert.Equal(t, []string{"g1/u1"}, fx.unmuted)

	_, muted := fx.moderation.GetMute("u1")
	assert.False(t, muted)
	_, muted = fx.moderation.GetMute("u2")
	assert.True(t, muted)
}
