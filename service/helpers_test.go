package service_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"guildkeeper/config"
	"guildkeeper/repository/memory"
	"guildkeeper/service"
)

var testStart = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeClock is a manual clock; timers fire synchronously from Advance
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: testStart}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) service.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward, firing due timers in order
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var due []*fakeTimer
		for _, t := range c.timers {
			if !t.stopped && !t.fired && !t.at.After(target) {
				due = append(due, t)
			}
		}
		if len(due) == 0 {
			c.now = target
			c.mu.Unlock()
			return
		}
		sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
		next := due[0]
		next.fired = true
		c.now = next.at
		c.mu.Unlock()

		next.f()
	}
}

func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// scriptedRandom returns queued values, then zero
type scriptedRandom struct {
	mu     sync.Mutex
	floats []float64
	ints   []int
}

func (r *scriptedRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.floats) == 0 {
		return 0
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptedRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	if v >= n {
		return n - 1
	}
	return v
}

type testEnv struct {
	state *service.State
	store *memory.Store
	clock *fakeClock
	rng   *scriptedRandom
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	clock := newFakeClock()
	rng := &scriptedRandom{}
	state := service.NewState(store, config.DefaultEconomy(),
		service.WithClock(clock),
		service.WithRandom(rng),
	)
	if err := state.Load(context.Background()); err != nil {
		t.Fatalf("failed to load state: %v", err)
	}
	return &testEnv{state: state, store: store, clock: clock, rng: rng}
}

// fund credits a user's wallet through the admin path
func (e *testEnv) fund(t *testing.T, userID string, amount int64) {
	t.Helper()
	_, err := service.NewEconomyService(e.state).GiveMoney(context.Background(), userID, amount)
	if err != nil {
		t.Fatalf("failed to fund %s: %v", userID, err)
	}
}
