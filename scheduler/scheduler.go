// Package scheduler runs periodic tasks whose due time is derived from their
// recorded run history, so a restart or a replayed slot never applies a task twice.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"guildkeeper/events"
	"guildkeeper/models"
	"guildkeeper/service"

	log "github.com/sirupsen/logrus"
)

// Result is what a task run reports back for its history record
type Result struct {
	Affected    int
	TotalAmount int64
	Summary     map[string]interface{}
}

// Task is a periodic job
type Task struct {
	Name string
	// Period is the minimum time between two runs
	Period time.Duration
	// PollEvery is how often the task is checked for being due
	PollEvery time.Duration
	// Ephemeral tasks keep no history and run on every poll
	Ephemeral bool
	Run       func(ctx context.Context, slot time.Time) (Result, error)
}

// ErrUnknownTask is returned by RunNow for a task that was never registered
var ErrUnknownTask = errors.New("unknown task")

// Scheduler polls registered tasks and records their runs
type Scheduler struct {
	runs  service.TaskRunRepository
	clock service.Clock
	bus   *events.Bus

	mu    sync.Mutex
	tasks map[string]*entry
	order []string
}

type entry struct {
	task Task
	mu   sync.Mutex // one run at a time per task
}

// New creates a scheduler storing its history in runs
func New(runs service.TaskRunRepository, clock service.Clock, bus *events.Bus) *Scheduler {
	return &Scheduler{
		runs:  runs,
		clock: clock,
		bus:   bus,
		tasks: make(map[string]*entry),
	}
}

// Register adds a task. Registering a name twice replaces the task.
func (s *Scheduler) Register(task Task) {
	if task.PollEvery <= 0 {
		task.PollEvery = task.Period
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tasks[task.Name]; !exists {
		s.order = append(s.order, task.Name)
	}
	s.tasks[task.Name] = &entry{task: task}
}

func (s *Scheduler) lookup(name string) (*entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.tasks[name]
	return e, ok
}

// Start launches one polling goroutine per task. Each task is checked once
// immediately. The returned function stops the workers and waits for them.
func (s *Scheduler) Start(ctx context.Context) func() {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup

	s.mu.Lock()
	names := append([]string(nil), s.order...)
	s.mu.Unlock()

	for _, name := range names {
		e, _ := s.lookup(name)
		wg.Add(1)
		go func(e *entry) {
			defer wg.Done()
			s.poll(ctx, e)
		}(e)
	}

	log.WithField("tasks", names).Info("Scheduler started")
	return func() {
		cancel()
		wg.Wait()
		log.Info("Scheduler stopped")
	}
}

func (s *Scheduler) poll(ctx context.Context, e *entry) {
	ticker := time.NewTicker(e.task.PollEvery)
	defer ticker.Stop()

	for {
		if _, err := s.runDue(ctx, e, s.clock.Now()); err != nil {
			log.WithError(err).WithField("task", e.task.Name).Error("Scheduled task failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunDue runs a registered task if it is due at now. It reports whether the task ran.
func (s *Scheduler) RunDue(ctx context.Context, name string, now time.Time) (bool, error) {
	e, ok := s.lookup(name)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return s.runDue(ctx, e, now)
}

func (s *Scheduler) runDue(ctx context.Context, e *entry, now time.Time) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.task.Ephemeral {
		result, err := e.task.Run(ctx, now)
		if err != nil {
			return true, fmt.Errorf("failed to run task %s: %w", e.task.Name, err)
		}
		if result.Affected > 0 {
			s.emit(e.task.Name, result)
		}
		return true, nil
	}

	latest, err := s.runs.GetLatest(ctx, e.task.Name)
	if err != nil {
		return false, fmt.Errorf("failed to load history of task %s: %w", e.task.Name, err)
	}
	slot, due := DueSlot(latest, e.task.Period, now)
	if !due {
		return false, nil
	}
	var result Result
	return s.execute(ctx, e.task, slot, now, &result)
}

// RunNow runs a task immediately, outside its schedule. The run is recorded with
// the current time as its slot, so the next scheduled run is one period later.
func (s *Scheduler) RunNow(ctx context.Context, name string) (Result, error) {
	e, ok := s.lookup(name)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	now := s.clock.Now()
	if e.task.Ephemeral {
		return e.task.Run(ctx, now)
	}

	var result Result
	ran, err := s.execute(ctx, e.task, now, now, &result)
	if err != nil {
		return result, err
	}
	if !ran {
		return result, service.ErrTaskRunExists
	}
	return result, nil
}

// DueSlot computes the slot the next run of a task is keyed by. A task that never
// ran is due now. A task more than one period behind is re-anchored to now rather
// than replaying every missed slot.
func DueSlot(latest *models.TaskRun, period time.Duration, now time.Time) (time.Time, bool) {
	if latest == nil {
		return now, true
	}
	slot := latest.Slot.Add(period)
	if now.Before(slot) {
		return slot, false
	}
	if now.Sub(slot) >= period {
		return now, true
	}
	return slot, true
}

// execute claims the slot first so that a concurrent or replayed claim of the
// same slot is rejected before the task body runs
func (s *Scheduler) execute(ctx context.Context, task Task, slot, now time.Time, out *Result) (bool, error) {
	run := &models.TaskRun{
		TaskName:  task.Name,
		Slot:      slot,
		StartedAt: now,
	}
	if err := s.runs.Create(ctx, run); err != nil {
		if errors.Is(err, service.ErrTaskRunExists) {
			log.WithFields(log.Fields{"task": task.Name, "slot": slot}).Debug("Task slot already claimed")
			return false, nil
		}
		return false, fmt.Errorf("failed to claim slot for task %s: %w", task.Name, err)
	}

	logger := log.WithFields(log.Fields{"task": task.Name, "slot": slot.Format(time.RFC3339)})
	logger.Info("Running scheduled task")

	result, runErr := task.Run(ctx, slot)
	*out = result

	completed := s.clock.Now()
	run.CompletedAt = &completed
	run.Affected = result.Affected
	run.TotalAmount = result.TotalAmount
	run.Summary = result.Summary
	if runErr != nil {
		if run.Summary == nil {
			run.Summary = make(map[string]interface{})
		}
		run.Summary["error"] = runErr.Error()
	}
	if err := s.runs.Complete(ctx, run); err != nil {
		logger.WithError(err).Error("Failed to record task run")
	}

	if runErr != nil {
		return true, fmt.Errorf("failed to run task %s: %w", task.Name, runErr)
	}

	logger.WithFields(log.Fields{
		"affected": result.Affected,
		"total":    result.TotalAmount,
	}).Info("Scheduled task completed")
	s.emit(task.Name, result)
	return true, nil
}

func (s *Scheduler) emit(name string, result Result) {
	if s.bus == nil {
		return
	}
	s.bus.Emit(context.Background(), events.TaskCompletedEvent{
		TaskName:    name,
		Affected:    result.Affected,
		TotalAmount: result.TotalAmount,
	})
}
