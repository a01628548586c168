package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lysyi3m/juris-comb/app/ruling"
)

type MockReloader struct {
	calls int
	err   error
}

func (m *MockReloader) Run() error {
	m.calls++
	return m.err
}

func TestNewTask(t *testing.T) {
	task := NewTask(TaskTypeReloadSources, TriggerSchedule)

	if task.ID == "" {
		t.Error("Expected task ID to be set")
	}
	if task.MaxRetries != DefaultMaxRetries {
		t.Errorf("Expected max retries %d, got %d", DefaultMaxRetries, task.MaxRetries)
	}
	if task.GetDuration() != 0 {
		t.Error("Expected zero duration before start")
	}

	task.Start()
	if task.StartedAt == nil {
		t.Error("Expected StartedAt to be set")
	}

	for i := 0; i < DefaultMaxRetries; i++ {
		if !task.CanRetry() {
			t.Fatalf("Expected retry %d to be allowed", i)
		}
		task.IncrementRetryCount()
	}
	if task.CanRetry() {
		t.Error("Expected retries to be exhausted")
	}
}

func TestPollCycleTaskNeverRetries(t *testing.T) {
	f := newCycleFixture(t, &MockCollector{err: errors.New("timeout")}, nil)

	task := NewPollCycleTask(f.cycle, TriggerAPI)
	if task.CanRetry() {
		t.Error("Expected poll task not to be retryable")
	}

	err := task.Execute(context.Background())
	if !errors.Is(err, ErrFetch) {
		t.Errorf("Expected ErrFetch, got %v", err)
	}
}

func TestPollCycleTaskIgnoresOverlap(t *testing.T) {
	f := newCycleFixture(t, &MockCollector{batches: [][]ruling.Ruling{{}}}, nil)
	f.cycle.running.Store(true)

	if err := NewPollCycleTask(f.cycle, TriggerSchedule).Execute(context.Background()); err != nil {
		t.Errorf("Expected overlap to be ignored, got %v", err)
	}
}

func TestPollCycleTaskCancelledContext(t *testing.T) {
	f := newCycleFixture(t, &MockCollector{batches: [][]ruling.Ruling{{}}}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewPollCycleTask(f.cycle, TriggerAPI).Execute(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestReloadSourcesTask(t *testing.T) {
	reloader := &MockReloader{}
	if err := NewReloadSourcesTask(reloader, TriggerStartup).Execute(context.Background()); err != nil {
		t.Fatal(err)
	}
	if reloader.calls != 1 {
		t.Errorf("Expected 1 reload, got %d", reloader.calls)
	}

	reloader.err = errors.New("bad yaml")
	if err := NewReloadSourcesTask(reloader, TriggerStartup).Execute(context.Background()); err == nil {
		t.Error("Expected error from failing reload")
	}
}

func TestSchedulerEnqueueAndStop(t *testing.T) {
	f := newCycleFixture(t, &MockCollector{batches: [][]ruling.Ruling{{}}}, nil)
	scheduler := NewScheduler(f.cycle, &MockReloader{}, time.Hour, 1)

	if err := scheduler.EnqueueTask(scheduler.NewPollTask(TriggerAPI)); err != nil {
		t.Fatalf("Expected enqueue to succeed, got %v", err)
	}
	if scheduler.IsPolling() {
		t.Error("Expected no poll to be running before start")
	}

	scheduler.Start()
	scheduler.Stop()
}

func TestSchedulerEnqueueAfterStop(t *testing.T) {
	f := newCycleFixture(t, &MockCollector{batches: [][]ruling.Ruling{{}}}, nil)
	scheduler := NewScheduler(f.cycle, &MockReloader{}, time.Hour, 1)

	scheduler.Start()
	scheduler.Stop()

	err := scheduler.EnqueueTask(scheduler.NewPollTask(TriggerAPI))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled after stop, got %v", err)
	}
	if err := scheduler.EnqueueTask(NewReloadSourcesTask(&MockReloader{}, TriggerAPI)); err == nil {
		t.Error("Expected second enqueue after stop to fail")
	}
}
