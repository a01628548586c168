package tasks

import (
	"context"
	"errors"
	"log/slog"
)

// PollCycleTask runs one poll cycle. It never retries: a failed fetch
// waits for the next scheduled tick.
type PollCycleTask struct {
	Task
	cycle *Cycle
}

func NewPollCycleTask(cycle *Cycle, trigger string) *PollCycleTask {
	task := NewTask(TaskTypePollCycle, trigger)
	task.MaxRetries = 0

	return &PollCycleTask{
		Task:  task,
		cycle: cycle,
	}
}

func (t *PollCycleTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	stats, err := t.cycle.Run(ctx)
	if errors.Is(err, ErrPollInProgress) {
		slog.Debug("Poll cycle already running, skipping", "trigger", t.Trigger)
		return nil
	}
	if err != nil {
		return err
	}

	slog.Info("Task completed",
		"type", "PollCycle",
		"trigger", t.Trigger,
		"new", stats.New,
		"recipients", stats.Recipients,
		"duration", t.GetDuration())

	return nil
}
