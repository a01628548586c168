package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

// ReloadSourcesTask re-reads the source definitions so edits to the YAML
// files apply on the next poll.
type ReloadSourcesTask struct {
	Task
	reloader ConfigReloader
}

func NewReloadSourcesTask(reloader ConfigReloader, trigger string) *ReloadSourcesTask {
	return &ReloadSourcesTask{
		Task:     NewTask(TaskTypeReloadSources, trigger),
		reloader: reloader,
	}
}

func (t *ReloadSourcesTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.reloader.Run(); err != nil {
		slog.Error("Task failed", "type", "ReloadSources", "error", err)
		return fmt.Errorf("failed to reload source configs: %w", err)
	}

	slog.Debug("Task completed",
		"type", "ReloadSources",
		"duration", t.GetDuration())

	return nil
}
