package tasks

import (
	"context"
	"time"

	"github.com/lysyi3m/juris-comb/app/alert"
	"github.com/lysyi3m/juris-comb/app/classify"
	"github.com/lysyi3m/juris-comb/app/database"
	"github.com/lysyi3m/juris-comb/app/novelty"
	"github.com/lysyi3m/juris-comb/app/ruling"
	"github.com/lysyi3m/juris-comb/app/source"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the API to run poll cycles in the
// background.
// Example usage:
//
//	scheduler := NewScheduler(cycle, configCache, interval, workerCount)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewPollCycleTask(cycle, TriggerAPI))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	IsPolling() bool
	NewPollTask(trigger string) TaskInterface
}

type Collector interface {
	Collect(ctx context.Context) ([]ruling.Ruling, error)
}

type Classifier interface {
	Classify(r ruling.Ruling) ruling.Ruling
}

type NoveltyCache interface {
	Diff(fetched []string) []string
	Commit(ctx context.Context, fetched []string) error
}

type Subscriptions interface {
	Active(ctx context.Context) ([]alert.Subscription, error)
	MarkRun(ctx context.Context, ids []string) error
}

type RulingStore interface {
	UpsertRulings(ctx context.Context, rulings []ruling.Ruling, fetchedAt time.Time) error
}

type RunRecorder interface {
	RecordCycleRun(ctx context.Context, run database.CycleRun) (int64, error)
}

type ConfigReloader interface {
	Run() error
}

var (
	_ Collector      = (*source.Collector)(nil)
	_ Classifier     = (*classify.Classifier)(nil)
	_ NoveltyCache   = (*novelty.Cache)(nil)
	_ Subscriptions  = (*alert.Service)(nil)
	_ RulingStore    = (*database.RulingRepo)(nil)
	_ RunRecorder    = (*database.CycleRunRepo)(nil)
	_ ConfigReloader = (*source.ConfigCache)(nil)
)
