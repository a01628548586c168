package database

import (
	"context"
	"time"

	"github.com/lysyi3m/juris-comb/app/alert"
	"github.com/lysyi3m/juris-comb/app/novelty"
	"github.com/lysyi3m/juris-comb/app/ruling"
)

type RulingRepository interface {
	UpsertRulings(ctx context.Context, rulings []ruling.Ruling, fetchedAt time.Time) error
	GetRuling(ctx context.Context, key string) (*ruling.Ruling, error)
	ListRulings(ctx context.Context, limit int) ([]ruling.Ruling, error)
	GetRulingCount(ctx context.Context) (int, error)
}

type CycleRunRepository interface {
	RecordCycleRun(ctx context.Context, run CycleRun) (int64, error)
	ListCycleRuns(ctx context.Context, limit int) ([]CycleRun, error)
}

var (
	_ RulingRepository   = (*RulingRepo)(nil)
	_ CycleRunRepository = (*CycleRunRepo)(nil)
	_ alert.Repository   = (*SubscriptionRepo)(nil)
	_ novelty.Store      = (*NoveltyRepo)(nil)
)
