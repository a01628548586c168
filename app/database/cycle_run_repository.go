package database

import (
	"context"
	"fmt"
)

type CycleRunRepo struct {
	db *DB
}

func NewCycleRunRepository(db *DB) *CycleRunRepo {
	return &CycleRunRepo{db: db}
}

type cycleRunRow struct {
	ID                     int64  `db:"id"`
	StartedAt              string `db:"started_at"`
	FinishedAt             string `db:"finished_at"`
	Fetched                int    `db:"fetched"`
	New                    int    `db:"new"`
	Classified             int    `db:"classified"`
	ClassificationSkips    int    `db:"classification_skips"`
	SubscriptionsEvaluated int    `db:"subscriptions_evaluated"`
	MatchSkips             int    `db:"match_skips"`
	Recipients             int    `db:"recipients"`
	Delivered              int    `db:"delivered"`
	DeliveryFailures       int    `db:"delivery_failures"`
	CachePersisted         bool   `db:"cache_persisted"`
	Error                  string `db:"error"`
}

func (r *CycleRunRepo) RecordCycleRun(ctx context.Context, run CycleRun) (int64, error) {
	row := cycleRunRow{
		StartedAt:              formatTime(run.StartedAt),
		FinishedAt:             formatTime(run.FinishedAt),
		Fetched:                run.Fetched,
		New:                    run.New,
		Classified:             run.Classified,
		ClassificationSkips:    run.ClassificationSkips,
		SubscriptionsEvaluated: run.SubscriptionsEvaluated,
		MatchSkips:             run.MatchSkips,
		Recipients:             run.Recipients,
		Delivered:              run.Delivered,
		DeliveryFailures:       run.DeliveryFailures,
		CachePersisted:         run.CachePersisted,
		Error:                  run.Error,
	}

	result, err := r.db.NamedExecContext(ctx, `
		INSERT INTO cycle_runs (started_at, finished_at, fetched, new, classified, classification_skips,
			subscriptions_evaluated, match_skips, recipients, delivered, delivery_failures, cache_persisted, error)
		VALUES (:started_at, :finished_at, :fetched, :new, :classified, :classification_skips,
			:subscriptions_evaluated, :match_skips, :recipients, :delivered, :delivery_failures, :cache_persisted, :error)
	`, row)
	if err != nil {
		return 0, fmt.Errorf("failed to record cycle run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get cycle run id: %w", err)
	}
	return id, nil
}

// ListCycleRuns returns the newest runs first.
func (r *CycleRunRepo) ListCycleRuns(ctx context.Context, limit int) ([]CycleRun, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []cycleRunRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, started_at, finished_at, fetched, new, classified, classification_skips,
			subscriptions_evaluated, match_skips, recipients, delivered, delivery_failures, cache_persisted, error
		FROM cycle_runs ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list cycle runs: %w", err)
	}

	runs := make([]CycleRun, 0, len(rows))
	for _, row := range rows {
		startedAt, err := parseTime(row.StartedAt)
		if err != nil {
			return nil, err
		}
		finishedAt, err := parseTime(row.FinishedAt)
		if err != nil {
			return nil, err
		}

		runs = append(runs, CycleRun{
			ID:                     row.ID,
			StartedAt:              startedAt,
			FinishedAt:             finishedAt,
			Fetched:                row.Fetched,
			New:                    row.New,
			Classified:             row.Classified,
			ClassificationSkips:    row.ClassificationSkips,
			SubscriptionsEvaluated: row.SubscriptionsEvaluated,
			MatchSkips:             row.MatchSkips,
			Recipients:             row.Recipients,
			Delivered:              row.Delivered,
			DeliveryFailures:       row.DeliveryFailures,
			CachePersisted:         row.CachePersisted,
			Error:                  row.Error,
		})
	}
	return runs, nil
}
