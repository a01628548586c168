package database

import (
	"time"
)

// CycleRun is the persisted summary of one poll cycle.
type CycleRun struct {
	ID                     int64     `json:"id"`
	StartedAt              time.Time `json:"started_at"`
	FinishedAt             time.Time `json:"finished_at"`
	Fetched                int       `json:"fetched"`
	New                    int       `json:"new"`
	Classified             int       `json:"classified"`
	ClassificationSkips    int       `json:"classification_skips"`
	SubscriptionsEvaluated int       `json:"subscriptions_evaluated"`
	MatchSkips             int       `json:"match_skips"`
	Recipients             int       `json:"recipients"`
	Delivered              int       `json:"delivered"`
	DeliveryFailures       int       `json:"delivery_failures"`
	CachePersisted         bool      `json:"cache_persisted"`
	Error                  string    `json:"error,omitempty"`
}
