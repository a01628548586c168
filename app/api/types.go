package api

import (
	"context"
	"io"

	"github.com/lysyi3m/juris-comb/app/alert"
	"github.com/lysyi3m/juris-comb/app/classify"
	"github.com/lysyi3m/juris-comb/app/database"
	"github.com/lysyi3m/juris-comb/app/export"
	"github.com/lysyi3m/juris-comb/app/insight"
	"github.com/lysyi3m/juris-comb/app/ruling"
	"github.com/lysyi3m/juris-comb/app/similarity"
	"github.com/lysyi3m/juris-comb/app/source"
	"github.com/lysyi3m/juris-comb/app/tasks"
)

type RulingReader interface {
	GetRuling(ctx context.Context, key string) (*ruling.Ruling, error)
	ListRulings(ctx context.Context, limit int) ([]ruling.Ruling, error)
	GetRulingCount(ctx context.Context) (int, error)
}

type RunLister interface {
	ListCycleRuns(ctx context.Context, limit int) ([]database.CycleRun, error)
}

type SubscriptionService interface {
	Create(ctx context.Context, req alert.NewSubscription) (*alert.Subscription, error)
	Get(ctx context.Context, id string) (*alert.Subscription, error)
	ListByOwner(ctx context.Context, ownerID string) ([]alert.Subscription, error)
	Update(ctx context.Context, id string, patch alert.Patch) (*alert.Subscription, error)
	Delete(ctx context.Context, id string) error
}

type ExporterInterface interface {
	Export(ctx context.Context, w io.Writer, format export.Format, rulings []ruling.Ruling) error
}

type InsightGenerator interface {
	Generate(r ruling.Ruling, name insight.Template) (string, error)
}

type RulingClassifier interface {
	Classify(r ruling.Ruling) ruling.Ruling
	ClassifyAll(rulings []ruling.Ruling) []ruling.Ruling
}

type SimilarityRanker interface {
	RankByReference(corpus []*ruling.Ruling, ref *ruling.Ruling, n int) []similarity.Match
	RankByText(corpus []*ruling.Ruling, query string, n int) []similarity.Match
}

type ConfigCounter interface {
	GetConfigCount() int
}

var (
	_ RulingReader        = (*database.RulingRepo)(nil)
	_ RunLister           = (*database.CycleRunRepo)(nil)
	_ SubscriptionService = (*alert.Service)(nil)
	_ ExporterInterface   = (*export.Exporter)(nil)
	_ InsightGenerator    = (*insight.Generator)(nil)
	_ RulingClassifier    = (*classify.Classifier)(nil)
	_ SimilarityRanker    = (*similarity.Ranker)(nil)
	_ ConfigCounter       = (*source.ConfigCache)(nil)
)

type Handler struct {
	rulings       RulingReader
	runs          RunLister
	subscriptions SubscriptionService
	classifier    RulingClassifier
	ranker        SimilarityRanker
	exporter      ExporterInterface
	insights      InsightGenerator
	configs       ConfigCounter
	scheduler     tasks.TaskSchedulerInterface
}

type similarTextRequest struct {
	Text  string `json:"text" binding:"required"`
	Limit int    `json:"limit"`
}

type exportRequest struct {
	Format  string          `json:"format" binding:"required"`
	Rulings []ruling.Ruling `json:"rulings"`
	Keys    []string        `json:"keys"`
}
