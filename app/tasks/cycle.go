package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lysyi3m/juris-comb/app/alert"
	"github.com/lysyi3m/juris-comb/app/database"
	"github.com/lysyi3m/juris-comb/app/delivery"
	"github.com/lysyi3m/juris-comb/app/metrics"
	"github.com/lysyi3m/juris-comb/app/ruling"
)

var tracer = otel.Tracer("juris-comb/tasks")

type CycleStats struct {
	StartedAt              time.Time
	FinishedAt             time.Time
	Fetched                int
	New                    int
	Classified             int
	ClassificationSkips    int
	SubscriptionsEvaluated int
	MatchSkips             int
	Recipients             int
	Delivered              int
	DeliveryFailures       int
	CachePersisted         bool
	Errors                 []error
}

func (s CycleStats) toRun(cycleErr error) database.CycleRun {
	run := database.CycleRun{
		StartedAt:              s.StartedAt,
		FinishedAt:             s.FinishedAt,
		Fetched:                s.Fetched,
		New:                    s.New,
		Classified:             s.Classified,
		ClassificationSkips:    s.ClassificationSkips,
		SubscriptionsEvaluated: s.SubscriptionsEvaluated,
		MatchSkips:             s.MatchSkips,
		Recipients:             s.Recipients,
		Delivered:              s.Delivered,
		DeliveryFailures:       s.DeliveryFailures,
		CachePersisted:         s.CachePersisted,
	}
	if cycleErr != nil {
		run.Error = cycleErr.Error()
	}
	return run
}

// Cycle runs fetch, diff, classify, match, deliver and commit as one strict
// sequence. Only one Run may be in flight at a time.
type Cycle struct {
	collector     Collector
	cache         NoveltyCache
	classifier    Classifier
	matcher       *alert.Matcher
	subscriptions Subscriptions
	transport     delivery.Transport
	rulings       RulingStore
	runs          RunRecorder
	workerCount   int
	now           func() time.Time
	running       atomic.Bool
}

type CycleDeps struct {
	Collector     Collector
	Cache         NoveltyCache
	Classifier    Classifier
	Matcher       *alert.Matcher
	Subscriptions Subscriptions
	Transport     delivery.Transport
	Rulings       RulingStore
	Runs          RunRecorder
	WorkerCount   int
}

func NewCycle(deps CycleDeps) *Cycle {
	matcher := deps.Matcher
	if matcher == nil {
		matcher = alert.NewMatcher()
	}
	workers := deps.WorkerCount
	if workers < 1 {
		workers = 1
	}

	return &Cycle{
		collector:     deps.Collector,
		cache:         deps.Cache,
		classifier:    deps.Classifier,
		matcher:       matcher,
		subscriptions: deps.Subscriptions,
		transport:     deps.Transport,
		rulings:       deps.Rulings,
		runs:          deps.Runs,
		workerCount:   workers,
		now:           time.Now,
	}
}

func (c *Cycle) IsRunning() bool {
	return c.running.Load()
}

// Run executes one poll cycle. It fails only when the fetch or the
// subscription read fails, and in both cases the novelty cache is left
// untouched. Per-record, per-subscription and per-recipient problems are
// counted in the returned stats.
func (c *Cycle) Run(ctx context.Context) (CycleStats, error) {
	if !c.running.CompareAndSwap(false, true) {
		metrics.CyclesTotal.WithLabelValues("rejected").Inc()
		return CycleStats{}, ErrPollInProgress
	}
	defer c.running.Store(false)

	ctx, span := tracer.Start(ctx, "poll.Cycle.Run")
	defer span.End()

	stats := CycleStats{StartedAt: c.now().UTC()}
	err := c.run(ctx, &stats)
	stats.FinishedAt = c.now().UTC()

	span.SetAttributes(
		attribute.Int("poll.fetched", stats.Fetched),
		attribute.Int("poll.new", stats.New),
		attribute.Int("poll.recipients", stats.Recipients),
		attribute.Int("poll.delivery_failures", stats.DeliveryFailures),
	)

	outcome := "ok"
	if err != nil {
		outcome = "failed"
		if errors.Is(err, ErrFetch) {
			outcome = "fetch_failed"
		}
		failSpan(span, err)
	}
	metrics.CyclesTotal.WithLabelValues(outcome).Inc()
	metrics.CycleDuration.Observe(stats.FinishedAt.Sub(stats.StartedAt).Seconds())

	c.record(ctx, stats, err)

	return stats, err
}

func (c *Cycle) run(ctx context.Context, stats *CycleStats) error {
	fetched, err := c.fetch(ctx)
	if err != nil {
		return err
	}
	stats.Fetched = len(fetched)
	metrics.RulingsFetched.Add(float64(len(fetched)))

	candidates, fetchedKeys := c.validate(fetched, stats)

	fresh := c.selectNew(candidates, c.cache.Diff(fetchedKeys))
	stats.New = len(fresh)
	metrics.RulingsNew.Add(float64(len(fresh)))

	classified := c.classifyAll(ctx, fresh)
	stats.Classified = len(classified)

	if len(classified) > 0 {
		if err := c.rulings.UpsertRulings(ctx, classified, stats.StartedAt); err != nil {
			slog.Error("Failed to store rulings", "count", len(classified), "error", err)
			stats.Errors = append(stats.Errors, err)
		}
	}

	subs, err := c.subscriptions.Active(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSubscriptions, err)
	}

	result := c.matcher.MatchAndGroup(classified, subs)
	stats.SubscriptionsEvaluated = result.Evaluated
	stats.MatchSkips = result.Skipped
	stats.Recipients = result.Recipients()
	if result.Skipped > 0 {
		metrics.Skips.WithLabelValues("match").Add(float64(result.Skipped))
		for _, skipErr := range result.Errors {
			slog.Warn("Subscription skipped", "error", skipErr)
		}
		stats.Errors = append(stats.Errors, result.Errors...)
	}

	c.deliver(ctx, result.Groups, stats)

	if err := c.subscriptions.MarkRun(ctx, result.Matched); err != nil {
		slog.Error("Failed to mark subscriptions run", "count", len(result.Matched), "error", err)
		stats.Errors = append(stats.Errors, err)
	}

	if err := c.cache.Commit(ctx, fetchedKeys); err != nil {
		metrics.CachePersistFailures.Inc()
		slog.Error("Novelty cache not persisted", "keys", len(fetchedKeys), "error", err)
		stats.Errors = append(stats.Errors, err)
	} else {
		stats.CachePersisted = true
	}

	slog.Info("Poll cycle completed",
		"fetched", stats.Fetched,
		"new", stats.New,
		"classified", stats.Classified,
		"classification_skips", stats.ClassificationSkips,
		"subscriptions", stats.SubscriptionsEvaluated,
		"match_skips", stats.MatchSkips,
		"recipients", stats.Recipients,
		"delivered", stats.Delivered,
		"delivery_failures", stats.DeliveryFailures,
		"cache_persisted", stats.CachePersisted)

	return nil
}

func (c *Cycle) fetch(ctx context.Context) ([]ruling.Ruling, error) {
	ctx, span := tracer.Start(ctx, "poll.Cycle.fetch")
	defer span.End()

	fetched, err := c.collector.Collect(ctx)
	if err != nil {
		failSpan(span, err)
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	span.SetAttributes(attribute.Int("poll.fetched", len(fetched)))
	return fetched, nil
}

// validate drops records that cannot take part in the cycle and returns the
// remaining rulings together with the fetched key set. Records without a
// key cannot be diffed.
func (c *Cycle) validate(fetched []ruling.Ruling, stats *CycleStats) ([]ruling.Ruling, []string) {
	candidates := make([]ruling.Ruling, 0, len(fetched))
	keys := make([]string, 0, len(fetched))

	for i, r := range fetched {
		if r.Key != "" {
			keys = append(keys, r.Key)
		}

		if err := validateRecord(r); err != nil {
			stats.ClassificationSkips++
			metrics.Skips.WithLabelValues("classification").Inc()
			slog.Warn("Ruling skipped", "position", i, "key", r.Key, "error", err)
			stats.Errors = append(stats.Errors, err)
			continue
		}
		candidates = append(candidates, r)
	}

	return candidates, keys
}

// validateRecord rejects records without a key. Records without title and
// summary still classify, to zero scores and no themes.
func validateRecord(r ruling.Ruling) error {
	if r.Key == "" {
		return fmt.Errorf("%w: missing key (%s)", ErrClassificationSkip, r.Reference())
	}
	return nil
}

func (c *Cycle) selectNew(candidates []ruling.Ruling, freshKeys []string) []ruling.Ruling {
	if len(freshKeys) == 0 {
		return nil
	}

	fresh := make(map[string]bool, len(freshKeys))
	for _, key := range freshKeys {
		fresh[key] = true
	}

	selected := make([]ruling.Ruling, 0, len(freshKeys))
	for _, r := range candidates {
		if fresh[r.Key] {
			selected = append(selected, r)
			delete(fresh, r.Key)
		}
	}
	return selected
}

// classifyAll classifies rulings on up to workerCount goroutines. Output
// order matches input order.
func (c *Cycle) classifyAll(ctx context.Context, rulings []ruling.Ruling) []ruling.Ruling {
	_, span := tracer.Start(ctx, "poll.Cycle.classify")
	defer span.End()
	span.SetAttributes(attribute.Int("poll.rulings", len(rulings)))

	out := make([]ruling.Ruling, len(rulings))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < min(c.workerCount, len(rulings)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = c.classifier.Classify(rulings[i])
			}
		}()
	}

	for i := range rulings {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return out
}

func (c *Cycle) deliver(ctx context.Context, groups []alert.Group, stats *CycleStats) {
	ctx, span := tracer.Start(ctx, "poll.Cycle.deliver")
	defer span.End()

	for _, group := range groups {
		if err := c.transport.Deliver(ctx, group.Contact, group.Rulings); err != nil {
			stats.DeliveryFailures++
			metrics.Deliveries.WithLabelValues("failed").Inc()
			slog.Error("Delivery failed", "contact", group.Contact, "rulings", len(group.Rulings), "error", err)
			stats.Errors = append(stats.Errors, fmt.Errorf("%w: %s: %w", ErrDelivery, group.Contact, err))
			continue
		}
		stats.Delivered++
		metrics.Deliveries.WithLabelValues("ok").Inc()
	}

	span.SetAttributes(
		attribute.Int("poll.delivered", stats.Delivered),
		attribute.Int("poll.delivery_failures", stats.DeliveryFailures),
	)
}

func (c *Cycle) record(ctx context.Context, stats CycleStats, cycleErr error) {
	if c.runs == nil {
		return
	}
	if _, err := c.runs.RecordCycleRun(context.WithoutCancel(ctx), stats.toRun(cycleErr)); err != nil {
		slog.Error("Failed to record cycle run", "error", err)
	}
}

func failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
