package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lysyi3m/juris-comb/app/alert"
	"github.com/lysyi3m/juris-comb/app/classify"
	"github.com/lysyi3m/juris-comb/app/database"
	"github.com/lysyi3m/juris-comb/app/novelty"
	"github.com/lysyi3m/juris-comb/app/ruling"
)

type MockCollector struct {
	batches [][]ruling.Ruling
	err     error
	calls   int
	block   chan struct{}
	entered chan struct{}
}

func (m *MockCollector) Collect(ctx context.Context) ([]ruling.Ruling, error) {
	if m.entered != nil {
		close(m.entered)
	}
	if m.block != nil {
		<-m.block
	}
	if m.err != nil {
		return nil, m.err
	}
	if m.calls >= len(m.batches) {
		return nil, nil
	}
	batch := m.batches[m.calls]
	m.calls++
	return batch, nil
}

type MockNoveltyStore struct {
	keys       []string
	replaceErr error
	replaced   int
}

func (m *MockNoveltyStore) LoadKeys(ctx context.Context) ([]string, error) {
	return m.keys, nil
}

func (m *MockNoveltyStore) ReplaceKeys(ctx context.Context, keys []string) error {
	m.replaced++
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.keys = append([]string(nil), keys...)
	return nil
}

type MockSubscriptions struct {
	subs    []alert.Subscription
	err     error
	marked  []string
	markErr error
}

func (m *MockSubscriptions) Active(ctx context.Context) ([]alert.Subscription, error) {
	return m.subs, m.err
}

func (m *MockSubscriptions) MarkRun(ctx context.Context, ids []string) error {
	m.marked = append(m.marked, ids...)
	return m.markErr
}

type MockTransport struct {
	mu        sync.Mutex
	delivered map[string][]ruling.Ruling
	failFor   map[string]bool
}

func (m *MockTransport) Deliver(ctx context.Context, contact string, rulings []ruling.Ruling) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[contact] {
		return errors.New("smtp unavailable")
	}
	if m.delivered == nil {
		m.delivered = make(map[string][]ruling.Ruling)
	}
	m.delivered[contact] = rulings
	return nil
}

type MockRulingStore struct {
	stored []ruling.Ruling
}

func (m *MockRulingStore) UpsertRulings(ctx context.Context, rulings []ruling.Ruling, fetchedAt time.Time) error {
	m.stored = append(m.stored, rulings...)
	return nil
}

type MockRunRecorder struct {
	runs []database.CycleRun
}

func (m *MockRunRecorder) RecordCycleRun(ctx context.Context, run database.CycleRun) (int64, error) {
	m.runs = append(m.runs, run)
	return int64(len(m.runs)), nil
}

type cycleFixture struct {
	cycle     *Cycle
	collector *MockCollector
	store     *MockNoveltyStore
	cache     *novelty.Cache
	subs      *MockSubscriptions
	transport *MockTransport
	rulings   *MockRulingStore
	runs      *MockRunRecorder
}

func newCycleFixture(t *testing.T, collector *MockCollector, subs []alert.Subscription) *cycleFixture {
	t.Helper()

	table, err := classify.DefaultTable()
	if err != nil {
		t.Fatal(err)
	}

	f := &cycleFixture{
		collector: collector,
		store:     &MockNoveltyStore{},
		subs:      &MockSubscriptions{subs: subs},
		transport: &MockTransport{},
		rulings:   &MockRulingStore{},
		runs:      &MockRunRecorder{},
	}

	f.cache, err = novelty.Open(context.Background(), f.store)
	if err != nil {
		t.Fatal(err)
	}

	f.cycle = NewCycle(CycleDeps{
		Collector:     collector,
		Cache:         f.cache,
		Classifier:    classify.New(table),
		Subscriptions: f.subs,
		Transport:     f.transport,
		Rulings:       f.rulings,
		Runs:          f.runs,
		WorkerCount:   4,
	})
	return f
}

func rulingWith(key, summary string) ruling.Ruling {
	return ruling.Ruling{Key: key, Number: key, Year: "2024", Title: "Acórdão " + key, Summary: summary}
}

func keywordSub(id, contact string, keywords ...string) alert.Subscription {
	return alert.Subscription{
		ID:      id,
		Contact: contact,
		Filter:  alert.Filter{Keywords: keywords},
		Active:  true,
	}
}

func TestCycleNoveltyAcrossCycles(t *testing.T) {
	collector := &MockCollector{batches: [][]ruling.Ruling{
		{rulingWith("A", "pregão"), rulingWith("B", "pregão"), rulingWith("C", "pregão")},
		{rulingWith("B", "pregão"), rulingWith("C", "pregão"), rulingWith("D", "pregão")},
	}}
	f := newCycleFixture(t, collector, []alert.Subscription{keywordSub("s1", "ana@example.com", "pregão")})

	stats, err := f.cycle.Run(context.Background())
	if err != nil {
		t.Fatalf("First cycle failed: %v", err)
	}
	if stats.New != 3 {
		t.Errorf("Expected 3 new rulings in first cycle, got %d", stats.New)
	}

	stats, err = f.cycle.Run(context.Background())
	if err != nil {
		t.Fatalf("Second cycle failed: %v", err)
	}
	if stats.New != 1 {
		t.Errorf("Expected 1 new ruling in second cycle, got %d", stats.New)
	}

	delivered := f.transport.delivered["ana@example.com"]
	if len(delivered) != 1 || delivered[0].Key != "D" {
		t.Errorf("Expected only D delivered in second cycle, got %v", delivered)
	}

	if f.cache.Contains("A") {
		t.Error("Expected A to be dropped from the committed cache")
	}
	if f.cache.Len() != 3 {
		t.Errorf("Expected 3 cached keys, got %d", f.cache.Len())
	}
	if len(f.runs.runs) != 2 {
		t.Errorf("Expected 2 recorded runs, got %d", len(f.runs.runs))
	}
}

func TestCycleClassifiesNewRulingsInOrder(t *testing.T) {
	batch := []ruling.Ruling{
		rulingWith("1", "Licitação com sobrepreço e multa aplicada"),
		rulingWith("2", "Aposentadoria de servidor"),
		rulingWith("3", "Súmula e precedente importante"),
	}
	f := newCycleFixture(t, &MockCollector{batches: [][]ruling.Ruling{batch}}, nil)

	stats, err := f.cycle.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Classified != 3 {
		t.Errorf("Expected 3 classified, got %d", stats.Classified)
	}

	if len(f.rulings.stored) != 3 {
		t.Fatalf("Expected 3 stored rulings, got %d", len(f.rulings.stored))
	}
	for i, want := range []string{"1", "2", "3"} {
		if f.rulings.stored[i].Key != want {
			t.Errorf("Expected key %s at %d, got %s", want, i, f.rulings.stored[i].Key)
		}
	}
	if !f.rulings.stored[0].HasTheme("Licitações e Contratos") {
		t.Errorf("Expected ruling 1 to be classified, got themes %v", f.rulings.stored[0].Themes)
	}
	if f.rulings.stored[2].Relevance == 0 {
		t.Error("Expected ruling 3 to have a relevance score")
	}
}

func TestCycleFetchFailureLeavesCacheUntouched(t *testing.T) {
	collector := &MockCollector{err: errors.New("connection refused")}
	f := newCycleFixture(t, collector, nil)
	f.store.keys = []string{"OLD"}
	f.cache, _ = novelty.Open(context.Background(), f.store)
	f.cycle.cache = f.cache

	_, err := f.cycle.Run(context.Background())
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("Expected ErrFetch, got %v", err)
	}

	if f.store.replaced != 0 {
		t.Errorf("Expected cache not to be persisted, got %d writes", f.store.replaced)
	}
	if !f.cache.Contains("OLD") {
		t.Error("Expected in-memory cache to be unchanged")
	}
	if len(f.runs.runs) != 1 || f.runs.runs[0].Error == "" {
		t.Errorf("Expected failed run to be recorded with an error, got %v", f.runs.runs)
	}
}

func TestCycleDeliveryFailureDoesNotBlockOthers(t *testing.T) {
	collector := &MockCollector{batches: [][]ruling.Ruling{{rulingWith("A", "pregão eletrônico")}}}
	f := newCycleFixture(t, collector, []alert.Subscription{
		keywordSub("s1", "falha@example.com", "pregão"),
		keywordSub("s2", "ok@example.com", "pregão"),
	})
	f.transport.failFor = map[string]bool{"falha@example.com": true}

	stats, err := f.cycle.Run(context.Background())
	if err != nil {
		t.Fatalf("Expected cycle to succeed, got %v", err)
	}

	if stats.DeliveryFailures != 1 || stats.Delivered != 1 {
		t.Errorf("Expected 1 failure and 1 delivery, got %d and %d", stats.DeliveryFailures, stats.Delivered)
	}
	if _, ok := f.transport.delivered["ok@example.com"]; !ok {
		t.Error("Expected delivery to ok@example.com")
	}
	if !stats.CachePersisted || !f.cache.Contains("A") {
		t.Error("Expected cache to be committed after delivery failure")
	}

	var deliveryErrs int
	for _, e := range stats.Errors {
		if errors.Is(e, ErrDelivery) {
			deliveryErrs++
		}
	}
	if deliveryErrs != 1 {
		t.Errorf("Expected 1 delivery error, got %d", deliveryErrs)
	}
}

func TestCycleSkipsRecordsWithoutKey(t *testing.T) {
	batch := []ruling.Ruling{
		{Number: "1", Year: "2024", Title: "sem chave"},
		rulingWith("OK", "pregão"),
	}
	f := newCycleFixture(t, &MockCollector{batches: [][]ruling.Ruling{batch}}, nil)

	stats, err := f.cycle.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if stats.ClassificationSkips != 1 {
		t.Errorf("Expected 1 classification skip, got %d", stats.ClassificationSkips)
	}
	if stats.Classified != 1 {
		t.Errorf("Expected 1 classified, got %d", stats.Classified)
	}
	if len(stats.Errors) != 1 || !errors.Is(stats.Errors[0], ErrClassificationSkip) {
		t.Errorf("Expected one ErrClassificationSkip, got %v", stats.Errors)
	}
}

func TestCycleClassifiesRecordWithoutText(t *testing.T) {
	batch := []ruling.Ruling{{Key: "EMPTY"}}
	f := newCycleFixture(t, &MockCollector{batches: [][]ruling.Ruling{batch}}, nil)

	stats, err := f.cycle.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if stats.New != 1 || stats.Classified != 1 {
		t.Errorf("Expected 1 new and 1 classified, got %d and %d", stats.New, stats.Classified)
	}
	if stats.ClassificationSkips != 0 || len(stats.Errors) != 0 {
		t.Errorf("Expected no skips or errors, got %d skips and %v", stats.ClassificationSkips, stats.Errors)
	}
	if len(f.rulings.stored) != 1 {
		t.Fatalf("Expected 1 stored ruling, got %d", len(f.rulings.stored))
	}
	stored := f.rulings.stored[0]
	if stored.Relevance != 0 || stored.Impact != 0 || stored.Innovation != 0 {
		t.Errorf("Expected zero scores, got %d/%d/%d", stored.Relevance, stored.Impact, stored.Innovation)
	}
	if len(stored.Themes) != 0 || len(stored.Subthemes) != 0 {
		t.Errorf("Expected no themes, got %v %v", stored.Themes, stored.Subthemes)
	}
	if !f.cache.Contains("EMPTY") {
		t.Error("Expected EMPTY to be committed")
	}
}

func TestCycleUnreadableSubscriptionIsSkipped(t *testing.T) {
	collector := &MockCollector{batches: [][]ruling.Ruling{{rulingWith("A", "pregão")}}}
	broken := keywordSub("bad", "x@example.com", "pregão")
	broken.LoadErr = errors.New("failed to decode list")
	f := newCycleFixture(t, collector, []alert.Subscription{broken, keywordSub("good", "y@example.com", "pregão")})

	stats, err := f.cycle.Run(context.Background())
	if err != nil {
		t.Fatalf("Expected cycle to succeed, got %v", err)
	}
	if stats.MatchSkips != 1 {
		t.Errorf("Expected 1 match skip, got %d", stats.MatchSkips)
	}
	if stats.Delivered != 1 {
		t.Errorf("Expected 1 delivery, got %d", stats.Delivered)
	}
	if _, ok := f.transport.delivered["x@example.com"]; ok {
		t.Error("Expected no delivery for the unreadable subscription")
	}
	if !stats.CachePersisted || !f.cache.Contains("A") {
		t.Error("Expected cache to be committed")
	}
}

func TestCycleCountsMatchSkips(t *testing.T) {
	collector := &MockCollector{batches: [][]ruling.Ruling{{rulingWith("A", "pregão")}}}
	f := newCycleFixture(t, collector, []alert.Subscription{
		{ID: "bad", Contact: "x@example.com", Active: true, Filter: alert.Filter{Keywords: []string{" "}}},
		keywordSub("good", "y@example.com", "pregão"),
	})

	stats, err := f.cycle.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.MatchSkips != 1 {
		t.Errorf("Expected 1 match skip, got %d", stats.MatchSkips)
	}
	if stats.SubscriptionsEvaluated != 1 {
		t.Errorf("Expected 1 evaluated subscription, got %d", stats.SubscriptionsEvaluated)
	}
	if len(f.subs.marked) != 1 || f.subs.marked[0] != "good" {
		t.Errorf("Expected only 'good' to be marked run, got %v", f.subs.marked)
	}
}

func TestCyclePersistFailureIsNotFatal(t *testing.T) {
	collector := &MockCollector{batches: [][]ruling.Ruling{{rulingWith("A", "pregão")}}}
	f := newCycleFixture(t, collector, nil)
	f.store.replaceErr = errors.New("disk full")

	stats, err := f.cycle.Run(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if stats.CachePersisted {
		t.Error("Expected CachePersisted to be false")
	}
	if !f.cache.Contains("A") {
		t.Error("Expected in-memory cache to be replaced despite persist failure")
	}
	if f.runs.runs[0].CachePersisted {
		t.Error("Expected recorded run to report cache not persisted")
	}
}

func TestCycleSubscriptionLoadFailure(t *testing.T) {
	collector := &MockCollector{batches: [][]ruling.Ruling{{rulingWith("A", "pregão")}}}
	f := newCycleFixture(t, collector, nil)
	f.subs.err = errors.New("database locked")

	_, err := f.cycle.Run(context.Background())
	if !errors.Is(err, ErrSubscriptions) {
		t.Fatalf("Expected ErrSubscriptions, got %v", err)
	}
	if f.cache.Contains("A") {
		t.Error("Expected cache not to be committed")
	}
}

func TestCycleSingleFlight(t *testing.T) {
	collector := &MockCollector{
		batches: [][]ruling.Ruling{{rulingWith("A", "pregão")}},
		block:   make(chan struct{}),
		entered: make(chan struct{}),
	}
	f := newCycleFixture(t, collector, nil)

	done := make(chan error, 1)
	go func() {
		_, err := f.cycle.Run(context.Background())
		done <- err
	}()

	<-collector.entered
	if !f.cycle.IsRunning() {
		t.Error("Expected cycle to report running")
	}

	_, err := f.cycle.Run(context.Background())
	if !errors.Is(err, ErrPollInProgress) {
		t.Errorf("Expected ErrPollInProgress, got %v", err)
	}

	close(collector.block)
	if err := <-done; err != nil {
		t.Errorf("Expected first cycle to succeed, got %v", err)
	}
	if f.cycle.IsRunning() {
		t.Error("Expected cycle to be idle after completion")
	}
}
