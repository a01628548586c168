package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "juris_comb"

var (
	CyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "poll",
		Name:      "cycles_total",
		Help:      "Poll cycles by outcome: ok, fetch_failed, rejected",
	}, []string{"outcome"})

	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "poll",
		Name:      "cycle_duration_seconds",
		Help:      "Wall time of a complete poll cycle",
		Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})

	RulingsFetched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "poll",
		Name:      "rulings_fetched_total",
		Help:      "Rulings returned by the upstream sources",
	})

	RulingsNew = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "poll",
		Name:      "rulings_new_total",
		Help:      "Rulings absent from the novelty cache snapshot",
	})

	Skips = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "poll",
		Name:      "skips_total",
		Help:      "Records or subscriptions skipped by stage: classification, match",
	}, []string{"stage"})

	Deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "delivery",
		Name:      "attempts_total",
		Help:      "Recipient deliveries by result: ok, failed",
	}, []string{"result"})

	CachePersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "novelty",
		Name:      "persist_failures_total",
		Help:      "Novelty cache commits that could not be persisted",
	})

	SimilarityLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "similarity",
		Name:      "rank_latency_seconds",
		Help:      "Latency of similarity ranking requests by query mode",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	}, []string{"mode"})
)
