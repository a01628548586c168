package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/juris-comb/app/ruling"
)

var ErrNoSources = errors.New("no enabled sources")

type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]ruling.Ruling, error)
}

var (
	_ Source = (*TCUSource)(nil)
	_ Source = (*FeedSource)(nil)
)

// Collector fetches every enabled source and merges the results into one
// ordered candidate list.
type Collector struct {
	configCache *ConfigCache
	fetcher     *Fetcher
	filterer    *Filterer
	extractor   *SummaryExtractor
}

func NewCollector(configCache *ConfigCache, userAgent string) *Collector {
	fetcher := NewFetcher(userAgent)
	return &Collector{
		configCache: configCache,
		fetcher:     fetcher,
		filterer:    NewFilterer(),
		extractor:   NewSummaryExtractor(fetcher),
	}
}

func (c *Collector) Build(sourceConfig *Config) (Source, error) {
	switch sourceConfig.Type {
	case TypeTCU:
		return NewTCUSource(sourceConfig, c.fetcher), nil
	case TypeFeed:
		return NewFeedSource(sourceConfig, c.fetcher), nil
	default:
		return nil, fmt.Errorf("unknown source type: %s", sourceConfig.Type)
	}
}

// Collect returns the candidate rulings of all enabled sources in source
// name order. A key seen twice keeps its first occurrence. Any source error
// aborts the whole collection.
func (c *Collector) Collect(ctx context.Context) ([]ruling.Ruling, error) {
	configs := c.configCache.GetEnabledConfigs()
	if len(configs) == 0 {
		return nil, ErrNoSources
	}

	var merged []ruling.Ruling
	seen := make(map[string]bool)

	for _, sourceConfig := range configs {
		rulings, err := c.collectOne(ctx, sourceConfig)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", sourceConfig.Name, err)
		}

		for _, r := range rulings {
			if r.Key != "" {
				if seen[r.Key] {
					continue
				}
				seen[r.Key] = true
			}
			merged = append(merged, r)
		}
	}

	return merged, nil
}

func (c *Collector) collectOne(ctx context.Context, sourceConfig *Config) ([]ruling.Ruling, error) {
	src, err := c.Build(sourceConfig)
	if err != nil {
		return nil, err
	}

	rulings, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	if sourceConfig.Settings.ExtractSummary {
		filled := c.extractor.Run(ctx, rulings, time.Duration(sourceConfig.Settings.Timeout)*time.Second)
		slog.Debug("Summaries backfilled", "source", sourceConfig.Name, "count", filled)
	}

	kept, dropped := c.filterer.Run(rulings, sourceConfig)

	slog.Info("Source fetched",
		"source", sourceConfig.Name,
		"fetched", len(rulings),
		"filtered", dropped,
		"kept", len(kept))

	return kept, nil
}
