package source

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/lysyi3m/juris-comb/app/ruling"
)

// FeedSource maps an RSS/Atom feed of rulings onto the ruling model.
type FeedSource struct {
	config       *Config
	fetcher      *Fetcher
	gofeedParser *gofeed.Parser
}

func NewFeedSource(config *Config, fetcher *Fetcher) *FeedSource {
	return &FeedSource{
		config:       config,
		fetcher:      fetcher,
		gofeedParser: gofeed.NewParser(),
	}
}

func (s *FeedSource) Name() string {
	return s.config.Name
}

func (s *FeedSource) Fetch(ctx context.Context) ([]ruling.Ruling, error) {
	data, err := s.fetcher.Get(ctx, s.config.URL, time.Duration(s.config.Settings.Timeout)*time.Second)
	if err != nil {
		return nil, err
	}
	return s.Parse(data)
}

func (s *FeedSource) Parse(data []byte) ([]ruling.Ruling, error) {
	feed, err := s.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	rulings := make([]ruling.Ruling, 0, len(feed.Items))
	for _, item := range feed.Items {
		rulings = append(rulings, s.normalizeItem(item))
	}
	return rulings, nil
}

func (s *FeedSource) normalizeItem(item *gofeed.Item) ruling.Ruling {
	r := ruling.Ruling{
		Key:     strings.TrimSpace(cmp.Or(item.GUID, item.Link)),
		Title:   item.Title,
		Summary: cmp.Or(item.Description, item.Content),
		URL:     item.Link,
	}

	if item.PublishedParsed != nil {
		r.SessionDate = item.PublishedParsed.Format(ruling.SessionDateLayout)
		r.Year = item.PublishedParsed.Format("2006")
	}

	if len(item.Authors) > 0 && item.Authors[0] != nil {
		r.Rapporteur = item.Authors[0].Name
	}

	if len(item.Categories) > 0 {
		r.Panel = item.Categories[0]
	}

	return r
}
