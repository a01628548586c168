package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	readability "codeberg.org/readeck/go-readability/v2"

	"github.com/lysyi3m/juris-comb/app/ruling"
)

// SummaryExtractor fills empty summaries from the ruling's own page.
type SummaryExtractor struct {
	fetcher *Fetcher
}

func NewSummaryExtractor(fetcher *Fetcher) *SummaryExtractor {
	return &SummaryExtractor{fetcher: fetcher}
}

func (e *SummaryExtractor) Run(ctx context.Context, rulings []ruling.Ruling, timeout time.Duration) int {
	filled := 0
	for i := range rulings {
		r := &rulings[i]
		if strings.TrimSpace(r.Summary) != "" || r.URL == "" {
			continue
		}

		data, err := e.fetcher.Get(ctx, r.URL, timeout)
		if err != nil {
			slog.Warn("Summary page fetch failed", "key", r.Key, "url", r.URL, "error", err)
			continue
		}

		summary, err := e.Extract(data, r.URL)
		if err != nil {
			slog.Warn("Summary extraction failed", "key", r.Key, "url", r.URL, "error", err)
			continue
		}

		r.Summary = summary
		filled++
	}
	return filled
}

func (e *SummaryExtractor) Extract(data []byte, pageURL string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("HTML data is empty")
	}

	var base *url.URL
	if pageURL != "" {
		if u, err := url.Parse(pageURL); err == nil {
			base = u
		}
	}

	article, err := readability.FromReader(bytes.NewReader(data), base)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	if excerpt := strings.TrimSpace(article.Excerpt()); excerpt != "" {
		return excerpt, nil
	}

	var buf bytes.Buffer
	if err := article.RenderText(&buf); err != nil {
		return "", fmt.Errorf("failed to render text: %w", err)
	}

	text := strings.TrimSpace(buf.String())
	if text == "" {
		return "", fmt.Errorf("no content extracted from HTML data")
	}

	slog.Debug("Summary extracted", "url", pageURL, "length", len(text))

	return text, nil
}
