package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/lysyi3m/juris-comb/app/ruling"
)

// TCUSource reads the TCU open-data ruling endpoint page by page.
type TCUSource struct {
	config  *Config
	fetcher *Fetcher
}

func NewTCUSource(config *Config, fetcher *Fetcher) *TCUSource {
	return &TCUSource{config: config, fetcher: fetcher}
}

func (s *TCUSource) Name() string {
	return s.config.Name
}

func (s *TCUSource) Fetch(ctx context.Context) ([]ruling.Ruling, error) {
	settings := s.config.Settings
	timeout := time.Duration(settings.Timeout) * time.Second

	var rulings []ruling.Ruling
	for page := 0; page < settings.Pages; page++ {
		pageURL, err := s.pageURL(page*settings.PageSize, settings.PageSize)
		if err != nil {
			return nil, err
		}

		data, err := s.fetcher.Get(ctx, pageURL, timeout)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}

		records, err := DecodePage(data)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}

		slog.Debug("Page fetched", "source", s.config.Name, "page", page, "records", len(records))

		rulings = append(rulings, records...)
		if len(records) < settings.PageSize {
			break
		}
	}

	return rulings, nil
}

func (s *TCUSource) pageURL(offset, size int) (string, error) {
	u, err := url.Parse(s.config.URL)
	if err != nil {
		return "", fmt.Errorf("invalid source URL: %w", err)
	}
	q := u.Query()
	q.Set("inicio", strconv.Itoa(offset))
	q.Set("quantidade", strconv.Itoa(size))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
