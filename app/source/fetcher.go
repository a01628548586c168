package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fetcher performs the plain GETs every source type needs.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
}

func NewFetcher(userAgent string) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{},
		userAgent:  userAgent,
	}
}

func (f *Fetcher) Get(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
