// Package roster fetches and parses course rosters: plain-text lists of
// course IDs, one per line, served over HTTP or kept in configuration.
package roster

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Fetcher downloads a course roster from a URL.
type Fetcher struct {
	url        string
	httpClient *http.Client
}

// NewFetcher creates a roster fetcher for the given URL.
func NewFetcher(url string) *Fetcher {
	return &Fetcher{
		url: url,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Fetch downloads the roster and returns the course IDs it lists.
func (f *Fetcher) Fetch(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch roster: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch roster: unexpected status code %d", resp.StatusCode)
	}

	courses, err := ParseRoster(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}

	return courses, nil
}

// ParseRoster reads course IDs from r, one per line. Blank lines and lines
// starting with '#' are skipped. Duplicates are dropped, first occurrence
// wins.
func ParseRoster(r io.Reader) ([]string, error) {
	var courses []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true
		courses = append(courses, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	return courses, nil
}
