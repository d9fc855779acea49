package images

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"time"
)

// Provider source tags recorded on aggregation results.
const (
	SourceTrefle    = "trefle"
	SourceWikipedia = "wikipedia"
	SourceNone      = "none"
)

const (
	userAgentName    = "flora-api"
	userAgentContact = "https://github.com/verdantlabs/flora-api"
)

// Result is the outcome of one aggregation round: the deduplicated URL list
// and which provider produced it.
type Result struct {
	URLs   []string
	Source string
}

// Provider fetches candidate image URLs for one scientific name. A provider
// reports an error only for internal misuse; upstream failures degrade to an
// empty URL list.
type Provider interface {
	Fetch(ctx context.Context, scientificName string) ([]string, error)
	Name() string
}

// buildUserAgent constructs a user-agent string that complies with the
// Wikimedia robot policy. The same identity is sent to every provider.
func buildUserAgent() string {
	return fmt.Sprintf("%s/1.0 (%s) Go-HTTP-Client/%s",
		userAgentName, userAgentContact, runtime.Version())
}

// httpGetJSON performs one GET and returns the raw body. Non-2xx statuses
// are errors so callers can log and degrade.
func httpGetJSON(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", buildUserAgent())
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return body, nil
}

// dedupeURLs preserves first-seen order while dropping duplicates and empty
// entries, capped at limit (0 means no cap).
func dedupeURLs(urls []string, limit int) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

func newHTTPClient(timeoutSeconds int) *http.Client {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 10
	}
	return &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second}
}
