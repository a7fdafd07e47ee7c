package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fwojciec/serp"
)

// Ensure SearXNG implements serp.URLSource.
var _ serp.URLSource = (*SearXNG)(nil)

// SearXNG finds result URLs through the JSON API of a SearXNG instance.
// The instance must have the json output format enabled.
type SearXNG struct {
	BaseURL   string
	UserAgent string

	client *http.Client
}

// NewSearXNG creates a new SearXNG source for the instance at baseURL.
// If client is nil, http.DefaultClient is used.
func NewSearXNG(baseURL string, client *http.Client) *SearXNG {
	if client == nil {
		client = http.DefaultClient
	}
	return &SearXNG{
		BaseURL:   baseURL,
		UserAgent: serp.DefaultUserAgent,
		client:    client,
	}
}

type searxngResponse struct {
	Results []struct {
		URL   string `json:"url"`
		Title string `json:"title"`
	} `json:"results"`
}

// Search returns up to count result URLs for query.
func (s *SearXNG) Search(ctx context.Context, query string, count int) ([]string, error) {
	if strings.TrimSpace(query) == "" {
		return nil, serp.Errorf(serp.EINVALID, "search query required")
	}
	if count < 1 {
		return nil, serp.Errorf(serp.EINVALID, "result count must be positive, got %d", count)
	}

	u, err := url.Parse(strings.TrimRight(s.BaseURL, "/") + "/search")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from search provider", resp.StatusCode)
	}

	var body searxngResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding search results: %w", err)
	}

	urls := []string{}
	for _, r := range body.Results {
		if len(urls) >= count {
			break
		}
		parsed, err := url.Parse(r.URL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			continue
		}
		urls = append(urls, r.URL)
	}
	return urls, nil
}
