package http

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/serp"
)

// DefaultDuckDuckGoURL is the JavaScript-free DuckDuckGo results endpoint.
const DefaultDuckDuckGoURL = "https://html.duckduckgo.com/html/"

// Ensure DuckDuckGo implements serp.URLSource.
var _ serp.URLSource = (*DuckDuckGo)(nil)

// DuckDuckGo finds result URLs by scraping DuckDuckGo's HTML results page.
type DuckDuckGo struct {
	BaseURL   string
	UserAgent string

	client *http.Client
}

// NewDuckDuckGo creates a new DuckDuckGo source with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewDuckDuckGo(client *http.Client) *DuckDuckGo {
	if client == nil {
		client = http.DefaultClient
	}
	return &DuckDuckGo{
		BaseURL:   DefaultDuckDuckGoURL,
		UserAgent: serp.DefaultUserAgent,
		client:    client,
	}
}

// Search returns up to count organic result URLs for query.
// Sponsored results are skipped.
func (s *DuckDuckGo) Search(ctx context.Context, query string, count int) ([]string, error) {
	if strings.TrimSpace(query) == "" {
		return nil, serp.Errorf(serp.EINVALID, "search query required")
	}
	if count < 1 {
		return nil, serp.Errorf(serp.EINVALID, "result count must be positive, got %d", count)
	}

	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from search provider", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing search results: %w", err)
	}

	return ParseDuckDuckGoResults(doc, count), nil
}

// ParseDuckDuckGoResults extracts up to count result URLs from a parsed
// DuckDuckGo HTML results page in ranking order.
func ParseDuckDuckGoResults(doc *goquery.Document, count int) []string {
	urls := []string{}
	doc.Find("div.result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if sel.HasClass("result--ad") {
			return true
		}
		href, ok := sel.Find("a.result__a").First().Attr("href")
		if !ok {
			return true
		}
		target := unwrapRedirect(href)
		if target == "" {
			return true
		}
		urls = append(urls, target)
		return len(urls) < count
	})
	return urls
}

// unwrapRedirect resolves DuckDuckGo's "/l/?uddg=" redirect links to the
// destination URL. Returns empty string for non-HTTP destinations.
func unwrapRedirect(href string) string {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		if u, err = url.Parse(target); err != nil {
			return ""
		}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}
