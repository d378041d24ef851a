// Package research wraps an external web-research capability (search,
// single-page scrape, site map, multi-page crawl) behind a uniform interface
// with process-wide rate-limit backoff.
package research

import "context"

// SearchResult is a single web search hit.
type SearchResult struct {
	URL         string
	Title       string
	Description string
	Markdown    string
}

// Page is a fetched page.
type Page struct {
	URL      string
	Title    string
	Markdown string
	HTML     string
	Metadata map[string]any
}

// Link is a single entry from a site map.
type Link struct {
	URL   string
	Title string
}

// CrawlOpts bounds a multi-page crawl.
type CrawlOpts struct {
	Limit        int
	MaxDepth     int
	IncludePaths []string
	ExcludePaths []string
}

// Provider is the research capability the agents consume.
//
// Search, Map, and Crawl are best-effort signals: implementations swallow
// provider failures and return empty results. Scrape propagates failures
// other than rate limits so callers can try fallback URLs.
type Provider interface {
	Search(ctx context.Context, query string, limit int, sourceTypes []string) ([]SearchResult, error)
	Scrape(ctx context.Context, url string) (*Page, error)
	Map(ctx context.Context, url string, limit int) ([]Link, error)
	Crawl(ctx context.Context, url string, opts CrawlOpts) ([]Page, error)
	Name() string
}
