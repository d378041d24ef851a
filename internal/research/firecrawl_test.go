package research

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-enrichment/pkg/firecrawl"
)

// mockFirecrawl implements firecrawl.Client with canned responses.
type mockFirecrawl struct {
	searchResp *firecrawl.SearchResponse
	searchErr  error
	scrapeResp *firecrawl.ScrapeResponse
	scrapeErr  error
	mapResp    *firecrawl.MapResponse
	mapErr     error
	crawlResp  *firecrawl.CrawlResponse
	crawlErr   error
	statusResp *firecrawl.CrawlStatusResponse

	searchCalls int
	scrapeCalls int
	mapCalls    int
	crawlCalls  int
}

func (m *mockFirecrawl) Search(_ context.Context, _ firecrawl.SearchRequest) (*firecrawl.SearchResponse, error) {
	m.searchCalls++
	return m.searchResp, m.searchErr
}

func (m *mockFirecrawl) Scrape(_ context.Context, _ firecrawl.ScrapeRequest) (*firecrawl.ScrapeResponse, error) {
	m.scrapeCalls++
	return m.scrapeResp, m.scrapeErr
}

func (m *mockFirecrawl) Map(_ context.Context, _ firecrawl.MapRequest) (*firecrawl.MapResponse, error) {
	m.mapCalls++
	return m.mapResp, m.mapErr
}

func (m *mockFirecrawl) Crawl(_ context.Context, _ firecrawl.CrawlRequest) (*firecrawl.CrawlResponse, error) {
	m.crawlCalls++
	return m.crawlResp, m.crawlErr
}

func (m *mockFirecrawl) GetCrawlStatus(_ context.Context, _ string) (*firecrawl.CrawlStatusResponse, error) {
	return m.statusResp, nil
}

func rateLimitErr() error {
	return &firecrawl.APIError{StatusCode: http.StatusTooManyRequests, Body: "rate limit exceeded"}
}

func TestSearchSuccess(t *testing.T) {
	mock := &mockFirecrawl{
		searchResp: &firecrawl.SearchResponse{
			Success: true,
			Data: firecrawl.SearchData{Web: []firecrawl.SearchResult{
				{URL: "https://acme.com", Title: "Acme", Description: "Widgets"},
			}},
		},
	}
	p := NewFirecrawlProvider(mock, NewRateGate(0))

	results, err := p.Search(context.Background(), "acme", 5, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://acme.com", results[0].URL)
}

func TestSearchErrorDegradesToEmpty(t *testing.T) {
	mock := &mockFirecrawl{searchErr: errors.New("boom")}
	p := NewFirecrawlProvider(mock, NewRateGate(0))

	results, err := p.Search(context.Background(), "acme", 5, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchRateLimitClosesGate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	gate := NewRateGate(30 * time.Second).WithNow(func() time.Time { return now })
	mock := &mockFirecrawl{searchErr: rateLimitErr()}
	p := NewFirecrawlProvider(mock, gate)

	_, err := p.Search(context.Background(), "acme", 5, nil)
	require.NoError(t, err)
	assert.True(t, gate.Blocked())

	// Subsequent calls are short-circuited without touching the client.
	_, err = p.Search(context.Background(), "acme", 5, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, mock.searchCalls)

	_, err = p.Scrape(context.Background(), "https://acme.com")
	require.NoError(t, err)
	assert.Zero(t, mock.scrapeCalls)

	// After the window the provider is live again.
	now = now.Add(31 * time.Second)
	_, err = p.Search(context.Background(), "acme", 5, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, mock.searchCalls)
}

func TestScrapeErrorPropagates(t *testing.T) {
	mock := &mockFirecrawl{scrapeErr: errors.New("connection refused")}
	p := NewFirecrawlProvider(mock, NewRateGate(0))

	_, err := p.Scrape(context.Background(), "https://acme.com")
	require.Error(t, err)
}

func TestScrapeRateLimitDegradesToEmpty(t *testing.T) {
	gate := NewRateGate(0)
	mock := &mockFirecrawl{scrapeErr: rateLimitErr()}
	p := NewFirecrawlProvider(mock, gate)

	page, err := p.Scrape(context.Background(), "https://acme.com")
	require.NoError(t, err)
	assert.Nil(t, page)
	assert.True(t, gate.Blocked())
}

func TestScrapeSuccess(t *testing.T) {
	mock := &mockFirecrawl{
		scrapeResp: &firecrawl.ScrapeResponse{
			Success: true,
			Data:    firecrawl.PageData{URL: "https://acme.com", Title: "Acme", Markdown: "# Acme"},
		},
	}
	p := NewFirecrawlProvider(mock, NewRateGate(0))

	page, err := p.Scrape(context.Background(), "https://acme.com")
	require.NoError(t, err)
	require.NotNil(t, page)
	assert.Equal(t, "# Acme", page.Markdown)
}

func TestMapErrorDegradesToEmpty(t *testing.T) {
	mock := &mockFirecrawl{mapErr: errors.New("boom")}
	p := NewFirecrawlProvider(mock, NewRateGate(0))

	links, err := p.Map(context.Background(), "https://acme.com", 30)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestCrawlCollectsPages(t *testing.T) {
	mock := &mockFirecrawl{
		crawlResp: &firecrawl.CrawlResponse{Success: true, ID: "crawl-1"},
		statusResp: &firecrawl.CrawlStatusResponse{
			Status: "completed",
			Total:  2,
			Data: []firecrawl.PageData{
				{URL: "https://acme.com/about", Markdown: "About"},
				{URL: "https://acme.com/team", Markdown: "Team"},
			},
		},
	}
	p := NewFirecrawlProvider(mock, NewRateGate(0))

	pages, err := p.Crawl(context.Background(), "https://acme.com", CrawlOpts{Limit: 5, MaxDepth: 1})
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "https://acme.com/about", pages[0].URL)
}
