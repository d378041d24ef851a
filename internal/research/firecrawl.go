package research

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/contact-enrichment/pkg/firecrawl"
)

// FirecrawlProvider implements Provider on top of the Firecrawl API, with
// every operation guarded by a shared RateGate.
type FirecrawlProvider struct {
	client firecrawl.Client
	gate   *RateGate
}

// NewFirecrawlProvider creates a FirecrawlProvider. The gate is required; one
// gate instance must be shared by every provider handling concurrent requests.
func NewFirecrawlProvider(client firecrawl.Client, gate *RateGate) *FirecrawlProvider {
	return &FirecrawlProvider{client: client, gate: gate}
}

// Name implements Provider.
func (p *FirecrawlProvider) Name() string { return "firecrawl" }

// Search performs a web search. Failures degrade to an empty result.
func (p *FirecrawlProvider) Search(ctx context.Context, query string, limit int, sourceTypes []string) ([]SearchResult, error) {
	if p.gate.Blocked() {
		zap.L().Debug("research: search short-circuited by rate gate", zap.String("query", query))
		return nil, nil
	}

	resp, err := p.client.Search(ctx, firecrawl.SearchRequest{
		Query:   query,
		Limit:   limit,
		Sources: sourceTypes,
	})
	if err != nil {
		p.absorb("search", err)
		return nil, nil
	}
	if !resp.Success {
		return nil, nil
	}

	results := make([]SearchResult, 0, len(resp.Data.Web))
	for _, r := range resp.Data.Web {
		results = append(results, SearchResult{
			URL:         r.URL,
			Title:       r.Title,
			Description: r.Description,
			Markdown:    r.Markdown,
		})
	}
	return results, nil
}

// Scrape fetches a single page. Rate limits degrade to an empty result;
// any other failure propagates so the caller can try a fallback URL.
func (p *FirecrawlProvider) Scrape(ctx context.Context, url string) (*Page, error) {
	if p.gate.Blocked() {
		zap.L().Debug("research: scrape short-circuited by rate gate", zap.String("url", url))
		return nil, nil
	}

	resp, err := p.client.Scrape(ctx, firecrawl.ScrapeRequest{
		URL:     url,
		Formats: []string{"markdown"},
	})
	if err != nil {
		if firecrawl.IsRateLimited(err) {
			p.absorb("scrape", err)
			return nil, nil
		}
		return nil, err
	}
	if !resp.Success {
		return nil, nil
	}

	return pageFromData(resp.Data), nil
}

// Map lists a site's links. Failures degrade to an empty result.
func (p *FirecrawlProvider) Map(ctx context.Context, url string, limit int) ([]Link, error) {
	if p.gate.Blocked() {
		zap.L().Debug("research: map short-circuited by rate gate", zap.String("url", url))
		return nil, nil
	}

	resp, err := p.client.Map(ctx, firecrawl.MapRequest{URL: url, Limit: limit})
	if err != nil {
		p.absorb("map", err)
		return nil, nil
	}
	if !resp.Success {
		return nil, nil
	}

	links := make([]Link, 0, len(resp.Links))
	for _, l := range resp.Links {
		links = append(links, Link{URL: l.URL, Title: l.Title})
	}
	return links, nil
}

// Crawl fetches multiple pages under a URL. Failures degrade to an empty
// result.
func (p *FirecrawlProvider) Crawl(ctx context.Context, url string, opts CrawlOpts) ([]Page, error) {
	if p.gate.Blocked() {
		zap.L().Debug("research: crawl short-circuited by rate gate", zap.String("url", url))
		return nil, nil
	}

	status, err := firecrawl.CrawlAndWait(ctx, p.client, firecrawl.CrawlRequest{
		URL:          url,
		Limit:        opts.Limit,
		MaxDepth:     opts.MaxDepth,
		IncludePaths: opts.IncludePaths,
		ExcludePaths: opts.ExcludePaths,
	}, firecrawl.WithPollTimeout(2*time.Minute))
	if err != nil {
		p.absorb("crawl", err)
		return nil, nil
	}

	pages := make([]Page, 0, len(status.Data))
	for _, d := range status.Data {
		pages = append(pages, *pageFromData(d))
	}
	return pages, nil
}

// absorb logs a provider failure and closes the gate on rate-limit signals.
func (p *FirecrawlProvider) absorb(op string, err error) {
	if firecrawl.IsRateLimited(err) {
		p.gate.Block()
		zap.L().Warn("research: provider rate limited, backing off",
			zap.String("op", op),
			zap.Time("blocked_until", p.gate.BlockedUntil()),
		)
		return
	}
	zap.L().Warn("research: provider call failed",
		zap.String("op", op),
		zap.Error(err),
	)
}

func pageFromData(d firecrawl.PageData) *Page {
	return &Page{
		URL:      d.URL,
		Title:    d.Title,
		Markdown: d.Markdown,
		HTML:     d.HTML,
		Metadata: d.Metadata,
	}
}
