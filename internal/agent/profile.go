package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/contact-enrichment/internal/extract"
	"github.com/sells-group/contact-enrichment/internal/model"
	"github.com/sells-group/contact-enrichment/internal/research"
	"github.com/sells-group/contact-enrichment/internal/schema"
)

var profileFields = []model.EnrichmentField{
	{Name: "industry", Type: model.TypeString, Description: "Primary industry or sector"},
	{Name: "headquarters", Type: model.TypeString, Description: "Headquarters city and state/country"},
	{Name: "yearFounded", Type: model.TypeNumber, Description: "Year the company was founded"},
	{Name: "description", Type: model.TypeString, Description: "One-paragraph company description"},
	{Name: "employeeCount", Type: model.TypeNumber, Description: "Approximate number of employees"},
	{Name: "companyType", Type: model.TypeString, Description: "Company type (startup, enterprise, agency, nonprofit)"},
}

const profileInstructions = `Extract the company's profile: industry, headquarters location, founding year, a concise description, approximate employee count, and company type. Only report values the research context supports.`

// aboutPaths are tried in order for a primary-source about page.
var aboutPaths = []string{"/about", "/about-us", "/company"}

// CompanyProfile extracts firmographic attributes from the company's own
// about pages, falling back to web search.
type CompanyProfile struct {
	provider  research.Provider
	extractor extract.Extractor
}

// NewCompanyProfile creates the company-profile agent.
func NewCompanyProfile(provider research.Provider, extractor extract.Extractor) *CompanyProfile {
	return &CompanyProfile{provider: provider, extractor: extractor}
}

// Name implements Agent.
func (a *CompanyProfile) Name() string { return "company_profile" }

// Execute implements Agent.
func (a *CompanyProfile) Execute(ctx context.Context, in *Input) *model.AgentResult {
	result := model.NewAgentResult()

	company := in.Discovered.CompanyName()
	website := in.Discovered.Website()
	if company == "" && website == "" {
		return result
	}

	var sources []sourceText
	aboutScraped := false

	if website != "" {
		base := strings.TrimRight(website, "/")
		for _, path := range aboutPaths {
			page, err := a.provider.Scrape(ctx, base+path)
			if err != nil {
				zap.L().Debug("company_profile: about scrape failed",
					zap.String("url", base+path),
					zap.Error(err),
				)
				continue
			}
			if page != nil && page.Markdown != "" {
				aboutScraped = true
				sources = append(sources, sourceText{URL: page.URL, Text: page.Markdown})
				break
			}
		}

		if !aboutScraped {
			// A bounded crawl catches sites whose about content lives off the
			// standard paths.
			pages, _ := a.provider.Crawl(ctx, base, research.CrawlOpts{
				Limit:        crawlPageLimit,
				MaxDepth:     1,
				IncludePaths: []string{"/about*", "/company*", "/team*"},
			})
			for _, p := range pages {
				if p.Markdown == "" {
					continue
				}
				aboutScraped = true
				sources = append(sources, sourceText{URL: p.URL, Text: p.Markdown})
			}
		}
	}

	if company != "" {
		hits, _ := a.provider.Search(ctx, fmt.Sprintf("%q company profile industry headquarters", company), searchLimit, []string{"web"})
		for _, h := range hits {
			text := h.Description
			if h.Markdown != "" {
				text = h.Markdown
			}
			sources = append(sources, sourceText{URL: h.URL, Text: h.Title + "\n" + text})
		}
	}

	if len(sources) == 0 {
		return result
	}

	out, err := a.extractor.Extract(ctx, profileInstructions, schema.Build(profileFields), buildContext(sources))
	if err != nil {
		result.Errors[a.Name()] = err.Error()
		return result
	}

	conf := confSearchOnly
	if aboutScraped {
		conf = confScrapedPrimary
	}
	urls := sourceURLs(sources)
	for name, value := range out {
		result.Set(name, value, conf, urls...)
	}
	return result
}
