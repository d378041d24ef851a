package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sells-group/contact-enrichment/internal/extract"
	"github.com/sells-group/contact-enrichment/internal/model"
	"github.com/sells-group/contact-enrichment/internal/research"
	"github.com/sells-group/contact-enrichment/internal/schema"
)

// discoveryFields is the fixed output schema of the discovery phase.
var discoveryFields = []model.EnrichmentField{
	{Name: "companyName", Type: model.TypeString, Description: "Official company name"},
	{Name: "website", Type: model.TypeString, Description: "Canonical company website URL"},
	{Name: "domain", Type: model.TypeString, Description: "Primary company domain"},
	{Name: "companyType", Type: model.TypeString, Description: "Company type (startup, enterprise, agency, nonprofit)"},
}

const discoveryInstructions = `Identify the company behind the researched domain. Confirm the official company name, canonical website, primary domain, and company type. Only report values the research context supports.`

// Discovery confirms the company's identity from its domain. It runs first
// and seeds the rest of the pipeline.
type Discovery struct {
	provider  research.Provider
	extractor extract.Extractor
}

// NewDiscovery creates the discovery agent.
func NewDiscovery(provider research.Provider, extractor extract.Extractor) *Discovery {
	return &Discovery{provider: provider, extractor: extractor}
}

// Name implements Agent.
func (a *Discovery) Name() string { return "discovery" }

// Execute implements Agent.
func (a *Discovery) Execute(ctx context.Context, in *Input) *model.AgentResult {
	result := model.NewAgentResult()

	domain := in.Context.CompanyDomain
	if domain == "" {
		return result
	}

	var sources []sourceText
	homepageScraped := false

	homepage := "https://" + domain
	page, err := a.provider.Scrape(ctx, homepage)
	if err != nil {
		zap.L().Debug("discovery: homepage scrape failed, trying www",
			zap.String("url", homepage),
			zap.Error(err),
		)
		page, err = a.provider.Scrape(ctx, "https://www."+domain)
	}
	if err != nil {
		result.Errors["homepage"] = err.Error()
	} else if page != nil && page.Markdown != "" {
		homepageScraped = true
		sources = append(sources, sourceText{URL: page.URL, Text: page.Markdown})
	}

	query := fmt.Sprintf("%q official website company", in.Context.CompanyNameGuess)
	if in.Context.CompanyNameGuess == "" {
		query = fmt.Sprintf("%s company", domain)
	}
	hits, _ := a.provider.Search(ctx, query, searchLimit, []string{"web"})
	for _, h := range hits {
		text := h.Description
		if h.Markdown != "" {
			text = h.Markdown
		}
		sources = append(sources, sourceText{URL: h.URL, Text: h.Title + "\n" + text})
	}

	if len(sources) == 0 {
		return result
	}

	out, err := a.extractor.Extract(ctx, discoveryInstructions, schema.Build(discoveryFields), buildContext(sources))
	if err != nil {
		result.Errors[a.Name()] = err.Error()
		return result
	}

	conf := confSearchOnly
	if homepageScraped {
		conf = confScrapedPrimary
	}
	urls := sourceURLs(sources)
	for name, value := range out {
		result.Set(name, value, conf, urls...)
	}
	return result
}
