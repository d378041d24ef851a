package agent

import (
	"context"
	"fmt"

	"github.com/sells-group/contact-enrichment/internal/extract"
	"github.com/sells-group/contact-enrichment/internal/model"
	"github.com/sells-group/contact-enrichment/internal/research"
	"github.com/sells-group/contact-enrichment/internal/schema"
)

var fundingFields = []model.EnrichmentField{
	{Name: "fundingStage", Type: model.TypeString, Description: "Latest funding stage (seed, series A/B/C, public, bootstrapped)"},
	{Name: "totalRaised", Type: model.TypeString, Description: "Total funding raised, e.g. \"$12M\""},
	{Name: "lastRoundAmount", Type: model.TypeString, Description: "Size of the most recent round"},
	{Name: "lastRoundDate", Type: model.TypeString, Description: "Date of the most recent round"},
	{Name: "investors", Type: model.TypeArray, Description: "Known investors"},
	{Name: "valuation", Type: model.TypeString, Description: "Latest known valuation"},
}

const fundingInstructions = `Extract the company's funding history: latest stage, total raised, most recent round size and date, investors, and valuation. Prefer figures attributed to funding databases or press coverage. Only report values the research context supports.`

// fundingAuthorities are domains whose funding figures outrank generic
// search snippets.
var fundingAuthorities = []string{"crunchbase.com", "pitchbook.com", "techcrunch.com", "dealroom.co"}

// Funding extracts funding-history attributes from funding-data sites and
// press coverage.
type Funding struct {
	provider  research.Provider
	extractor extract.Extractor
}

// NewFunding creates the funding agent.
func NewFunding(provider research.Provider, extractor extract.Extractor) *Funding {
	return &Funding{provider: provider, extractor: extractor}
}

// Name implements Agent.
func (a *Funding) Name() string { return "funding" }

// Execute implements Agent.
func (a *Funding) Execute(ctx context.Context, in *Input) *model.AgentResult {
	result := model.NewAgentResult()

	company := in.Discovered.CompanyName()
	if company == "" {
		return result
	}

	queries := []string{
		fmt.Sprintf("%q funding round raised investors", company),
		fmt.Sprintf("%q crunchbase", company),
	}

	var sources []sourceText
	fromAuthority := false
	for _, q := range queries {
		hits, _ := a.provider.Search(ctx, q, searchLimit, []string{"web"})
		for _, h := range hits {
			if hostContains(h.URL, fundingAuthorities...) {
				fromAuthority = true
			}
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

	out, err := a.extractor.Extract(ctx, fundingInstructions, schema.Build(fundingFields), buildContext(sources))
	if err != nil {
		result.Errors[a.Name()] = err.Error()
		return result
	}

	conf := confSearchOnly
	if fromAuthority {
		conf = confAuthority
	}
	urls := sourceURLs(sources)
	for name, value := range out {
		result.Set(name, value, conf, urls...)
	}
	return result
}
