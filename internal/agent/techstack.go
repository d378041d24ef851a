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

var techStackFields = []model.EnrichmentField{
	{Name: "languages", Type: model.TypeArray, Description: "Programming languages in use"},
	{Name: "frameworks", Type: model.TypeArray, Description: "Frameworks and major libraries in use"},
	{Name: "infrastructure", Type: model.TypeArray, Description: "Cloud and infrastructure providers in use"},
	{Name: "tools", Type: model.TypeArray, Description: "Developer and data tools in use"},
}

const techStackInstructions = `Extract the company's technology stack: programming languages, frameworks, infrastructure providers, and tools. Rely on engineering blogs, job postings, and stack listings. Only report technologies the research context supports.`

// engineeringPathHints mark site-map links likely to describe the stack.
var engineeringPathHints = []string{"careers", "jobs", "engineering", "blog", "tech"}

// TechStack extracts the company's technology stack from engineering pages
// and job postings.
type TechStack struct {
	provider  research.Provider
	extractor extract.Extractor
}

// NewTechStack creates the tech-stack agent.
func NewTechStack(provider research.Provider, extractor extract.Extractor) *TechStack {
	return &TechStack{provider: provider, extractor: extractor}
}

// Name implements Agent.
func (a *TechStack) Name() string { return "tech_stack" }

// Execute implements Agent.
func (a *TechStack) Execute(ctx context.Context, in *Input) *model.AgentResult {
	result := model.NewAgentResult()

	company := in.Discovered.CompanyName()
	website := in.Discovered.Website()
	if company == "" && website == "" {
		return result
	}

	var sources []sourceText
	pageScraped := false

	if website != "" {
		if target := a.findEngineeringPage(ctx, website); target != "" {
			page, err := a.provider.Scrape(ctx, target)
			if err != nil {
				zap.L().Debug("tech_stack: engineering page scrape failed",
					zap.String("url", target),
					zap.Error(err),
				)
			} else if page != nil && page.Markdown != "" {
				pageScraped = true
				sources = append(sources, sourceText{URL: page.URL, Text: page.Markdown})
			}
		}
	}

	queries := []string{
		fmt.Sprintf("%q tech stack engineering", company),
		fmt.Sprintf("%q stackshare OR \"built with\"", company),
	}
	for _, q := range queries {
		if company == "" {
			break
		}
		hits, _ := a.provider.Search(ctx, q, searchLimit, []string{"web"})
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

	out, err := a.extractor.Extract(ctx, techStackInstructions, schema.Build(techStackFields), buildContext(sources))
	if err != nil {
		result.Errors[a.Name()] = err.Error()
		return result
	}

	conf := confSearchOnly
	if pageScraped {
		conf = confScrapedPrimary
	}
	urls := sourceURLs(sources)
	var union []any
	for name, value := range out {
		result.Set(name, value, conf, urls...)
		if items, ok := value.([]any); ok {
			union = append(union, items...)
		}
	}
	if len(union) > 0 {
		result.Set("techStack", dedupe(union), conf, urls...)
	}
	return result
}

// findEngineeringPage maps the site and returns the first link that looks
// like a careers or engineering page.
func (a *TechStack) findEngineeringPage(ctx context.Context, website string) string {
	links, _ := a.provider.Map(ctx, website, siteMapLinkLimit)
	for _, l := range links {
		lower := strings.ToLower(l.URL)
		for _, hint := range engineeringPathHints {
			if strings.Contains(lower, hint) {
				return l.URL
			}
		}
	}
	return ""
}

// dedupe removes duplicate string entries, preserving order.
func dedupe(items []any) []any {
	seen := make(map[string]bool, len(items))
	out := make([]any, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			out = append(out, item)
			continue
		}
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
