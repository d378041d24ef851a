package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/sells-group/contact-enrichment/internal/extract"
	"github.com/sells-group/contact-enrichment/internal/model"
	"github.com/sells-group/contact-enrichment/internal/research"
	"github.com/sells-group/contact-enrichment/internal/schema"
)

const generalInstructionsTemplate = `Research %s and extract the following attributes: %s. Only report values the research context supports.`

// General handles caller-requested fields no specialized agent owns. Its
// extraction basis is generic web search, so the orchestrator never lets it
// override a specialized finding.
type General struct {
	provider  research.Provider
	extractor extract.Extractor
}

// NewGeneral creates the general agent.
func NewGeneral(provider research.Provider, extractor extract.Extractor) *General {
	return &General{provider: provider, extractor: extractor}
}

// Name implements Agent.
func (a *General) Name() string { return "general" }

// Execute implements Agent.
func (a *General) Execute(ctx context.Context, in *Input) *model.AgentResult {
	result := model.NewAgentResult()

	company := in.Discovered.CompanyName()
	website := in.Discovered.Website()
	if company == "" && website == "" {
		return result
	}

	remaining := remainingFields(in.Fields)
	if len(remaining) == 0 {
		return result
	}

	subject := company
	if subject == "" {
		subject = website
	}

	var sources []sourceText
	queries := []string{
		fmt.Sprintf("%q %s", subject, describeFields(remaining)),
		fmt.Sprintf("%q company overview", subject),
	}
	for _, q := range queries {
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

	// The schema is built per request from the caller's declared types.
	instructions := fmt.Sprintf(generalInstructionsTemplate, subject, describeFields(remaining))
	out, err := a.extractor.Extract(ctx, instructions, schema.Build(remaining), buildContext(sources))
	if err != nil {
		result.Errors[a.Name()] = err.Error()
		return result
	}

	urls := sourceURLs(sources)
	for name, value := range out {
		result.Set(name, value, confSearchOnly, urls...)
	}
	return result
}

// remainingFields computes requested minus the specialized constant set.
func remainingFields(requested []model.EnrichmentField) []model.EnrichmentField {
	var out []model.EnrichmentField
	for _, f := range requested {
		if !IsSpecializedField(f.Name) {
			out = append(out, f)
		}
	}
	return out
}

// describeFields renders field display names (falling back to names) for
// query and prompt text.
func describeFields(fields []model.EnrichmentField) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		label := f.DisplayName
		if label == "" {
			label = f.Name
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, ", ")
}
