package agent

import (
	"context"
	"fmt"

	"github.com/sells-group/contact-enrichment/internal/extract"
	"github.com/sells-group/contact-enrichment/internal/model"
	"github.com/sells-group/contact-enrichment/internal/research"
	"github.com/sells-group/contact-enrichment/internal/schema"
)

var personFields = []model.EnrichmentField{
	{Name: "titleNormalized", Type: model.TypeString, Description: "Person's normalized job title"},
	{Name: "seniority", Type: model.TypeString, Description: "Seniority level (c-level, vp, director, manager, ic)"},
	{Name: "department", Type: model.TypeString, Description: "Department (engineering, sales, marketing, ...)"},
	{Name: "linkedinUrl", Type: model.TypeString, Description: "Person's LinkedIn profile URL"},
	{Name: "location", Type: model.TypeString, Description: "Person's location"},
}

const personInstructionsTemplate = `Identify the role of %s at %s: normalized job title, seniority level, department, LinkedIn profile URL, and location. Report only the person matching both the name and the company; if the research is about someone else, report nothing.`

// Person extracts role attributes for the contact behind the address.
type Person struct {
	provider  research.Provider
	extractor extract.Extractor
}

// NewPerson creates the person agent.
func NewPerson(provider research.Provider, extractor extract.Extractor) *Person {
	return &Person{provider: provider, extractor: extractor}
}

// Name implements Agent.
func (a *Person) Name() string { return "person" }

// Execute implements Agent.
func (a *Person) Execute(ctx context.Context, in *Input) *model.AgentResult {
	result := model.NewAgentResult()

	company := in.Discovered.CompanyName()
	person := in.Context.PersonalName
	if company == "" || person == "" {
		return result
	}

	queries := []string{
		fmt.Sprintf("%q %q linkedin", person, company),
		fmt.Sprintf("%q %q", person, company),
	}

	var sources []sourceText
	fromLinkedIn := false
	for _, q := range queries {
		hits, _ := a.provider.Search(ctx, q, searchLimit, []string{"web"})
		for _, h := range hits {
			if hostContains(h.URL, "linkedin.com") {
				fromLinkedIn = true
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

	instructions := fmt.Sprintf(personInstructionsTemplate, person, company)
	out, err := a.extractor.Extract(ctx, instructions, schema.Build(personFields), buildContext(sources))
	if err != nil {
		result.Errors[a.Name()] = err.Error()
		return result
	}

	conf := confSearchOnly
	if fromLinkedIn {
		conf = confAuthority
	}
	urls := sourceURLs(sources)
	for name, value := range out {
		result.Set(name, value, conf, urls...)
	}
	return result
}
