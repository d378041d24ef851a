package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-enrichment/internal/model"
	"github.com/sells-group/contact-enrichment/internal/research"
	"github.com/sells-group/contact-enrichment/internal/schema"
)

// scriptedProvider serves a small fake acme.com site.
type scriptedProvider struct {
	searchCalls int
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Scrape(_ context.Context, url string) (*research.Page, error) {
	switch url {
	case "https://acme.com":
		return &research.Page{URL: url, Markdown: "# Acme Incorporated\nWidgets for everyone."}, nil
	case "https://acme.com/about":
		return &research.Page{URL: url, Markdown: "Acme Incorporated builds widgets in Austin. Founded 2015."}, nil
	}
	return nil, nil
}

func (p *scriptedProvider) Search(_ context.Context, query string, _ int, _ []string) ([]research.SearchResult, error) {
	p.searchCalls++
	return []research.SearchResult{
		{URL: "https://example.com/acme", Title: "Acme Incorporated", Description: "Widget company in Austin"},
	}, nil
}

func (p *scriptedProvider) Map(_ context.Context, _ string, _ int) ([]research.Link, error) {
	return nil, nil
}

func (p *scriptedProvider) Crawl(_ context.Context, _ string, _ research.CrawlOpts) ([]research.Page, error) {
	return nil, nil
}

// schemaKeyedExtractor answers from a fixed fact table, returning only the
// fields each call's schema declares.
type schemaKeyedExtractor struct{}

var extractorFacts = map[string]any{
	"companyName":      "Acme Incorporated",
	"website":          "https://acme.com",
	"domain":           "acme.com",
	"industry":         "Manufacturing",
	"headquarters":     "Austin, TX",
	"yearFounded":      float64(2015),
	"missionStatement": "Widgets for everyone",
}

func (e *schemaKeyedExtractor) Extract(_ context.Context, _ string, s schema.Schema, _ string) (map[string]any, error) {
	out := make(map[string]any)
	for name := range s.Fields {
		if v, ok := extractorFacts[name]; ok {
			out[name] = v
		}
	}
	return s.Apply(out), nil
}

func TestEnrichEndToEnd(t *testing.T) {
	provider := &scriptedProvider{}
	o := New(provider, &schemaKeyedExtractor{})

	fields := append(model.DefaultFields(), model.EnrichmentField{
		Name: "missionStatement", DisplayName: "Mission Statement", Type: model.TypeString,
	})

	out := o.Enrich(context.Background(), &model.EmailContext{
		Email:            "jane.doe@acme.com",
		Domain:           "acme.com",
		CompanyDomain:    "acme.com",
		CompanyNameGuess: "Acme",
		PersonalName:     "Jane Doe",
	}, fields)

	require.Contains(t, out, "companyName")
	assert.Equal(t, "Acme Incorporated", out["companyName"].Value)
	// Discovery scraped the homepage, so identity fields carry primary-source
	// confidence.
	assert.GreaterOrEqual(t, out["companyName"].Confidence, 0.8)

	require.Contains(t, out, "headquarters")
	assert.Equal(t, "Austin, TX", out["headquarters"].Value)
	assert.GreaterOrEqual(t, out["headquarters"].Confidence, 0.8)

	// The general agent handled the caller-defined field at search confidence.
	require.Contains(t, out, "missionStatement")
	assert.InDelta(t, 0.7, out["missionStatement"].Confidence, 0.001)

	for name, r := range out {
		assert.GreaterOrEqual(t, r.Confidence, 0.0, name)
		assert.LessOrEqual(t, r.Confidence, 1.0, name)
		assert.Equal(t, name, r.Field)
	}
}
