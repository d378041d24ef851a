// Package agent holds the specialized enrichment agents. Each agent gathers
// raw text through the research provider, asks the extraction helper for a
// typed result, and attaches per-field confidence and source attribution.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/sells-group/contact-enrichment/internal/model"
)

// Input is the shared argument bundle for one agent phase.
type Input struct {
	Email      string
	Context    *model.EmailContext
	Discovered model.DiscoveredData
	Fields     []model.EnrichmentField
}

// Agent is one enrichment specialty.
type Agent interface {
	Name() string
	Execute(ctx context.Context, in *Input) *model.AgentResult
}

// Per-field confidence by research basis. Exact values are tunable; the
// ordering scraped primary > authority domain > search snippets is not.
const (
	confScrapedPrimary = 0.85
	confAuthority      = 0.80
	confSearchOnly     = 0.70
)

// Research budget knobs shared by all agents.
const (
	searchLimit      = 5
	perSourceChars   = 2500
	snippetChars     = 200
	crawlPageLimit   = 5
	siteMapLinkLimit = 30
)

// specializedFieldNames is the fixed set of fields owned by the five
// specialized agents. The general agent must never target these.
var specializedFieldNames = map[string]bool{
	"companyName":     true,
	"website":         true,
	"domain":          true,
	"companyType":     true,
	"industry":        true,
	"headquarters":    true,
	"yearFounded":     true,
	"description":     true,
	"employeeCount":   true,
	"fundingStage":    true,
	"totalRaised":     true,
	"lastRoundAmount": true,
	"lastRoundDate":   true,
	"investors":       true,
	"valuation":       true,
	"languages":       true,
	"frameworks":      true,
	"infrastructure":  true,
	"tools":           true,
	"techStack":       true,
	"titleNormalized": true,
	"seniority":       true,
	"department":      true,
	"linkedinUrl":     true,
	"location":        true,
}

// IsSpecializedField reports whether a field name is owned by a specialized
// agent.
func IsSpecializedField(name string) bool {
	return specializedFieldNames[name]
}

// sourceText pairs a source URL with the text gathered from it.
type sourceText struct {
	URL  string
	Text string
}

// buildContext assembles a bounded prompt context from gathered sources,
// truncating each source's text so no single page dominates the prompt.
func buildContext(sources []sourceText) string {
	var b strings.Builder
	for _, s := range sources {
		if strings.TrimSpace(s.Text) == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "--- %s ---\n%s", s.URL, truncate(s.Text, perSourceChars))
	}
	return b.String()
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

// sourceURLs lists the URLs of non-empty sources, in order.
func sourceURLs(sources []sourceText) []string {
	urls := make([]string, 0, len(sources))
	for _, s := range sources {
		if strings.TrimSpace(s.Text) != "" {
			urls = append(urls, s.URL)
		}
	}
	return urls
}

// hostContains reports whether the URL's host mentions any of the given
// authority domains.
func hostContains(url string, domains ...string) bool {
	lower := strings.ToLower(url)
	for _, d := range domains {
		if strings.Contains(lower, d) {
			return true
		}
	}
	return false
}
