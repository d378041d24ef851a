package model

// SourceRef points at the page a finding came from, with a short excerpt.
type SourceRef struct {
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// AgentResult is the output of a single agent phase: four parallel mappings
// keyed by field name, plus phase-scoped errors keyed by sub-task name.
// A field appears in Fields only when the agent is confident enough to report
// it at all; uncertain findings are omitted rather than reported low.
type AgentResult struct {
	Fields     map[string]any      `json:"fields"`
	Confidence map[string]float64  `json:"confidence"`
	Sources    map[string][]string `json:"sources"`
	Errors     map[string]string   `json:"errors,omitempty"`
}

// NewAgentResult creates an AgentResult with all maps initialized.
func NewAgentResult() *AgentResult {
	return &AgentResult{
		Fields:     make(map[string]any),
		Confidence: make(map[string]float64),
		Sources:    make(map[string][]string),
		Errors:     make(map[string]string),
	}
}

// Set records a field value with its confidence and source URLs.
func (r *AgentResult) Set(field string, value any, confidence float64, sources ...string) {
	r.Fields[field] = value
	r.Confidence[field] = confidence
	r.Sources[field] = sources
}

// Empty reports whether the result carries no fields and no errors.
func (r *AgentResult) Empty() bool {
	return len(r.Fields) == 0 && len(r.Errors) == 0
}

// EnrichmentResult is the final, arbitrated value for one field.
type EnrichmentResult struct {
	Field         string      `json:"field"`
	Value         any         `json:"value"`
	Confidence    float64     `json:"confidence"`
	Source        string      `json:"source,omitempty"`
	SourceContext []SourceRef `json:"source_context,omitempty"`
}

// Well-known keys in DiscoveredData.
const (
	KeyEmail            = "email"
	KeyDomain           = "domain"
	KeyCompanyDomain    = "companyDomain"
	KeyCompanyName      = "companyName"
	KeyCompanyNameGuess = "companyNameGuess"
	KeyWebsite          = "website"
	KeyIndustry         = "industry"
	KeyPersonalName     = "personalName"
)

// DiscoveredData accumulates confirmed findings across phases so later agents
// can condition their queries on earlier ones. It lives for exactly one
// enrichment call.
type DiscoveredData map[string]any

// SeedDiscovered initializes the accumulator from a parsed email context.
func SeedDiscovered(ec *EmailContext) DiscoveredData {
	d := DiscoveredData{
		KeyEmail:  ec.Email,
		KeyDomain: ec.Domain,
	}
	if ec.CompanyDomain != "" {
		d[KeyCompanyDomain] = ec.CompanyDomain
		d[KeyWebsite] = "https://" + ec.CompanyDomain
	}
	if ec.CompanyNameGuess != "" {
		d[KeyCompanyNameGuess] = ec.CompanyNameGuess
	}
	if ec.PersonalName != "" {
		d[KeyPersonalName] = ec.PersonalName
	}
	return d
}

// GetString returns the value for key as a string, or "" when absent or not
// a string.
func (d DiscoveredData) GetString(key string) string {
	if v, ok := d[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// CompanyName returns the best company name so far: a confirmed companyName
// if present, otherwise the parser's guess.
func (d DiscoveredData) CompanyName() string {
	if name := d.GetString(KeyCompanyName); name != "" {
		return name
	}
	return d.GetString(KeyCompanyNameGuess)
}

// Website returns the best website so far.
func (d DiscoveredData) Website() string {
	return d.GetString(KeyWebsite)
}

// Absorb copies every field from an agent result into the accumulator,
// regardless of whether arbitration kept that value in the final result.
// Later phases should condition on the freshest guess.
func (d DiscoveredData) Absorb(r *AgentResult) {
	for k, v := range r.Fields {
		d[k] = v
	}
}
