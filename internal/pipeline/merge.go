package pipeline

import "github.com/sells-group/contact-enrichment/internal/model"

// MergePolicy selects how a phase's fields enter the running result.
type MergePolicy int

const (
	// MergeByConfidence inserts absent fields and replaces present ones only
	// when the new confidence is strictly greater.
	MergeByConfidence MergePolicy = iota
	// MergeFillAbsent inserts absent fields and never replaces, regardless of
	// confidence. The general agent merges under this policy.
	MergeFillAbsent
)

// maxSourceContext bounds how many source refs a result carries.
const maxSourceContext = 3

// mergePhase folds an agent result into the running result map under the
// given policy.
func mergePhase(results map[string]model.EnrichmentResult, ar *model.AgentResult, policy MergePolicy) {
	for field, value := range ar.Fields {
		conf := clamp01(ar.Confidence[field])

		existing, present := results[field]
		if present {
			if policy == MergeFillAbsent {
				continue
			}
			if conf <= existing.Confidence {
				continue
			}
		}

		sources := ar.Sources[field]
		results[field] = model.EnrichmentResult{
			Field:         field,
			Value:         value,
			Confidence:    conf,
			Source:        firstSource(sources),
			SourceContext: sourceContext(sources),
		}
	}
}

func firstSource(sources []string) string {
	if len(sources) == 0 {
		return ""
	}
	return sources[0]
}

func sourceContext(sources []string) []model.SourceRef {
	if len(sources) > maxSourceContext {
		sources = sources[:maxSourceContext]
	}
	refs := make([]model.SourceRef, 0, len(sources))
	for _, u := range sources {
		refs = append(refs, model.SourceRef{URL: u})
	}
	return refs
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
