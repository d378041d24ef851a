// Package pipeline runs the enrichment agents in a fixed dependency order,
// threading a shared discovered-data accumulator and arbitrating conflicting
// field values by confidence.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/contact-enrichment/internal/agent"
	"github.com/sells-group/contact-enrichment/internal/extract"
	"github.com/sells-group/contact-enrichment/internal/model"
	"github.com/sells-group/contact-enrichment/internal/research"
)

// Phase is one step of the pipeline: an agent plus the policy used to merge
// its output into the running result. Phase order and merge policy are data,
// not control flow.
type Phase struct {
	Name   string
	Agent  agent.Agent
	Policy MergePolicy
}

// Orchestrator executes the phases sequentially. Each phase reads the
// accumulated discovered data of its predecessors.
type Orchestrator struct {
	phases []Phase
}

// New builds the standard six-phase orchestrator: discovery first, the
// specialized agents next, the general agent last and fill-absent-only.
func New(provider research.Provider, extractor extract.Extractor) *Orchestrator {
	return NewWithPhases([]Phase{
		{Name: "discovery", Agent: agent.NewDiscovery(provider, extractor), Policy: MergeByConfidence},
		{Name: "company_profile", Agent: agent.NewCompanyProfile(provider, extractor), Policy: MergeByConfidence},
		{Name: "funding", Agent: agent.NewFunding(provider, extractor), Policy: MergeByConfidence},
		{Name: "tech_stack", Agent: agent.NewTechStack(provider, extractor), Policy: MergeByConfidence},
		{Name: "person", Agent: agent.NewPerson(provider, extractor), Policy: MergeByConfidence},
		{Name: "general", Agent: agent.NewGeneral(provider, extractor), Policy: MergeFillAbsent},
	})
}

// NewWithPhases builds an orchestrator over an explicit phase list.
func NewWithPhases(phases []Phase) *Orchestrator {
	return &Orchestrator{phases: phases}
}

// Enrich runs every phase for one email and returns the arbitrated result
// map. No phase failure is fatal; the worst case is an empty map.
func (o *Orchestrator) Enrich(ctx context.Context, ec *model.EmailContext, fields []model.EnrichmentField) map[string]model.EnrichmentResult {
	results := make(map[string]model.EnrichmentResult)

	if ec.IsPersonalEmail {
		zap.L().Info("pipeline: personal email, skipping all phases",
			zap.String("domain", ec.Domain),
		)
		return results
	}

	if len(fields) == 0 {
		fields = model.DefaultFields()
	}

	in := &agent.Input{
		Email:      ec.Email,
		Context:    ec,
		Discovered: model.SeedDiscovered(ec),
		Fields:     fields,
	}

	for _, ph := range o.phases {
		select {
		case <-ctx.Done():
			zap.L().Warn("pipeline: context done, stopping phases",
				zap.String("phase", ph.Name),
			)
			return results
		default:
		}

		start := time.Now()
		ar := runPhase(ctx, ph, in)
		mergePhase(results, ar, ph.Policy)
		in.Discovered.Absorb(ar)

		zap.L().Info("pipeline: phase complete",
			zap.String("phase", ph.Name),
			zap.Int("fields", len(ar.Fields)),
			zap.Int("errors", len(ar.Errors)),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	}

	return results
}

// runPhase invokes the phase agent, converting a panic or a nil result into
// an empty AgentResult so later phases still run.
func runPhase(ctx context.Context, ph Phase, in *agent.Input) (result *model.AgentResult) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("pipeline: phase panicked",
				zap.String("phase", ph.Name),
				zap.Any("panic", r),
			)
			result = model.NewAgentResult()
		}
	}()

	result = ph.Agent.Execute(ctx, in)
	if result == nil {
		result = model.NewAgentResult()
	}
	return result
}
