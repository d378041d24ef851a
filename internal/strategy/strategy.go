// Package strategy is the top-level entry point for enriching a single
// email address. It parses the address, consults the skip list, and runs
// the enrichment pipeline, reducing every failure mode to a status.
package strategy

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/contact-enrichment/internal/emailparse"
	"github.com/sells-group/contact-enrichment/internal/model"
	"github.com/sells-group/contact-enrichment/internal/pipeline"
	"github.com/sells-group/contact-enrichment/internal/skiplist"
)

// Status describes how an enrichment call ended.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
	StatusError     Status = "error"
)

// Outcome is the result of one enrichment call.
type Outcome struct {
	ID          string                            `json:"id"`
	Email       string                            `json:"email"`
	Status      Status                            `json:"status"`
	Enrichments map[string]model.EnrichmentResult `json:"enrichments,omitempty"`
	Err         error                             `json:"-"`
}

// Enricher runs the pipeline for a parsed email context.
type Enricher interface {
	Enrich(ctx context.Context, ec *model.EmailContext, fields []model.EnrichmentField) map[string]model.EnrichmentResult
}

// Strategy wires parsing, the skip list, and the pipeline together.
type Strategy struct {
	enricher Enricher
	store    skiplist.Store
}

// New creates a Strategy. store may be nil when no skip list is configured.
func New(enricher Enricher, store skiplist.Store) *Strategy {
	return &Strategy{enricher: enricher, store: store}
}

var _ Enricher = (*pipeline.Orchestrator)(nil)

// EnrichEmail enriches one address. Invalid addresses produce StatusError;
// skip-listed addresses produce StatusSkipped with no provider calls. The
// skip list is reloaded on every call so admin changes take effect
// immediately.
func (s *Strategy) EnrichEmail(ctx context.Context, email string, fields []model.EnrichmentField) Outcome {
	id := uuid.New().String()
	start := time.Now()

	ec, err := emailparse.Parse(email)
	if err != nil {
		zap.L().Warn("strategy: unparseable email",
			zap.String("enrichment_id", id),
			zap.String("email", email),
			zap.Error(err),
		)
		return Outcome{ID: id, Email: email, Status: StatusError, Err: err}
	}

	if s.store != nil {
		list, err := s.store.Load(ctx)
		if err != nil {
			// A broken skip list must not block enrichment.
			zap.L().Warn("strategy: skip list load failed", zap.Error(err))
		} else if list.Blocks(ec.Email, ec.Domain) {
			zap.L().Info("strategy: enrichment complete",
				zap.String("enrichment_id", id),
				zap.String("domain", ec.Domain),
				zap.String("status", string(StatusSkipped)),
				zap.Int("fields", 0),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
			return Outcome{ID: id, Email: ec.Email, Status: StatusSkipped}
		}
	}

	enrichments := s.enricher.Enrich(ctx, ec, fields)
	zap.L().Info("strategy: enrichment complete",
		zap.String("enrichment_id", id),
		zap.String("domain", ec.Domain),
		zap.String("status", string(StatusCompleted)),
		zap.Int("fields", len(enrichments)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return Outcome{ID: id, Email: ec.Email, Status: StatusCompleted, Enrichments: enrichments}
}
