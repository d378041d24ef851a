package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-enrichment/internal/extract"
	"github.com/sells-group/contact-enrichment/internal/pipeline"
	"github.com/sells-group/contact-enrichment/internal/research"
	"github.com/sells-group/contact-enrichment/internal/skiplist"
	"github.com/sells-group/contact-enrichment/internal/strategy"
	anthropicpkg "github.com/sells-group/contact-enrichment/pkg/anthropic"
	"github.com/sells-group/contact-enrichment/pkg/firecrawl"
)

// enrichEnv holds the initialized clients and strategy shared by the
// enrich, serve, and skiplist commands.
type enrichEnv struct {
	Skiplist skiplist.Store
	Strategy *strategy.Strategy
}

// Close releases resources held by the environment.
func (e *enrichEnv) Close() {
	if e.Skiplist != nil {
		_ = e.Skiplist.Close()
	}
}

// initEnv sets up the skip-list store, API clients, and the enrichment
// strategy. Callers should defer env.Close().
func initEnv(ctx context.Context) (*enrichEnv, error) {
	if cfg.Firecrawl.Key == "" {
		return nil, eris.New("ENRICH_FIRECRAWL_KEY is required")
	}
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("ENRICH_ANTHROPIC_KEY is required")
	}

	store, err := skiplist.Open(ctx, cfg.Skiplist.Driver, cfg.Skiplist.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "open skip list")
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, eris.Wrap(err, "migrate skip list")
	}

	firecrawlClient := firecrawl.NewClient(cfg.Firecrawl.Key, firecrawl.WithBaseURL(cfg.Firecrawl.BaseURL))
	gate := research.NewRateGate(time.Duration(cfg.Research.RateLimitBackoffSecs) * time.Second)
	provider := research.NewFirecrawlProvider(firecrawlClient, gate)

	anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)
	extractor := extract.NewAnthropicExtractor(anthropicClient, cfg.Anthropic.Model,
		extract.WithMaxTokens(int64(cfg.Anthropic.MaxTokens)))

	orch := pipeline.New(provider, extractor)
	return &enrichEnv{
		Skiplist: store,
		Strategy: strategy.New(orch, store),
	}, nil
}
