// Package extract is the single chokepoint through which unstructured
// research text becomes structured data: a schema-constrained language-model
// extraction call. Every agent depends on it and none bypass it.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-enrichment/internal/schema"
	"github.com/sells-group/contact-enrichment/pkg/anthropic"
)

const systemText = "You are a research analyst extracting structured data from web research. Return a single valid JSON object matching the requested schema. Use null for fields the research does not support. Never invent values."

const promptTemplate = `%s

Output JSON schema:
%s

Research context:
%s

Extract the requested data from the research context. Return valid JSON matching the schema above.`

const defaultMaxTokens = 1024

// ExtractionError is returned when the provider call fails or its response
// cannot be parsed against the requested schema.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract: %s: %v", e.Reason, e.Err)
	}
	return "extract: " + e.Reason
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Extractor turns prompt instructions plus research context into a
// schema-typed object.
type Extractor interface {
	Extract(ctx context.Context, instructions string, s schema.Schema, researchContext string) (map[string]any, error)
}

// AnthropicExtractor implements Extractor with a single Claude message.
type AnthropicExtractor struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// Option configures an AnthropicExtractor.
type Option func(*AnthropicExtractor)

// WithMaxTokens overrides the response token cap.
func WithMaxTokens(n int64) Option {
	return func(e *AnthropicExtractor) {
		if n > 0 {
			e.maxTokens = n
		}
	}
}

// NewAnthropicExtractor creates an extractor using the given model.
func NewAnthropicExtractor(client anthropic.Client, model string, opts ...Option) *AnthropicExtractor {
	e := &AnthropicExtractor{
		client:    client,
		model:     model,
		maxTokens: defaultMaxTokens,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract implements Extractor. The model's output is validated against the
// caller-declared schema: undeclared fields are discarded and declared ones
// coerced per their type.
func (e *AnthropicExtractor) Extract(ctx context.Context, instructions string, s schema.Schema, researchContext string) (map[string]any, error) {
	if s.Empty() {
		return map[string]any{}, nil
	}

	prompt := fmt.Sprintf(promptTemplate, instructions, s.Describe(), researchContext)

	resp, err := e.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     e.model,
		MaxTokens: e.maxTokens,
		System:    systemText,
		Messages: []anthropic.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return nil, &ExtractionError{Reason: "provider call failed", Err: err}
	}

	resp.Usage.LogCost(e.model, "extract")

	cleaned := cleanJSON(resp.Text())
	var raw map[string]any
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, &ExtractionError{
			Reason: "response is not a JSON object",
			Err:    eris.Wrap(err, "unmarshal"),
		}
	}

	return s.Apply(raw), nil
}

// cleanJSON strips markdown fences and surrounding prose from a model
// response, keeping the outermost JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
