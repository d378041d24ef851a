package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-enrichment/internal/model"
	"github.com/sells-group/contact-enrichment/internal/schema"
	"github.com/sells-group/contact-enrichment/pkg/anthropic"
)

// mockAnthropicClient returns a canned response and records the last request.
type mockAnthropicClient struct {
	response *anthropic.MessageResponse
	err      error
	lastReq  anthropic.MessageRequest
	calls    int
}

func (m *mockAnthropicClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	m.calls++
	m.lastReq = req
	return m.response, m.err
}

func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
	}
}

func testSchema() schema.Schema {
	return schema.Build([]model.EnrichmentField{
		{Name: "companyName", Type: model.TypeString},
		{Name: "yearFounded", Type: model.TypeNumber},
	})
}

func TestExtract(t *testing.T) {
	mock := &mockAnthropicClient{
		response: textResponse(`{"companyName": "Acme", "yearFounded": 2015, "extra": "dropped"}`),
	}
	e := NewAnthropicExtractor(mock, "claude-haiku-4-5-20251001")

	out, err := e.Extract(context.Background(), "Extract company facts.", testSchema(), "Acme was founded in 2015.")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"companyName": "Acme", "yearFounded": float64(2015)}, out)
	assert.Equal(t, 1, mock.calls)
	assert.Contains(t, mock.lastReq.Messages[0].Content, "Acme was founded in 2015.")
	assert.Contains(t, mock.lastReq.Messages[0].Content, `"companyName": <string or null>`)
	assert.Equal(t, int64(1024), mock.lastReq.MaxTokens)
}

func TestExtractEmptySchemaSkipsProvider(t *testing.T) {
	mock := &mockAnthropicClient{}
	e := NewAnthropicExtractor(mock, "claude-haiku-4-5-20251001")

	out, err := e.Extract(context.Background(), "whatever", schema.Schema{}, "context")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Zero(t, mock.calls)
}

func TestExtractFencedResponse(t *testing.T) {
	mock := &mockAnthropicClient{
		response: textResponse("Here is the data:\n```json\n{\"companyName\": \"Acme\"}\n```\nDone."),
	}
	e := NewAnthropicExtractor(mock, "claude-haiku-4-5-20251001")

	out, err := e.Extract(context.Background(), "extract", testSchema(), "ctx")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"companyName": "Acme"}, out)
}

func TestExtractProviderError(t *testing.T) {
	mock := &mockAnthropicClient{err: errors.New("api down")}
	e := NewAnthropicExtractor(mock, "claude-haiku-4-5-20251001")

	_, err := e.Extract(context.Background(), "extract", testSchema(), "ctx")
	require.Error(t, err)

	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, "provider call failed", extErr.Reason)
}

func TestExtractMalformedJSON(t *testing.T) {
	mock := &mockAnthropicClient{response: textResponse("I could not find any information.")}
	e := NewAnthropicExtractor(mock, "claude-haiku-4-5-20251001")

	_, err := e.Extract(context.Background(), "extract", testSchema(), "ctx")
	require.Error(t, err)

	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, "response is not a JSON object", extErr.Reason)
}

func TestExtractWithMaxTokens(t *testing.T) {
	mock := &mockAnthropicClient{response: textResponse(`{"companyName": "Acme"}`)}
	e := NewAnthropicExtractor(mock, "claude-haiku-4-5-20251001", WithMaxTokens(2048))

	_, err := e.Extract(context.Background(), "extract", testSchema(), "ctx")
	require.NoError(t, err)
	assert.Equal(t, int64(2048), mock.lastReq.MaxTokens)
}

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"prose before {\"a\": 1} prose after", `{"a": 1}`},
		{"no json here", "no json here"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanJSON(tt.in), "input %q", tt.in)
	}
}
