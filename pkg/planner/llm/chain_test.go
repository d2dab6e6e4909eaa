package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixedClient(content string) LLMClient {
	return WrapClient(
		func(_ context.Context, _ CompletionRequest) (CompletionResponse, error) {
			return CompletionResponse{Content: content}, nil
		},
		func() string { return "fixed-model" },
	)
}

// tagMiddleware appends a tag to the response content so ordering is observable.
func tagMiddleware(tag string) Middleware {
	return func(next LLMClient) LLMClient {
		return WrapClient(
			func(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
				resp, err := next.Complete(ctx, req)
				if err != nil {
					return resp, err
				}
				resp.Content += tag
				return resp, nil
			},
			next.GetModelName,
		)
	}
}

func TestChainOrdering(t *testing.T) {
	base := newFixedClient("base")
	client := Chain(base, tagMiddleware("|outer"), tagMiddleware("|inner"))

	resp, err := client.Complete(context.Background(), NewCompletionRequest(nil))
	require.NoError(t, err)
	// Inner middleware appends first, outer last.
	assert.Equal(t, "base|inner|outer", resp.Content)
	assert.Equal(t, "fixed-model", client.GetModelName())
}

func TestChainNoMiddleware(t *testing.T) {
	base := newFixedClient("untouched")
	client := Chain(base)

	resp, err := client.Complete(context.Background(), NewCompletionRequest(nil))
	require.NoError(t, err)
	assert.Equal(t, "untouched", resp.Content)
}

func TestNewCompletionRequestDefaults(t *testing.T) {
	req := NewCompletionRequest([]CompletionMessage{NewUserMessage("hi")})
	assert.Equal(t, 4096, req.MaxTokens)
	assert.InDelta(t, TemperatureDefault, req.Temperature, 0.001)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, RoleUser, req.Messages[0].Role)
}

func TestLLMConfigValidate(t *testing.T) {
	valid := LLMConfig{APIKey: "k", ModelName: "m", MaxTokens: 100, Temperature: 0.3}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name string
		cfg  LLMConfig
	}{
		{"missing key", LLMConfig{ModelName: "m", MaxTokens: 100}},
		{"missing model", LLMConfig{APIKey: "k", MaxTokens: 100}},
		{"zero tokens", LLMConfig{APIKey: "k", ModelName: "m"}},
		{"bad temperature", LLMConfig{APIKey: "k", ModelName: "m", MaxTokens: 100, Temperature: 3.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cfg.Validate())
		})
	}
}
