package planner

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"organizer/pkg/config"
	"organizer/pkg/logx"
)

func TestNewLLMClientMissingCredential(t *testing.T) {
	t.Setenv(config.EnvGoogleAPIKey, "")
	os.Unsetenv(config.EnvGoogleAPIKey)

	cfg := config.PlannerConfig{Model: "gemini-2.5-pro", MaxTokens: 100, Temperature: 0.3}
	_, err := NewLLMClient(cfg, nil, logx.NewLogger("factory-test"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.EnvGoogleAPIKey)
}

func TestNewLLMClientRejectsBadParameters(t *testing.T) {
	t.Setenv(config.EnvGoogleAPIKey, "test-key")

	tests := []struct {
		name string
		cfg  config.PlannerConfig
	}{
		{"zero max_tokens", config.PlannerConfig{Model: "gemini-2.5-pro", Temperature: 0.3}},
		{"temperature out of range", config.PlannerConfig{Model: "gemini-2.5-pro", MaxTokens: 100, Temperature: 3.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLLMClient(tt.cfg, nil, logx.NewLogger("factory-test"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid LLM configuration")
		})
	}
}

func TestNewLLMClientBuildsChain(t *testing.T) {
	t.Setenv(config.EnvGoogleAPIKey, "test-key")

	cfg := config.PlannerConfig{
		Model:          "gemini-2.5-pro",
		MaxTokens:      100,
		Temperature:    0.3,
		RequestTimeout: config.Duration(time.Second),
	}
	client, err := NewLLMClient(cfg, nil, logx.NewLogger("factory-test"))
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-pro", client.GetModelName())
}
