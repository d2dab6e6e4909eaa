package planner

import (
	"fmt"
	"time"

	"organizer/pkg/config"
	"organizer/pkg/logx"
	"organizer/pkg/planner/internal/llmimpl/anthropic"
	"organizer/pkg/planner/internal/llmimpl/google"
	"organizer/pkg/planner/internal/llmimpl/ollama"
	"organizer/pkg/planner/internal/llmimpl/openai"
	"organizer/pkg/planner/llm"
	"organizer/pkg/planner/middleware/metrics"
	"organizer/pkg/planner/middleware/timeout"
)

// NewLLMClient creates an LLM client for the configured model with the middleware chain applied.
// The API key is retrieved from environment variables based on the model's provider; a missing
// key is returned as an error so the caller can decide to run degraded instead of exiting.
func NewLLMClient(cfg config.PlannerConfig, recorder metrics.Recorder, logger *logx.Logger) (llm.LLMClient, error) {
	provider, err := config.GetModelProvider(cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to determine provider for model %s: %w", cfg.Model, err)
	}

	apiKey, err := config.GetAPIKey(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to get API key for provider %s: %w", provider, err)
	}

	llmCfg := llm.LLMConfig{
		APIKey:      apiKey,
		ModelName:   cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}
	if err := llmCfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid LLM configuration for model %s: %w", cfg.Model, err)
	}

	var rawClient llm.LLMClient
	switch provider {
	case config.ProviderGoogle:
		rawClient = google.NewGeminiClientWithModel(apiKey, cfg.Model)
	case config.ProviderAnthropic:
		rawClient = anthropic.NewClaudeClientWithModel(apiKey, cfg.Model)
	case config.ProviderOpenAI:
		rawClient = openai.NewClientWithModel(apiKey, cfg.Model)
	case config.ProviderOllama:
		// For Ollama, the "API key" is the host URL
		rawClient = ollama.NewOllamaClientWithModel(apiKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}

	if recorder == nil {
		recorder = metrics.Nop()
	}

	// Build the middleware chain: Metrics -> Timeout -> RawClient
	middlewares := []llm.Middleware{
		metrics.Middleware(recorder, nil, logger),
	}
	if cfg.RequestTimeout > 0 {
		middlewares = append(middlewares, timeout.Middleware(time.Duration(cfg.RequestTimeout)))
	}

	return llm.Chain(rawClient, middlewares...), nil
}
