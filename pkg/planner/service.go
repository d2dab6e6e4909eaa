package planner

import (
	"context"
	"encoding/json"
	"fmt"

	"organizer/pkg/config"
	"organizer/pkg/logx"
	"organizer/pkg/planner/llm"
	"organizer/pkg/planner/llmerrors"
	"organizer/pkg/planner/middleware/metrics"
	"organizer/pkg/utils"
)

// Service generates move plans. A nil client puts the service in degraded mode:
// the HTTP surface stays up, plan requests fail with a configuration error.
type Service struct {
	client      llm.LLMClient
	recorder    metrics.Recorder
	logger      *logx.Logger
	tokens      *utils.TokenCounter
	maxTokens   int
	temperature float32
	strict      bool
}

// Options configures a Service beyond its LLM client.
type Options struct {
	MaxTokens   int
	Temperature float32
	Strict      bool
	Recorder    metrics.Recorder
}

// NewService creates a planning service around the given client.
// client may be nil when no API credential is available.
func NewService(client llm.LLMClient, opts Options) *Service {
	if opts.Recorder == nil {
		opts.Recorder = metrics.Nop()
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4096
	}
	if opts.Temperature == 0 {
		opts.Temperature = llm.TemperatureDefault
	}

	tokens, err := utils.NewTokenCounter("gpt-4")
	if err != nil {
		tokens = &utils.TokenCounter{} // falls back to character estimates
	}

	return &Service{
		client:      client,
		recorder:    opts.Recorder,
		logger:      logx.NewLogger("planner"),
		tokens:      tokens,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
		strict:      opts.Strict,
	}
}

// Enabled reports whether plan generation is available.
func (s *Service) Enabled() bool {
	return s.client != nil
}

// ModelName returns the backing model name, or "disabled" in degraded mode.
func (s *Service) ModelName() string {
	if s.client == nil {
		return "disabled"
	}
	return s.client.GetModelName()
}

// ProposeStructure builds the prompt, queries the model, and extracts the move
// plan from its reply. The returned value is the raw extracted JSON span.
func (s *Service) ProposeStructure(ctx context.Context, files []FileDescriptor, userPrompt string) (json.RawMessage, error) {
	if s.client == nil {
		return nil, NewError(KindConfiguration, "plan generation is disabled: no API credential configured")
	}

	prompt, err := BuildPrompt(files, userPrompt)
	if err != nil {
		return nil, err
	}

	// Reject file lists whose rendered prompt cannot fit the model's context
	// window instead of letting the provider truncate or error.
	info, _ := config.GetModelInfo(s.client.GetModelName())
	if info.MaxContextTokens > 0 && !s.tokens.ValidateTokenLimit(prompt, info.MaxContextTokens) {
		return nil, NewError(KindInput, fmt.Sprintf("file list is too large for model %s", s.client.GetModelName()))
	}

	req := llm.CompletionRequest{
		Messages:    []llm.CompletionMessage{llm.NewUserMessage(prompt)},
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	}

	s.logger.Info("requesting move plan: model=%s files=%d prompt_tokens~%d",
		s.client.GetModelName(), len(files), s.tokens.CountTokens(prompt))

	resp, err := s.client.Complete(ctx, req)
	if err != nil {
		s.logger.Error("generation failed (%s): %v", llmerrors.TypeOf(err), err)
		return nil, NewErrorWithCause(KindProvider, err, fmt.Sprintf("generation request failed: %v", err))
	}

	plan, err := Extract(resp.Content)
	s.recorder.ObserveExtraction(s.client.GetModelName(), err == nil)
	if err != nil {
		s.logger.Error("plan extraction failed: %v (reply sanitized: %s)",
			err, llmerrors.SanitizePrompt(resp.Content, 400))
		return nil, err
	}

	if s.strict {
		if _, err := DecodePlan(plan); err != nil {
			s.logger.Error("strict plan validation failed: %v", err)
			return nil, err
		}
	}

	s.logger.Info("extracted move plan: %d bytes", len(plan))
	s.logger.Debug("extracted span: %s", string(plan))
	return plan, nil
}
