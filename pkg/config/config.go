// Package config provides configuration loading, validation, and management for the organizer backend.
//
// KEY PRINCIPLES:
//
//  1. GLOBAL SINGLETON: A single global Config instance is maintained in memory, protected by
//     mutex for thread safety.
//
//  2. VALUE-BASED ACCESS: GetConfig() returns the config BY VALUE (copy, not reference) to
//     prevent external mutation.
//
//  3. SECRETS STAY IN THE ENVIRONMENT: API keys are never part of the config file. They are
//     resolved at client-construction time via GetAPIKey, so a missing key degrades the
//     service instead of failing startup.
//
// USAGE PATTERNS:
//
//	// Load config from file (usually done once at startup)
//	err := config.LoadConfig(configPath)
//
//	// Access config (always by value)
//	cfg, err := config.GetConfig()
package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"organizer/pkg/logx"
)

// Global config instance with mutex protection.
//
//nolint:gochecknoglobals // Intentional singleton pattern for config management
var (
	config *Config
	logger *logx.Logger // Package logger for config operations
	mu     sync.RWMutex
)

// getLogger returns the config logger, initializing it if needed.
func getLogger() *logx.Logger {
	if logger == nil {
		logger = logx.NewLogger("config")
	}
	return logger
}

// Config is the root configuration for the organizer backend.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Planner PlannerConfig `yaml:"planner"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"` // Host to bind to (default: "0.0.0.0")
	Port int    `yaml:"port"` // Port to listen on (default: 5001)
}

// PlannerConfig contains settings for plan generation.
type PlannerConfig struct {
	Model          string   `yaml:"model"`           // Model name, mapped to a provider via KnownModels/ProviderPatterns
	MaxTokens      int      `yaml:"max_tokens"`      // Maximum completion tokens per request
	Temperature    float32  `yaml:"temperature"`     // Sampling temperature
	Strict         bool     `yaml:"strict"`          // Validate extracted plans against the move schema
	RequestTimeout Duration `yaml:"request_timeout"` // Per-request timeout (0 disables the timeout middleware)
}

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
// yaml.v3 has no native duration support.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// MetricsConfig defines configuration for metrics collection.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`   // Whether Prometheus metrics are collected and served
	Namespace string `yaml:"namespace"` // Metrics namespace for grouping
}

// ModelInfo contains static information about a known LLM model.
// This data is hardcoded in the application, not user-configurable.
type ModelInfo struct {
	Provider         string // API provider (anthropic, openai, google, ollama)
	MaxContextTokens int    // Maximum context window size in tokens
	MaxOutputTokens  int    // Maximum output tokens per request
}

// KnownModels registry contains provider information for common models.
// This is optional - unknown models will be inferred via ProviderPatterns.
//
//nolint:gochecknoglobals // Intentional global for static model registry
var KnownModels = map[string]ModelInfo{
	// Google Gemini models
	"gemini-2.5-pro": {
		Provider:         ProviderGoogle,
		MaxContextTokens: 1048576,
		MaxOutputTokens:  65536,
	},
	"gemini-2.5-flash": {
		Provider:         ProviderGoogle,
		MaxContextTokens: 1048576,
		MaxOutputTokens:  65536,
	},
	"gemini-2.0-flash": {
		Provider:         ProviderGoogle,
		MaxContextTokens: 1048576,
		MaxOutputTokens:  8192,
	},

	// Claude models (Anthropic)
	"claude-sonnet-4-20250514": {
		Provider:         ProviderAnthropic,
		MaxContextTokens: 200000,
		MaxOutputTokens:  8192,
	},
	"claude-3-7-sonnet-20250219": {
		Provider:         ProviderAnthropic,
		MaxContextTokens: 200000,
		MaxOutputTokens:  8192,
	},

	// OpenAI models
	"gpt-4o": {
		Provider:         ProviderOpenAI,
		MaxContextTokens: 128000,
		MaxOutputTokens:  4096,
	},
	"o3-mini": {
		Provider:         ProviderOpenAI,
		MaxContextTokens: 128000,
		MaxOutputTokens:  16384,
	},
}

// ProviderPattern represents a pattern for inferring provider from model name.
type ProviderPattern struct {
	Prefix   string
	Provider string
}

// ProviderPatterns defines rules for inferring providers from unknown model names.
// Allows using new models without code changes.
//
//nolint:gochecknoglobals // Intentional global for inference rules
var ProviderPatterns = []ProviderPattern{
	{"claude", ProviderAnthropic},
	{"gpt", ProviderOpenAI},
	{"o1", ProviderOpenAI},
	{"o3", ProviderOpenAI},
	{"o4", ProviderOpenAI},
	{"gemini", ProviderGoogle},
	// Ollama models - common open-source model prefixes
	{"phi", ProviderOllama},
	{"llama", ProviderOllama},
	{"qwen", ProviderOllama},
	{"mistral", ProviderOllama},
	{"deepseek", ProviderOllama},
	{"ollama:", ProviderOllama}, // Explicit prefix like "ollama:phi4"
}

// GetModelProvider returns the API provider for a given model.
// First checks KnownModels, then tries pattern matching.
// Returns error if model cannot be mapped to a provider.
func GetModelProvider(modelName string) (string, error) {
	// Check known models first
	if info, exists := KnownModels[modelName]; exists {
		return info.Provider, nil
	}

	// Try pattern matching for unknown models
	for i := range ProviderPatterns {
		if strings.HasPrefix(modelName, ProviderPatterns[i].Prefix) {
			return ProviderPatterns[i].Provider, nil
		}
	}

	return "", fmt.Errorf("unknown model '%s': no known provider mapping or pattern match - cannot determine API provider", modelName)
}

// GetModelInfo returns the ModelInfo for a given model name.
// Returns the info and true if found in KnownModels, or a default info with inferred provider and false if not found.
func GetModelInfo(modelName string) (ModelInfo, bool) {
	if info, exists := KnownModels[modelName]; exists {
		return info, true
	}

	provider := ""
	for i := range ProviderPatterns {
		if strings.HasPrefix(modelName, ProviderPatterns[i].Prefix) {
			provider = ProviderPatterns[i].Provider
			break
		}
	}

	// Conservative defaults for unknown models
	return ModelInfo{
		Provider:         provider,
		MaxContextTokens: 32000,
		MaxOutputTokens:  4096,
	}, false
}

// All constants bundled together for easy maintenance.
const (
	// Default server bind address and port.
	DefaultHost = "0.0.0.0"
	DefaultPort = 5001

	// Default model for plan generation.
	DefaultModel = "gemini-2.5-pro"

	// Default completion parameters.
	DefaultMaxTokens   = 4096
	DefaultTemperature = 0.3

	// Default metrics namespace.
	DefaultMetricsNamespace = "organizer"

	// Provider constants.
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGoogle    = "google"
	ProviderOllama    = "ollama"

	// API key environment variable names.
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvGoogleAPIKey    = "GOOGLE_API_KEY"
	EnvOllamaHost      = "OLLAMA_HOST"
)

// GetConfig returns a copy of the current config.
// Returns error if config not loaded.
func GetConfig() (Config, error) {
	mu.RLock()
	defer mu.RUnlock()

	if config == nil {
		return Config{}, fmt.Errorf("config not loaded - call LoadConfig first")
	}

	return *config, nil
}

// SetConfigForTest replaces the global config for tests and returns a restore function.
func SetConfigForTest(cfg Config) func() {
	mu.Lock()
	prev := config
	config = &cfg
	mu.Unlock()

	return func() {
		mu.Lock()
		config = prev
		mu.Unlock()
	}
}

// GetAPIKey returns the API key for a given provider from the environment.
// For Ollama, returns the host URL instead of an API key.
func GetAPIKey(provider string) (string, error) {
	var envVar string
	switch provider {
	case ProviderAnthropic:
		envVar = EnvAnthropicAPIKey
	case ProviderOpenAI:
		envVar = EnvOpenAIAPIKey
	case ProviderGoogle:
		envVar = EnvGoogleAPIKey
	case ProviderOllama:
		// Ollama doesn't use API keys - return host URL instead
		host := os.Getenv(EnvOllamaHost)
		if host == "" {
			host = "http://localhost:11434"
		}
		return host, nil
	default:
		return "", fmt.Errorf("unknown provider: %s", provider)
	}

	if key := os.Getenv(envVar); key != "" {
		return key, nil
	}

	return "", fmt.Errorf("API key not found: %s not set in environment", envVar)
}
