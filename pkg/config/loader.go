package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"organizer/pkg/logx"
)

// envVarRegex matches ${VAR} placeholders in config files.
//
//nolint:gochecknoglobals // Compiled once for reuse
var envVarRegex = regexp.MustCompile(`\$\{[A-Za-z_][A-Za-z0-9_]*\}`)

// LoadConfig loads configuration from a YAML file into the global singleton.
// An empty configPath loads pure defaults, which keeps the binary runnable
// with nothing but environment variables.
func LoadConfig(configPath string) error {
	cfg := Config{}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return logx.Wrap(err, "failed to read config file")
		}

		// Replace environment variable placeholders.
		dataStr := envVarRegex.ReplaceAllStringFunc(string(data), func(match string) string {
			envVar := match[2 : len(match)-1] // Remove ${ and }
			if value := os.Getenv(envVar); value != "" {
				return value
			}
			return match // Return original if env var not found
		})

		if err := yaml.Unmarshal([]byte(dataStr), &cfg); err != nil {
			return fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return err
	}

	mu.Lock()
	config = &cfg
	mu.Unlock()

	getLogger().Info("config loaded: model=%s host=%s port=%d strict=%v",
		cfg.Planner.Model, cfg.Server.Host, cfg.Server.Port, cfg.Planner.Strict)
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Planner.Model == "" {
		cfg.Planner.Model = DefaultModel
	}
	if cfg.Planner.MaxTokens == 0 {
		cfg.Planner.MaxTokens = DefaultMaxTokens
	}
	if cfg.Planner.Temperature == 0 {
		cfg.Planner.Temperature = DefaultTemperature
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Planner.MaxTokens < 1 {
		return fmt.Errorf("invalid planner max_tokens: %d", cfg.Planner.MaxTokens)
	}
	if cfg.Planner.Temperature < 0.0 || cfg.Planner.Temperature > 2.0 {
		return fmt.Errorf("invalid planner temperature: %v", cfg.Planner.Temperature)
	}
	if cfg.Planner.RequestTimeout < 0 {
		return fmt.Errorf("invalid planner request_timeout: %v", time.Duration(cfg.Planner.RequestTimeout))
	}
	// The model must map to a provider, otherwise no client can be built.
	if _, err := GetModelProvider(cfg.Planner.Model); err != nil {
		return fmt.Errorf("invalid planner model: %w", err)
	}
	return nil
}
