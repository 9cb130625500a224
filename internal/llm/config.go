package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects the backend: "gemini", "anthropic", "openai",
	// "openrouter" or "mock".
	Provider string `yaml:"provider" validate:"oneof=gemini anthropic openai openrouter mock"`

	Gemini     GeminiConfig     `yaml:"gemini"`
	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Retry      RetryConfig      `yaml:"retry"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`

	// MaxTokens caps each response. Default: 4096.
	MaxTokens int `yaml:"max_tokens" validate:"gte=256"`
}

type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "gemini-2.5-flash"
	BaseURL string `yaml:"base_url"` // Optional, e.g. a regional proxy.
}

type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: "claude-haiku"
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "gpt-4o-mini"
	BaseURL string `yaml:"base_url"` // Optional, for OpenAI-compatible gateways.
}

type OpenRouterConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`    // Default: "google/gemini-2.5-flash"
	BaseURL string `yaml:"base_url"` // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" validate:"gte=1,lte=10"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier" validate:"gte=1"`
}

// RateLimitConfig bounds the request rate sent to the provider. A module
// fans out three generation calls at once, plus the audit right after.
type RateLimitConfig struct {
	// RequestsPerSecond of 0 disables limiting.
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gte=0"`
	Burst             int     `yaml:"burst" validate:"gte=0"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:   "gemini",
		Gemini:     GeminiConfig{Model: "gemini-2.5-flash"},
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.5-flash"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		RateLimit: RateLimitConfig{RequestsPerSecond: 4, Burst: 4},
		MaxTokens: 4096,
	}
}

// ApplyEnv overlays PATHWISE_* environment variables onto cfg.
func (c *Config) ApplyEnv() {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString(&c.Provider, "PATHWISE_LLM_PROVIDER")

	setString(&c.Gemini.APIKey, "PATHWISE_GEMINI_API_KEY")
	setString(&c.Gemini.Model, "PATHWISE_GEMINI_MODEL")

	setString(&c.Anthropic.APIKey, "PATHWISE_ANTHROPIC_API_KEY")
	setString(&c.Anthropic.Model, "PATHWISE_ANTHROPIC_MODEL")

	setString(&c.OpenAI.APIKey, "PATHWISE_OPENAI_API_KEY")
	setString(&c.OpenAI.Model, "PATHWISE_OPENAI_MODEL")
	setString(&c.OpenAI.BaseURL, "PATHWISE_OPENAI_BASE_URL")

	setString(&c.OpenRouter.APIKey, "PATHWISE_OPENROUTER_API_KEY")
	setString(&c.OpenRouter.Model, "PATHWISE_OPENROUTER_MODEL")

	if v := os.Getenv("PATHWISE_LLM_RPS"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimit.RequestsPerSecond = rps
		}
	}
}

// ConfigFromEnv builds a Config from defaults plus PATHWISE_* variables.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.ApplyEnv()
	return cfg
}

// Discover fills in a provider from the vendors' standard API key
// variables when cfg has no usable key of its own. Lookup order is
// Gemini, OpenAI, Anthropic, OpenRouter. Reports whether a key was found.
func (c *Config) Discover() bool {
	if c.Validate() == nil {
		return true
	}
	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		c.Provider = "gemini"
		c.Gemini.APIKey = k
		return true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		c.Provider = "openai"
		c.OpenAI.APIKey = k
		return true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		c.Provider = "anthropic"
		c.Anthropic.APIKey = k
		return true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		c.Provider = "openrouter"
		c.OpenRouter.APIKey = k
		return true
	}
	return false
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("PATHWISE_GEMINI_API_KEY (or GEMINI_API_KEY) is required for the gemini provider")
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("PATHWISE_ANTHROPIC_API_KEY (or ANTHROPIC_API_KEY) is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("PATHWISE_OPENAI_API_KEY (or OPENAI_API_KEY) is required for the openai provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("PATHWISE_OPENROUTER_API_KEY (or OPENROUTER_API_KEY) is required for the openrouter provider")
		}
	case "mock":
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
